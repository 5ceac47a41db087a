package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"tidy/internal/organizer"
	"tidy/internal/rules"
	"tidy/internal/tui"
)

const defaultConfigFile = "tidy.yaml"

var (
	organizeWorkers int
	organizeTimeout int
	organizeByDate  bool
	organizeSniff   bool
)

var organizeCmd = &cobra.Command{
	Use:   "organize [source] [config]",
	Short: "Move files into category folders",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, configPath := resolveArgs(args)

		r, err := rules.Load(configPath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		runCtx, cancelRun := context.WithCancel(ctx)
		defer cancelRun()

		updates := make(chan organizer.ProgressUpdate, 64)
		model := tui.NewModel(updates, cancelRun)
		program := tea.NewProgram(model)

		uiDone := make(chan struct{})
		go func() {
			_, _ = program.Run()
			close(uiDone)
		}()

		summary, outcomes, err := organizer.Run(runCtx, source, r, organizer.Options{
			Mode:         organizer.ModeOrganize,
			Workers:      organizeWorkers,
			DrainTimeout: time.Duration(organizeTimeout) * time.Second,
			ByDate:       organizeByDate,
			Sniff:        organizeSniff,
		}, updates)

		close(updates)
		<-uiDone
		if err != nil {
			reportOutcomes(outcomes)
			return err
		}

		reportOutcomes(outcomes)

		rows := []tui.SummaryRow{
			{Label: "Configured mappings", Value: fmt.Sprintf("%d", r.Count())},
			{Label: "Total files processed", Value: fmt.Sprintf("%d", summary.Submitted)},
			{Label: "Moved", Value: fmt.Sprintf("%d", summary.Moved)},
			{Label: "Skipped", Value: fmt.Sprintf("%d", summary.Skipped)},
			{Label: "Failed", Value: fmt.Sprintf("%d", summary.Failed)},
			{Label: "Folders created", Value: fmt.Sprintf("%d", summary.DirsCreated)},
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))

		if summary.TimedOut {
			fmt.Fprintln(os.Stderr, warnStyle.Render(fmt.Sprintf(
				"warning: %d file(s) did not finish before the drain deadline", summary.Skipped+summary.Unfinished)))
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d file(s) failed to move", summary.Failed)
		}
		return nil
	},
}

// reportOutcomes prints one line per failure or warning; successful
// moves are already visible through the progress UI.
func reportOutcomes(outcomes []organizer.Outcome) {
	for _, out := range outcomes {
		switch {
		case out.Status == organizer.StatusFailed:
			fmt.Fprintf(os.Stderr, "%s %s: %s (%v)\n",
				errorStyle.Render("failed"), filepath.Base(out.Source), out.Kind, out.Err)
		case out.Warning != "":
			fmt.Fprintf(os.Stderr, "%s %s: %s\n",
				warnStyle.Render("warning"), filepath.Base(out.Source), out.Warning)
		}
	}
}

func resolveArgs(args []string) (string, string) {
	source := defaultSourceDir()
	configPath := defaultConfigFile
	if len(args) > 0 {
		source = args[0]
	}
	if len(args) > 1 {
		configPath = args[1]
	}
	return source, configPath
}

func defaultSourceDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "Downloads"
	}
	return filepath.Join(home, "Downloads")
}

var (
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorError)
	warnStyle  = lipgloss.NewStyle().Foreground(tui.ColorWarn)
)

func init() {
	organizeCmd.Flags().IntVarP(&organizeWorkers, "workers", "w", 0, "number of concurrent workers (default from config)")
	organizeCmd.Flags().IntVar(&organizeTimeout, "timeout", 0, "drain deadline in seconds (default from config)")
	organizeCmd.Flags().BoolVar(&organizeByDate, "by-date", false, "file images into YYYY-MM subfolders by capture date")
	organizeCmd.Flags().BoolVar(&organizeSniff, "sniff", false, "detect the type of extensionless files from magic bytes")

	rootCmd.AddCommand(organizeCmd)
}
