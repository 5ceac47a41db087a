package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"tidy/internal/organizer"
	"tidy/internal/rules"
	"tidy/internal/tui"
)

var (
	previewByDate bool
	previewSniff  bool
)

var previewCmd = &cobra.Command{
	Use:   "preview [source] [config]",
	Short: "Show what organize would do without moving anything",
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
			Mode:   organizer.ModePreview,
			ByDate: previewByDate,
			Sniff:  previewSniff,
		}, updates)
		close(updates)
		<-uiDone
		if err != nil {
			return err
		}

		absSource, absErr := filepath.Abs(source)
		if absErr != nil {
			absSource = source
		}

		byFolder := make(map[string][]string)
		for _, out := range outcomes {
			if out.Status != organizer.StatusPlanned {
				continue
			}
			folder := filepath.Dir(out.Dest)
			byFolder[folder] = append(byFolder[folder], filepath.Base(out.Source))
		}

		folders := make([]string, 0, len(byFolder))
		for folder := range byFolder {
			folders = append(folders, folder)
		}
		sort.Strings(folders)

		for i, folder := range folders {
			if i > 0 {
				fmt.Fprintln(os.Stdout)
			}
			rel, relErr := filepath.Rel(absSource, folder)
			if relErr != nil {
				rel = folder
			}
			fmt.Fprintf(os.Stdout, "%s\n", previewFolderStyle.Render(rel+"/"))

			names := byFolder[folder]
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(os.Stdout, "  %s %s\n",
					previewBulletStyle.Render("-"), previewNameStyle.Render(name))
			}
		}

		fmt.Fprintf(os.Stdout, "\n%s\n", previewDimStyle.Render(fmt.Sprintf(
			"%d file(s) would move into %d folder(s); nothing was changed", summary.Planned, len(folders))))
		return nil
	},
}

var (
	previewFolderStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	previewNameStyle   = lipgloss.NewStyle().Foreground(tui.ColorInk)
	previewBulletStyle = lipgloss.NewStyle().Foreground(tui.ColorDim)
	previewDimStyle    = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	previewCmd.Flags().BoolVar(&previewByDate, "by-date", false, "file images into YYYY-MM subfolders by capture date")
	previewCmd.Flags().BoolVar(&previewSniff, "sniff", false, "detect the type of extensionless files from magic bytes")

	rootCmd.AddCommand(previewCmd)
}
