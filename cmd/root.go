package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tidy",
	Short: "tidy 🗂 - organize a folder into category subfolders",
	Long:  "tidy 🗂 organizes the files of a directory into category subfolders (Documents, Images, ...) chosen by file extension, using a pool of concurrent workers.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
