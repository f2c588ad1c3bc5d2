// Package cmd provides command-line interface functionality for XISOTools.
// XISOTools prepares Xbox XDVDFS disc images for storage on
// filesystems with a 4 GiB file size limit.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
// It provides the main entry point for the XISOTools application.
var rootCmd = &cobra.Command{
	Use:   "xisotools",
	Short: "Tools for preparing Xbox XISO images",
	Long: `XISOTools - A collection of utilities for Xbox XDVDFS (XISO) images.

Currently supports:
  - Splitting images larger than 4 GiB into two sector aligned fragments
  - Writing an attach XBE carrying the title of the image's default.xbe
  - Listing and extracting the XDVDFS directory tree

Examples:
  xisotools split ./games/
  xisotools split -v --attach attach.xbe Halo.iso
  xisotools split --jobs 4 --report report.yaml ./games/
  xisotools list Halo.iso
  xisotools dump Halo.iso ./output/

Use 'xisotools [command] --help' for more information about a command.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main() and serves as the entry point for command execution.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// init initializes the root command with flags shared by every subcommand.
func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output with detailed image information")
}
