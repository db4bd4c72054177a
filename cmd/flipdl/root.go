package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"flipdl/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flipdl",
	Short: "Download the page images of a flip-book reader",
	Long: `flipdl saves every page of an online flip-book as an image file.

It opens a Chrome window, waits while you log in, then walks the pages in
order. For each page it finds the image path in the reader's markup and
downloads the image with the browser's session cookies.

Pages already on disk are skipped, so an interrupted run can simply be
started again. Running flipdl without a subcommand is the same as
'flipdl fetch'.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuietMode(true)
		}
	},
	RunE:         runFetch,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("flipdl", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./flipdl.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors and the summary")

	addFetchFlags(rootCmd)

	rootCmd.SetVersionTemplate(`flipdl {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
