package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"flipdl/pkg/browser"
	"flipdl/pkg/config"
	"flipdl/pkg/logger"
	"flipdl/pkg/scraper"
	"flipdl/pkg/ui"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download all pages of the configured book",
	Long: `Open the reader in Chrome, wait for you to log in, then download every page.

Each page is saved as <output>/<NNN>.<ext>. A page whose image path cannot be
found gets debug_page_<N>.png and debug_page_<N>.html in the debug directory
and is skipped. Press Ctrl+C to stop after the current page.`,
	Example: `  # Download the default book into ./matematika9
  flipdl fetch

  # Another book, 120 pages, into ./fizika
  flipdl fetch --url-template 'https://eduka.lt/...&pageFlip={page}' --pages 120 --output fizika

  # Keep the Chrome login between runs
  flipdl fetch --profile ~/.cache/flipdl/chrome

  # Only pages 50-59
  flipdl fetch --first 50 --pages 10`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

var (
	totalPages      int
	firstPage       int
	outputDir       string
	debugDir        string
	urlTemplate     string
	headless        bool
	profileDir      string
	lookupTimeout   time.Duration
	pageDelay       time.Duration
	notifications   bool
	metricsTextfile string
)

func init() {
	rootCmd.AddCommand(fetchCmd)
	addFetchFlags(fetchCmd)
}

func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&totalPages, "pages", "n", 0, "number of pages to download")
	cmd.Flags().IntVar(&firstPage, "first", 0, "first page index")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for page images")
	cmd.Flags().StringVar(&debugDir, "debug-dir", "", "directory for debug snapshots of failed pages")
	cmd.Flags().StringVar(&urlTemplate, "url-template", "", "page URL with a {page} placeholder")
	cmd.Flags().BoolVar(&headless, "headless", false, "run Chrome without a window (login must already be stored in the profile)")
	cmd.Flags().StringVar(&profileDir, "profile", "", "Chrome user data directory to keep the login between runs")
	cmd.Flags().DurationVar(&lookupTimeout, "lookup-timeout", 0, "how long to wait for each image path lookup")
	cmd.Flags().DurationVar(&pageDelay, "page-delay", 0, "pause after each processed page")
	cmd.Flags().BoolVar(&notifications, "notifications", true, "send a desktop notification when done")
	cmd.Flags().StringVar(&metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file when done")
}

// fetchFlags collects only the flags the user actually set
func fetchFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := cmd.Flags().Changed

	if changed("pages") {
		flags["pages"] = totalPages
	}
	if changed("first") {
		flags["first"] = firstPage
	}
	if changed("output") {
		flags["output"] = outputDir
	}
	if changed("debug-dir") {
		flags["debug-dir"] = debugDir
	}
	if changed("url-template") {
		flags["url-template"] = urlTemplate
	}
	if changed("headless") {
		flags["headless"] = headless
	}
	if changed("profile") {
		flags["profile"] = profileDir
	}
	if changed("lookup-timeout") {
		flags["lookup-timeout"] = lookupTimeout
	}
	if changed("page-delay") {
		flags["page-delay"] = pageDelay
	}
	if changed("notifications") {
		flags["notifications"] = notifications
	}
	if changed("metrics-textfile") {
		flags["metrics-textfile"] = metricsTextfile
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, fetchFlags(cmd))
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return err
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("flipdl starting")

	// the browser is not tied to the signal context; a terminal Ctrl+C still
	// reaches Chrome through the process group, so the page in flight fails
	// and the loop stops on the cancelled context
	session, err := browser.Launch(context.Background(), cfg.Browser, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.WithError(err).Warn("Browser did not close cleanly")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := scraper.New(cfg, session, scraper.WithLogger(log))
	if err != nil {
		return err
	}

	summary, err := s.Run(ctx)
	if err != nil {
		if scraper.IsInterrupted(err) {
			ui.PrintWarning("Stopped before any page was processed")
			return nil
		}
		return err
	}

	log.WithField("run_id", summary.RunID).Debug("flipdl done")
	return nil
}
