package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"flipdl/pkg/config"
	flerrors "flipdl/pkg/errors"
	"flipdl/pkg/fetch"
	"flipdl/pkg/locator"
	"flipdl/pkg/logger"
	"flipdl/pkg/metrics"
	"flipdl/pkg/ratelimit"
	"flipdl/pkg/storage"
	"flipdl/pkg/ui"
)

const loginMessage = "Log in using the browser window, open the book, then press Enter to start..."

// Scraper orchestrates the page download process
type Scraper struct {
	config         *config.Config
	page           Page
	resolver       *locator.Resolver
	downloader     Downloader
	storageManager *storage.Manager
	rateLimiter    ratelimit.Limiter
	gate           Gate
	notifier       Notifier
	metrics        *metrics.Recorder
	tracker        *ui.StatusTracker
	logger         logger.Logger
}

// Option customizes a Scraper
type Option func(*Scraper)

// WithDownloader replaces the HTTP image client
func WithDownloader(d Downloader) Option {
	return func(s *Scraper) { s.downloader = d }
}

// WithRateLimiter replaces the per-page pacer
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(s *Scraper) { s.rateLimiter = l }
}

// WithGate replaces the console login prompt
func WithGate(g Gate) Option {
	return func(s *Scraper) { s.gate = g }
}

// WithNotifier replaces the desktop notifier
func WithNotifier(n Notifier) Option {
	return func(s *Scraper) { s.notifier = n }
}

// WithMetrics replaces the metrics recorder
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Scraper) { s.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(s *Scraper) { s.logger = l }
}

// New creates a new Scraper over page
func New(cfg *config.Config, page Page, opts ...Option) (*Scraper, error) {
	s := &Scraper{
		config: cfg,
		page:   page,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.GetLogger()
	}

	storageManager, err := storage.NewManager(
		cfg.Output.Directory,
		cfg.Output.Extension,
		cfg.Output.DebugDirectory,
		cfg.Download.ChunkSize,
	)
	if err != nil {
		return nil, err
	}
	s.storageManager = storageManager

	s.resolver = locator.NewResolver(
		locator.DefaultStrategies(cfg.Site.ImagePathPrefix),
		cfg.Browser.LookupTimeout,
		s.logger,
	)

	if s.downloader == nil {
		client := fetch.NewClient(cfg.Download.Timeout, cfg.Browser.UserAgent, s.logger)
		client.SetHeaders(cfg.Download.Headers)
		s.downloader = client
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewFixedDelay(cfg.Download.PageDelay)
	}
	if s.gate == nil {
		s.gate = ui.NewPrompt()
	}
	if s.notifier == nil {
		s.notifier = ui.NewNotifier(cfg.Notifications.Enabled)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}

	return s, nil
}

// Metrics returns the recorder used for this scraper
func (s *Scraper) Metrics() *metrics.Recorder {
	return s.metrics
}

// Run opens the entry page, waits for login and downloads every page in
// range. Page failures are counted in the summary, not returned. An error
// is returned only when the session cannot be established.
func (s *Scraper) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: uuid.NewString()}
	log := s.logger.WithField("run_id", summary.RunID)

	ui.PrintBanner()
	ui.PrintInfo("Output", s.storageManager.GetOutputDir())
	ui.PrintInfo("Pages", fmt.Sprintf("%d-%d", s.config.Pages.First, s.config.LastPage()))

	log.WithFields(map[string]interface{}{
		"first":      s.config.Pages.First,
		"last":       s.config.LastPage(),
		"output":     s.storageManager.GetOutputDir(),
		"strategies": s.resolver.Strategies(),
	}).Info("Starting run")

	if err := s.page.Navigate(ctx, s.config.Site.EntryURL); err != nil {
		return summary, fmt.Errorf("failed to open entry page: %w", err)
	}
	if err := s.gate.Wait(ctx, loginMessage); err != nil {
		return summary, fmt.Errorf("login not confirmed: %w", err)
	}

	s.tracker = ui.NewStatusTracker(s.config.Pages.Total)

	for i := s.config.Pages.First; i <= s.config.LastPage(); i++ {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}

		pageStart := time.Now()
		outcome, detail, err := s.processPage(ctx, log, i)
		if err != nil && ctx.Err() != nil {
			// page cut short by interruption is left for the next run
			summary.Interrupted = true
			break
		}

		summary.add(outcome)
		s.tracker.Record(string(outcome))
		s.tracker.PrintPage(i, string(outcome), detail)
		s.metrics.RecordPage(string(outcome), time.Since(pageStart))
		logger.LogPageOutcome(log, i, string(outcome), err)
		logger.LogProgress(log, s.tracker.Processed, s.tracker.Total)

		if outcome == OutcomeSkipped {
			continue
		}
		if err := s.rateLimiter.Wait(ctx); err != nil {
			summary.Interrupted = true
			break
		}
	}

	summary.Duration = time.Since(start)
	s.finish(log, summary)
	return summary, nil
}

// processPage handles one page index. A panic inside is converted into a
// failed outcome so the loop keeps going.
func (s *Scraper) processPage(ctx context.Context, log logger.Logger, i int) (outcome Outcome, detail string, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = OutcomeFailed
			err = fmt.Errorf("panic on page %d: %v", i, r)
			detail = err.Error()
		}
	}()

	if s.storageManager.IsDownloaded(i) {
		return OutcomeSkipped, s.storageManager.FileName(i), nil
	}

	log = log.WithField("page", i)

	if err := s.page.Navigate(ctx, s.config.PageURL(i)); err != nil {
		return OutcomeFailed, err.Error(), flerrors.Wrap(flerrors.ErrorTypeBrowser, i, err)
	}

	res, err := s.resolver.Resolve(ctx, s.page, i)
	if err != nil {
		if !flerrors.IsType(err, flerrors.ErrorTypeNotFound) {
			return OutcomeFailed, err.Error(), err
		}
		s.saveDebug(ctx, log, i)
		png, html := s.storageManager.DebugPaths(i)
		return OutcomeNotFound, fmt.Sprintf("no image path, see %s and %s", png, html), err
	}

	imageURL := s.config.ImageURL(res.Token)
	log = log.WithFields(map[string]interface{}{
		"strategy": res.Strategy,
		"url":      imageURL,
	})

	// cookies are re-read every page since the site may rotate them
	session, err := s.page.Cookies(ctx)
	if err != nil {
		return OutcomeFailed, err.Error(), err
	}

	body, err := s.downloader.Open(ctx, imageURL, session)
	if err != nil {
		if code := flerrors.StatusCode(err); code != 0 {
			s.metrics.RecordStatus(code)
			return OutcomeHTTPError, fmt.Sprintf("HTTP %d for %s", code, imageURL), err
		}
		return OutcomeFailed, err.Error(), err
	}
	defer body.Close()
	s.metrics.RecordStatus(200)

	n, err := s.storageManager.SavePage(body, i)
	if err != nil {
		return OutcomeFailed, err.Error(), flerrors.Wrap(flerrors.ErrorTypeStorage, i, err)
	}
	s.metrics.AddBytes(n)

	log.WithField("bytes", n).Debug("Page saved")
	return OutcomeDownloaded, s.storageManager.FileName(i), nil
}

// saveDebug captures the current page state for a page without an image
// path. Both files are always written; a failed capture leaves one empty.
func (s *Scraper) saveDebug(ctx context.Context, log logger.Logger, i int) {
	screenshot, err := s.page.Screenshot(ctx)
	if err != nil {
		log.WithError(err).Warn("Screenshot capture failed")
	}
	markup, err := s.page.HTML(ctx)
	if err != nil {
		log.WithError(err).Warn("Document capture failed")
	}

	if err := s.storageManager.SaveDebugArtifacts(i, screenshot, markup); err != nil {
		log.WithError(err).Error("Failed to write debug artifacts")
		return
	}

	if markup == "" {
		return
	}
	report, err := locator.Inspect(markup, s.config.Site.ImagePathPrefix)
	if err != nil {
		log.WithError(err).Debug("Snapshot could not be inspected")
		return
	}
	log.WithFields(map[string]interface{}{
		"title":          report.Title,
		"thumbnails":     report.Thumbnails,
		"vector_images":  report.VectorImages,
		"matching_links": report.MatchingLinks,
	}).Warn("Debug snapshot saved")
}

func (s *Scraper) finish(log logger.Logger, summary Summary) {
	ui.PrintSummary(summary.String())

	log.WithFields(map[string]interface{}{
		"downloaded":  summary.Downloaded,
		"skipped":     summary.Skipped,
		"not_found":   summary.NotFound,
		"http_errors": summary.HTTPErrors,
		"failed":      summary.Failed,
		"interrupted": summary.Interrupted,
		"duration":    summary.Duration,
	}).Info("Run finished")

	s.metrics.Finish(summary.Duration, time.Now())
	if path := s.config.Metrics.Textfile; path != "" {
		if err := s.metrics.WriteTextfile(path); err != nil {
			log.WithError(err).Warn("Failed to write metrics")
		}
	}

	message := fmt.Sprintf("%d of %d pages on disk", summary.Downloaded+summary.Skipped, s.config.Pages.Total)
	if summary.Missing() > 0 || summary.Interrupted {
		s.notifier.SendError("flipdl finished with missing pages", message)
		return
	}
	s.notifier.SendSuccess("flipdl finished", message)
}

// IsInterrupted reports whether err came from cancelling the run
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
