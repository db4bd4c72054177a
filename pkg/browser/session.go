package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"flipdl/pkg/config"
	"flipdl/pkg/cookies"
	flerrors "flipdl/pkg/errors"
	"flipdl/pkg/locator"
	"flipdl/pkg/logger"
)

// Session is one Chrome window driven over the DevTools protocol
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	cfg         config.BrowserConfig
	logger      logger.Logger
}

// allocatorOptions builds the exec allocator flags for cfg
func allocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
	)

	if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	return opts
}

// Launch starts Chrome and opens a tab. The browser lives until Close is
// called or ctx is cancelled.
func Launch(ctx context.Context, cfg config.BrowserConfig, log logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	log = log.WithField("component", "browser")

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(cfg)...)

	tabCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(printf(log.Debug)),
		chromedp.WithErrorf(printf(log.Warn)),
	)

	// first Run starts the browser process
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		allocCancel()
		return nil, &flerrors.Error{Type: flerrors.ErrorTypeBrowser, Message: "failed to start chrome", Err: err}
	}

	log.WithFields(map[string]interface{}{
		"headless": cfg.Headless,
		"profile":  cfg.UserDataDir,
	}).Info("Browser started")

	return &Session{
		ctx:         tabCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		cfg:         cfg,
		logger:      log,
	}, nil
}

func printf(fn func(string)) func(string, ...interface{}) {
	return func(format string, args ...interface{}) {
		fn(fmt.Sprintf(format, args...))
	}
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx := s.ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(runCtx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Navigate loads url and waits for the document body
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.WithField("url", url).Debug("Navigating")

	err := s.run(ctx, s.cfg.NavigationTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return &flerrors.Error{Type: flerrors.ErrorTypeBrowser, Message: "navigate " + url, Err: err}
	}
	return nil
}

// WaitAttributes returns the attributes of the first node matching sel once
// it is attached, or locator.ErrNotAttached after timeout.
func (s *Session) WaitAttributes(ctx context.Context, sel locator.Selector, timeout time.Duration) (map[string]string, error) {
	by := chromedp.ByQuery
	if sel.Kind == locator.ByXPath {
		by = chromedp.BySearch
	}

	attrs := make(map[string]string)
	err := s.run(ctx, timeout, chromedp.Attributes(sel.Expr, &attrs, by))
	switch {
	case err == nil:
		return attrs, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return nil, locator.ErrNotAttached
	default:
		return nil, err
	}
}

// Cookies returns every cookie the browser holds
func (s *Session) Cookies(ctx context.Context) ([]cookies.Cookie, error) {
	var raw []*network.Cookie
	err := s.run(ctx, s.cfg.NavigationTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, &flerrors.Error{Type: flerrors.ErrorTypeBrowser, Message: "read cookies", Err: err}
	}
	return fromNetworkCookies(raw), nil
}

func fromNetworkCookies(raw []*network.Cookie) []cookies.Cookie {
	out := make([]cookies.Cookie, 0, len(raw))
	for _, c := range raw {
		if c == nil {
			continue
		}
		out = append(out, cookies.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		})
	}
	return out
}

// Screenshot captures the visible viewport as PNG
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, s.cfg.NavigationTimeout, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, &flerrors.Error{Type: flerrors.ErrorTypeBrowser, Message: "capture screenshot", Err: err}
	}
	return buf, nil
}

// HTML returns the serialized document
func (s *Session) HTML(ctx context.Context) (string, error) {
	var markup string
	if err := s.run(ctx, s.cfg.NavigationTimeout, chromedp.OuterHTML("html", &markup, chromedp.ByQuery)); err != nil {
		return "", &flerrors.Error{Type: flerrors.ErrorTypeBrowser, Message: "read document", Err: err}
	}
	return markup, nil
}

// Close shuts the browser down
func (s *Session) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancel()
	s.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	s.logger.Debug("Browser closed")
	return nil
}
