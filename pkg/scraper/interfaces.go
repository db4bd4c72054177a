package scraper

import (
	"context"
	"io"

	"flipdl/pkg/cookies"
	"flipdl/pkg/locator"
)

// Page is the browsing context the scraper drives
type Page interface {
	locator.Page
	Navigate(ctx context.Context, url string) error
	Cookies(ctx context.Context) ([]cookies.Cookie, error)
	Screenshot(ctx context.Context) ([]byte, error)
	HTML(ctx context.Context) (string, error)
}

// Downloader opens an authorized image stream
type Downloader interface {
	Open(ctx context.Context, url string, session []cookies.Cookie) (io.ReadCloser, error)
}

// Gate blocks until the user has logged in
type Gate interface {
	Wait(ctx context.Context, message string) error
}

// Notifier announces the end of a run
type Notifier interface {
	SendSuccess(title, message string)
	SendError(title, message string)
}
