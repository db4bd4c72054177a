package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"flipdl/pkg/cookies"
	flerrors "flipdl/pkg/errors"
	"flipdl/pkg/logger"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Client issues authorized image requests outside the browser
type Client struct {
	timeout   time.Duration
	headers   map[string]string
	transport http.RoundTripper
	logger    logger.Logger
}

// NewClient creates a new image client. userAgent should match the browser
// that owns the session; empty falls back to a desktop Chrome string.
func NewClient(timeout time.Duration, userAgent string, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		timeout: timeout,
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "image/avif,image/webp,image/apng,image/*,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
			"Pragma":          "no-cache",
			"Sec-Fetch-Dest":  "image",
			"Sec-Fetch-Mode":  "no-cors",
			"Sec-Fetch-Site":  "same-origin",
		},
		transport: http.DefaultTransport,
		logger:    log,
	}
}

// SetHeaders adds or overrides request headers
func (c *Client) SetHeaders(headers map[string]string) {
	for key, value := range headers {
		c.headers[key] = value
	}
}

// Open issues a GET for url carrying the given session cookies and returns
// the streamed body. Each call builds a fresh cookie jar so no state leaks
// between pages. Any status other than 200 is returned as an http_status
// error and the body is closed.
func (c *Client) Open(ctx context.Context, url string, session []cookies.Cookie) (io.ReadCloser, error) {
	jar, err := cookies.NewJar(session)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Timeout:   c.timeout,
		Jar:       jar,
		Transport: c.transport,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &flerrors.Error{
			Type:    flerrors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method":  req.Method,
		"url":     url,
		"cookies": len(session),
	})

	resp, err := httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &flerrors.Error{
			Type:    flerrors.ErrorTypeNetwork,
			Message: url,
			Err:     err,
		}
	}

	logger.LogRequest(c.logger, req.Method, url, resp.StatusCode, float64(duration.Milliseconds()))

	if resp.StatusCode != http.StatusOK {
		// drain a little so the connection can be reused
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		resp.Body.Close()
		return nil, flerrors.HTTPStatus(resp.StatusCode, url)
	}

	return resp.Body, nil
}
