// Package ratelimit paces page processing.
//
// The flip-book reader is driven one page at a time with a fixed pause after
// every page that was actually processed. Pages skipped because their file
// already exists do not wait.
//
// Usage:
//
//	limiter := ratelimit.NewFixedDelay(500 * time.Millisecond)
//	if err := limiter.Wait(ctx); err != nil {
//		return err // interrupted
//	}
package ratelimit
