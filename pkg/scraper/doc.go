// Package scraper runs the page download loop.
//
// A run opens the reader's entry page, waits for the user to log in, and then
// walks the configured page range in order. For every page whose file is not
// yet on disk it navigates the browser, resolves the image path with the
// locator strategies, copies the browser's cookies into a plain HTTP client
// and streams the image to disk.
//
// Failures stay with the page they happened on:
//   - no image path: a screenshot and the document are saved as debug files
//   - non-200 image response: the status is reported and no file is written
//   - anything else: logged with the page index
//
// The loop then continues with the next page. Existing files are the only
// state, so rerunning picks up exactly the pages that are still missing.
//
// Usage:
//
//	session, err := browser.Launch(ctx, cfg.Browser, log)
//	if err != nil {
//		return err
//	}
//	defer session.Close()
//
//	s, err := scraper.New(cfg, session)
//	if err != nil {
//		return err
//	}
//	summary, err := s.Run(ctx)
package scraper
