// Package fetch downloads page images with the browser's session cookies.
//
// The browser is only used to authenticate and to discover image paths. The
// images themselves are streamed by a plain net/http client whose cookie jar
// is rebuilt from the browser's cookies on every request:
//
//	client := fetch.NewClient(60*time.Second, cfg.Browser.UserAgent, log)
//	body, err := client.Open(ctx, imageURL, sessionCookies)
//	if err != nil {
//		// errors.StatusCode(err) carries the HTTP status for non-200 responses
//	}
//	defer body.Close()
package fetch
