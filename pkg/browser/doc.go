// Package browser drives a Chrome window through chromedp.
//
// A Session exposes the handful of page operations the downloader needs:
// navigation, waiting for an element's attributes, reading cookies, and
// capturing a screenshot plus the serialized document for debugging.
package browser
