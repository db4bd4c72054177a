// Package cookies carries browser session cookies into a plain HTTP client.
package cookies

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

// Cookie is a browser cookie reduced to the attributes a cookie jar needs
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
}

// Host returns the cookie domain without the leading dot
func (c Cookie) Host() string {
	return strings.TrimPrefix(c.Domain, ".")
}

// NewJar returns a fresh jar holding every cookie, each scoped to its own domain
func NewJar(cookies []Cookie) (http.CookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if err := Transplant(jar, cookies); err != nil {
		return nil, err
	}
	return jar, nil
}

// Transplant installs cookies into jar grouped by domain. Cookies without a
// domain are skipped since they cannot be scoped.
func Transplant(jar http.CookieJar, cookies []Cookie) error {
	byDomain := make(map[string][]*http.Cookie)
	var order []string

	for _, c := range cookies {
		host := c.Host()
		if host == "" {
			continue
		}

		scheme := "http"
		if c.Secure {
			scheme = "https"
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		key := scheme + "://" + host + path

		if _, ok := byDomain[key]; !ok {
			order = append(order, key)
		}
		byDomain[key] = append(byDomain[key], &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		})
	}

	for _, key := range order {
		u, err := url.Parse(key)
		if err != nil {
			return fmt.Errorf("invalid cookie scope %q: %w", key, err)
		}
		jar.SetCookies(u, byDomain[key])
	}
	return nil
}
