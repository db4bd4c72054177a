package browser

import (
	"testing"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flipdl/pkg/config"
	"flipdl/pkg/cookies"
)

func TestFromNetworkCookies(t *testing.T) {
	raw := []*network.Cookie{
		{Name: "session", Value: "abc", Domain: ".eduka.test", Path: "/", Secure: true, HTTPOnly: true},
		nil,
		{Name: "lang", Value: "lt", Domain: "eduka.test", Path: "/reader"},
	}

	got := fromNetworkCookies(raw)
	require.Len(t, got, 2)
	assert.Equal(t, cookies.Cookie{
		Name: "session", Value: "abc", Domain: ".eduka.test", Path: "/", Secure: true, HTTPOnly: true,
	}, got[0])
	assert.Equal(t, "/reader", got[1].Path)
	assert.False(t, got[1].Secure)
}

func TestFromNetworkCookiesEmpty(t *testing.T) {
	assert.Empty(t, fromNetworkCookies(nil))
}

func TestAllocatorOptions(t *testing.T) {
	base := allocatorOptions(config.BrowserConfig{})
	full := allocatorOptions(config.BrowserConfig{
		ExecPath:     "/usr/bin/chromium",
		UserDataDir:  t.TempDir(),
		UserAgent:    "flipdl-test",
		WindowWidth:  1280,
		WindowHeight: 900,
	})

	assert.Len(t, full, len(base)+4)
}
