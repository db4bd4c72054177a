package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flipdl/pkg/cookies"
	flerrors "flipdl/pkg/errors"
	"flipdl/pkg/logger"
)

// localURL rewrites the test server address to a hostname so the cookie jar
// accepts domain-scoped cookies for it
func localURL(server *httptest.Server, path string) string {
	return strings.Replace(server.URL, "127.0.0.1", "localhost", 1) + path
}

func TestOpenSendsSessionCookies(t *testing.T) {
	var gotCookies []*http.Cookie
	var gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookies = r.Cookies()
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("PNGDATA"))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, "", logger.NewNopLogger())
	body, err := client.Open(context.Background(), localURL(server, "/teaching-tool-page-image/1"), []cookies.Cookie{
		{Name: "session", Value: "abc", Domain: "localhost", Path: "/"},
		{Name: "foreign", Value: "nope", Domain: "elsewhere.test", Path: "/"},
	})
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "PNGDATA", string(data))

	require.Len(t, gotCookies, 1)
	assert.Equal(t, "session", gotCookies[0].Name)
	assert.Equal(t, "abc", gotCookies[0].Value)
	assert.Contains(t, gotAccept, "image/")
}

func TestOpenNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer server.Close()

	log := logger.NewTestLogger()
	client := NewClient(5*time.Second, "", log)

	body, err := client.Open(context.Background(), localURL(server, "/p.png"), nil)
	require.Error(t, err)
	assert.Nil(t, body)
	assert.True(t, flerrors.IsType(err, flerrors.ErrorTypeHTTPStatus))
	assert.Equal(t, http.StatusForbidden, flerrors.StatusCode(err))
	assert.True(t, log.HasMessage("HTTP request client error"))
}

func TestOpenNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := localURL(server, "/p.png")
	server.Close()

	client := NewClient(time.Second, "", logger.NewNopLogger())
	_, err := client.Open(context.Background(), url, nil)
	require.Error(t, err)
	assert.True(t, flerrors.IsType(err, flerrors.ErrorTypeNetwork))
}

func TestOpenCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(time.Second, "", logger.NewNopLogger())
	_, err := client.Open(ctx, localURL(server, "/p.png"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetHeaders(t *testing.T) {
	var gotReferer, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client := NewClient(time.Second, "flipdl-test", logger.NewNopLogger())
	client.SetHeaders(map[string]string{"Referer": "https://eduka.test/reader"})

	body, err := client.Open(context.Background(), localURL(server, "/p.png"), nil)
	require.NoError(t, err)
	body.Close()

	assert.Equal(t, "flipdl-test", gotUA)
	assert.Equal(t, "https://eduka.test/reader", gotReferer)
}

func TestDefaultUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client := NewClient(time.Second, "", logger.NewNopLogger())
	body, err := client.Open(context.Background(), localURL(server, "/p.png"), nil)
	require.NoError(t, err)
	body.Close()

	assert.Equal(t, defaultUserAgent, gotUA)
}
