package cookies

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestNewJarScopesByDomain(t *testing.T) {
	jar, err := NewJar([]Cookie{
		{Name: "session", Value: "s1", Domain: ".eduka.test", Path: "/", Secure: true, HTTPOnly: true},
		{Name: "cdn", Value: "c1", Domain: "cdn.other.test", Path: "/"},
	})
	require.NoError(t, err)

	got := jar.Cookies(mustURL(t, "https://www.eduka.test/teaching-tool-page-image/1.png"))
	require.Len(t, got, 1)
	assert.Equal(t, "session", got[0].Name)
	assert.Equal(t, "s1", got[0].Value)

	got = jar.Cookies(mustURL(t, "http://cdn.other.test/x"))
	require.Len(t, got, 1)
	assert.Equal(t, "cdn", got[0].Name)

	assert.Empty(t, jar.Cookies(mustURL(t, "https://unrelated.test/")))
}

func TestNewJarRespectsPath(t *testing.T) {
	jar, err := NewJar([]Cookie{
		{Name: "scoped", Value: "v", Domain: "eduka.test", Path: "/reader"},
	})
	require.NoError(t, err)

	assert.Len(t, jar.Cookies(mustURL(t, "http://eduka.test/reader/page")), 1)
	assert.Empty(t, jar.Cookies(mustURL(t, "http://eduka.test/other")))
}

func TestNewJarSkipsCookiesWithoutDomain(t *testing.T) {
	jar, err := NewJar([]Cookie{{Name: "orphan", Value: "v"}})
	require.NoError(t, err)

	assert.Empty(t, jar.Cookies(mustURL(t, "http://eduka.test/")))
}

func TestNewJarEmpty(t *testing.T) {
	jar, err := NewJar(nil)
	require.NoError(t, err)
	assert.NotNil(t, jar)
}

func TestHost(t *testing.T) {
	assert.Equal(t, "eduka.test", Cookie{Domain: ".eduka.test"}.Host())
	assert.Equal(t, "eduka.test", Cookie{Domain: "eduka.test"}.Host())
	assert.Equal(t, "", Cookie{}.Host())
}
