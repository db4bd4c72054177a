package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshot = `<!DOCTYPE html>
<html>
<head><title> Matematika 9 </title></head>
<body>
  <nav>
    <img data-pageflip-goto="1" data-src="/teaching-tool-page-image/p1">
    <img data-pageflip-goto="2" data-src="">
  </nav>
  <svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">
    <image xlink:href="/teaching-tool-page-image/p2" width="10" height="10"></image>
    <image href="/static/logo.svg"></image>
  </svg>
</body>
</html>`

func TestInspect(t *testing.T) {
	report, err := Inspect(snapshot, prefix)
	require.NoError(t, err)

	assert.Equal(t, "Matematika 9", report.Title)
	assert.Equal(t, 2, report.Thumbnails)
	assert.Equal(t, 2, report.VectorImages)
	assert.Equal(t, []string{
		"/teaching-tool-page-image/p1",
		"/teaching-tool-page-image/p2",
	}, report.MatchingLinks)
	assert.Contains(t, report.String(), "thumbnails=2")
}

func TestInspectEmptyDocument(t *testing.T) {
	report, err := Inspect("", prefix)
	require.NoError(t, err)

	assert.Zero(t, report.Thumbnails)
	assert.Zero(t, report.VectorImages)
	assert.Empty(t, report.MatchingLinks)
}
