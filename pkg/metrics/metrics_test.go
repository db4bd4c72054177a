package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPage(t *testing.T) {
	r := New()

	r.RecordPage("downloaded", 200*time.Millisecond)
	r.RecordPage("downloaded", 300*time.Millisecond)
	r.RecordPage("not_found", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.pages.WithLabelValues("downloaded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.pages.WithLabelValues("not_found")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.pages.WithLabelValues("skipped")))
}

func TestRecordStatusAndBytes(t *testing.T) {
	r := New()

	r.RecordStatus(200)
	r.RecordStatus(404)
	r.RecordStatus(404)
	r.AddBytes(1024)
	r.AddBytes(-5)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.statusCodes.WithLabelValues("404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.statusCodes.WithLabelValues("200")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(r.bytes))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.RecordPage("downloaded", time.Second)
	r.Finish(90*time.Second, time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "textfile", "flipdl.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `flipdl_pages_total{outcome="downloaded"} 1`)
	assert.Contains(t, string(data), "flipdl_run_duration_seconds 90")
	assert.Contains(t, string(data), "flipdl_last_run_timestamp_seconds ")
}
