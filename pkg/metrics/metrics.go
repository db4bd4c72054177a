// Package metrics records per-run counters in Prometheus format.
//
// A run is a short-lived batch job, so nothing is served over HTTP. The
// registry is written once to a node_exporter textfile when the run ends.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the collectors for one run
type Recorder struct {
	registry      *prometheus.Registry
	pages         *prometheus.CounterVec
	statusCodes   *prometheus.CounterVec
	bytes         prometheus.Counter
	pageLatency   *prometheus.HistogramVec
	runDuration   prometheus.Gauge
	lastCompleted prometheus.Gauge
}

// New creates a recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		pages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flipdl_pages_total",
				Help: "Pages processed, by outcome",
			},
			[]string{"outcome"},
		),
		statusCodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flipdl_image_status_codes_total",
				Help: "HTTP status codes returned for image requests",
			},
			[]string{"code"},
		),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flipdl_downloaded_bytes_total",
			Help: "Bytes written to page files",
		}),
		pageLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flipdl_page_duration_seconds",
				Help:    "Time spent on a page from navigation to saved file",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"outcome"},
		),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "flipdl_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		lastCompleted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "flipdl_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}

	r.registry.MustRegister(r.pages, r.statusCodes, r.bytes, r.pageLatency, r.runDuration, r.lastCompleted)
	return r
}

// RecordPage counts one page outcome and its duration
func (r *Recorder) RecordPage(outcome string, d time.Duration) {
	r.pages.WithLabelValues(outcome).Inc()
	r.pageLatency.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordStatus counts an HTTP status returned for an image request
func (r *Recorder) RecordStatus(code int) {
	r.statusCodes.WithLabelValues(strconv.Itoa(code)).Inc()
}

// AddBytes adds n written bytes
func (r *Recorder) AddBytes(n int64) {
	if n > 0 {
		r.bytes.Add(float64(n))
	}
}

// Finish records the run duration and completion time
func (r *Recorder) Finish(d time.Duration, at time.Time) {
	r.runDuration.Set(d.Seconds())
	r.lastCompleted.Set(float64(at.Unix()))
}

// WriteTextfile writes all metrics to path in the text exposition format
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
