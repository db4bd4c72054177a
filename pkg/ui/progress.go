package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// StatusTracker keeps track of page progress through a run
type StatusTracker struct {
	Total      int
	Processed  int
	Downloaded int
	Skipped    int
	Failed     int
	StartTime  time.Time
}

// NewStatusTracker creates a tracker for total pages
func NewStatusTracker(total int) *StatusTracker {
	return &StatusTracker{
		Total:     total,
		StartTime: time.Now(),
	}
}

// Record counts one page by outcome
func (st *StatusTracker) Record(outcome string) {
	st.Processed++
	switch outcome {
	case "downloaded":
		st.Downloaded++
	case "skipped":
		st.Skipped++
	default:
		st.Failed++
	}
}

// GetProgressBar returns a formatted progress bar over all pages
func (st *StatusTracker) GetProgressBar() string {
	const width = 20
	filled := 0
	if st.Total > 0 {
		filled = st.Processed * width / st.Total
	}
	if filled > width {
		filled = width
	}

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, st.Processed, st.Total)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// GetDownloadRate returns the average download rate in pages per minute
func (st *StatusTracker) GetDownloadRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.Downloaded) / elapsed
}

// PrintPage prints the outcome line for a single page along with overall
// progress, elapsed time and download rate
func (st *StatusTracker) PrintPage(page int, outcome, detail string) {
	label := Green("[" + strings.ToUpper(outcome) + "]")
	switch outcome {
	case "skipped":
		label = Dim("[SKIPPED]")
	case "downloaded":
	default:
		label = Red("[" + strings.ToUpper(outcome) + "]")
	}

	line := fmt.Sprintf("%s %s page %d", label, st.GetProgressBar(), page)
	if detail != "" {
		line += ": " + detail
	}
	printf(false, "\n%s %s",
		line,
		Dim(fmt.Sprintf("| %s elapsed | %.1f pages/min",
			st.GetElapsedTime().Round(time.Second),
			st.GetDownloadRate())))
}
