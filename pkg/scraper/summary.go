package scraper

import (
	"fmt"
	"time"
)

// Outcome is the result of processing one page
type Outcome string

const (
	OutcomeDownloaded Outcome = "downloaded"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeNotFound   Outcome = "not_found"
	OutcomeHTTPError  Outcome = "http_error"
	OutcomeFailed     Outcome = "failed"
)

// Summary counts page outcomes for one run
type Summary struct {
	RunID       string
	Downloaded  int
	Skipped     int
	NotFound    int
	HTTPErrors  int
	Failed      int
	Interrupted bool
	Duration    time.Duration
}

func (s *Summary) add(o Outcome) {
	switch o {
	case OutcomeDownloaded:
		s.Downloaded++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeNotFound:
		s.NotFound++
	case OutcomeHTTPError:
		s.HTTPErrors++
	default:
		s.Failed++
	}
}

// Processed returns the number of pages that reached an outcome
func (s Summary) Processed() int {
	return s.Downloaded + s.Skipped + s.NotFound + s.HTTPErrors + s.Failed
}

// Missing returns the number of pages that still have no file
func (s Summary) Missing() int {
	return s.NotFound + s.HTTPErrors + s.Failed
}

func (s Summary) String() string {
	status := "Done"
	if s.Interrupted {
		status = "Interrupted"
	}
	return fmt.Sprintf("%s: %d downloaded, %d skipped, %d not found, %d http errors, %d failed in %s",
		status, s.Downloaded, s.Skipped, s.NotFound, s.HTTPErrors, s.Failed, s.Duration.Round(time.Second))
}
