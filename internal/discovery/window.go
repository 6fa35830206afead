// Package discovery works out which games have not been ingested yet by
// listing upstream events month by month and subtracting the stored set.
package discovery

import (
	"time"

	"github.com/cockroachdb/errors"
)

// ErrInvalidWindow is returned when a window ends before it starts.
var ErrInvalidWindow = errors.New("window end precedes start")

// Window is the half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow validates and builds a window.
func NewWindow(start, end time.Time) (Window, error) {
	if end.Before(start) {
		return Window{}, errors.Wrapf(ErrInvalidWindow, "%s .. %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Window{Start: start, End: end}, nil
}

// Lookback returns the window covering the last days days up to now.
func Lookback(days int, now time.Time) Window {
	if days < 0 {
		days = 0
	}
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

// Empty reports a zero-length window.
func (w Window) Empty() bool {
	return !w.End.After(w.Start)
}

// MonthBuckets returns the YYYYMM month keys touched by the window, from the
// start month through the end month inclusive. An empty window has none.
func (w Window) MonthBuckets() []string {
	if w.Empty() {
		return nil
	}
	start := w.Start.UTC()
	end := w.End.UTC()
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)

	var buckets []string
	for !cur.After(last) {
		buckets = append(buckets, cur.Format("200601"))
		cur = cur.AddDate(0, 1, 0)
	}
	return buckets
}
