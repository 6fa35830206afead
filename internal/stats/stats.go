// Package stats parses the display-string statistics stored in box score
// and ranking columns into numbers for downstream consumers.
package stats

import (
	"fmt"
	"strconv"
	"strings"
)

// MadeAttempted is a shooting line such as "7-12".
type MadeAttempted struct {
	Made      int
	Attempted int
}

// Pct returns made/attempted, or 0 when nothing was attempted.
func (m MadeAttempted) Pct() float64 {
	if m.Attempted == 0 {
		return 0
	}
	return float64(m.Made) / float64(m.Attempted)
}

// ParseMadeAttempted parses "made-attempted". Made may not exceed attempted.
func ParseMadeAttempted(s string) (MadeAttempted, error) {
	made, attempted, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return MadeAttempted{}, fmt.Errorf("invalid made-attempted value %q", s)
	}
	m, err := ParseCount(made)
	if err != nil {
		return MadeAttempted{}, err
	}
	a, err := ParseCount(attempted)
	if err != nil {
		return MadeAttempted{}, err
	}
	if m > a {
		return MadeAttempted{}, fmt.Errorf("made exceeds attempted in %q", s)
	}
	return MadeAttempted{Made: m, Attempted: a}, nil
}

// ParseCount parses a non-negative integer counter.
func ParseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %q", s)
	}
	return n, nil
}

// ParsePercent parses "45.2" or "45.2%" into a fraction in [0, 1].
func ParsePercent(s string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "%")
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percent %q: %w", s, err)
	}
	if f < 0 || f > 100 {
		return 0, fmt.Errorf("percent %q out of range", s)
	}
	return f / 100, nil
}

// ParseMinutes parses a minutes-played value. Upstream sends either whole
// minutes ("31") or a clock ("31:12"); "--" and empty mean did not play.
func ParseMinutes(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "--" {
		return 0, false, nil
	}
	mins, secs, hasClock := strings.Cut(s, ":")
	m, err := ParseCount(mins)
	if err != nil {
		return 0, false, err
	}
	if !hasClock {
		return float64(m), true, nil
	}
	sec, err := ParseCount(secs)
	if err != nil || sec >= 60 {
		return 0, false, fmt.Errorf("invalid minutes %q", s)
	}
	return float64(m) + float64(sec)/60, true, nil
}

// Record is a win-loss summary such as "12-3" or "12-3-1".
type Record struct {
	Wins   int
	Losses int
	Ties   int
}

// ParseRecord parses a record summary.
func ParseRecord(s string) (Record, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) < 2 || len(parts) > 3 {
		return Record{}, fmt.Errorf("invalid record %q", s)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := ParseCount(p)
		if err != nil {
			return Record{}, err
		}
		nums[i] = n
	}
	r := Record{Wins: nums[0], Losses: nums[1]}
	if len(nums) == 3 {
		r.Ties = nums[2]
	}
	return r, nil
}
