package discovery

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageKey struct {
	month string
	page  int
}

type fakeLister struct {
	mu     sync.Mutex
	pages  map[pageKey][]string
	counts map[string]int
	fail   map[pageKey]bool
	calls  []pageKey
}

func (f *fakeLister) Events(_ context.Context, month string, group, limit, page int) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pageKey{month, page}
	f.calls = append(f.calls, key)
	if f.fail[key] {
		return nil, errors.New("upstream 503")
	}
	items := []any{}
	for _, id := range f.pages[key] {
		items = append(items, map[string]any{
			"$ref": fmt.Sprintf("http://sports.core.api.espn.com/v2/sports/basketball/leagues/mens-college-basketball/events/%s?lang=en", id),
		})
	}
	count := f.counts[month]
	if count == 0 {
		count = 1
	}
	return map[string]any{"pageCount": float64(count), "items": items}, nil
}

type fakeStore struct {
	ids   map[string]time.Time
	err   error
	since []time.Time
}

func (f *fakeStore) GameIDsSince(_ context.Context, since time.Time) (map[string]struct{}, error) {
	f.since = append(f.since, since)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]struct{})
	for id, date := range f.ids {
		if !date.Before(since) {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewWindow_RejectsInverted(t *testing.T) {
	_, err := NewWindow(day(2025, 11, 10), day(2025, 11, 9))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidWindow))

	w, err := NewWindow(day(2025, 11, 10), day(2025, 11, 10))
	require.NoError(t, err)
	assert.True(t, w.Empty())
}

func TestLookback(t *testing.T) {
	now := day(2025, 12, 2)
	w := Lookback(2, now)
	assert.Equal(t, day(2025, 11, 30), w.Start)
	assert.Equal(t, now, w.End)
	assert.True(t, Lookback(0, now).Empty())
}

func TestWindow_MonthBuckets(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  []string
	}{
		{"single month", day(2025, 11, 3), day(2025, 11, 20), []string{"202511"}},
		{"crosses month", day(2025, 11, 30), day(2025, 12, 2), []string{"202511", "202512"}},
		{"crosses year", day(2025, 12, 15), day(2026, 3, 1), []string{"202512", "202601", "202602", "202603"}},
		{"empty", day(2025, 11, 3), day(2025, 11, 3), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Window{Start: tt.start, End: tt.end}.MonthBuckets())
		})
	}
}

func TestEngine_CandidatesDiffAgainstStore(t *testing.T) {
	lister := &fakeLister{
		pages: map[pageKey][]string{
			{"202511", 1}: {"401", "402"},
			{"202512", 1}: {"403"},
			{"202512", 2}: {"404", "402"},
		},
		counts: map[string]int{"202512": 2},
	}
	store := &fakeStore{ids: map[string]time.Time{
		"401": day(2025, 11, 30),
		"404": day(2025, 11, 1), // stored before the window start
	}}
	w := Window{Start: day(2025, 11, 30), End: day(2025, 12, 2)}

	got, err := NewEngine(lister, store, 50, 1000).Candidates(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, []string{"402", "403", "404"}, got)
	assert.Equal(t, []time.Time{w.Start}, store.since)
	assert.Len(t, lister.calls, 3)
}

func TestEngine_FailedPageIsSkipped(t *testing.T) {
	lister := &fakeLister{
		pages: map[pageKey][]string{
			{"202511", 1}: {"401"},
			{"202511", 2}: {"402"},
			{"202511", 3}: {"403"},
			{"202512", 1}: {"404"},
		},
		counts: map[string]int{"202511": 3},
		fail:   map[pageKey]bool{{"202511", 2}: true, {"202512", 1}: true},
	}
	w := Window{Start: day(2025, 11, 30), End: day(2025, 12, 2)}

	got, err := NewEngine(lister, &fakeStore{}, 50, 1000).Candidates(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, []string{"401", "403"}, got)
}

func TestEngine_EmptyWindowMakesNoCalls(t *testing.T) {
	lister := &fakeLister{}
	store := &fakeStore{}
	now := day(2025, 12, 2)

	got, err := NewEngine(lister, store, 50, 1000).Candidates(context.Background(), Window{Start: now, End: now})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, lister.calls)
	assert.Empty(t, store.since)
}

func TestEngine_StoreFailure(t *testing.T) {
	lister := &fakeLister{pages: map[pageKey][]string{{"202511", 1}: {"401"}}}
	store := &fakeStore{err: errors.New("connection refused")}

	_, err := NewEngine(lister, store, 50, 1000).Candidates(context.Background(), Window{Start: day(2025, 11, 1), End: day(2025, 11, 2)})
	assert.Error(t, err)
}
