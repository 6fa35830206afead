package discovery

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"ncaam/ingestion/internal/normalize"
)

// EventLister is the slice of the upstream client discovery needs.
type EventLister interface {
	Events(ctx context.Context, month string, group, limit, page int) (map[string]any, error)
}

// GameStore reports the games already persisted.
type GameStore interface {
	GameIDsSince(ctx context.Context, since time.Time) (map[string]struct{}, error)
}

// Engine lists upstream events per month bucket and diffs them against the store.
type Engine struct {
	events    EventLister
	store     GameStore
	group     int
	pageLimit int
}

// NewEngine creates a discovery engine. group is the upstream "groups"
// filter and pageLimit the page size of each listing request.
func NewEngine(events EventLister, store GameStore, group, pageLimit int) *Engine {
	return &Engine{
		events:    events,
		store:     store,
		group:     group,
		pageLimit: pageLimit,
	}
}

// Candidates returns the ids listed upstream for the window's month buckets
// that are not stored with a date at or after the window start. Completion is
// not checked here. A failed page is logged and skipped; only a store failure
// is returned as an error.
func (e *Engine) Candidates(ctx context.Context, w Window) ([]string, error) {
	buckets := w.MonthBuckets()
	if len(buckets) == 0 {
		return nil, nil
	}

	listed := make(map[string]struct{})
	for _, month := range buckets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.listMonth(ctx, month, listed)
	}

	stored, err := e.store.GameIDsSince(ctx, w.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored game ids: %w", err)
	}

	candidates := make([]string, 0, len(listed))
	for id := range listed {
		if _, ok := stored[id]; !ok {
			candidates = append(candidates, id)
		}
	}
	sort.Strings(candidates)

	log.Info().
		Strs("months", buckets).
		Int("listed", len(listed)).
		Int("stored", len(stored)).
		Int("candidates", len(candidates)).
		Msg("Discovery complete")

	return candidates, nil
}

// listMonth accumulates every page of one month bucket into ids.
func (e *Engine) listMonth(ctx context.Context, month string, ids map[string]struct{}) {
	pageCount := 1
	for page := 1; page <= pageCount; page++ {
		data, err := e.events.Events(ctx, month, e.group, e.pageLimit, page)
		if err != nil {
			log.Warn().
				Err(err).
				Str("month", month).
				Int("page", page).
				Msg("Event listing page failed, skipping")
			continue
		}

		refs, pages := normalize.RefPage(data)
		if page == 1 {
			pageCount = pages
		}
		for _, ref := range refs {
			if id := normalize.IDFromRef(ref, "events"); id != "" {
				ids[id] = struct{}{}
			}
		}
	}
}
