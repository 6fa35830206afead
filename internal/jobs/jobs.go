// Package jobs defines one pipeline job per entity kind: where its
// candidates come from, how one candidate is fetched and normalized, and
// which tables receive the rows.
package jobs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"ncaam/ingestion/internal/client"
	"ncaam/ingestion/internal/config"
	"ncaam/ingestion/internal/discovery"
	"ncaam/ingestion/internal/models"
	"ncaam/ingestion/internal/normalize"
	"ncaam/ingestion/internal/pipeline"
)

// DivisionIGroup is the upstream group every Division I conference hangs off.
const DivisionIGroup = "50"

// Store is everything the jobs read from and write to the relational store.
type Store interface {
	pipeline.Store
	discovery.GameStore
	GamesMissing(ctx context.Context, table string, from, to time.Time) ([]string, error)
	SeasonYears(ctx context.Context) ([]int, error)
	LeafConferences(ctx context.Context, season int) ([]models.ConferenceRef, error)
	TeamSeasons(ctx context.Context, season int) ([]models.TeamSeasonRef, error)
	StoredTeamIDs(ctx context.Context, table string, season int) (map[string]struct{}, error)
}

// Settings are the windows and upstream filters the jobs use.
type Settings struct {
	EventsGroup            int
	EventsPageLimit        int
	RootGroup              string
	DailyLookbackDays      int
	OddsWindowDays         int
	PredictionLookbackDays int
	PredictionWindowDays   int
}

// SettingsFromConfig reads Settings from the service configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		EventsGroup:            cfg.EventsGroup,
		EventsPageLimit:        cfg.EventsPageLimit,
		RootGroup:              DivisionIGroup,
		DailyLookbackDays:      cfg.DailyLookbackDays,
		OddsWindowDays:         cfg.OddsWindowDays,
		PredictionLookbackDays: cfg.PredictionLookbackDays,
		PredictionWindowDays:   cfg.PredictionWindowDays,
	}
}

// Catalog builds jobs bound to one store.
type Catalog struct {
	store    Store
	settings Settings
	// Now is the clock the windows are computed from.
	Now func() time.Time
}

// NewCatalog creates a job catalog.
func NewCatalog(store Store, settings Settings) *Catalog {
	if settings.RootGroup == "" {
		settings.RootGroup = DivisionIGroup
	}
	return &Catalog{
		store:    store,
		settings: settings,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// today is midnight UTC of the catalog clock.
func (c *Catalog) today() time.Time {
	now := c.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// seasons returns [season] or, when season is zero, every stored season.
func (c *Catalog) seasons(ctx context.Context, season int) ([]int, error) {
	if season > 0 {
		return []int{season}, nil
	}
	years, err := c.store.SeasonYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load seasons: %w", err)
	}
	return years, nil
}

// absentOr maps a 404 to Absent and any other error to Failed.
func absentOr(id string, err error) pipeline.Outcome {
	if errors.Is(err, client.ErrNotFound) {
		return pipeline.Absent(id)
	}
	return pipeline.Failed(id, err)
}

// followRefs fetches every $ref of a collection document. Reference
// documents go through the response cache when cached is set.
func followRefs(ctx context.Context, c *client.Client, collection map[string]any, cached bool) ([]string, []map[string]any, error) {
	refs, _ := normalize.RefPage(collection)
	docs := make([]map[string]any, 0, len(refs))
	for _, ref := range refs {
		var (
			doc map[string]any
			err error
		)
		if cached {
			doc, err = c.GetRefCached(ctx, ref)
		} else {
			doc, err = c.GetRef(ctx, ref)
		}
		if err != nil {
			return nil, nil, err
		}
		docs = append(docs, doc)
	}
	return refs, docs, nil
}

// splitSeasonID parses a "{season}:{id}" candidate.
func splitSeasonID(candidate string) (int, string, error) {
	season, id, ok := strings.Cut(candidate, ":")
	if !ok || id == "" {
		return 0, "", fmt.Errorf("malformed candidate %q", candidate)
	}
	year, err := strconv.Atoi(season)
	if err != nil {
		return 0, "", fmt.Errorf("malformed candidate %q: %w", candidate, err)
	}
	return year, id, nil
}

func records[T models.Record](rows []T) []models.Record {
	out := make([]models.Record, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

func logSkipped(job string, err error, fields map[string]any) {
	log.Warn().Err(err).Str("job", job).Fields(fields).Msg("Discovery step failed, skipping")
}
