// Package memory is an in-process store with the same contract as the
// Postgres repository. Pipeline and job tests run against it.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ncaam/ingestion/internal/models"
)

// Store keeps rows per table keyed by their synthesized key.
type Store struct {
	mu     sync.Mutex
	tables map[string]map[string]models.Record
	runs   []models.UpdateLog
	nextID int64

	// FailUpsert makes Upsert return the error for the named table.
	FailUpsert map[string]error
	// FailLog makes LogRun return the error.
	FailLog error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		tables:     make(map[string]map[string]models.Record),
		FailUpsert: make(map[string]error),
	}
}

// Upsert replaces rows by key. Within one call the last record for a key wins.
func (s *Store) Upsert(_ context.Context, table models.Table, records []models.Record) (models.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result models.UpsertResult
	if err := s.FailUpsert[table.Name]; err != nil {
		return result, err
	}
	if len(records) == 0 {
		return result, nil
	}
	if err := table.Validate(); err != nil {
		return result, err
	}

	rows := s.tables[table.Name]
	if rows == nil {
		rows = make(map[string]models.Record)
		s.tables[table.Name] = rows
	}

	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if n := len(r.Values()); n != len(table.Columns) {
			return models.UpsertResult{}, fmt.Errorf("table %s: record %s has %d values, want %d",
				table.Name, r.Key(), n, len(table.Columns))
		}
		if !seen[r.Key()] {
			seen[r.Key()] = true
			if _, ok := rows[r.Key()]; ok {
				result.Updated++
			} else {
				result.Inserted++
			}
		}
	}
	for _, r := range records {
		rows[r.Key()] = r
	}
	return result, nil
}

// LogRun appends an update_log entry.
func (s *Store) LogRun(_ context.Context, entry *models.UpdateLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailLog != nil {
		return s.FailLog
	}
	s.nextID++
	entry.ID = s.nextID
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	s.runs = append(s.runs, *entry)
	return nil
}

// Runs returns the logged runs in insertion order.
func (s *Store) Runs() []models.UpdateLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.UpdateLog(nil), s.runs...)
}

// Rows returns a table's rows ordered by key.
func (s *Store) Rows(table string) []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[table]
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]models.Record, len(keys))
	for i, k := range keys {
		out[i] = rows[k]
	}
	return out
}

// Count returns the number of rows in a table.
func (s *Store) Count(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables[table])
}

// Get returns one row by key.
func (s *Store) Get(table, key string) (models.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.tables[table][key]
	return r, ok
}

// GameIDsSince returns stored games dated at or after since.
func (s *Store) GameIDsSince(_ context.Context, since time.Time) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]struct{})
	for id, r := range s.tables[models.GamesTable.Name] {
		g, ok := r.(*models.Game)
		if ok && g.Date.Valid && !g.Date.Time.Before(since) {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

// GamesMissing returns games dated in [from, to) without a row in table.
func (s *Store) GamesMissing(_ context.Context, table string, from, to time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	covered := make(map[string]bool)
	for _, r := range s.tables[table] {
		switch v := r.(type) {
		case *models.Odds:
			covered[v.EventID] = true
		case *models.Prediction:
			covered[v.EventID] = true
		}
	}

	var games []*models.Game
	for _, r := range s.tables[models.GamesTable.Name] {
		g, ok := r.(*models.Game)
		if !ok || !g.Date.Valid || covered[g.ID] {
			continue
		}
		if !g.Date.Time.Before(from) && g.Date.Time.Before(to) {
			games = append(games, g)
		}
	}
	sort.Slice(games, func(i, j int) bool {
		if !games[i].Date.Time.Equal(games[j].Date.Time) {
			return games[i].Date.Time.Before(games[j].Date.Time)
		}
		return games[i].ID < games[j].ID
	})

	ids := make([]string, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}
	return ids, nil
}

// SeasonYears returns stored season years, newest first.
func (s *Store) SeasonYears(_ context.Context) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var years []int
	for _, r := range s.tables[models.SeasonsTable.Name] {
		if season, ok := r.(*models.Season); ok {
			years = append(years, int(season.Year))
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// LeafConferences returns the season's conferences without children.
func (s *Store) LeafConferences(_ context.Context, season int) ([]models.ConferenceRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var refs []models.ConferenceRef
	for _, r := range s.tables[models.ConferencesTable.Name] {
		c, ok := r.(*models.Conference)
		if ok && int(c.Season) == season && !c.HasChildren {
			refs = append(refs, models.ConferenceRef{Season: season, ConferenceID: c.ID})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ConferenceID < refs[j].ConferenceID })
	return refs, nil
}

// TeamSeasons returns the distinct teams affiliated in a season.
func (s *Store) TeamSeasons(_ context.Context, season int) ([]models.TeamSeasonRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	var refs []models.TeamSeasonRef
	for _, r := range s.tables[models.TeamSeasonsTable.Name] {
		ts, ok := r.(*models.TeamSeason)
		if ok && int(ts.Season) == season && !seen[ts.TeamID] {
			seen[ts.TeamID] = true
			refs = append(refs, models.TeamSeasonRef{Season: season, TeamID: ts.TeamID})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].TeamID < refs[j].TeamID })
	return refs, nil
}

// StoredTeamIDs returns team ids with rows for season in table.
func (s *Store) StoredTeamIDs(_ context.Context, table string, season int) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]struct{})
	for _, r := range s.tables[table] {
		switch v := r.(type) {
		case *models.PlayerSeason:
			if int(v.Season) == season && v.TeamID.Valid {
				out[v.TeamID.String] = struct{}{}
			}
		case *models.Coach:
			if int(v.Season) == season && v.TeamID != "" {
				out[v.TeamID] = struct{}{}
			}
		}
	}
	return out, nil
}
