package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ncaam/ingestion/internal/models"
)

// SeasonYears returns the stored season years, newest first
func (db *Database) SeasonYears(ctx context.Context) ([]int, error) {
	rows, err := db.Pool.Query(ctx, `SELECT year FROM seasons ORDER BY year DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query seasons: %w", err)
	}
	years, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("failed to scan seasons: %w", err)
	}
	return years, nil
}

// LeafConferences returns the conferences of a season that hold teams rather
// than other conferences
func (db *Database) LeafConferences(ctx context.Context, season int) ([]models.ConferenceRef, error) {
	query := `
		SELECT id
		FROM conferences
		WHERE season = $1 AND NOT has_children
		ORDER BY id
	`

	rows, err := db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query conferences: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan conferences: %w", err)
	}

	refs := make([]models.ConferenceRef, len(ids))
	for i, id := range ids {
		refs[i] = models.ConferenceRef{Season: season, ConferenceID: id}
	}
	return refs, nil
}

// TeamSeasons returns the teams affiliated with any conference in a season
func (db *Database) TeamSeasons(ctx context.Context, season int) ([]models.TeamSeasonRef, error) {
	query := `
		SELECT DISTINCT team_id
		FROM team_seasons
		WHERE season = $1
		ORDER BY team_id
	`

	rows, err := db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query team seasons: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan team seasons: %w", err)
	}

	refs := make([]models.TeamSeasonRef, len(ids))
	for i, id := range ids {
		refs[i] = models.TeamSeasonRef{Season: season, TeamID: id}
	}
	return refs, nil
}

// StoredTeamIDs returns the team ids that already have rows in a
// season-scoped table (player_seasons or coaches)
func (db *Database) StoredTeamIDs(ctx context.Context, table string, season int) (map[string]struct{}, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT team_id
		FROM %s
		WHERE season = $1 AND team_id IS NOT NULL
	`, quote(table))

	rows, err := db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s teams: %w", table, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s teams: %w", table, err)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
