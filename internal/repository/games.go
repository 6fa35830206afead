package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameIDsSince returns the ids of stored games dated at or after since
func (db *Database) GameIDsSince(ctx context.Context, since time.Time) (map[string]struct{}, error) {
	query := `SELECT id FROM games WHERE date >= $1`

	rows, err := db.Pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query stored games: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan stored games: %w", err)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// GamesMissing returns the ids of games dated in [from, to) that have no row
// in the given event-keyed table (odds or predictions), earliest first
func (db *Database) GamesMissing(ctx context.Context, table string, from, to time.Time) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT g.id
		FROM games g
		WHERE g.date >= $1 AND g.date < $2
			AND NOT EXISTS (SELECT 1 FROM %s t WHERE t.event_id = g.id)
		ORDER BY g.date, g.id
	`, quote(table))

	rows, err := db.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query games missing %s: %w", table, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan games missing %s: %w", table, err)
	}

	log.Debug().
		Str("table", table).
		Time("from", from).
		Time("to", to).
		Int("count", len(ids)).
		Msg("Eligible games loaded")

	return ids, nil
}
