package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ncaam/ingestion/internal/metrics"
	"ncaam/ingestion/internal/models"
)

// LogRun appends one update_log row and stores the generated id on entry
func (db *Database) LogRun(ctx context.Context, entry *models.UpdateLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO update_log (
			timestamp, table_name, operation, records_added, records_updated,
			api_calls, duration_seconds, error_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	start := time.Now()
	err := db.Pool.QueryRow(
		ctx, query,
		entry.Timestamp, entry.TableName, entry.Operation, entry.RecordsAdded, entry.RecordsUpdated,
		entry.APICalls, entry.DurationSeconds, entry.ErrorCount,
	).Scan(&entry.ID)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordDBQuery("insert", "update_log", status, time.Since(start).Seconds())

	if err != nil {
		return fmt.Errorf("failed to write update log: %w", err)
	}

	log.Debug().
		Int64("id", entry.ID).
		Str("table", entry.TableName).
		Str("operation", entry.Operation).
		Msg("Update log written")

	return nil
}

// RecentRuns returns the latest update_log rows, newest first
func (db *Database) RecentRuns(ctx context.Context, limit int) ([]*models.UpdateLog, error) {
	query := `
		SELECT id, timestamp, table_name, operation, records_added, records_updated,
			api_calls, duration_seconds, error_count
		FROM update_log
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list update log: %w", err)
	}
	defer rows.Close()

	var runs []*models.UpdateLog
	for rows.Next() {
		run := &models.UpdateLog{}
		if err := rows.Scan(
			&run.ID, &run.Timestamp, &run.TableName, &run.Operation, &run.RecordsAdded, &run.RecordsUpdated,
			&run.APICalls, &run.DurationSeconds, &run.ErrorCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan update log: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
