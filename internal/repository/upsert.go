package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"ncaam/ingestion/internal/metrics"
	"ncaam/ingestion/internal/models"
)

// maxParams is the PostgreSQL bind parameter limit of one statement.
const maxParams = 65535

// Upsert writes records into table with whole-row replacement: a row whose
// key already exists has every non-key column overwritten. Records sharing a
// key are collapsed, the last one wins. All statements for the table run in
// one transaction, so a failure leaves the table as it was.
func (db *Database) Upsert(ctx context.Context, table models.Table, records []models.Record) (models.UpsertResult, error) {
	var result models.UpsertResult
	if len(records) == 0 {
		return result, nil
	}
	if err := table.Validate(); err != nil {
		return result, err
	}

	rows := dedupe(records)
	for i, r := range rows {
		if n := len(r.Values()); n != len(table.Columns) {
			return result, fmt.Errorf("table %s: record %d (%s) has %d values, want %d",
				table.Name, i, r.Key(), n, len(table.Columns))
		}
	}

	start := time.Now()
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		chunks := chunk(rows, rowsPerStatement(len(table.Columns)))
		for _, c := range chunks {
			batch.Queue(buildUpsert(table, len(c)), flatten(c)...)
		}

		br := tx.SendBatch(ctx, batch)
		for range chunks {
			inserted, err := countInserted(br)
			if err != nil {
				br.Close()
				return err
			}
			result.Inserted += inserted
		}
		return br.Close()
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordDBQuery("upsert", table.Name, status, time.Since(start).Seconds())
	if err != nil {
		return models.UpsertResult{}, fmt.Errorf("failed to upsert %s: %w", table.Name, err)
	}

	result.Updated = len(rows) - result.Inserted
	metrics.RecordUpsert(table.Name, len(rows))

	log.Debug().
		Str("table", table.Name).
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Dur("duration", time.Since(start)).
		Msg("Upserted rows")

	return result, nil
}

// countInserted drains one statement's RETURNING rows.
func countInserted(br pgx.BatchResults) (int, error) {
	rows, err := br.Query()
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var inserted bool
		if err := rows.Scan(&inserted); err != nil {
			return 0, err
		}
		if inserted {
			n++
		}
	}
	return n, rows.Err()
}

// buildUpsert renders a multi-row insert for rows records. The RETURNING
// clause reports whether each row was new (xmax is zero for a fresh tuple).
func buildUpsert(table models.Table, rows int) string {
	cols := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = quote(c)
	}
	keys := make([]string, len(table.Key))
	isKey := make(map[string]bool, len(table.Key))
	for i, k := range table.Key {
		keys[i] = quote(k)
		isKey[k] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", quote(table.Name), strings.Join(cols, ", "))

	param := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range table.Columns {
			if c > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", param)
			param++
		}
		b.WriteByte(')')
	}

	var set []string
	for _, c := range table.Columns {
		if !isKey[c] {
			set = append(set, fmt.Sprintf("%s = EXCLUDED.%s", quote(c), quote(c)))
		}
	}

	fmt.Fprintf(&b, " ON CONFLICT (%s) ", strings.Join(keys, ", "))
	if len(set) == 0 {
		// Key-only rows have nothing to replace; touch the key so the
		// conflicting row is still returned.
		set = append(set, fmt.Sprintf("%s = EXCLUDED.%s", keys[0], keys[0]))
	}
	b.WriteString("DO UPDATE SET ")
	b.WriteString(strings.Join(set, ", "))
	b.WriteString(" RETURNING (xmax = 0)")

	return b.String()
}

func quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// dedupe keeps one record per key. The surviving record is the last one
// seen, placed where the key first appeared.
func dedupe(records []models.Record) []models.Record {
	index := make(map[string]int, len(records))
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if i, ok := index[r.Key()]; ok {
			out[i] = r
			continue
		}
		index[r.Key()] = len(out)
		out = append(out, r)
	}
	return out
}

func rowsPerStatement(columns int) int {
	n := maxParams / columns
	if n < 1 {
		n = 1
	}
	return n
}

func chunk(records []models.Record, size int) [][]models.Record {
	var out [][]models.Record
	for len(records) > size {
		out = append(out, records[:size])
		records = records[size:]
	}
	if len(records) > 0 {
		out = append(out, records)
	}
	return out
}

func flatten(records []models.Record) []any {
	var args []any
	for _, r := range records {
		args = append(args, r.Values()...)
	}
	return args
}
