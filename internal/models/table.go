package models

import (
	"database/sql"
	"fmt"
	"time"
)

// Table describes an upsert target: its name, primary key columns and the
// full column list in the order a Record returns its values.
type Table struct {
	Name    string
	Key     []string
	Columns []string
}

// Record is one normalized row destined for a Table.
type Record interface {
	// Key is the synthesized primary key, used to deduplicate a batch.
	Key() string
	// Values returns one value per Table column, in column order.
	Values() []any
}

// Batch groups records by table name.
type Batch map[string][]Record

// Add appends records to a table's slice.
func (b Batch) Add(table string, records ...Record) {
	if len(records) == 0 {
		return
	}
	b[table] = append(b[table], records...)
}

// Merge appends every table slice of other into b.
func (b Batch) Merge(other Batch) {
	for table, records := range other {
		b.Add(table, records...)
	}
}

// UpsertResult splits the rows written by one upsert into new and replaced.
type UpsertResult struct {
	Inserted int
	Updated  int
}

// Total is the number of distinct rows written.
func (r UpsertResult) Total() int { return r.Inserted + r.Updated }

// Add accumulates other into r.
func (r *UpsertResult) Add(other UpsertResult) {
	r.Inserted += other.Inserted
	r.Updated += other.Updated
}

// Count returns the number of records queued for table.
func (b Batch) Count(table string) int {
	return len(b[table])
}

// Validate checks that the key columns are part of the column list.
func (t Table) Validate() error {
	if t.Name == "" || len(t.Columns) == 0 || len(t.Key) == 0 {
		return fmt.Errorf("table descriptor %q is incomplete", t.Name)
	}
	cols := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		cols[c] = struct{}{}
	}
	for _, k := range t.Key {
		if _, ok := cols[k]; !ok {
			return fmt.Errorf("table %s: key column %q not in column list", t.Name, k)
		}
	}
	return nil
}

// String helpers for building nullable fields from normalized values.

func NullString(s string, ok bool) sql.NullString {
	return sql.NullString{String: s, Valid: ok}
}

func NullInt(v int64, ok bool) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: ok}
}

func NullFloat(v float64, ok bool) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: ok}
}

func NullBool(v bool, ok bool) sql.NullBool {
	return sql.NullBool{Bool: v, Valid: ok}
}

func NullTime(t time.Time, ok bool) sql.NullTime {
	return sql.NullTime{Time: t, Valid: ok}
}
