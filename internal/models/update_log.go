package models

import "time"

// Run operations recorded in update_log.
const (
	OperationDailyUpdate = "daily_update"
	OperationBackfill    = "backfill"
	OperationRefresh     = "refresh"
)

// UpdateLog is the audit row appended after each ingestion run.
type UpdateLog struct {
	ID              int64
	Timestamp       time.Time
	TableName       string
	Operation       string
	RecordsAdded    int
	RecordsUpdated  int
	APICalls        int64
	DurationSeconds float64
	ErrorCount      int
}
