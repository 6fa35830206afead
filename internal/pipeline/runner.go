// Package pipeline is the generic discover, fetch, normalize and upsert loop
// shared by every entity kind.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ncaam/ingestion/internal/client"
	"ncaam/ingestion/internal/errlog"
	"ncaam/ingestion/internal/metrics"
	"ncaam/ingestion/internal/models"
)

// Store is the write side of the relational store.
type Store interface {
	Upsert(ctx context.Context, table models.Table, records []models.Record) (models.UpsertResult, error)
	LogRun(ctx context.Context, entry *models.UpdateLog) error
}

// DiscoverFunc produces the candidate identifiers of a run.
type DiscoverFunc func(ctx context.Context, c *client.Client) ([]string, error)

// Job describes one entity kind: how to find candidates, how to fetch one,
// and where the rows go. Tables are written in order; the first is the one
// the run is logged against.
type Job struct {
	Name      string
	Operation string
	ErrorKind string
	Tables    []models.Table
	Discover  DiscoverFunc
	Fetch     FetchFunc
}

// Validate checks the job is runnable.
func (j Job) Validate() error {
	if j.Name == "" || j.Discover == nil || j.Fetch == nil {
		return fmt.Errorf("job %q is incomplete", j.Name)
	}
	if len(j.Tables) == 0 {
		return fmt.Errorf("job %s declares no tables", j.Name)
	}
	for _, t := range j.Tables {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("job %s: %w", j.Name, err)
		}
	}
	return nil
}

// Summary is the statistics of one run.
type Summary struct {
	Job            string
	Operation      string
	Table          string
	Candidates     int
	Complete       int
	Incomplete     int
	Absent         int
	Errors         int
	Written        map[string]models.UpsertResult
	RecordsAdded   int
	RecordsUpdated int
	APICalls       int64
	Duration       time.Duration
}

// Add folds other into s, for sequences of runs reported together.
func (s *Summary) Add(other *Summary) {
	s.Candidates += other.Candidates
	s.Complete += other.Complete
	s.Incomplete += other.Incomplete
	s.Absent += other.Absent
	s.Errors += other.Errors
	s.RecordsAdded += other.RecordsAdded
	s.RecordsUpdated += other.RecordsUpdated
	s.APICalls += other.APICalls
	s.Duration += other.Duration
	if s.Written == nil {
		s.Written = make(map[string]models.UpsertResult)
	}
	for table, r := range other.Written {
		w := s.Written[table]
		w.Add(r)
		s.Written[table] = w
	}
}

// Runner executes jobs against a client pool and a store.
type Runner struct {
	Pool    *client.Pool
	Store   Store
	Errors  *errlog.Sink
	Workers int
	// Quiet suppresses progress lines; the summary is still logged.
	Quiet bool
}

// Run discovers candidates, fetches them in parallel, writes every
// completed batch table by table and appends one update_log row. Per-id
// failures are counted, not returned. A discovery or store failure aborts
// the run with an error and no log row.
func (r *Runner) Run(ctx context.Context, job Job) (*Summary, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	callsBefore := r.Pool.Calls()
	summary := &Summary{
		Job:       job.Name,
		Operation: job.Operation,
		Table:     job.Tables[0].Name,
		Written:   make(map[string]models.UpsertResult),
	}

	ids, err := r.discover(ctx, job)
	if err != nil {
		r.fail(job, start)
		return nil, fmt.Errorf("%s discovery failed: %w", job.Name, err)
	}
	summary.Candidates = len(ids)

	if !r.Quiet {
		log.Info().
			Str("job", job.Name).
			Int("candidates", len(ids)).
			Msg("Fetching candidates")
	}

	outcomes, err := Orchestrate(ctx, r.Pool, r.Workers, ids, job.Fetch, r.progress(job.Name))
	if err != nil {
		r.fail(job, start)
		return nil, err
	}

	batch := r.collect(job, outcomes, summary)

	for _, table := range job.Tables {
		records := batch[table.Name]
		delete(batch, table.Name)
		result, err := r.Store.Upsert(ctx, table, records)
		if err != nil {
			r.fail(job, start)
			return nil, fmt.Errorf("%s write failed: %w", job.Name, err)
		}
		summary.Written[table.Name] = result
	}
	for table := range batch {
		r.fail(job, start)
		return nil, fmt.Errorf("job %s produced rows for undeclared table %s", job.Name, table)
	}

	primary := summary.Written[summary.Table]
	summary.RecordsAdded = primary.Inserted
	summary.RecordsUpdated = primary.Updated
	summary.APICalls = r.Pool.Calls() - callsBefore
	summary.Duration = time.Since(start)

	entry := &models.UpdateLog{
		Timestamp:       time.Now().UTC(),
		TableName:       summary.Table,
		Operation:       job.Operation,
		RecordsAdded:    summary.RecordsAdded,
		RecordsUpdated:  summary.RecordsUpdated,
		APICalls:        summary.APICalls,
		DurationSeconds: summary.Duration.Seconds(),
		ErrorCount:      summary.Errors,
	}
	if err := r.Store.LogRun(ctx, entry); err != nil {
		r.fail(job, start)
		return nil, err
	}

	metrics.RecordRun(job.Name, "success", summary.Duration.Seconds())
	summary.log()

	return summary, nil
}

func (r *Runner) discover(ctx context.Context, job Job) ([]string, error) {
	c, err := r.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Pool.Release(c)
	return job.Discover(ctx, c)
}

// collect tallies outcomes and merges every complete batch.
func (r *Runner) collect(job Job, outcomes []Outcome, summary *Summary) models.Batch {
	batch := make(models.Batch)
	for _, o := range outcomes {
		metrics.RecordOutcome(job.Name, o.Kind.String())
		switch o.Kind {
		case KindComplete:
			summary.Complete++
			batch.Merge(o.Batch)
		case KindIncomplete:
			summary.Incomplete++
		case KindAbsent:
			summary.Absent++
		default:
			summary.Errors++
			if r.Errors != nil {
				r.Errors.Record(job.ErrorKind, o.ID, o.Err)
			}
			log.Warn().
				Err(o.Err).
				Str("job", job.Name).
				Str("id", o.ID).
				Msg("Fetch failed")
		}
	}
	return batch
}

func (r *Runner) progress(job string) ProgressFunc {
	if r.Quiet {
		return nil
	}
	return func(done, total int) {
		step := total / 10
		if step == 0 {
			step = 1
		}
		if done%step == 0 || done == total {
			log.Info().
				Str("job", job).
				Int("done", done).
				Int("total", total).
				Msg("Fetch progress")
		}
	}
}

func (r *Runner) fail(job Job, start time.Time) {
	metrics.RecordRun(job.Name, "error", time.Since(start).Seconds())
	metrics.RecordError("pipeline", job.Name)
}

func (s *Summary) log() {
	event := log.Info().
		Str("job", s.Job).
		Str("operation", s.Operation).
		Int("candidates", s.Candidates).
		Int("complete", s.Complete).
		Int("incomplete", s.Incomplete).
		Int("absent", s.Absent).
		Int("errors", s.Errors).
		Int("records_added", s.RecordsAdded).
		Int("records_updated", s.RecordsUpdated).
		Int64("api_calls", s.APICalls).
		Dur("duration", s.Duration)
	for table, w := range s.Written {
		event = event.Int("rows_"+table, w.Total())
	}
	event.Msg("Run complete")
}
