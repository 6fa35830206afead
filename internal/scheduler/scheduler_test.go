package scheduler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncaam/ingestion/internal/client"
	"ncaam/ingestion/internal/config"
	"ncaam/ingestion/internal/jobs"
	"ncaam/ingestion/internal/pipeline"
	"ncaam/ingestion/internal/repository/memory"
)

// newTestScheduler wires a scheduler to an upstream that has nothing.
func newTestScheduler(t *testing.T, cfg *config.Config) (*Scheduler, *memory.Store) {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	store := memory.New()
	pool := client.NewPool(1, client.Options{
		CoreBaseURL: srv.URL,
		SiteBaseURL: srv.URL,
		Timeout:     5 * time.Second,
		RetryDelay:  time.Millisecond,
	})
	catalog := jobs.NewCatalog(store, jobs.Settings{EventsGroup: 50, EventsPageLimit: 100, OddsWindowDays: 7, PredictionWindowDays: 7})
	catalog.Now = func() time.Time { return time.Date(2025, 12, 2, 12, 0, 0, 0, time.UTC) }
	runner := &pipeline.Runner{Pool: pool, Store: store, Workers: 1, Quiet: true}
	return New(cfg, runner, catalog), store
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	s, _ := newTestScheduler(t, &config.Config{DailyUpdateCron: "not a cron", ReferenceRefreshCron: "0 4 * * 1"})
	assert.Error(t, s.Start(context.Background()))

	s, _ = newTestScheduler(t, &config.Config{DailyUpdateCron: "0 6 * * *", ReferenceRefreshCron: "61 * * * *"})
	assert.Error(t, s.Start(context.Background()))
}

func TestStartStop(t *testing.T) {
	s, _ := newTestScheduler(t, &config.Config{DailyUpdateCron: "0 6 * * *", ReferenceRefreshCron: "0 4 * * 1"})
	require.NoError(t, s.Start(context.Background()))
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop()
}

func TestRunDaily_LogsEveryRun(t *testing.T) {
	s, store := newTestScheduler(t, &config.Config{DailyLookbackDays: 2})

	summary, err := s.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Len(t, summary.Runs, 3)
	assert.Len(t, store.Runs(), 3)
}

func TestRefreshReference_ContinuesPastFailures(t *testing.T) {
	s, store := newTestScheduler(t, &config.Config{})

	err := s.RefreshReference(context.Background())
	require.Error(t, err, "season listing is unavailable")
	assert.Contains(t, err.Error(), "seasons")

	var tables []string
	for _, run := range store.Runs() {
		tables = append(tables, run.TableName)
	}
	assert.Equal(t, []string{"teams", "conferences", "team_seasons", "player_seasons", "coaches", "rankings"}, tables)
}

func TestExclusive_SkipsOverlappingRuns(t *testing.T) {
	s, _ := newTestScheduler(t, &config.Config{})
	s.running.Lock()
	defer s.running.Unlock()

	ran := false
	s.exclusive("daily_update", func() error {
		ran = true
		return nil
	})
	assert.False(t, ran)
}
