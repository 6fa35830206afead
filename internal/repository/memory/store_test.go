package memory

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncaam/ingestion/internal/models"
)

func game(id string, date time.Time) *models.Game {
	return &models.Game{ID: id, Date: sql.NullTime{Time: date, Valid: true}}
}

func TestStore_UpsertCountsInsertsAndUpdates(t *testing.T) {
	ctx := context.Background()
	s := New()
	date := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	result, err := s.Upsert(ctx, models.GamesTable, []models.Record{game("401", date), game("402", date), game("401", date)})
	require.NoError(t, err)
	assert.Equal(t, models.UpsertResult{Inserted: 2}, result)

	result, err = s.Upsert(ctx, models.GamesTable, []models.Record{game("402", date), game("403", date)})
	require.NoError(t, err)
	assert.Equal(t, models.UpsertResult{Inserted: 1, Updated: 1}, result)
	assert.Equal(t, 3, s.Count(models.GamesTable.Name))
}

func TestStore_FailUpsert(t *testing.T) {
	s := New()
	s.FailUpsert[models.GamesTable.Name] = errors.New("disk full")

	_, err := s.Upsert(context.Background(), models.GamesTable, []models.Record{game("401", time.Now())})
	assert.Error(t, err)
	assert.Zero(t, s.Count(models.GamesTable.Name))
}

func TestStore_LogRunAssignsIDs(t *testing.T) {
	s := New()
	first := &models.UpdateLog{TableName: "games"}
	second := &models.UpdateLog{TableName: "odds"}

	require.NoError(t, s.LogRun(context.Background(), first))
	require.NoError(t, s.LogRun(context.Background(), second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	runs := s.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, "odds", runs[1].TableName)
}

func TestStore_GamesMissing(t *testing.T) {
	ctx := context.Background()
	s := New()
	today := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.Upsert(ctx, models.GamesTable, []models.Record{
		game("400", today.AddDate(0, 0, -1)),
		game("402", today.AddDate(0, 0, 2)),
		game("401", today.AddDate(0, 0, 1)),
	})
	require.NoError(t, err)
	_, err = s.Upsert(ctx, models.PredictionsTable, []models.Record{&models.Prediction{EventID: "402"}})
	require.NoError(t, err)

	ids, err := s.GamesMissing(ctx, models.PredictionsTable.Name, today, today.AddDate(0, 0, 8))
	require.NoError(t, err)
	assert.Equal(t, []string{"401"}, ids)

	ids, err = s.GamesMissing(ctx, models.OddsTable.Name, today.AddDate(0, 0, -2), today.AddDate(0, 0, 8))
	require.NoError(t, err)
	assert.Equal(t, []string{"400", "401", "402"}, ids)
}

func TestStore_StoredTeamIDs(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Upsert(ctx, models.PlayerSeasonsTable, []models.Record{
		&models.PlayerSeason{SeasonPlayerID: "2026-1", Season: 2026, PlayerID: "1", TeamID: sql.NullString{String: "52", Valid: true}},
		&models.PlayerSeason{SeasonPlayerID: "2025-1", Season: 2025, PlayerID: "1", TeamID: sql.NullString{String: "150", Valid: true}},
	})
	require.NoError(t, err)

	got, err := s.StoredTeamIDs(ctx, models.PlayerSeasonsTable.Name, 2026)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"52": {}}, got)
}
