package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncaam/ingestion/internal/models"
)

// Integration tests for database operations
// Run with: TEST_DATABASE_URL=postgres://... go test ./internal/repository/...

func setupTestDB(t *testing.T) (*Database, context.Context) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	require.NoError(t, Migrate(dsn), "Failed to migrate test database")

	db, err := Open(ctx, dsn)
	require.NoError(t, err, "Failed to connect to test database")

	_, err = db.Pool.Exec(ctx, `
		TRUNCATE seasons, season_types, teams, conferences, team_seasons, players,
			player_seasons, coaches, rankings, games, team_boxscores, player_boxscores,
			odds, predictions, update_log RESTART IDENTITY
	`)
	require.NoError(t, err, "Failed to reset test database")

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database) {
	db.Close()
}

func game(id string, date time.Time) *models.Game {
	return &models.Game{
		ID:              id,
		Date:            sql.NullTime{Time: date, Valid: true},
		StatusCompleted: sql.NullBool{Bool: true, Valid: true},
		Home:            models.GameSide{TeamID: sql.NullString{String: "52", Valid: true}},
		Away:            models.GameSide{TeamID: sql.NullString{String: "150", Valid: true}},
	}
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// Test health check
	err := db.Health(ctx)
	assert.NoError(t, err, "Database health check should pass")

	// Test stats
	stats := db.PoolStats()
	assert.NotNil(t, stats, "Should return connection pool stats")
	assert.GreaterOrEqual(t, stats["max_conns"].(int32), int32(1), "Should have at least 1 max connection")
}

func TestDatabase_UpsertInsertsThenReplaces(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	date := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	g := game("401", date)
	g.Home.Score = sql.NullInt64{Int64: 70, Valid: true}

	result, err := db.Upsert(ctx, models.GamesTable, []models.Record{g, game("402", date)})
	require.NoError(t, err)
	assert.Equal(t, models.UpsertResult{Inserted: 2}, result)

	g.Home.Score = sql.NullInt64{Int64: 81, Valid: true}
	result, err = db.Upsert(ctx, models.GamesTable, []models.Record{g})
	require.NoError(t, err)
	assert.Equal(t, models.UpsertResult{Updated: 1}, result)

	var score int
	require.NoError(t, db.Pool.QueryRow(ctx, `SELECT home_team_score FROM games WHERE id = '401'`).Scan(&score))
	assert.Equal(t, 81, score)
}

func TestDatabase_UpsertDuplicateKeysInOneBatch(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	first := &models.Coach{SeasonID: "2025-1", Season: 2025, TeamID: "52", FirstName: sql.NullString{String: "A", Valid: true}}
	last := &models.Coach{SeasonID: "2025-1", Season: 2025, TeamID: "52", FirstName: sql.NullString{String: "B", Valid: true}}

	result, err := db.Upsert(ctx, models.CoachesTable, []models.Record{first, last})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total())

	var name string
	require.NoError(t, db.Pool.QueryRow(ctx, `SELECT "firstName" FROM coaches WHERE season_id = '2025-1'`).Scan(&name))
	assert.Equal(t, "B", name)
}

func TestDatabase_LogRun(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	entry := &models.UpdateLog{
		TableName:       "games",
		Operation:       models.OperationDailyUpdate,
		RecordsAdded:    1,
		APICalls:        3,
		DurationSeconds: 1.5,
	}
	require.NoError(t, db.LogRun(ctx, entry))
	assert.NotZero(t, entry.ID)

	runs, err := db.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "games", runs[0].TableName)
	assert.Equal(t, int64(3), runs[0].APICalls)
}

func TestDatabase_EligibilityQueries(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	today := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	_, err := db.Upsert(ctx, models.GamesTable, []models.Record{
		game("400", today.AddDate(0, 0, -5)),
		game("401", today.Add(18*time.Hour)),
		game("402", today.AddDate(0, 0, 3)),
		game("403", today.AddDate(0, 0, 10)),
	})
	require.NoError(t, err)
	_, err = db.Upsert(ctx, models.OddsTable, []models.Record{
		&models.Odds{EventProviderID: "402_58", EventID: "402"},
	})
	require.NoError(t, err)

	ids, err := db.GameIDsSince(ctx, today)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	assert.NotContains(t, ids, "400")

	missing, err := db.GamesMissing(ctx, models.OddsTable.Name, today, today.AddDate(0, 0, 8))
	require.NoError(t, err)
	assert.Equal(t, []string{"401"}, missing)

	missing, err = db.GamesMissing(ctx, models.PredictionsTable.Name, today, today.AddDate(0, 0, 8))
	require.NoError(t, err)
	assert.Equal(t, []string{"401", "402"}, missing)
}

func TestDatabase_ReferenceQueries(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.Upsert(ctx, models.SeasonsTable, []models.Record{
		&models.Season{Year: 2025}, &models.Season{Year: 2026},
	})
	require.NoError(t, err)
	_, err = db.Upsert(ctx, models.ConferencesTable, []models.Record{
		&models.Conference{SeasonID: "2026-50", ID: "50", Season: 2026, HasChildren: true},
		&models.Conference{SeasonID: "2026-2", ID: "2", Season: 2026, Parent: sql.NullString{String: "50", Valid: true}},
		&models.Conference{SeasonID: "2025-2", ID: "2", Season: 2025},
	})
	require.NoError(t, err)
	_, err = db.Upsert(ctx, models.TeamSeasonsTable, []models.Record{
		&models.TeamSeason{SeasonConfTeam: "2026-2-52", Season: 2026, ConferenceID: "2", TeamID: "52"},
		&models.TeamSeason{SeasonConfTeam: "2026-2-150", Season: 2026, ConferenceID: "2", TeamID: "150"},
	})
	require.NoError(t, err)
	_, err = db.Upsert(ctx, models.CoachesTable, []models.Record{
		&models.Coach{SeasonID: "2026-9", Season: 2026, TeamID: "52"},
	})
	require.NoError(t, err)

	years, err := db.SeasonYears(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2026, 2025}, years)

	confs, err := db.LeafConferences(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, []models.ConferenceRef{{Season: 2026, ConferenceID: "2"}}, confs)

	teams, err := db.TeamSeasons(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, []models.TeamSeasonRef{{Season: 2026, TeamID: "150"}, {Season: 2026, TeamID: "52"}}, teams)

	stored, err := db.StoredTeamIDs(ctx, models.CoachesTable.Name, 2026)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"52": {}}, stored)
}
