package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncaam/ingestion/internal/models"
)

func coach(season int64, id, first string) *models.Coach {
	return &models.Coach{
		SeasonID:  fmt.Sprintf("%d-%s", season, id),
		Season:    season,
		TeamID:    "52",
		FirstName: sql.NullString{String: first, Valid: true},
	}
}

func TestBuildUpsert(t *testing.T) {
	got := buildUpsert(models.CoachesTable, 2)

	want := `INSERT INTO "coaches" ("season_id", "season", "team_id", "firstName", "lastName") ` +
		`VALUES ($1, $2, $3, $4, $5), ($6, $7, $8, $9, $10) ` +
		`ON CONFLICT ("season_id") DO UPDATE SET "season" = EXCLUDED."season", "team_id" = EXCLUDED."team_id", ` +
		`"firstName" = EXCLUDED."firstName", "lastName" = EXCLUDED."lastName" RETURNING (xmax = 0)`
	assert.Equal(t, want, got)
}

func TestBuildUpsert_QuotesUpstreamLabels(t *testing.T) {
	got := buildUpsert(models.PlayerBoxscoresTable, 1)

	assert.Contains(t, got, `"3PT"`)
	assert.Contains(t, got, `"TO" = EXCLUDED."TO"`)
	assert.NotContains(t, got, `"event_athlete_id" = EXCLUDED`)
	assert.Equal(t, len(models.PlayerBoxscoresTable.Columns), strings.Count(got, "$"))
}

func TestBuildUpsert_KeyOnlyTable(t *testing.T) {
	table := models.Table{Name: "tags", Key: []string{"id"}, Columns: []string{"id"}}
	got := buildUpsert(table, 1)
	assert.True(t, strings.HasSuffix(got, `ON CONFLICT ("id") DO UPDATE SET "id" = EXCLUDED."id" RETURNING (xmax = 0)`))
}

func TestDedupe_LastWins(t *testing.T) {
	records := []models.Record{
		coach(2025, "1", "A"),
		coach(2025, "2", "B"),
		coach(2025, "1", "C"),
	}

	got := dedupe(records)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-1", got[0].Key())
	assert.Equal(t, "C", got[0].(*models.Coach).FirstName.String)
	assert.Equal(t, "2025-2", got[1].Key())
}

func TestChunk(t *testing.T) {
	var records []models.Record
	for i := 0; i < 5; i++ {
		records = append(records, coach(2025, fmt.Sprint(i), "X"))
	}

	chunks := chunk(records, 2)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 2)
	assert.Len(t, chunks[1], 2)
	assert.Len(t, chunks[2], 1)
	assert.Empty(t, chunk(nil, 2))
}

func TestRowsPerStatement_StaysUnderParamLimit(t *testing.T) {
	tables := []models.Table{
		models.GamesTable, models.TeamBoxscoresTable, models.PlayerBoxscoresTable,
		models.OddsTable, models.PredictionsTable, models.PlayerSeasonsTable,
	}
	for _, table := range tables {
		t.Run(table.Name, func(t *testing.T) {
			n := rowsPerStatement(len(table.Columns))
			assert.GreaterOrEqual(t, n, 1)
			assert.LessOrEqual(t, n*len(table.Columns), maxParams)
			assert.Greater(t, (n+1)*len(table.Columns), maxParams)
		})
	}
}

func TestFlatten(t *testing.T) {
	args := flatten([]models.Record{coach(2025, "1", "A"), coach(2025, "2", "B")})
	require.Len(t, args, 2*len(models.CoachesTable.Columns))
	assert.Equal(t, "2025-1", args[0])
	assert.Equal(t, "2025-2", args[len(models.CoachesTable.Columns)])
}

func TestMigrationURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", migrationURL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://h/db", migrationURL("postgresql://h/db"))
	assert.Equal(t, "pgx5://h/db", migrationURL("pgx5://h/db"))
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "u", Password: "p", Database: "ncaam", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/ncaam?sslmode=disable", cfg.DSN())
}
