package models

import (
	"database/sql"
	"fmt"
	"time"
)

// Season is one college basketball season, named by the year it ends.
type Season struct {
	Year        int64
	StartDate   sql.NullTime
	EndDate     sql.NullTime
	DisplayName sql.NullString
}

// SeasonsTable is the upsert descriptor for seasons.
var SeasonsTable = Table{
	Name:    "seasons",
	Key:     []string{"year"},
	Columns: []string{"year", "startDate", "endDate", "displayName"},
}

func (s *Season) Key() string { return fmt.Sprintf("%d", s.Year) }

func (s *Season) Values() []any {
	return []any{s.Year, s.StartDate, s.EndDate, s.DisplayName}
}

// SeasonType is a phase of a season (preseason, regular, postseason).
type SeasonType struct {
	SeasonID  string // {year}-{type}
	Year      int64
	TypeID    sql.NullInt64
	Name      sql.NullString
	StartDate sql.NullTime
	EndDate   sql.NullTime
}

// SeasonTypesTable is the upsert descriptor for season_types.
var SeasonTypesTable = Table{
	Name:    "season_types",
	Key:     []string{"season_id"},
	Columns: []string{"season_id", "year", "type_id", "name", "startDate", "endDate"},
}

func (s *SeasonType) Key() string { return s.SeasonID }

func (s *SeasonType) Values() []any {
	return []any{s.SeasonID, s.Year, s.TypeID, s.Name, s.StartDate, s.EndDate}
}

// CurrentSeason returns the season in progress at t. Seasons roll over in July.
func CurrentSeason(t time.Time) int {
	if t.Month() >= time.July {
		return t.Year() + 1
	}
	return t.Year()
}
