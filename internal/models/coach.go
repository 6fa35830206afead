package models

import "database/sql"

// Coach is a head coach's tenure with a team for one season.
type Coach struct {
	SeasonID  string // {season}-{coach}
	Season    int64
	TeamID    string
	FirstName sql.NullString
	LastName  sql.NullString
}

// CoachesTable is the upsert descriptor for coaches.
var CoachesTable = Table{
	Name:    "coaches",
	Key:     []string{"season_id"},
	Columns: []string{"season_id", "season", "team_id", "firstName", "lastName"},
}

func (c *Coach) Key() string { return c.SeasonID }

func (c *Coach) Values() []any {
	return []any{c.SeasonID, c.Season, c.TeamID, c.FirstName, c.LastName}
}
