package models

import "database/sql"

// Game is the central fact row. The home and away competitors are stored
// flattened onto the row rather than referenced.
type Game struct {
	ID                      string
	UID                     sql.NullString
	SeasonYear              sql.NullInt64
	SeasonType              sql.NullInt64
	Week                    sql.NullInt64
	GameNote                sql.NullString
	TimeValid               sql.NullBool
	Date                    sql.NullTime
	IsNeutralSite           sql.NullBool
	IsConferenceCompetition sql.NullBool
	StatusID                sql.NullString
	StatusName              sql.NullString
	StatusState             sql.NullString
	StatusCompleted         sql.NullBool
	StatusDescription       sql.NullString
	StatusDetail            sql.NullString
	StatusShortDetail       sql.NullString
	TournamentID            sql.NullString
	VenueID                 sql.NullString
	Attendance              sql.NullInt64
	Officials               sql.NullString // JSON

	Home GameSide
	Away GameSide
}

// GameSide is one competitor's snapshot as of the game.
type GameSide struct {
	TeamID         sql.NullString
	Winner         sql.NullBool
	Score          sql.NullInt64
	Linescores     sql.NullString // JSON
	Records        sql.NullString // JSON
	GUID           sql.NullString
	UID            sql.NullString
	Location       sql.NullString
	Name           sql.NullString
	Abbreviation   sql.NullString
	Nickname       sql.NullString
	DisplayName    sql.NullString
	Color          sql.NullString
	AlternateColor sql.NullString
	Logos          sql.NullString // JSON
	ConferenceID   sql.NullString
	ConferenceSlug sql.NullString
}

var gameSideColumns = []string{
	"team_id", "team_winner", "team_score", "linescores", "team_records",
	"team_guid", "team_uid", "team_location", "team_name", "team_abbreviation",
	"team_nickname", "team_displayName", "team_color", "team_alternate_color",
	"team_logos", "team_conference_id", "team_conference_slug",
}

// GamesTable is the upsert descriptor for games.
var GamesTable = Table{
	Name: "games",
	Key:  []string{"id"},
	Columns: append(append([]string{
		"id", "uid", "season_year", "season_type", "week", "game_note", "timeValid", "date",
		"is_neutral_site", "is_conference_competition",
		"event_status_id", "event_status_name", "event_status_state", "event_status_completed",
		"event_status_description", "event_status_detail", "event_status_short_detail",
		"event_tournament_id", "venue_id", "attendance", "officials",
	}, prefixed("home_", gameSideColumns)...), prefixed("away_", gameSideColumns)...),
}

func (g *Game) Key() string { return g.ID }

func (g *Game) Values() []any {
	values := []any{
		g.ID, g.UID, g.SeasonYear, g.SeasonType, g.Week, g.GameNote, g.TimeValid, g.Date,
		g.IsNeutralSite, g.IsConferenceCompetition,
		g.StatusID, g.StatusName, g.StatusState, g.StatusCompleted,
		g.StatusDescription, g.StatusDetail, g.StatusShortDetail,
		g.TournamentID, g.VenueID, g.Attendance, g.Officials,
	}
	values = append(values, g.Home.values()...)
	return append(values, g.Away.values()...)
}

func (s GameSide) values() []any {
	return []any{
		s.TeamID, s.Winner, s.Score, s.Linescores, s.Records,
		s.GUID, s.UID, s.Location, s.Name, s.Abbreviation,
		s.Nickname, s.DisplayName, s.Color, s.AlternateColor,
		s.Logos, s.ConferenceID, s.ConferenceSlug,
	}
}

func prefixed(prefix string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = prefix + c
	}
	return out
}
