package models

import "database/sql"

// TeamBoxscoreStats are the team-level counters kept as upstream display
// strings, keyed by the upstream stat name with "-" replaced by "_".
var TeamBoxscoreStats = []string{
	"fieldGoalsMade", "fieldGoalsAttempted", "fieldGoalPct",
	"threePointFieldGoalsMade", "threePointFieldGoalsAttempted", "threePointFieldGoalPct",
	"freeThrowsMade", "freeThrowsAttempted", "freeThrowPct",
	"totalRebounds", "offensiveRebounds", "defensiveRebounds",
	"assists", "steals", "blocks", "turnovers", "teamTurnovers", "totalTurnovers",
	"technicalFouls", "flagrantFouls", "fouls", "largestLead",
}

// PlayerBoxscoreStats are the box-score labels zipped from a player's stat vector.
var PlayerBoxscoreStats = []string{
	"MIN", "FG", "3PT", "FT", "OREB", "DREB", "REB", "AST", "STL", "BLK", "TO", "PF", "PTS",
}

// TeamBoxscore is one team's box score for one game.
type TeamBoxscore struct {
	EventTeamID string // {event}_{team}
	EventID     string
	TeamID      sql.NullString
	HomeAway    sql.NullString
	Stats       map[string]sql.NullString
}

// TeamBoxscoresTable is the upsert descriptor for team_boxscores.
var TeamBoxscoresTable = Table{
	Name:    "team_boxscores",
	Key:     []string{"event_team_id"},
	Columns: append([]string{"event_team_id", "event_id", "team_id", "home_away"}, TeamBoxscoreStats...),
}

func (b *TeamBoxscore) Key() string { return b.EventTeamID }

func (b *TeamBoxscore) Values() []any {
	values := []any{b.EventTeamID, b.EventID, b.TeamID, b.HomeAway}
	for _, name := range TeamBoxscoreStats {
		values = append(values, b.Stats[name])
	}
	return values
}

// PlayerBoxscore is one athlete's appearance in one game. A did-not-play
// athlete still gets a row with DidNotPlay set.
type PlayerBoxscore struct {
	EventAthleteID       string // {event}_{athlete}
	EventID              string
	AthleteID            sql.NullString
	TeamID               sql.NullString
	Name                 sql.NullString
	Headshot             sql.NullString
	Jersey               sql.NullString
	PositionName         sql.NullString
	PositionAbbreviation sql.NullString
	PositionDisplayName  sql.NullString
	Starter              sql.NullBool
	DidNotPlay           sql.NullBool
	Ejected              sql.NullBool
	Stats                map[string]sql.NullString
}

// PlayerBoxscoresTable is the upsert descriptor for player_boxscores.
var PlayerBoxscoresTable = Table{
	Name: "player_boxscores",
	Key:  []string{"event_athlete_id"},
	Columns: append([]string{
		"event_athlete_id", "event_id", "athlete_id", "team_id",
		"athlete_name", "athlete_headshot", "athlete_jersey",
		"athlete_position_name", "athlete_position_abbreviation", "athlete_position_display_name",
		"athlete_starter", "athlete_did_not_play", "athlete_ejected",
	}, PlayerBoxscoreStats...),
}

func (b *PlayerBoxscore) Key() string { return b.EventAthleteID }

func (b *PlayerBoxscore) Values() []any {
	values := []any{
		b.EventAthleteID, b.EventID, b.AthleteID, b.TeamID,
		b.Name, b.Headshot, b.Jersey,
		b.PositionName, b.PositionAbbreviation, b.PositionDisplayName,
		b.Starter, b.DidNotPlay, b.Ejected,
	}
	for _, label := range PlayerBoxscoreStats {
		values = append(values, b.Stats[label])
	}
	return values
}
