package models

import "database/sql"

// Person holds the biographical attributes shared by players and player seasons.
type Person struct {
	UID                    sql.NullString
	GUID                   sql.NullString
	FirstName              sql.NullString
	LastName               sql.NullString
	DisplayName            sql.NullString
	ShortName              sql.NullString
	Weight                 sql.NullFloat64
	DisplayWeight          sql.NullString
	Height                 sql.NullFloat64
	DisplayHeight          sql.NullString
	BirthCity              sql.NullString
	BirthState             sql.NullString
	BirthCountry           sql.NullString
	ExperienceYears        sql.NullInt64
	ExperienceDisplay      sql.NullString
	ExperienceAbbreviation sql.NullString
	Jersey                 sql.NullString
	HandType               sql.NullString
	HandAbbreviation       sql.NullString
	HandDisplay            sql.NullString
}

// Player is the latest known biographical row for an athlete.
type Player struct {
	ID string
	Person
}

// PlayersTable is the upsert descriptor for players.
var PlayersTable = Table{
	Name: "players",
	Key:  []string{"id"},
	Columns: []string{
		"id", "uid", "guid", "firstName", "lastName", "displayName", "shortName",
		"weight", "displayWeight", "height", "displayHeight",
		"birthPlace_city", "birthPlace_state", "birthPlace_country",
		"experience_years", "experience_displayValue", "experience_abbreviation",
		"jersey", "hand_type", "hand_abbreviation", "hand_displayValue",
	},
}

func (p *Player) Key() string { return p.ID }

func (p *Player) Values() []any {
	return []any{
		p.ID, p.UID, p.GUID, p.FirstName, p.LastName, p.DisplayName, p.ShortName,
		p.Weight, p.DisplayWeight, p.Height, p.DisplayHeight,
		p.BirthCity, p.BirthState, p.BirthCountry,
		p.ExperienceYears, p.ExperienceDisplay, p.ExperienceAbbreviation,
		p.Jersey, p.HandType, p.HandAbbreviation, p.HandDisplay,
	}
}

// PlayerSeason is an athlete's roster entry for one season.
type PlayerSeason struct {
	SeasonPlayerID string // {season}-{player}
	Season         int64
	PlayerID       string
	Person
	FullName             sql.NullString
	Slug                 sql.NullString
	Headshot             sql.NullString
	FlagHref             sql.NullString
	PositionID           sql.NullString
	PositionName         sql.NullString
	PositionAbbreviation sql.NullString
	PositionDisplay      sql.NullString
	TeamID               sql.NullString
}

// PlayerSeasonsTable is the upsert descriptor for player_seasons.
var PlayerSeasonsTable = Table{
	Name: "player_seasons",
	Key:  []string{"season_player_id"},
	Columns: []string{
		"season_player_id", "season", "player_id", "uid", "guid",
		"firstName", "lastName", "fullName", "displayName", "shortName",
		"weight", "displayWeight", "height", "displayHeight",
		"birthPlace_city", "birthPlace_state", "birthPlace_country",
		"slug", "headshot", "jersey", "hand_type", "hand_abbreviation", "hand_displayValue",
		"flag_href", "position_id", "position_name", "position_abbreviation", "position_displayValue",
		"team_id", "experience_years", "experience_displayValue", "experience_abbreviation",
	},
}

func (p *PlayerSeason) Key() string { return p.SeasonPlayerID }

func (p *PlayerSeason) Values() []any {
	return []any{
		p.SeasonPlayerID, p.Season, p.PlayerID, p.UID, p.GUID,
		p.FirstName, p.LastName, p.FullName, p.DisplayName, p.ShortName,
		p.Weight, p.DisplayWeight, p.Height, p.DisplayHeight,
		p.BirthCity, p.BirthState, p.BirthCountry,
		p.Slug, p.Headshot, p.Jersey, p.HandType, p.HandAbbreviation, p.HandDisplay,
		p.FlagHref, p.PositionID, p.PositionName, p.PositionAbbreviation, p.PositionDisplay,
		p.TeamID, p.ExperienceYears, p.ExperienceDisplay, p.ExperienceAbbreviation,
	}
}
