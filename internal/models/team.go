package models

import (
	"database/sql"
	"fmt"
)

// Team is the current identity and branding of a program.
type Team struct {
	ID             string
	UID            sql.NullString
	Slug           sql.NullString
	Abbreviation   sql.NullString
	DisplayName    sql.NullString
	Name           sql.NullString
	Nickname       sql.NullString
	Location       sql.NullString
	Color          sql.NullString
	AlternateColor sql.NullString
	Logos          sql.NullString // JSON
}

// TeamsTable is the upsert descriptor for teams.
var TeamsTable = Table{
	Name: "teams",
	Key:  []string{"id"},
	Columns: []string{
		"id", "uid", "slug", "abbreviation", "displayName", "name",
		"nickname", "location", "color", "alternateColor", "logos",
	},
}

func (t *Team) Key() string { return t.ID }

func (t *Team) Values() []any {
	return []any{
		t.ID, t.UID, t.Slug, t.Abbreviation, t.DisplayName, t.Name,
		t.Nickname, t.Location, t.Color, t.AlternateColor, t.Logos,
	}
}

// Conference is a group within a season. Conferences with children are
// parents of other conferences rather than holders of teams.
type Conference struct {
	SeasonID     string // {season}-{conference}
	ID           string
	Season       int64
	Name         sql.NullString
	Abbreviation sql.NullString
	ShortName    sql.NullString
	MidsizeName  sql.NullString
	Logos        sql.NullString // JSON
	Slug         sql.NullString
	Parent       sql.NullString
	HasChildren  bool
}

// ConferencesTable is the upsert descriptor for conferences.
var ConferencesTable = Table{
	Name: "conferences",
	Key:  []string{"season_id"},
	Columns: []string{
		"season_id", "id", "season", "name", "abbreviation", "shortName",
		"midsizeName", "logos", "slug", "parent", "has_children",
	},
}

func (c *Conference) Key() string { return c.SeasonID }

func (c *Conference) Values() []any {
	return []any{
		c.SeasonID, c.ID, c.Season, c.Name, c.Abbreviation, c.ShortName,
		c.MidsizeName, c.Logos, c.Slug, c.Parent, c.HasChildren,
	}
}

// TeamSeason is a team's conference affiliation and branding for one season.
type TeamSeason struct {
	SeasonConfTeam   string // {season}-{conference}-{team}
	Season           int64
	ConferenceID     string
	TeamID           string
	GUID             sql.NullString
	UID              sql.NullString
	Slug             sql.NullString
	Location         sql.NullString
	Name             sql.NullString
	Abbreviation     sql.NullString
	DisplayName      sql.NullString
	ShortDisplayName sql.NullString
	Color            sql.NullString
	AlternateColor   sql.NullString
	Logos            sql.NullString // JSON
	VenueID          sql.NullString
}

// TeamSeasonsTable is the upsert descriptor for team_seasons.
var TeamSeasonsTable = Table{
	Name: "team_seasons",
	Key:  []string{"season_conf_team"},
	Columns: []string{
		"season_conf_team", "season", "conference_id", "team_id", "guid", "uid", "slug",
		"location", "name", "abbreviation", "displayName", "shortDisplayName",
		"color", "alternateColor", "logos", "venue_id",
	},
}

func (t *TeamSeason) Key() string { return t.SeasonConfTeam }

func (t *TeamSeason) Values() []any {
	return []any{
		t.SeasonConfTeam, t.Season, t.ConferenceID, t.TeamID, t.GUID, t.UID, t.Slug,
		t.Location, t.Name, t.Abbreviation, t.DisplayName, t.ShortDisplayName,
		t.Color, t.AlternateColor, t.Logos, t.VenueID,
	}
}

// TeamSeasonRef identifies a team within a season.
type TeamSeasonRef struct {
	Season int
	TeamID string
}

// ID renders the ref as a pipeline candidate identifier.
func (r TeamSeasonRef) ID() string {
	return fmt.Sprintf("%d:%s", r.Season, r.TeamID)
}

// ConferenceRef identifies a conference within a season.
type ConferenceRef struct {
	Season       int
	ConferenceID string
}

// ID renders the ref as a pipeline candidate identifier.
func (r ConferenceRef) ID() string {
	return fmt.Sprintf("%d:%s", r.Season, r.ConferenceID)
}
