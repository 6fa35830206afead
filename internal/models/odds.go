package models

import "database/sql"

// Odds is one sportsbook's line for one game.
type Odds struct {
	EventProviderID string // {event}_{provider}
	EventID         string
	ProviderID      sql.NullString
	ProviderName    sql.NullString
	Details         sql.NullString
	OverUnder       sql.NullFloat64
	Spread          sql.NullFloat64
	OverOdds        sql.NullFloat64
	UnderOdds       sql.NullFloat64
	Away            TeamOdds
	Home            TeamOdds
}

// TeamOdds is one side of a sportsbook line.
type TeamOdds struct {
	Favorite   sql.NullBool
	Underdog   sql.NullBool
	Moneyline  sql.NullFloat64
	SpreadOdds sql.NullFloat64
	Spread     sql.NullString // display value, e.g. "-3.5"
	TeamID     sql.NullString
}

var teamOddsColumns = []string{"favorite", "underdog", "moneyline", "spread_odds", "spread", "id"}

// OddsTable is the upsert descriptor for odds.
var OddsTable = Table{
	Name: "odds",
	Key:  []string{"event_provider_id"},
	Columns: append(append([]string{
		"event_provider_id", "event_id", "provider_id", "provider_name",
		"details", "over_under", "spread", "over_odds", "under_odds",
	}, prefixed("away_team_", teamOddsColumns)...), prefixed("home_team_", teamOddsColumns)...),
}

func (o *Odds) Key() string { return o.EventProviderID }

func (o *Odds) Values() []any {
	values := []any{
		o.EventProviderID, o.EventID, o.ProviderID, o.ProviderName,
		o.Details, o.OverUnder, o.Spread, o.OverOdds, o.UnderOdds,
	}
	values = append(values, o.Away.values()...)
	return append(values, o.Home.values()...)
}

func (t TeamOdds) values() []any {
	return []any{t.Favorite, t.Underdog, t.Moneyline, t.SpreadOdds, t.Spread, t.TeamID}
}
