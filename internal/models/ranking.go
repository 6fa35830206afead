package models

import "database/sql"

// Ranked types of a poll entry.
const (
	RankedTypeRanked  = "Ranked"
	RankedTypeOthers  = "Others"
	RankedTypeDropped = "Dropped Out"
)

// Ranking is one team's entry in one weekly poll.
type Ranking struct {
	SeasonWeekTeam    string // {season}_{week}_{provider}_{team}
	Season            sql.NullInt64
	Week              sql.NullInt64
	TeamID            string
	WeekDisplay       sql.NullString
	Headline          sql.NullString
	ShortHeadline     sql.NullString
	SeasonDisplayName sql.NullString
	ProviderID        sql.NullString
	ProviderName      sql.NullString
	ProviderType      sql.NullString
	CurrentRank       sql.NullInt64
	PreviousRank      sql.NullInt64
	FirstPlaceVotes   sql.NullInt64
	Points            sql.NullFloat64
	Trend             sql.NullString
	RecordSummary     sql.NullString
	RecordWins        sql.NullInt64
	RecordLosses      sql.NullInt64
	RecordTies        sql.NullInt64
	RankedType        string
}

// RankingsTable is the upsert descriptor for rankings.
var RankingsTable = Table{
	Name: "rankings",
	Key:  []string{"season_week_team"},
	Columns: []string{
		"season_week_team", "season", "week", "team_id", "week_displayValue",
		"headline", "short_headline", "season_displayName",
		"ranking_provider_id", "ranking_provider_name", "ranking_provider_type",
		"current_rank", "previous_rank", "first_place_votes", "points", "trend",
		"record_summary", "record_wins", "record_losses", "record_ties", "ranked_type",
	},
}

func (r *Ranking) Key() string { return r.SeasonWeekTeam }

func (r *Ranking) Values() []any {
	return []any{
		r.SeasonWeekTeam, r.Season, r.Week, r.TeamID, r.WeekDisplay,
		r.Headline, r.ShortHeadline, r.SeasonDisplayName,
		r.ProviderID, r.ProviderName, r.ProviderType,
		r.CurrentRank, r.PreviousRank, r.FirstPlaceVotes, r.Points, r.Trend,
		r.RecordSummary, r.RecordWins, r.RecordLosses, r.RecordTies, r.RankedType,
	}
}
