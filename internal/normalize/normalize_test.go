package normalize

import (
	"database/sql"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, payload string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, sonic.UnmarshalString(payload, &out))
	return out
}

const completedSummary = `{
  "header": {
    "id": "401",
    "uid": "s:40~l:41~e:401",
    "season": {"year": 2026, "type": 2},
    "week": 3,
    "timeValid": true,
    "competitions": [{
      "date": "2025-11-20T00:00Z",
      "neutralSite": false,
      "conferenceCompetition": true,
      "status": {"type": {"id": "3", "name": "STATUS_FINAL", "state": "post", "completed": true, "detail": "Final"}},
      "competitors": [
        {"id": "150", "homeAway": "home", "winner": true, "score": "78",
         "linescores": [{"displayValue": "40"}, {"displayValue": "38"}],
         "team": {"displayName": "Duke Blue Devils", "abbreviation": "DUKE", "groups": {"id": "2", "slug": "acc"},
                  "logos": [{"href": "https://example.test/duke.png"}]}},
        {"id": "153", "homeAway": "away", "winner": false, "score": "70",
         "team": {"displayName": "North Carolina Tar Heels"}}
      ]
    }]
  },
  "gameInfo": {"venue": {"id": "99"}, "attendance": 9314, "officials": [{"fullName": "Ref One"}]},
  "boxscore": {
    "teams": [
      {"team": {"id": "150"}, "homeAway": "home", "statistics": [
        {"name": "fieldGoalsMade-fieldGoalsAttempted", "displayValue": "29-58"},
        {"name": "fieldGoalPct", "displayValue": "50"},
        {"name": "totalRebounds", "displayValue": "35"}
      ]},
      {"team": {"id": "153"}, "homeAway": "away", "statistics": []}
    ],
    "players": [
      {"team": {"id": "150"}, "statistics": [{
        "labels": ["MIN", "FG", "3PT", "PTS"],
        "athletes": [
          {"athlete": {"id": "9", "displayName": "A Player", "position": {"abbreviation": "G"}},
           "starter": true, "didNotPlay": false, "stats": ["31", "7-12", "2-5", "18"]},
          {"athlete": {"id": "10", "displayName": "Bench Player"}, "didNotPlay": true, "stats": []}
        ]
      }]}
    ]
  }
}`

func TestGameSummary_Completed(t *testing.T) {
	detail, err := GameSummary("401", decode(t, completedSummary))
	require.NoError(t, err)
	require.True(t, detail.Completed)

	game := detail.Game
	assert.Equal(t, "401", game.ID)
	assert.Equal(t, int64(2026), game.SeasonYear.Int64)
	assert.Equal(t, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), game.Date.Time)
	assert.True(t, game.IsConferenceCompetition.Bool)
	assert.Equal(t, "99", game.VenueID.String)
	assert.Equal(t, int64(9314), game.Attendance.Int64)
	assert.JSONEq(t, `[{"fullName":"Ref One"}]`, game.Officials.String)

	assert.Equal(t, "150", game.Home.TeamID.String)
	assert.Equal(t, int64(78), game.Home.Score.Int64)
	assert.True(t, game.Home.Winner.Bool)
	assert.Equal(t, "acc", game.Home.ConferenceSlug.String)
	assert.Equal(t, "153", game.Away.TeamID.String)
	assert.False(t, game.Away.Linescores.Valid, "missing linescores should stay NULL")
	assert.False(t, game.Away.ConferenceID.Valid)

	href, ok := FirstLogoHref(game.Home.Logos)
	assert.True(t, ok)
	assert.Equal(t, "https://example.test/duke.png", href)

	require.Len(t, detail.Teams, 2)
	home := detail.Teams[0]
	assert.Equal(t, "401_150", home.EventTeamID)
	assert.Equal(t, "29", home.Stats["fieldGoalsMade"].String)
	assert.Equal(t, "58", home.Stats["fieldGoalsAttempted"].String)
	assert.Equal(t, "50", home.Stats["fieldGoalPct"].String)
	assert.False(t, home.Stats["steals"].Valid)

	require.Len(t, detail.Players, 2)
	starter := detail.Players[0]
	assert.Equal(t, "401_9", starter.EventAthleteID)
	assert.Equal(t, "150", starter.TeamID.String)
	assert.Equal(t, "7-12", starter.Stats["FG"].String)
	assert.Equal(t, "18", starter.Stats["PTS"].String)
	assert.False(t, starter.Stats["REB"].Valid)

	dnp := detail.Players[1]
	assert.True(t, dnp.DidNotPlay.Bool)
	assert.Empty(t, dnp.Stats)

	batch := detail.Batch()
	assert.Equal(t, 1, batch.Count("games"))
	assert.Equal(t, 2, batch.Count("team_boxscores"))
	assert.Equal(t, 2, batch.Count("player_boxscores"))
}

func TestGameSummary_Incomplete(t *testing.T) {
	payload := `{"header": {"id": "402", "competitions": [{"status": {"type": {"completed": false, "state": "pre"}}}]}}`

	detail, err := GameSummary("402", decode(t, payload))
	require.NoError(t, err)
	assert.False(t, detail.Completed)
	assert.Nil(t, detail.Game)
	assert.Empty(t, detail.Batch())
}

func TestGameSummary_MissingHeader(t *testing.T) {
	_, err := GameSummary("403", decode(t, `{"boxscore": {}}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestOdds_ProviderRows(t *testing.T) {
	payload := `{"items": [
	  {"provider": {"id": "58", "name": "ESPN BET"}, "details": "DUKE -3.5", "overUnder": 145.5, "spread": -3.5,
	   "homeTeamOdds": {"favorite": true, "moneyLine": -160, "spreadOdds": -110, "spread": {"displayValue": "-3.5"},
	                    "team": {"$ref": "http://x/v2/sports/basketball/leagues/mens-college-basketball/seasons/2026/teams/150?lang=en"}},
	   "awayTeamOdds": {"items": [
	     {"underdog": true, "moneyLine": 120, "team": {"id": "1"}},
	     {"underdog": true, "moneyLine": 135, "team": {"id": "153"}}
	   ]}},
	  {"provider": {"name": "no id"}},
	  {"provider": {"id": "40", "name": "Other"}}
	]}`

	rows := Odds("401", decode(t, payload))
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "401_58", first.EventProviderID)
	assert.Equal(t, 145.5, first.OverUnder.Float64)
	assert.Equal(t, "150", first.Home.TeamID.String, "team id should be parsed from $ref")
	assert.Equal(t, "-3.5", first.Home.Spread.String)
	assert.Equal(t, -160.0, first.Home.Moneyline.Float64)
	assert.Equal(t, "153", first.Away.TeamID.String, "last item should win")
	assert.Equal(t, 135.0, first.Away.Moneyline.Float64)

	second := rows[1]
	assert.Equal(t, "401_40", second.EventProviderID)
	assert.False(t, second.OverUnder.Valid)
	assert.False(t, second.Home.TeamID.Valid)
}

func TestPrediction_StatisticsFallback(t *testing.T) {
	payload := `{
	  "name": "UNC @ DUKE", "shortName": "UNC @ DUKE",
	  "homeTeam": {"team": {"$ref": "http://x/teams/150?lang=en"}, "statistics": [
	    {"name": "gameProjection", "value": 64.2, "displayValue": "64.2"},
	    {"name": "teamChanceLoss", "value": 35.8, "displayValue": "35.8"}
	  ]},
	  "awayTeam": {"team": {"id": "153"}, "gameProjection": 35.8, "gameProjectionDisplay": "35.8%"}
	}`

	p := Prediction("401", decode(t, payload))
	assert.Equal(t, "401", p.EventID)
	assert.Equal(t, "150", p.Home.TeamID.String)
	assert.Equal(t, 64.2, p.Home.GameProjection.Float64)
	assert.Equal(t, "35.8", p.Home.ChanceLossDisplay.String)
	assert.Equal(t, "153", p.Away.TeamID.String)
	assert.Equal(t, "35.8%", p.Away.GameProjectionDisplay.String)
	assert.False(t, p.Away.ChanceLoss.Valid)
}

func TestSeason(t *testing.T) {
	payload := `{"year": 2026, "displayName": "2025-26", "startDate": "2025-07-01T07:00Z",
	  "types": {"items": [{"id": "2", "name": "Regular Season"}, {"id": "3", "name": "Postseason"}, {"name": "bad"}]}}`

	season, types, err := Season(decode(t, payload))
	require.NoError(t, err)
	assert.Equal(t, int64(2026), season.Year)
	assert.True(t, season.StartDate.Valid)
	assert.False(t, season.EndDate.Valid)
	require.Len(t, types, 2)
	assert.Equal(t, "2026-2", types[0].SeasonID)
	assert.Equal(t, "2026-3", types[1].SeasonID)

	_, _, err = Season(decode(t, `{"displayName": "no year"}`))
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestTeams(t *testing.T) {
	payload := `{"sports": [{"leagues": [{"teams": [
	  {"team": {"id": "150", "displayName": "Duke Blue Devils", "logos": [{"href": "a"}]}},
	  {"team": {"displayName": "no id"}}
	]}]}]}`

	teams := Teams(decode(t, payload))
	require.Len(t, teams, 1)
	assert.Equal(t, "150", teams[0].ID)
	assert.JSONEq(t, `[{"href":"a"}]`, teams[0].Logos.String)
	assert.Empty(t, Teams(map[string]any{}))
}

func TestConference_HasChildren(t *testing.T) {
	parent, err := Conference(2026, "50", decode(t, `{"id": "2", "name": "ACC", "children": {"$ref": "x"}}`))
	require.NoError(t, err)
	assert.Equal(t, "2026-2", parent.SeasonID)
	assert.True(t, parent.HasChildren)
	assert.Equal(t, "50", parent.Parent.String)

	leaf, err := Conference(2026, "", decode(t, `{"id": "62"}`))
	require.NoError(t, err)
	assert.False(t, leaf.HasChildren)
	assert.False(t, leaf.Parent.Valid)
}

func TestTeamSeason(t *testing.T) {
	ts, err := TeamSeason(2026, "2", decode(t, `{"id": "150", "slug": "duke", "venue": {"id": "1"}}`))
	require.NoError(t, err)
	assert.Equal(t, "2026-2-150", ts.SeasonConfTeam)
	assert.Equal(t, "1", ts.VenueID.String)
	assert.False(t, ts.Logos.Valid)
}

func TestAthlete_HeadshotFallback(t *testing.T) {
	payload := `{"firstName": "A", "lastName": "Player", "experience": {"years": 2},
	  "team": {"$ref": "http://x/seasons/2026/teams/150?lang=en"}}`
	ref := "http://x/seasons/2026/athletes/5105?lang=en"

	player, roster, err := Athlete(2026, ref, decode(t, payload))
	require.NoError(t, err)
	assert.Equal(t, "5105", player.ID)
	assert.Equal(t, "2026-5105", roster.SeasonPlayerID)
	assert.Equal(t, "https://a.espncdn.com/i/headshots/mens-college-basketball/players/full/5105.png", roster.Headshot.String)
	assert.Equal(t, "150", roster.TeamID.String)
	assert.Equal(t, int64(2), roster.ExperienceYears.Int64)
	assert.Equal(t, player.FirstName, roster.FirstName)

	_, _, err = Athlete(2026, "", map[string]any{})
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestRanking(t *testing.T) {
	payload := `{
	  "id": "1", "name": "AP Top 25", "type": "ap",
	  "occurrence": {"number": 5, "displayValue": "Week 5"},
	  "season": {"year": 2026},
	  "ranks": [{"current": 1, "previous": 2, "points": 1500, "team": {"$ref": "http://x/teams/150?lang=en"},
	             "record": {"summary": "5-0", "stats": [{"name": "wins", "value": 5}, {"name": "losses", "value": 0}]}}],
	  "others": [{"points": 12, "team": {"$ref": "http://x/teams/2?lang=en"}}],
	  "droppedOut": [{"previous": 20, "team": {"$ref": "http://x/teams/3"}}, {"team": {}}]
	}`

	rows := Ranking(decode(t, payload))
	require.Len(t, rows, 3)
	assert.Equal(t, "2026_5_1_150", rows[0].SeasonWeekTeam)
	assert.Equal(t, "Ranked", rows[0].RankedType)
	assert.Equal(t, int64(5), rows[0].RecordWins.Int64)
	assert.False(t, rows[0].RecordTies.Valid)
	assert.Equal(t, "Others", rows[1].RankedType)
	assert.Equal(t, "Dropped Out", rows[2].RankedType)
	assert.Equal(t, "3", rows[2].TeamID)
}

func TestCoach(t *testing.T) {
	c := Coach(2026, "150", decode(t, `{"id": "77", "firstName": "Jon", "lastName": "Scheyer"}`))
	require.NotNil(t, c)
	assert.Equal(t, "2026-77", c.SeasonID)
	assert.Nil(t, Coach(2026, "150", map[string]any{}))
}

func TestZipStats_LengthMismatch(t *testing.T) {
	keep := []string{"MIN", "FG", "PTS"}

	short := ZipStats([]any{"MIN", "FG", "PTS"}, []any{"30"}, keep)
	assert.Equal(t, map[string]sql.NullString{"MIN": {String: "30", Valid: true}}, short)

	long := ZipStats([]any{"MIN", "XYZ"}, []any{"30", "1", "extra"}, keep)
	assert.Equal(t, map[string]sql.NullString{"MIN": {String: "30", Valid: true}}, long)
}

func TestIDFromRef(t *testing.T) {
	tests := []struct {
		ref, collection, want string
	}{
		{"http://x/v2/sports/basketball/events/401?lang=en", "events", "401"},
		{"http://x/seasons/2026/teams/150/athletes/9", "teams", "150"},
		{"http://x/seasons/2026/teams/150/athletes/9", "athletes", "9"},
		{"http://x/seasons/2026", "teams", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IDFromRef(tt.ref, tt.collection), tt.ref)
	}
}

func TestRefPage(t *testing.T) {
	refs, pages := RefPage(decode(t, `{"pageCount": 3, "items": [{"$ref": "a"}, {"id": 1}, {"$ref": "b"}]}`))
	assert.Equal(t, []string{"a", "b"}, refs)
	assert.Equal(t, 3, pages)

	_, pages = RefPage(map[string]any{})
	assert.Equal(t, 1, pages)
}

func TestBlob_RoundTrip(t *testing.T) {
	assert.False(t, Blob(nil).Valid)

	blob := Blob([]any{map[string]any{"href": "a"}})
	require.True(t, blob.Valid)
	decoded, err := DecodeBlob(blob)
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"href": "a"}}, decoded)
}

func TestParseTime(t *testing.T) {
	got, ok := ParseTime("2025-11-20T00:30Z")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 11, 20, 0, 30, 0, 0, time.UTC), got)

	got, ok = ParseTime("2025-11-20T19:30:00-05:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 11, 21, 0, 30, 0, 0, time.UTC), got)

	_, ok = ParseTime("")
	assert.False(t, ok)
	_, ok = ParseTime("next tuesday")
	assert.False(t, ok)
}
