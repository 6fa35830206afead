package normalize

import (
	"fmt"

	"ncaam/ingestion/internal/models"
	"ncaam/ingestion/internal/stats"
)

// Ranking normalizes one weekly poll document. Ranked teams, receiving-votes
// teams and teams that dropped out all become rows, told apart by RankedType.
// Entries without a resolvable team are skipped.
func Ranking(data map[string]any) []*models.Ranking {
	occurrence := extractMap(data, "occurrence")
	season := extractMap(data, "season")
	base := models.Ranking{
		Season:            integer(season["year"]),
		Week:              integer(occurrence["number"]),
		WeekDisplay:       str(occurrence["displayValue"]),
		Headline:          str(data["headline"]),
		ShortHeadline:     str(data["shortHeadline"]),
		SeasonDisplayName: str(season["displayName"]),
		ProviderID:        str(data["id"]),
		ProviderName:      str(data["name"]),
		ProviderType:      str(data["type"]),
	}

	var out []*models.Ranking
	for _, group := range []struct {
		key        string
		rankedType string
	}{
		{"ranks", models.RankedTypeRanked},
		{"others", models.RankedTypeOthers},
		{"droppedOut", models.RankedTypeDropped},
	} {
		for _, entry := range maps(extractArray(data, group.key)) {
			teamID := refID(extractMap(entry, "team"), "teams")
			if !teamID.Valid {
				continue
			}
			row := base
			row.TeamID = teamID.String
			row.SeasonWeekTeam = fmt.Sprintf("%d_%d_%s_%s",
				base.Season.Int64, base.Week.Int64, base.ProviderID.String, teamID.String)
			row.RankedType = group.rankedType
			row.CurrentRank = integer(entry["current"])
			row.PreviousRank = integer(entry["previous"])
			row.FirstPlaceVotes = integer(entry["firstPlaceVotes"])
			row.Points = float(entry["points"])
			row.Trend = str(entry["trend"])

			record := extractMap(entry, "record")
			row.RecordSummary = str(record["summary"])
			for _, stat := range maps(extractArray(record, "stats")) {
				switch stat["name"] {
				case "wins":
					row.RecordWins = integer(stat["value"])
				case "losses":
					row.RecordLosses = integer(stat["value"])
				case "ties":
					row.RecordTies = integer(stat["value"])
				}
			}
			if !row.RecordWins.Valid && row.RecordSummary.Valid {
				if rec, err := stats.ParseRecord(row.RecordSummary.String); err == nil {
					row.RecordWins = models.NullInt(int64(rec.Wins), true)
					row.RecordLosses = models.NullInt(int64(rec.Losses), true)
					row.RecordTies = models.NullInt(int64(rec.Ties), true)
				}
			}
			out = append(out, &row)
		}
	}
	return out
}

// Coach normalizes a coach document for one team season. A document with no
// id yields nil.
func Coach(season int, teamID string, data map[string]any) *models.Coach {
	id := str(data["id"])
	if !id.Valid || id.String == "" {
		return nil
	}
	return &models.Coach{
		SeasonID:  fmt.Sprintf("%d-%s", season, id.String),
		Season:    int64(season),
		TeamID:    teamID,
		FirstName: str(data["firstName"]),
		LastName:  str(data["lastName"]),
	}
}
