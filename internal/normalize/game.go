package normalize

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"ncaam/ingestion/internal/models"
	"ncaam/ingestion/internal/stats"
)

// ErrMalformed is returned when a payload lacks the structure needed to key a row.
var ErrMalformed = errors.New("malformed upstream payload")

// GameDetail is everything one summary payload yields.
type GameDetail struct {
	Completed bool
	Game      *models.Game
	Teams     []*models.TeamBoxscore
	Players   []*models.PlayerBoxscore
}

// Batch returns the rows of a completed game grouped by table.
func (d *GameDetail) Batch() models.Batch {
	b := models.Batch{}
	if d.Game == nil {
		return b
	}
	b.Add(models.GamesTable.Name, d.Game)
	for _, t := range d.Teams {
		b.Add(models.TeamBoxscoresTable.Name, t)
	}
	for _, p := range d.Players {
		b.Add(models.PlayerBoxscoresTable.Name, p)
	}
	return b
}

// GameSummary normalizes a site-API summary payload for eventID. Completion
// is read from header.competitions[0].status.type.completed; an incomplete
// game yields Completed == false and no rows.
func GameSummary(eventID string, data map[string]any) (*GameDetail, error) {
	header, ok := data["header"].(map[string]any)
	if !ok {
		return nil, errors.Wrapf(ErrMalformed, "summary for event %s has no header", eventID)
	}
	comp := firstMap(extractArray(header, "competitions"))
	statusType := extractMap(extractMap(comp, "status"), "type")

	detail := &GameDetail{}
	completed := boolean(statusType["completed"])
	if !completed.Valid || !completed.Bool {
		return detail, nil
	}

	id := eventID
	if hid, ok := toString(header["id"]); ok && hid != "" {
		id = hid
	}

	gameInfo := extractMap(data, "gameInfo")
	season := extractMap(header, "season")
	game := &models.Game{
		ID:                      id,
		UID:                     str(header["uid"]),
		SeasonYear:              integer(season["year"]),
		SeasonType:              integer(season["type"]),
		Week:                    integer(header["week"]),
		GameNote:                str(header["gameNote"]),
		TimeValid:               boolean(header["timeValid"]),
		Date:                    timestamp(comp["date"]),
		IsNeutralSite:           boolean(comp["neutralSite"]),
		IsConferenceCompetition: boolean(comp["conferenceCompetition"]),
		StatusID:                str(statusType["id"]),
		StatusName:              str(statusType["name"]),
		StatusState:             str(statusType["state"]),
		StatusCompleted:         completed,
		StatusDescription:       str(statusType["description"]),
		StatusDetail:            str(statusType["detail"]),
		StatusShortDetail:       str(statusType["shortDetail"]),
		TournamentID:            str(comp["tournamentId"]),
		VenueID:                 str(dig(gameInfo, "venue", "id")),
		Attendance:              integer(gameInfo["attendance"]),
		Officials:               Blob(gameInfo["officials"]),
	}

	for _, competitor := range maps(extractArray(comp, "competitors")) {
		side := gameSide(competitor)
		switch competitor["homeAway"] {
		case "home":
			game.Home = side
		case "away":
			game.Away = side
		}
	}

	detail.Completed = true
	detail.Game = game
	detail.Teams = teamBoxscores(id, extractMap(data, "boxscore"))
	detail.Players = playerBoxscores(id, extractMap(data, "boxscore"))
	return detail, nil
}

func gameSide(competitor map[string]any) models.GameSide {
	team := extractMap(competitor, "team")
	groups := extractMap(team, "groups")
	return models.GameSide{
		TeamID:         str(competitor["id"]),
		Winner:         boolean(competitor["winner"]),
		Score:          integer(competitor["score"]),
		Linescores:     Blob(competitor["linescores"]),
		Records:        Blob(competitor["record"]),
		GUID:           str(team["guid"]),
		UID:            str(team["uid"]),
		Location:       str(team["location"]),
		Name:           str(team["name"]),
		Abbreviation:   str(team["abbreviation"]),
		Nickname:       str(team["nickname"]),
		DisplayName:    str(team["displayName"]),
		Color:          str(team["color"]),
		AlternateColor: str(team["alternateColor"]),
		Logos:          Blob(team["logos"]),
		ConferenceID:   str(groups["id"]),
		ConferenceSlug: str(groups["slug"]),
	}
}

func teamBoxscores(eventID string, boxscore map[string]any) []*models.TeamBoxscore {
	var out []*models.TeamBoxscore
	for _, entry := range maps(extractArray(boxscore, "teams")) {
		teamID := str(dig(entry, "team", "id"))
		if !teamID.Valid || teamID.String == "" {
			continue
		}
		row := &models.TeamBoxscore{
			EventTeamID: CompositeKey(eventID, teamID.String),
			EventID:     eventID,
			TeamID:      teamID,
			HomeAway:    str(entry["homeAway"]),
			Stats:       make(map[string]sql.NullString),
		}
		for _, stat := range maps(extractArray(entry, "statistics")) {
			name, ok := stat["name"].(string)
			if !ok {
				continue
			}
			value := str(stat["displayValue"])
			// Compound counters such as "fieldGoalsMade-fieldGoalsAttempted"
			// carry "7-12" and fan out to one column per half.
			if made, attempted, ok := strings.Cut(name, "-"); ok && value.Valid {
				if line, err := stats.ParseMadeAttempted(value.String); err == nil {
					row.Stats[made] = models.NullString(strconv.Itoa(line.Made), true)
					row.Stats[attempted] = models.NullString(strconv.Itoa(line.Attempted), true)
					continue
				}
			}
			row.Stats[strings.ReplaceAll(name, "-", "_")] = value
		}
		out = append(out, row)
	}
	return out
}

func playerBoxscores(eventID string, boxscore map[string]any) []*models.PlayerBoxscore {
	var out []*models.PlayerBoxscore
	for _, team := range maps(extractArray(boxscore, "players")) {
		teamID := str(dig(team, "team", "id"))
		group := firstMap(extractArray(team, "statistics"))
		labels := extractArray(group, "labels")

		for _, entry := range maps(extractArray(group, "athletes")) {
			athlete := extractMap(entry, "athlete")
			athleteID := str(athlete["id"])
			if !athleteID.Valid || athleteID.String == "" {
				continue
			}
			position := extractMap(athlete, "position")
			out = append(out, &models.PlayerBoxscore{
				EventAthleteID:       CompositeKey(eventID, athleteID.String),
				EventID:              eventID,
				AthleteID:            athleteID,
				TeamID:               teamID,
				Name:                 str(athlete["displayName"]),
				Headshot:             str(dig(athlete, "headshot", "href")),
				Jersey:               str(athlete["jersey"]),
				PositionName:         str(position["name"]),
				PositionAbbreviation: str(position["abbreviation"]),
				PositionDisplayName:  str(position["displayName"]),
				Starter:              boolean(entry["starter"]),
				DidNotPlay:           boolean(entry["didNotPlay"]),
				Ejected:              boolean(entry["ejected"]),
				Stats:                ZipStats(labels, extractArray(entry, "stats"), models.PlayerBoxscoreStats),
			})
		}
	}
	return out
}

// CompositeKey joins a game id and a child entity id into the
// "{game}_{entity}" key used by box score, odds and similar rows.
func CompositeKey(gameID, entityID string) string {
	return fmt.Sprintf("%s_%s", gameID, entityID)
}
