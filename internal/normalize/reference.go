package normalize

import (
	"fmt"

	"ncaam/ingestion/internal/models"
)

// Season normalizes a season detail document into its season row and one
// row per season type.
func Season(data map[string]any) (*models.Season, []*models.SeasonType, error) {
	year := integer(data["year"])
	if !year.Valid {
		return nil, nil, fmt.Errorf("season document has no year: %w", ErrMalformed)
	}
	season := &models.Season{
		Year:        year.Int64,
		StartDate:   timestamp(data["startDate"]),
		EndDate:     timestamp(data["endDate"]),
		DisplayName: str(data["displayName"]),
	}

	var types []*models.SeasonType
	for _, item := range maps(extractArray(extractMap(data, "types"), "items")) {
		typeID := integer(item["id"])
		if !typeID.Valid {
			continue
		}
		types = append(types, &models.SeasonType{
			SeasonID:  fmt.Sprintf("%d-%d", year.Int64, typeID.Int64),
			Year:      year.Int64,
			TypeID:    typeID,
			Name:      str(item["name"]),
			StartDate: timestamp(item["startDate"]),
			EndDate:   timestamp(item["endDate"]),
		})
	}
	return season, types, nil
}

// Teams normalizes the site API team listing (sports[0].leagues[0].teams[].team).
func Teams(data map[string]any) []*models.Team {
	league := firstMap(extractArray(firstMap(extractArray(data, "sports")), "leagues"))

	var out []*models.Team
	for _, entry := range maps(extractArray(league, "teams")) {
		team := extractMap(entry, "team")
		id := str(team["id"])
		if !id.Valid || id.String == "" {
			continue
		}
		out = append(out, &models.Team{
			ID:             id.String,
			UID:            str(team["uid"]),
			Slug:           str(team["slug"]),
			Abbreviation:   str(team["abbreviation"]),
			DisplayName:    str(team["displayName"]),
			Name:           str(team["name"]),
			Nickname:       str(team["nickname"]),
			Location:       str(team["location"]),
			Color:          str(team["color"]),
			AlternateColor: str(team["alternateColor"]),
			Logos:          Blob(team["logos"]),
		})
	}
	return out
}

// Conference normalizes a conference (group) document for season. A
// conference whose document carries a "children" link is a parent grouping.
func Conference(season int, parent string, data map[string]any) (*models.Conference, error) {
	id := str(data["id"])
	if !id.Valid || id.String == "" {
		return nil, fmt.Errorf("conference document has no id: %w", ErrMalformed)
	}
	_, hasChildren := data["children"]
	return &models.Conference{
		SeasonID:     fmt.Sprintf("%d-%s", season, id.String),
		ID:           id.String,
		Season:       int64(season),
		Name:         str(data["name"]),
		Abbreviation: str(data["abbreviation"]),
		ShortName:    str(data["shortName"]),
		MidsizeName:  str(data["midsizeName"]),
		Logos:        Blob(data["logos"]),
		Slug:         str(data["slug"]),
		Parent:       models.NullString(parent, parent != ""),
		HasChildren:  hasChildren,
	}, nil
}

// TeamSeason normalizes a season-scoped team document within a conference.
func TeamSeason(season int, conferenceID string, data map[string]any) (*models.TeamSeason, error) {
	id := str(data["id"])
	if !id.Valid || id.String == "" {
		return nil, fmt.Errorf("team document has no id: %w", ErrMalformed)
	}
	return &models.TeamSeason{
		SeasonConfTeam:   fmt.Sprintf("%d-%s-%s", season, conferenceID, id.String),
		Season:           int64(season),
		ConferenceID:     conferenceID,
		TeamID:           id.String,
		GUID:             str(data["guid"]),
		UID:              str(data["uid"]),
		Slug:             str(data["slug"]),
		Location:         str(data["location"]),
		Name:             str(data["name"]),
		Abbreviation:     str(data["abbreviation"]),
		DisplayName:      str(data["displayName"]),
		ShortDisplayName: str(data["shortDisplayName"]),
		Color:            str(data["color"]),
		AlternateColor:   str(data["alternateColor"]),
		Logos:            Blob(data["logos"]),
		VenueID:          str(dig(data, "venue", "id")),
	}, nil
}
