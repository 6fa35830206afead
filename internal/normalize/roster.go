package normalize

import (
	"fmt"

	"ncaam/ingestion/internal/models"
)

const headshotURL = "https://a.espncdn.com/i/headshots/mens-college-basketball/players/full/%s.png"

// Athlete normalizes a season-scoped athlete document into the season
// roster row and the latest biographical row for the player. The id comes
// from the document or, failing that, from the $ref it was fetched through.
func Athlete(season int, ref string, data map[string]any) (*models.Player, *models.PlayerSeason, error) {
	id := refID(data, "athletes")
	if !id.Valid || id.String == "" {
		id = models.NullString(IDFromRef(ref, "athletes"), true)
	}
	if id.String == "" {
		return nil, nil, fmt.Errorf("athlete document has no id: %w", ErrMalformed)
	}

	bio := person(data)
	headshot := str(dig(data, "headshot", "href"))
	if !headshot.Valid || headshot.String == "" {
		headshot = models.NullString(fmt.Sprintf(headshotURL, id.String), true)
	}
	position := extractMap(data, "position")

	player := &models.Player{ID: id.String, Person: bio}
	roster := &models.PlayerSeason{
		SeasonPlayerID:       fmt.Sprintf("%d-%s", season, id.String),
		Season:               int64(season),
		PlayerID:             id.String,
		Person:               bio,
		FullName:             str(data["fullName"]),
		Slug:                 str(data["slug"]),
		Headshot:             headshot,
		FlagHref:             str(dig(data, "flag", "href")),
		PositionID:           str(position["id"]),
		PositionName:         str(position["name"]),
		PositionAbbreviation: str(position["abbreviation"]),
		PositionDisplay:      str(position["displayValue"]),
		TeamID:               refID(extractMap(data, "team"), "teams"),
	}
	return player, roster, nil
}

func person(data map[string]any) models.Person {
	birth := extractMap(data, "birthPlace")
	experience := extractMap(data, "experience")
	hand := extractMap(data, "hand")
	return models.Person{
		UID:                    str(data["uid"]),
		GUID:                   str(data["guid"]),
		FirstName:              str(data["firstName"]),
		LastName:               str(data["lastName"]),
		DisplayName:            str(data["displayName"]),
		ShortName:              str(data["shortName"]),
		Weight:                 float(data["weight"]),
		DisplayWeight:          str(data["displayWeight"]),
		Height:                 float(data["height"]),
		DisplayHeight:          str(data["displayHeight"]),
		BirthCity:              str(birth["city"]),
		BirthState:             str(birth["state"]),
		BirthCountry:           str(birth["country"]),
		ExperienceYears:        integer(experience["years"]),
		ExperienceDisplay:      str(experience["displayValue"]),
		ExperienceAbbreviation: str(experience["abbreviation"]),
		Jersey:                 str(data["jersey"]),
		HandType:               str(hand["type"]),
		HandAbbreviation:       str(hand["abbreviation"]),
		HandDisplay:            str(hand["displayValue"]),
	}
}
