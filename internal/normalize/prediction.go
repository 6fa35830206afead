package normalize

import "ncaam/ingestion/internal/models"

// Prediction normalizes a competition predictor payload.
func Prediction(eventID string, data map[string]any) *models.Prediction {
	return &models.Prediction{
		EventID:   eventID,
		Name:      str(data["name"]),
		ShortName: str(data["shortName"]),
		Home:      projection(extractMap(data, "homeTeam")),
		Away:      projection(extractMap(data, "awayTeam")),
	}
}

// projection reads the flat fields first and falls back to the
// statistics[] entries the core API returns for most games.
func projection(side map[string]any) models.TeamProjection {
	p := models.TeamProjection{
		TeamID:                refID(extractMap(side, "team"), "teams"),
		GameProjection:        float(side["gameProjection"]),
		GameProjectionDisplay: str(side["gameProjectionDisplay"]),
		ChanceLoss:            float(side["teamChanceLoss"]),
		ChanceLossDisplay:     str(side["teamChanceLossDisplay"]),
	}
	for _, stat := range maps(extractArray(side, "statistics")) {
		switch stat["name"] {
		case "gameProjection":
			if !p.GameProjection.Valid {
				p.GameProjection = float(stat["value"])
			}
			if !p.GameProjectionDisplay.Valid {
				p.GameProjectionDisplay = str(stat["displayValue"])
			}
		case "teamChanceLoss":
			if !p.ChanceLoss.Valid {
				p.ChanceLoss = float(stat["value"])
			}
			if !p.ChanceLossDisplay.Valid {
				p.ChanceLossDisplay = str(stat["displayValue"])
			}
		}
	}
	return p
}
