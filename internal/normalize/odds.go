package normalize

import "ncaam/ingestion/internal/models"

// Odds normalizes a competition odds collection into one row per provider.
// Items without a provider id are skipped.
func Odds(eventID string, data map[string]any) []*models.Odds {
	var out []*models.Odds
	for _, item := range maps(extractArray(data, "items")) {
		provider := extractMap(item, "provider")
		providerID := str(provider["id"])
		if !providerID.Valid || providerID.String == "" {
			continue
		}
		out = append(out, &models.Odds{
			EventProviderID: CompositeKey(eventID, providerID.String),
			EventID:         eventID,
			ProviderID:      providerID,
			ProviderName:    str(provider["name"]),
			Details:         str(item["details"]),
			OverUnder:       float(item["overUnder"]),
			Spread:          float(item["spread"]),
			OverOdds:        float(item["overOdds"]),
			UnderOdds:       float(item["underOdds"]),
			Away:            teamOdds(item["awayTeamOdds"]),
			Home:            teamOdds(item["homeTeamOdds"]),
		})
	}
	return out
}

// teamOdds accepts either {"items": [...]} (last item wins) or a plain object.
func teamOdds(v any) models.TeamOdds {
	obj, ok := v.(map[string]any)
	if !ok {
		return models.TeamOdds{}
	}
	if items, ok := obj["items"].([]any); ok {
		entries := maps(items)
		if len(entries) == 0 {
			return models.TeamOdds{}
		}
		obj = entries[len(entries)-1]
	}
	return models.TeamOdds{
		Favorite:   boolean(obj["favorite"]),
		Underdog:   boolean(obj["underdog"]),
		Moneyline:  float(obj["moneyLine"]),
		SpreadOdds: float(obj["spreadOdds"]),
		Spread:     str(dig(obj, "spread", "displayValue")),
		TeamID:     refID(extractMap(obj, "team"), "teams"),
	}
}
