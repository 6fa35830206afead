package models

import "database/sql"

// Prediction is the upstream win-probability projection for one game.
type Prediction struct {
	EventID   string
	Name      sql.NullString
	ShortName sql.NullString
	Home      TeamProjection
	Away      TeamProjection
}

// TeamProjection is one side of a Prediction.
type TeamProjection struct {
	TeamID                sql.NullString
	GameProjection        sql.NullFloat64
	GameProjectionDisplay sql.NullString
	ChanceLoss            sql.NullFloat64
	ChanceLossDisplay     sql.NullString
}

var projectionColumns = []string{
	"team_id", "gameProjection", "gameProjection_display", "teamChanceLoss", "teamChanceLoss_display",
}

// PredictionsTable is the upsert descriptor for predictions.
var PredictionsTable = Table{
	Name: "predictions",
	Key:  []string{"event_id"},
	Columns: append(append([]string{"event_id", "name", "short_name"},
		prefixed("homeTeam_", projectionColumns)...), prefixed("awayTeam_", projectionColumns)...),
}

func (p *Prediction) Key() string { return p.EventID }

func (p *Prediction) Values() []any {
	values := []any{p.EventID, p.Name, p.ShortName}
	values = append(values, p.Home.values()...)
	return append(values, p.Away.values()...)
}

func (t TeamProjection) values() []any {
	return []any{t.TeamID, t.GameProjection, t.GameProjectionDisplay, t.ChanceLoss, t.ChanceLossDisplay}
}
