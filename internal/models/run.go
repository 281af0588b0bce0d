package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// OptimizationRun records one completed optimization for the run-history
// endpoint. The core packages never touch this; persistence is owned by the
// service layer.
type OptimizationRun struct {
	ID              string        `gorm:"primaryKey;type:uuid" json:"id"`
	Gameweek        int           `gorm:"index" json:"gameweek"`
	Budget          int           `gorm:"not null" json:"budget"`
	TotalCost       int           `gorm:"not null" json:"total_cost"`
	PredictedPoints float64       `gorm:"not null" json:"predicted_points"`
	Formation       string        `json:"formation"`
	CaptainID       int           `json:"captain_id"`
	ViceCaptainID   int           `json:"vice_captain_id"`
	Squad           SquadSnapshot `gorm:"type:jsonb" json:"squad"`
	DurationMs      int64         `json:"duration_ms"`
	CreatedAt       time.Time     `json:"created_at"`
}

// TableName specifies the table name for GORM
func (OptimizationRun) TableName() string {
	return "optimization_runs"
}

// SquadSnapshot stores the selected players as JSON alongside the run.
type SquadSnapshot []Player

// Scan implements the sql.Scanner interface for JSONB
func (ss *SquadSnapshot) Scan(value interface{}) error {
	if value == nil {
		*ss = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into SquadSnapshot", value)
	}

	var players []Player
	if err := json.Unmarshal(bytes, &players); err != nil {
		return err
	}

	*ss = SquadSnapshot(players)
	return nil
}

// Value implements the driver.Valuer interface for JSONB
func (ss SquadSnapshot) Value() (driver.Value, error) {
	if ss == nil {
		return nil, nil
	}
	return json.Marshal(ss)
}
