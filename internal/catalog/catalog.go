// Package catalog normalizes raw player records into the entity the
// optimizer consumes. Ingestion is a pure transform: it never mutates its
// input and never touches the network or disk.
package catalog

import (
	"fmt"

	"github.com/rcallahan/fpl-optimizer/internal/models"
	"github.com/rcallahan/fpl-optimizer/pkg/utils"
)

// RawPlayerRecord is a heterogeneous source record before normalization.
// Cost is a pointer so a missing cost is distinguishable from a free player.
type RawPlayerRecord struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Position        string   `json:"position"`
	Club            string   `json:"club"`
	Cost            *int     `json:"cost"` // tenths of a million
	PredictedPoints float64  `json:"predicted_points"`
	ActualPoints    *float64 `json:"actual_points,omitempty"`
	Status          string   `json:"status"` // FPL status code, e.g. "a", "d", "i"
}

// Ingest normalizes raw records into players. It fails with
// utils.ErrDataValidation when a record lacks a required field or carries a
// negative cost, and with utils.ErrDuplicatePlayer on repeated identifiers.
func Ingest(records []RawPlayerRecord) ([]models.Player, error) {
	players := make([]models.Player, 0, len(records))
	seen := make(map[int]bool, len(records))

	for _, rec := range records {
		if seen[rec.ID] {
			return nil, fmt.Errorf("%w: id %d", utils.ErrDuplicatePlayer, rec.ID)
		}
		seen[rec.ID] = true

		player, err := normalize(rec)
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}

	return players, nil
}

func normalize(rec RawPlayerRecord) (models.Player, error) {
	if rec.Cost == nil {
		return models.Player{}, fmt.Errorf("%w: player %d missing cost", utils.ErrDataValidation, rec.ID)
	}
	if *rec.Cost < 0 {
		return models.Player{}, fmt.Errorf("%w: player %d has negative cost %d", utils.ErrDataValidation, rec.ID, *rec.Cost)
	}

	position := models.Position(rec.Position)
	if rec.Position == "" {
		return models.Player{}, fmt.Errorf("%w: player %d missing position", utils.ErrDataValidation, rec.ID)
	}
	if !position.Valid() {
		return models.Player{}, fmt.Errorf("%w: player %d has unknown position %q", utils.ErrDataValidation, rec.ID, rec.Position)
	}

	if rec.Club == "" {
		return models.Player{}, fmt.Errorf("%w: player %d missing club", utils.ErrDataValidation, rec.ID)
	}

	return models.Player{
		ID:              rec.ID,
		Name:            rec.Name,
		Position:        position,
		Club:            rec.Club,
		Cost:            *rec.Cost,
		PredictedPoints: rec.PredictedPoints,
		ActualPoints:    rec.ActualPoints,
		Availability:    availabilityFromStatus(rec.Status),
	}, nil
}

// availabilityFromStatus maps FPL status codes onto the three availability
// states. "a" is available, "d" is doubtful; injured, suspended, unavailable
// and not-in-league all collapse to unavailable. An empty status is treated
// as available.
func availabilityFromStatus(status string) models.Availability {
	switch status {
	case "a", "":
		return models.Available
	case "d":
		return models.Doubtful
	default:
		return models.Unavailable
	}
}
