// Package rules encodes the budget, formation, and club-cap rules as a
// constraint set parameterized by league configuration.
package rules

import (
	"fmt"

	"github.com/rcallahan/fpl-optimizer/internal/models"
	"github.com/rcallahan/fpl-optimizer/pkg/utils"
)

// Season-long FPL rule set defaults. Budget is in tenths of a million.
const (
	DefaultBudget     = 1000
	DefaultMaxPerClub = 3
)

// DefaultQuotas returns the 2 GKP / 5 DEF / 5 MID / 3 FWD position split.
func DefaultQuotas() map[models.Position]int {
	return map[models.Position]int{
		models.Goalkeeper: 2,
		models.Defender:   5,
		models.Midfielder: 5,
		models.Forward:    3,
	}
}

// RuleConfig is the recognized league configuration surface.
type RuleConfig struct {
	Budget         int                     `json:"budget"` // tenths of a million
	PositionQuotas map[models.Position]int `json:"position_quotas"`
	MaxPerClub     int                     `json:"max_per_club"`
}

// DefaultRuleConfig returns the standard season-long rule set.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		Budget:         DefaultBudget,
		PositionQuotas: DefaultQuotas(),
		MaxPerClub:     DefaultMaxPerClub,
	}
}

// SquadConstraintSet is the validated constraint set the optimizer consumes.
// Quotas always sum exactly to SquadSize.
type SquadConstraintSet struct {
	Budget         int                     `json:"budget"`
	SquadSize      int                     `json:"squad_size"`
	PositionQuotas map[models.Position]int `json:"position_quotas"`
	MaxPerClub     int                     `json:"max_per_club"`
}

// Build validates a rule configuration into a constraint set. It fails with
// utils.ErrInvalidConfiguration when quotas do not sum to the squad size,
// any quota is negative, or the budget / club cap is not positive.
func Build(cfg RuleConfig) (SquadConstraintSet, error) {
	if cfg.Budget <= 0 {
		return SquadConstraintSet{}, fmt.Errorf("%w: budget must be positive, got %d", utils.ErrInvalidConfiguration, cfg.Budget)
	}
	if cfg.MaxPerClub <= 0 {
		return SquadConstraintSet{}, fmt.Errorf("%w: max per club must be positive, got %d", utils.ErrInvalidConfiguration, cfg.MaxPerClub)
	}

	quotaSum := 0
	for _, pos := range models.Positions {
		quota := cfg.PositionQuotas[pos]
		if quota < 0 {
			return SquadConstraintSet{}, fmt.Errorf("%w: quota for %s is negative", utils.ErrInvalidConfiguration, pos)
		}
		quotaSum += quota
	}
	for pos := range cfg.PositionQuotas {
		if !pos.Valid() {
			return SquadConstraintSet{}, fmt.Errorf("%w: unknown position %q in quotas", utils.ErrInvalidConfiguration, pos)
		}
	}
	if quotaSum != models.SquadSize {
		return SquadConstraintSet{}, fmt.Errorf("%w: quotas sum to %d, want %d", utils.ErrInvalidConfiguration, quotaSum, models.SquadSize)
	}

	quotas := make(map[models.Position]int, len(models.Positions))
	for _, pos := range models.Positions {
		quotas[pos] = cfg.PositionQuotas[pos]
	}

	return SquadConstraintSet{
		Budget:         cfg.Budget,
		SquadSize:      models.SquadSize,
		PositionQuotas: quotas,
		MaxPerClub:     cfg.MaxPerClub,
	}, nil
}
