package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayer_CostMillions(t *testing.T) {
	p := Player{Cost: 95}
	assert.InDelta(t, 9.5, p.CostMillions(), 1e-9)
}

func TestSquad_AveragePredictedPoints(t *testing.T) {
	squad := NewSquad([]Player{
		{ID: 1, Position: Forward, PredictedPoints: 6.0},
		{ID: 2, Position: Forward, PredictedPoints: 4.0},
	})
	assert.InDelta(t, 5.0, squad.AveragePredictedPoints(), 1e-9)
}

func TestSquad_AveragePredictedPointsEmpty(t *testing.T) {
	assert.Zero(t, Squad{}.AveragePredictedPoints())
}
