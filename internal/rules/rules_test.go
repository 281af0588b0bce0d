package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcallahan/fpl-optimizer/internal/models"
	"github.com/rcallahan/fpl-optimizer/pkg/utils"
)

func TestBuild_DefaultRuleSet(t *testing.T) {
	constraints, err := Build(DefaultRuleConfig())
	require.NoError(t, err)

	assert.Equal(t, 1000, constraints.Budget)
	assert.Equal(t, models.SquadSize, constraints.SquadSize)
	assert.Equal(t, 3, constraints.MaxPerClub)
	assert.Equal(t, 2, constraints.PositionQuotas[models.Goalkeeper])
	assert.Equal(t, 5, constraints.PositionQuotas[models.Defender])
	assert.Equal(t, 5, constraints.PositionQuotas[models.Midfielder])
	assert.Equal(t, 3, constraints.PositionQuotas[models.Forward])
}

func TestBuild_InvalidConfigurations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RuleConfig)
	}{
		{
			name:   "quotas sum below squad size",
			mutate: func(c *RuleConfig) { c.PositionQuotas[models.Forward] = 2 },
		},
		{
			name:   "quotas sum above squad size",
			mutate: func(c *RuleConfig) { c.PositionQuotas[models.Midfielder] = 6 },
		},
		{
			name:   "negative quota",
			mutate: func(c *RuleConfig) { c.PositionQuotas[models.Goalkeeper] = -1 },
		},
		{
			name:   "zero budget",
			mutate: func(c *RuleConfig) { c.Budget = 0 },
		},
		{
			name:   "negative budget",
			mutate: func(c *RuleConfig) { c.Budget = -100 },
		},
		{
			name:   "zero club cap",
			mutate: func(c *RuleConfig) { c.MaxPerClub = 0 },
		},
		{
			name:   "unknown position in quotas",
			mutate: func(c *RuleConfig) { c.PositionQuotas["STRIKER"] = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRuleConfig()
			tt.mutate(&cfg)

			_, err := Build(cfg)
			assert.ErrorIs(t, err, utils.ErrInvalidConfiguration)
		})
	}
}

func TestBuild_CopiesQuotas(t *testing.T) {
	cfg := DefaultRuleConfig()
	constraints, err := Build(cfg)
	require.NoError(t, err)

	cfg.PositionQuotas[models.Defender] = 0
	assert.Equal(t, 5, constraints.PositionQuotas[models.Defender])
}
