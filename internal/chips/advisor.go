// Package chips scores each one-time chip against the current lineup and
// gameweek context. Every rule is independently computable and side-effect
// free; the advisor returns all evaluations and leaves prioritization among
// simultaneously-recommended chips to the caller.
package chips

import (
	"github.com/rcallahan/fpl-optimizer/internal/models"
)

// Chip identifies one of the limited-use strategic modifiers.
type Chip string

const (
	TripleCaptain Chip = "triple_captain"
	BenchBoost    Chip = "bench_boost"
	FreeHit       Chip = "free_hit"
)

// Recommendation is one chip's evaluation: a recommend/hold decision and the
// score that justifies it. The score is the measured ratio the threshold was
// compared against, so callers can see how close the call was.
type Recommendation struct {
	Chip      Chip    `json:"chip"`
	Recommend bool    `json:"recommend"`
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
}

// Thresholds are the named decision constants. All comparisons are strict,
// so a score exactly at the threshold is a hold.
type Thresholds struct {
	// TripleCaptainMultiple: recommend when the captain's predicted points
	// exceed this multiple of the squad's average predicted points.
	TripleCaptainMultiple float64 `json:"triple_captain_multiple"`
	// BenchBoostRatio: recommend when bench predicted points exceed this
	// fraction of the starting XI's predicted points.
	BenchBoostRatio float64 `json:"bench_boost_ratio"`
	// FreeHitDisruption: recommend when more than this fraction of the
	// starting XI is unavailable or without a fixture this gameweek.
	FreeHitDisruption float64 `json:"free_hit_disruption"`
}

// DefaultThresholds returns the standard decision constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TripleCaptainMultiple: 1.5,
		BenchBoostRatio:       0.4,
		FreeHitDisruption:     0.34,
	}
}

// Evaluate scores every chip against the lineup and gameweek context.
func Evaluate(lineup models.Lineup, gw models.GameweekContext, t Thresholds) []Recommendation {
	return []Recommendation{
		evaluateTripleCaptain(lineup, t),
		evaluateBenchBoost(lineup, t),
		evaluateFreeHit(lineup, gw, t),
	}
}

// evaluateTripleCaptain signals an unusually favorable captain fixture: the
// captain's predicted points measured against the squad's per-player average.
func evaluateTripleCaptain(lineup models.Lineup, t Thresholds) Recommendation {
	rec := Recommendation{Chip: TripleCaptain, Threshold: t.TripleCaptainMultiple}

	captain, ok := lineup.Captain()
	if !ok {
		return rec
	}

	squadTotal := lineup.SquadPredictedPoints()
	squadCount := len(lineup.Starters) + len(lineup.Bench)
	if squadCount == 0 || squadTotal <= 0 {
		return rec
	}

	average := squadTotal / float64(squadCount)
	rec.Score = captain.PredictedPoints / average
	rec.Recommend = rec.Score > t.TripleCaptainMultiple
	return rec
}

// evaluateBenchBoost signals a strong bench relative to the starting XI.
func evaluateBenchBoost(lineup models.Lineup, t Thresholds) Recommendation {
	rec := Recommendation{Chip: BenchBoost, Threshold: t.BenchBoostRatio}

	startersPoints := lineup.StartersPredictedPoints()
	if startersPoints <= 0 {
		return rec
	}

	rec.Score = lineup.BenchPredictedPoints() / startersPoints
	rec.Recommend = rec.Score > t.BenchBoostRatio
	return rec
}

// evaluateFreeHit signals a squad structurally disadvantaged for this
// gameweek only: the fraction of starters who are unavailable or have no
// fixture.
func evaluateFreeHit(lineup models.Lineup, gw models.GameweekContext, t Thresholds) Recommendation {
	rec := Recommendation{Chip: FreeHit, Threshold: t.FreeHitDisruption}

	if len(lineup.Starters) == 0 {
		return rec
	}

	disrupted := 0
	for _, p := range lineup.Starters {
		if p.Availability == models.Unavailable || !gw.FixtureFor(p.ID).HasFixture {
			disrupted++
		}
	}

	rec.Score = float64(disrupted) / float64(len(lineup.Starters))
	rec.Recommend = rec.Score > t.FreeHitDisruption
	return rec
}
