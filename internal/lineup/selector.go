// Package lineup derives a starting XI, bench order, and captaincy from an
// optimized squad.
package lineup

import (
	"fmt"
	"sort"

	"github.com/rcallahan/fpl-optimizer/internal/models"
	"github.com/rcallahan/fpl-optimizer/pkg/utils"
)

// Weights are the availability penalty factors applied when scoring
// starters. An available player's points count in full; doubtful and
// unavailable players are discounted so the selector prefers players
// expected to play.
type Weights struct {
	DoubtfulFactor    float64 `json:"doubtful_factor"`
	UnavailableFactor float64 `json:"unavailable_factor"`
}

// DefaultWeights returns the standard availability penalty factors.
func DefaultWeights() Weights {
	return Weights{
		DoubtfulFactor:    0.6,
		UnavailableFactor: 0.1,
	}
}

func (w Weights) factor(a models.Availability) float64 {
	switch a {
	case models.Doubtful:
		return w.DoubtfulFactor
	case models.Unavailable:
		return w.UnavailableFactor
	default:
		return 1.0
	}
}

// Select picks the maximum-scoring legal formation from the squad: exactly
// one starting goalkeeper, 3-5 defenders, 2-5 midfielders, and 1-3 forwards
// totaling eleven. The remaining four go to the bench ordered by descending
// predicted points with the reserve goalkeeper last, per substitution rules.
// It fails with utils.ErrNoValidFormation only if the squad's positional
// composition violates the squad invariants, which indicates an upstream
// fault.
func Select(squad models.Squad, weights Weights) (models.Lineup, error) {
	if len(squad.Players) != models.SquadSize {
		return models.Lineup{}, fmt.Errorf("%w: squad has %d players, want %d", utils.ErrNoValidFormation, len(squad.Players), models.SquadSize)
	}

	grouped := squad.ByPosition()
	for pos := range grouped {
		sortByAdjusted(grouped[pos], weights)
	}

	goalkeepers := grouped[models.Goalkeeper]
	defenders := grouped[models.Defender]
	midfielders := grouped[models.Midfielder]
	forwards := grouped[models.Forward]

	if len(goalkeepers) == 0 {
		return models.Lineup{}, fmt.Errorf("%w: squad has no goalkeeper", utils.ErrNoValidFormation)
	}

	var (
		bestFormation models.Formation
		bestScore     float64
		found         bool
	)
	for def := 3; def <= 5; def++ {
		for mid := 2; mid <= 5; mid++ {
			fwd := models.StartersSize - 1 - def - mid
			formation := models.Formation{Defenders: def, Midfielders: mid, Forwards: fwd}
			if !formation.Valid() {
				continue
			}
			if def > len(defenders) || mid > len(midfielders) || fwd > len(forwards) {
				continue
			}

			score := adjustedPoints(goalkeepers[0], weights) +
				topAdjusted(defenders, def, weights) +
				topAdjusted(midfielders, mid, weights) +
				topAdjusted(forwards, fwd, weights)

			if !found || score > bestScore {
				found = true
				bestScore = score
				bestFormation = formation
			}
		}
	}
	if !found {
		return models.Lineup{}, fmt.Errorf("%w: no legal formation fits positions %d/%d/%d/%d",
			utils.ErrNoValidFormation, len(goalkeepers), len(defenders), len(midfielders), len(forwards))
	}

	starters := make([]models.Player, 0, models.StartersSize)
	starters = append(starters, goalkeepers[0])
	starters = append(starters, defenders[:bestFormation.Defenders]...)
	starters = append(starters, midfielders[:bestFormation.Midfielders]...)
	starters = append(starters, forwards[:bestFormation.Forwards]...)

	bench := make([]models.Player, 0, models.BenchSize)
	bench = append(bench, defenders[bestFormation.Defenders:]...)
	bench = append(bench, midfielders[bestFormation.Midfielders:]...)
	bench = append(bench, forwards[bestFormation.Forwards:]...)
	sort.Slice(bench, func(i, j int) bool {
		if bench[i].PredictedPoints != bench[j].PredictedPoints {
			return bench[i].PredictedPoints > bench[j].PredictedPoints
		}
		return bench[i].ID < bench[j].ID
	})
	// Reserve goalkeeper is always the last substitute.
	bench = append(bench, goalkeepers[1:]...)

	captainID, viceID := pickCaptains(starters)

	return models.Lineup{
		Starters:      starters,
		Bench:         bench,
		Formation:     bestFormation,
		CaptainID:     captainID,
		ViceCaptainID: viceID,
	}, nil
}

func adjustedPoints(p models.Player, w Weights) float64 {
	return p.PredictedPoints * w.factor(p.Availability)
}

func topAdjusted(players []models.Player, n int, w Weights) float64 {
	total := 0.0
	for _, p := range players[:n] {
		total += adjustedPoints(p, w)
	}
	return total
}

func sortByAdjusted(players []models.Player, w Weights) {
	sort.Slice(players, func(i, j int) bool {
		pi, pj := adjustedPoints(players[i], w), adjustedPoints(players[j], w)
		if pi != pj {
			return pi > pj
		}
		return players[i].ID < players[j].ID
	})
}

// pickCaptains chooses the captain and vice-captain from the starters:
// highest and second-highest predicted points, with available players always
// ranked ahead of doubtful or unavailable ones. When no starter is available
// the ranking degrades to predicted points alone, so captain selection still
// proceeds deterministically; that is expected behavior, not an error.
func pickCaptains(starters []models.Player) (int, int) {
	ranked := append([]models.Player(nil), starters...)
	sort.Slice(ranked, func(i, j int) bool {
		ai := ranked[i].Availability == models.Available
		aj := ranked[j].Availability == models.Available
		if ai != aj {
			return ai
		}
		if ranked[i].PredictedPoints != ranked[j].PredictedPoints {
			return ranked[i].PredictedPoints > ranked[j].PredictedPoints
		}
		return ranked[i].ID < ranked[j].ID
	})

	return ranked[0].ID, ranked[1].ID
}
