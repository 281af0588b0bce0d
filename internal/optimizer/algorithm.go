// Package optimizer solves the constrained 15-player selection problem
// exactly. One binary decision per player; exactly quota[p] players per
// position; total cost within budget; at most maxPerClub players per club.
// The objective maximizes total predicted points, with ties broken by lower
// total cost and then by the lexicographically lowest identifier set, so the
// result is identical on every run with the same inputs.
package optimizer

import (
	"context"
	"fmt"
	"sort"

	"github.com/rcallahan/fpl-optimizer/internal/models"
	"github.com/rcallahan/fpl-optimizer/internal/rules"
	"github.com/rcallahan/fpl-optimizer/pkg/utils"
)

// Options bounds the search. A zero value means unbounded.
type Options struct {
	// MaxNodes caps the number of search nodes visited before the run fails
	// with utils.ErrTimeout.
	MaxNodes int64
}

// Result carries the squad plus search statistics.
type Result struct {
	Squad        models.Squad `json:"squad"`
	NodesVisited int64        `json:"nodes_visited"`
}

// pointsEpsilon guards float comparisons when deciding whether one candidate
// strictly beats another on predicted points.
const pointsEpsilon = 1e-9

// deadline and node-budget checks happen once per this many nodes.
const checkInterval = 1024

var errBudgetExhausted = fmt.Errorf("search budget exhausted")

// Optimize selects the optimal squad from the catalog under the constraint
// set. It fails with utils.ErrInvalidInput when too few eligible players
// exist for a position quota, utils.ErrInfeasible when no 15-player subset
// satisfies every constraint, and utils.ErrTimeout when the context deadline
// or node budget expires before the search completes. A partial or
// non-optimal squad is never returned.
func Optimize(ctx context.Context, players []models.Player, constraints rules.SquadConstraintSet, opts Options) (models.Squad, error) {
	result, err := OptimizeWithStats(ctx, players, constraints, opts)
	if err != nil {
		return models.Squad{}, err
	}
	return result.Squad, nil
}

// OptimizeWithStats is Optimize plus search statistics.
func OptimizeWithStats(ctx context.Context, players []models.Player, constraints rules.SquadConstraintSet, opts Options) (*Result, error) {
	quotaSum := 0
	for _, quota := range constraints.PositionQuotas {
		quotaSum += quota
	}
	if quotaSum != constraints.SquadSize {
		return nil, fmt.Errorf("%w: quotas sum to %d, want %d", utils.ErrInvalidConfiguration, quotaSum, constraints.SquadSize)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrTimeout, err)
	}

	groups, err := buildGroups(players, constraints)
	if err != nil {
		return nil, err
	}

	s := &search{
		ctx:         ctx,
		groups:      groups,
		budget:      constraints.Budget,
		maxPerClub:  constraints.MaxPerClub,
		maxNodes:    opts.MaxNodes,
		clubCounts:  make(map[string]int),
		chosen:      make([]models.Player, 0, constraints.SquadSize),
		minCostRest: make([]int, len(groups)+1),
		maxPtsRest:  make([]float64, len(groups)+1),
	}

	// Aggregate bounds over the groups still untouched after each one.
	for gi := len(groups) - 1; gi >= 0; gi-- {
		g := groups[gi]
		s.minCostRest[gi] = s.minCostRest[gi+1] + g.minCostFrom(0, g.quota)
		s.maxPtsRest[gi] = s.maxPtsRest[gi+1] + g.bestPointsFrom(0, g.quota)
	}

	if err := s.descend(0, 0, 0, 0, 0); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrTimeout, ctxErr)
		}
		return nil, fmt.Errorf("%w: node budget of %d exceeded after %d nodes", utils.ErrTimeout, opts.MaxNodes, s.nodes)
	}

	if s.best == nil {
		return nil, fmt.Errorf("%w: no squad satisfies budget, quota, and club constraints", utils.ErrInfeasible)
	}
	if len(s.best.players) != constraints.SquadSize {
		return nil, fmt.Errorf("%w: selected %d players, want %d", utils.ErrInfeasible, len(s.best.players), constraints.SquadSize)
	}

	squad := models.NewSquad(s.best.players)
	return &Result{Squad: squad, NodesVisited: s.nodes}, nil
}

// positionGroup holds one position's eligible players sorted by
// (points desc, cost asc, id asc), plus precomputed bounds.
type positionGroup struct {
	position models.Position
	quota    int
	players  []models.Player

	// pointsPrefix[i] is the sum of the first i players' points, so the best
	// k-subset by points from index i onward is pointsPrefix[i+k]-pointsPrefix[i].
	pointsPrefix []float64

	// cheapSums[i][k] is the sum of the k cheapest costs among players[i:].
	cheapSums [][]int
}

func buildGroups(players []models.Player, constraints rules.SquadConstraintSet) ([]*positionGroup, error) {
	byPosition := make(map[models.Position][]models.Player)
	for _, p := range players {
		// Unavailable players are ineligible for selection; doubtful players
		// stay in the pool and are penalized downstream by the lineup selector.
		if p.Availability == models.Unavailable {
			continue
		}
		byPosition[p.Position] = append(byPosition[p.Position], p)
	}

	groups := make([]*positionGroup, 0, len(models.Positions))
	for _, pos := range models.Positions {
		quota := constraints.PositionQuotas[pos]
		if quota == 0 {
			continue
		}

		pool := byPosition[pos]
		if len(pool) < quota {
			return nil, fmt.Errorf("%w: %d eligible %s players, quota is %d", utils.ErrInvalidInput, len(pool), pos, quota)
		}

		sorted := make([]models.Player, len(pool))
		copy(sorted, pool)
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].PredictedPoints != sorted[j].PredictedPoints {
				return sorted[i].PredictedPoints > sorted[j].PredictedPoints
			}
			if sorted[i].Cost != sorted[j].Cost {
				return sorted[i].Cost < sorted[j].Cost
			}
			return sorted[i].ID < sorted[j].ID
		})

		groups = append(groups, newPositionGroup(pos, quota, sorted))
	}

	return groups, nil
}

func newPositionGroup(pos models.Position, quota int, sorted []models.Player) *positionGroup {
	n := len(sorted)

	prefix := make([]float64, n+1)
	for i, p := range sorted {
		prefix[i+1] = prefix[i] + p.PredictedPoints
	}

	// Build cheapest-completion sums from the right. cheapest holds the up to
	// quota smallest costs in the suffix, ascending.
	cheapSums := make([][]int, n+1)
	cheapSums[n] = []int{0}
	cheapest := make([]int, 0, quota)
	for i := n - 1; i >= 0; i-- {
		cheapest = insertCapped(cheapest, sorted[i].Cost, quota)
		sums := make([]int, len(cheapest)+1)
		for k, c := range cheapest {
			sums[k+1] = sums[k] + c
		}
		cheapSums[i] = sums
	}

	return &positionGroup{
		position:     pos,
		quota:        quota,
		players:      sorted,
		pointsPrefix: prefix,
		cheapSums:    cheapSums,
	}
}

// insertCapped inserts v into the ascending slice s, keeping at most limit
// elements. s is modified in place when possible.
func insertCapped(s []int, v int, limit int) []int {
	pos := sort.SearchInts(s, v)
	if pos >= limit {
		return s
	}
	if len(s) < limit {
		s = append(s, 0)
	}
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}

// minCostFrom returns the cheapest way to take k players from index i on.
func (g *positionGroup) minCostFrom(i, k int) int {
	return g.cheapSums[i][k]
}

// bestPointsFrom returns the highest points achievable taking k players from
// index i on, ignoring budget and club caps.
func (g *positionGroup) bestPointsFrom(i, k int) float64 {
	return g.pointsPrefix[i+k] - g.pointsPrefix[i]
}

type candidate struct {
	players []models.Player
	points  float64
	cost    int
	ids     []int // ascending
}

type search struct {
	ctx        context.Context
	groups     []*positionGroup
	budget     int
	maxPerClub int
	maxNodes   int64

	// minCostRest[gi] / maxPtsRest[gi] aggregate full-quota bounds over
	// groups[gi:].
	minCostRest []int
	maxPtsRest  []float64

	nodes      int64
	clubCounts map[string]int
	chosen     []models.Player
	best       *candidate
}

// descend explores taking or skipping groups[gi].players[i], having already
// picked `picked` players from this group at the given running cost/points.
func (s *search) descend(gi, i, picked, cost int, points float64) error {
	s.nodes++
	if s.nodes%checkInterval == 0 {
		if err := s.ctx.Err(); err != nil {
			return errBudgetExhausted
		}
	}
	if s.maxNodes > 0 && s.nodes > s.maxNodes {
		return errBudgetExhausted
	}

	g := s.groups[gi]
	need := g.quota - picked

	if need == 0 {
		if gi == len(s.groups)-1 {
			s.record(cost, points)
			return nil
		}
		return s.descend(gi+1, 0, 0, cost, points)
	}

	// Dead end: not enough players left in this group.
	if len(g.players)-i < need {
		return nil
	}

	// Cheapest possible completion still breaks the budget.
	if cost+g.minCostFrom(i, need)+s.minCostRest[gi+1] > s.budget {
		return nil
	}

	// Even the most optimistic completion cannot beat the incumbent on
	// points. Equal-points completions stay live so cost and identifier
	// tie-breaks remain exact.
	if s.best != nil {
		bound := points + g.bestPointsFrom(i, need) + s.maxPtsRest[gi+1]
		if bound < s.best.points-pointsEpsilon {
			return nil
		}
	}

	p := g.players[i]

	// Branch 1: take the player, club cap permitting.
	if s.clubCounts[p.Club] < s.maxPerClub {
		s.clubCounts[p.Club]++
		s.chosen = append(s.chosen, p)
		err := s.descend(gi, i+1, picked+1, cost+p.Cost, points+p.PredictedPoints)
		s.chosen = s.chosen[:len(s.chosen)-1]
		s.clubCounts[p.Club]--
		if err != nil {
			return err
		}
	}

	// Branch 2: skip the player.
	return s.descend(gi, i+1, picked, cost, points)
}

// record keeps the candidate if it fits the budget and beats the incumbent
// under the explicit tie-break order: points desc, cost asc, identifier set
// asc. The cost bound in descend vouches for the cheapest completion, not
// the one actually taken, so the budget must be re-checked here.
func (s *search) record(cost int, points float64) {
	if cost > s.budget {
		return
	}
	if s.best != nil {
		switch {
		case points < s.best.points-pointsEpsilon:
			return
		case points > s.best.points+pointsEpsilon:
			// strictly better
		case cost > s.best.cost:
			return
		case cost == s.best.cost && !idsLess(sortedIDs(s.chosen), s.best.ids):
			return
		}
	}

	players := make([]models.Player, len(s.chosen))
	copy(players, s.chosen)
	s.best = &candidate{
		players: players,
		points:  points,
		cost:    cost,
		ids:     sortedIDs(players),
	}
}

func sortedIDs(players []models.Player) []int {
	ids := make([]int, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	sort.Ints(ids)
	return ids
}

// idsLess compares two ascending identifier sets lexicographically.
func idsLess(a, b []int) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
