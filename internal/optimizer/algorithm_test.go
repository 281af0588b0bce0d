package optimizer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcallahan/fpl-optimizer/internal/models"
	"github.com/rcallahan/fpl-optimizer/internal/rules"
	"github.com/rcallahan/fpl-optimizer/pkg/utils"
)

func defaultConstraints(t *testing.T) rules.SquadConstraintSet {
	t.Helper()
	constraints, err := rules.Build(rules.DefaultRuleConfig())
	require.NoError(t, err)
	return constraints
}

func player(id int, pos models.Position, club string, cost int, points float64) models.Player {
	return models.Player{
		ID:              id,
		Name:            fmt.Sprintf("Player %d", id),
		Position:        pos,
		Club:            club,
		Cost:            cost,
		PredictedPoints: points,
		Availability:    models.Available,
	}
}

// benchmarkCatalog is the 20-player catalog from the budget scenario:
// 2 GK, 6 DEF, 7 MID, 5 FWD with predicted points monotonically higher for
// pricier players and a cheapest legal squad costing 95.0m.
func benchmarkCatalog() []models.Player {
	var players []models.Player

	add := func(id int, pos models.Position, cost int) {
		club := fmt.Sprintf("Club %d", id)
		players = append(players, player(id, pos, club, cost, float64(cost)/10.0))
	}

	add(1, models.Goalkeeper, 45)
	add(2, models.Goalkeeper, 40)

	for i, cost := range []int{40, 45, 50, 55, 60, 65} {
		add(10+i, models.Defender, cost)
	}
	for i, cost := range []int{50, 55, 60, 65, 70, 75, 80} {
		add(20+i, models.Midfielder, cost)
	}
	for i, cost := range []int{100, 105, 110, 115, 120} {
		add(30+i, models.Forward, cost)
	}

	return players
}

func squadIDs(squad models.Squad) []int {
	ids := make([]int, len(squad.Players))
	for i, p := range squad.Players {
		ids[i] = p.ID
	}
	return ids
}

func assertSatisfiesConstraints(t *testing.T, squad models.Squad, constraints rules.SquadConstraintSet) {
	t.Helper()

	require.Len(t, squad.Players, constraints.SquadSize)

	seen := make(map[int]bool)
	positionCounts := make(map[models.Position]int)
	for _, p := range squad.Players {
		assert.False(t, seen[p.ID], "player %d selected twice", p.ID)
		seen[p.ID] = true
		positionCounts[p.Position]++
	}

	for pos, quota := range constraints.PositionQuotas {
		assert.Equal(t, quota, positionCounts[pos], "quota for %s", pos)
	}

	assert.LessOrEqual(t, squad.TotalCost, constraints.Budget)

	for club, count := range squad.ClubCounts() {
		assert.LessOrEqual(t, count, constraints.MaxPerClub, "club cap for %s", club)
	}
}

// bruteForceOptimal enumerates every legal squad and applies the optimizer's
// tie-break order, giving an independent reference result.
func bruteForceOptimal(t *testing.T, players []models.Player, constraints rules.SquadConstraintSet) []int {
	t.Helper()

	byPosition := make(map[models.Position][]models.Player)
	for _, p := range players {
		if p.Availability == models.Unavailable {
			continue
		}
		byPosition[p.Position] = append(byPosition[p.Position], p)
	}

	var (
		bestIDs    []int
		bestPoints float64
		bestCost   int
	)

	var positions []models.Position
	for _, pos := range models.Positions {
		if constraints.PositionQuotas[pos] > 0 {
			positions = append(positions, pos)
		}
	}

	var walk func(posIdx int, chosen []models.Player)
	walk = func(posIdx int, chosen []models.Player) {
		if posIdx == len(positions) {
			cost := 0
			points := 0.0
			clubs := make(map[string]int)
			for _, p := range chosen {
				cost += p.Cost
				points += p.PredictedPoints
				clubs[p.Club]++
			}
			if cost > constraints.Budget {
				return
			}
			for _, n := range clubs {
				if n > constraints.MaxPerClub {
					return
				}
			}

			ids := sortedIDs(chosen)
			if bestIDs == nil ||
				points > bestPoints+pointsEpsilon ||
				(points > bestPoints-pointsEpsilon && cost < bestCost) ||
				(points > bestPoints-pointsEpsilon && cost == bestCost && idsLess(ids, bestIDs)) {
				bestIDs = ids
				bestPoints = points
				bestCost = cost
			}
			return
		}

		pos := positions[posIdx]
		pool := byPosition[pos]
		quota := constraints.PositionQuotas[pos]

		idx := make([]int, quota)
		var pick func(start, k int)
		pick = func(start, k int) {
			if k == quota {
				subset := make([]models.Player, 0, quota)
				for _, i := range idx {
					subset = append(subset, pool[i])
				}
				walk(posIdx+1, append(chosen, subset...))
				return
			}
			for i := start; i <= len(pool)-(quota-k); i++ {
				idx[k] = i
				pick(i+1, k+1)
			}
		}
		pick(0, 0)
	}
	walk(0, nil)

	require.NotNil(t, bestIDs, "brute force found no feasible squad")
	return bestIDs
}

func TestOptimize_MatchesBruteForceOnBudgetScenario(t *testing.T) {
	players := benchmarkCatalog()
	constraints := defaultConstraints(t)

	squad, err := Optimize(context.Background(), players, constraints, Options{})
	require.NoError(t, err)

	assertSatisfiesConstraints(t, squad, constraints)
	assert.Equal(t, bruteForceOptimal(t, players, constraints), sortedIDs(squad.Players))
}

func TestOptimize_Deterministic(t *testing.T) {
	players := benchmarkCatalog()
	constraints := defaultConstraints(t)

	first, err := Optimize(context.Background(), players, constraints, Options{})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := Optimize(context.Background(), players, constraints, Options{})
		require.NoError(t, err)
		assert.Equal(t, squadIDs(first), squadIDs(again))
	}
}

func TestOptimize_InfeasibleBudget(t *testing.T) {
	players := benchmarkCatalog()

	cfg := rules.DefaultRuleConfig()
	cfg.Budget = 600 // cheapest legal squad costs 950
	constraints, err := rules.Build(cfg)
	require.NoError(t, err)

	_, err = Optimize(context.Background(), players, constraints, Options{})
	assert.ErrorIs(t, err, utils.ErrInfeasible)
}

func TestOptimize_ExactBudgetIsFeasible(t *testing.T) {
	players := benchmarkCatalog()

	cfg := rules.DefaultRuleConfig()
	cfg.Budget = 950
	constraints, err := rules.Build(cfg)
	require.NoError(t, err)

	squad, err := Optimize(context.Background(), players, constraints, Options{})
	require.NoError(t, err)
	assert.Equal(t, 950, squad.TotalCost)
}

func TestOptimize_TooFewEligiblePlayers(t *testing.T) {
	players := benchmarkCatalog()
	// Knock one of the two goalkeepers out of the eligible pool.
	players[0].Availability = models.Unavailable

	_, err := Optimize(context.Background(), players, defaultConstraints(t), Options{})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

func TestOptimize_ExactlyFifteenEligible(t *testing.T) {
	var players []models.Player
	id := 1
	add := func(pos models.Position, n int) {
		for i := 0; i < n; i++ {
			players = append(players, player(id, pos, fmt.Sprintf("Club %d", id), 50, 4.0))
			id++
		}
	}
	add(models.Goalkeeper, 2)
	add(models.Defender, 5)
	add(models.Midfielder, 5)
	add(models.Forward, 3)

	constraints := defaultConstraints(t)
	squad, err := Optimize(context.Background(), players, constraints, Options{})
	require.NoError(t, err)
	assertSatisfiesConstraints(t, squad, constraints)
}

func TestOptimize_RespectsClubCap(t *testing.T) {
	players := benchmarkCatalog()
	// The four best midfielders all play for the same club; only three fit.
	for i := 3; i < 7; i++ {
		players[8+i].Club = "Stacked FC"
	}
	require.Equal(t, models.Midfielder, players[11].Position)

	constraints := defaultConstraints(t)
	squad, err := Optimize(context.Background(), players, constraints, Options{})
	require.NoError(t, err)

	assertSatisfiesConstraints(t, squad, constraints)
	assert.Equal(t, bruteForceOptimal(t, players, constraints), sortedIDs(squad.Players))
}

func TestOptimize_TieBreaksOnCostThenID(t *testing.T) {
	var players []models.Player
	id := 1
	add := func(pos models.Position, n int) {
		for i := 0; i < n; i++ {
			players = append(players, player(id, pos, fmt.Sprintf("Club %d", id), 50, 4.0))
			id++
		}
	}
	add(models.Goalkeeper, 2)
	add(models.Defender, 5)
	add(models.Midfielder, 5)

	// Two forwards that always make the squad, then three candidates for the
	// last slot, all worth 6.0 points: the cheaper one must win, and at equal
	// cost the lower ID must win.
	players = append(players,
		player(90, models.Forward, "Club X", 80, 9.0),
		player(91, models.Forward, "Club Y", 80, 9.0),
		player(100, models.Forward, "Club A", 70, 6.0),
		player(101, models.Forward, "Club B", 60, 6.0),
		player(102, models.Forward, "Club C", 60, 6.0),
	)

	squad, err := Optimize(context.Background(), players, defaultConstraints(t), Options{})
	require.NoError(t, err)

	assert.True(t, squad.HasPlayer(101))
	assert.False(t, squad.HasPlayer(100))
	assert.False(t, squad.HasPlayer(102))
}

func TestOptimize_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Optimize(ctx, benchmarkCatalog(), defaultConstraints(t), Options{})
	assert.ErrorIs(t, err, utils.ErrTimeout)
}

func TestOptimize_NodeBudget(t *testing.T) {
	players := benchmarkCatalog()

	_, err := Optimize(context.Background(), players, defaultConstraints(t), Options{MaxNodes: 1})
	assert.ErrorIs(t, err, utils.ErrTimeout)
}

func TestOptimize_DeadlineExpiry(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	players := benchmarkCatalog()
	_, err := Optimize(ctx, players, defaultConstraints(t), Options{})
	assert.ErrorIs(t, err, utils.ErrTimeout)
}

// overshootCatalog forces the take/skip search into a trap: after taking the
// two best forwards, the cheapest completion of the forward quota still fits
// the budget, but the highest-points completion (id 52, cost 200) does not.
// A correct search must fall back to the cheaper forward (id 53).
func overshootCatalog() []models.Player {
	var players []models.Player

	id := 1
	add := func(pos models.Position, n int) {
		for i := 0; i < n; i++ {
			club := fmt.Sprintf("Club %d", id)
			players = append(players, player(id, pos, club, 40, 1.0))
			id++
		}
	}
	add(models.Goalkeeper, 2)
	add(models.Defender, 5)
	add(models.Midfielder, 5)

	players = append(players,
		player(50, models.Forward, "Club 50", 40, 10.0),
		player(51, models.Forward, "Club 51", 40, 9.0),
		player(52, models.Forward, "Club 52", 200, 8.0),
		player(53, models.Forward, "Club 53", 40, 7.0),
		player(54, models.Forward, "Club 54", 40, 6.0),
	)

	return players
}

func TestOptimize_NeverExceedsBudgetOnExpensiveCompletion(t *testing.T) {
	players := overshootCatalog()
	cfg := rules.DefaultRuleConfig()
	cfg.Budget = 650 // fits 50+51+53 (600 total), not 50+51+52 (760 total)
	constraints, err := rules.Build(cfg)
	require.NoError(t, err)

	squad, err := Optimize(context.Background(), players, constraints, Options{})
	require.NoError(t, err)

	assertSatisfiesConstraints(t, squad, constraints)
	assert.Equal(t, bruteForceOptimal(t, players, constraints), sortedIDs(squad.Players))
	assert.True(t, squad.HasPlayer(53))
	assert.False(t, squad.HasPlayer(52))
}

func TestOptimize_BudgetSweepMatchesBruteForce(t *testing.T) {
	players := benchmarkCatalog()

	// The cheapest legal squad costs 950; sweep a band of near-binding
	// budgets around it.
	for budget := 950; budget <= 1150; budget += 10 {
		cfg := rules.DefaultRuleConfig()
		cfg.Budget = budget
		constraints, err := rules.Build(cfg)
		require.NoError(t, err)

		squad, err := Optimize(context.Background(), players, constraints, Options{})
		require.NoError(t, err, "budget %d", budget)

		assert.LessOrEqual(t, squad.TotalCost, budget, "budget %d", budget)
		assert.Equal(t, bruteForceOptimal(t, players, constraints),
			sortedIDs(squad.Players), "budget %d", budget)
	}
}
