package models

// SquadSize is the fixed number of players in an FPL squad.
const SquadSize = 15

// Squad is the 15-player set produced by an optimization run. It is owned by
// the run that produced it and never mutated once returned.
type Squad struct {
	Players         []Player `json:"players"`
	TotalCost       int      `json:"total_cost"` // tenths of a million
	PredictedPoints float64  `json:"predicted_points"`
}

// NewSquad builds a squad and computes its totals.
func NewSquad(players []Player) Squad {
	s := Squad{Players: players}
	for _, p := range players {
		s.TotalCost += p.Cost
		s.PredictedPoints += p.PredictedPoints
	}
	return s
}

// TotalCostMillions returns the squad cost in millions.
func (s Squad) TotalCostMillions() float64 {
	return float64(s.TotalCost) / 10.0
}

// AveragePredictedPoints returns the mean predicted points per squad player.
func (s Squad) AveragePredictedPoints() float64 {
	if len(s.Players) == 0 {
		return 0
	}
	return s.PredictedPoints / float64(len(s.Players))
}

// ByPosition groups the squad's players by position.
func (s Squad) ByPosition() map[Position][]Player {
	grouped := make(map[Position][]Player)
	for _, p := range s.Players {
		grouped[p.Position] = append(grouped[p.Position], p)
	}
	return grouped
}

// HasPlayer checks if a player is in the squad.
func (s Squad) HasPlayer(playerID int) bool {
	for _, p := range s.Players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

// ClubCounts returns a map of club names to player count.
func (s Squad) ClubCounts() map[string]int {
	counts := make(map[string]int)
	for _, p := range s.Players {
		counts[p.Club]++
	}
	return counts
}
