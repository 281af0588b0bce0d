package models

// Position is one of the four FPL positions.
type Position string

const (
	Goalkeeper Position = "GKP"
	Defender   Position = "DEF"
	Midfielder Position = "MID"
	Forward    Position = "FWD"
)

// Positions lists every position in squad display order.
var Positions = []Position{Goalkeeper, Defender, Midfielder, Forward}

// Valid reports whether p is a recognized position.
func (p Position) Valid() bool {
	switch p {
	case Goalkeeper, Defender, Midfielder, Forward:
		return true
	}
	return false
}

// Availability is a player's selection status for the upcoming gameweek.
type Availability string

const (
	Available   Availability = "available"
	Doubtful    Availability = "doubtful"
	Unavailable Availability = "unavailable"
)

// Player is the normalized entity the optimizer consumes. Cost and position
// are immutable for the duration of an optimization run; predicted points may
// be recomputed between runs.
type Player struct {
	ID              int          `json:"id"`
	Name            string       `json:"name"`
	Position        Position     `json:"position"`
	Club            string       `json:"club"`
	Cost            int          `json:"cost"` // tenths of a million
	PredictedPoints float64      `json:"predicted_points"`
	ActualPoints    *float64     `json:"actual_points,omitempty"` // nil until the gameweek is live
	Availability    Availability `json:"availability"`
}

// CostMillions returns the player cost in millions.
func (p Player) CostMillions() float64 {
	return float64(p.Cost) / 10.0
}
