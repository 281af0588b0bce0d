package models

import "fmt"

// StartersSize and BenchSize partition the 15-player squad for a gameweek.
const (
	StartersSize = 11
	BenchSize    = 4
)

// Formation is the count of starting players per outfield position. The
// goalkeeper count is always 1 and is not part of the formation name.
type Formation struct {
	Defenders   int `json:"defenders"`
	Midfielders int `json:"midfielders"`
	Forwards    int `json:"forwards"`
}

// Valid reports whether f satisfies the league-legal ranges: 3-5 DEF,
// 2-5 MID, 1-3 FWD, with 1 GK making eleven starters.
func (f Formation) Valid() bool {
	if f.Defenders < 3 || f.Defenders > 5 {
		return false
	}
	if f.Midfielders < 2 || f.Midfielders > 5 {
		return false
	}
	if f.Forwards < 1 || f.Forwards > 3 {
		return false
	}
	return 1+f.Defenders+f.Midfielders+f.Forwards == StartersSize
}

// String renders the formation in the conventional d-m-f form, e.g. "3-5-2".
func (f Formation) String() string {
	return fmt.Sprintf("%d-%d-%d", f.Defenders, f.Midfielders, f.Forwards)
}

// Lineup is the starting XI, ordered bench, and captaincy derived from a
// squad. The bench is ordered by substitution priority with the reserve
// goalkeeper always last.
type Lineup struct {
	Starters      []Player  `json:"starters"`
	Bench         []Player  `json:"bench"`
	Formation     Formation `json:"formation"`
	CaptainID     int       `json:"captain_id"`
	ViceCaptainID int       `json:"vice_captain_id"`
}

// StartersPredictedPoints sums predicted points over the starting XI.
func (l Lineup) StartersPredictedPoints() float64 {
	total := 0.0
	for _, p := range l.Starters {
		total += p.PredictedPoints
	}
	return total
}

// BenchPredictedPoints sums predicted points over the bench.
func (l Lineup) BenchPredictedPoints() float64 {
	total := 0.0
	for _, p := range l.Bench {
		total += p.PredictedPoints
	}
	return total
}

// SquadPredictedPoints sums predicted points over all fifteen players.
func (l Lineup) SquadPredictedPoints() float64 {
	return l.StartersPredictedPoints() + l.BenchPredictedPoints()
}

// Captain returns the captain's player record.
func (l Lineup) Captain() (Player, bool) {
	return l.starter(l.CaptainID)
}

// ViceCaptain returns the vice-captain's player record.
func (l Lineup) ViceCaptain() (Player, bool) {
	return l.starter(l.ViceCaptainID)
}

func (l Lineup) starter(playerID int) (Player, bool) {
	for _, p := range l.Starters {
		if p.ID == playerID {
			return p, true
		}
	}
	return Player{}, false
}
