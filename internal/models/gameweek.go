package models

// FixtureInfo carries a player's fixture flags for one gameweek.
type FixtureInfo struct {
	HasFixture    bool `json:"has_fixture"`
	DoubleFixture bool `json:"double_fixture"`
}

// GameweekContext is the fixture information the chip advisor consumes.
// Fixtures maps player ID to that player's flags; players absent from the
// map are assumed to have a single fixture.
type GameweekContext struct {
	Gameweek int                 `json:"gameweek"`
	Finished bool                `json:"finished"`
	Fixtures map[int]FixtureInfo `json:"fixtures,omitempty"`
}

// FixtureFor returns the fixture flags for a player, defaulting to a single
// fixture when the player is not in the map.
func (gc GameweekContext) FixtureFor(playerID int) FixtureInfo {
	if info, ok := gc.Fixtures[playerID]; ok {
		return info
	}
	return FixtureInfo{HasFixture: true}
}
