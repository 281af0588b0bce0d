package services

import (
	"strconv"

	"github.com/rcallahan/fpl-optimizer/internal/catalog"
	"github.com/rcallahan/fpl-optimizer/internal/models"
	"github.com/rcallahan/fpl-optimizer/internal/providers"
)

// PredictionModel derives a forward-looking expected-points score for each
// player from the bootstrap data: a weighted blend of the FPL site's own
// next-gameweek estimate, recent form, and the normalized ICT index.
type PredictionModel struct {
	EPNextWeight float64
	FormWeight   float64
	ICTWeight    float64
	// MinMinutes drops players with no meaningful season minutes from the
	// candidate pool.
	MinMinutes int
}

// DefaultPredictionModel returns the standard blend weights.
func DefaultPredictionModel() PredictionModel {
	return PredictionModel{
		EPNextWeight: 0.6,
		FormWeight:   0.3,
		ICTWeight:    0.1,
		MinMinutes:   1,
	}
}

// BuildRecords turns the bootstrap payload into raw catalog records with
// predicted points attached. Players below the minutes floor are dropped;
// availability filtering is the optimizer's concern, not ours.
func (m PredictionModel) BuildRecords(bootstrap *providers.Bootstrap) []catalog.RawPlayerRecord {
	positionByType := make(map[int]string, len(bootstrap.ElementTypes))
	for _, et := range bootstrap.ElementTypes {
		positionByType[et.ID] = et.SingularNameShort
	}
	clubByTeam := make(map[int]string, len(bootstrap.Teams))
	for _, t := range bootstrap.Teams {
		clubByTeam[t.ID] = t.Name
	}

	eligible := make([]providers.Element, 0, len(bootstrap.Elements))
	maxICT := 0.0
	for _, el := range bootstrap.Elements {
		if el.Minutes < m.MinMinutes {
			continue
		}
		eligible = append(eligible, el)
		if ict := parseStat(el.ICTIndex); ict > maxICT {
			maxICT = ict
		}
	}

	records := make([]catalog.RawPlayerRecord, 0, len(eligible))
	for _, el := range eligible {
		cost := el.NowCost
		actual := float64(el.EventPoints)
		records = append(records, catalog.RawPlayerRecord{
			ID:              el.ID,
			Name:            el.WebName,
			Position:        positionByType[el.ElementType],
			Club:            clubByTeam[el.Team],
			Cost:            &cost,
			PredictedPoints: m.expectedPoints(el, maxICT),
			ActualPoints:    &actual,
			Status:          el.Status,
		})
	}

	return records
}

// expectedPoints is the simulated xP score:
// 0.6*ep_next + 0.3*form + 0.1*(ict/maxICT)*10, clipped at zero.
func (m PredictionModel) expectedPoints(el providers.Element, maxICT float64) float64 {
	ictNorm := 0.0
	if maxICT > 0 {
		ictNorm = parseStat(el.ICTIndex) / maxICT
	}

	xp := m.EPNextWeight*parseStat(el.EPNext) +
		m.FormWeight*parseStat(el.Form) +
		m.ICTWeight*ictNorm*10

	if xp < 0 {
		return 0
	}
	return xp
}

// parseStat parses FPL's stringly-typed numeric fields, treating anything
// unparseable as zero.
func parseStat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// BuildGameweekContext derives per-player fixture flags from one gameweek's
// fixture list: clubs with no scheduled fixture are blank, clubs with more
// than one are doubles.
func BuildGameweekContext(gameweek int, finished bool, fixtures []providers.Fixture, bootstrap *providers.Bootstrap) models.GameweekContext {
	fixturesPerTeam := make(map[int]int)
	for _, f := range fixtures {
		fixturesPerTeam[f.TeamH]++
		fixturesPerTeam[f.TeamA]++
	}

	playerFixtures := make(map[int]models.FixtureInfo, len(bootstrap.Elements))
	for _, el := range bootstrap.Elements {
		count := fixturesPerTeam[el.Team]
		playerFixtures[el.ID] = models.FixtureInfo{
			HasFixture:    count > 0,
			DoubleFixture: count > 1,
		}
	}

	return models.GameweekContext{
		Gameweek: gameweek,
		Finished: finished,
		Fixtures: playerFixtures,
	}
}
