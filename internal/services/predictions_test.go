package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcallahan/fpl-optimizer/internal/providers"
)

func testBootstrap() *providers.Bootstrap {
	return &providers.Bootstrap{
		ElementTypes: []providers.ElementType{
			{ID: 1, SingularNameShort: "GKP"},
			{ID: 2, SingularNameShort: "DEF"},
			{ID: 3, SingularNameShort: "MID"},
			{ID: 4, SingularNameShort: "FWD"},
		},
		Teams: []providers.Team{
			{ID: 1, Name: "Arsenal"},
			{ID: 2, Name: "Brentford"},
		},
		Elements: []providers.Element{
			{
				ID: 10, WebName: "Saka", ElementType: 3, Team: 1,
				NowCost: 95, Status: "a", Minutes: 900,
				EPNext: "6.5", Form: "7.2", ICTIndex: "200.0", EventPoints: 9,
			},
			{
				ID: 20, WebName: "Raya", ElementType: 1, Team: 1,
				NowCost: 55, Status: "a", Minutes: 990,
				EPNext: "4.0", Form: "3.5", ICTIndex: "100.0", EventPoints: 2,
			},
			{
				ID: 30, WebName: "Benched", ElementType: 2, Team: 2,
				NowCost: 40, Status: "a", Minutes: 0,
				EPNext: "1.0", Form: "0.5", ICTIndex: "10.0",
			},
			{
				ID: 40, WebName: "Injured", ElementType: 4, Team: 2,
				NowCost: 70, Status: "i", Minutes: 450,
				EPNext: "0.0", Form: "1.0", ICTIndex: "50.0", EventPoints: 0,
			},
		},
	}
}

func TestBuildRecords_FiltersPlayersBelowMinutesFloor(t *testing.T) {
	records := DefaultPredictionModel().BuildRecords(testBootstrap())

	require.Len(t, records, 3)
	for _, r := range records {
		assert.NotEqual(t, 30, r.ID, "zero-minute player should be dropped")
	}
}

func TestBuildRecords_MapsPositionsAndClubs(t *testing.T) {
	records := DefaultPredictionModel().BuildRecords(testBootstrap())

	byID := make(map[int]int)
	for i, r := range records {
		byID[r.ID] = i
	}

	saka := records[byID[10]]
	assert.Equal(t, "Saka", saka.Name)
	assert.Equal(t, "MID", saka.Position)
	assert.Equal(t, "Arsenal", saka.Club)
	require.NotNil(t, saka.Cost)
	assert.Equal(t, 95, *saka.Cost)
	assert.Equal(t, "a", saka.Status)

	injured := records[byID[40]]
	assert.Equal(t, "FWD", injured.Position)
	assert.Equal(t, "Brentford", injured.Club)
	assert.Equal(t, "i", injured.Status)
}

func TestBuildRecords_BlendsExpectedPoints(t *testing.T) {
	records := DefaultPredictionModel().BuildRecords(testBootstrap())

	byID := make(map[int]float64)
	for _, r := range records {
		byID[r.ID] = r.PredictedPoints
	}

	// Saka holds the max ICT (200), so his normalized term is 1.0:
	// 0.6*6.5 + 0.3*7.2 + 0.1*1.0*10 = 7.06.
	assert.InDelta(t, 7.06, byID[10], 1e-9)

	// Raya's ICT normalizes to 0.5:
	// 0.6*4.0 + 0.3*3.5 + 0.1*0.5*10 = 3.95.
	assert.InDelta(t, 3.95, byID[20], 1e-9)
}

func TestBuildRecords_ClipsNegativeScoresAtZero(t *testing.T) {
	bootstrap := testBootstrap()
	bootstrap.Elements = bootstrap.Elements[:1]
	bootstrap.Elements[0].EPNext = "-10.0"
	bootstrap.Elements[0].Form = "-5.0"
	bootstrap.Elements[0].ICTIndex = "0.0"

	records := DefaultPredictionModel().BuildRecords(bootstrap)

	require.Len(t, records, 1)
	assert.Zero(t, records[0].PredictedPoints)
}

func TestBuildRecords_TreatsUnparseableStatsAsZero(t *testing.T) {
	bootstrap := testBootstrap()
	bootstrap.Elements = bootstrap.Elements[:1]
	bootstrap.Elements[0].EPNext = "n/a"
	bootstrap.Elements[0].Form = ""
	bootstrap.Elements[0].ICTIndex = "bogus"

	records := DefaultPredictionModel().BuildRecords(bootstrap)

	require.Len(t, records, 1)
	assert.Zero(t, records[0].PredictedPoints)
}

func TestBuildGameweekContext_FlagsBlanksAndDoubles(t *testing.T) {
	bootstrap := testBootstrap()
	fixtures := []providers.Fixture{
		{ID: 1, TeamH: 1, TeamA: 3},
		{ID: 2, TeamH: 4, TeamA: 1},
	}

	gw := BuildGameweekContext(10, false, fixtures, bootstrap)

	assert.Equal(t, 10, gw.Gameweek)
	assert.False(t, gw.Finished)

	// Team 1 plays twice, team 2 not at all.
	saka := gw.FixtureFor(10)
	assert.True(t, saka.HasFixture)
	assert.True(t, saka.DoubleFixture)

	injured := gw.FixtureFor(40)
	assert.False(t, injured.HasFixture)
	assert.False(t, injured.DoubleFixture)
}

func TestBuildGameweekContext_UnknownPlayerDefaultsToSingleFixture(t *testing.T) {
	gw := BuildGameweekContext(10, false, nil, testBootstrap())

	unknown := gw.FixtureFor(9999)
	assert.True(t, unknown.HasFixture)
	assert.False(t, unknown.DoubleFixture)
}
