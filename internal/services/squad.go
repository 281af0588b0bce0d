package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rcallahan/fpl-optimizer/internal/catalog"
	"github.com/rcallahan/fpl-optimizer/internal/chips"
	"github.com/rcallahan/fpl-optimizer/internal/lineup"
	"github.com/rcallahan/fpl-optimizer/internal/models"
	"github.com/rcallahan/fpl-optimizer/internal/optimizer"
	"github.com/rcallahan/fpl-optimizer/internal/providers"
	"github.com/rcallahan/fpl-optimizer/internal/rules"
	"github.com/rcallahan/fpl-optimizer/pkg/config"
	"github.com/rcallahan/fpl-optimizer/pkg/logger"
)

// SquadService runs the full recommendation pipeline: fetch, predict,
// ingest, optimize, select the lineup, and score the chips. The core
// packages it calls are pure; every external concern lives here.
type SquadService struct {
	client *providers.FPLClient
	cache  *CacheService
	store  *RunStore
	cfg    *config.Config
	model  PredictionModel
	logger *logrus.Logger
}

func NewSquadService(
	client *providers.FPLClient,
	cache *CacheService,
	store *RunStore,
	cfg *config.Config,
	logger *logrus.Logger,
) *SquadService {
	return &SquadService{
		client: client,
		cache:  cache,
		store:  store,
		cfg:    cfg,
		model: PredictionModel{
			EPNextWeight: cfg.EPNextWeight,
			FormWeight:   cfg.FormWeight,
			ICTWeight:    cfg.ICTWeight,
			MinMinutes:   cfg.MinMinutes,
		},
		logger: logger,
	}
}

// Recommendation is the result bundle the presentation layer consumes.
type Recommendation struct {
	RunID             string                  `json:"run_id"`
	Gameweek          int                     `json:"gameweek"`
	Squad             models.Squad            `json:"squad"`
	TotalCostMillions float64                 `json:"total_cost_millions"`
	PredictedPoints   float64                 `json:"predicted_points"`
	Lineup            models.Lineup           `json:"lineup"`
	Chips             []chips.Recommendation  `json:"chips"`
	DurationMs        int64                   `json:"duration_ms"`
	Constraints       rules.SquadConstraintSet `json:"constraints"`
}

// ruleConfig resolves the active rule set: the caller's override when
// present, otherwise the configured season defaults.
func (s *SquadService) ruleConfig(override *rules.RuleConfig) rules.RuleConfig {
	if override != nil {
		return *override
	}
	return rules.RuleConfig{
		Budget: s.cfg.Budget,
		PositionQuotas: map[models.Position]int{
			models.Goalkeeper: s.cfg.GoalkeeperQty,
			models.Defender:   s.cfg.DefenderQty,
			models.Midfielder: s.cfg.MidfielderQty,
			models.Forward:    s.cfg.ForwardQty,
		},
		MaxPerClub: s.cfg.MaxPerClub,
	}
}

// BuildRecommendation runs the pipeline end to end. Results are cached per
// (gameweek, rule config) so repeated requests within a gameweek are cheap.
func (s *SquadService) BuildRecommendation(ctx context.Context, override *rules.RuleConfig) (*Recommendation, error) {
	started := time.Now()

	ruleCfg := s.ruleConfig(override)
	constraints, err := rules.Build(ruleCfg)
	if err != nil {
		return nil, err
	}

	bootstrap, err := s.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	gameweek, finished := bootstrap.CurrentGameweek()

	cacheKey := RecommendationCacheKey(gameweek, hashRuleConfig(ruleCfg))
	var cached Recommendation
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.WithField("gameweek", gameweek).Debug("Returning cached recommendation")
			return &cached, nil
		}
	}

	records := s.model.BuildRecords(bootstrap)
	players, err := catalog.Ingest(records)
	if err != nil {
		return nil, err
	}

	optCtx := ctx
	if s.cfg.OptimizerTimeout > 0 {
		var cancel context.CancelFunc
		optCtx, cancel = context.WithTimeout(ctx, s.cfg.OptimizerTimeout)
		defer cancel()
	}

	result, err := optimizer.OptimizeWithStats(optCtx, players, constraints, optimizer.Options{
		MaxNodes: s.cfg.OptimizerMaxNodes,
	})
	if err != nil {
		return nil, err
	}
	squad := result.Squad

	selected, err := lineup.Select(squad, lineup.Weights{
		DoubtfulFactor:    s.cfg.DoubtfulFactor,
		UnavailableFactor: s.cfg.UnavailableFactor,
	})
	if err != nil {
		return nil, err
	}

	gwContext := s.gameweekContext(ctx, gameweek, finished, bootstrap)
	evaluations := chips.Evaluate(selected, gwContext, chips.Thresholds{
		TripleCaptainMultiple: s.cfg.TripleCaptainMultiple,
		BenchBoostRatio:       s.cfg.BenchBoostRatio,
		FreeHitDisruption:     s.cfg.FreeHitDisruption,
	})

	rec := &Recommendation{
		RunID:             uuid.New().String(),
		Gameweek:          gameweek,
		Squad:             squad,
		TotalCostMillions: squad.TotalCostMillions(),
		PredictedPoints:   squad.PredictedPoints,
		Lineup:            selected,
		Chips:             evaluations,
		DurationMs:        time.Since(started).Milliseconds(),
		Constraints:       constraints,
	}

	fields := logrus.Fields{
		"gameweek":         gameweek,
		"predicted_points": rec.PredictedPoints,
		"avg_points":       squad.AveragePredictedPoints(),
		"total_cost":       rec.TotalCostMillions,
		"nodes_visited":    result.NodesVisited,
		"duration_ms":      rec.DurationMs,
	}
	if captain, ok := selected.Captain(); ok {
		fields["captain"] = captain.Name
		fields["captain_cost"] = captain.CostMillions()
	}
	logger.WithRunID(rec.RunID).WithFields(fields).Info("Squad recommendation built")

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, rec, s.cfg.BootstrapCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache recommendation")
		}
	}

	if s.store != nil {
		run := &models.OptimizationRun{
			ID:              rec.RunID,
			Gameweek:        gameweek,
			Budget:          constraints.Budget,
			TotalCost:       squad.TotalCost,
			PredictedPoints: squad.PredictedPoints,
			Formation:       selected.Formation.String(),
			CaptainID:       selected.CaptainID,
			ViceCaptainID:   selected.ViceCaptainID,
			Squad:           models.SquadSnapshot(squad.Players),
			DurationMs:      rec.DurationMs,
		}
		if err := s.store.SaveRun(run); err != nil {
			s.logger.WithError(err).Warn("Failed to persist optimization run")
		}
	}

	return rec, nil
}

// GetPlayers returns the normalized catalog for the current snapshot.
func (s *SquadService) GetPlayers(ctx context.Context) ([]models.Player, error) {
	bootstrap, err := s.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Ingest(s.model.BuildRecords(bootstrap))
}

// bootstrap returns the cached snapshot, fetching and caching on a miss.
func (s *SquadService) bootstrap(ctx context.Context) (*providers.Bootstrap, error) {
	if s.cache != nil {
		var cached providers.Bootstrap
		if err := s.cache.Get(ctx, BootstrapCacheKey(), &cached); err == nil {
			return &cached, nil
		}
	}

	bootstrap, err := s.client.GetBootstrap(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, BootstrapCacheKey(), bootstrap, s.cfg.BootstrapCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache bootstrap snapshot")
		}
	}

	return bootstrap, nil
}

// gameweekContext fetches fixture flags for the chip advisor. A fixtures
// fetch failure degrades to the single-fixture default rather than failing
// the whole recommendation.
func (s *SquadService) gameweekContext(ctx context.Context, gameweek int, finished bool, bootstrap *providers.Bootstrap) models.GameweekContext {
	if gameweek == 0 {
		return models.GameweekContext{}
	}

	var fixtures []providers.Fixture
	if s.cache != nil {
		if err := s.cache.Get(ctx, FixturesCacheKey(gameweek), &fixtures); err == nil {
			return BuildGameweekContext(gameweek, finished, fixtures, bootstrap)
		}
	}

	fixtures, err := s.client.GetFixtures(ctx, gameweek)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to fetch fixtures, assuming single fixtures")
		return models.GameweekContext{Gameweek: gameweek, Finished: finished}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, FixturesCacheKey(gameweek), fixtures, s.cfg.BootstrapCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache fixtures")
		}
	}

	return BuildGameweekContext(gameweek, finished, fixtures, bootstrap)
}

// hashRuleConfig derives a stable cache key component from the rule set.
func hashRuleConfig(cfg rules.RuleConfig) string {
	data, _ := json.Marshal(cfg)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
