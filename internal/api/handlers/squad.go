package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/rcallahan/fpl-optimizer/internal/models"
	"github.com/rcallahan/fpl-optimizer/internal/rules"
	"github.com/rcallahan/fpl-optimizer/internal/services"
	"github.com/rcallahan/fpl-optimizer/pkg/config"
	"github.com/rcallahan/fpl-optimizer/pkg/utils"
)

type SquadHandler struct {
	service *services.SquadService
	store   *services.RunStore
	config  *config.Config
}

func NewSquadHandler(service *services.SquadService, store *services.RunStore, cfg *config.Config) *SquadHandler {
	return &SquadHandler{
		service: service,
		store:   store,
		config:  cfg,
	}
}

type optimizeRequest struct {
	Budget         *int           `json:"budget"` // tenths of a million
	PositionQuotas map[string]int `json:"position_quotas"`
	MaxPerClub     *int           `json:"max_per_club"`
}

// Optimize runs the full recommendation pipeline for the current gameweek.
// The request body may override the season rule set; omitted fields keep
// the configured defaults.
func (h *SquadHandler) Optimize(c *gin.Context) {
	var req optimizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.SendValidationError(c, "Invalid request body", err.Error())
			return
		}
	}

	rec, err := h.service.BuildRecommendation(c.Request.Context(), h.ruleOverride(req))
	if err != nil {
		utils.SendCoreError(c, err)
		return
	}

	utils.SendSuccess(c, rec)
}

// ruleOverride merges request overrides onto the configured defaults,
// returning nil when the request carries none.
func (h *SquadHandler) ruleOverride(req optimizeRequest) *rules.RuleConfig {
	if req.Budget == nil && req.MaxPerClub == nil && len(req.PositionQuotas) == 0 {
		return nil
	}

	cfg := rules.RuleConfig{
		Budget: h.config.Budget,
		PositionQuotas: map[models.Position]int{
			models.Goalkeeper: h.config.GoalkeeperQty,
			models.Defender:   h.config.DefenderQty,
			models.Midfielder: h.config.MidfielderQty,
			models.Forward:    h.config.ForwardQty,
		},
		MaxPerClub: h.config.MaxPerClub,
	}

	if req.Budget != nil {
		cfg.Budget = *req.Budget
	}
	if req.MaxPerClub != nil {
		cfg.MaxPerClub = *req.MaxPerClub
	}
	for pos, quota := range req.PositionQuotas {
		cfg.PositionQuotas[models.Position(pos)] = quota
	}

	return &cfg
}

// GetPlayers returns the normalized player catalog for the current snapshot.
func (h *SquadHandler) GetPlayers(c *gin.Context) {
	players, err := h.service.GetPlayers(c.Request.Context())
	if err != nil {
		// Untyped errors on this path are FPL fetch failures.
		if utils.CodeFor(err) == utils.ErrCodeInternal {
			utils.SendUpstreamError(c, "Failed to fetch player data")
			return
		}
		utils.SendCoreError(c, err)
		return
	}

	utils.SendSuccessWithMeta(c, players, &utils.Meta{Total: int64(len(players))})
}

// GetRuns lists recent optimization runs, newest first.
func (h *SquadHandler) GetRuns(c *gin.Context) {
	if h.store == nil {
		utils.SendSuccess(c, []models.OptimizationRun{})
		return
	}

	runs, err := h.store.RecentRuns(20)
	if err != nil {
		utils.SendInternalError(c, "Failed to list optimization runs")
		return
	}

	utils.SendSuccess(c, runs)
}
