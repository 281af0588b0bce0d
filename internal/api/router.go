package api

import (
	"github.com/gin-gonic/gin"

	"github.com/rcallahan/fpl-optimizer/internal/api/handlers"
	"github.com/rcallahan/fpl-optimizer/internal/services"
	"github.com/rcallahan/fpl-optimizer/pkg/config"
)

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, squadService *services.SquadService, store *services.RunStore, cfg *config.Config) {
	squadHandler := handlers.NewSquadHandler(squadService, store, cfg)

	group.POST("/squad/optimize", squadHandler.Optimize)
	group.GET("/players", squadHandler.GetPlayers)
	group.GET("/runs", squadHandler.GetRuns)
}
