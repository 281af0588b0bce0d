package services

import (
	"fmt"

	"github.com/rcallahan/fpl-optimizer/internal/models"
	"github.com/rcallahan/fpl-optimizer/pkg/database"
)

// RunStore persists completed optimization runs for the history endpoint.
type RunStore struct {
	db *database.DB
}

func NewRunStore(db *database.DB) *RunStore {
	return &RunStore{db: db}
}

// Migrate creates the run-history schema.
func (s *RunStore) Migrate() error {
	if err := s.db.AutoMigrate(&models.OptimizationRun{}); err != nil {
		return fmt.Errorf("failed to migrate run store: %w", err)
	}
	return nil
}

// SaveRun records one completed optimization.
func (s *RunStore) SaveRun(run *models.OptimizationRun) error {
	if err := s.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to save optimization run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *RunStore) RecentRuns(limit int) ([]models.OptimizationRun, error) {
	var runs []models.OptimizationRun
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list optimization runs: %w", err)
	}
	return runs, nil
}
