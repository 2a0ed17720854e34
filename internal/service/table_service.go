package service

import (
	"context"

	"cafe-pos/internal/entity"
	"cafe-pos/internal/repository"
)

// TableService exposes the occupancy state machine for manual table
// management. Order-driven transitions go through OrderService.
type TableService struct {
	tableRepo repository.TableRepository
}

// NewTableService creates a new instance of TableService.
func NewTableService(tableRepo repository.TableRepository) *TableService {
	return &TableService{tableRepo: tableRepo}
}

func (s *TableService) GetTables(ctx context.Context) ([]entity.Table, error) {
	return s.tableRepo.GetAllTables(ctx)
}

func (s *TableService) GetTablesByStatus(ctx context.Context, status string) ([]entity.Table, error) {
	return s.tableRepo.GetTablesByStatus(ctx, status)
}

// GetTableBoard returns every table with its open order, if any.
func (s *TableService) GetTableBoard(ctx context.Context) ([]entity.Table, error) {
	return s.tableRepo.TablesWithOrders(ctx)
}

// SetStatus applies a manual occupancy transition (reserving a free
// table, releasing a reservation). Transitions outside the allowed
// set are rejected with entity.ErrInvalidTransition.
func (s *TableService) SetStatus(ctx context.Context, id int, status string) error {
	if err := s.tableRepo.UpdateStatus(ctx, id, status); err != nil {
		logger.Error().Err(err).Msgf("Error updating status of table %d", id)
		return err
	}

	logger.Info().Msgf("Table %d is now %s", id, status)
	return nil
}
