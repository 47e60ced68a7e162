package service

import (
	"context"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/repository/database"
)

// QueryService answers read requests over the persisted location history.
type QueryService struct {
	locations database.LocationRepository
	movement  *MovementAnalyzer
}

func NewQueryService(locations database.LocationRepository, movement *MovementAnalyzer) *QueryService {
	return &QueryService{locations: locations, movement: movement}
}

func (s *QueryService) Latest(ctx context.Context, animalID string) (*domain.LocationReport, error) {
	return s.locations.Latest(ctx, animalID)
}

func (s *QueryService) History(ctx context.Context, query *domain.HistoryQuery) ([]domain.LocationReport, error) {
	return s.locations.History(ctx, query)
}

func (s *QueryService) Animals(ctx context.Context) ([]string, error) {
	return s.locations.Animals(ctx)
}

// AnalyzeMovement runs the window analysis over the stored history for the
// requested period.
func (s *QueryService) AnalyzeMovement(ctx context.Context, query *domain.HistoryQuery) (*domain.MovementAnalysis, error) {
	reports, err := s.locations.History(ctx, query)
	if err != nil {
		return nil, err
	}
	analysis := s.movement.Analyze(query.AnimalID, reports, query.Start, query.End)
	return &analysis, nil
}
