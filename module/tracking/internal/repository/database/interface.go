package database

import (
	"context"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
)

type LocationRepository interface {
	Append(ctx context.Context, report *domain.LocationReport) error
	Latest(ctx context.Context, animalID string) (*domain.LocationReport, error)
	History(ctx context.Context, query *domain.HistoryQuery) ([]domain.LocationReport, error)
	Animals(ctx context.Context) ([]string, error)
}

type AlertRepository interface {
	Append(ctx context.Context, alert *domain.Alert) error
}
