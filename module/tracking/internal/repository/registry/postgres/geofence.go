package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/repository/registry"
)

var _ registry.GeofenceRegistry = (*GeofenceRegistry)(nil)

type GeofenceRegistry struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewGeofenceRegistry(db *sql.DB, logger *zap.Logger) *GeofenceRegistry {
	return &GeofenceRegistry{db: db, logger: logger}
}

// ActiveGeofences loads the active zones for an owner. Shape and time-window
// parameters are stored as jsonb and validated eagerly here; rows that fail
// validation are dropped with a warning so one broken zone never poisons
// evaluation of the rest.
func (r *GeofenceRegistry) ActiveGeofences(ctx context.Context, ownerID string) ([]domain.Geofence, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, owner_id, shape, alert_triggers, priority, max_dwell_seconds, speed_limit_kmh, time_windows
		 FROM geofences WHERE is_active AND owner_id = $1 ORDER BY priority DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query geofences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var fences []domain.Geofence
	for rows.Next() {
		var (
			fence      domain.Geofence
			shapeJSON  []byte
			triggers   pq.StringArray
			dwell      sql.NullInt64
			speedLimit sql.NullFloat64
			windows    []byte
		)
		if err := rows.Scan(&fence.ID, &fence.Name, &fence.OwnerID, &shapeJSON, &triggers, &fence.Priority, &dwell, &speedLimit, &windows); err != nil {
			return nil, fmt.Errorf("scan geofence: %w", err)
		}
		fence.IsActive = true
		for _, t := range triggers {
			fence.Triggers = append(fence.Triggers, domain.AlertTrigger(t))
		}
		if dwell.Valid {
			fence.MaxDwellSeconds = int(dwell.Int64)
		}
		if speedLimit.Valid {
			fence.SpeedLimitKmh = speedLimit.Float64
		}

		if err := json.Unmarshal(shapeJSON, &fence.Shape); err != nil {
			r.logger.Warn("dropping geofence with unreadable shape",
				zap.String("geofence_id", fence.ID),
				zap.Error(err),
			)
			continue
		}
		if err := fence.Shape.Validate(); err != nil {
			r.logger.Warn("dropping geofence with invalid shape",
				zap.String("geofence_id", fence.ID),
				zap.Error(err),
			)
			continue
		}
		if len(windows) > 0 {
			if err := json.Unmarshal(windows, &fence.TimeWindows); err != nil {
				r.logger.Warn("dropping unreadable time windows, keeping zone",
					zap.String("geofence_id", fence.ID),
					zap.Error(err),
				)
				fence.TimeWindows = nil
			}
		}

		fences = append(fences, fence)
	}
	return fences, rows.Err()
}
