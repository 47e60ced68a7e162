package postgres

import (
	"context"
	"database/sql"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/repository/database"
)

var _ database.AlertRepository = (*AlertRepo)(nil)

type AlertRepo struct {
	db *sql.DB
}

func NewAlertRepo(db *sql.DB) *AlertRepo {
	return &AlertRepo{db: db}
}

func (r *AlertRepo) Append(ctx context.Context, alert *domain.Alert) error {
	geofenceID := sql.NullString{String: alert.GeofenceID, Valid: alert.GeofenceID != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO animal_alerts (id, type, animal_id, geofence_id, latitude, longitude, severity, message, is_resolved, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		alert.ID, string(alert.Type), alert.AnimalID, geofenceID,
		alert.Location.Lat, alert.Location.Lon,
		string(alert.Severity), alert.Message, alert.IsResolved, alert.Timestamp,
	)
	return err
}
