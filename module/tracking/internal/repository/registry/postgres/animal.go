package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/repository/registry"
)

var _ registry.AnimalRegistry = (*AnimalRegistry)(nil)

type AnimalRegistry struct {
	db *sql.DB
}

func NewAnimalRegistry(db *sql.DB) *AnimalRegistry {
	return &AnimalRegistry{db: db}
}

func (r *AnimalRegistry) Get(ctx context.Context, id string) (*registry.Animal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT animal_id, owner_id, device_id, last_latitude, last_longitude, last_seen, battery_level, signal_strength
		 FROM animals WHERE animal_id = $1 AND is_active`,
		id,
	)

	var animal registry.Animal
	var lat, lon sql.NullFloat64
	var seen sql.NullTime
	if err := row.Scan(
		&animal.ID, &animal.OwnerID, &animal.DeviceID,
		&lat, &lon, &seen,
		&animal.BatteryLevel, &animal.SignalStrength,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAnimalNotFound, id)
		}
		return nil, fmt.Errorf("get animal: %w", err)
	}
	if lat.Valid && lon.Valid {
		animal.LastCoordinate = &domain.Coordinate{Lat: lat.Float64, Lon: lon.Float64}
	}
	if seen.Valid {
		t := seen.Time
		animal.LastSeen = &t
	}
	return &animal, nil
}

func (r *AnimalRegistry) UpdateLocation(ctx context.Context, id string, c domain.Coordinate, seen time.Time, battery, signal float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE animals SET last_latitude = $2, last_longitude = $3, last_seen = $4, battery_level = $5, signal_strength = $6
		 WHERE animal_id = $1`,
		id, c.Lat, c.Lon, seen, battery, signal,
	)
	if err != nil {
		return fmt.Errorf("update animal location: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAnimalNotFound, id)
	}
	return nil
}
