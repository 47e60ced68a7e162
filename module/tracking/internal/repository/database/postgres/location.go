package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/repository/database"
)

var _ database.LocationRepository = (*LocationRepo)(nil)

type LocationRepo struct {
	db *sql.DB
}

func NewLocationRepo(db *sql.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

func (r *LocationRepo) Append(ctx context.Context, report *domain.LocationReport) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO animal_locations (animal_id, latitude, longitude, altitude, accuracy, source, battery_level, signal_strength, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		report.AnimalID, report.Coordinate.Lat, report.Coordinate.Lon,
		report.Coordinate.Altitude, report.Coordinate.Accuracy, string(report.Source),
		report.BatteryLevel, report.SignalStrength, report.Timestamp,
	)
	return err
}

func (r *LocationRepo) Latest(ctx context.Context, animalID string) (*domain.LocationReport, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT animal_id, latitude, longitude, altitude, accuracy, source, battery_level, signal_strength, timestamp
		 FROM animal_locations WHERE animal_id = $1 ORDER BY timestamp DESC LIMIT 1`,
		animalID,
	)
	return scanReport(row)
}

func (r *LocationRepo) History(ctx context.Context, query *domain.HistoryQuery) ([]domain.LocationReport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT animal_id, latitude, longitude, altitude, accuracy, source, battery_level, signal_strength, timestamp
		 FROM animal_locations WHERE animal_id = $1 AND timestamp >= $2 AND timestamp <= $3 ORDER BY timestamp ASC`,
		query.AnimalID, query.Start, query.End,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.LocationReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *report)
	}
	return results, rows.Err()
}

func (r *LocationRepo) Animals(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT animal_id FROM animal_locations ORDER BY animal_id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.LocationReport, error) {
	var report domain.LocationReport
	var source string
	if err := row.Scan(
		&report.AnimalID,
		&report.Coordinate.Lat,
		&report.Coordinate.Lon,
		&report.Coordinate.Altitude,
		&report.Coordinate.Accuracy,
		&source,
		&report.BatteryLevel,
		&report.SignalStrength,
		&report.Timestamp,
	); err != nil {
		return nil, fmt.Errorf("scan location: %w", err)
	}
	report.Source = domain.ReportSource(source)
	return &report, nil
}
