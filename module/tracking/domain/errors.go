package domain

import "errors"

var (
	// ErrInvalidCoordinate marks a report rejected before any state change.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrAnimalNotFound means the animal id is unknown to the registry.
	ErrAnimalNotFound = errors.New("animal not found")

	// ErrStaleReport means the report predates the stored last report beyond
	// the clock-skew tolerance.
	ErrStaleReport = errors.New("stale report")

	// ErrFutureTimestamp means the report timestamp is ahead of ingestion
	// time beyond the clock-skew tolerance.
	ErrFutureTimestamp = errors.New("report timestamp in the future")

	// ErrGeometryConfig marks a geofence whose shape parameters cannot be
	// evaluated (missing radius, too few vertices). The zone is skipped, the
	// rest of the evaluation proceeds.
	ErrGeometryConfig = errors.New("invalid geofence geometry")
)
