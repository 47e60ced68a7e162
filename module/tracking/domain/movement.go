package domain

import "time"

type MovementPattern string

const (
	PatternWalking MovementPattern = "WALKING"
	PatternGrazing MovementPattern = "GRAZING"
	PatternResting MovementPattern = "RESTING"
	PatternRunning MovementPattern = "RUNNING"
	PatternUnknown MovementPattern = "UNKNOWN"
)

// MovementAnalysis is derived from a report window on demand; it is not
// stored.
type MovementAnalysis struct {
	AnimalID            string          `json:"animal_id"`
	PeriodStart         time.Time       `json:"period_start"`
	PeriodEnd           time.Time       `json:"period_end"`
	TotalDistanceMeters float64         `json:"total_distance_meters"`
	AverageSpeedKmh     float64         `json:"average_speed_kmh"`
	MaxSpeedKmh         float64         `json:"max_speed_kmh"`
	TimeMovingMinutes   float64         `json:"time_moving_minutes"`
	TimeRestingMinutes  float64         `json:"time_resting_minutes"`
	Pattern             MovementPattern `json:"pattern"`
	Anomalies           []string        `json:"anomalies,omitempty"`
}
