package domain

import "time"

type ReportSource string

const (
	SourceGPS       ReportSource = "GPS"
	SourceManual    ReportSource = "MANUAL"
	SourceEstimated ReportSource = "ESTIMATED"
)

// LocationReport is a single positional report from a collar or ear-tag
// device. It is never mutated after creation.
type LocationReport struct {
	AnimalID   string       `json:"animal_id"`
	Coordinate Coordinate   `json:"coordinate"`
	Timestamp  time.Time    `json:"timestamp"`
	Source     ReportSource `json:"source"`

	// Optional device readings. Nil when the device did not report them.
	SpeedKmh   *float64 `json:"speed_kmh,omitempty"`
	HeadingDeg *float64 `json:"heading_deg,omitempty"`

	BatteryLevel   float64 `json:"battery_level,omitempty"`
	SignalStrength float64 `json:"signal_strength,omitempty"`
}

// TrackState is the engine-owned per-animal state: the last accepted report
// plus rolling movement accumulators over the active analysis window. Exactly
// one writer at a time per animal (serialized by the ingest service).
type TrackState struct {
	AnimalID   string
	LastReport *LocationReport

	WindowStart         time.Time
	TotalDistanceMeters float64
	TimeMovingMinutes   float64
	TimeRestingMinutes  float64
	MaxSpeedKmh         float64

	BatteryLevel   float64
	SignalStrength float64
}

// HistoryQuery selects a time range of accepted reports for one animal.
type HistoryQuery struct {
	AnimalID string
	Start    time.Time
	End      time.Time
}
