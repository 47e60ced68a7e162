package domain

import "time"

type AlertType string

const (
	AlertGeofenceEntry  AlertType = "GEOFENCE_ENTRY"
	AlertGeofenceExit   AlertType = "GEOFENCE_EXIT"
	AlertDwellExceeded  AlertType = "DWELL_TIME_EXCEEDED"
	AlertSpeedLimit     AlertType = "SPEED_LIMIT_EXCEEDED"
	AlertTimeRestricted AlertType = "TIME_RESTRICTION_VIOLATION"
	AlertHighSpeed      AlertType = "HIGH_SPEED"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Alert is a fully-formed alert record handed to the notification dispatcher.
// Delivery and the resolution lifecycle are external concerns.
type Alert struct {
	ID         string     `json:"id"`
	Type       AlertType  `json:"type"`
	AnimalID   string     `json:"animal_id"`
	GeofenceID string     `json:"geofence_id,omitempty"`
	Location   Coordinate `json:"location"`
	Timestamp  time.Time  `json:"timestamp"`
	Severity   Severity   `json:"severity"`
	Message    string     `json:"message"`
	IsResolved bool       `json:"is_resolved"`
}
