package registry

import (
	"context"
	"time"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
)

// Animal is the registry's view of a tracked livestock unit. The engine reads
// and writes its last known location; lifecycle (creation, deactivation) is
// the registry's concern.
type Animal struct {
	ID      string
	OwnerID string

	LastCoordinate *domain.Coordinate
	LastSeen       *time.Time

	DeviceID       string
	BatteryLevel   float64
	SignalStrength float64
}

type AnimalRegistry interface {
	// Get returns domain.ErrAnimalNotFound for unknown ids.
	Get(ctx context.Context, id string) (*Animal, error)
	UpdateLocation(ctx context.Context, id string, c domain.Coordinate, seen time.Time, battery, signal float64) error
}

type GeofenceRegistry interface {
	// ActiveGeofences returns the active zones for one owner scope. Zones
	// with invalid shape parameters are filtered out at load time.
	ActiveGeofences(ctx context.Context, ownerID string) ([]domain.Geofence, error)
}
