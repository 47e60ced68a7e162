package domain

import (
	"fmt"
	"time"
)

type ShapeType string

const (
	ShapeCircle    ShapeType = "CIRCLE"
	ShapeRectangle ShapeType = "RECTANGLE"
	ShapePolygon   ShapeType = "POLYGON"
	ShapeCorridor  ShapeType = "CORRIDOR"
)

type Circle struct {
	Center       Coordinate `json:"center"`
	RadiusMeters float64    `json:"radius_meters"`
}

type Rectangle struct {
	NorthEast Coordinate `json:"north_east"`
	SouthWest Coordinate `json:"south_west"`
}

type Polygon struct {
	Vertices []Coordinate `json:"vertices"`
}

type Corridor struct {
	Centerline  []Coordinate `json:"centerline"`
	WidthMeters float64      `json:"width_meters"`
}

// Shape is a tagged union over the supported geofence geometries. Exactly the
// variant named by Type must be set; Validate enforces that eagerly, at zone
// load time rather than during evaluation.
type Shape struct {
	Type      ShapeType  `json:"type"`
	Circle    *Circle    `json:"circle,omitempty"`
	Rectangle *Rectangle `json:"rectangle,omitempty"`
	Polygon   *Polygon   `json:"polygon,omitempty"`
	Corridor  *Corridor  `json:"corridor,omitempty"`
}

func (s Shape) Validate() error {
	switch s.Type {
	case ShapeCircle:
		if s.Circle == nil {
			return fmt.Errorf("%w: circle params missing", ErrGeometryConfig)
		}
		if s.Circle.RadiusMeters <= 0 {
			return fmt.Errorf("%w: circle radius must be positive", ErrGeometryConfig)
		}
		return s.Circle.Center.Validate()
	case ShapeRectangle:
		if s.Rectangle == nil {
			return fmt.Errorf("%w: rectangle params missing", ErrGeometryConfig)
		}
		if err := s.Rectangle.NorthEast.Validate(); err != nil {
			return err
		}
		return s.Rectangle.SouthWest.Validate()
	case ShapePolygon:
		if s.Polygon == nil || len(s.Polygon.Vertices) < 3 {
			return fmt.Errorf("%w: polygon needs at least 3 vertices", ErrGeometryConfig)
		}
		for _, v := range s.Polygon.Vertices {
			if err := v.Validate(); err != nil {
				return err
			}
		}
		return nil
	case ShapeCorridor:
		if s.Corridor == nil || len(s.Corridor.Centerline) < 2 {
			return fmt.Errorf("%w: corridor needs at least 2 centerline points", ErrGeometryConfig)
		}
		if s.Corridor.WidthMeters <= 0 {
			return fmt.Errorf("%w: corridor width must be positive", ErrGeometryConfig)
		}
		for _, v := range s.Corridor.Centerline {
			if err := v.Validate(); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown shape type %q", ErrGeometryConfig, s.Type)
	}
}

type AlertTrigger string

const (
	TriggerEntry           AlertTrigger = "ENTRY"
	TriggerExit            AlertTrigger = "EXIT"
	TriggerDwellTime       AlertTrigger = "DWELL_TIME"
	TriggerSpeedLimit      AlertTrigger = "SPEED_LIMIT"
	TriggerTimeRestriction AlertTrigger = "TIME_RESTRICTION"
)

type WindowAction string

const (
	WindowAllow WindowAction = "ALLOW"
	WindowDeny  WindowAction = "DENY"
)

// TimeWindow restricts when presence inside a zone is allowed or denied.
// Start and End are "HH:MM" local times; a window with Start > End wraps past
// midnight.
type TimeWindow struct {
	Start      string         `json:"start_time"`
	End        string         `json:"end_time"`
	DaysOfWeek []time.Weekday `json:"days_of_week"`
	Action     WindowAction   `json:"action"`
}

// Geofence is a read-only zone definition supplied by the zone registry. The
// engine never mutates it; the only engine-owned zone state is the per-animal
// membership cache kept by the evaluator.
type Geofence struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	OwnerID  string         `json:"owner_id"`
	Shape    Shape          `json:"shape"`
	IsActive bool           `json:"is_active"`
	Triggers []AlertTrigger `json:"alert_triggers"`
	Priority int            `json:"priority"`

	MaxDwellSeconds int          `json:"max_dwell_seconds,omitempty"`
	SpeedLimitKmh   float64      `json:"speed_limit_kmh,omitempty"`
	TimeWindows     []TimeWindow `json:"time_windows,omitempty"`
}

func (g *Geofence) HasTrigger(t AlertTrigger) bool {
	for _, tr := range g.Triggers {
		if tr == t {
			return true
		}
	}
	return false
}

// IsRestricted reports whether the zone is of a restricted nature: entering
// it is itself a violation, which raises entry alert severity to HIGH.
func (g *Geofence) IsRestricted() bool {
	if g.HasTrigger(TriggerTimeRestriction) {
		return true
	}
	if len(g.TimeWindows) == 0 {
		return false
	}
	for _, w := range g.TimeWindows {
		if w.Action != WindowDeny {
			return false
		}
	}
	return true
}

// MembershipState is the engine-owned containment state for one
// animal×geofence pair. Losing it is harmless: the next evaluation recomputes
// isInside from geometry, at worst re-firing one entry alert.
type MembershipState struct {
	IsInside   bool       `json:"is_inside"`
	EnteredAt  *time.Time `json:"entered_at,omitempty"`
	DwellFired bool       `json:"dwell_fired"`
}
