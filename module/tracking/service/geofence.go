package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/geo"
)

// LocationDescriber turns a coordinate into a human-readable place string for
// alert messages. Best effort only; implementations degrade to the raw
// coordinate string on failure.
type LocationDescriber interface {
	Describe(ctx context.Context, c domain.Coordinate) string
}

// EvaluationInput is one accepted report plus the instantaneous speed the
// coordinator derived for it.
type EvaluationInput struct {
	Report   *domain.LocationReport
	SpeedKmh float64
	HasSpeed bool
	Now      time.Time
}

type membershipKey struct {
	animalID   string
	geofenceID string
}

// GeofenceEvaluator keeps the per animal×geofence containment state machine
// and emits edge-triggered alerts on transitions. Zone definitions are
// read-only snapshots; the membership cache is the only zone state the engine
// owns.
type GeofenceEvaluator struct {
	mu         sync.Mutex
	membership map[membershipKey]*domain.MembershipState

	describer LocationDescriber
	loc       *time.Location
	logger    *zap.Logger
}

func NewGeofenceEvaluator(describer LocationDescriber, loc *time.Location, logger *zap.Logger) *GeofenceEvaluator {
	if loc == nil {
		loc = time.Local
	}
	return &GeofenceEvaluator{
		membership: make(map[membershipKey]*domain.MembershipState),
		describer:  describer,
		loc:        loc,
		logger:     logger,
	}
}

// Evaluate tests the report against every active geofence and returns the
// alerts triggered by transitions or rule violations. Zones with broken
// geometry are skipped individually; they never abort the rest of the
// evaluation.
func (e *GeofenceEvaluator) Evaluate(ctx context.Context, in EvaluationInput, fences []domain.Geofence) []domain.Alert {
	var alerts []domain.Alert
	point := in.Report.Coordinate

	for i := range fences {
		fence := &fences[i]
		if !fence.IsActive {
			continue
		}
		if err := fence.Shape.Validate(); err != nil {
			e.logger.Warn("skipping geofence with invalid geometry",
				zap.String("geofence_id", fence.ID),
				zap.Error(err),
			)
			continue
		}

		// The bbox only short-circuits the exact containment test. A report
		// outside the box is still outside the zone and must drive the
		// transition state machine, or approach and departure edges are lost.
		insideNow := geo.PointInBox(point, shapeBounds(fence.Shape)) && contains(fence.Shape, point)

		alerts = append(alerts, e.applyTransition(ctx, in, fence, insideNow)...)
	}
	return alerts
}

func (e *GeofenceEvaluator) applyTransition(ctx context.Context, in EvaluationInput, fence *domain.Geofence, insideNow bool) []domain.Alert {
	e.mu.Lock()
	key := membershipKey{animalID: in.Report.AnimalID, geofenceID: fence.ID}
	state, known := e.membership[key]
	if !known {
		// Lazily materialized from geometry on first sight: an animal first
		// observed inside a zone is inside, not entering.
		state = &domain.MembershipState{IsInside: insideNow}
		if insideNow {
			entered := in.Now
			state.EnteredAt = &entered
		}
		e.membership[key] = state
	}
	wasInside := state.IsInside

	var entered, exited, dwellExceeded bool
	switch {
	case known && !wasInside && insideNow:
		entered = true
		state.IsInside = true
		at := in.Now
		state.EnteredAt = &at
		state.DwellFired = false
	case known && wasInside && !insideNow:
		exited = true
		state.IsInside = false
		state.EnteredAt = nil
		state.DwellFired = false
	case insideNow && state.EnteredAt != nil:
		if fence.MaxDwellSeconds > 0 && !state.DwellFired &&
			in.Now.Sub(*state.EnteredAt) > time.Duration(fence.MaxDwellSeconds)*time.Second {
			dwellExceeded = true
			state.DwellFired = true
		}
	}
	e.mu.Unlock()

	var alerts []domain.Alert

	if entered && fence.HasTrigger(domain.TriggerEntry) {
		severity := domain.SeverityMedium
		if fence.IsRestricted() {
			severity = domain.SeverityHigh
		}
		alerts = append(alerts, e.newAlert(ctx, in, fence, domain.AlertGeofenceEntry, severity,
			fmt.Sprintf("entered zone %q", fence.Name)))
	}
	if exited && fence.HasTrigger(domain.TriggerExit) {
		alerts = append(alerts, e.newAlert(ctx, in, fence, domain.AlertGeofenceExit, domain.SeverityMedium,
			fmt.Sprintf("left zone %q", fence.Name)))
	}
	if dwellExceeded && fence.HasTrigger(domain.TriggerDwellTime) {
		alerts = append(alerts, e.newAlert(ctx, in, fence, domain.AlertDwellExceeded, domain.SeverityMedium,
			fmt.Sprintf("stayed in zone %q beyond %ds", fence.Name, fence.MaxDwellSeconds)))
	}
	if insideNow && fence.HasTrigger(domain.TriggerSpeedLimit) &&
		in.HasSpeed && fence.SpeedLimitKmh > 0 && in.SpeedKmh > fence.SpeedLimitKmh {
		alerts = append(alerts, e.newAlert(ctx, in, fence, domain.AlertSpeedLimit, domain.SeverityMedium,
			fmt.Sprintf("moving at %.1f km/h in zone %q (limit %.1f)", in.SpeedKmh, fence.Name, fence.SpeedLimitKmh)))
	}
	if insideNow && fence.HasTrigger(domain.TriggerTimeRestriction) &&
		deniedAt(fence.TimeWindows, in.Now.In(e.loc)) {
		alerts = append(alerts, e.newAlert(ctx, in, fence, domain.AlertTimeRestricted, domain.SeverityHigh,
			fmt.Sprintf("present in zone %q during a restricted period", fence.Name)))
	}
	return alerts
}

func (e *GeofenceEvaluator) newAlert(ctx context.Context, in EvaluationInput, fence *domain.Geofence, typ domain.AlertType, severity domain.Severity, what string) domain.Alert {
	where := in.Report.Coordinate.String()
	if e.describer != nil {
		where = e.describer.Describe(ctx, in.Report.Coordinate)
	}
	return domain.Alert{
		ID:         uuid.NewString(),
		Type:       typ,
		AnimalID:   in.Report.AnimalID,
		GeofenceID: fence.ID,
		Location:   in.Report.Coordinate,
		Timestamp:  in.Now,
		Severity:   severity,
		Message:    fmt.Sprintf("animal %s %s near %s", in.Report.AnimalID, what, where),
	}
}

// Export copies the membership cache, for snapshotting across restarts.
func (e *GeofenceEvaluator) Export() map[string]map[string]domain.MembershipState {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]map[string]domain.MembershipState)
	for key, state := range e.membership {
		byFence, ok := out[key.animalID]
		if !ok {
			byFence = make(map[string]domain.MembershipState)
			out[key.animalID] = byFence
		}
		byFence[key.geofenceID] = *state
	}
	return out
}

// Import seeds the membership cache from a snapshot. Existing entries win.
func (e *GeofenceEvaluator) Import(snapshot map[string]map[string]domain.MembershipState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for animalID, byFence := range snapshot {
		for fenceID, state := range byFence {
			key := membershipKey{animalID: animalID, geofenceID: fenceID}
			if _, exists := e.membership[key]; exists {
				continue
			}
			s := state
			e.membership[key] = &s
		}
	}
}

// contains runs the exact containment test. The shape must already have
// passed Validate.
func contains(shape domain.Shape, p domain.Coordinate) bool {
	switch shape.Type {
	case domain.ShapeCircle:
		return geo.PointInCircle(p, shape.Circle.Center, shape.Circle.RadiusMeters)
	case domain.ShapeRectangle:
		return geo.PointInRectangle(p, geo.Box{
			NorthEast: shape.Rectangle.NorthEast,
			SouthWest: shape.Rectangle.SouthWest,
		})
	case domain.ShapePolygon:
		return geo.PointInPolygon(p, shape.Polygon.Vertices)
	case domain.ShapeCorridor:
		return geo.PointInCorridor(p, shape.Corridor.Centerline, shape.Corridor.WidthMeters)
	default:
		return false
	}
}

// shapeBounds returns a cheap rectangular extent for the pre-filter. It is
// deliberately conservative; the exact containment test above is always the
// authority.
func shapeBounds(shape domain.Shape) geo.Box {
	switch shape.Type {
	case domain.ShapeCircle:
		if shape.Circle == nil {
			return geo.Box{}
		}
		return geo.BoundingBox(shape.Circle.Center, shape.Circle.RadiusMeters/1000)
	case domain.ShapeRectangle:
		if shape.Rectangle == nil {
			return geo.Box{}
		}
		return geo.Box{NorthEast: shape.Rectangle.NorthEast, SouthWest: shape.Rectangle.SouthWest}
	case domain.ShapePolygon:
		if shape.Polygon == nil {
			return geo.Box{}
		}
		return geo.BoxOfPoints(shape.Polygon.Vertices, 0)
	case domain.ShapeCorridor:
		if shape.Corridor == nil {
			return geo.Box{}
		}
		return geo.BoxOfPoints(shape.Corridor.Centerline, shape.Corridor.WidthMeters/2)
	default:
		return geo.Box{}
	}
}

// deniedAt reports whether any DENY window covers the given local time.
func deniedAt(windows []domain.TimeWindow, local time.Time) bool {
	for _, w := range windows {
		if w.Action != domain.WindowDeny {
			continue
		}
		if !matchesDay(w.DaysOfWeek, local.Weekday()) {
			continue
		}
		if withinWindow(w, local) {
			return true
		}
	}
	return false
}

func matchesDay(days []time.Weekday, day time.Weekday) bool {
	if len(days) == 0 {
		return true
	}
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

func withinWindow(w domain.TimeWindow, local time.Time) bool {
	start, okStart := parseClock(w.Start)
	end, okEnd := parseClock(w.End)
	if !okStart || !okEnd {
		return false
	}
	minutes := local.Hour()*60 + local.Minute()
	if start <= end {
		return minutes >= start && minutes < end
	}
	// window wraps past midnight
	return minutes >= start || minutes < end
}

func parseClock(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
