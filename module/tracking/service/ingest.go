package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/repository/database"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/repository/publisher"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/repository/registry"
)

const (
	// Reports timestamped further into the future or past than this are
	// rejected rather than silently accepted.
	defaultSkewTolerance = 60 * time.Second

	// Movement accumulators roll over after this much time.
	analysisWindow = 24 * time.Hour
)

// IngestMetrics receives ingest outcome counts. The prometheus adapter in
// internal/observability implements it; a no-op stands in when none is wired.
type IngestMetrics interface {
	ReportAccepted()
	ReportRejected()
	ReportDuplicate()
	AlertsEmitted(n int)
}

type nopMetrics struct{}

func (nopMetrics) ReportAccepted() {}
func (nopMetrics) ReportRejected() {}
func (nopMetrics) ReportDuplicate() {}
func (nopMetrics) AlertsEmitted(int) {}

// IngestResult is the outcome of one report. A duplicate is acknowledged
// without being accepted and is not an error.
type IngestResult struct {
	Accepted  bool           `json:"accepted"`
	Duplicate bool           `json:"duplicate"`
	Alerts    []domain.Alert `json:"alerts,omitempty"`
}

type animalState struct {
	mu     sync.Mutex
	track  domain.TrackState
	seeded bool
}

// IngestService is the coordinator: validate → registry lookup → duplicate
// filter → state update → movement analysis → geofence evaluation → dispatch.
// Per-animal updates are serialized through one mutex per animal id; distinct
// animals proceed fully in parallel.
type IngestService struct {
	animals    registry.AnimalRegistry
	zones      registry.GeofenceRegistry
	locations  database.LocationRepository
	alertRepo  database.AlertRepository
	dispatcher publisher.AlertPublisher

	dedup     *DuplicateFilter
	movement  *MovementAnalyzer
	evaluator *GeofenceEvaluator

	metrics IngestMetrics
	logger  *zap.Logger
	skew    time.Duration
	now     func() time.Time

	mu     sync.Mutex
	states map[string]*animalState
}

func NewIngestService(
	animals registry.AnimalRegistry,
	zones registry.GeofenceRegistry,
	locations database.LocationRepository,
	alertRepo database.AlertRepository,
	dispatcher publisher.AlertPublisher,
	movement *MovementAnalyzer,
	evaluator *GeofenceEvaluator,
	metrics IngestMetrics,
	logger *zap.Logger,
) *IngestService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &IngestService{
		animals:    animals,
		zones:      zones,
		locations:  locations,
		alertRepo:  alertRepo,
		dispatcher: dispatcher,
		dedup:      NewDuplicateFilter(),
		movement:   movement,
		evaluator:  evaluator,
		metrics:    metrics,
		logger:     logger,
		skew:       defaultSkewTolerance,
		now:        time.Now,
		states:     make(map[string]*animalState),
	}
}

// Ingest processes a single report. Validation failures and unknown animals
// come back as errors; a duplicate comes back acknowledged with
// Accepted=false and no error.
func (s *IngestService) Ingest(ctx context.Context, report *domain.LocationReport) (*IngestResult, error) {
	if err := report.Coordinate.Validate(); err != nil {
		s.metrics.ReportRejected()
		return &IngestResult{}, err
	}
	now := s.now()
	if report.Timestamp.After(now.Add(s.skew)) {
		s.metrics.ReportRejected()
		return &IngestResult{}, fmt.Errorf("%w: %s is %s ahead of ingestion time",
			domain.ErrFutureTimestamp, report.Timestamp.Format(time.RFC3339), report.Timestamp.Sub(now))
	}

	st := s.state(report.AnimalID)
	st.mu.Lock()
	defer st.mu.Unlock()

	animal, err := s.animals.Get(ctx, report.AnimalID)
	if err != nil {
		s.metrics.ReportRejected()
		return &IngestResult{}, err
	}
	s.seed(st, animal)

	prev := st.track.LastReport
	if s.dedup.IsDuplicate(prev, report) {
		s.metrics.ReportDuplicate()
		return &IngestResult{Duplicate: true}, nil
	}
	if prev != nil && report.Timestamp.Before(prev.Timestamp.Add(-s.skew)) {
		s.metrics.ReportRejected()
		return &IngestResult{}, fmt.Errorf("%w: report at %s predates last accepted report at %s",
			domain.ErrStaleReport, report.Timestamp.Format(time.RFC3339), prev.Timestamp.Format(time.RFC3339))
	}

	var step MovementStep
	var hasStep bool
	if prev != nil {
		step, hasStep = s.movement.Step(prev, report)
	}
	speed, hasSpeed := step.SpeedKmh, hasStep
	if report.SpeedKmh != nil {
		speed, hasSpeed = *report.SpeedKmh, true
	}

	if err := s.locations.Append(ctx, report); err != nil {
		s.metrics.ReportRejected()
		return &IngestResult{}, fmt.Errorf("append location: %w", err)
	}
	if err := s.animals.UpdateLocation(ctx, report.AnimalID, report.Coordinate, report.Timestamp,
		report.BatteryLevel, report.SignalStrength); err != nil {
		s.metrics.ReportRejected()
		return &IngestResult{}, fmt.Errorf("update registry: %w", err)
	}

	// Persistence succeeded: commit the in-memory state before any analysis
	// so analysis sees the just-updated state as current.
	s.commit(st, report, step, hasStep, now)

	var alerts []domain.Alert
	if hasStep && step.HighSpeed {
		alerts = append(alerts, domain.Alert{
			ID:        uuid.NewString(),
			Type:      domain.AlertHighSpeed,
			AnimalID:  report.AnimalID,
			Location:  report.Coordinate,
			Timestamp: now,
			Severity:  domain.SeverityMedium,
			Message: fmt.Sprintf("animal %s moving at %.1f km/h (threshold %.1f) near %s",
				report.AnimalID, step.SpeedKmh, s.movement.HighSpeedThresholdKmh(), report.Coordinate),
		})
	}

	fences, err := s.zones.ActiveGeofences(ctx, animal.OwnerID)
	if err != nil {
		// The report is already accepted and persisted; a zone registry
		// outage must not undo that. Zone evaluation resumes on the next
		// report.
		s.logger.Error("geofence registry lookup failed, skipping zone evaluation",
			zap.String("animal_id", report.AnimalID),
			zap.Error(err),
		)
	} else {
		alerts = append(alerts, s.evaluator.Evaluate(ctx, EvaluationInput{
			Report:   report,
			SpeedKmh: speed,
			HasSpeed: hasSpeed,
			Now:      now,
		}, fences)...)
	}

	s.deliver(ctx, alerts)
	s.metrics.ReportAccepted()
	s.metrics.AlertsEmitted(len(alerts))
	return &IngestResult{Accepted: true, Alerts: alerts}, nil
}

// TrackState returns a copy of the current state for one animal, or nil if
// the engine has not seen it yet.
func (s *IngestService) TrackState(animalID string) *domain.TrackState {
	s.mu.Lock()
	st, ok := s.states[animalID]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	track := st.track
	return &track
}

func (s *IngestService) state(animalID string) *animalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[animalID]
	if !ok {
		st = &animalState{track: domain.TrackState{AnimalID: animalID}}
		s.states[animalID] = st
	}
	return st
}

// seed installs the registry's last known location as the previous report the
// first time an animal is seen, so duplicate and staleness checks survive
// restarts.
func (s *IngestService) seed(st *animalState, animal *registry.Animal) {
	if st.seeded {
		return
	}
	st.seeded = true
	if animal.LastCoordinate == nil || animal.LastSeen == nil {
		return
	}
	st.track.LastReport = &domain.LocationReport{
		AnimalID:   animal.ID,
		Coordinate: *animal.LastCoordinate,
		Timestamp:  *animal.LastSeen,
		Source:     domain.SourceEstimated,
	}
}

func (s *IngestService) commit(st *animalState, report *domain.LocationReport, step MovementStep, hasStep bool, now time.Time) {
	track := &st.track
	if track.WindowStart.IsZero() || now.Sub(track.WindowStart) > analysisWindow {
		track.WindowStart = now
		track.TotalDistanceMeters = 0
		track.TimeMovingMinutes = 0
		track.TimeRestingMinutes = 0
		track.MaxSpeedKmh = 0
	}
	if hasStep {
		dt := report.Timestamp.Sub(track.LastReport.Timestamp).Minutes()
		track.TotalDistanceMeters += step.DistanceMeters
		if step.SpeedKmh > track.MaxSpeedKmh {
			track.MaxSpeedKmh = step.SpeedKmh
		}
		if step.Moving {
			track.TimeMovingMinutes += dt
		} else {
			track.TimeRestingMinutes += dt
		}
	}
	// An out-of-order report inside the skew tolerance is accepted for the
	// window bookkeeping above but never replaces a newer last report, so
	// the stored timestamp stays non-decreasing.
	if track.LastReport == nil || !report.Timestamp.Before(track.LastReport.Timestamp) {
		track.LastReport = report
		track.BatteryLevel = report.BatteryLevel
		track.SignalStrength = report.SignalStrength
	}
}

// deliver hands alerts to storage and the notification dispatcher. Neither
// failure may fail the ingestion of the triggering report.
func (s *IngestService) deliver(ctx context.Context, alerts []domain.Alert) {
	for i := range alerts {
		alert := &alerts[i]
		if err := s.alertRepo.Append(ctx, alert); err != nil {
			s.logger.Error("failed to store alert",
				zap.String("alert_id", alert.ID),
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
		}
		if err := s.dispatcher.Publish(ctx, alert); err != nil {
			s.logger.Error("failed to dispatch alert",
				zap.String("alert_id", alert.ID),
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
		}
	}
}
