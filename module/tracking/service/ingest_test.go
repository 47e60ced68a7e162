package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/repository/registry"
)

type mockAnimalRegistry struct {
	getFn    func(ctx context.Context, id string) (*registry.Animal, error)
	updateFn func(ctx context.Context, id string, c domain.Coordinate, seen time.Time, battery, signal float64) error
	updates  int
}

func (m *mockAnimalRegistry) Get(ctx context.Context, id string) (*registry.Animal, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &registry.Animal{ID: id, OwnerID: "ranch-1"}, nil
}

func (m *mockAnimalRegistry) UpdateLocation(ctx context.Context, id string, c domain.Coordinate, seen time.Time, battery, signal float64) error {
	m.updates++
	if m.updateFn != nil {
		return m.updateFn(ctx, id, c, seen, battery, signal)
	}
	return nil
}

type mockGeofenceRegistry struct {
	fences []domain.Geofence
	err    error
}

func (m *mockGeofenceRegistry) ActiveGeofences(_ context.Context, _ string) ([]domain.Geofence, error) {
	return m.fences, m.err
}

type mockLocationRepo struct {
	appendFn func(ctx context.Context, report *domain.LocationReport) error
	appended []*domain.LocationReport
	history  []domain.LocationReport
}

func (m *mockLocationRepo) Append(ctx context.Context, report *domain.LocationReport) error {
	if m.appendFn != nil {
		if err := m.appendFn(ctx, report); err != nil {
			return err
		}
	}
	m.appended = append(m.appended, report)
	return nil
}

func (m *mockLocationRepo) Latest(_ context.Context, animalID string) (*domain.LocationReport, error) {
	for i := len(m.appended) - 1; i >= 0; i-- {
		if m.appended[i].AnimalID == animalID {
			return m.appended[i], nil
		}
	}
	return nil, errors.New("no rows")
}

func (m *mockLocationRepo) History(_ context.Context, _ *domain.HistoryQuery) ([]domain.LocationReport, error) {
	return m.history, nil
}

func (m *mockLocationRepo) Animals(_ context.Context) ([]string, error) {
	return nil, nil
}

type mockAlertRepo struct {
	appended []*domain.Alert
	err      error
}

func (m *mockAlertRepo) Append(_ context.Context, alert *domain.Alert) error {
	m.appended = append(m.appended, alert)
	return m.err
}

type mockAlertPublisher struct {
	published []*domain.Alert
	err       error
}

func (m *mockAlertPublisher) Publish(_ context.Context, alert *domain.Alert) error {
	m.published = append(m.published, alert)
	return m.err
}

type ingestFixture struct {
	svc      *IngestService
	animals  *mockAnimalRegistry
	zones    *mockGeofenceRegistry
	repo     *mockLocationRepo
	alerts   *mockAlertRepo
	notifier *mockAlertPublisher
}

func newIngestFixture(fences []domain.Geofence) *ingestFixture {
	f := &ingestFixture{
		animals:  &mockAnimalRegistry{},
		zones:    &mockGeofenceRegistry{fences: fences},
		repo:     &mockLocationRepo{},
		alerts:   &mockAlertRepo{},
		notifier: &mockAlertPublisher{},
	}
	logger := zap.NewNop()
	f.svc = NewIngestService(
		f.animals,
		f.zones,
		f.repo,
		f.alerts,
		f.notifier,
		NewMovementAnalyzer(15, logger),
		NewGeofenceEvaluator(nil, time.UTC, logger),
		nil,
		logger,
	)
	f.svc.now = func() time.Time { return time.Unix(1715003456, 0).Add(time.Hour) }
	return f
}

func ingestReport(lat, lon float64, ts time.Time) *domain.LocationReport {
	r := report(lat, lon, ts)
	return &r
}

func TestIngest_InvalidCoordinateRejectedBeforeStateChange(t *testing.T) {
	f := newIngestFixture(nil)
	ts := time.Unix(1715003456, 0)

	res, err := f.svc.Ingest(context.Background(), ingestReport(95.0, -92.9303, ts))
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if res.Accepted {
		t.Error("invalid report must not be accepted")
	}
	if len(f.repo.appended) != 0 || f.animals.updates != 0 {
		t.Error("invalid report must cause no state mutation")
	}

	res, err = f.svc.Ingest(context.Background(), ingestReport(17.9869, -200, ts))
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate for longitude, got %v", err)
	}
	if res.Accepted {
		t.Error("invalid report must not be accepted")
	}
}

func TestIngest_NegativeAccuracyRejected(t *testing.T) {
	f := newIngestFixture(nil)
	r := ingestReport(17.9869, -92.9303, time.Unix(1715003456, 0))
	r.Coordinate.Accuracy = -1

	if _, err := f.svc.Ingest(context.Background(), r); !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestIngest_UnknownAnimal(t *testing.T) {
	f := newIngestFixture(nil)
	f.animals.getFn = func(_ context.Context, id string) (*registry.Animal, error) {
		return nil, domain.ErrAnimalNotFound
	}

	_, err := f.svc.Ingest(context.Background(), ingestReport(17.9869, -92.9303, time.Unix(1715003456, 0)))
	if !errors.Is(err, domain.ErrAnimalNotFound) {
		t.Fatalf("expected ErrAnimalNotFound, got %v", err)
	}
	if len(f.repo.appended) != 0 {
		t.Error("unknown animal must cause no history append")
	}
}

func TestIngest_DuplicateAcknowledgedWithoutStateChange(t *testing.T) {
	f := newIngestFixture(nil)
	ts := time.Unix(1715003456, 0)

	first, err := f.svc.Ingest(context.Background(), ingestReport(17.9869, -92.9303, ts))
	if err != nil || !first.Accepted {
		t.Fatalf("first report should be accepted: %v %v", first, err)
	}

	// 30s later, ~1m away: a retransmission
	dup, err := f.svc.Ingest(context.Background(), ingestReport(17.986901, -92.9303, ts.Add(30*time.Second)))
	if err != nil {
		t.Fatalf("duplicate must not be an error: %v", err)
	}
	if dup.Accepted || !dup.Duplicate {
		t.Fatalf("expected acknowledged duplicate, got %+v", dup)
	}
	if len(f.repo.appended) != 1 || f.animals.updates != 1 {
		t.Error("duplicate must cause no state update")
	}
	state := f.svc.TrackState("BOV-001")
	if state == nil || !state.LastReport.Timestamp.Equal(ts) {
		t.Error("track state changed by duplicate")
	}
}

func TestIngest_StaleReportRejected(t *testing.T) {
	f := newIngestFixture(nil)
	ts := time.Unix(1715003456, 0)

	if _, err := f.svc.Ingest(context.Background(), ingestReport(17.9869, -92.9303, ts)); err != nil {
		t.Fatal(err)
	}
	// 10 minutes before the stored report, far outside skew tolerance, and
	// far enough away not to be a duplicate
	_, err := f.svc.Ingest(context.Background(), ingestReport(17.9969, -92.9303, ts.Add(-10*time.Minute)))
	if !errors.Is(err, domain.ErrStaleReport) {
		t.Fatalf("expected ErrStaleReport, got %v", err)
	}
}

func TestIngest_OutOfOrderWithinSkewKeepsNewestLastReport(t *testing.T) {
	f := newIngestFixture(nil)
	ts := time.Unix(1715003456, 0)

	if _, err := f.svc.Ingest(context.Background(), ingestReport(17.9869, -92.9303, ts)); err != nil {
		t.Fatal(err)
	}
	// 30s earlier, ~1.1km away: inside the skew tolerance and not a
	// duplicate, so it is accepted
	res, err := f.svc.Ingest(context.Background(), ingestReport(17.9969, -92.9303, ts.Add(-30*time.Second)))
	if err != nil || !res.Accepted {
		t.Fatalf("in-skew out-of-order report should be accepted: %v %v", res, err)
	}
	if len(f.repo.appended) != 2 {
		t.Errorf("expected both reports persisted, got %d", len(f.repo.appended))
	}
	// the stored last report never regresses to the older timestamp
	state := f.svc.TrackState("BOV-001")
	if state == nil || !state.LastReport.Timestamp.Equal(ts) {
		t.Fatalf("last report regressed: %+v", state.LastReport)
	}
}

func TestIngest_FutureTimestampRejected(t *testing.T) {
	f := newIngestFixture(nil)
	future := f.svc.now().Add(10 * time.Minute)

	_, err := f.svc.Ingest(context.Background(), ingestReport(17.9869, -92.9303, future))
	if !errors.Is(err, domain.ErrFutureTimestamp) {
		t.Fatalf("expected ErrFutureTimestamp, got %v", err)
	}
}

func TestIngest_HighSpeedAlertEmittedOnce(t *testing.T) {
	f := newIngestFixture(nil)
	ts := time.Unix(1715003456, 0)

	if _, err := f.svc.Ingest(context.Background(), ingestReport(17.9869, -92.9303, ts)); err != nil {
		t.Fatal(err)
	}
	// 1000m in 60s: 60 km/h
	res, err := f.svc.Ingest(context.Background(), ingestReport(17.9869+1000.0/111320.0, -92.9303, ts.Add(60*time.Second)))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Alerts) != 1 {
		t.Fatalf("expected exactly 1 alert, got %d", len(res.Alerts))
	}
	a := res.Alerts[0]
	if a.Type != domain.AlertHighSpeed || a.Severity != domain.SeverityMedium {
		t.Fatalf("expected MEDIUM HIGH_SPEED alert, got %+v", a)
	}
	if len(f.notifier.published) != 1 || len(f.alerts.appended) != 1 {
		t.Error("alert must be stored and dispatched")
	}
}

func TestIngest_EntryAlertThroughFullPipeline(t *testing.T) {
	fences := []domain.Geofence{
		circleFence("f1", 17.9869, -92.9303, 500, domain.TriggerEntry),
	}
	f := newIngestFixture(fences)
	ts := time.Unix(1715003456, 0)

	// slow approach: 600m out, then 100m out a few minutes later
	if _, err := f.svc.Ingest(context.Background(), ingestReport(17.9869+600/111320.0, -92.9303, ts)); err != nil {
		t.Fatal(err)
	}
	res, err := f.svc.Ingest(context.Background(), ingestReport(17.9869+100/111320.0, -92.9303, ts.Add(10*time.Minute)))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Alerts) != 1 || res.Alerts[0].Type != domain.AlertGeofenceEntry {
		t.Fatalf("expected single entry alert, got %v", res.Alerts)
	}
}

func TestIngest_DispatchFailureSwallowed(t *testing.T) {
	fences := []domain.Geofence{
		circleFence("f1", 17.9869, -92.9303, 500, domain.TriggerEntry),
	}
	f := newIngestFixture(fences)
	f.notifier.err = errors.New("webhook down")
	ts := time.Unix(1715003456, 0)

	if _, err := f.svc.Ingest(context.Background(), ingestReport(17.9869+600/111320.0, -92.9303, ts)); err != nil {
		t.Fatal(err)
	}
	res, err := f.svc.Ingest(context.Background(), ingestReport(17.9869, -92.9303, ts.Add(10*time.Minute)))
	if err != nil {
		t.Fatalf("dispatch failure must never fail ingestion: %v", err)
	}
	if !res.Accepted || len(res.Alerts) != 1 {
		t.Fatalf("expected accepted report with 1 alert, got %+v", res)
	}
}

func TestIngest_ZoneRegistryFailureDoesNotRejectReport(t *testing.T) {
	f := newIngestFixture(nil)
	f.zones.err = errors.New("zone registry down")
	ts := time.Unix(1715003456, 0)

	res, err := f.svc.Ingest(context.Background(), ingestReport(17.9869, -92.9303, ts))
	if err != nil {
		t.Fatalf("zone registry failure must not reject the report: %v", err)
	}
	if !res.Accepted {
		t.Error("report should be accepted")
	}
}

func TestIngest_SeedsFromRegistryLastKnownLocation(t *testing.T) {
	f := newIngestFixture(nil)
	last := domain.Coordinate{Lat: 17.9869, Lon: -92.9303}
	seen := time.Unix(1715003456, 0)
	f.animals.getFn = func(_ context.Context, id string) (*registry.Animal, error) {
		return &registry.Animal{ID: id, OwnerID: "ranch-1", LastCoordinate: &last, LastSeen: &seen}, nil
	}

	// same spot 20s after the registry's last sighting: duplicate even
	// though the engine never saw the previous report itself
	res, err := f.svc.Ingest(context.Background(), ingestReport(17.9869, -92.9303, seen.Add(20*time.Second)))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Duplicate {
		t.Fatalf("expected duplicate against registry-seeded state, got %+v", res)
	}
}
