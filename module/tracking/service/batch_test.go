package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
)

type mockIngestor struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, report *domain.LocationReport) (*IngestResult, error)
}

func (m *mockIngestor) Ingest(ctx context.Context, report *domain.LocationReport) (*IngestResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.fn != nil {
		return m.fn(ctx, report)
	}
	return &IngestResult{Accepted: true}, nil
}

func TestIngestBatch_PartialFailureAccounting(t *testing.T) {
	ing := &mockIngestor{
		fn: func(_ context.Context, r *domain.LocationReport) (*IngestResult, error) {
			if err := r.Coordinate.Validate(); err != nil {
				return &IngestResult{}, err
			}
			return &IngestResult{Accepted: true}, nil
		},
	}
	p := NewBatchProcessor(ing, 10, 10, 0, zap.NewNop())

	ts := time.Unix(1715003456, 0)
	reports := make([]domain.LocationReport, 12)
	for i := range reports {
		reports[i] = report(17.9869, -92.9303, ts.Add(time.Duration(i)*time.Minute))
	}
	reports[6].Coordinate.Lat = 120 // report #7 is malformed

	res := p.IngestBatch(context.Background(), reports)
	if len(res.Accepted) != 11 {
		t.Fatalf("expected 11 accepted, got %d", len(res.Accepted))
	}
	if len(res.Rejected) != 1 {
		t.Fatalf("expected 1 rejected, got %d", len(res.Rejected))
	}
	if !errors.Is(res.Rejected[0].Err, domain.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", res.Rejected[0].Err)
	}
	if res.Rejected[0].Report.Coordinate.Lat != 120 {
		t.Error("rejected entry should carry the offending report")
	}
	if ing.calls != 12 {
		t.Fatalf("every report must be attempted, got %d calls", ing.calls)
	}
}

func TestIngestBatch_TotalAccounting(t *testing.T) {
	ing := &mockIngestor{}
	p := NewBatchProcessor(ing, 3, 2, 0, zap.NewNop())

	ts := time.Unix(1715003456, 0)
	reports := make([]domain.LocationReport, 25)
	for i := range reports {
		reports[i] = report(17.9869, -92.9303, ts.Add(time.Duration(i)*time.Minute))
	}

	res := p.IngestBatch(context.Background(), reports)
	if got := len(res.Accepted) + len(res.Rejected); got != len(reports) {
		t.Fatalf("every input must appear exactly once, got %d of %d", got, len(reports))
	}
}

func TestIngestBatch_EmptyInput(t *testing.T) {
	p := NewBatchProcessor(&mockIngestor{}, 0, 0, 0, zap.NewNop())
	res := p.IngestBatch(context.Background(), nil)
	if len(res.Accepted) != 0 || len(res.Rejected) != 0 {
		t.Fatal("empty batch should produce empty result")
	}
}

func TestIngestBatch_DeadlineMarksRemainderFailed(t *testing.T) {
	ing := &mockIngestor{
		fn: func(ctx context.Context, _ *domain.LocationReport) (*IngestResult, error) {
			select {
			case <-time.After(50 * time.Millisecond):
				return &IngestResult{Accepted: true}, nil
			case <-ctx.Done():
				return &IngestResult{}, ctx.Err()
			}
		},
	}
	// one worker, so the second chunk cannot start before the deadline
	p := NewBatchProcessor(ing, 1, 1, 60*time.Millisecond, zap.NewNop())

	ts := time.Unix(1715003456, 0)
	reports := make([]domain.LocationReport, 4)
	for i := range reports {
		reports[i] = report(17.9869, -92.9303, ts.Add(time.Duration(i)*time.Minute))
	}

	res := p.IngestBatch(context.Background(), reports)
	if got := len(res.Accepted) + len(res.Rejected); got != len(reports) {
		t.Fatalf("deadline must not drop items, got %d of %d", got, len(reports))
	}
	if len(res.Rejected) == 0 {
		t.Fatal("expected at least one failed-pending item after deadline")
	}
	for _, rej := range res.Rejected {
		if !errors.Is(rej.Err, context.DeadlineExceeded) {
			t.Fatalf("expected DeadlineExceeded, got %v", rej.Err)
		}
	}
}

func TestIngestBatch_OneReportNeverAbortsSiblings(t *testing.T) {
	boom := errors.New("registry hiccup")
	ing := &mockIngestor{
		fn: func(_ context.Context, r *domain.LocationReport) (*IngestResult, error) {
			if r.AnimalID == "BOV-BAD" {
				return &IngestResult{}, boom
			}
			return &IngestResult{Accepted: true}, nil
		},
	}
	p := NewBatchProcessor(ing, 2, 4, 0, zap.NewNop())

	ts := time.Unix(1715003456, 0)
	reports := make([]domain.LocationReport, 8)
	for i := range reports {
		reports[i] = report(17.9869, -92.9303, ts.Add(time.Duration(i)*time.Minute))
	}
	reports[3].AnimalID = "BOV-BAD"

	res := p.IngestBatch(context.Background(), reports)
	if len(res.Accepted) != 7 || len(res.Rejected) != 1 {
		t.Fatalf("expected 7 accepted / 1 rejected, got %d / %d", len(res.Accepted), len(res.Rejected))
	}
	if !errors.Is(res.Rejected[0].Err, boom) {
		t.Fatalf("unexpected rejection reason: %v", res.Rejected[0].Err)
	}
}
