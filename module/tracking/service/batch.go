package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
)

const (
	defaultChunkSize = 10
	defaultFanOut    = 10
)

type ingestor interface {
	Ingest(ctx context.Context, report *domain.LocationReport) (*IngestResult, error)
}

// BatchItem is one processed report together with its outcome.
type BatchItem struct {
	Report *domain.LocationReport `json:"report"`
	Result *IngestResult          `json:"result"`
}

// BatchFailure records one report that could not be ingested, with the
// reason.
type BatchFailure struct {
	Report *domain.LocationReport `json:"report"`
	Err    error                  `json:"-"`
	Reason string                 `json:"reason"`
}

// BatchResult accounts for every submitted report exactly once: each input
// lands in Accepted (which includes acknowledged duplicates) or Rejected.
// Result order does not match input order.
type BatchResult struct {
	Accepted []BatchItem    `json:"accepted"`
	Rejected []BatchFailure `json:"rejected"`
}

// BatchProcessor fans reports out to the coordinator in fixed-size chunks
// with bounded concurrency. One bad report never aborts its siblings or the
// batch.
type BatchProcessor struct {
	svc       ingestor
	chunkSize int
	fanOut    int
	deadline  time.Duration
	logger    *zap.Logger
}

func NewBatchProcessor(svc ingestor, chunkSize, fanOut int, deadline time.Duration, logger *zap.Logger) *BatchProcessor {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if fanOut <= 0 {
		fanOut = defaultFanOut
	}
	return &BatchProcessor{
		svc:       svc,
		chunkSize: chunkSize,
		fanOut:    fanOut,
		deadline:  deadline,
		logger:    logger,
	}
}

func (p *BatchProcessor) IngestBatch(ctx context.Context, reports []domain.LocationReport) *BatchResult {
	result := &BatchResult{}
	if len(reports) == 0 {
		return result
	}

	if p.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.deadline)
		defer cancel()
	}

	type itemOutcome struct {
		report *domain.LocationReport
		result *IngestResult
		err    error
	}

	outcomes := make(chan itemOutcome, len(reports))
	sem := make(chan struct{}, p.fanOut)
	var wg sync.WaitGroup

	for start := 0; start < len(reports); start += p.chunkSize {
		end := start + p.chunkSize
		if end > len(reports) {
			end = len(reports)
		}
		chunk := reports[start:end]

		wg.Add(1)
		sem <- struct{}{}
		go func(chunk []domain.LocationReport) {
			defer wg.Done()
			defer func() { <-sem }()
			for i := range chunk {
				report := &chunk[i]
				if err := ctx.Err(); err != nil {
					// Deadline hit: the remainder of the chunk is
					// failed-pending, safe to retry.
					outcomes <- itemOutcome{report: report, err: err}
					continue
				}
				res, err := p.svc.Ingest(ctx, report)
				outcomes <- itemOutcome{report: report, result: res, err: err}
			}
		}(chunk)
	}

	wg.Wait()
	close(outcomes)

	for o := range outcomes {
		if o.err != nil {
			result.Rejected = append(result.Rejected, BatchFailure{
				Report: o.report,
				Err:    o.err,
				Reason: o.err.Error(),
			})
			continue
		}
		result.Accepted = append(result.Accepted, BatchItem{Report: o.report, Result: o.result})
	}

	if p.logger != nil && len(result.Rejected) > 0 {
		p.logger.Warn("batch completed with rejections",
			zap.Int("accepted", len(result.Accepted)),
			zap.Int("rejected", len(result.Rejected)),
		)
	}
	return result
}
