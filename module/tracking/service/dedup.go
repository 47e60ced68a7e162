package service

import (
	"time"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/geo"
)

const (
	// Collars retransmit on weak signal in bursts of near-identical reports.
	// Anything closer than this in both time and space is treated as the
	// same observation.
	defaultDuplicateWindow = 60 * time.Second
	defaultDuplicateRadius = 5.0 // meters
)

// DuplicateFilter decides whether a new report is a redundant retransmission
// of the previously accepted one. A duplicate is acknowledged, not an error;
// it just produces no state update and no downstream analysis.
type DuplicateFilter struct {
	Window time.Duration
	Radius float64
}

func NewDuplicateFilter() *DuplicateFilter {
	return &DuplicateFilter{Window: defaultDuplicateWindow, Radius: defaultDuplicateRadius}
}

func (f *DuplicateFilter) IsDuplicate(prev, next *domain.LocationReport) bool {
	if prev == nil {
		return false
	}
	dt := next.Timestamp.Sub(prev.Timestamp)
	if dt < 0 {
		dt = -dt
	}
	if dt >= f.Window {
		return false
	}
	return geo.Distance(prev.Coordinate, next.Coordinate) < f.Radius
}
