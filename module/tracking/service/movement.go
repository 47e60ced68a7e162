package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/geo"
)

const (
	// Below this speed an interval counts as resting rather than moving.
	movingSpeedKmh = 0.5

	// Sustained speeds above this are abnormal for grazing cattle and raise
	// a HIGH_SPEED alert.
	defaultHighSpeedKmh = 15.0
)

// MovementStep is the incremental result for one consecutive report pair.
type MovementStep struct {
	DistanceMeters float64
	SpeedKmh       float64
	HeadingDeg     float64
	Moving         bool
	HighSpeed      bool
}

// MovementAnalyzer derives speed and movement patterns from report
// sequences. Pure computation plus logging; it holds no per-animal state.
type MovementAnalyzer struct {
	highSpeedKmh float64
	logger       *zap.Logger
}

func NewMovementAnalyzer(highSpeedKmh float64, logger *zap.Logger) *MovementAnalyzer {
	if highSpeedKmh <= 0 {
		highSpeedKmh = defaultHighSpeedKmh
	}
	return &MovementAnalyzer{highSpeedKmh: highSpeedKmh, logger: logger}
}

func (a *MovementAnalyzer) HighSpeedThresholdKmh() float64 {
	return a.highSpeedKmh
}

// Step computes the instantaneous movement between two consecutive reports.
// Returns ok=false when the pair is unusable (Δt ≤ 0, out-of-order safety).
func (a *MovementAnalyzer) Step(prev, curr *domain.LocationReport) (MovementStep, bool) {
	dt := curr.Timestamp.Sub(prev.Timestamp).Seconds()
	if dt <= 0 {
		return MovementStep{}, false
	}
	dist := geo.Distance(prev.Coordinate, curr.Coordinate)
	speed := dist / dt * 3.6
	return MovementStep{
		DistanceMeters: dist,
		SpeedKmh:       speed,
		HeadingDeg:     geo.Bearing(prev.Coordinate, curr.Coordinate),
		Moving:         speed > movingSpeedKmh,
		HighSpeed:      speed > a.highSpeedKmh,
	}, true
}

// Analyze runs the full window analysis over an ordered report history.
func (a *MovementAnalyzer) Analyze(animalID string, reports []domain.LocationReport, start, end time.Time) domain.MovementAnalysis {
	result := domain.MovementAnalysis{
		AnimalID:    animalID,
		PeriodStart: start,
		PeriodEnd:   end,
		Pattern:     domain.PatternUnknown,
	}

	if len(reports) < 2 {
		result.Anomalies = append(result.Anomalies, "insufficient data")
		return result
	}

	var totalSeconds float64
	for i := 1; i < len(reports); i++ {
		step, ok := a.Step(&reports[i-1], &reports[i])
		if !ok {
			continue
		}
		dt := reports[i].Timestamp.Sub(reports[i-1].Timestamp).Seconds()
		totalSeconds += dt

		result.TotalDistanceMeters += step.DistanceMeters
		if step.SpeedKmh > result.MaxSpeedKmh {
			result.MaxSpeedKmh = step.SpeedKmh
		}
		if step.Moving {
			result.TimeMovingMinutes += dt / 60
		} else {
			result.TimeRestingMinutes += dt / 60
		}
		if step.HighSpeed {
			result.Anomalies = append(result.Anomalies,
				fmt.Sprintf("speed %.1f km/h exceeds %.1f km/h threshold", step.SpeedKmh, a.highSpeedKmh))
		}
	}

	if totalSeconds > 0 {
		result.AverageSpeedKmh = result.TotalDistanceMeters / totalSeconds * 3.6
	}
	result.Pattern = classify(result.TimeMovingMinutes, result.TimeRestingMinutes, result.AverageSpeedKmh)

	if a.logger != nil {
		a.logger.Debug("movement window analyzed",
			zap.String("animal_id", animalID),
			zap.Float64("distance_m", result.TotalDistanceMeters),
			zap.String("pattern", string(result.Pattern)),
		)
	}
	return result
}

// classify picks the dominant pattern for the window. Grazing is the
// statistically dominant state for cattle, so it is also the fallback.
func classify(movingMin, restingMin, avgSpeedKmh float64) domain.MovementPattern {
	total := movingMin + restingMin
	var ratio float64
	if total > 0 {
		ratio = movingMin / total
	}
	switch {
	case ratio > 0.7 && avgSpeedKmh > 3:
		return domain.PatternWalking
	case ratio > 0.5 && avgSpeedKmh > 1:
		return domain.PatternGrazing
	case ratio < 0.2:
		return domain.PatternResting
	case avgSpeedKmh > 8:
		return domain.PatternRunning
	default:
		return domain.PatternGrazing
	}
}
