package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/service"
)

const topicPattern = "/herd/animal/+/location"

type ingestService interface {
	Ingest(ctx context.Context, report *domain.LocationReport) (*service.IngestResult, error)
}

type locationMessage struct {
	AnimalID       string   `json:"animal_id"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Altitude       float64  `json:"altitude,omitempty"`
	Accuracy       float64  `json:"accuracy,omitempty"`
	Timestamp      int64    `json:"timestamp"`
	Source         string   `json:"source,omitempty"`
	SpeedKmh       *float64 `json:"speed_kmh,omitempty"`
	HeadingDeg     *float64 `json:"heading_deg,omitempty"`
	BatteryLevel   float64  `json:"battery_level,omitempty"`
	SignalStrength float64  `json:"signal_strength,omitempty"`
}

type LocationSubscriber struct {
	client mqtt.Client
	ingest ingestService
	logger *zap.Logger
}

func NewLocationSubscriber(client mqtt.Client, ingest ingestService, logger *zap.Logger) *LocationSubscriber {
	return &LocationSubscriber{
		client: client,
		ingest: ingest,
		logger: logger,
	}
}

func (s *LocationSubscriber) Start() error {
	token := s.client.Subscribe(topicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw locationMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		s.logger.Warn("invalid location message", zap.Error(err))
		return
	}
	if raw.AnimalID == "" || raw.Timestamp <= 0 {
		s.logger.Warn("location message missing animal_id or timestamp",
			zap.String("topic", msg.Topic()),
		)
		return
	}

	report := toReport(&raw)

	result, err := s.ingest.Ingest(context.Background(), report)
	switch {
	case errors.Is(err, domain.ErrAnimalNotFound):
		s.logger.Warn("report for unknown animal", zap.String("animal_id", raw.AnimalID))
	case err != nil:
		s.logger.Error("ingest failed",
			zap.String("animal_id", raw.AnimalID),
			zap.Error(err),
		)
	case result.Duplicate:
		s.logger.Debug("duplicate report acknowledged", zap.String("animal_id", raw.AnimalID))
	case len(result.Alerts) > 0:
		s.logger.Info("report accepted with alerts",
			zap.String("animal_id", raw.AnimalID),
			zap.Int("alerts", len(result.Alerts)),
		)
	}
}

func toReport(raw *locationMessage) *domain.LocationReport {
	source := domain.ReportSource(raw.Source)
	if source == "" {
		source = domain.SourceGPS
	}
	return &domain.LocationReport{
		AnimalID: raw.AnimalID,
		Coordinate: domain.Coordinate{
			Lat:      raw.Latitude,
			Lon:      raw.Longitude,
			Altitude: raw.Altitude,
			Accuracy: raw.Accuracy,
		},
		Timestamp:      time.Unix(raw.Timestamp, 0),
		Source:         source,
		SpeedKmh:       raw.SpeedKmh,
		HeadingDeg:     raw.HeadingDeg,
		BatteryLevel:   raw.BatteryLevel,
		SignalStrength: raw.SignalStrength,
	}
}
