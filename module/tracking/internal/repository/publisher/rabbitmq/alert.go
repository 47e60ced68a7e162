package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/repository/publisher"
)

var _ publisher.AlertPublisher = (*AlertPublisher)(nil)

const (
	exchangeName = "herd.events"
	queueName    = "herd_alerts"
)

type AlertPublisher struct {
	ch *amqp.Channel
}

func NewAlertPublisher(conn *amqp.Connection) (*AlertPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &AlertPublisher{ch: ch}, nil
}

type alertMessage struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	AnimalID   string        `json:"animal_id"`
	GeofenceID string        `json:"geofence_id,omitempty"`
	Location   alertLocation `json:"location"`
	Severity   string        `json:"severity"`
	Message    string        `json:"message"`
	Timestamp  int64         `json:"timestamp"`
}

type alertLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p *AlertPublisher) Publish(ctx context.Context, alert *domain.Alert) error {
	msg := alertMessage{
		ID:         alert.ID,
		Type:       string(alert.Type),
		AnimalID:   alert.AnimalID,
		GeofenceID: alert.GeofenceID,
		Location: alertLocation{
			Latitude:  alert.Location.Lat,
			Longitude: alert.Location.Lon,
		},
		Severity:  string(alert.Severity),
		Message:   alert.Message,
		Timestamp: alert.Timestamp.Unix(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	return p.ch.PublishWithContext(ctx, exchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
