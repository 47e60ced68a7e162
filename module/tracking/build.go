package tracking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/geocode"
	handler "github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/handler/http"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/handler/subscriber"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/observability"
	dbpostgres "github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/repository/database/postgres"
	regpostgres "github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/repository/registry/postgres"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/repository/publisher/rabbitmq"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/internal/repository/state"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/service"
)

// Options carries the tunables the engine needs at assembly time.
type Options struct {
	HighSpeedKmh   float64
	BatchChunkSize int
	BatchFanOut    int
	BatchDeadline  time.Duration
	GeocoderURL    string
	Timezone       *time.Location
}

type Module struct {
	IngestSvc *service.IngestService
	QuerySvc  *service.QueryService
	BatchSvc  *service.BatchProcessor

	evaluator  *service.GeofenceEvaluator
	membership *state.MembershipStore
	handler    *handler.AnimalHandler
	subscriber *subscriber.LocationSubscriber
	logger     *zap.Logger
}

func Build(
	db *sql.DB,
	amqpConn *amqp.Connection,
	mqttClient mqtt.Client,
	redisClient *redis.Client,
	logger *zap.Logger,
	opts Options,
) (*Module, error) {
	animalReg := regpostgres.NewAnimalRegistry(db)
	geofenceReg := regpostgres.NewGeofenceRegistry(db, logger)
	locationRepo := dbpostgres.NewLocationRepo(db)
	alertRepo := dbpostgres.NewAlertRepo(db)

	alertPub, err := rabbitmq.NewAlertPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("alert publisher: %w", err)
	}

	var describer service.LocationDescriber
	if opts.GeocoderURL != "" {
		describer = geocode.NewNominatim(opts.GeocoderURL, logger)
	}

	movement := service.NewMovementAnalyzer(opts.HighSpeedKmh, logger)
	evaluator := service.NewGeofenceEvaluator(describer, opts.Timezone, logger)
	metrics := observability.NewIngestMetrics()

	ingestSvc := service.NewIngestService(
		animalReg, geofenceReg, locationRepo, alertRepo, alertPub,
		movement, evaluator, metrics, logger,
	)
	querySvc := service.NewQueryService(locationRepo, movement)
	batchSvc := service.NewBatchProcessor(
		ingestSvc, opts.BatchChunkSize, opts.BatchFanOut, opts.BatchDeadline, logger,
	)

	return &Module{
		IngestSvc:  ingestSvc,
		QuerySvc:   querySvc,
		BatchSvc:   batchSvc,
		evaluator:  evaluator,
		membership: state.NewMembershipStore(redisClient),
		handler:    handler.NewAnimalHandler(querySvc, ingestSvc, batchSvc),
		subscriber: subscriber.NewLocationSubscriber(mqttClient, ingestSvc, logger),
		logger:     logger,
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}

// RestoreMembership seeds the evaluator from the last snapshot so dwell
// timers survive a restart. A missing or unreadable snapshot is not fatal.
func (m *Module) RestoreMembership(ctx context.Context) {
	snapshot, err := m.membership.Load(ctx)
	if err != nil {
		m.logger.Warn("membership snapshot load failed", zap.Error(err))
		return
	}
	m.evaluator.Import(snapshot)
}

// SnapshotMembership persists the current membership state, normally on
// shutdown.
func (m *Module) SnapshotMembership(ctx context.Context) error {
	return m.membership.Save(ctx, m.evaluator.Export())
}
