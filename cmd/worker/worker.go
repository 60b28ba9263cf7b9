package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/septivank/attendance-ingestion-worker/internal/attendance"
	"github.com/septivank/attendance-ingestion-worker/internal/cache"
	"github.com/septivank/attendance-ingestion-worker/internal/config"
	"github.com/septivank/attendance-ingestion-worker/internal/device"
	"github.com/septivank/attendance-ingestion-worker/internal/geo"
	"github.com/septivank/attendance-ingestion-worker/internal/httpserver"
	"github.com/septivank/attendance-ingestion-worker/internal/metrics"
	"github.com/septivank/attendance-ingestion-worker/internal/mq"
	"github.com/septivank/attendance-ingestion-worker/internal/service"
	"github.com/septivank/attendance-ingestion-worker/internal/store"
	"github.com/septivank/attendance-ingestion-worker/internal/validator"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func startWorker(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	conn *mq.Connection,
	cfg *config.Config,
	logger *zap.Logger,
	m *metrics.Metrics,
	processor *service.ProcessorService,
) (*mq.Consumer, error) {
	// Create context for consumer that will be cancelled on shutdown
	ctx, cancel := context.WithCancel(context.Background())

	consumer, err := mq.NewConsumer(mq.ConsumerConfig{
		Connection:       conn,
		Queue:            cfg.RabbitMQ.Queue,
		PrefetchCount:    cfg.RabbitMQ.PrefetchCount,
		Workers:          cfg.RabbitMQ.Workers,
		AckOnFailure:     cfg.Pipeline.AckOnFailure,
		Logger:           logger,
		Metrics:          m,
		MessageProcessor: processor.ProcessMessage,
	})
	if err != nil {
		cancel()
		return nil, err
	}

	closed := conn.NotifyClose()

	// Register lifecycle hooks
	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			logger.Info("starting worker consumer",
				zap.String("queue", cfg.RabbitMQ.Queue),
				zap.Int("prefetch", cfg.RabbitMQ.PrefetchCount),
				zap.Bool("ack_on_failure", cfg.Pipeline.AckOnFailure),
				zap.Bool("device_auto_register", cfg.Pipeline.AutoRegisterDevices))
			if err := consumer.Start(ctx); err != nil {
				return err
			}
			go func() {
				select {
				case amqpErr, ok := <-closed:
					if ok && amqpErr != nil {
						logger.Error("rabbitmq connection lost, shutting down", zap.String("reason", amqpErr.Reason))
						_ = shutdowner.Shutdown(fx.ExitCode(1))
					}
				case <-ctx.Done():
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			// stop pulling, then let in-flight deliveries settle
			cancel()
			if err := consumer.Close(); err != nil {
				logger.Error("failed to close consumer", zap.Error(err))
				return err
			}
			logger.Info("worker stopped gracefully")
			return nil
		},
	})

	return consumer, nil
}

func startHTTPServer(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger, reg *prometheus.Registry) {
	srv := httpserver.New(fmt.Sprintf(":%d", cfg.ServicePort), httpserver.NewRouter(reg))
	httpserver.Register(lc, logger, srv)
}

// ProvideStore opens the store backend selected by DATABASE_URL
func ProvideStore(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (store.Store, error) {
	return store.Open(lc, logger, cfg.Database)
}

// ProvideRedis creates the optional office cache client
func ProvideRedis(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*goredis.Client, error) {
	return cache.NewRedis(lc, logger, cfg.Redis.URL)
}

// ProvideRegistry creates the prometheus registry served on /metrics
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates the pipeline metrics
func ProvideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

// ProvideValidator creates a new validator instance
func ProvideValidator() *validator.Validator {
	return validator.NewValidator()
}

// ProvideVerifier creates the device fingerprint verifier
func ProvideVerifier(st store.Store, cfg *config.Config) *device.Verifier {
	return device.NewVerifier(st, cfg.Database.Timeout, cfg.Pipeline.AutoRegisterDevices)
}

// ProvideLocator creates the geofence locator, behind the office cache when redis is configured
func ProvideLocator(st store.Store, rdb *goredis.Client, cfg *config.Config, logger *zap.Logger) *geo.Locator {
	var offices geo.OfficeSource = st
	if rdb != nil {
		offices = cache.NewOfficeCache(st, rdb, cfg.Redis.OfficeTTL, logger)
	}
	return geo.NewLocator(offices, cfg.Database.Timeout)
}

// ProvideRecorder creates the attendance recorder
func ProvideRecorder(st store.Store, cfg *config.Config) *attendance.Recorder {
	return attendance.NewRecorder(st, cfg.Database.Timeout)
}

// ProvideProcessorService creates a new processor service instance
func ProvideProcessorService(
	validator *validator.Validator,
	verifier *device.Verifier,
	locator *geo.Locator,
	recorder *attendance.Recorder,
	m *metrics.Metrics,
	logger *zap.Logger,
) *service.ProcessorService {
	return service.NewProcessorService(validator, verifier, locator, recorder, m, logger)
}

// ProvideMQConnection creates a new RabbitMQ connection instance
func ProvideMQConnection(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*mq.Connection, error) {
	return mq.NewConnection(lc, logger, cfg.RabbitMQ.URL)
}
