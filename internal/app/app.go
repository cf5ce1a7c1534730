package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andreyxaxa/Print-Detection/config"
	"github.com/andreyxaxa/Print-Detection/internal/controller/restapi"
	"github.com/andreyxaxa/Print-Detection/internal/controller/worker/outbox"
	"github.com/andreyxaxa/Print-Detection/internal/infrastructure/detector"
	infrakafka "github.com/andreyxaxa/Print-Detection/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Print-Detection/internal/infrastructure/processor"
	"github.com/andreyxaxa/Print-Detection/internal/repo/persistent"
	"github.com/andreyxaxa/Print-Detection/internal/repo/persistent/migrations"
	"github.com/andreyxaxa/Print-Detection/internal/usecase/apikey"
	"github.com/andreyxaxa/Print-Detection/internal/usecase/card"
	"github.com/andreyxaxa/Print-Detection/pkg/httpserver"
	"github.com/andreyxaxa/Print-Detection/pkg/kafka/producer"
	"github.com/andreyxaxa/Print-Detection/pkg/logger"
	"github.com/andreyxaxa/Print-Detection/pkg/postgres"
	"github.com/andreyxaxa/Print-Detection/pkg/s3client"
	"github.com/andreyxaxa/Print-Detection/pkg/token"
)

const (
	_cardIDLength = 8
	_apiKeyLength = 32

	// headroom over the upload cap for the multipart envelope
	_bodyLimitSlack = 1 << 20
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Repository

	// s3
	s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
	defer s3Cancel()
	s3c, err := s3client.New(s3Ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - s3client.New: %w", err))
	}

	// postgres
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	// schema
	err = migrations.Run(ctx, cfg.PG.URL)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - migrations.Run: %w", err))
	}

	// Token generators
	cardIDs, err := token.New(_cardIDLength)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - token.New: %w", err))
	}
	apiKeys, err := token.New(_apiKeyLength)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - token.New: %w", err))
	}

	// Detector
	det := detector.New(cfg.Detector.URL, cfg.Detector.ConfThreshold, cfg.Detector.Timeout)
	if err := det.Health(ctx); err != nil {
		l.Warn("detector is not healthy yet: %v", err)
	}

	// Use-Case

	cardRepo := persistent.NewCardRepo(pg)

	// card use-case
	cardUseCase := card.New(
		cardRepo,
		persistent.NewImageRepo(s3c, cfg.S3.Bucket),
		persistent.NewOutboxRepo(pg),
		pg,
		det,
		processor.New(),
		cardIDs,
		cfg.Card.IDAttempts,
		l,
	)

	// access-key use-case
	accessKeyUseCase := apikey.New(
		persistent.NewAccessKeyRepo(pg),
		cardRepo,
		apiKeys,
	)

	// Kafka Producer
	kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
	}

	// Outbox Relay Worker
	outboxRelayWorker := outbox.New(
		cardUseCase,
		infrakafka.NewEventProducer(kafkaProducer, cfg.Kafka.Topic),
		l,
		cfg.OutboxRelay.PollInterval,
		cfg.OutboxRelay.CleanupInterval,
		cfg.OutboxRelay.MarkFailedInterval,
		cfg.OutboxRelay.ProcessBatchTimeout,
		cfg.OutboxRelay.BatchSize,
		cfg.OutboxRelay.MaxRetries,
	)

	// HTTP Server
	httpServer := httpserver.New(
		l,
		httpserver.Port(cfg.HTTP.Port),
		httpserver.Prefork(cfg.HTTP.UsePreforkMode),
		httpserver.BodyLimit(int(cfg.Card.MaxUploadSize)+_bodyLimitSlack),
	)
	restapi.NewRouter(httpServer.App, cfg, cardUseCase, accessKeyUseCase, l)

	// Start Components
	err = outboxRelayWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
	defer orlShutdownCancel()
	err = outboxRelayWorker.Shutdown(orlShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - outboxRelayWorker.Shutdown: %w", err))
	}
}
