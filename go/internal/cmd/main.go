package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/synccue/synccue/go/internal/gateway"
	"github.com/synccue/synccue/go/internal/migrate"
	"github.com/synccue/synccue/go/internal/orchestrator"
	"github.com/synccue/synccue/go/internal/outbox"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("could not load .env file")
	}
	setupLogging()

	config, err := loadConfig(getEnv("CONFIG_PATH", "synccue.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	database, err := setupDatabase()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := migrate.Run(ctx, database); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	services := setupServices(database, config)
	go services.ConnMgr.Start(ctx)

	natsURL := getEnv("NATS_URL", nats.DefaultURL)

	// Outbox relay: unsent domain events go to JetStream.
	publisherConfig := outbox.DefaultJetStreamConfig()
	publisherConfig.URL = natsURL
	publisher, err := outbox.NewJetStreamPublisher(publisherConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create outbox publisher")
	}
	defer publisher.Close()

	workerConfig := outbox.DefaultConfig()
	workerConfig.PollInterval = config.outboxPollInterval()
	workerConfig.BatchSize = config.Outbox.BatchSize
	workerConfig.MaxRetries = config.Outbox.MaxRetries
	worker := outbox.NewWorker(outbox.NewRepository(database), publisher, workerConfig)
	if err := worker.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start outbox worker")
	}
	defer worker.Stop()

	// Deadline scheduler: expires timers whose deadline has passed, woken
	// early by timer start/adjust/reset events off the stream.
	orch := orchestrator.NewOrchestrator(services.TimerApp, clockwork.NewRealClock(), config.Scheduler.BatchSize)
	nc, js, err := orchestrator.ConnectJetStream(natsURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect scheduler to JetStream")
	}
	defer nc.Close()

	wakeConsumer := orchestrator.NewWakeConsumer(js, publisherConfig.StreamName, orch)
	consumeCtx, err := wakeConsumer.Start(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler wake consumer")
	}
	defer consumeCtx.Stop()

	go func() {
		if err := orch.RunScheduler(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("scheduler exited")
		}
	}()

	// Gateway consumer: fans relayed events out to websocket clients.
	consumerConfig := gateway.DefaultJetStreamConsumerConfig()
	consumerConfig.URL = natsURL
	eventConsumer, err := gateway.NewEventConsumer(services.ConnMgr, services.Buffers, consumerConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway event consumer")
	}
	defer eventConsumer.Stop()

	go func() {
		if err := eventConsumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("gateway event consumer exited")
		}
	}()

	server := setupServer(services)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

func setupLogging() {
	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if getEnv("LOG_PRETTY", "") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
