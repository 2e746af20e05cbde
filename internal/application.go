package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-session/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-session/internal/config"
	"github.com/rocketscienceinc/tictactoe-session/internal/repository"
	"github.com/rocketscienceinc/tictactoe-session/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-session/internal/telemetry"
	"github.com/rocketscienceinc/tictactoe-session/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-session/transport/rest"
	"go.opentelemetry.io/otel/trace"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tracer, shutdownTelemetry, err := initTracer(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = shutdownTelemetry(context.Background()); err != nil {
			log.Error("could not shutdown telemetry", "error", err)
		}
	}()

	gameController := tictactoe.NewGameController(logger)

	if conf.Redis.Enabled {
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return apperror.ErrAddrNotFound
		}

		redisClient, err := storage.NewRedisClient(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisClient.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		publisher := repository.NewStatePublisher(logger, redisClient, conf.Redis.Channel)
		go publisher.Run(ctx)

		unsubscribe := gameController.Subscribe(publisher.Observer())
		defer unsubscribe()

		log.Info("Publishing game state", "addr", redisAddrString, "channel", conf.Redis.Channel)
	}

	log.Info("Starting HTTP server", "port", conf.HTTPPort)

	server := rest.New(logger, gameController, tracer)
	if err = server.Start(ctx, conf.HTTPPort); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func initTracer(ctx context.Context, conf *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !conf.Telemetry.Enabled {
		return telemetry.NoopTracer(), func(context.Context) error { return nil }, nil
	}

	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("could not set up telemetry: %w", err)
	}

	return telemetry.Tracer("rest"), shutdown, nil
}
