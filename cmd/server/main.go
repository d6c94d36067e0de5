package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"classpulse/internal/config"
	"classpulse/internal/session"
	"classpulse/internal/transport/rest"
	"classpulse/internal/transport/ws"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// WebSocket hub doubles as the broadcast gateway
	hub := ws.NewHub(logger)

	coord := session.NewCoordinator(hub, session.Config{
		DefaultTimeLimitSec: cfg.DefaultTimeLimitSec,
		CloseGraceDelay:     cfg.CloseGraceDelay,
	}, logger)

	wsHandler := ws.NewHandler(hub, coord, logger)

	router := rest.NewRouter(&rest.Container{
		Coordinator: coord,
		WSHandler:   wsHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	coord.Stop()
	logger.Info().Msg("server exited")
}
