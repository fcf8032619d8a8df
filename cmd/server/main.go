package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/brickvest/brickvest-be/internal/config"
	"github.com/brickvest/brickvest-be/internal/logging"
	"github.com/brickvest/brickvest-be/internal/metrics"
	"github.com/brickvest/brickvest-be/internal/server"
	"github.com/brickvest/brickvest-be/internal/settlement"
	postgres "github.com/brickvest/brickvest-be/internal/storage/postgres"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("init database")
	}
	defer store.Close()

	settlementMetrics := metrics.NewSettlement(prometheus.DefaultRegisterer)
	engine := settlement.NewEngine(store, logger, settlementMetrics, cfg.MaxDeposit)

	srv := server.New(cfg, store, engine, logger)

	go func() {
		logger.WithField("addr", cfg.HTTPAddress()).Info("BrickVest backend listening")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("graceful shutdown error")
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
