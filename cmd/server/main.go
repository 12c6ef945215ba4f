package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vogiaan1904/calorieclash/config"
	delivery "github.com/vogiaan1904/calorieclash/internal/delivery/http"
	"github.com/vogiaan1904/calorieclash/internal/delivery/kafka/producer"
	infra "github.com/vogiaan1904/calorieclash/internal/infra/redis"
	repo "github.com/vogiaan1904/calorieclash/internal/repository/redis"
	"github.com/vogiaan1904/calorieclash/internal/service"
	pkgKafka "github.com/vogiaan1904/calorieclash/pkg/kafka"
	pkgLog "github.com/vogiaan1904/calorieclash/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	redisCli, err := infra.Connect(ctx, cfg.Redis)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
	}
	defer infra.Disconnect(redisCli)

	ssRepo := repo.NewRedisSessionRepository(redisCli, cfg.Game.SessionTTL, l)
	catRepo := repo.NewRedisCatalogRepository(redisCli, l)
	locker := repo.NewRedisSessionLocker(redisCli, cfg.Game.LockTTL, l)

	if size, err := catRepo.PoolSize(ctx); err != nil {
		l.Warnf(ctx, "Failed to check catalog pool: %v", err)
	} else if size < int64(cfg.Game.CatalogSize) {
		l.Warnf(ctx, "Catalog pool holds %d items, games draw %d; run scripts/seed-catalog", size, cfg.Game.CatalogSize)
	}

	var prod producer.Producer
	if cfg.Kafka.Enabled {
		kafkaSyncProd, err := pkgKafka.NewProducer(cfg.Kafka)
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka producer: %v", err)
		}
		prod = producer.NewProducer(kafkaSyncProd, l)
		defer prod.Close()
	}

	tokenSvc := service.NewTokenService(cfg.JWT, l)
	gameSvc := service.NewGameService(ssRepo, catRepo, locker, tokenSvc, prod, cfg.Game, l)

	handler := delivery.NewGameHandler(gameSvc, tokenSvc, l)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Infof(gCtx, "HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		l.Info(shutdownCtx, "Shutting down HTTP server...")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		l.Fatalf(context.Background(), "Server error: %v", err)
	}

	l.Info(context.Background(), "Server stopped.")
}
