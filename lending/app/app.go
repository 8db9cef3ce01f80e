package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Astemirdum/lending-service/lending/config"
	"github.com/Astemirdum/lending-service/lending/internal/geo"
	"github.com/Astemirdum/lending-service/lending/internal/handler"
	"github.com/Astemirdum/lending-service/lending/internal/ledger"
	"github.com/Astemirdum/lending-service/lending/internal/lifecycle"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/repository"
	"github.com/Astemirdum/lending-service/lending/internal/repository/memstore"
	"github.com/Astemirdum/lending-service/lending/internal/server"
	"github.com/Astemirdum/lending-service/lending/internal/service"
	"github.com/Astemirdum/lending-service/lending/internal/sweeper"
	"github.com/Astemirdum/lending-service/lending/migrations"
	"github.com/Astemirdum/lending-service/pkg/cache"
	"github.com/Astemirdum/lending-service/pkg/circuit_breaker"
	"github.com/Astemirdum/lending-service/pkg/geocoder"
	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/Astemirdum/lending-service/pkg/logger"
	"github.com/Astemirdum/lending-service/pkg/metrics"
	"github.com/Astemirdum/lending-service/pkg/postgres"
	"github.com/Astemirdum/lending-service/pkg/tracing"
)

func Run(cfg config.Config) error {
	log := logger.NewLogger(cfg.Log, "lending")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, "lending")
	if err != nil {
		return fmt.Errorf("tracing.Init: %w", err)
	}

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	var store repository.Store
	switch cfg.Store {
	case config.DriverPostgres:
		db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.FS)
		if err != nil {
			return fmt.Errorf("db init: %w", err)
		}
		closers = append(closers, db.Close)
		repo, err := repository.NewRepository(db, log)
		if err != nil {
			return fmt.Errorf("repo: %w", err)
		}
		store = repo
	case config.DriverMemory, "":
		log.Warn("in-memory store, state is lost on restart")
		store = memstore.New()
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store)
	}

	rdb, err := cache.NewClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("cache.NewClient: %w", err)
	}
	var geoOpts []geo.IndexOption
	var dedupe kafka.Claimer
	if rdb != nil {
		closers = append(closers, func() { _ = rdb.Close() })
		geoOpts = append(geoOpts, geo.WithCache(cache.NewLocationStore[model.Location](rdb, cfg.Redis.LocationTTL)))
		dedupe = cache.NewClaims(rdb, cfg.Redis.ClaimTTL)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	lcOpts := []lifecycle.Option{lifecycle.WithMetrics(m)}
	var svcOpts []service.Option
	if cfg.KafkaEnabled {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return fmt.Errorf("kafka.NewProducer: %w", err)
		}
		closers = append(closers, func() { _ = producer.Close() })
		pub := kafka.NewPublisher(producer, kafka.LendingTopic, dedupe, log)
		lcOpts = append(lcOpts, lifecycle.WithPublisher(pub))
		svcOpts = append(svcOpts, service.WithPublisher(pub))
	}

	cb := circuit_breaker.New(cfg.Breaker.RecordLength, cfg.Breaker.Timeout, cfg.Breaker.Percentile, cfg.Breaker.RecoveryRequests)
	ix := geo.NewIndex(store, geocoder.New(cfg.Geocoder, cb), log, geoOpts...)
	l := ledger.New(store, log)
	lc := lifecycle.New(store, l, log, lcOpts...)
	svc := service.NewService(store, lc, l, ix, log, svcOpts...)

	if !cfg.Sweeper.Disabled {
		sw := sweeper.New(store, lc, cfg.Sweeper.Interval, log,
			sweeper.WithMetrics(m),
			sweeper.WithGraceDays(cfg.Sweeper.GraceDays),
		)
		go sw.Run(ctx)
	}

	h := handler.New(svc, log, handler.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))
	cancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer closeCancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if err = shutdownTracing(closeCtx); err != nil {
		log.Warn("tracing shutdown", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
	return nil
}
