package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sudzikcoin/PingPoint-sub001/internal/activity"
	"github.com/sudzikcoin/PingPoint-sub001/internal/api"
	"github.com/sudzikcoin/PingPoint-sub001/internal/cache"
	"github.com/sudzikcoin/PingPoint-sub001/internal/config"
	"github.com/sudzikcoin/PingPoint-sub001/internal/database"
	"github.com/sudzikcoin/PingPoint-sub001/internal/handler"
	"github.com/sudzikcoin/PingPoint-sub001/internal/metrics"
	"github.com/sudzikcoin/PingPoint-sub001/internal/ratelimit"
	"github.com/sudzikcoin/PingPoint-sub001/internal/repository"
	"github.com/sudzikcoin/PingPoint-sub001/internal/service"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 初始化数据库
	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	db := database.GetDB()
	if err := database.NewMigrationManager(db).RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Metrics setup
	var mcol *metrics.Collector
	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector()
		metricsSrv = mcol.Serve(cfg.MetricsAddr)
	}

	// Activity publisher: NATS when configured, otherwise a no-op
	var publisher activity.Publisher = activity.NopPublisher{}
	if cfg.NATSURL != "" {
		var pubMetrics activity.PublisherMetrics
		if mcol != nil {
			pubMetrics = mcol
		}
		natsPub, err := activity.NewNATSPublisher(cfg.NATSURL, pubMetrics)
		if err != nil {
			log.Fatal("Failed to connect to NATS:", err)
		}
		publisher = natsPub
	}
	defer publisher.Close()

	var svcMetrics service.Metrics
	if mcol != nil {
		svcMetrics = mcol
	}

	// Ephemeral state and its background sweeps
	debounce := ratelimit.NewDebouncer(cfg.IngestMinInterval, cfg.IngestIdleExpiry)
	publicLimiter := ratelimit.NewFixedWindow(cfg.PublicReadsPerMin, time.Minute)
	snapshots := cache.NewSnapshotCache(cfg.SnapshotCacheTTL)
	ratelimit.StartSweeper(ctx, debounce, cfg.SweepInterval)
	ratelimit.StartSweeper(ctx, publicLimiter, cfg.SweepInterval)
	ratelimit.StartSweeper(ctx, snapshots, cfg.SweepInterval)

	// Repositories and services
	loads := repository.NewLoadRepository(db)
	stops := repository.NewStopRepository(db)
	reports := repository.NewReportRepository(db)
	links := repository.NewLinkRepository(db)

	linkSvc := service.NewLinkService(links, loads)
	validator := service.NewValidator(cfg.MaxAccuracyM, cfg.MaxFutureSkew, cfg.MaxReportAge)
	filter := service.NewPlausibilityFilter(cfg.MaxSpeedMPH)
	engine := service.NewGeofenceEngine(cfg.GeofenceStreakThreshold, cfg.GeofenceDefaultRadiusM)
	ingest := service.NewIngestService(db, linkSvc, debounce, validator, filter, engine, publisher, svcMetrics)
	stopSvc := service.NewStopService(db, linkSvc, engine, publisher)
	tracking := service.NewTrackingService(linkSvc, loads, stops, reports, snapshots, cfg.PublicLinkTTL, svcMetrics)

	// 初始化路由
	handlers := api.Handlers{
		Ping:          handler.NewPingHandler(ingest),
		Stop:          handler.NewStopHandler(stopSvc),
		Tracking:      handler.NewTrackingHandler(tracking),
		Link:          handler.NewLinkHandler(linkSvc),
		PublicLimiter: publicLimiter,
	}
	if mcol != nil {
		handlers.Metrics = mcol
	}
	router := api.SetupRouter(handlers)

	srv := &http.Server{Addr: cfg.Port, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
	}()

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Failed to start server:", err)
	}
}
