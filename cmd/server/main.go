package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	docs "trading-console/docs"
	"trading-console/internal/application/console"
	"trading-console/internal/application/relay"
	appmarketdata "trading-console/internal/application/service/marketdata"
	"trading-console/internal/application/telemetry"
	"trading-console/internal/application/watchdog"
	"trading-console/internal/config"
	domainmarketdata "trading-console/internal/domain/entity/marketdata"
	interfaces "trading-console/internal/domain/interfaces"
	"trading-console/internal/infrastructure/broker"
	"trading-console/internal/infrastructure/engine"
	"trading-console/internal/infrastructure/journal"
	inframarketdata "trading-console/internal/infrastructure/marketdata"
	"trading-console/internal/infrastructure/memory"
	"trading-console/internal/infrastructure/metrics"
	"trading-console/internal/infrastructure/settings"
	"trading-console/internal/infrastructure/supervisor"
	infrahttp "trading-console/internal/interfaces/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatalf("invalid LOG_LEVEL: %v", err)
	}
	logger.SetLevel(level)
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Host = cfg.HTTP.Addr()

	candleRepo, tradeRepo, err := openRepositories(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatalf("failed to init repositories: %v", err)
	}
	marketdataService := appmarketdata.NewService(candleRepo, tradeRepo)
	defer marketdataService.Close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	consoleMetrics := metrics.New(prometheus.DefaultRegisterer)

	restarter := supervisor.NewProcessRestarter(cfg.Bridge.KillCommand, cfg.Bridge.StartCommand, cfg.Bridge.WorkDir, logger)
	bridge := supervisor.New(restarter, cfg.Bridge.RestartTimeout, logger)
	bridge.OnResult(consoleMetrics.RestartResult)

	wd := watchdog.New(watchdog.Config{
		StallThreshold: cfg.Watchdog.StallThreshold,
		Armed:          cfg.Watchdog.Armed,
	}, bridge.Requests(), logger)
	wd.OnTransition(consoleMetrics.WatchdogTransition)

	overflow, err := relay.ParseOverflowPolicy(cfg.Relay.Overflow)
	if err != nil {
		logger.Fatalf("invalid COMMAND_QUEUE_OVERFLOW: %v", err)
	}
	commands := relay.New(relay.Config{Capacity: cfg.Relay.Capacity, Overflow: overflow}, logger)

	runner := engine.NewRunner(engine.Config{
		Command:        []string{cfg.Engines.PythonBin},
		BacktestScript: cfg.Engines.BacktestScript,
		TrainScript:    cfg.Engines.TrainScript,
		NewsScript:     cfg.Engines.NewsScript,
		Timeout:        cfg.Engines.Timeout,
	}, logger)

	loop := console.NewLoop(console.Config{
		WatchdogInterval: cfg.Watchdog.Interval,
		ReloadInterval:   cfg.Watchdog.ReloadInterval,
		NewsInterval:     cfg.Watchdog.NewsInterval,
		FailureLimit:     cfg.Watchdog.FailureLimit,
		FallbackVolume:   cfg.Watchdog.FallbackVolume,
	}, telemetry.NewTickState(), commands, wd, marketdataService, logger,
		console.WithNewsSource(runner),
		console.WithRecorder(consoleMetrics),
	)

	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	handler := infrahttp.NewHandler(infrahttp.Dependencies{
		Console:    loop,
		MarketData: marketdataService,
		Engines:    runner,
		Bridge:     bridge,
		Settings:   settings.NewFileStore(cfg.Settings.Path),
		Metrics:    promhttp.Handler(),
	}, redisClient, cacheTTL, logger)

	var consumer *broker.Consumer
	if cfg.RabbitMQ.URL != "" {
		consumer, err = broker.NewConsumer(cfg.RabbitMQ, loop, marketdataService, func(tf domainmarketdata.Timeframe, n int) {
			consoleMetrics.CandlesUpserted(tf.String(), n)
			loop.HistoryChanged(tf)
			handler.InvalidateHistory(context.Background())
		}, logger)
		if err != nil {
			logger.Fatalf("failed to init rabbitmq consumer: %v", err)
		}
	}

	server := &http.Server{
		Addr:    cfg.HTTP.Addr(),
		Handler: handler,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(gctx)
	})
	g.Go(func() error {
		return bridge.Run(gctx)
	})
	if consumer != nil {
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	}
	g.Go(func() error {
		logger.Infof("HTTP server listening on %s", cfg.HTTP.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Infof("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("server shutdown error: %v", err)
		}
		if consumer != nil {
			if err := consumer.Close(shutdownCtx); err != nil {
				logger.Errorf("consumer shutdown error: %v", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("service stopped with error: %v", err)
	}
	logger.Info("server stopped")
}

// openRepositories uses Postgres when a DSN is configured and memory
// otherwise.
func openRepositories(ctx context.Context, cfg config.PostgresConfig, logger *logrus.Logger) (interfaces.CandleRepository, interfaces.TradeRepository, error) {
	if cfg.DSN == "" {
		logger.Warn("DATABASE_DSN is empty, history and journal are kept in memory")
		return memory.NewCandleRepository(), memory.NewTradeRepository(), nil
	}
	candles, err := inframarketdata.NewRepository(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	trades, err := journal.NewRepository(cfg.DSN)
	if err != nil {
		candles.Close()
		return nil, nil, err
	}
	return candles, trades, nil
}
