// @title           Trading Console API
// @version         1.0
// @description     Telemetry bridge, command relay and feed watchdog for the trading bot console
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"trading-console/internal/application/console"
	appinterfaces "trading-console/internal/application/interfaces"
	"trading-console/internal/application/vwap"
	control "trading-console/internal/domain/entity/control"
	domainmarketdata "trading-console/internal/domain/entity/marketdata"
	interfaces "trading-console/internal/domain/interfaces"
	"trading-console/internal/infrastructure/engine"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	apiBasePath         = "/api/v1"
	historyCachePrefix  = "cache:GET:/api/v1/history"
	skipCacheKey        = "skip_cache"
	defaultStreamEvery  = time.Second
	defaultTradesLimit  = 50
	restartReasonManual = "manual"
)

// Console is the live control loop.
type Console interface {
	IngestTick(tick domainmarketdata.Tick) (domainmarketdata.Tick, error)
	LatestTick() (domainmarketdata.Tick, bool)
	LiveVWAP() (float64, bool)
	Baseline() (domainmarketdata.Timeframe, vwap.Totals, bool)
	VWAP(ctx context.Context, tf domainmarketdata.Timeframe) ([]domainmarketdata.VWAPPoint, error)
	HistoryChanged(tf domainmarketdata.Timeframe)
	EnqueueCommand(command string) (int, error)
	DequeueCommand() (string, bool)
	WatchdogState() control.WatchdogState
	ArmWatchdog(armed bool) control.WatchdogState
	News(ctx context.Context) (console.NewsSnapshot, error)
}

// MarketData is the candle history and trade journal service.
type MarketData interface {
	UpsertCandles(ctx context.Context, tf domainmarketdata.Timeframe, candles []domainmarketdata.Candle) error
	GetHistory(ctx context.Context, tf domainmarketdata.Timeframe) ([]domainmarketdata.Candle, error)
	AddTrade(ctx context.Context, trade *domainmarketdata.Trade) error
	GetLastTrades(ctx context.Context, limit int) ([]domainmarketdata.Trade, error)
}

// Engines runs the external analysis scripts.
type Engines interface {
	Backtest(ctx context.Context, req engine.BacktestRequest) (json.RawMessage, error)
	Train(ctx context.Context) (string, error)
}

// Bridge restarts the feed process on operator request.
type Bridge interface {
	Restart(ctx context.Context, req control.RestartRequest) control.RestartResult
	LastResult() (control.RestartResult, bool)
}

// Dependencies wires the handler. Metrics may be nil.
type Dependencies struct {
	Console    Console
	MarketData MarketData
	Engines    Engines
	Bridge     Bridge
	Settings   interfaces.SettingsStore
	Metrics    http.Handler
}

type Handler struct {
	router      *gin.Engine
	console     Console
	marketdata  MarketData
	engines     Engines
	bridge      Bridge
	settings    interfaces.SettingsStore
	metrics     http.Handler
	cache       *redis.Client
	cacheTTL    time.Duration
	streamEvery time.Duration
	logger      *logrus.Entry
}

var _ appinterfaces.HTTPHandler = (*Handler)(nil)

func NewHandler(deps Dependencies, cache *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) *Handler {
	registerValidators()

	router := gin.New()
	router.Use(gin.Recovery(), requestIDMiddleware(), corsMiddleware(), loggerMiddleware(logger))

	h := &Handler{
		router:      router,
		console:     deps.Console,
		marketdata:  deps.MarketData,
		engines:     deps.Engines,
		bridge:      deps.Bridge,
		settings:    deps.Settings,
		metrics:     deps.Metrics,
		cache:       cache,
		cacheTTL:    cacheTTL,
		streamEvery: defaultStreamEvery,
		logger:      logger.WithField("component", "http"),
	}
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	h.router.GET("/health", h.health)
	if h.metrics != nil {
		h.router.GET("/metrics", gin.WrapH(h.metrics))
	}

	api := h.router.Group(apiBasePath)
	{
		api.POST("/tick", h.postTick)
		api.GET("/tick", h.getTick)

		history := api.Group("/history")
		if h.cache != nil {
			history.Use(h.cacheMiddleware())
		}
		history.POST("", h.postHistory)
		history.GET("", h.getHistory)

		api.GET("/vwap", h.getVWAP)
		api.GET("/vwap/baseline", h.getVWAPBaseline)

		api.POST("/command", h.postCommand)
		api.GET("/command", h.getCommand)

		api.POST("/bridge/restart", h.restartBridge)
		api.GET("/bridge/status", h.getBridgeStatus)
		api.GET("/watchdog", h.getWatchdog)
		api.POST("/watchdog/arm", h.armWatchdog)

		api.POST("/backtest", h.runBacktest)
		api.POST("/train", h.runTraining)
		api.GET("/context", h.getContext)

		api.GET("/settings", h.getSettings)
		api.POST("/settings", h.saveSettings)

		api.GET("/trades", h.getTrades)
		api.POST("/trades", h.addTrade)

		api.GET("/ws/telemetry", h.streamTelemetry)
	}
}

// health reports liveness
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, err error) {
	if err == nil {
		status = http.StatusInternalServerError
		err = errors.New("unknown error")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// cacheMiddleware caches GET responses in Redis and drops them after writes.
func (h *Handler) cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.cache == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		if c.Request.Method != http.MethodGet {
			c.Next()
			if c.Writer.Status() < 300 {
				h.InvalidateHistory(ctx)
			}
			return
		}

		key := h.cacheKey(c)
		if cached, err := h.cache.Get(ctx, key).Result(); err == nil {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			c.Abort()
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: c.Writer,
			status:         http.StatusOK,
			body:           &bytes.Buffer{},
		}
		c.Writer = recorder

		c.Next()

		if c.GetBool(skipCacheKey) {
			return
		}
		if recorder.status >= 200 && recorder.status < 300 && recorder.body.Len() > 0 {
			_ = h.cache.Set(ctx, key, recorder.body.Bytes(), h.cacheTTL).Err()
		}
	}
}

// InvalidateHistory drops cached history reads. Candle writers outside the
// HTTP API call it after each commit.
func (h *Handler) InvalidateHistory(ctx context.Context) {
	if h.cache == nil {
		return
	}
	h.invalidateCache(ctx, historyCachePrefix)
}

func (h *Handler) invalidateCache(ctx context.Context, prefix string) {
	iter := h.cache.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		h.logger.WithError(err).Warn("scan cache keys failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := h.cache.Del(ctx, keys...).Err(); err != nil {
		h.logger.WithError(err).Warn("invalidate cache failed")
	}
}

type responseRecorder struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if len(data) > 0 {
		r.body.Write(data)
	}
	return r.ResponseWriter.Write(data)
}

func (h *Handler) cacheKey(c *gin.Context) string {
	return fmt.Sprintf("cache:%s:%s?%s", c.Request.Method, c.FullPath(), c.Request.URL.RawQuery)
}

// timeframeQuery reads ?tf=, defaulting to M15.
func timeframeQuery(c *gin.Context) (domainmarketdata.Timeframe, error) {
	raw := c.Query("tf")
	if raw == "" {
		return domainmarketdata.DefaultTimeframe, nil
	}
	return domainmarketdata.ParseTimeframe(raw)
}
