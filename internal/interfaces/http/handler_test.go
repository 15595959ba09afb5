package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trading-console/internal/application/console"
	"trading-console/internal/application/relay"
	appmarketdata "trading-console/internal/application/service/marketdata"
	"trading-console/internal/application/telemetry"
	"trading-console/internal/application/vwap"
	control "trading-console/internal/domain/entity/control"
	domainmarketdata "trading-console/internal/domain/entity/marketdata"
	"trading-console/internal/infrastructure/engine"
	"trading-console/internal/infrastructure/memory"
	"trading-console/internal/infrastructure/settings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockConsole struct {
	mock.Mock
}

func (m *MockConsole) IngestTick(tick domainmarketdata.Tick) (domainmarketdata.Tick, error) {
	args := m.Called(tick)
	return args.Get(0).(domainmarketdata.Tick), args.Error(1)
}

func (m *MockConsole) LatestTick() (domainmarketdata.Tick, bool) {
	args := m.Called()
	return args.Get(0).(domainmarketdata.Tick), args.Bool(1)
}

func (m *MockConsole) LiveVWAP() (float64, bool) {
	args := m.Called()
	return args.Get(0).(float64), args.Bool(1)
}

func (m *MockConsole) Baseline() (domainmarketdata.Timeframe, vwap.Totals, bool) {
	args := m.Called()
	return args.Get(0).(domainmarketdata.Timeframe), args.Get(1).(vwap.Totals), args.Bool(2)
}

func (m *MockConsole) VWAP(ctx context.Context, tf domainmarketdata.Timeframe) ([]domainmarketdata.VWAPPoint, error) {
	args := m.Called(ctx, tf)
	return args.Get(0).([]domainmarketdata.VWAPPoint), args.Error(1)
}

func (m *MockConsole) HistoryChanged(tf domainmarketdata.Timeframe) {
	m.Called(tf)
}

func (m *MockConsole) EnqueueCommand(command string) (int, error) {
	args := m.Called(command)
	return args.Int(0), args.Error(1)
}

func (m *MockConsole) DequeueCommand() (string, bool) {
	args := m.Called()
	return args.String(0), args.Bool(1)
}

func (m *MockConsole) WatchdogState() control.WatchdogState {
	return m.Called().Get(0).(control.WatchdogState)
}

func (m *MockConsole) ArmWatchdog(armed bool) control.WatchdogState {
	return m.Called(armed).Get(0).(control.WatchdogState)
}

func (m *MockConsole) News(ctx context.Context) (console.NewsSnapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(console.NewsSnapshot), args.Error(1)
}

type MockEngines struct {
	mock.Mock
}

func (m *MockEngines) Backtest(ctx context.Context, req engine.BacktestRequest) (json.RawMessage, error) {
	args := m.Called(ctx, req)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *MockEngines) Train(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockBridge struct {
	mock.Mock
}

func (m *MockBridge) Restart(ctx context.Context, req control.RestartRequest) control.RestartResult {
	return m.Called(ctx, req).Get(0).(control.RestartResult)
}

func (m *MockBridge) LastResult() (control.RestartResult, bool) {
	args := m.Called()
	return args.Get(0).(control.RestartResult), args.Bool(1)
}

type testEnv struct {
	handler *Handler
	console *MockConsole
	engines *MockEngines
	bridge  *MockBridge
	service *appmarketdata.Service
}

func setupGinTestMode() {
	gin.SetMode(gin.TestMode)
}

func setupTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithCache(t, nil)
}

func newTestEnvWithCache(t *testing.T, cache *redis.Client) *testEnv {
	t.Helper()
	setupGinTestMode()

	env := &testEnv{
		console: &MockConsole{},
		engines: &MockEngines{},
		bridge:  &MockBridge{},
		service: appmarketdata.NewService(memory.NewCandleRepository(), memory.NewTradeRepository()),
	}
	env.handler = NewHandler(Dependencies{
		Console:    env.console,
		MarketData: env.service,
		Engines:    env.engines,
		Bridge:     env.bridge,
		Settings:   settings.NewFileStore(filepath.Join(t.TempDir(), "mt5_config.json")),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("console_ticks_ingested_total 1\n"))
		}),
	}, cache, time.Minute, setupTestLogger())
	return env
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPostTick(t *testing.T) {
	env := newTestEnv(t)
	env.console.On("IngestTick", mock.MatchedBy(func(tick domainmarketdata.Tick) bool {
		return tick.Symbol == "XAUUSD" && tick.Bid == 2001.5 && tick.Prediction != nil && tick.Prediction.Status == "LONG"
	})).Return(domainmarketdata.Tick{Symbol: "XAUUSD", Timestamp: 1700000000000}, nil).Once()

	w := env.do(http.MethodPost, "/api/v1/tick", `{"symbol":"XAUUSD","bid":2001.5,"ask":2001.9,"equity":10000,"profit":12.5,"prediction":{"status":"LONG","long":0.7}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1700000000000), body["timestamp"])
	env.console.AssertExpectations(t)
}

func TestPostTick_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"symbol":`},
		{name: "missing symbol", body: `{"bid":1}`},
		{name: "wrong type", body: `{"symbol":"XAUUSD","bid":"high"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			w := env.do(http.MethodPost, "/api/v1/tick", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode(t, w), "error")
			env.console.AssertNotCalled(t, "IngestTick", mock.Anything)
		})
	}
}

func TestPostTick_InvalidTickFromConsole(t *testing.T) {
	env := newTestEnv(t)
	env.console.On("IngestTick", mock.Anything).Return(domainmarketdata.Tick{}, telemetry.ErrInvalidTick)

	w := env.do(http.MethodPost, "/api/v1/tick", `{"symbol":"XAUUSD","bid":-1}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTick(t *testing.T) {
	env := newTestEnv(t)
	env.console.On("LatestTick").Return(domainmarketdata.Tick{Symbol: "XAUUSD", Bid: 2010, Timestamp: 5}, true)
	env.console.On("LiveVWAP").Return(2004.41, true)

	w := env.do(http.MethodGet, "/api/v1/tick", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "XAUUSD", body["symbol"])
	assert.Equal(t, 2010.0, body["bid"])
	assert.Equal(t, 2004.41, body["vwap_live"])
}

func TestGetTick_Default(t *testing.T) {
	env := newTestEnv(t)
	env.console.On("LatestTick").Return(domainmarketdata.Tick{Symbol: domainmarketdata.DefaultSymbol, Timestamp: 9}, false)
	env.console.On("LiveVWAP").Return(0.0, false)

	w := env.do(http.MethodGet, "/api/v1/tick", nil)

	body := decode(t, w)
	assert.Equal(t, "XAUUSD", body["symbol"])
	assert.Equal(t, 0.0, body["bid"])
	assert.NotContains(t, body, "vwap_live")
}

func TestHistory_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.console.On("HistoryChanged", domainmarketdata.TimeframeM15).Once()

	w := env.do(http.MethodPost, "/api/v1/history", map[string]any{
		"timeframe": "M15",
		"candles": []map[string]any{
			{"time": 900, "open": 2002, "high": 2010, "low": 2000, "close": 2008, "volume": 20},
			{"time": 0, "open": 2000, "high": 2005, "low": 1995, "close": 2002, "volume": 10},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodGet, "/api/v1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var candles []domainmarketdata.Candle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &candles))
	require.Len(t, candles, 2)
	assert.Equal(t, int64(0), candles[0].Time)
	assert.Equal(t, int64(900), candles[1].Time)

	w = env.do(http.MethodGet, "/api/v1/history?tf=H1", nil)
	assert.Equal(t, "[]", w.Body.String())
	env.console.AssertExpectations(t)
}

func TestHistory_BadRequests(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/history", `{"timeframe":"W1","candles":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/v1/history", `{"timeframe":"M5","candles":[{"time":60,"high":1,"low":2,"close":1}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/v1/history?tf=W1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.console.AssertNotCalled(t, "HistoryChanged", mock.Anything)
}

func TestGetVWAP(t *testing.T) {
	env := newTestEnv(t)
	v := 2000.67
	env.console.On("VWAP", mock.Anything, domainmarketdata.TimeframeH1).
		Return([]domainmarketdata.VWAPPoint{{Time: 3600, Value: &v}}, nil).Once()
	env.console.On("VWAP", mock.Anything, domainmarketdata.TimeframeM15).
		Return([]domainmarketdata.VWAPPoint{}, errors.New("db down")).Once()

	w := env.do(http.MethodGet, "/api/v1/vwap?tf=h1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"time":3600,"value":2000.67}]`, w.Body.String())

	w = env.do(http.MethodGet, "/api/v1/vwap", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
	env.console.AssertExpectations(t)
}

func TestCommands(t *testing.T) {
	env := newTestEnv(t)
	env.console.On("EnqueueCommand", "PAUSE").Return(1, nil).Once()
	env.console.On("EnqueueCommand", "CLOSE_ALL").Return(256, relay.ErrQueueFull).Once()
	env.console.On("DequeueCommand").Return("PAUSE", true).Once()
	env.console.On("DequeueCommand").Return("", false).Once()

	w := env.do(http.MethodPost, "/api/v1/command", `{"command":"PAUSE"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"queue_size":1}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/v1/command", `{"command":"CLOSE_ALL"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, float64(256), decode(t, w)["queue_size"])

	w = env.do(http.MethodPost, "/api/v1/command", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/v1/command", nil)
	assert.JSONEq(t, `{"command":"PAUSE"}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/v1/command", nil)
	assert.JSONEq(t, `{"command":null}`, w.Body.String())
	env.console.AssertExpectations(t)
}

func TestWatchdogRoutes(t *testing.T) {
	env := newTestEnv(t)
	env.console.On("WatchdogState").Return(control.WatchdogState{Status: control.StatusOnline, LastTickTimestamp: 42, Armed: true})
	env.console.On("ArmWatchdog", false).Return(control.WatchdogState{Status: control.StatusOnline, LastTickTimestamp: 42})

	w := env.do(http.MethodGet, "/api/v1/watchdog", nil)
	assert.JSONEq(t, `{"status":"ONLINE","last_tick_timestamp":42,"armed":true}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/v1/watchdog/arm", `{"armed":false}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["armed"])

	w = env.do(http.MethodPost, "/api/v1/watchdog/arm", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRestartBridge(t *testing.T) {
	env := newTestEnv(t)
	env.bridge.On("Restart", mock.Anything, mock.MatchedBy(func(req control.RestartRequest) bool {
		return req.Reason == "manual"
	})).Return(control.RestartResult{Output: "bridge started pid=7"}).Once()
	env.bridge.On("Restart", mock.Anything, mock.Anything).Return(control.RestartResult{Err: errors.New("python not found")}).Once()

	w := env.do(http.MethodPost, "/api/v1/bridge/restart", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bridge started pid=7", decode(t, w)["output"])

	w = env.do(http.MethodPost, "/api/v1/bridge/restart", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "python not found", decode(t, w)["error"])
}

func TestBacktest(t *testing.T) {
	env := newTestEnv(t)
	env.engines.On("Backtest", mock.Anything, engine.BacktestRequest{
		Symbol: "XAUUSD", StartDate: "2024-01-01", EndDate: "2024-02-01", Timeframe: domainmarketdata.TimeframeM15,
	}).Return(json.RawMessage(`{"trades":3,"pnl":120.5}`), nil).Once()

	w := env.do(http.MethodPost, "/api/v1/backtest", `{"symbol":"XAUUSD","start_date":"2024-01-01","end_date":"2024-02-01"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"trades":3,"pnl":120.5}}`, w.Body.String())
	env.engines.AssertExpectations(t)
}

func TestBacktest_CamelCaseDates(t *testing.T) {
	env := newTestEnv(t)
	env.engines.On("Backtest", mock.Anything, engine.BacktestRequest{
		Symbol: "XAUUSD", StartDate: "2024-01-01", EndDate: "2024-02-01", Timeframe: domainmarketdata.TimeframeH1,
	}).Return(json.RawMessage(`{"trades":1}`), nil).Once()

	w := env.do(http.MethodPost, "/api/v1/backtest", `{"symbol":"XAUUSD","startDate":"2024-01-01","endDate":"2024-02-01","timeframe":"H1"}`)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env.engines.AssertExpectations(t)

	w = env.do(http.MethodPost, "/api/v1/backtest", `{"symbol":"XAUUSD","startDate":"2024-01-01"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVWAPBaseline(t *testing.T) {
	env := newTestEnv(t)
	env.console.On("Baseline").Return(domainmarketdata.Timeframe(""), vwap.Totals{}, false).Once()

	w := env.do(http.MethodGet, "/api/v1/vwap/baseline", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"loaded":false}`, w.Body.String())

	env.console.On("Baseline").Return(domainmarketdata.TimeframeM15, vwap.Totals{PriceVolume: 60126.5, Volume: 30, Points: 2, LastTime: 900}, true).Once()

	w = env.do(http.MethodGet, "/api/v1/vwap/baseline", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"loaded":true,"timeframe":"M15","totals":{"price_volume":60126.5,"volume":30,"points":2,"last_time":900}}`, w.Body.String())
	env.console.AssertExpectations(t)
}

func TestBridgeStatus(t *testing.T) {
	env := newTestEnv(t)
	env.bridge.On("LastResult").Return(control.RestartResult{}, false).Once()

	w := env.do(http.MethodGet, "/api/v1/bridge/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"last_restart":null}`, w.Body.String())

	env.bridge.On("LastResult").Return(control.RestartResult{
		Request: control.RestartRequest{Reason: "stale feed", RequestedAt: 77},
		Err:     errors.New("python not found"),
	}, true).Once()

	w = env.do(http.MethodGet, "/api/v1/bridge/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"last_restart":{"reason":"stale feed","requested_at":77,"success":false,"error":"python not found"}}`, w.Body.String())
	env.bridge.AssertExpectations(t)
}

func TestBacktest_Failures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		field  string
		value  string
	}{
		{name: "process", err: &engine.EngineError{Engine: "backtest", Kind: engine.KindProcess, Err: errors.New("exit status 1"), Stderr: "Traceback"}, status: http.StatusInternalServerError, field: "stderr", value: "Traceback"},
		{name: "malformed", err: &engine.EngineError{Engine: "backtest", Kind: engine.KindMalformed, Err: errors.New("bad"), Raw: "nope"}, status: http.StatusInternalServerError, field: "raw", value: "nope"},
		{name: "timeout", err: &engine.EngineError{Engine: "backtest", Kind: engine.KindTimeout, Err: context.DeadlineExceeded}, status: http.StatusGatewayTimeout, field: "kind", value: "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.engines.On("Backtest", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := env.do(http.MethodPost, "/api/v1/backtest", `{"symbol":"XAUUSD","start_date":"a","end_date":"b","timeframe":"H1"}`)

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.value, body[tt.field])
		})
	}
}

func TestBacktest_InvalidTimeframe(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/backtest", `{"symbol":"XAUUSD","start_date":"a","end_date":"b","timeframe":"W1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.engines.AssertNotCalled(t, "Backtest", mock.Anything, mock.Anything)
}

func TestTrain(t *testing.T) {
	env := newTestEnv(t)
	env.engines.On("Train", mock.Anything).Return("epoch 1 loss=0.3\n", nil).Once()

	w := env.do(http.MethodPost, "/api/v1/train", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "epoch 1 loss=0.3\n", decode(t, w)["output"])
}

func TestContext(t *testing.T) {
	env := newTestEnv(t)
	fetched := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	env.console.On("News", mock.Anything).Return(console.NewsSnapshot{Data: json.RawMessage(`[{"title":"CPI"}]`), FetchedAt: fetched}, nil).Once()
	env.console.On("News", mock.Anything).Return(console.NewsSnapshot{}, console.ErrNewsUnavailable).Once()

	w := env.do(http.MethodGet, "/api/v1/context", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"news":[{"title":"CPI"}],"fetched_at":"2024-03-01T12:00:00Z"}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/v1/context", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSettings(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/settings", nil)
	assert.JSONEq(t, `{"login":null,"server":null}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/v1/settings", `{"login":5012345,"server":"MetaQuotes-Demo"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing credentials", decode(t, w)["error"])

	w = env.do(http.MethodPost, "/api/v1/settings", `{"login":5012345,"password":"s3cret","server":"MetaQuotes-Demo"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/v1/settings", nil)
	assert.JSONEq(t, `{"login":5012345,"password":"****","server":"MetaQuotes-Demo"}`, w.Body.String())
}

func TestTrades(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/trades", `{"symbol":"XAUUSD","side":"buy","price":2001.5,"vol":0.1,"comment":"breakout"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "BUY", created["side"])
	assert.NotEmpty(t, created["id"])

	w = env.do(http.MethodPost, "/api/v1/trades", `{"symbol":"XAUUSD","side":"HOLD","price":1,"vol":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/v1/trades", nil)
	var trades []domainmarketdata.Trade
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trades))
	require.Len(t, trades, 1)
	assert.Equal(t, "breakout", trades[0].Comment)
}

func TestSystemRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/health", nil)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = env.do(http.MethodGet, "/metrics", nil)
	assert.Contains(t, w.Body.String(), "console_ticks_ingested_total")

	w = env.do(http.MethodOptions, "/api/v1/command", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDMiddleware(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeaderKey, "test-request-123")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, "test-request-123", w.Header().Get(RequestIDHeaderKey))

	w = env.do(http.MethodGet, "/health", nil)
	assert.Len(t, w.Header().Get(RequestIDHeaderKey), 36)
}

func TestTelemetryStream(t *testing.T) {
	env := newTestEnv(t)
	env.handler.streamEvery = 10 * time.Millisecond
	env.console.On("LatestTick").Return(domainmarketdata.Tick{Symbol: "XAUUSD", Bid: 2010}, true)
	env.console.On("LiveVWAP").Return(2004.0, true)
	env.console.On("WatchdogState").Return(control.WatchdogState{Status: control.StatusOnline, Armed: true})

	server := httptest.NewServer(env.handler)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws/telemetry"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < 2; i++ {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var frame telemetryFrame
		require.NoError(t, conn.ReadJSON(&frame))
		assert.Equal(t, "XAUUSD", frame.Tick.Symbol)
		require.NotNil(t, frame.Tick.VWAPLive)
		assert.Equal(t, 2004.0, *frame.Tick.VWAPLive)
		assert.Equal(t, control.StatusOnline, frame.Watchdog.Status)
	}
}
