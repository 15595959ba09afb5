package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	domainmarketdata "trading-console/internal/domain/entity/marketdata"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const m15HistoryKey = "cache:GET:/api/v1/history?tf=M15"

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func historyTimes(t *testing.T, w *httptest.ResponseRecorder) []int64 {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var candles []domainmarketdata.Candle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &candles))
	times := make([]int64, 0, len(candles))
	for _, c := range candles {
		times = append(times, c.Time)
	}
	return times
}

func TestHistoryCache_HitAndInvalidateOnPost(t *testing.T) {
	mr, client := newTestRedis(t)
	env := newTestEnvWithCache(t, client)
	env.console.On("HistoryChanged", domainmarketdata.TimeframeM15)
	ctx := context.Background()

	require.NoError(t, env.service.UpsertCandles(ctx, domainmarketdata.TimeframeM15, []domainmarketdata.Candle{
		{Time: 0, Open: 1, High: 2, Low: 1, Close: 2, Volume: 1},
	}))
	assert.Equal(t, []int64{0}, historyTimes(t, env.do(http.MethodGet, "/api/v1/history?tf=M15", nil)))
	require.True(t, mr.Exists(m15HistoryKey))

	// a write that bypasses the API is hidden by the cached read
	require.NoError(t, env.service.UpsertCandles(ctx, domainmarketdata.TimeframeM15, []domainmarketdata.Candle{
		{Time: 900, Open: 2, High: 3, Low: 2, Close: 3, Volume: 1},
	}))
	assert.Equal(t, []int64{0}, historyTimes(t, env.do(http.MethodGet, "/api/v1/history?tf=M15", nil)))

	w := env.do(http.MethodPost, "/api/v1/history", map[string]any{
		"timeframe": "M15",
		"candles":   []map[string]any{{"time": 1800, "open": 3, "high": 4, "low": 3, "close": 4, "volume": 1}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, mr.Exists(m15HistoryKey))

	assert.Equal(t, []int64{0, 900, 1800}, historyTimes(t, env.do(http.MethodGet, "/api/v1/history?tf=M15", nil)))
}

func TestHistoryCache_FailedPostKeepsCache(t *testing.T) {
	mr, client := newTestRedis(t)
	env := newTestEnvWithCache(t, client)

	env.do(http.MethodGet, "/api/v1/history?tf=M15", nil)
	require.True(t, mr.Exists(m15HistoryKey))

	w := env.do(http.MethodPost, "/api/v1/history", `{"timeframe":"W1","candles":[]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, mr.Exists(m15HistoryKey))
}

func TestHistoryCache_InvalidateHistoryAfterExternalWrite(t *testing.T) {
	mr, client := newTestRedis(t)
	env := newTestEnvWithCache(t, client)
	ctx := context.Background()

	assert.Empty(t, historyTimes(t, env.do(http.MethodGet, "/api/v1/history?tf=M15", nil)))
	env.do(http.MethodGet, "/api/v1/history?tf=H1", nil)
	require.True(t, mr.Exists("cache:GET:/api/v1/history?tf=H1"))

	require.NoError(t, env.service.UpsertCandles(ctx, domainmarketdata.TimeframeM15, []domainmarketdata.Candle{
		{Time: 60, Open: 1, High: 1, Low: 1, Close: 1},
	}))
	env.handler.InvalidateHistory(ctx)

	assert.False(t, mr.Exists(m15HistoryKey))
	assert.False(t, mr.Exists("cache:GET:/api/v1/history?tf=H1"))
	assert.Equal(t, []int64{60}, historyTimes(t, env.do(http.MethodGet, "/api/v1/history?tf=M15", nil)))
}

func TestHistoryCache_SkipsFailedReads(t *testing.T) {
	mr, client := newTestRedis(t)
	env := newTestEnvWithCache(t, client)
	flaky := &flakyHistory{MarketData: env.service, err: errors.New("db down")}
	env.handler.marketdata = flaky

	w := env.do(http.MethodGet, "/api/v1/history?tf=M15", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
	assert.False(t, mr.Exists(m15HistoryKey))

	require.NoError(t, env.service.UpsertCandles(context.Background(), domainmarketdata.TimeframeM15, []domainmarketdata.Candle{
		{Time: 0, Open: 1, High: 1, Low: 1, Close: 1},
	}))
	flaky.setErr(nil)

	assert.Equal(t, []int64{0}, historyTimes(t, env.do(http.MethodGet, "/api/v1/history?tf=M15", nil)))
	assert.True(t, mr.Exists(m15HistoryKey))
	ttl := mr.TTL(m15HistoryKey)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestInvalidateHistory_WithoutCache(t *testing.T) {
	env := newTestEnv(t)
	assert.NotPanics(t, func() { env.handler.InvalidateHistory(context.Background()) })
}

type flakyHistory struct {
	MarketData
	mu  sync.Mutex
	err error
}

func (f *flakyHistory) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *flakyHistory) GetHistory(ctx context.Context, tf domainmarketdata.Timeframe) ([]domainmarketdata.Candle, error) {
	f.mu.Lock()
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return []domainmarketdata.Candle{}, err
	}
	return f.MarketData.GetHistory(ctx, tf)
}
