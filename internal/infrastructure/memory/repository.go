// Package memory provides in-process candle and trade stores used when no
// database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	domain "trading-console/internal/domain/entity/marketdata"
	interfaces "trading-console/internal/domain/interfaces"
)

const defaultMaxTrades = 1000

var (
	_ interfaces.CandleRepository = (*CandleRepository)(nil)
	_ interfaces.TradeRepository  = (*TradeRepository)(nil)
)

// CandleRepository keeps candles keyed by timeframe and time.
type CandleRepository struct {
	mu      sync.RWMutex
	candles map[domain.Timeframe]map[int64]domain.Candle
}

func NewCandleRepository() *CandleRepository {
	return &CandleRepository{candles: make(map[domain.Timeframe]map[int64]domain.Candle)}
}

func (r *CandleRepository) UpsertCandles(_ context.Context, timeframe domain.Timeframe, candles []domain.Candle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	series, ok := r.candles[timeframe]
	if !ok {
		series = make(map[int64]domain.Candle, len(candles))
		r.candles[timeframe] = series
	}
	for _, c := range candles {
		c.Timeframe = timeframe
		series[c.Time] = c
	}
	return nil
}

func (r *CandleRepository) GetCandlesAscending(_ context.Context, timeframe domain.Timeframe) ([]domain.Candle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	series := r.candles[timeframe]
	out := make([]domain.Candle, 0, len(series))
	for _, c := range series {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r *CandleRepository) Close() {}

// TradeRepository keeps the most recent trades, oldest first.
type TradeRepository struct {
	mu     sync.RWMutex
	trades []domain.Trade
	max    int
}

func NewTradeRepository() *TradeRepository {
	return &TradeRepository{max: defaultMaxTrades}
}

func (r *TradeRepository) AddTrade(_ context.Context, trade *domain.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.trades = append(r.trades, *trade)
	if len(r.trades) > r.max {
		r.trades = r.trades[len(r.trades)-r.max:]
	}
	return nil
}

// GetLastTrades returns up to limit trades, newest first.
func (r *TradeRepository) GetLastTrades(_ context.Context, limit int) ([]domain.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit > len(r.trades) {
		limit = len(r.trades)
	}
	out := make([]domain.Trade, 0, limit)
	for i := len(r.trades) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.trades[i])
	}
	return out, nil
}

func (r *TradeRepository) Close() {}
