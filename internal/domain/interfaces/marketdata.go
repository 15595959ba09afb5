package interfaces

import (
	"context"

	marketdata "trading-console/internal/domain/entity/marketdata"
)

// CandleRepository is the durable time series store for candles.
type CandleRepository interface {
	UpsertCandles(ctx context.Context, timeframe marketdata.Timeframe, candles []marketdata.Candle) error
	GetCandlesAscending(ctx context.Context, timeframe marketdata.Timeframe) ([]marketdata.Candle, error)
	Close()
}

// TradeRepository keeps the execution journal reported by the agent.
type TradeRepository interface {
	AddTrade(ctx context.Context, trade *marketdata.Trade) error
	GetLastTrades(ctx context.Context, limit int) ([]marketdata.Trade, error)
	Close()
}
