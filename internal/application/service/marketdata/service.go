package marketdata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	marketdata "trading-console/internal/domain/entity/marketdata"
	interfaces "trading-console/internal/domain/interfaces"

	"github.com/google/uuid"
)

const DefaultTradeLimit = 50

var (
	ErrNilTrade         = errors.New("trade is nil")
	ErrInvalidLimit     = errors.New("limit must be positive")
	ErrInvalidTimeframe = errors.New("invalid timeframe")
	ErrInvalidCandle    = errors.New("invalid candle")
	ErrDuplicateCandle  = errors.New("duplicate candle time in batch")
	ErrInvalidTrade     = errors.New("invalid trade")
)

type Service struct {
	candles interfaces.CandleRepository
	trades  interfaces.TradeRepository
	now     func() time.Time
}

func NewService(candles interfaces.CandleRepository, trades interfaces.TradeRepository) *Service {
	return &Service{candles: candles, trades: trades, now: time.Now}
}

// Candles

// UpsertCandles validates a batch, orders it by time and replaces the stored
// candles with the same (time, timeframe) key.
func (s *Service) UpsertCandles(ctx context.Context, timeframe marketdata.Timeframe, candles []marketdata.Candle) error {
	if !timeframe.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTimeframe, timeframe)
	}
	if len(candles) == 0 {
		return nil
	}
	batch := make([]marketdata.Candle, len(candles))
	copy(batch, candles)
	for i := range batch {
		if err := validateCandle(batch[i]); err != nil {
			return err
		}
		batch[i].Timeframe = timeframe
	}
	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].Time < batch[j].Time
	})
	for i := 1; i < len(batch); i++ {
		if batch[i].Time == batch[i-1].Time {
			return fmt.Errorf("%w: %d", ErrDuplicateCandle, batch[i].Time)
		}
	}
	return s.candles.UpsertCandles(ctx, timeframe, batch)
}

// GetHistory returns the ascending series for the timeframe, never nil.
func (s *Service) GetHistory(ctx context.Context, timeframe marketdata.Timeframe) ([]marketdata.Candle, error) {
	if !timeframe.IsValid() {
		return []marketdata.Candle{}, fmt.Errorf("%w: %q", ErrInvalidTimeframe, timeframe)
	}
	candles, err := s.candles.GetCandlesAscending(ctx, timeframe)
	if err != nil {
		return []marketdata.Candle{}, err
	}
	if candles == nil {
		candles = []marketdata.Candle{}
	}
	return candles, nil
}

func validateCandle(c marketdata.Candle) error {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w at %d: non-finite value", ErrInvalidCandle, c.Time)
		}
	}
	if c.Time < 0 {
		return fmt.Errorf("%w: negative time %d", ErrInvalidCandle, c.Time)
	}
	if c.Volume < 0 {
		return fmt.Errorf("%w at %d: negative volume", ErrInvalidCandle, c.Time)
	}
	if c.High < c.Low {
		return fmt.Errorf("%w at %d: high below low", ErrInvalidCandle, c.Time)
	}
	return nil
}

// Trades

func (s *Service) AddTrade(ctx context.Context, trade *marketdata.Trade) error {
	if trade == nil {
		return ErrNilTrade
	}
	trade.Symbol = strings.TrimSpace(trade.Symbol)
	trade.Side = marketdata.TradeSide(strings.ToUpper(string(trade.Side)))
	if trade.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidTrade)
	}
	if trade.Side != marketdata.TradeSideBuy && trade.Side != marketdata.TradeSideSell {
		return fmt.Errorf("%w: side must be BUY or SELL", ErrInvalidTrade)
	}
	if trade.ID == uuid.Nil {
		trade.ID = uuid.New()
	}
	trade.TradedAt = s.now().UTC()
	return s.trades.AddTrade(ctx, trade)
}

func (s *Service) GetLastTrades(ctx context.Context, limit int) ([]marketdata.Trade, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	trades, err := s.trades.GetLastTrades(ctx, limit)
	if err != nil {
		return nil, err
	}
	if trades == nil {
		trades = []marketdata.Trade{}
	}
	return trades, nil
}

func (s *Service) Close() {
	s.candles.Close()
	s.trades.Close()
}
