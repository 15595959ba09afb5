package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "trading-console/internal/domain/entity/marketdata"
	"trading-console/internal/infrastructure/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCandleRepo struct {
	memory.CandleRepository
}

func (*failingCandleRepo) GetCandlesAscending(context.Context, domain.Timeframe) ([]domain.Candle, error) {
	return nil, errors.New("connection refused")
}

func newTestService() *Service {
	return NewService(memory.NewCandleRepository(), memory.NewTradeRepository())
}

func TestService_UpsertCandlesSortsAndTags(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	err := svc.UpsertCandles(ctx, domain.TimeframeM15, []domain.Candle{
		{Time: 1800, Open: 3, High: 4, Low: 2, Close: 3, Volume: 1},
		{Time: 0, Open: 1, High: 2, Low: 0, Close: 1, Volume: 1},
		{Time: 900, Open: 2, High: 3, Low: 1, Close: 2, Volume: 1},
	})
	require.NoError(t, err)

	got, err := svc.GetHistory(ctx, domain.TimeframeM15)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, want := range []int64{0, 900, 1800} {
		assert.Equal(t, want, got[i].Time)
		assert.Equal(t, domain.TimeframeM15, got[i].Timeframe)
	}
}

func TestService_UpsertCandlesValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tests := []struct {
		name      string
		timeframe domain.Timeframe
		candles   []domain.Candle
		wantErr   error
	}{
		{
			name:      "unknown timeframe",
			timeframe: domain.Timeframe("M7"),
			candles:   []domain.Candle{{Time: 1, High: 1, Low: 1}},
			wantErr:   ErrInvalidTimeframe,
		},
		{
			name:      "negative volume",
			timeframe: domain.TimeframeM1,
			candles:   []domain.Candle{{Time: 60, High: 2, Low: 1, Volume: -1}},
			wantErr:   ErrInvalidCandle,
		},
		{
			name:      "high below low",
			timeframe: domain.TimeframeM1,
			candles:   []domain.Candle{{Time: 60, High: 1, Low: 2}},
			wantErr:   ErrInvalidCandle,
		},
		{
			name:      "duplicate time",
			timeframe: domain.TimeframeM1,
			candles:   []domain.Candle{{Time: 60, High: 2, Low: 1}, {Time: 60, High: 3, Low: 1}},
			wantErr:   ErrDuplicateCandle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.UpsertCandles(ctx, tt.timeframe, tt.candles)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	got, err := svc.GetHistory(ctx, domain.TimeframeM1)
	require.NoError(t, err)
	require.Empty(t, got, "rejected batches must not be persisted")
}

func TestService_UpsertEmptyBatchIsNoop(t *testing.T) {
	svc := newTestService()

	require.NoError(t, svc.UpsertCandles(context.Background(), domain.TimeframeM5, nil))
}

func TestService_GetHistoryNeverNil(t *testing.T) {
	svc := NewService(&failingCandleRepo{}, memory.NewTradeRepository())

	got, err := svc.GetHistory(context.Background(), domain.TimeframeM15)

	require.Error(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestService_AddTrade(t *testing.T) {
	svc := newTestService()
	fixed := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	trade := &domain.Trade{Symbol: " XAUUSD ", Side: "buy", Price: 2001.5, Volume: 0.1}
	require.NoError(t, svc.AddTrade(ctx, trade))
	assert.NotEmpty(t, trade.ID)
	assert.Equal(t, fixed, trade.TradedAt)
	assert.Equal(t, domain.TradeSideBuy, trade.Side)
	assert.Equal(t, "XAUUSD", trade.Symbol)

	require.ErrorIs(t, svc.AddTrade(ctx, nil), ErrNilTrade)
	require.ErrorIs(t, svc.AddTrade(ctx, &domain.Trade{Symbol: "XAUUSD", Side: "HOLD"}), ErrInvalidTrade)

	got, err := svc.GetLastTrades(ctx, DefaultTradeLimit)
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = svc.GetLastTrades(ctx, 0)
	require.ErrorIs(t, err, ErrInvalidLimit)
}
