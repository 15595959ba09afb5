// Package vwap keeps a cumulative volume-weighted average price over a candle
// series and previews it against live prices.
package vwap

import (
	"sync"

	marketdata "trading-console/internal/domain/entity/marketdata"

	"github.com/shopspring/decimal"
)

// DefaultFallbackVolume is used for candles that carry no volume.
const DefaultFallbackVolume = 1.0

var three = decimal.NewFromInt(3)

// Totals are the cumulative accumulators after the last baseline load.
type Totals struct {
	PriceVolume float64 `json:"price_volume"`
	Volume      float64 `json:"volume"`
	Points      int     `json:"points"`
	LastTime    int64   `json:"last_time"`
}

// Aggregator holds the baseline accumulators. A baseline load replaces them
// atomically; live extrapolation only reads them.
type Aggregator struct {
	fallback decimal.Decimal

	mu       sync.RWMutex
	cumPV    decimal.Decimal
	cumV     decimal.Decimal
	points   int
	lastTime int64
}

// NewAggregator creates an aggregator. Volumes <= 0 are replaced by
// fallbackVolume; a negative fallback is treated as zero.
func NewAggregator(fallbackVolume float64) *Aggregator {
	if fallbackVolume < 0 {
		fallbackVolume = 0
	}
	return &Aggregator{fallback: decimal.NewFromFloat(fallbackVolume)}
}

// LoadBaseline resets the accumulators and replays candles in the given
// (ascending) order, returning one point per candle.
func (a *Aggregator) LoadBaseline(candles []marketdata.Candle) []marketdata.VWAPPoint {
	points := make([]marketdata.VWAPPoint, 0, len(candles))
	cumPV := decimal.Zero
	cumV := decimal.Zero
	var lastTime int64

	for _, c := range candles {
		volume := a.fallback
		if c.Volume > 0 {
			volume = decimal.NewFromFloat(c.Volume)
		}
		typical := decimal.NewFromFloat(c.High).
			Add(decimal.NewFromFloat(c.Low)).
			Add(decimal.NewFromFloat(c.Close)).
			Div(three)
		cumPV = cumPV.Add(typical.Mul(volume))
		cumV = cumV.Add(volume)

		point := marketdata.VWAPPoint{Time: c.Time}
		if cumV.IsPositive() {
			value := cumPV.Div(cumV).InexactFloat64()
			point.Value = &value
		}
		points = append(points, point)
		lastTime = c.Time
	}

	a.mu.Lock()
	a.cumPV = cumPV
	a.cumV = cumV
	a.points = len(candles)
	a.lastTime = lastTime
	a.mu.Unlock()

	return points
}

// ExtrapolateLive previews the VWAP with one more unit-volume sample at price.
// The accumulators are left untouched.
func (a *Aggregator) ExtrapolateLive(price float64) float64 {
	a.mu.RLock()
	cumPV, cumV := a.cumPV, a.cumV
	a.mu.RUnlock()

	return cumPV.Add(decimal.NewFromFloat(price)).
		Div(cumV.Add(decimal.NewFromInt(1))).
		InexactFloat64()
}

// Totals returns the accumulators of the last baseline load.
func (a *Aggregator) Totals() Totals {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Totals{
		PriceVolume: a.cumPV.InexactFloat64(),
		Volume:      a.cumV.InexactFloat64(),
		Points:      a.points,
		LastTime:    a.lastTime,
	}
}
