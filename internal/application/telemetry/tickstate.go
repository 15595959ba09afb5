// Package telemetry holds the single latest tick pushed by the bridge.
package telemetry

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	marketdata "trading-console/internal/domain/entity/marketdata"
)

var ErrInvalidTick = errors.New("invalid tick")

// TickState is a single-slot, latest-wins cache.
type TickState struct {
	mu      sync.RWMutex
	latest  marketdata.Tick
	updated bool
}

func NewTickState() *TickState {
	return &TickState{}
}

// Validate rejects samples that cannot be displayed.
func Validate(tick marketdata.Tick) error {
	if strings.TrimSpace(tick.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidTick)
	}
	for name, v := range map[string]float64{
		"bid":    tick.Bid,
		"ask":    tick.Ask,
		"equity": tick.Equity,
		"profit": tick.Profit,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidTick, name)
		}
	}
	if tick.Bid < 0 || tick.Ask < 0 {
		return fmt.Errorf("%w: negative quote", ErrInvalidTick)
	}
	return nil
}

// Store validates the sample, stamps it with now and overwrites the slot.
func (s *TickState) Store(tick marketdata.Tick, now time.Time) (marketdata.Tick, error) {
	if err := Validate(tick); err != nil {
		return marketdata.Tick{}, err
	}
	tick.Symbol = strings.TrimSpace(tick.Symbol)
	tick.Timestamp = now.UnixMilli()

	s.mu.Lock()
	s.latest = tick
	s.updated = true
	s.mu.Unlock()
	return tick, nil
}

// Snapshot returns the latest tick, or a zeroed default stamped with now when
// nothing has arrived yet.
func (s *TickState) Snapshot(now time.Time) (marketdata.Tick, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.updated {
		return marketdata.Tick{Symbol: marketdata.DefaultSymbol, Timestamp: now.UnixMilli()}, false
	}
	tick := s.latest
	if tick.Prediction != nil {
		p := *tick.Prediction
		tick.Prediction = &p
	}
	return tick, true
}
