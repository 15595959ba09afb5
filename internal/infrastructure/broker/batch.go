package broker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	domain "trading-console/internal/domain/entity/marketdata"

	"github.com/sirupsen/logrus"
)

var errWriterStopped = errors.New("batch writer is not running")

// BatchConfig controls batching thresholds for candle ingestion.
type BatchConfig struct {
	Size    int
	Timeout time.Duration
}

// CandleSink persists candles for one timeframe.
type CandleSink interface {
	UpsertCandles(ctx context.Context, timeframe domain.Timeframe, candles []domain.Candle) error
}

// FlushFunc observes a committed group of candles.
type FlushFunc func(timeframe domain.Timeframe, n int)

type candleKey struct {
	timeframe domain.Timeframe
	time      int64
}

// BatchWriter buffers streamed candles and commits them per timeframe. The
// live bar is streamed repeatedly, so pending candles are keyed by
// (timeframe, time) and a later update replaces the earlier one. Size counts
// updates received, not distinct candles.
type BatchWriter struct {
	cfg     BatchConfig
	sink    CandleSink
	onFlush FlushFunc
	logger  *logrus.Entry

	mu      sync.Mutex
	ctx     context.Context
	pending map[candleKey]domain.Candle
	updates int
	timer   *time.Timer
}

// NewBatchWriter configures a batch writer. onFlush may be nil.
func NewBatchWriter(cfg BatchConfig, sink CandleSink, onFlush FlushFunc, logger *logrus.Logger) *BatchWriter {
	if cfg.Size <= 0 {
		cfg.Size = 1
	}
	return &BatchWriter{
		cfg:     cfg,
		sink:    sink,
		onFlush: onFlush,
		logger:  logger.WithField("component", "batch_writer"),
		pending: make(map[candleKey]domain.Candle),
	}
}

// Run sets the base context for asynchronous flush operations.
func (b *BatchWriter) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()
}

// Stop commits whatever is pending using the provided context.
func (b *BatchWriter) Stop(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	b.mu.Lock()
	b.ctx = ctx
	groups := b.takeLocked()
	b.mu.Unlock()
	return b.commit(ctx, groups)
}

// AddCandle buffers a candle that already carries its timeframe. Reaching
// the size threshold commits synchronously and returns the commit error.
func (b *BatchWriter) AddCandle(candle domain.Candle) error {
	if !candle.Timeframe.IsValid() {
		return fmt.Errorf("candle at %d: invalid timeframe: %q", candle.Time, candle.Timeframe)
	}

	b.mu.Lock()
	ctx := b.ctx
	if ctx == nil {
		b.mu.Unlock()
		return errWriterStopped
	}
	if err := ctx.Err(); err != nil {
		b.mu.Unlock()
		return err
	}
	b.pending[candleKey{timeframe: candle.Timeframe, time: candle.Time}] = candle
	b.updates++

	var groups map[domain.Timeframe][]domain.Candle
	if b.updates >= b.cfg.Size {
		groups = b.takeLocked()
	} else if b.timer == nil && b.cfg.Timeout > 0 {
		b.timer = time.AfterFunc(b.cfg.Timeout, b.flushOnTimer)
	}
	b.mu.Unlock()

	return b.commit(ctx, groups)
}

func (b *BatchWriter) flushOnTimer() {
	b.mu.Lock()
	ctx := b.ctx
	groups := b.takeLocked()
	b.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	if err := b.commit(ctx, groups); err != nil {
		b.logger.WithError(err).Warn("batch flush failed")
	}
}

// takeLocked empties the buffer into ascending per-timeframe groups.
func (b *BatchWriter) takeLocked() map[domain.Timeframe][]domain.Candle {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.updates = 0
	if len(b.pending) == 0 {
		return nil
	}

	groups := make(map[domain.Timeframe][]domain.Candle)
	for key, c := range b.pending {
		groups[key.timeframe] = append(groups[key.timeframe], c)
	}
	clear(b.pending)
	for _, candles := range groups {
		sort.Slice(candles, func(i, j int) bool { return candles[i].Time < candles[j].Time })
	}
	return groups
}

func (b *BatchWriter) commit(ctx context.Context, groups map[domain.Timeframe][]domain.Candle) error {
	if len(groups) == 0 {
		return nil
	}
	start := time.Now()
	var errs []error
	for tf, candles := range groups {
		if err := b.sink.UpsertCandles(ctx, tf, candles); err != nil {
			errs = append(errs, fmt.Errorf("upsert %s candles: %w", tf, err))
			continue
		}
		if b.onFlush != nil {
			b.onFlush(tf, len(candles))
		}
	}
	b.logger.WithFields(logrus.Fields{
		"timeframes": len(groups),
		"took_ms":    time.Since(start).Milliseconds(),
	}).Debug("flushed candles")
	return errors.Join(errs...)
}
