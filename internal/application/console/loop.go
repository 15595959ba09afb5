// Package console glues telemetry ingestion, the VWAP baseline, the command
// relay and the watchdog into one control loop.
package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"trading-console/internal/application/relay"
	"trading-console/internal/application/telemetry"
	"trading-console/internal/application/vwap"
	"trading-console/internal/application/watchdog"
	control "trading-console/internal/domain/entity/control"
	"trading-console/internal/domain/entity/marketdata"

	"github.com/sirupsen/logrus"
)

const (
	DefaultFailureLimit   = 3
	DefaultReloadInterval = 5 * time.Second
	DefaultNewsInterval   = time.Hour
)

var ErrNewsUnavailable = errors.New("news source is not configured")

type Config struct {
	WatchdogInterval time.Duration
	ReloadInterval   time.Duration
	NewsInterval     time.Duration
	FailureLimit     int
	FallbackVolume   float64
}

// HistorySource reads the ascending candle series for a timeframe.
type HistorySource interface {
	GetHistory(ctx context.Context, timeframe marketdata.Timeframe) ([]marketdata.Candle, error)
}

// NewsSource produces the market context report.
type NewsSource interface {
	News(ctx context.Context) (json.RawMessage, error)
}

// Recorder receives loop events for metrics.
type Recorder interface {
	TickIngested(symbol string)
	TransportFailure()
	CommandDepth(depth int)
}

// NewsSnapshot is the last successful news refresh.
type NewsSnapshot struct {
	Data      json.RawMessage `json:"news"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Loop owns the live console state. Request handlers call its methods
// directly; Run drives the periodic work.
type Loop struct {
	cfg      Config
	ticks    *telemetry.TickState
	relay    *relay.Relay
	watchdog *watchdog.Watchdog
	history  HistorySource
	news     NewsSource
	recorder Recorder
	logger   *logrus.Entry
	now      func() time.Time

	reloadCh    chan struct{}
	refreshing  atomic.Bool
	failures    atomic.Int32
	newsMu      sync.RWMutex
	lastNews    *NewsSnapshot
	selectionMu sync.RWMutex
	selected    marketdata.Timeframe
	dirty       bool
	baseline    *baseline
}

type baseline struct {
	timeframe  marketdata.Timeframe
	aggregator *vwap.Aggregator
	series     []marketdata.VWAPPoint
}

type Option func(*Loop)

func WithNewsSource(src NewsSource) Option {
	return func(l *Loop) { l.news = src }
}

func WithRecorder(r Recorder) Option {
	return func(l *Loop) { l.recorder = r }
}

func withClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

func NewLoop(cfg Config, ticks *telemetry.TickState, commands *relay.Relay, wd *watchdog.Watchdog, history HistorySource, logger *logrus.Logger, opts ...Option) *Loop {
	if cfg.WatchdogInterval <= 0 {
		cfg.WatchdogInterval = watchdog.DefaultInterval
	}
	if cfg.ReloadInterval <= 0 {
		cfg.ReloadInterval = DefaultReloadInterval
	}
	if cfg.NewsInterval <= 0 {
		cfg.NewsInterval = DefaultNewsInterval
	}
	if cfg.FailureLimit <= 0 {
		cfg.FailureLimit = DefaultFailureLimit
	}
	if cfg.FallbackVolume <= 0 {
		cfg.FallbackVolume = vwap.DefaultFallbackVolume
	}
	l := &Loop{
		cfg:      cfg,
		ticks:    ticks,
		relay:    commands,
		watchdog: wd,
		history:  history,
		recorder: nopRecorder{},
		logger:   logger.WithField("component", "console_loop"),
		now:      time.Now,
		reloadCh: make(chan struct{}, 1),
		selected: marketdata.DefaultTimeframe,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run blocks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	wdTicker := time.NewTicker(l.cfg.WatchdogInterval)
	defer wdTicker.Stop()
	reloadTicker := time.NewTicker(l.cfg.ReloadInterval)
	defer reloadTicker.Stop()
	newsTicker := time.NewTicker(l.cfg.NewsInterval)
	defer newsTicker.Stop()

	l.logger.WithField("timeframe", l.SelectedTimeframe()).Info("console loop started")
	l.reloadIfNeeded(ctx)
	l.refreshNewsAsync(ctx)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("console loop stopped")
			return nil
		case now := <-wdTicker.C:
			l.watchdog.Evaluate(now)
		case <-l.reloadCh:
			l.reloadIfNeeded(ctx)
		case <-reloadTicker.C:
			l.reloadIfNeeded(ctx)
		case <-newsTicker.C:
			l.refreshNewsAsync(ctx)
		}
	}
}

// IngestTick stores a live sample and marks the feed as alive.
func (l *Loop) IngestTick(tick marketdata.Tick) (marketdata.Tick, error) {
	now := l.now()
	stored, err := l.ticks.Store(tick, now)
	if err != nil {
		return marketdata.Tick{}, err
	}
	l.failures.Store(0)
	l.watchdog.MarkIngested(now)
	l.recorder.TickIngested(stored.Symbol)
	return stored, nil
}

// ReportTransportFailure counts consecutive transport failures and drives
// the watchdog OFFLINE when the limit is reached. It reports whether that
// happened on this call.
func (l *Loop) ReportTransportFailure(err error) bool {
	n := int(l.failures.Add(1))
	l.recorder.TransportFailure()
	l.logger.WithError(err).WithField("consecutive", n).Warn("telemetry transport failure")
	if n != l.cfg.FailureLimit {
		return false
	}
	l.watchdog.MarkFailed()
	return true
}

// LatestTick returns the live snapshot or the zeroed default.
func (l *Loop) LatestTick() (marketdata.Tick, bool) {
	return l.ticks.Snapshot(l.now())
}

// Baseline reports the timeframe and accumulators the live preview
// extrapolates from.
func (l *Loop) Baseline() (marketdata.Timeframe, vwap.Totals, bool) {
	l.selectionMu.RLock()
	b := l.baseline
	l.selectionMu.RUnlock()
	if b == nil {
		return "", vwap.Totals{}, false
	}
	return b.timeframe, b.aggregator.Totals(), true
}

// LiveVWAP previews VWAP at the current bid against the loaded baseline.
func (l *Loop) LiveVWAP() (float64, bool) {
	tick, ok := l.ticks.Snapshot(l.now())
	if !ok {
		return 0, false
	}
	l.selectionMu.RLock()
	b := l.baseline
	l.selectionMu.RUnlock()
	if b == nil {
		return 0, false
	}
	return b.aggregator.ExtrapolateLive(tick.Bid), true
}

func (l *Loop) EnqueueCommand(command string) (int, error) {
	depth, err := l.relay.Enqueue(command)
	l.recorder.CommandDepth(depth)
	return depth, err
}

func (l *Loop) DequeueCommand() (string, bool) {
	command, ok := l.relay.Dequeue()
	if ok {
		l.recorder.CommandDepth(l.relay.Len())
	}
	return command, ok
}

func (l *Loop) WatchdogState() control.WatchdogState {
	return l.watchdog.State()
}

func (l *Loop) ArmWatchdog(armed bool) control.WatchdogState {
	l.watchdog.SetArmed(armed)
	return l.watchdog.State()
}

func (l *Loop) SelectedTimeframe() marketdata.Timeframe {
	l.selectionMu.RLock()
	defer l.selectionMu.RUnlock()
	return l.selected
}

// SelectTimeframe switches the live baseline; the loop reloads it.
func (l *Loop) SelectTimeframe(tf marketdata.Timeframe) {
	l.selectionMu.Lock()
	changed := l.selected != tf
	l.selected = tf
	l.selectionMu.Unlock()
	if changed {
		l.logger.WithField("timeframe", tf).Info("timeframe selected")
		l.signalReload()
	}
}

// HistoryChanged marks the baseline stale after candles for tf were written.
func (l *Loop) HistoryChanged(tf marketdata.Timeframe) {
	l.selectionMu.Lock()
	stale := l.selected == tf
	if stale {
		l.dirty = true
	}
	l.selectionMu.Unlock()
	if stale {
		l.signalReload()
	}
}

// VWAP returns the baseline series for tf and makes tf the live timeframe.
// When the loaded baseline is for another timeframe or stale, the series is
// computed from history on the caller's goroutine.
func (l *Loop) VWAP(ctx context.Context, tf marketdata.Timeframe) ([]marketdata.VWAPPoint, error) {
	l.SelectTimeframe(tf)

	l.selectionMu.RLock()
	b, dirty := l.baseline, l.dirty
	l.selectionMu.RUnlock()
	if b != nil && b.timeframe == tf && !dirty {
		return clonePoints(b.series), nil
	}

	fresh, err := l.buildBaseline(ctx, tf)
	if err != nil {
		return []marketdata.VWAPPoint{}, err
	}
	return clonePoints(fresh.series), nil
}

// News serves the cached report while it is younger than the refresh
// interval and refetches otherwise.
func (l *Loop) News(ctx context.Context) (NewsSnapshot, error) {
	l.newsMu.RLock()
	cached := l.lastNews
	l.newsMu.RUnlock()
	if cached != nil && l.now().Sub(cached.FetchedAt) < l.cfg.NewsInterval {
		return *cached, nil
	}
	return l.refreshNews(ctx)
}

func (l *Loop) signalReload() {
	select {
	case l.reloadCh <- struct{}{}:
	default:
	}
}

func (l *Loop) reloadIfNeeded(ctx context.Context) {
	l.selectionMu.RLock()
	tf, dirty, b := l.selected, l.dirty, l.baseline
	l.selectionMu.RUnlock()
	if b != nil && b.timeframe == tf && !dirty {
		return
	}
	if err := l.reload(ctx, tf); err != nil {
		l.logger.WithError(err).WithField("timeframe", tf).Warn("history reload failed")
	}
}

// reload replaces the baseline atomically once it is fully replayed.
func (l *Loop) reload(ctx context.Context, tf marketdata.Timeframe) error {
	fresh, err := l.buildBaseline(ctx, tf)
	if err != nil {
		return err
	}

	l.selectionMu.Lock()
	defer l.selectionMu.Unlock()
	if l.selected != tf {
		// selection moved on while loading; the next signal reloads again
		return nil
	}
	l.baseline = fresh
	l.dirty = false
	l.logger.WithFields(logrus.Fields{
		"timeframe": tf,
		"candles":   len(fresh.series),
	}).Debug("vwap baseline reloaded")
	return nil
}

func (l *Loop) buildBaseline(ctx context.Context, tf marketdata.Timeframe) (*baseline, error) {
	candles, err := l.history.GetHistory(ctx, tf)
	if err != nil {
		return nil, fmt.Errorf("load %s history: %w", tf, err)
	}
	agg := vwap.NewAggregator(l.cfg.FallbackVolume)
	return &baseline{timeframe: tf, aggregator: agg, series: agg.LoadBaseline(candles)}, nil
}

func (l *Loop) refreshNewsAsync(ctx context.Context) {
	if l.news == nil || !l.refreshing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer l.refreshing.Store(false)
		if _, err := l.refreshNews(ctx); err != nil && ctx.Err() == nil {
			l.logger.WithError(err).Warn("news refresh failed")
		}
	}()
}

func (l *Loop) refreshNews(ctx context.Context) (NewsSnapshot, error) {
	if l.news == nil {
		return NewsSnapshot{}, ErrNewsUnavailable
	}
	data, err := l.news.News(ctx)
	if err != nil {
		return NewsSnapshot{}, err
	}
	snap := NewsSnapshot{Data: data, FetchedAt: l.now()}
	l.newsMu.Lock()
	l.lastNews = &snap
	l.newsMu.Unlock()
	return snap, nil
}

func clonePoints(points []marketdata.VWAPPoint) []marketdata.VWAPPoint {
	out := make([]marketdata.VWAPPoint, len(points))
	copy(out, points)
	return out
}

type nopRecorder struct{}

func (nopRecorder) TickIngested(string) {}
func (nopRecorder) TransportFailure()   {}
func (nopRecorder) CommandDepth(int)    {}
