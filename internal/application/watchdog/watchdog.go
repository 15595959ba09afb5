// Package watchdog classifies feed health from tick staleness and asks the
// bridge supervisor for a restart when the feed stalls.
package watchdog

import (
	"sync"
	"time"

	control "trading-console/internal/domain/entity/control"

	"github.com/sirupsen/logrus"
)

const (
	DefaultStallThreshold = 15 * time.Second
	DefaultInterval       = time.Second
)

// Config tunes the watchdog.
type Config struct {
	StallThreshold time.Duration
	Armed          bool
}

// TransitionFunc observes status changes. It is called with the state lock
// released, one transition at a time and in the order they happened. It must
// not call back into the watchdog.
type TransitionFunc func(from, to control.Status)

// Watchdog owns the health state machine. Status starts OFFLINE and only
// becomes ONLINE through MarkIngested.
type Watchdog struct {
	threshold time.Duration
	requests  chan<- control.RestartRequest
	logger    *logrus.Entry

	mu       sync.Mutex
	status   control.Status
	lastTick int64
	armed    bool

	// notifyMu is taken before mu is released so observers see transitions
	// in state order.
	notifyMu     sync.Mutex
	onTransition TransitionFunc
}

// New builds a watchdog that emits restart requests on requests. Sends never
// block: a request is dropped if the supervisor is not ready for it.
func New(cfg Config, requests chan<- control.RestartRequest, logger *logrus.Logger) *Watchdog {
	threshold := cfg.StallThreshold
	if threshold <= 0 {
		threshold = DefaultStallThreshold
	}
	return &Watchdog{
		threshold: threshold,
		requests:  requests,
		logger:    logger.WithField("component", "watchdog"),
		status:    control.StatusOffline,
		armed:     cfg.Armed,
	}
}

// OnTransition registers an observer for status changes.
func (w *Watchdog) OnTransition(fn TransitionFunc) {
	w.mu.Lock()
	w.onTransition = fn
	w.mu.Unlock()
}

// MarkIngested records a successful tick ingestion.
func (w *Watchdog) MarkIngested(now time.Time) {
	w.mu.Lock()
	from := w.status
	w.lastTick = now.UnixMilli()
	w.status = control.StatusOnline
	if from == control.StatusOnline {
		w.mu.Unlock()
		return
	}
	w.transitionLocked(from, control.StatusOnline)
	w.logger.WithField("from", from).Info("feed online")
}

// MarkFailed drives the watchdog OFFLINE after repeated transport failures.
func (w *Watchdog) MarkFailed() {
	w.mu.Lock()
	from := w.status
	w.status = control.StatusOffline
	if from == control.StatusOffline {
		w.mu.Unlock()
		return
	}
	w.transitionLocked(from, control.StatusOffline)
	w.logger.WithField("from", from).Warn("feed offline after transport failures")
}

// SetArmed toggles staleness detection.
func (w *Watchdog) SetArmed(armed bool) {
	w.mu.Lock()
	w.armed = armed
	w.mu.Unlock()
	w.logger.WithField("armed", armed).Info("watchdog arm state changed")
}

// Evaluate runs one periodic check. It only acts while armed and ONLINE, so
// a stall fires a single restart request per ONLINE->RECONNECTING edge.
func (w *Watchdog) Evaluate(now time.Time) (control.Status, bool) {
	w.mu.Lock()
	if !w.armed || w.status != control.StatusOnline {
		status := w.status
		w.mu.Unlock()
		return status, false
	}
	staleness := now.UnixMilli() - w.lastTick
	if staleness <= w.threshold.Milliseconds() {
		w.mu.Unlock()
		return control.StatusOnline, false
	}
	w.status = control.StatusReconnecting

	// queued under the lock so no ingest lands between transition and request
	req := control.RestartRequest{Reason: "stale feed", RequestedAt: now.UnixMilli()}
	sent := true
	select {
	case w.requests <- req:
	default:
		sent = false
	}
	w.transitionLocked(control.StatusOnline, control.StatusReconnecting)

	log := w.logger.WithField("staleness_ms", staleness)
	log.Warn("feed stalled, requesting bridge restart")
	if !sent {
		log.Warn("bridge supervisor busy, restart request dropped")
	}
	return control.StatusReconnecting, true
}

// State returns a snapshot.
func (w *Watchdog) State() control.WatchdogState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return control.WatchdogState{
		Status:            w.status,
		LastTickTimestamp: w.lastTick,
		Armed:             w.armed,
	}
}

// transitionLocked hands the lock over to the observer. It is called with mu
// held and returns with it released.
func (w *Watchdog) transitionLocked(from, to control.Status) {
	fn := w.onTransition
	w.notifyMu.Lock()
	w.mu.Unlock()
	defer w.notifyMu.Unlock()
	if fn != nil {
		fn(from, to)
	}
}
