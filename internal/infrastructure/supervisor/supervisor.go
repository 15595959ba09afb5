// Package supervisor restarts the external feed bridge on request.
package supervisor

import (
	"context"
	"sync"
	"time"

	control "trading-console/internal/domain/entity/control"
	interfaces "trading-console/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const (
	DefaultRestartTimeout = 30 * time.Second
	requestBuffer         = 1
)

// ResultFunc observes completed restarts.
type ResultFunc func(control.RestartResult)

// Supervisor consumes restart requests one at a time. The watchdog only
// emits requests; outcomes are logged and reported through ResultFunc.
type Supervisor struct {
	restarter interfaces.Restarter
	timeout   time.Duration
	requests  chan control.RestartRequest
	logger    *logrus.Entry

	restartMu sync.Mutex

	mu       sync.RWMutex
	last     *control.RestartResult
	onResult ResultFunc
}

func New(restarter interfaces.Restarter, timeout time.Duration, logger *logrus.Logger) *Supervisor {
	if timeout <= 0 {
		timeout = DefaultRestartTimeout
	}
	return &Supervisor{
		restarter: restarter,
		timeout:   timeout,
		requests:  make(chan control.RestartRequest, requestBuffer),
		logger:    logger.WithField("component", "bridge_supervisor"),
	}
}

// Requests is the channel the watchdog sends on.
func (s *Supervisor) Requests() chan<- control.RestartRequest {
	return s.requests
}

// OnResult registers an observer for finished restarts.
func (s *Supervisor) OnResult(fn ResultFunc) {
	s.mu.Lock()
	s.onResult = fn
	s.mu.Unlock()
}

// Run handles requests until ctx is done.
func (s *Supervisor) Run(ctx context.Context) error {
	s.logger.Info("bridge supervisor started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("bridge supervisor stopped")
			return nil
		case req := <-s.requests:
			s.Restart(ctx, req)
		}
	}
}

// Restart performs one restart synchronously, serialized with the request
// loop.
func (s *Supervisor) Restart(ctx context.Context, req control.RestartRequest) control.RestartResult {
	s.restartMu.Lock()
	defer s.restartMu.Unlock()

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	log := s.logger.WithField("reason", req.Reason)
	log.Info("restarting bridge")
	start := time.Now()
	output, err := s.restarter.Restart(rctx)
	result := control.RestartResult{Request: req, Err: err, Output: output}

	if err != nil {
		log.WithError(err).WithField("output", output).Error("bridge restart failed")
	} else {
		log.WithField("took_ms", time.Since(start).Milliseconds()).Info("bridge restart issued")
	}

	s.mu.Lock()
	s.last = &result
	fn := s.onResult
	s.mu.Unlock()
	if fn != nil {
		fn(result)
	}
	return result
}

// LastResult returns the most recent restart outcome.
func (s *Supervisor) LastResult() (control.RestartResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return control.RestartResult{}, false
	}
	return *s.last, true
}
