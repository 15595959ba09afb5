// Package relay hands operator commands to the polling execution agent in
// FIFO order.
package relay

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyCommand = errors.New("command is empty")
	ErrQueueFull    = errors.New("command queue full")
)

// OverflowPolicy decides what happens when a bounded relay is full.
type OverflowPolicy string

const (
	OverflowRejectNew  OverflowPolicy = "reject-new"
	OverflowDropOldest OverflowPolicy = "drop-oldest"
)

// ParseOverflowPolicy validates a policy name.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch p := OverflowPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case OverflowRejectNew, OverflowDropOldest:
		return p, nil
	default:
		return "", fmt.Errorf("invalid overflow policy: %q", s)
	}
}

// Config bounds the relay. Capacity <= 0 means unbounded.
type Config struct {
	Capacity int
	Overflow OverflowPolicy
}

// Relay is a single-consumer FIFO of opaque command strings.
type Relay struct {
	cfg    Config
	logger *logrus.Entry

	mu    sync.Mutex
	queue []string
}

func New(cfg Config, logger *logrus.Logger) *Relay {
	if cfg.Overflow == "" {
		cfg.Overflow = OverflowRejectNew
	}
	return &Relay{
		cfg:    cfg,
		logger: logger.WithField("component", "command_relay"),
	}
}

// Enqueue appends the command at the tail and returns the queue depth.
func (r *Relay) Enqueue(command string) (int, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return r.Len(), ErrEmptyCommand
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cfg.Capacity > 0 && len(r.queue) >= r.cfg.Capacity {
		if r.cfg.Overflow != OverflowDropOldest {
			return len(r.queue), ErrQueueFull
		}
		dropped := r.queue[0]
		r.queue[0] = ""
		r.queue = r.queue[1:]
		r.logger.WithFields(logrus.Fields{
			"dropped":  dropped,
			"capacity": r.cfg.Capacity,
		}).Warn("command queue full, dropped oldest command")
	}
	r.queue = append(r.queue, command)
	r.logger.WithFields(logrus.Fields{
		"command": command,
		"depth":   len(r.queue),
	}).Info("command queued")
	return len(r.queue), nil
}

// Dequeue removes and returns the head command. ok is false when the relay
// is empty.
func (r *Relay) Dequeue() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.queue) == 0 {
		return "", false
	}
	command := r.queue[0]
	r.queue[0] = ""
	r.queue = r.queue[1:]
	if len(r.queue) == 0 {
		r.queue = nil
	}
	return command, true
}

func (r *Relay) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}
