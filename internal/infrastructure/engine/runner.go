// Package engine runs the external analysis scripts (backtest, training,
// news) and decodes their stdout.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"trading-console/internal/domain/entity/marketdata"

	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout = 10 * time.Minute
	waitDelay      = time.Second
)

type Config struct {
	Command        []string
	BacktestScript string
	TrainScript    string
	NewsScript     string
	Timeout        time.Duration
}

// BacktestRequest selects the window replayed by the backtest engine.
type BacktestRequest struct {
	Symbol    string               `json:"symbol"`
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Timeframe marketdata.Timeframe `json:"timeframe"`
}

// Runner executes engines synchronously on the caller's goroutine.
type Runner struct {
	cfg    Config
	logger *logrus.Entry
}

func NewRunner(cfg Config, logger *logrus.Logger) *Runner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if len(cfg.Command) == 0 {
		cfg.Command = []string{"python3"}
	}
	return &Runner{cfg: cfg, logger: logger.WithField("component", "engine_runner")}
}

// Backtest replays history and returns the engine's JSON report.
func (r *Runner) Backtest(ctx context.Context, req BacktestRequest) (json.RawMessage, error) {
	symbol := strings.TrimSpace(req.Symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol", ErrMissingArgument)
	}
	if req.StartDate == "" || req.EndDate == "" {
		return nil, fmt.Errorf("%w: start_date and end_date", ErrMissingArgument)
	}
	tf := req.Timeframe
	if tf == "" {
		tf = marketdata.DefaultTimeframe
	}
	out, err := r.run(ctx, "backtest", r.cfg.BacktestScript, symbol, req.StartDate, req.EndDate, tf.String())
	if err != nil {
		return nil, err
	}
	return decodeJSON("backtest", out)
}

// Train runs model training and returns its raw stdout.
func (r *Runner) Train(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "train", r.cfg.TrainScript)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// News fetches the market context report.
func (r *Runner) News(ctx context.Context) (json.RawMessage, error) {
	out, err := r.run(ctx, "news", r.cfg.NewsScript, "--json")
	if err != nil {
		return nil, err
	}
	return decodeJSON("news", out)
}

func (r *Runner) run(ctx context.Context, engine, script string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	argv := append([]string{}, r.cfg.Command[1:]...)
	argv = append(argv, script)
	argv = append(argv, args...)
	cmd := exec.CommandContext(ctx, r.cfg.Command[0], argv...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log := r.logger.WithField("engine", engine)
	log.WithField("script", script).Info("starting engine")
	start := time.Now()

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.WithField("timeout", r.cfg.Timeout).Error("engine timed out")
			return nil, &EngineError{Engine: engine, Kind: KindTimeout, Err: ctx.Err(), Stderr: stderr.String()}
		}
		log.WithError(err).WithField("stderr", stderr.String()).Error("engine failed")
		return nil, &EngineError{Engine: engine, Kind: KindProcess, Err: err, Stderr: stderr.String()}
	}

	log.WithField("took_ms", time.Since(start).Milliseconds()).Info("engine finished")
	return stdout.Bytes(), nil
}

func decodeJSON(engine string, out []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, &EngineError{
			Engine: engine,
			Kind:   KindMalformed,
			Err:    errors.New("invalid JSON output from engine"),
			Raw:    string(out),
		}
	}
	return json.RawMessage(trimmed), nil
}
