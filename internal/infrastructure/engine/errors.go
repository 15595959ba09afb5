package engine

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure.
type Kind string

const (
	KindProcess   Kind = "process"
	KindTimeout   Kind = "timeout"
	KindMalformed Kind = "malformed"
)

var ErrMissingArgument = errors.New("missing engine argument")

// EngineError carries the diagnostics the operator needs to see when an
// external engine fails. Stderr is set for process failures, Raw for
// unparseable output.
type EngineError struct {
	Engine string
	Kind   Kind
	Err    error
	Stderr string
	Raw    string
}

func (e *EngineError) Error() string {
	switch e.Kind {
	case KindMalformed:
		return fmt.Sprintf("%s engine: invalid JSON output", e.Engine)
	case KindTimeout:
		return fmt.Sprintf("%s engine: timed out", e.Engine)
	default:
		return fmt.Sprintf("%s engine: %v", e.Engine, e.Err)
	}
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
