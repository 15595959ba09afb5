package supervisor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	interfaces "trading-console/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

var (
	_ interfaces.Restarter = (*ProcessRestarter)(nil)

	ErrNoStartCommand = errors.New("bridge start command is not configured")
)

// ProcessRestarter stops the running bridge with KillCommand and launches a
// fresh one with StartCommand. A failing kill (usually "no such process") is
// logged and ignored.
type ProcessRestarter struct {
	KillCommand  []string
	StartCommand []string
	WorkDir      string

	logger *logrus.Entry
}

func NewProcessRestarter(kill, start []string, workDir string, logger *logrus.Logger) *ProcessRestarter {
	return &ProcessRestarter{
		KillCommand:  kill,
		StartCommand: start,
		WorkDir:      workDir,
		logger:       logger.WithField("component", "bridge_restarter"),
	}
}

func (p *ProcessRestarter) Restart(ctx context.Context) (string, error) {
	if len(p.StartCommand) == 0 {
		return "", ErrNoStartCommand
	}
	var out strings.Builder

	if len(p.KillCommand) > 0 {
		kill := exec.CommandContext(ctx, p.KillCommand[0], p.KillCommand[1:]...)
		kill.Dir = p.WorkDir
		output, err := kill.CombinedOutput()
		out.Write(bytes.TrimSpace(output))
		if err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				return out.String(), fmt.Errorf("run kill command: %w", err)
			}
			p.logger.WithField("exit_code", exitErr.ExitCode()).Info("kill command found no running bridge")
		}
	}
	if err := ctx.Err(); err != nil {
		return out.String(), err
	}

	start := exec.Command(p.StartCommand[0], p.StartCommand[1:]...)
	start.Dir = p.WorkDir
	if err := start.Start(); err != nil {
		return out.String(), fmt.Errorf("start bridge: %w", err)
	}
	pid := start.Process.Pid
	go func() {
		err := start.Wait()
		p.logger.WithFields(logrus.Fields{"pid": pid, "error": err}).Info("bridge process exited")
	}()

	if out.Len() > 0 {
		out.WriteString("\n")
	}
	fmt.Fprintf(&out, "bridge started pid=%d", pid)
	return out.String(), nil
}
