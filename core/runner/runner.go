// Package runner implements the Runner interface with os/exec.
// Every process runs under a deadline; on expiry it is killed and the
// caller gets core.ErrTimeout.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/gaurav-prasanna/chatdoc/core"
	"github.com/sirupsen/logrus"
)

// waitDelay bounds how long Wait blocks on output pipes after a kill.
const waitDelay = 2 * time.Second

// Exec runs external programs with a fixed timeout.
type Exec struct {
	Timeout time.Duration
}

// New creates an Exec. A non-positive timeout selects core.ProcessTimeout.
func New(timeout time.Duration) *Exec {
	if timeout <= 0 {
		timeout = core.ProcessTimeout
	}
	return &Exec{Timeout: timeout}
}

// Run starts name in dir and waits for it, capturing stdout and stderr.
// A process that exits on its own returns a nil error with ExitCode set.
func (e *Exec) Run(ctx context.Context, dir string, name string, args ...string) (*core.RunResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := &core.RunResult{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	log := logrus.WithFields(logrus.Fields{
		"cmd":      name,
		"duration": res.Duration.Round(time.Millisecond),
	})

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		log.Warn("process timed out")
		return res, fmt.Errorf("%s exceeded %s: %w", name, e.Timeout, core.ErrTimeout)
	case ctx.Err() != nil:
		return res, fmt.Errorf("running %s: %w", name, ctx.Err())
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, fmt.Errorf("running %s: %w", name, err)
	}

	log.WithField("exit_code", res.ExitCode).Debug("process finished")
	if res.Stderr != "" {
		log.WithField("stderr", res.Stderr).Debug("process stderr")
	}
	return res, nil
}
