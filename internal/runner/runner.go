// Package runner spawns the external coding agent as a supervised
// subprocess: one child per task, bound to a fixed working directory,
// with a hard wall-clock deadline enforced by context cancellation.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/devrunnerd/internal/logging"
	"github.com/fyrsmithlabs/devrunnerd/internal/task"
)

// DefaultTimeout is the per-task deadline when none is configured.
const DefaultTimeout = 10 * time.Minute

// waitDelay bounds how long Wait blocks after the kill signal. Without
// it an agent that inherited the output pipes to a grandchild could
// wedge the supervisor past its deadline.
const waitDelay = 5 * time.Second

// Config describes how the agent process is launched.
type Config struct {
	// AgentPath is the agent executable (absolute path or on PATH).
	AgentPath string
	// WorkDir is the repository the agent operates in.
	WorkDir string
	// Timeout is the hard wall-clock deadline measured from spawn.
	Timeout time.Duration
}

// Outcome classifies one finished execution attempt.
type Outcome struct {
	Status       task.Status // StatusCompleted or StatusFailed
	Output       string      // decoded stdout capture
	Error        string      // decoded stderr capture or failure reason
	ResultMarker string      // repository HEAD after the run, best effort
}

// Runner executes agent processes.
type Runner struct {
	cfg Config
	log *logging.Logger
}

// New creates a runner. A zero Timeout selects DefaultTimeout.
func New(cfg Config, log *logging.Logger) *Runner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Runner{cfg: cfg, log: log}
}

// Timeout returns the configured per-task deadline.
func (r *Runner) Timeout() time.Duration {
	return r.cfg.Timeout
}

// Run executes the agent with the given prompt and classifies the
// result. It never returns an error: every failure mode (spawn error,
// non-zero exit, deadline) is folded into the Outcome. Run blocks until
// the child has exited; on deadline the child is forcibly killed before
// Run returns, so no process belonging to the task outlives it.
func (r *Runner) Run(ctx context.Context, prompt string) Outcome {
	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.cfg.AgentPath,
		"-p", prompt,
		"--dangerously-skip-permissions")
	cmd.Dir = r.cfg.WorkDir
	// Signal automated/test mode to the agent's environment.
	cmd.Env = append(os.Environ(), "TESTING=1", "CI=1")
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	// Invalid byte sequences are replaced, never fatal.
	output := strings.ToValidUTF8(stdout.String(), "�")
	errOut := strings.ToValidUTF8(stderr.String(), "�")

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		// exec.CommandContext killed the child; whatever was buffered
		// before the kill is all the output there is.
		r.log.Warn(ctx, "agent process killed at deadline",
			zap.Duration("timeout", r.cfg.Timeout),
			zap.Duration("elapsed", elapsed))
		return Outcome{
			Status: task.StatusFailed,
			Output: output,
			Error:  fmt.Sprintf("task timed out after %d seconds", int(r.cfg.Timeout.Seconds())),
		}

	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The agent ran and reported failure.
			detail := errOut
			if detail == "" {
				detail = err.Error()
			}
			r.log.Info(ctx, "agent process exited non-zero",
				zap.Int("exit_code", exitErr.ExitCode()),
				zap.Duration("elapsed", elapsed))
			return Outcome{
				Status:       task.StatusFailed,
				Output:       output,
				Error:        detail,
				ResultMarker: headCommit(r.cfg.WorkDir),
			}
		}
		// Spawn failure: executable missing, permission denied. Never
		// propagates; surfaced verbatim as the task's error.
		r.log.Error(ctx, "agent process failed to start", zap.Error(err))
		return Outcome{
			Status: task.StatusFailed,
			Error:  err.Error(),
		}

	default:
		r.log.Info(ctx, "agent process completed",
			zap.Duration("elapsed", elapsed))
		return Outcome{
			Status:       task.StatusCompleted,
			Output:       output,
			Error:        errOut,
			ResultMarker: headCommit(r.cfg.WorkDir),
		}
	}
}
