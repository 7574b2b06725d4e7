package ping

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"streaming-ping/internal/config"
	"streaming-ping/internal/logger"
	"streaming-ping/internal/models"
)

// Executor runs an external command and returns its standard output.
// A non-nil *exec.ExitError means the command ran and exited non-zero.
type Executor interface {
	Run(ctx context.Context, path string, args, env []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, path string, args, env []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = env
	return cmd.Output()
}

// Runner implements models.Prober by shelling out to the system ping
type Runner struct {
	path     string
	cfg      config.ProbeConfig
	executor Executor
	logger   logger.Logger
}

// LookPath resolves the ping executable once at startup
func LookPath() (string, error) {
	path, err := exec.LookPath("ping")
	if err != nil {
		return "", fmt.Errorf("'ping' executable not found in PATH: %w", err)
	}
	return path, nil
}

// New creates a Runner for the ping binary at path
func New(path string, cfg config.ProbeConfig, log logger.Logger) *Runner {
	return NewWithExecutor(path, cfg, commandExecutor{}, log)
}

// NewWithExecutor creates a Runner that runs ping through executor
func NewWithExecutor(path string, cfg config.ProbeConfig, executor Executor, log logger.Logger) *Runner {
	return &Runner{
		path:     path,
		cfg:      cfg,
		executor: executor,
		logger:   log.WithComponent("ping"),
	}
}

// Args returns the ping command line for target, without the executable
func (r *Runner) Args(target models.ProbeTarget) []string {
	return []string{
		"-c", strconv.Itoa(r.cfg.Count),
		"-i", formatSeconds(r.cfg.Interval),
		"-W", formatSeconds(r.cfg.Wait),
		string(target),
	}
}

// Probe pings target and parses the summary. A run that exceeds the deadline
// still yields the failure baseline; only a ping that could not be started
// is reported as unavailable.
func (r *Runner) Probe(ctx context.Context, target models.ProbeTarget) models.Outcome {
	// An in-flight probe is bounded by its own deadline, not by shutdown.
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.Deadline)
	defer cancel()

	base := models.FailedResult(target, r.cfg.Count)

	output, err := r.executor.Run(runCtx, r.path, r.Args(target), []string{"LC_ALL=C"})

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		r.logger.Warn().Str("host", string(target)).Dur("deadline", r.cfg.Deadline).Msg("Ping timed out")
		return models.Completed(base)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			r.logger.Error().Err(err).Str("host", string(target)).Msg("Error pinging host")
			return models.Unavailable(target, err)
		}
		// ping exits non-zero on loss or resolution failure; the output
		// still describes what happened.
		r.logger.Debug().Str("host", string(target)).Int("exit_code", exitErr.ExitCode()).Msg("Ping exited non-zero")
	}

	return models.Completed(Parse(string(output), base))
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
