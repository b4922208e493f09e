package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/ctxarchive/ctxarchive/internal/config"
	"github.com/ctxarchive/ctxarchive/internal/extract"
	"github.com/ctxarchive/ctxarchive/internal/shared/stringutils"
)

// pipeWaitDelay bounds how long Run waits for output pipes after the process
// is killed. Grandchildren that inherited stderr would otherwise hold Run open.
const pipeWaitDelay = time.Second

const maxStderrLen = 200

// Runner executes an external command and reports whether it succeeded.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands as subprocesses.
type ExecRunner struct{}

// Run executes name with args. A non-zero exit status is an error carrying
// the exit code and the start of stderr.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = pipeWaitDelay

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := strings.TrimSpace(stderr.String())
		if stringutils.RuneLen(msg) > maxStderrLen {
			msg = stringutils.Head(msg, maxStderrLen) + "..."
		}
		if msg == "" {
			return fmt.Errorf("%s exited with code %d", name, exitErr.ExitCode())
		}
		return fmt.Errorf("%s exited with code %d: %s", name, exitErr.ExitCode(), msg)
	}
	return fmt.Errorf("run %s: %w", name, err)
}

// Bridge saves extracted content to the external memory service.
// One attempt per call, bounded by the configured timeout.
type Bridge struct {
	command string
	args    []string
	timeout time.Duration
	runner  Runner
}

// NewBridge creates a Bridge. A nil runner uses ExecRunner.
func NewBridge(cfg config.MemoryConfig, runner Runner) *Bridge {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Bridge{
		command: cfg.Command,
		args:    append([]string(nil), cfg.Args...),
		timeout: cfg.Timeout,
		runner:  runner,
	}
}

// Save builds the session entity for res and sends it to the memory command.
// Callers should treat any error as informational.
func (b *Bridge) Save(ctx context.Context, res extract.Result, project string) error {
	entity := BuildEntity(res, project)
	payload, err := Encode(entity)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	args := append(append([]string(nil), b.args...), payload)
	start := time.Now()
	err = b.runner.Run(ctx, b.command, args...)
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%s timed out after %v", b.command, b.timeout)
	}
	if err != nil {
		slog.Info("memory save failed", "entity", entity.Name, "err", err)
		return err
	}

	slog.Debug("memory save done", "entity", entity.Name,
		"observations", len(entity.Observations), "elapsed", time.Since(start))
	return nil
}
