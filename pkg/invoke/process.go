// Package invoke runs external model collaborators (local commands and HTTP
// model servers) and normalizes their failures into ErrProcessFailed.
package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	waitDelay     = 2 * time.Second
	maxDiagnostic = 512
)

// Process runs a configured command once per invocation and returns its stdout.
type Process struct {
	command string
	args    []string
	dir     string
	timeout time.Duration
}

// NewProcess creates a Process from a finalized ProcessConfig.
func NewProcess(cfg *ProcessConfig) *Process {
	return &Process{
		command: cfg.Command,
		args:    cfg.Args,
		dir:     cfg.Dir,
		timeout: cfg.TimeoutDuration(),
	}
}

// Run expands {key} placeholders in the configured args with vars, executes the
// command and returns its trimmed stdout. The process is killed when ctx is done
// or the configured timeout elapses. Non-zero exits, empty output, timeouts and
// cancellation all wrap ErrProcessFailed.
func (p *Process) Run(ctx context.Context, vars map[string]string) ([]byte, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, p.command, Expand(p.args, vars)...)
	cmd.Dir = p.dir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: %s timed out after %v", ErrProcessFailed, p.command, p.timeout)
	case ctx.Err() != nil:
		return nil, fmt.Errorf("%w: %s: %w", ErrProcessFailed, p.command, ctx.Err())
	case err != nil:
		return nil, fmt.Errorf(
			"%w: %s: %w%s",
			ErrProcessFailed, p.command, err,
			diagnostic(stderr.Bytes(), stdout.Bytes()),
		)
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s produced no output", ErrProcessFailed, p.command)
	}

	return out, nil
}

// Expand replaces {key} placeholders in each arg with the matching value from vars.
func Expand(args []string, vars map[string]string) []string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)

	expanded := make([]string, len(args))
	for i, arg := range args {
		expanded[i] = r.Replace(arg)
	}
	return expanded
}

func diagnostic(streams ...[]byte) string {
	for _, s := range streams {
		s = bytes.TrimSpace(s)
		if len(s) == 0 {
			continue
		}
		if len(s) > maxDiagnostic {
			s = s[len(s)-maxDiagnostic:]
		}
		return ": " + string(s)
	}
	return ""
}
