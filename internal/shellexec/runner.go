package shellexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/toolerr"
)

const (
	DefaultTimeout = 30 * time.Second
	MinTimeout     = 1 * time.Second
	MaxTimeout     = 60 * time.Second

	MaxStdout = 4000
	MaxStderr = 2000
)

// Result is the outcome of a completed command. A non-zero exit status is
// data, not an error.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Command   []string
	Truncated bool
}

// Runner spawns validated commands directly (argv vector, no shell) inside
// a fixed working directory.
type Runner struct {
	Dir string
}

// ClampTimeout bounds a timeout to [MinTimeout, MaxTimeout].
func ClampTimeout(d time.Duration) time.Duration {
	if d < MinTimeout {
		return MinTimeout
	}
	if d > MaxTimeout {
		return MaxTimeout
	}
	return d
}

// Run executes tokens with the given timeout. Callers must have passed the
// tokens through Validate first; Run itself applies no policy.
func (r *Runner) Run(ctx context.Context, tokens []string, timeout time.Duration) (Result, error) {
	timeout = ClampTimeout(timeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, tokens[0], tokens[1:]...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return Result{}, toolerr.Newf(toolerr.KindRuntime,
			"Command timed out after %ds", int(timeout.Seconds()))
	}

	res := Result{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Command: tokens,
	}
	if len(res.Stdout) > MaxStdout {
		res.Stdout = res.Stdout[:MaxStdout]
		res.Truncated = true
	}
	if len(res.Stderr) > MaxStderr {
		res.Stderr = res.Stderr[:MaxStderr]
		res.Truncated = true
	}

	if err != nil {
		base := filepath.Base(tokens[0])
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
			return Result{}, toolerr.Newf(toolerr.KindNotFound, "Command not found: %s", base)
		case errors.Is(err, os.ErrPermission):
			return Result{}, toolerr.Newf(toolerr.KindSecurity, "Permission denied for command: %s", base)
		default:
			return Result{}, toolerr.Wrap(toolerr.KindRuntime, err, fmt.Sprintf("Command failed: %s", base))
		}
	}
	return res, nil
}
