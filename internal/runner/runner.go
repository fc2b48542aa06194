package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrExternalCommandFailed matches every *ExitError
	ErrExternalCommandFailed = errors.New("external command failed")
	// ErrProviderNotInstalled is returned when the external binary is not on PATH
	ErrProviderNotInstalled = errors.New("external login provider is not installed")
)

// ExitError describes an external command that did not exit cleanly
type ExitError struct {
	Argv     []string
	ExitCode int // -1 when the process did not exit on its own
	TimedOut bool
	Err      error
}

func (e *ExitError) Error() string {
	cmdline := strings.Join(e.Argv, " ")
	if e.TimedOut {
		return fmt.Sprintf("command '%s' did not finish in time", cmdline)
	}
	if e.ExitCode < 0 {
		return fmt.Sprintf("command '%s' failed: %v", cmdline, e.Err)
	}
	msg := fmt.Sprintf("command '%s' failed with exit code %d", cmdline, e.ExitCode)
	var execErr *exec.ExitError
	if e.Err != nil && !errors.As(e.Err, &execErr) && e.Err.Error() != "" {
		// Captured stderr of a quiet run
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrExternalCommandFailed) hold for any ExitError
func (e *ExitError) Is(target error) bool {
	return target == ErrExternalCommandFailed
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WaitDelay bounds how long Run waits for output pipes after the command is killed
var WaitDelay = 2 * time.Second

// Options controls a single invocation
type Options struct {
	// Quiet discards stdout and captures stderr into Result.Stderr
	Quiet bool
	// Reraise converts a non-zero exit into an *ExitError
	Reraise bool
	// Timeout bounds the wait; zero waits forever
	Timeout time.Duration
	// Env holds extra KEY=VALUE entries added to the inherited environment
	Env []string
}

// Result is the outcome of a finished command
type Result struct {
	ExitCode int
	Stderr   string
}

// CommandRunner defines the interface for executing external commands
type CommandRunner interface {
	Run(ctx context.Context, argv []string, opts Options) (*Result, error)
}

// ExecRunner runs commands with os/exec, attached to the operator's terminal
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Logf receives a trace line per invocation when set
	Logf func(format string, args ...interface{})
}

// NewExecRunner creates a runner wired to the process's standard streams
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run launches argv and blocks until it terminates
func (r *ExecRunner) Run(ctx context.Context, argv []string, opts Options) (*Result, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	r.logf("running: %s (quiet=%v, timeout=%v)", strings.Join(argv, " "), opts.Quiet, opts.Timeout)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) // #nosec G204 - argv built by the provider adapter
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	// Stop waiting on output pipes a leftover child still holds after a kill
	cmd.WaitDelay = WaitDelay
	var stderr bytes.Buffer
	if opts.Quiet {
		cmd.Stderr = &stderr
		// Not attached to the terminal, so the whole process group can be killed on timeout
		killProcessGroup(cmd)
	} else {
		// Interactive: the provider may prompt the operator
		cmd.Stdin = r.Stdin
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr
	}

	err := cmd.Run()
	if errors.Is(err, exec.ErrWaitDelay) {
		// Exited cleanly; only a background child kept the pipes open
		err = nil
	}
	result := &Result{Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		return result, &ExitError{
			Argv:     argv,
			ExitCode: -1,
			TimedOut: errors.Is(ctxErr, context.DeadlineExceeded),
			Err:      ctxErr,
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		r.logf("exit code %d: %s", result.ExitCode, strings.Join(argv, " "))
		if opts.Reraise {
			return result, &ExitError{Argv: argv, ExitCode: result.ExitCode, Err: err}
		}
		return result, nil
	}

	// The process never started
	result.ExitCode = -1
	if errors.Is(err, exec.ErrNotFound) {
		return result, fmt.Errorf("%w: %s", ErrProviderNotInstalled, argv[0])
	}
	return result, &ExitError{Argv: argv, ExitCode: -1, Err: err}
}

func (r *ExecRunner) logf(format string, args ...interface{}) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

// LookPath checks that binary can be found on PATH
func LookPath(binary string) (string, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("%w: '%s' was not found on PATH", ErrProviderNotInstalled, binary)
	}
	return path, nil
}
