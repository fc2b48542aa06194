package runner

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner() (*ExecRunner, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &ExecRunner{
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

func TestRun_Success(t *testing.T) {
	r, stdout, _ := newTestRunner()

	result, err := r.Run(context.Background(), []string{"sh", "-c", "echo hello"}, Options{Reraise: true})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello\n", stdout.String())
}

func TestRun_NonZeroExit(t *testing.T) {
	tests := []struct {
		name    string
		reraise bool
	}{
		{"reraise", true},
		{"tolerated", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestRunner()
			argv := []string{"sh", "-c", "exit 3"}

			result, err := r.Run(context.Background(), argv, Options{Reraise: tt.reraise})
			require.NotNil(t, result)
			assert.Equal(t, 3, result.ExitCode)

			if !tt.reraise {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrExternalCommandFailed))

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, argv, exitErr.Argv)
			assert.Equal(t, 3, exitErr.ExitCode)
			assert.Contains(t, err.Error(), "exit code 3")
		})
	}
}

func TestRun_QuietCapturesStderr(t *testing.T) {
	r, stdout, stderr := newTestRunner()

	result, err := r.Run(context.Background(),
		[]string{"sh", "-c", "echo out; echo 'configuration already exists' >&2; exit 1"},
		Options{Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Stderr, "already exists")

	// Nothing reaches the operator's terminal
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRun_Timeout(t *testing.T) {
	r, _, _ := newTestRunner()

	start := time.Now()
	_, err := r.Run(context.Background(), []string{"sh", "-c", "sleep 5"},
		Options{Timeout: 100 * time.Millisecond})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExternalCommandFailed))

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.True(t, exitErr.TimedOut)
	assert.Equal(t, -1, exitErr.ExitCode)
	assert.Less(t, elapsed, 4*time.Second)
}

func TestRun_QuietTimeoutKillsChildren(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("process groups are unix-only")
	}
	r, _, _ := newTestRunner()

	// The trailing echo keeps sh around as the parent of sleep, which holds the stderr pipe
	start := time.Now()
	_, err := r.Run(context.Background(), []string{"sh", "-c", "sleep 5 >&2; echo done"},
		Options{Quiet: true, Timeout: 100 * time.Millisecond})
	elapsed := time.Since(start)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.True(t, exitErr.TimedOut)
	assert.Less(t, elapsed, time.Second)
}

func TestRun_InteractiveTimeoutBoundedByWaitDelay(t *testing.T) {
	previous := WaitDelay
	WaitDelay = 200 * time.Millisecond
	t.Cleanup(func() { WaitDelay = previous })

	r, _, _ := newTestRunner()

	start := time.Now()
	_, err := r.Run(context.Background(), []string{"sh", "-c", "sleep 5; echo done"},
		Options{Timeout: 100 * time.Millisecond})
	elapsed := time.Since(start)

	assert.True(t, errors.Is(err, ErrExternalCommandFailed))
	assert.Less(t, elapsed, 2*time.Second)
}

func TestRun_Env(t *testing.T) {
	r, stdout, _ := newTestRunner()

	_, err := r.Run(context.Background(), []string{"sh", "-c", "echo $GCP_AUTH_TEST_VALUE"},
		Options{Reraise: true, Env: []string{"GCP_AUTH_TEST_VALUE=from-runner"}})
	require.NoError(t, err)
	assert.Equal(t, "from-runner\n", stdout.String())
}

func TestRun_MissingBinary(t *testing.T) {
	r, _, _ := newTestRunner()

	_, err := r.Run(context.Background(), []string{"definitely-not-a-real-binary-9f3a"}, Options{Reraise: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProviderNotInstalled))
}

func TestRun_EmptyCommand(t *testing.T) {
	r, _, _ := newTestRunner()

	_, err := r.Run(context.Background(), nil, Options{})
	assert.Error(t, err)
}

func TestRun_Logf(t *testing.T) {
	r, _, _ := newTestRunner()
	var lines []string
	r.Logf = func(format string, args ...interface{}) {
		lines = append(lines, format)
	}

	_, err := r.Run(context.Background(), []string{"sh", "-c", "true"}, Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, lines)
}

func TestLookPath(t *testing.T) {
	path, err := LookPath("sh")
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	_, err = LookPath("definitely-not-a-real-binary-9f3a")
	assert.True(t, errors.Is(err, ErrProviderNotInstalled))
}
