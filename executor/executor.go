// Package executor runs external build tools such as mvn with output
// capture, environment overrides and optional retries.
package executor

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
)

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs a program.
type Executor interface {
	Execute(ctx context.Context, program string, args []string, opts ...Option) (*Result, error)
}

// Options configures a single execution.
type Options struct {
	// WorkingDir is the directory the command runs in.
	WorkingDir string

	// Env is appended to the current environment.
	Env map[string]string

	// Stdout and Stderr additionally receive the command output.
	Stdout io.Writer
	Stderr io.Writer

	MaxRetries int
	RetryDelay time.Duration
	RetryOn    func(*Result, error) bool
}

// Option modifies Options.
type Option func(*Options)

// WithWorkingDir sets the working directory.
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}

// WithEnvVar adds a single environment variable.
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		o.Env[key] = value
	}
}

// WithOutput tees stdout and stderr to the given writers. Either may be nil.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *Options) {
		o.Stdout = stdout
		o.Stderr = stderr
	}
}

// WithRetry retries a failed command up to maxRetries times. A nil
// condition retries every failure.
func WithRetry(maxRetries int, delay time.Duration, condition func(*Result, error) bool) Option {
	return func(o *Options) {
		o.MaxRetries = maxRetries
		o.RetryDelay = delay
		o.RetryOn = condition
	}
}

// CommandExecutor runs programs with os/exec.
type CommandExecutor struct {
	logger *slog.Logger
}

// New creates a CommandExecutor. A nil logger disables logging.
func New(logger *slog.Logger) *CommandExecutor {
	return &CommandExecutor{logger: logger}
}

// Execute runs program with args. A command that cannot start or exits
// non-zero returns CodeExecutionFailed along with the partial result.
func (c *CommandExecutor) Execute(ctx context.Context, program string, args []string, opts ...Option) (*Result, error) {
	o := &Options{RetryDelay: time.Second}
	for _, opt := range opts {
		opt(o)
	}

	var (
		result *Result
		err    error
	)
	for attempt := 0; attempt <= o.MaxRetries; attempt++ {
		if attempt > 0 {
			if c.logger != nil {
				c.logger.WarnContext(ctx, "retrying command", "program", program, "attempt", attempt+1, "error", err)
			}
			select {
			case <-ctx.Done():
				return result, errors.Wrap(ctx.Err(), errors.CodeExecutionFailed, "cancelled while waiting to retry")
			case <-time.After(o.RetryDelay):
			}
		}

		result, err = c.run(ctx, program, args, o)
		if err == nil {
			return result, nil
		}
		if o.RetryOn != nil && !o.RetryOn(result, err) {
			break
		}
	}
	return result, err
}

func (c *CommandExecutor) run(ctx context.Context, program string, args []string, o *Options) (*Result, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = o.WorkingDir
	if len(o.Env) > 0 {
		cmd.Env = append(os.Environ(), envList(o.Env)...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, o.Stdout)
	cmd.Stderr = tee(&stderr, o.Stderr)

	if c.logger != nil {
		c.logger.DebugContext(ctx, "running command", "program", program, "args", args, "dir", o.WorkingDir)
	}
	runErr := cmd.Run()

	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if runErr == nil {
		return result, nil
	}

	result.ExitCode = -1
	var exitErr *exec.ExitError
	if stderrors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}
	return result, errors.WrapWithContext(runErr, errors.CodeExecutionFailed,
		fmt.Sprintf("%s failed", program),
		map[string]interface{}{"exitCode": result.ExitCode, "stderr": lastLines(result.Stderr, 5)})
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

func envList(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
