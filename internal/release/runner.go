package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/TillBeemelmanns/keras-cv/internal/printer"
)

// Command describes one external build-tool invocation.
type Command struct {
	Name string
	Args []string

	// Dir is the working directory for the invocation.
	Dir string

	// Env holds extra KEY=VALUE entries appended to the inherited
	// environment.
	Env []string
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// ExitError is returned when an external command exits non-zero. Code
// carries the subprocess's exit code so the CLI can propagate it as its own
// exit status.
type ExitError struct {
	Cmd  string
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q failed with exit code %d", e.Cmd, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode extracts the subprocess exit code from err. It returns 1 when
// err is non-nil but carries no *ExitError, and 0 for a nil err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// CommandRunner abstracts external command execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner implements CommandRunner using os/exec. Commands block until
// completion with no timeout; callers wanting cancellation pass a context.
type ExecRunner struct {
	stdout io.Writer
	stderr io.Writer
}

// NewExecRunner creates an ExecRunner wired to the process stdio.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{stdout: os.Stdout, stderr: os.Stderr}
}

// NewExecRunnerWithIO creates an ExecRunner writing command output to the
// given writers. Used when output is buffered behind a spinner and replayed
// only on failure.
func NewExecRunnerWithIO(stdout, stderr io.Writer) *ExecRunner {
	return &ExecRunner{stdout: stdout, stderr: stderr}
}

// Verify ExecRunner implements CommandRunner.
var _ CommandRunner = (*ExecRunner)(nil)

// Run executes the command, streaming its output to the runner's stdio.
// A non-zero exit is returned as an *ExitError.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	fmt.Fprintln(r.stdout, printer.Faint("Running: "+cmd.String()))

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = r.stdout
	c.Stderr = r.stderr
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Cmd: cmd.String(), Code: exitErr.ExitCode(), Err: err}
		}
		return fmt.Errorf("failed to run %q: %w", cmd.String(), err)
	}
	return nil
}
