package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Output captures the result of a quiet command execution.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandError reports a command that could not be started or exited non-zero.
type CommandError struct {
	Command  string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("command %q failed with exit code %d", e.Command, e.ExitCode)
}

func (e *CommandError) Unwrap() error { return e.Err }

// TextCommand is a command whose standard output can be read as text.
type TextCommand interface {
	// ReadText runs the command quietly and returns its trimmed stdout.
	ReadText(ctx context.Context) (string, error)
}

// Command is a plain external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string

	// Stdout and Stderr receive streamed output in Run; default os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	Logger *slog.Logger
}

// New creates a Command for the named program.
func New(name string, args ...string) *Command {
	return &Command{Name: name, Args: args}
}

// Arg appends a free-form argument.
func (c *Command) Arg(arg string) *Command {
	c.Args = append(c.Args, arg)
	return c
}

// InDir sets the working directory.
func (c *Command) InDir(dir string) *Command {
	c.Dir = dir
	return c
}

// String renders the command line for logs and error messages.
func (c *Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Run executes the command, streaming its output to the terminal.
func (c *Command) Run(ctx context.Context) error {
	cmd := c.build(ctx)
	cmd.Stdout = writerOr(c.Stdout, os.Stdout)
	cmd.Stderr = writerOr(c.Stderr, os.Stderr)
	c.debug("running command")
	return c.wrap(cmd.Run())
}

// Output executes the command quietly, capturing stdout and stderr.
// A non-zero exit is reported as *CommandError alongside the captured output.
func (c *Command) Output(ctx context.Context) (*Output, error) {
	cmd := c.build(ctx)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	c.debug("running command quietly")

	err := cmd.Run()
	out := &Output{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
	}
	return out, c.wrap(err)
}

// ReadText runs the command quietly and returns its trimmed stdout.
func (c *Command) ReadText(ctx context.Context) (string, error) {
	return readText(ctx, c)
}

func (c *Command) build(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

func (c *Command) wrap(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandError{Command: c.String(), ExitCode: exitErr.ExitCode()}
	}
	return &CommandError{Command: c.String(), ExitCode: -1, Err: err}
}

func (c *Command) debug(msg string) {
	if c.Logger != nil {
		c.Logger.Debug(msg, "command", c.String(), "dir", c.Dir)
	}
}

// outputter is the quiet execution shared by every TextCommand implementation.
type outputter interface {
	Output(ctx context.Context) (*Output, error)
}

func readText(ctx context.Context, c outputter) (string, error) {
	out, err := c.Output(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Stdout), nil
}

func writerOr(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
