package toolchain

import (
	"context"
	"log/slog"
)

// DefaultProject is Julia's "nearest project" specifier.
const DefaultProject = "@."

// JuliaCommand builds a `julia` invocation that evaluates a script.
type JuliaCommand struct {
	cmd    *Command
	script string
}

// Julia returns a builder running script with the given julia executable.
// An empty bin falls back to "julia" on PATH.
func Julia(bin, script string) *JuliaCommand {
	if bin == "" {
		bin = "julia"
	}
	return &JuliaCommand{cmd: New(bin), script: script}
}

// Arg appends a free-form argument before the script.
func (j *JuliaCommand) Arg(arg string) *JuliaCommand {
	j.cmd.Arg(arg)
	return j
}

// Project sets --project=<project>.
func (j *JuliaCommand) Project(project string) *JuliaCommand {
	return j.Arg("--project=" + project)
}

// Compile sets --compile=<option> (yes, no, all, min).
func (j *JuliaCommand) Compile(option string) *JuliaCommand {
	return j.Arg("--compile=" + option)
}

// NoStartupFile suppresses ~/.julia/config/startup.jl.
func (j *JuliaCommand) NoStartupFile() *JuliaCommand {
	return j.Arg("--startup-file=no")
}

// Color forces colored output.
func (j *JuliaCommand) Color() *JuliaCommand {
	return j.Arg("--color=yes")
}

// InDir sets the working directory.
func (j *JuliaCommand) InDir(dir string) *JuliaCommand {
	j.cmd.InDir(dir)
	return j
}

// WithLogger attaches a debug logger.
func (j *JuliaCommand) WithLogger(logger *slog.Logger) *JuliaCommand {
	j.cmd.Logger = logger
	return j
}

// ForProject applies the flags used for every scaffold-time invocation:
// project scope, no startup file, color, and the given compile mode.
func (j *JuliaCommand) ForProject(project, compile string) *JuliaCommand {
	if project == "" {
		project = DefaultProject
	}
	if compile == "" {
		compile = "min"
	}
	return j.Project(project).NoStartupFile().Color().Compile(compile)
}

// Script returns the Julia source evaluated by the command.
func (j *JuliaCommand) Script() string { return j.script }

// Args returns the flags added so far, without the trailing -e script.
func (j *JuliaCommand) Args() []string {
	return append([]string(nil), j.cmd.Args...)
}

// String renders the command line.
func (j *JuliaCommand) String() string {
	return j.final().String()
}

// Run executes verbosely, streaming output to the terminal.
func (j *JuliaCommand) Run(ctx context.Context) error {
	return j.final().Run(ctx)
}

// Output executes quietly, capturing output.
func (j *JuliaCommand) Output(ctx context.Context) (*Output, error) {
	return j.final().Output(ctx)
}

// ReadText runs quietly and returns trimmed stdout.
func (j *JuliaCommand) ReadText(ctx context.Context) (string, error) {
	return readText(ctx, j)
}

// final returns a copy of the command with the script appended, so a
// builder can be executed more than once.
func (j *JuliaCommand) final() *Command {
	c := *j.cmd
	c.Args = append(append([]string(nil), j.cmd.Args...), "-e", j.script)
	return &c
}
