// Package toolchain wraps the external processes ion may start while
// finishing a scaffold: plain commands such as git, and the Julia command
// builder. Both report a non-zero exit as a single *CommandError and both
// satisfy TextCommand, which reads a command's trimmed standard output.
package toolchain
