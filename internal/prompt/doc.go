// Package prompt provides the interactive input capability used during the
// prompt phase of a scaffold: free-text questions, yes/no confirmations and
// numbered selections. Terminal reads answers line by line from any
// io.Reader, so every interaction is scriptable in tests; Defaults answers
// every question with its default for non-interactive runs.
package prompt
