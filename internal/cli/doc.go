// Package cli defines the Cobra command tree for the ion CLI. Each file in
// this package registers one top-level command (new, template, config,
// version) with the root command. Command implementations delegate to
// internal packages for the work and only handle flag parsing, output
// formatting, and user interaction.
package cli
