// Package template loads template declarations from registry checkouts,
// validates them against the embedded JSON schema, overlays same-named
// templates from several registries into one resolved Template, and
// produces the read-only listing and inspection reports.
package template
