// Package scaffold runs a template's blueprints against a project root. It
// powers the "ion new" command: every blueprint is prompted in declaration
// order, the collected context is frozen, and every blueprint is then
// rendered in the same order.
package scaffold
