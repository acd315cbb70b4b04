// Package userdata resolves the ~/.ion/ directory layout: the resources root
// holding one checkout per registry, the registries file, and the template
// index cache. Every path can be redirected through ION_* environment
// variables, which the integration tests rely on for sandboxing.
package userdata
