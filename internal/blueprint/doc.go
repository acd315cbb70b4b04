// Package blueprint defines the unit of project scaffolding: a named
// component with a prompt phase that fills a shared Context and a render
// phase that expands TemplateFiles into the project root.
//
// Variants are registered in a kind table and decoded from template
// declarations once, at template load time. The prompt phase may ask the
// user questions but never touches the disk; the render phase reads the
// frozen Context and writes files but never prompts.
package blueprint
