package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ion-tools/ion/internal/branding"
	"github.com/ion-tools/ion/internal/prompt"
	"github.com/ion-tools/ion/internal/registry"
	"github.com/ion-tools/ion/internal/template"
)

var (
	listJSON       bool
	updateYes      bool
	inspectAll     bool
	inspectVerbose bool
	inspectYes     bool
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "List, inspect and update cached templates",
	Long: `Templates are read from the checkouts of the registered registries
under ~/.ion/resources. A template declared by several registries is merged:
blueprints from later registries replace same-named ones from earlier registries.`,
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplateList,
}

var templateUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update every registry checkout",
	Long: `Refresh the checkout of every registry. A failing registry keeps its
previous checkout and does not stop the others. With no registry registered
you are offered the default one.`,
	Args: cobra.NoArgs,
	RunE: runTemplateUpdate,
}

var templateInspectCmd = &cobra.Command{
	Use:   "inspect [name]",
	Short: "Show a template's blueprints",
	Long: `Show a template's metadata and blueprints. --verbose adds each blueprint's
resolved configuration, its output files and the registry declaring it.
Without a name you are asked to pick one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTemplateInspect,
}

func init() {
	templateListCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	templateUpdateCmd.Flags().BoolVarP(&updateYes, "yes", "y", false, "Download the default registry without asking")
	templateInspectCmd.Flags().BoolVar(&inspectAll, "all", false, "Inspect every cached template")
	templateInspectCmd.Flags().BoolVarP(&inspectVerbose, "verbose", "v", false, "Include blueprint configuration")
	templateInspectCmd.Flags().BoolVarP(&inspectYes, "yes", "y", false, "Download templates without asking")

	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateUpdateCmd)
	templateCmd.AddCommand(templateInspectCmd)
	rootCmd.AddCommand(templateCmd)
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	idx, err := m.Index()
	if err != nil {
		return fmt.Errorf("reading template index: %w", err)
	}
	if len(idx.Entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No templates cached. Run '%s template update' to download them.\n", branding.CLIName())
		return nil
	}
	if listJSON {
		return printListJSON(cmd, idx.Entries)
	}
	return printListTable(cmd, idx.Entries)
}

func printListTable(cmd *cobra.Command, entries []registry.IndexEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tREGISTRY\tVERSION\tDESCRIPTION")
	for _, e := range entries {
		version := e.Version
		if version == "" {
			version = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.Registry, version, e.Description)
	}
	return w.Flush()
}

func printListJSON(cmd *cobra.Command, entries []registry.IndexEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func runTemplateUpdate(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	regs, err := m.Registries()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(regs) == 0 {
		_, d, err := newRemote(m, newPrompter(cmd, updateYes)).EnsureDownloaded(cmd.Context())
		if err != nil {
			return err
		}
		if d == prompt.Decline {
			printDeclined(out)
		}
		return nil
	}
	err = m.Update(cmd.Context(), "")
	printUpdateSummary(cmd, m, "", err)
	return err
}

func runTemplateInspect(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	p := newPrompter(cmd, inspectYes)
	c, d, err := newRemote(m, p).EnsureDownloaded(cmd.Context())
	if err != nil {
		return err
	}
	if d == prompt.Decline {
		printDeclined(cmd.OutOrStdout())
		return nil
	}

	var report string
	switch {
	case inspectAll:
		report, err = template.InspectAll(c, inspectVerbose)
	default:
		var t *template.Template
		t, err = pickTemplate(m, c, p, args)
		if err != nil {
			return err
		}
		report, err = template.Inspect(t, inspectVerbose)
	}
	if err != nil {
		return err
	}
	return printMarkdown(cmd, report)
}

// pickTemplate returns the named template or asks the user to choose one
// from the index.
func pickTemplate(m *registry.Manager, c *template.Catalog, p prompt.Prompter, args []string) (*template.Template, error) {
	if len(args) == 1 {
		return c.Get(args[0])
	}
	names := c.Names()
	if idx, err := m.Index(); err == nil && len(idx.Entries) > 0 {
		names = names[:0]
		for _, e := range idx.Entries {
			names = append(names, e.Name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no templates available")
	}
	i, err := p.Select("Template to inspect", names, 0)
	if err != nil {
		return nil, fmt.Errorf("selecting template: %w", err)
	}
	return c.Get(names[i])
}

// printMarkdown renders md with glamour on a terminal and prints it as is
// otherwise.
func printMarkdown(cmd *cobra.Command, md string) error {
	out := cmd.OutOrStdout()
	if width, ok := terminalWidth(out); ok {
		rendered, err := template.RenderMarkdown(md, width)
		if err != nil {
			logger.Debug("markdown rendering failed", "error", err)
		} else {
			md = rendered
		}
	}
	_, err := fmt.Fprint(out, md)
	return err
}
