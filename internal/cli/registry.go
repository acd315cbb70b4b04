package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ion-tools/ion/internal/registry"
)

var registryAddName string

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Manage template registries",
	Long: `A registry is a git repository, local directory, http(s) tarball or s3://
prefix holding templates under templates/<name>/. Registries are kept in
~/.ion/registries.yaml; later registries take priority over earlier ones.`,
}

var registryAddCmd = &cobra.Command{
	Use:   "add <locator>",
	Short: "Register and download a registry",
	Long: `Register a registry and download its checkout.

Examples:
  ion template registry add https://github.com/ion-tools/templates.git
  ion template registry add ./my-templates --name company
  ion template registry add https://example.com/templates.tar.gz
  ion template registry add s3://bucket/templates`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager()
		if err != nil {
			return err
		}
		reg, err := m.Add(cmd.Context(), args[0], registryAddName)
		if err != nil {
			return err
		}
		st := stylesFor(cmd.OutOrStdout())
		fmt.Fprintf(cmd.OutOrStdout(), "%s registry %s (%s) from %s\n", st.ok.Render("Added"), st.bold.Render(reg.Name), reg.Kind, reg.Locator)
		return nil
	},
}

var registryRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Unregister a registry and delete its checkout",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager()
		if err != nil {
			return err
		}
		if err := m.Remove(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed registry %s\n", args[0])
		return nil
	},
}

var registryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show registries and their checkouts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager()
		if err != nil {
			return err
		}
		statuses, err := m.Status()
		if err != nil {
			return err
		}
		if len(statuses) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No registries registered.")
			return nil
		}
		st := stylesFor(cmd.OutOrStdout())
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tKIND\tTEMPLATES\tUPDATED\tLOCATOR")
		for _, s := range statuses {
			templates := fmt.Sprint(s.Templates)
			if !s.Cached {
				templates = st.warn.Render("not cached")
			}
			updated := "-"
			if !s.UpdatedAt.IsZero() {
				updated = s.UpdatedAt.Local().Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.Name, s.Kind, templates, updated, s.Locator)
		}
		return w.Flush()
	},
}

var registryUpdateCmd = &cobra.Command{
	Use:   "update [name]",
	Short: "Update one registry, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager()
		if err != nil {
			return err
		}
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		err = m.Update(cmd.Context(), name)
		printUpdateSummary(cmd, m, name, err)
		return err
	},
}

func init() {
	registryAddCmd.Flags().StringVar(&registryAddName, "name", "", "Registry name (default: derived from the locator)")

	registryCmd.AddCommand(registryAddCmd)
	registryCmd.AddCommand(registryRemoveCmd)
	registryCmd.AddCommand(registryStatusCmd)
	registryCmd.AddCommand(registryUpdateCmd)
	templateCmd.AddCommand(registryCmd)
}

// printUpdateSummary prints one line per updated registry, or every registry
// when name is empty: updated, or failed with the previous checkout kept.
func printUpdateSummary(cmd *cobra.Command, m *registry.Manager, name string, updateErr error) {
	statuses, err := m.Status()
	if err != nil {
		return
	}
	failed := map[string]bool{}
	for _, e := range unjoin(updateErr) {
		var regErr *registry.Error
		if errors.As(e, &regErr) {
			failed[regErr.Registry] = true
		}
	}
	out := cmd.OutOrStdout()
	st := stylesFor(out)
	for _, s := range statuses {
		if name != "" && s.Name != name {
			continue
		}
		switch {
		case failed[s.Name]:
			fmt.Fprintf(out, "%s %s (kept previous checkout)\n", st.warn.Render("Failed"), s.Name)
		case updateErr == nil || len(failed) > 0:
			fmt.Fprintf(out, "%s %s (%d templates)\n", st.ok.Render("Updated"), s.Name, s.Templates)
		}
	}
}

func unjoin(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
