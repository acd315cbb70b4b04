package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ion-tools/ion/internal/blueprint"
	"github.com/ion-tools/ion/internal/config"
	"github.com/ion-tools/ion/internal/prompt"
	"github.com/ion-tools/ion/internal/scaffold"
)

var (
	newTemplate string
	newForce    bool
	newYes      bool
)

var newCmd = &cobra.Command{
	Use:   "new <path>",
	Short: "Create a new project from a template",
	Long: `Create a new project at <path> from a cached template.

All questions are asked before any file is written. When the template is
not cached you are offered a download from the registries.

Examples:
  ion new MyPackage.jl --template package
  ion new MyPackage.jl --template package --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	newCmd.Flags().StringVarP(&newTemplate, "template", "t", "", "Template name (asks when omitted)")
	newCmd.Flags().BoolVar(&newForce, "force", false, "Write into a non-empty directory")
	newCmd.Flags().BoolVarP(&newYes, "yes", "y", false, "Accept every default without asking")
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	root := args[0]
	if err := checkProjectRoot(root, newForce); err != nil {
		return err
	}

	m, err := newManager()
	if err != nil {
		return err
	}
	p := newPrompter(cmd, newYes)
	remote := newRemote(m, p)
	ctx := cmd.Context()

	name := newTemplate
	if name == "" {
		c, d, err := remote.EnsureDownloaded(ctx)
		if err != nil {
			return err
		}
		if d == prompt.Decline {
			printDeclined(cmd.OutOrStdout())
			return nil
		}
		names := c.Names()
		if len(names) == 0 {
			return fmt.Errorf("no templates available")
		}
		idx, err := p.Select("Template", names, 0)
		if err != nil {
			return fmt.Errorf("selecting template: %w", err)
		}
		name = names[idx]
	}

	tmpl, d, err := remote.Resolve(ctx, name)
	if err != nil {
		return err
	}
	if d == prompt.Decline {
		printDeclined(cmd.OutOrStdout())
		return nil
	}
	if err := tmpl.Check(buildVersion); err != nil {
		return err
	}

	s := blueprint.NewSession(root, p)
	s.Logger = logger
	s.Toolchain.JuliaBin = config.Get(config.KeyJuliaBin)
	s.Toolchain.Compile = config.Get(config.KeyJuliaCompile)

	res, err := scaffold.Scaffold(tmpl, s, time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	st := stylesFor(out)
	fmt.Fprintf(out, "%s %s from template %s\n", st.ok.Render("Created"), root, st.bold.Render(res.Template))
	for _, f := range res.Files {
		fmt.Fprintf(out, "  %s\n", f)
	}
	return nil
}

// checkProjectRoot refuses a file, or a non-empty directory unless force is set.
func checkProjectRoot(root string, force bool) error {
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists and is not a directory", root)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("reading %s: %w", root, err)
	}
	if len(entries) > 0 && !force {
		return fmt.Errorf("%s is not empty (use --force to write into it)", root)
	}
	return nil
}
