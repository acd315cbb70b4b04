package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ion-tools/ion/internal/branding"
	"github.com/ion-tools/ion/internal/config"
	"github.com/ion-tools/ion/internal/prompt"
	"github.com/ion-tools/ion/internal/registry"
	"github.com/ion-tools/ion/internal/userdata"
)

// newManager builds the registry manager over the user's ~/.ion layout.
func newManager() (*registry.Manager, error) {
	resources, err := userdata.GetResourcesRoot()
	if err != nil {
		return nil, fmt.Errorf("resolving resources root: %w", err)
	}
	store, err := userdata.GetRegistriesPath()
	if err != nil {
		return nil, fmt.Errorf("resolving registries file: %w", err)
	}
	index, err := userdata.GetIndexPath()
	if err != nil {
		return nil, fmt.Errorf("resolving index path: %w", err)
	}
	return registry.NewManager(registry.Options{
		ResourcesRoot: resources,
		StorePath:     store,
		IndexPath:     index,
		HTTPClient:    &http.Client{Timeout: config.Duration(config.KeyHTTPTimeout, time.Minute)},
		S3Region:      config.Get(config.KeyS3Region),
		S3Endpoint:    config.Get(config.KeyS3Endpoint),
		Logger:        logger,
	}), nil
}

// newRemote wires the manager to the user's prompter and default registry.
func newRemote(m *registry.Manager, p prompt.Prompter) *registry.RemoteTemplate {
	return &registry.RemoteTemplate{
		Manager:        m,
		Prompter:       p,
		DefaultLocator: defaultLocator(),
	}
}

func defaultLocator() string {
	if v := config.Get(config.KeyDefaultRegistry); v != "" {
		return v
	}
	return branding.DefaultRegistry()
}

// newPrompter returns the default-answering prompter for --yes or when
// stdin is not a terminal, and the terminal prompter otherwise. Questions
// go to stderr.
func newPrompter(cmd *cobra.Command, yes bool) prompt.Prompter {
	in := cmd.InOrStdin()
	if yes || !prompt.Interactive(in) {
		return prompt.Defaults{}
	}
	return prompt.NewTerminal(in, cmd.ErrOrStderr())
}

// terminalWidth returns the width of w when it is a terminal.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80, true
	}
	return width, true
}

// styles holds the status line styles for one output stream.
type styles struct {
	ok    lipgloss.Style
	warn  lipgloss.Style
	faint lipgloss.Style
	bold  lipgloss.Style
}

func stylesFor(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		ok:    r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("3")),
		faint: r.NewStyle().Faint(true),
		bold:  r.NewStyle().Bold(true),
	}
}

func printDeclined(w io.Writer) {
	st := stylesFor(w)
	fmt.Fprintln(w, st.faint.Render(fmt.Sprintf("No templates downloaded. Add a registry with '%s template registry add <locator>'.", branding.CLIName())))
}
