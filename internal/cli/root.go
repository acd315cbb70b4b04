package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ion-tools/ion/internal/branding"
	"github.com/ion-tools/ion/internal/config"
	"github.com/ion-tools/ion/internal/logging"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	debug  bool
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` creates new projects from templates. Templates are collections of
blueprints (project manifest, README, badges, license, tests) fetched from one or more registries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		logger = logging.New(cmd.ErrOrStderr(), logging.Level(debug))
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log debug output to stderr")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
