// Package commands is the spot-validator command line interface.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spot-validator/spot-validator/internal/catalog"
	"github.com/spot-validator/spot-validator/internal/cli"
	"github.com/spot-validator/spot-validator/internal/constants"
)

// App represents the application.
type App struct {
	cmd    *cobra.Command
	viper  *viper.Viper
	config appConfig

	now func() time.Time
}

// appConfig holds the configuration for the application.
type appConfig struct {
	Verbosity   int      `mapstructure:"verbosity"`
	JSONLogs    bool     `mapstructure:"json-logs"`
	Dir         string   `mapstructure:"dir"`
	Extensions  []string `mapstructure:"extensions"`
	Exclude     []string `mapstructure:"exclude"`
	LogFile     string   `mapstructure:"log-file"`
	Catalog     string   `mapstructure:"catalog"`
	MetricsFile string   `mapstructure:"metrics-file"`
	Format      string   `mapstructure:"format"`

	// Modes are only selected on the command line.
	showCatalog   bool
	searchFilters bool
}

type options struct {
	now func() time.Time
}

// Options represents an optional function to override App default values.
type Options func(*options)

// New creates a new App instance with default values.
func New(args ...Options) (*App, error) {
	opts := options{now: time.Now}
	for _, opt := range args {
		opt(&opts)
	}

	a := App{now: opts.now}

	a.cmd = &cobra.Command{
		Use:   constants.CmdName,
		Short: "Validate spot payload files against the spot catalog",
		Long: `Validate spot payload files against the spot catalog.

Every payload file of the payload directory is checked: spot titles, names and types must be listed in
the catalog, spot data must match the schema of its spot type and secondary filters must be exactly the
required default set. A summary is printed and the full log is saved to the log file.

With --config, the catalog is printed instead. With --search-filters, only the records carrying the
required secondary filters are reported.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Flag groups are only checked by cobra after the pre-runs.
			if err := cmd.ValidateFlagGroups(); err != nil {
				return err
			}
			// Command parsing has been successful. Returns to not print usage anymore.
			a.cmd.SilenceUsage = true
			cli.SetVerbosity(a.config.Verbosity) // Set verbosity before loading config
			if err := cli.InitViperConfig(constants.CmdName, a.cmd, a.viper); err != nil {
				return err
			}
			if err := a.viper.Unmarshal(&a.config); err != nil {
				return fmt.Errorf("unable to strictly decode configuration into struct: %w", err)
			}

			cli.SetSlog(a.config.Verbosity, a.config.JSONLogs)
			slog.Debug("got app config", "config", a.config)

			if !slices.Contains([]string{catalog.FormatText, catalog.FormatYAML, catalog.FormatTOML, catalog.FormatJSON}, a.config.Format) {
				a.cmd.SilenceUsage = false
				return fmt.Errorf("%w: %q", catalog.ErrUnknownFormat, a.config.Format)
			}
			if a.config.Format != catalog.FormatText && !a.config.showCatalog {
				slog.Warn("The format flag is only used with --config", "format", a.config.Format)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.OutOrStdout())
		},
	}
	a.viper = viper.New()
	a.cmd.CompletionOptions.HiddenDefaultCmd = true

	installRootCmd(&a)
	cli.InstallConfigFlag(a.cmd)

	if err := a.viper.BindPFlags(a.cmd.PersistentFlags()); err != nil {
		return nil, err
	}

	return &a, nil
}

func installRootCmd(app *App) {
	cmd := app.cmd

	cmd.PersistentFlags().CountVarP(&app.config.Verbosity, "verbosity", "v", "issue INFO (-v), DEBUG (-vv)")
	cmd.PersistentFlags().BoolVar(&app.config.JSONLogs, "json-logs", false, "write logs to stderr in JSON")

	cmd.PersistentFlags().StringVarP(&app.config.Dir, "dir", "d", ".", "directory holding the payload files")
	cmd.PersistentFlags().StringSliceVar(&app.config.Extensions, "extensions", []string{constants.PayloadExtension}, "extensions of the payload files")
	cmd.PersistentFlags().StringSliceVar(&app.config.Exclude, "exclude", constants.DefaultExcluded(), "file names never treated as payload files")
	cmd.PersistentFlags().StringVarP(&app.config.LogFile, "log-file", "l", constants.DefaultLogFileName, "path of the validation log")
	cmd.PersistentFlags().StringVar(&app.config.Catalog, "catalog", "", "use a catalog file instead of the built-in catalog")
	cmd.PersistentFlags().StringVar(&app.config.MetricsFile, "metrics-file", "", "write run metrics to this file in the Prometheus text format")
	cmd.PersistentFlags().StringVarP(&app.config.Format, "format", "f", catalog.FormatText, "catalog output format with --config: text, yaml, toml or json")

	cmd.Flags().BoolVar(&app.config.showCatalog, "config", false, "print the validation catalog and exit")
	cmd.Flags().BoolVar(&app.config.searchFilters, "search-filters", false, "only report the records carrying the required secondary filters")
	cmd.MarkFlagsMutuallyExclusive("config", "search-filters")

	if err := cmd.MarkPersistentFlagDirname("dir"); err != nil {
		panic(fmt.Errorf("failed to mark dir flag as directory: %w", err))
	}
	if err := cmd.MarkPersistentFlagFilename("catalog", "yaml", "yml"); err != nil {
		panic(fmt.Errorf("failed to mark catalog flag as filename: %w", err))
	}
}

// Run executes the command and associated process, returning an error if any.
func (a App) Run() error {
	return a.cmd.Execute()
}

// UsageError returns if the error is a command parsing or runtime one.
func (a App) UsageError() bool {
	return !a.cmd.SilenceUsage
}

// RootCmd returns the root command.
func (a App) RootCmd() cobra.Command {
	return *a.cmd
}

func (a *App) run(out io.Writer) error {
	c, err := a.loadCatalog()
	if err != nil {
		return err
	}

	if a.config.showCatalog {
		return a.catalogRun(out, c)
	}
	return a.validateRun(out, c)
}

func (a App) loadCatalog() (*catalog.Catalog, error) {
	if a.config.Catalog == "" {
		return catalog.Default()
	}

	slog.Info("Using catalog file", "file", a.config.Catalog)
	return catalog.LoadFile(a.config.Catalog)
}
