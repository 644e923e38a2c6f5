// Package cli implements the polars-inspect command line.
package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/polars"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string
	Library string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "polars-inspect",
		Short: "Inspect the Polars bridge and the files it reads",
		Long: `polars-inspect loads the native Polars binding and reports its version and
codec tables, or uses it to peek at data files.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "bridge config file (yaml)")
	cmd.PersistentFlags().StringVar(&opts.Library, "lib", "", "native library path (overrides config and "+bridge.LibraryEnv+")")

	cmd.AddCommand(NewVersionCommand(opts))
	cmd.AddCommand(NewCodecsCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewHeadCommand(opts))

	return cmd
}

// loadBridge resolves the library from --lib, the config file and the
// environment, in that order.
func loadBridge(opts *RootOptions, f *OutputFormatter) (*bridge.Bridge, error) {
	cfg := bridge.Config{}
	if opts.Config != "" {
		var err error
		if cfg, err = bridge.LoadConfig(opts.Config); err != nil {
			return nil, WrapExitError(ExitCommandError, "config", err)
		}
	}
	if opts.Library != "" {
		cfg.Library = opts.Library
	}

	level, err := cfg.Level()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "config", err)
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(f.ErrWriter, &slog.HandlerOptions{Level: level}))

	brg, err := polars.Load(cfg.Library, append(cfg.Options(), bridge.WithLogger(logger))...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load bridge", err)
	}
	return brg, nil
}
