// Package cli defines the command line surface and translates it into an
// app.Config. Flag values always win over config file values.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vk/nixgraphgo/internal/app"
	"github.com/vk/nixgraphgo/internal/config"
)

// RunFunc executes a fully parsed configuration. It is injected so tests
// can capture the configuration without running an extraction.
type RunFunc func(ctx context.Context, cfg *app.Config, outW, errW io.Writer) error

// NewRootCommand builds the nixgraph command.
func NewRootCommand(outW, errW io.Writer, run RunFunc) *cobra.Command {
	var (
		cfg        app.Config
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "nixgraph [OUTPUT_PATH]",
		Short: "Extract the dependency graph of a Nix flake's derivations",
		Long: `nixgraph discovers the derivations of a flake, recursively describes
every derivation and its build inputs in parallel, and streams one JSON
description per derivation. OUTPUT_PATH receives the stream; omit it or
pass "-" for stdout.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				cfg.OutputPath = args[0]
			}

			if configPath != "" {
				file, err := config.Load(configPath)
				if err != nil {
					return err
				}
				applyFile(cmd.Flags(), &cfg, file)
			}

			if err := validate(&cfg); err != nil {
				return err
			}

			final, err := app.NewConfig(cfg)
			if err != nil {
				return err
			}
			return run(cmd.Context(), final, outW, errW)
		},
	}
	cmd.SetOut(outW)
	cmd.SetErr(errW)

	flags := cmd.Flags()
	flags.StringVar(&cfg.FlakeRef, "target-flake-ref", "nixpkgs", "The flake URI to extract, e.g. \"github:NixOS/nix\".")
	flags.StringVar(&cfg.AttributePath, "target-attribute-path", "", "The attribute path to extract, e.g. \"haskellPackages.hello\"; defaults to all derivations in the flake.")
	flags.StringVar(&cfg.System, "target-system", "", "The system to extract for, e.g. \"x86_64-linux\"; defaults to the evaluating machine's system.")
	flags.BoolVar(&cfg.Offline, "offline", false, "Run nix evaluation in offline mode.")
	flags.BoolVar(&cfg.RuntimeOnly, "runtime-only", false, "Only expand run-time dependency kinds.")
	flags.BoolVar(&cfg.IncludeNarInfo, "include-nar-info", false, "Enrich derivations with narinfo records from binary caches.")
	flags.StringSliceVar(&cfg.BinaryCaches, "binary-caches", nil, "Cache servers for narinfo records; defaults to the configured substituters.")
	flags.IntVar(&cfg.Workers, "n-workers", 0, "Count of concurrent derivation descriptions; 0 means one per CPU.")
	flags.BoolVar(&cfg.Pretty, "pretty", false, "Pretty print each output document.")
	flags.BoolVar(&cfg.OutputSchema, "output-schema", false, "Print the JSON Schema of the output documents and exit.")
	flags.BoolVar(&cfg.Progress, "progress", false, "Mirror traversal progress events into the log.")
	flags.StringVar(&cfg.LogFormat, "log-format", "text", "Log output format: 'text' or 'json'.")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Logging level: 'debug', 'info', 'warn', or 'error'.")
	flags.StringVar(&configPath, "config", "", "Path to an HCL config file; flags override file values.")

	return cmd
}

// applyFile merges config file values into cfg for every flag the user
// did not set explicitly.
func applyFile(flags *pflag.FlagSet, cfg *app.Config, file *config.File) {
	if target := file.Target; target != nil {
		if target.FlakeRef != nil && !flags.Changed("target-flake-ref") {
			cfg.FlakeRef = *target.FlakeRef
		}
		if target.System != nil && !flags.Changed("target-system") {
			cfg.System = *target.System
		}
		if target.AttributePath != nil && !flags.Changed("target-attribute-path") {
			cfg.AttributePath = *target.AttributePath
		}
	}
	if caches := file.Caches; caches != nil {
		if caches.Servers != nil && !flags.Changed("binary-caches") {
			cfg.BinaryCaches = caches.Servers
		}
		if caches.IncludeNarInfo != nil && !flags.Changed("include-nar-info") {
			cfg.IncludeNarInfo = *caches.IncludeNarInfo
		}
	}
	if extraction := file.Extraction; extraction != nil {
		if extraction.Workers != nil && !flags.Changed("n-workers") {
			cfg.Workers = *extraction.Workers
		}
		if extraction.Offline != nil && !flags.Changed("offline") {
			cfg.Offline = *extraction.Offline
		}
		if extraction.RuntimeOnly != nil && !flags.Changed("runtime-only") {
			cfg.RuntimeOnly = *extraction.RuntimeOnly
		}
	}
}

// validate rejects flag values the rest of the application would only
// trip over later.
func validate(cfg *app.Config) error {
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.Workers < 0 {
		return fmt.Errorf("invalid n-workers %d: must not be negative", cfg.Workers)
	}
	return nil
}
