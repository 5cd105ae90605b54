// Package cli implements the eudrctl command tree: offline geolocation
// validation, hashing, and statement generation over local files.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agroledger/eudr-engine/internal/application/compliance"
	"github.com/agroledger/eudr-engine/internal/config"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	OutputFormat string
	Verbose      bool
	MinPrecision int
	LargePlotHa  float64
}

// CLIContext carries the initialized pipeline through the command tree. The
// CLI runs the assembler directly against local files; no server, database,
// or broker is involved.
type CLIContext struct {
	Assembler    *compliance.Assembler
	OutputFormat string
	Verbose      bool
}

// NewRootCommand creates the root cobra command with global flags and all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "eudrctl",
		Short:   "EUDR compliance engine CLI",
		Long:    "eudrctl validates plot-level geolocation data, computes canonical\ncontent hashes, and generates due diligence statements offline,\nwithout a running API server.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.OutputFormat, "output", "o", "json", "output format (json, text)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose logging")
	pf.IntVar(&opts.MinPrecision, "min-precision", config.DefaultMinPrecision, "required coordinate decimal places")
	pf.Float64Var(&opts.LargePlotHa, "large-plot-ha", config.DefaultLargePlotHa, "area threshold requiring Polygon geometry")

	cmd.AddCommand(
		NewValidateCmd(),
		NewHashCmd(),
		NewGenerateCmd(),
	)

	return cmd
}

// persistentPreRun builds the assembly pipeline from the global flags and
// stores it in the command context.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	if opts.OutputFormat != "json" && opts.OutputFormat != "text" {
		return fmt.Errorf("invalid output format: %s (must be json or text)", opts.OutputFormat)
	}

	logger := logging.NewNop()
	if opts.Verbose {
		var err error
		logger, err = logging.NewLogger(logging.LogConfig{Level: "debug", Format: "console", OutputPaths: []string{"stderr"}})
		if err != nil {
			return fmt.Errorf("logger initialization failed: %w", err)
		}
	}

	assembler := compliance.NewAssembler(
		compliance.NewValidator(compliance.ValidatorConfig{
			MinPrecision: opts.MinPrecision,
			LargePlotHa:  opts.LargePlotHa,
		}),
		compliance.NewAssessor(),
		compliance.AssemblerConfig{},
		logger,
	)

	cliCtx := &CLIContext{
		Assembler:    assembler,
		OutputFormat: opts.OutputFormat,
		Verbose:      opts.Verbose,
	}
	cmd.SetContext(withCLIContext(cmd.Context(), cliCtx))
	return nil
}

func withCLIContext(ctx context.Context, cliCtx *CLIContext) context.Context {
	return context.WithValue(ctx, cliContextKey{}, cliCtx)
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	cliCtx, ok := cmd.Context().Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, fmt.Errorf("command context is not initialized")
	}
	return cliCtx, nil
}

// Execute runs the CLI and reports any failure on stderr.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %s\n", err.Error())
		return err
	}
	return nil
}

// readInput loads the payload for a command: from a file path, or from stdin
// when the path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("input file is required (use --file, or - for stdin)")
	}
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// printResult renders data in the configured output format.
func printResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil || strings.EqualFold(cliCtx.OutputFormat, "json") {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}
