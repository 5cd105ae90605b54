package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agroledger/eudr-engine/internal/application/compliance"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	var file string
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a geolocation file against EUDR plot rules",
		Long:  "Validate normalizes a GeoJSON geolocation payload and checks every\nfeature against the plot-level rules: coordinate precision, value\nranges, large-plot Polygon requirement, and plot_id uniqueness.",
		Example: "  eudrctl validate --file plots.geojson\n" +
			"  cat plots.geojson | eudrctl validate --file - --output text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			raw, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			report, err := cliCtx.Assembler.ValidateGeolocation(raw)
			if err != nil {
				return err
			}

			if strings.EqualFold(cliCtx.OutputFormat, "text") {
				if err := printResult(cmd, formatReport(report)); err != nil {
					return err
				}
			} else if err := printResult(cmd, report); err != nil {
				return err
			}

			if strict && !report.Valid {
				return fmt.Errorf("geolocation failed validation with %d error(s)", len(report.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "geolocation file path, or - for stdin [REQUIRED]")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the payload fails validation")
	cmd.MarkFlagRequired("file")

	return cmd
}

// formatReport renders a validation report for terminal consumption.
func formatReport(report *compliance.Report) string {
	var sb strings.Builder

	status := "VALID"
	if !report.Valid {
		status = "INVALID"
	}
	fmt.Fprintf(&sb, "Geolocation Validation: %s\n", status)
	fmt.Fprintf(&sb, "  Features:   %d\n", len(report.Features))
	fmt.Fprintf(&sb, "  Total area: %.3f ha\n", report.TotalAreaHa)

	if len(report.Errors) > 0 {
		sb.WriteString("\nErrors:\n")
		for _, e := range report.Errors {
			fmt.Fprintf(&sb, "  - %s\n", e)
		}
	}
	if len(report.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&sb, "  - %s\n", w)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
