package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agroledger/eudr-engine/internal/application/compliance"
	"github.com/agroledger/eudr-engine/internal/domain/statement"
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	var (
		file    string
		geoFile string
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a due diligence statement from a request file",
		Long:  "Generate runs the full assembly pipeline offline: it validates the\ngeolocation, computes the canonical hash, assesses risk, and emits a\ncomplete due diligence statement. Nothing is persisted or anchored;\nuse the API server for committed generation.",
		Example: "  eudrctl generate --file request.json\n" +
			"  eudrctl generate --file request.json --geolocation plots.geojson --write dds.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			raw, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			var req compliance.GenerateRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("parsing request file: %w", err)
			}

			// A separate geolocation file overrides any payload embedded in
			// the request.
			if geoFile != "" {
				geo, err := readInput(cmd, geoFile)
				if err != nil {
					return err
				}
				req.Geolocation = geo
			}

			dds, err := cliCtx.Assembler.Generate(req)
			if err != nil {
				return err
			}

			if outFile != "" {
				data, err := json.MarshalIndent(dds, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(outFile, append(data, '\n'), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", outFile, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OK: statement %s written to %s\n", dds.ReferenceNumber, outFile)
				return nil
			}

			if strings.EqualFold(cliCtx.OutputFormat, "text") {
				return printResult(cmd, formatStatement(dds))
			}
			return printResult(cmd, dds)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "generation request file path, or - for stdin [REQUIRED]")
	cmd.Flags().StringVarP(&geoFile, "geolocation", "g", "", "geolocation file overriding the request's embedded payload")
	cmd.Flags().StringVarP(&outFile, "write", "w", "", "write the statement JSON to a file instead of stdout")
	cmd.MarkFlagRequired("file")

	return cmd
}

// formatStatement renders a statement summary for terminal consumption.
func formatStatement(dds *statement.DueDiligenceStatement) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Due Diligence Statement %s\n", dds.ReferenceNumber)
	fmt.Fprintf(&sb, "  Batch:              %s (%s)\n", dds.Batch.BatchID, dds.Batch.CountryOfProduction)
	fmt.Fprintf(&sb, "  Geolocation hash:   %s\n", dds.GeolocationHash)
	fmt.Fprintf(&sb, "  Plots:              %d covering %.3f ha\n", dds.PlotCount, dds.TotalAreaHa)
	fmt.Fprintf(&sb, "  Deforestation-free: %t\n", dds.DeforestationFree)
	fmt.Fprintf(&sb, "  Legality verified:  %t\n", dds.LegalityVerified)
	fmt.Fprintf(&sb, "  Risk level:         %s\n", dds.Risk.Level.String())

	if len(dds.Risk.Mitigations) > 0 {
		sb.WriteString("\nMitigations:\n")
		for _, m := range dds.Risk.Mitigations {
			fmt.Fprintf(&sb, "  - %s\n", m)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
