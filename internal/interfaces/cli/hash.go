package cli

import (
	"github.com/spf13/cobra"
)

// hashOutput carries a canonical content hash for JSON output.
type hashOutput struct {
	GeolocationHash string `json:"geolocation_hash"`
}

func (h hashOutput) String() string { return h.GeolocationHash }

// NewHashCmd creates the hash command.
func NewHashCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Compute the canonical content hash of a geolocation file",
		Long:  "Hash normalizes a GeoJSON geolocation payload into its canonical form\nand prints the Keccak-256 content hash. Equivalent payloads produce\nthe same hash regardless of property order or input shape.",
		Example: "  eudrctl hash --file plots.geojson\n" +
			"  eudrctl hash --file plots.geojson --output text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			raw, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			hash, err := cliCtx.Assembler.HashGeolocation(raw)
			if err != nil {
				return err
			}
			return printResult(cmd, hashOutput{GeolocationHash: hash})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "geolocation file path, or - for stdin [REQUIRED]")
	cmd.MarkFlagRequired("file")

	return cmd
}
