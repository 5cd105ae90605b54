// eudrctl is the offline CLI for the EUDR compliance engine.
package main

import (
	"os"

	"github.com/agroledger/eudr-engine/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
