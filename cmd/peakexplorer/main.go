// PeakExplorer - HPLC-MS chromatogram and mass spectrum analysis tool
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/PeakExplorer/cmd/peakexplorer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
