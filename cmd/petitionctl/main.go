// Command petitionctl is the operator CLI: offline classification against the bundled
// catalog, catalog import and export, and analytics exports.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
