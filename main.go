// ABOUTME: Entry point for the centralauth CLI
// ABOUTME: Interactive console and scripting commands for CentralAuth accounts and OAuth clients

package main

import (
	"fmt"
	"os"

	"github.com/markalston/centralauth-console/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
