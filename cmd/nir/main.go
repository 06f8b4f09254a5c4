// Package main provides the nir command-line tool.
package main

import (
	"os"

	"github.com/spikeworks/nir/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
