// Package main is the entry point for the colhash CLI binary.
package main

import (
	"os"

	cli "colhash/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
