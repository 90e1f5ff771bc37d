// Package main is the entry point for the ciplug CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/ciplug/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
