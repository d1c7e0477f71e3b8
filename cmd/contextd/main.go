package main

import (
	"os"

	"github.com/tkingovr/context-continuity/cmd/contextd/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
