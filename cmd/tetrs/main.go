package main

import (
	"os"

	"github.com/plus3/tetrs/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
