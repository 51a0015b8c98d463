package main

import (
	"os"

	"github.com/equipstat/equipstat/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
