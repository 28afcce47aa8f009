package main

import (
	"os"

	"github.com/fleetwatch/fleetwatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
