package main

import (
	"os"

	"github.com/mkerian10/pluto/cmd/plutoc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
