package main

import (
	"os"

	"github.com/spigell/presta-matcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
