package main

import (
	"os"

	"github.com/clario-app/clario/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
