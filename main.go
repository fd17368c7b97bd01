package main

import (
	"os"

	"github.com/skillauth/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// The failing command already emitted the JSON error object
		os.Exit(1)
	}
}
