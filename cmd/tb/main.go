package main

import (
	"fmt"
	"os"

	"transcribe-beautifier/cmd/tb/cmd"
	"transcribe-beautifier/internal/config"
)

func main() {
	// A missing .env is fine; a broken one is worth a warning.
	if _, err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration warning: %v\n", err)
	}

	cmd.Execute()
}
