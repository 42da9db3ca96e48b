package main

import (
	"fmt"
	"os"

	"media-transcriber/cmd/transcriber/cmd"
	"media-transcriber/internal/config"
)

func main() {
	// A broken .env only warns; variables may also come from the environment.
	if err := config.LoadEnv(nil); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration warning: %v\n", err)
	}

	cmd.Execute()
}
