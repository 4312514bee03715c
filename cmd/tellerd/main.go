package main

import (
	"os"

	"github.com/tellerd-dev/tellerd/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
