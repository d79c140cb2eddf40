package main

import (
	"os"

	"github.com/moasq/promptheus/internal/commands"
	"github.com/moasq/promptheus/internal/terminal"
)

func main() {
	if err := commands.Execute(); err != nil {
		terminal.Failure(err)
		os.Exit(1)
	}
}
