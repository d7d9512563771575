package main

import (
	"os"

	"github.com/ledenadmin/ledenadmin/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
