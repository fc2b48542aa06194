package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/keeper-security/gcp-auth/cmd/gcp-auth/commands"
	"github.com/keeper-security/gcp-auth/internal/ui"
)

// Version is the current version of gcp-auth
// This must match the git tag when creating releases
const Version = "v0.1.0"

func main() {
	commands.SetVersion(Version)

	if err := commands.Execute(); err != nil {
		program := strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))
		ui.DefaultConsole().DisplayError(program, err)
		os.Exit(1)
	}
}
