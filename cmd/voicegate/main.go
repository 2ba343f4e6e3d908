// Package main is the entry point for the voicegate CLI.
//
// Usage:
//
//	voicegate [flags] <command> [subcommand] [args]
//
// Commands:
//
//	register     - Enroll a speaker from voice samples
//	authenticate - Verify a voice sample and open a session
//	logout       - End all sessions for a user
//	whoami       - Show users with a currently valid session
//	users        - Manage enrolled speakers (list, info, remove)
//	sessions     - Inspect and clean up sessions (list, sweep)
//	version      - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/echoos/voicegate/cmd/voicegate/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
