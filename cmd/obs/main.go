// Command obs is the InfoPulse debug and maintenance CLI.
//
// Usage:
//
//	obs                     Show help
//	obs stats               Topic, feed and favorites statistics
//	obs fetch <query>       One-shot digest fetch, rendered as plain text
//	obs events              JSONL event journal viewer
package main

import (
	"fmt"
	"os"
)

const usage = `obs - InfoPulse debug & maintenance CLI

Usage:
  obs <command> [flags]

Commands:
  stats       Topic, feed and favorites statistics from the local store
  fetch       Fetch one digest through the configured provider and print it
  events      JSONL event journal viewer

Environment:
  INFOPULSE_HOME     Data directory (default: ~/.infopulse)
  GEMINI_API_KEY     Gemini API key (fetch falls back to news search without it)

Run 'obs <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "stats":
		runStats()
	case "fetch":
		runFetch()
	case "events":
		runEvents()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "obs: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
