// Package app implements the mtbridge command-line interface.
package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "translate":
		return runTranslate(args[1:])
	case "bulk":
		return runBulk(args[1:])
	case "fetch":
		return runFetch(args[1:])
	case "detect":
		return runDetect(args[1:])
	case "languages":
		return runLanguages(args[1:])
	case "usage":
		return runUsage(args[1:])
	case "serve":
		return runServe(args[1:])
	case "hash-token":
		return runHashToken(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "mtbridge CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  mtbridge <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  translate   Translate one text")
	fmt.Fprintln(os.Stderr, "  bulk        Translate one text per stdin line")
	fmt.Fprintln(os.Stderr, "  fetch       Fetch a URL and translate its readable text")
	fmt.Fprintln(os.Stderr, "  detect      Detect the language of a text locally")
	fmt.Fprintln(os.Stderr, "  languages   List supported source and target languages")
	fmt.Fprintln(os.Stderr, "  usage       Show provider quota usage")
	fmt.Fprintln(os.Stderr, "  serve       Start the HTTP API server")
	fmt.Fprintln(os.Stderr, "  hash-token  Hash an API token for API_TOKEN_HASH")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"mtbridge <command> -h\" for command-specific flags.")
}
