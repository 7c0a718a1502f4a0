package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"horse.fit/mtbridge/internal/auth"
)

func runHashToken(args []string) int {
	fs := flag.NewFlagSet("hash-token", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	token := fs.String("token", "", "API token to hash")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if strings.TrimSpace(*token) == "" {
		fmt.Fprintln(os.Stderr, "--token is required")
		return 2
	}

	hash, err := auth.HashToken(*token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash token: %v\n", err)
		return 1
	}

	fmt.Println(hash)
	fmt.Fprintln(os.Stderr, "Set API_TOKEN_HASH to the value above to protect the HTTP API.")
	return 0
}
