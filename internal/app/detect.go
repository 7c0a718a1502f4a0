package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"horse.fit/mtbridge/internal/langdetect"
)

func runDetect(args []string) int {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	text := fs.String("text", "", "Text to classify")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if strings.TrimSpace(*text) == "" {
		fmt.Fprintln(os.Stderr, "--text is required")
		return 2
	}

	code := langdetect.DetectISO6391(*text)
	if err := printJSON(map[string]any{
		"language": code,
		"reliable": code != "",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	return 0
}
