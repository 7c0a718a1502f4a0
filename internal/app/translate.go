package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"unicode/utf8"

	"horse.fit/mtbridge/internal/cli"
	"horse.fit/mtbridge/internal/langdetect"
	"horse.fit/mtbridge/internal/provider"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	text := fs.String("text", "", "Text to translate")
	source := fs.String("source", "auto", "Source language tag, or auto")
	target := fs.String("target", "", "Target language tag")
	direct := fs.Bool("direct", false, "Use a dedicated connection instead of the shared client")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *target == "" {
		fmt.Fprintln(os.Stderr, "--target is required")
		return 2
	}

	cfg, logger, err := bootstrap(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	translator := newTranslator(cfg, logger)
	ctx := context.Background()

	translate := translator.Translate
	if *direct {
		translate = translator.TranslateDirect
	}

	resp, err := translate(ctx, *text, *source, *target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Translate failed: %v\n", err)
		return 1
	}

	if err := printJSON(resp); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	if resp.Status != provider.StatusSuccess {
		return 1
	}
	return 0
}

type bulkResult struct {
	Index    int               `json:"index"`
	Skipped  bool              `json:"skipped,omitempty"`
	Response provider.Response `json:"response"`
}

func runBulk(args []string) int {
	fs := flag.NewFlagSet("bulk", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	source := fs.String("source", "auto", "Source language tag, or auto")
	target := fs.String("target", "", "Target language tag")
	direct := fs.Bool("direct", false, "Use a dedicated connection instead of the shared client")
	skipSame := fs.Bool("skip-same", false, "Skip lines that already read as the target language")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *target == "" {
		fmt.Fprintln(os.Stderr, "--target is required")
		return 2
	}

	cfg, logger, err := bootstrap(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read stdin: %v\n", err)
		return 1
	}
	if len(lines) == 0 {
		fmt.Fprintln(os.Stderr, "bulk expects one text per stdin line")
		return 2
	}

	// Lines that already read as the target language skip the provider
	// round-trip and pass through unchanged.
	skipped := make([]bool, len(lines))
	pending := make([]string, 0, len(lines))
	pendingIndex := make([]int, 0, len(lines))
	for i, line := range lines {
		if *skipSame && langdetect.Matches(line, *target) {
			skipped[i] = true
			continue
		}
		pending = append(pending, line)
		pendingIndex = append(pendingIndex, i)
	}

	translator := newTranslator(cfg, logger)
	ctx := context.Background()

	translate := translator.BulkTranslate
	if *direct {
		translate = translator.BulkTranslateDirect
	}

	results := make([]bulkResult, len(lines))
	for i, line := range lines {
		if skipped[i] {
			results[i] = bulkResult{
				Index:    i,
				Skipped:  true,
				Response: provider.NewResponse(line, *source, *target, utf8.RuneCountInString(line), nil),
			}
		}
	}

	if len(pending) > 0 {
		responses, err := translate(ctx, pending, *source, *target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Bulk translate failed: %v\n", err)
			return 1
		}
		for i, resp := range responses {
			results[pendingIndex[i]] = bulkResult{
				Index:    pendingIndex[i],
				Response: resp,
			}
		}
	}

	if err := printJSON(results); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}

	for _, result := range results {
		if result.Response.Status != provider.StatusSuccess {
			return 1
		}
	}
	return 0
}
