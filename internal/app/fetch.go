package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"horse.fit/mtbridge/internal/chunker"
	"horse.fit/mtbridge/internal/cli"
	"horse.fit/mtbridge/internal/provider"
	"horse.fit/mtbridge/internal/reader"
)

type fetchResult struct {
	URL              string `json:"url"`
	TranslatedText   string `json:"translated_text"`
	SourceLang       string `json:"source_lang"`
	TargetLang       string `json:"target_lang"`
	DetectedLanguage string `json:"detected_language,omitempty"`
	Paragraphs       int    `json:"paragraphs"`
	FailedParagraphs int    `json:"failed_paragraphs"`
	CharCount        int    `json:"char_count"`
}

func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	pageURL := fs.String("url", "", "Document URL to fetch and translate")
	source := fs.String("source", "auto", "Source language tag, or auto")
	target := fs.String("target", "", "Target language tag")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if strings.TrimSpace(*pageURL) == "" {
		fmt.Fprintln(os.Stderr, "--url is required")
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

	ctx := context.Background()
	text, err := reader.FetchText(ctx, *pageURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch document: %v\n", err)
		return 1
	}

	paragraphs := chunker.SplitParagraphs(text)
	if len(paragraphs) == 0 {
		fmt.Fprintln(os.Stderr, "Document contains no readable text")
		return 1
	}

	translator := newTranslator(cfg, logger)
	caps := translator.Capabilities()
	chunks := chunker.SplitByChars(paragraphs, caps.MaxChunkSize)

	result := fetchResult{
		URL:        *pageURL,
		SourceLang: *source,
		TargetLang: *target,
		Paragraphs: len(paragraphs),
	}

	translated := make([]string, 0, len(paragraphs))
	for _, chunk := range chunks {
		responses, err := translator.BulkTranslate(ctx, chunk, *source, *target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Translate failed: %v\n", err)
			return 1
		}
		for i, resp := range responses {
			result.CharCount += resp.CharCount
			if resp.Status != provider.StatusSuccess {
				result.FailedParagraphs++
				translated = append(translated, chunk[i])
				continue
			}
			if result.DetectedLanguage == "" && resp.Metadata != nil {
				result.DetectedLanguage = resp.Metadata.DetectedLanguage
			}
			translated = append(translated, resp.TranslatedText)
		}
	}
	result.TranslatedText = strings.Join(translated, "\n\n")

	if err := printJSON(result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	if result.FailedParagraphs > 0 {
		return 1
	}
	return 0
}
