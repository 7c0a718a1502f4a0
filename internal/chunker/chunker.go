// Package chunker groups texts into batches that fit a provider's
// per-request character budget.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars matches DeepL's per-request character limit.
const DefaultMaxChars = 30000

// SplitByChars groups texts into chunks whose combined rune count stays
// within maxChars. Each text is kept whole, never split mid-text; a
// single text already over the budget gets a chunk of its own so the
// caller can reject it per-item.
func SplitByChars(texts []string, maxChars int) [][]string {
	if len(texts) == 0 {
		return nil
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var chunks [][]string
	var current []string
	currentChars := 0

	for _, text := range texts {
		chars := utf8.RuneCountInString(text)

		if chars > maxChars {
			if len(current) > 0 {
				chunks = append(chunks, current)
				current = nil
				currentChars = 0
			}
			chunks = append(chunks, []string{text})
			continue
		}

		if currentChars+chars > maxChars && len(current) > 0 {
			chunks = append(chunks, current)
			current = nil
			currentChars = 0
		}

		current = append(current, text)
		currentChars += chars
	}

	if len(current) > 0 {
		chunks = append(chunks, current)
	}

	return chunks
}

// SplitParagraphs breaks document text into paragraphs on blank lines,
// dropping whitespace-only fragments.
func SplitParagraphs(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")

	var paragraphs []string
	for _, fragment := range strings.Split(normalized, "\n\n") {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		paragraphs = append(paragraphs, fragment)
	}
	return paragraphs
}
