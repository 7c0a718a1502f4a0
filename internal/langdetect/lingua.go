// Package langdetect provides local language detection so callers can
// fill in a source language without spending provider quota.
package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"

	"horse.fit/mtbridge/internal/language"
)

// Texts with fewer letters than this are too short to classify reliably.
const minLetters = 6

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// DetectISO6391 returns the lowercase ISO 639-1 code of the dominant
// language in text, or "" when the sample is too short or ambiguous.
func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < minLetters {
		return ""
	}

	detected, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(detected.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

// Matches reports whether text already reads as the given target tag.
// Used to skip no-op translations; an undetectable sample never matches.
func Matches(text, targetLang string) bool {
	detected := DetectISO6391(text)
	if detected == "" {
		return false
	}
	return detected == language.RootCode(targetLang)
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			WithPreloadedLanguageModels().
			Build()
	})
	return detector
}
