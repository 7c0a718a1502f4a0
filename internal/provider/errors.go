package provider

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey signals a configuration fault: the adapter was asked to
// translate without an API key. It is detected on first use, not at
// construction, and is the only condition the translate operations return
// as a Go error.
var ErrMissingAPIKey = errors.New("API key is required")

// UnsupportedLanguageError reports a language code with no provider mapping
// even after root-code fallback.
type UnsupportedLanguageError struct {
	Code string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %q", e.Code)
}

// TextTooLongError reports an input exceeding the provider's per-request
// character limit. Inputs are never silently truncated.
type TextTooLongError struct {
	Length int
	Limit  int
}

func (e *TextTooLongError) Error() string {
	return fmt.Sprintf("text length (%d) exceeds the maximum of %d characters", e.Length, e.Limit)
}
