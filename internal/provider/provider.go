// Package provider defines the contract between the host translation
// framework and machine-translation provider plugins.
package provider

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

// HostVersion is the contract version this module was built against.
const HostVersion = "0.1.8"

// Config carries provider credentials and transport settings. It is
// supplied once at construction and never mutated afterwards.
type Config struct {
	APIKey  string
	Timeout time.Duration
	// Endpoint overrides the provider's derived base URL when set.
	Endpoint string
}

// Capabilities declares what a provider supports.
type Capabilities struct {
	Name           string
	SupportsAsync  bool
	RequiresRegion bool
	MinHostVersion string
	// MaxChunkSize is the maximum characters accepted per request.
	MaxChunkSize int
}

// Languages lists the provider's supported source and target codes.
type Languages struct {
	Source []string `json:"source"`
	Target []string `json:"target"`
}

// Usage reports quota consumption. Known is false when the provider
// could not be reached; the counters are then meaningless zeros.
type Usage struct {
	CharacterCount        int64 `json:"character_count"`
	CharacterLimit        int64 `json:"character_limit"`
	CharacterLimitReached bool  `json:"character_limit_reached"`
	DocumentCount         int64 `json:"document_count"`
	DocumentLimit         int64 `json:"document_limit"`
	TeamDocumentCount     int64 `json:"team_document_count"`
	TeamDocumentLimit     int64 `json:"team_document_limit"`
	Known                 bool  `json:"known"`
}

// Translator is the operation surface a provider plugin exposes to the host.
//
// The translate methods return a non-nil error only for configuration
// faults (for example a missing API key). Runtime failures, including
// transport errors and unsupported language codes, are folded into the
// returned Response with StatusError so callers always receive one
// response per input.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (Response, error)
	BulkTranslate(ctx context.Context, texts []string, sourceLang, targetLang string) ([]Response, error)
	TranslateDirect(ctx context.Context, text, sourceLang, targetLang string) (Response, error)
	BulkTranslateDirect(ctx context.Context, texts []string, sourceLang, targetLang string) ([]Response, error)

	SupportedLanguages(ctx context.Context) Languages
	GetUsage(ctx context.Context) Usage
	Capabilities() Capabilities
}

// UserAgent builds the User-Agent header value providers send upstream.
func UserAgent() string {
	return fmt.Sprintf("mtbridge/%s (%s; %s)", HostVersion, runtime.GOOS, runtime.GOARCH)
}
