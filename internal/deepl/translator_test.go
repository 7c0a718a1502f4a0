package deepl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/mtbridge/internal/provider"
)

var _ provider.Translator = (*Translator)(nil)

type stubUpstream struct {
	mu       sync.Mutex
	requests []stubRequest

	status int
	body   string
}

type stubRequest struct {
	Path    string
	Auth    string
	Payload map[string]any
}

func (s *stubUpstream) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		captured := stubRequest{
			Path: r.URL.Path,
			Auth: r.Header.Get("Authorization"),
		}
		if r.Method == http.MethodPost {
			if err := json.NewDecoder(r.Body).Decode(&captured.Payload); err != nil {
				t.Errorf("decode request body: %v", err)
			}
		}

		s.mu.Lock()
		s.requests = append(s.requests, captured)
		status, body := s.status, s.body
		s.mu.Unlock()

		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (s *stubUpstream) calls() []stubRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stubRequest(nil), s.requests...)
}

func newTestTranslator(t *testing.T, upstream *stubUpstream) (*Translator, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(upstream.handler(t))
	t.Cleanup(server.Close)

	translator := New(provider.Config{
		APIKey:   "test-deepl-key:fx",
		Timeout:  5 * time.Second,
		Endpoint: server.URL,
	}, Options{Logger: zerolog.Nop()})
	return translator, server
}

func singleTranslationBody(text, detected string) string {
	payload := map[string]any{
		"translations": []map[string]any{
			{"text": text, "detected_source_language": detected},
		},
	}
	encoded, _ := json.Marshal(payload)
	return string(encoded)
}

func TestTierDetection(t *testing.T) {
	t.Parallel()

	free := New(provider.Config{APIKey: "key:fx"}, Options{Logger: zerolog.Nop()})
	if !free.IsFreeAPI() {
		t.Fatalf("expected :fx key to select the free tier")
	}
	if free.BaseURL() != baseURLFree {
		t.Fatalf("unexpected free base URL: %q", free.BaseURL())
	}

	pro := New(provider.Config{APIKey: "key"}, Options{Logger: zerolog.Nop()})
	if pro.IsFreeAPI() {
		t.Fatalf("did not expect pro key to select the free tier")
	}
	if pro.BaseURL() != baseURLPro {
		t.Fatalf("unexpected pro base URL: %q", pro.BaseURL())
	}

	overridden := New(provider.Config{APIKey: "key", Endpoint: "http://127.0.0.1:9/"}, Options{Logger: zerolog.Nop()})
	if overridden.BaseURL() != "http://127.0.0.1:9" {
		t.Fatalf("endpoint override not applied: %q", overridden.BaseURL())
	}
}

func TestTranslateMissingAPIKey(t *testing.T) {
	t.Parallel()

	translator := New(provider.Config{APIKey: "  "}, Options{Logger: zerolog.Nop()})
	if _, err := translator.Translate(context.Background(), "test", "en", "es"); err != provider.ErrMissingAPIKey {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := translator.BulkTranslate(context.Background(), []string{"test"}, "en", "es"); err != provider.ErrMissingAPIKey {
		t.Fatalf("expected ErrMissingAPIKey from bulk, got %v", err)
	}
}

func TestTranslateEmptyText(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{}
	translator, _ := newTestTranslator(t, upstream)

	for _, text := range []string{"", "   ", "\n\t"} {
		resp, err := translator.Translate(context.Background(), text, "en", "es")
		if err != nil {
			t.Fatalf("translate %q: %v", text, err)
		}
		if resp.Status != provider.StatusSuccess {
			t.Fatalf("expected success for blank input, got %v", resp.Status)
		}
		if resp.TranslatedText != "" || resp.CharCount != 0 {
			t.Fatalf("expected empty zero-count response, got %+v", resp)
		}
	}

	if calls := upstream.calls(); len(calls) != 0 {
		t.Fatalf("expected no upstream calls for blank input, got %d", len(calls))
	}
}

func TestTranslateTooLong(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{}
	translator, _ := newTestTranslator(t, upstream)

	long := strings.Repeat("a", MaxChunkSize+1)
	resp, err := translator.Translate(context.Background(), long, "en", "es")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if resp.Status != provider.StatusError {
		t.Fatalf("expected error status, got %v", resp.Status)
	}
	if !strings.Contains(resp.Error, "30000") {
		t.Fatalf("expected error to name the limit, got %q", resp.Error)
	}
	if resp.CharCount != MaxChunkSize+1 {
		t.Fatalf("unexpected char count: %d", resp.CharCount)
	}
	if calls := upstream.calls(); len(calls) != 0 {
		t.Fatalf("expected no upstream calls for oversized input, got %d", len(calls))
	}
}

func TestTranslateSuccess(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{body: singleTranslationBody("¡Hola mundo!", "EN")}
	translator, _ := newTestTranslator(t, upstream)

	resp, err := translator.Translate(context.Background(), "Hello world", "en", "es")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if resp.Status != provider.StatusSuccess {
		t.Fatalf("expected success, got %+v", resp)
	}
	if resp.TranslatedText != "¡Hola mundo!" {
		t.Fatalf("unexpected translation: %q", resp.TranslatedText)
	}
	if resp.SourceLang != "en" || resp.TargetLang != "es" {
		t.Fatalf("language echo mismatch: %+v", resp)
	}
	if resp.CharCount != len("Hello world") {
		t.Fatalf("unexpected char count: %d", resp.CharCount)
	}
	if resp.Metadata == nil {
		t.Fatalf("expected metadata")
	}
	if resp.Metadata.DetectedLanguage != "en" {
		t.Fatalf("unexpected detected language: %q", resp.Metadata.DetectedLanguage)
	}
	if resp.Metadata.Provider != "deepl" || resp.Metadata.Model != "deepl-api" {
		t.Fatalf("unexpected metadata identity: %+v", resp.Metadata)
	}
	if resp.Metadata.Confidence != 1.0 {
		t.Fatalf("unexpected confidence: %v", resp.Metadata.Confidence)
	}
	if resp.Metadata.BilledCharacters != len("Hello world") {
		t.Fatalf("unexpected billed characters: %d", resp.Metadata.BilledCharacters)
	}

	calls := upstream.calls()
	if len(calls) != 1 {
		t.Fatalf("expected one upstream call, got %d", len(calls))
	}
	if calls[0].Path != "/v2/translate" {
		t.Fatalf("unexpected path: %q", calls[0].Path)
	}
	if calls[0].Auth != "DeepL-Auth-Key test-deepl-key:fx" {
		t.Fatalf("unexpected auth header: %q", calls[0].Auth)
	}
	if got := calls[0].Payload["source_lang"]; got != "EN" {
		t.Fatalf("unexpected wire source_lang: %v", got)
	}
	if got := calls[0].Payload["target_lang"]; got != "ES" {
		t.Fatalf("unexpected wire target_lang: %v", got)
	}
}

func TestTranslateAutoDetectOmitsSource(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{body: singleTranslationBody("¡Hola mundo!", "EN")}
	translator, _ := newTestTranslator(t, upstream)

	resp, err := translator.Translate(context.Background(), "Hello world", "auto", "es")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if resp.Status != provider.StatusSuccess {
		t.Fatalf("expected success, got %+v", resp)
	}
	if resp.Metadata.DetectedLanguage != "en" {
		t.Fatalf("unexpected detected language: %q", resp.Metadata.DetectedLanguage)
	}

	calls := upstream.calls()
	if len(calls) != 1 {
		t.Fatalf("expected one upstream call, got %d", len(calls))
	}
	if _, present := calls[0].Payload["source_lang"]; present {
		t.Fatalf("expected source_lang to be omitted for auto, payload: %v", calls[0].Payload)
	}
}

func TestTranslateUnsupportedLanguage(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{}
	translator, _ := newTestTranslator(t, upstream)

	resp, err := translator.Translate(context.Background(), "Hello", "en", "xx")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if resp.Status != provider.StatusError {
		t.Fatalf("expected error status, got %+v", resp)
	}
	if !strings.Contains(resp.Error, "unsupported language") {
		t.Fatalf("unexpected error message: %q", resp.Error)
	}
	if calls := upstream.calls(); len(calls) != 0 {
		t.Fatalf("expected no upstream calls, got %d", len(calls))
	}
}

func TestTranslateUpstreamError(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{status: http.StatusTooManyRequests, body: `{"message":"Quota exceeded"}`}
	translator, _ := newTestTranslator(t, upstream)

	resp, err := translator.Translate(context.Background(), "Hello", "en", "es")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if resp.Status != provider.StatusError {
		t.Fatalf("expected error status, got %+v", resp)
	}
	if !strings.Contains(resp.Error, "DeepL API error") || !strings.Contains(resp.Error, "Quota exceeded") {
		t.Fatalf("unexpected error message: %q", resp.Error)
	}
	if resp.CharCount != len("Hello") {
		t.Fatalf("unexpected char count: %d", resp.CharCount)
	}
}

func TestBulkTranslateScattersAroundEmpties(t *testing.T) {
	t.Parallel()

	payload := map[string]any{
		"translations": []map[string]any{
			{"text": "Hola", "detected_source_language": "EN"},
			{"text": "Mundo", "detected_source_language": "EN"},
		},
	}
	encoded, _ := json.Marshal(payload)
	upstream := &stubUpstream{body: string(encoded)}
	translator, _ := newTestTranslator(t, upstream)

	responses, err := translator.BulkTranslate(context.Background(), []string{"Hello", "", "World"}, "en", "es")
	if err != nil {
		t.Fatalf("bulk translate: %v", err)
	}
	if len(responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(responses))
	}
	if responses[0].TranslatedText != "Hola" || responses[2].TranslatedText != "Mundo" {
		t.Fatalf("results out of order: %+v", responses)
	}
	if responses[1].TranslatedText != "" || responses[1].Status != provider.StatusSuccess || responses[1].CharCount != 0 {
		t.Fatalf("unexpected response for empty input: %+v", responses[1])
	}

	calls := upstream.calls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", len(calls))
	}
	sent, ok := calls[0].Payload["text"].([]any)
	if !ok || len(sent) != 2 {
		t.Fatalf("expected two texts on the wire, got %v", calls[0].Payload["text"])
	}
	if sent[0] != "Hello" || sent[1] != "World" {
		t.Fatalf("unexpected wire texts: %v", sent)
	}
}

func TestBulkTranslateEmptyInput(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{}
	translator, _ := newTestTranslator(t, upstream)

	responses, err := translator.BulkTranslate(context.Background(), nil, "en", "es")
	if err != nil {
		t.Fatalf("bulk translate: %v", err)
	}
	if len(responses) != 0 {
		t.Fatalf("expected empty result, got %d", len(responses))
	}

	responses, err = translator.BulkTranslate(context.Background(), []string{"", "  "}, "en", "es")
	if err != nil {
		t.Fatalf("bulk translate: %v", err)
	}
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	for i, resp := range responses {
		if resp.Status != provider.StatusSuccess || resp.CharCount != 0 {
			t.Fatalf("unexpected response %d: %+v", i, resp)
		}
	}
	if calls := upstream.calls(); len(calls) != 0 {
		t.Fatalf("expected no upstream calls, got %d", len(calls))
	}
}

func TestBulkTranslateUpstreamErrorFailsWholeBatch(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{status: http.StatusBadGateway, body: `{"message":"backend unavailable"}`}
	translator, _ := newTestTranslator(t, upstream)

	texts := []string{"Hello", "", "World!"}
	responses, err := translator.BulkTranslate(context.Background(), texts, "en", "es")
	if err != nil {
		t.Fatalf("bulk translate: %v", err)
	}
	if len(responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(responses))
	}
	for i, resp := range responses {
		if resp.Status != provider.StatusError {
			t.Fatalf("expected error status at %d, got %+v", i, resp)
		}
		if resp.CharCount != len(texts[i]) {
			t.Fatalf("expected char count %d at %d, got %d", len(texts[i]), i, resp.CharCount)
		}
		if !strings.Contains(resp.Error, "DeepL API error") {
			t.Fatalf("unexpected error message: %q", resp.Error)
		}
	}
}

func TestTranslateDirect(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{body: singleTranslationBody("Bonjour", "EN")}
	translator, _ := newTestTranslator(t, upstream)

	resp, err := translator.TranslateDirect(context.Background(), "Hello", "en", "fr")
	if err != nil {
		t.Fatalf("translate direct: %v", err)
	}
	if resp.Status != provider.StatusSuccess || resp.TranslatedText != "Bonjour" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	responses, err := translator.BulkTranslateDirect(context.Background(), []string{"Hello"}, "en", "fr")
	if err != nil {
		t.Fatalf("bulk translate direct: %v", err)
	}
	if len(responses) != 1 || responses[0].TranslatedText != "Bonjour" {
		t.Fatalf("unexpected bulk response: %+v", responses)
	}
}

func TestSupportedLanguages(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{body: `[{"language":"EN","name":"English"},{"language":"ES","name":"Spanish"}]`}
	translator, _ := newTestTranslator(t, upstream)

	languages := translator.SupportedLanguages(context.Background())
	if len(languages.Source) != 2 || languages.Source[0] != "en" {
		t.Fatalf("unexpected source languages: %v", languages.Source)
	}
	if len(languages.Target) != 2 || languages.Target[1] != "es" {
		t.Fatalf("unexpected target languages: %v", languages.Target)
	}
}

func TestSupportedLanguagesFallback(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{status: http.StatusInternalServerError, body: `{"message":"boom"}`}
	translator, _ := newTestTranslator(t, upstream)

	languages := translator.SupportedLanguages(context.Background())
	if len(languages.Source) == 0 || len(languages.Target) == 0 {
		t.Fatalf("expected fallback language lists, got %+v", languages)
	}
	if languages.Source[0] != "en" {
		t.Fatalf("unexpected fallback source list: %v", languages.Source)
	}
}

func TestGetUsage(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{body: `{"character_count":12345,"character_limit":500000}`}
	translator, _ := newTestTranslator(t, upstream)

	usage := translator.GetUsage(context.Background())
	if !usage.Known {
		t.Fatalf("expected usage to be known")
	}
	if usage.CharacterCount != 12345 || usage.CharacterLimit != 500000 {
		t.Fatalf("unexpected usage: %+v", usage)
	}
}

func TestGetUsageDegradesToZero(t *testing.T) {
	t.Parallel()

	upstream := &stubUpstream{status: http.StatusForbidden, body: `{"message":"bad key"}`}
	translator, _ := newTestTranslator(t, upstream)

	usage := translator.GetUsage(context.Background())
	if usage.Known {
		t.Fatalf("expected unknown usage on failure, got %+v", usage)
	}
	if usage != (provider.Usage{}) {
		t.Fatalf("expected zero usage, got %+v", usage)
	}
}

func TestCapabilities(t *testing.T) {
	t.Parallel()

	translator := New(provider.Config{APIKey: "key"}, Options{Logger: zerolog.Nop()})
	caps := translator.Capabilities()
	if caps.Name != "deepl" || !caps.SupportsAsync || caps.RequiresRegion {
		t.Fatalf("unexpected capabilities: %+v", caps)
	}
	if caps.MaxChunkSize != 30000 {
		t.Fatalf("unexpected chunk size: %d", caps.MaxChunkSize)
	}
	if caps.MinHostVersion != "0.1.8" {
		t.Fatalf("unexpected host version: %q", caps.MinHostVersion)
	}
}
