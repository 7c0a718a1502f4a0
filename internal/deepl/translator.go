// Package deepl adapts the DeepL HTTP API to the host translation-provider
// contract.
package deepl

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"horse.fit/mtbridge/internal/metrics"
	"horse.fit/mtbridge/internal/provider"
)

const (
	ProviderName = "deepl"

	autoSourceLang = "auto"
	modelName      = "deepl-api"

	// MaxChunkSize is DeepL's character limit per request.
	MaxChunkSize = 30000

	defaultTimeout = 30 * time.Second
)

const (
	opTranslate           = "translate"
	opBulkTranslate       = "bulk_translate"
	opTranslateDirect     = "translate_direct"
	opBulkTranslateDirect = "bulk_translate_direct"
)

// RateLimitConfig bounds outbound request rate client-side. Disabled by
// default; DeepL enforces its own quota either way.
type RateLimitConfig struct {
	Enabled   bool
	RefillTPS float64
	Burst     int
}

func (c RateLimitConfig) newLimiter() *rate.Limiter {
	if !c.Enabled || c.RefillTPS <= 0 {
		return nil
	}
	burst := c.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(c.RefillTPS), burst)
}

// Options carries optional adapter collaborators.
type Options struct {
	Logger    zerolog.Logger
	RateLimit RateLimitConfig
}

// Translator implements provider.Translator against the DeepL API.
//
// Translate and BulkTranslate reuse one lazily built client handle.
// The Direct variants open a fresh transport per call and release it when
// the call returns. The adapter is not safe for concurrent use beyond
// that handle's own guarantees; wrap it if callers share one instance.
type Translator struct {
	cfg     provider.Config
	logger  zerolog.Logger
	limiter *rate.Limiter

	isFreeAPI bool
	baseURL   string

	clientOnce sync.Once
	client     *apiClient
}

// New records the configuration and derives the endpoint tier. The API
// key is not validated here; a missing key surfaces on first use.
func New(cfg provider.Config, opts Options) *Translator {
	t := &Translator{
		cfg:       cfg,
		logger:    opts.Logger.With().Str("provider", ProviderName).Logger(),
		limiter:   opts.RateLimit.newLimiter(),
		isFreeAPI: isFreeAPIKey(cfg.APIKey),
	}
	t.baseURL = baseURLPro
	if t.isFreeAPI {
		t.baseURL = baseURLFree
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		t.baseURL = strings.TrimRight(endpoint, "/")
	}
	return t
}

// isFreeAPIKey reports whether the key belongs to the free tier; DeepL
// marks those with a ":fx" suffix.
func isFreeAPIKey(apiKey string) bool {
	return strings.HasSuffix(apiKey, ":fx")
}

// IsFreeAPI reports the tier derived from the API key.
func (t *Translator) IsFreeAPI() bool {
	return t.isFreeAPI
}

// BaseURL returns the resolved API base URL.
func (t *Translator) BaseURL() string {
	return t.baseURL
}

func (t *Translator) Capabilities() provider.Capabilities {
	return provider.Capabilities{
		Name:           ProviderName,
		SupportsAsync:  true,
		RequiresRegion: false,
		MinHostVersion: provider.HostVersion,
		MaxChunkSize:   MaxChunkSize,
	}
}

func (t *Translator) timeout() time.Duration {
	if t.cfg.Timeout > 0 {
		return t.cfg.Timeout
	}
	return defaultTimeout
}

// sharedClient builds the reusable client handle on first use.
func (t *Translator) sharedClient() *apiClient {
	t.clientOnce.Do(func() {
		t.client = newAPIClient(t.baseURL, t.cfg.APIKey, provider.UserAgent(), t.timeout(), nil)
	})
	return t.client
}

// directClient builds a client with its own transport. The returned
// release func must run when the call finishes so idle connections do not
// accumulate across invocations.
func (t *Translator) directClient() (*apiClient, func()) {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	client := newAPIClient(t.baseURL, t.cfg.APIKey, provider.UserAgent(), t.timeout(), transport)
	return client, transport.CloseIdleConnections
}

func (t *Translator) checkAPIKey() error {
	if strings.TrimSpace(t.cfg.APIKey) == "" {
		return provider.ErrMissingAPIKey
	}
	return nil
}

// Translate translates one text through the shared client handle.
func (t *Translator) Translate(ctx context.Context, text, sourceLang, targetLang string) (provider.Response, error) {
	if err := t.checkAPIKey(); err != nil {
		return provider.Response{}, err
	}
	resp := t.translateOne(ctx, t.sharedClient(), opTranslate, text, sourceLang, targetLang)
	return resp, nil
}

// TranslateDirect translates one text over a per-call transport.
func (t *Translator) TranslateDirect(ctx context.Context, text, sourceLang, targetLang string) (provider.Response, error) {
	if err := t.checkAPIKey(); err != nil {
		return provider.Response{}, err
	}
	client, release := t.directClient()
	defer release()
	resp := t.translateOne(ctx, client, opTranslateDirect, text, sourceLang, targetLang)
	return resp, nil
}

// BulkTranslate translates many texts with at most one upstream call,
// preserving input order and length.
func (t *Translator) BulkTranslate(ctx context.Context, texts []string, sourceLang, targetLang string) ([]provider.Response, error) {
	if err := t.checkAPIKey(); err != nil {
		return nil, err
	}
	return t.translateBatch(ctx, t.sharedClient(), opBulkTranslate, texts, sourceLang, targetLang), nil
}

// BulkTranslateDirect is BulkTranslate over a per-call transport.
func (t *Translator) BulkTranslateDirect(ctx context.Context, texts []string, sourceLang, targetLang string) ([]provider.Response, error) {
	if err := t.checkAPIKey(); err != nil {
		return nil, err
	}
	client, release := t.directClient()
	defer release()
	return t.translateBatch(ctx, client, opBulkTranslateDirect, texts, sourceLang, targetLang), nil
}

func (t *Translator) translateOne(ctx context.Context, client *apiClient, op, text, sourceLang, targetLang string) provider.Response {
	if strings.TrimSpace(text) == "" {
		return t.record(op, emptyResponse(sourceLang, targetLang))
	}

	charCount := utf8.RuneCountInString(text)
	if charCount > MaxChunkSize {
		err := &provider.TextTooLongError{Length: charCount, Limit: MaxChunkSize}
		return t.record(op, provider.NewErrorResponse(sourceLang, targetLang, charCount, err.Error()))
	}

	sourceMapped, targetMapped, err := mapLanguagePair(sourceLang, targetLang)
	if err != nil {
		return t.record(op, provider.NewErrorResponse(sourceLang, targetLang, charCount, err.Error()))
	}

	if err := t.wait(ctx); err != nil {
		return t.record(op, provider.NewErrorResponse(sourceLang, targetLang, charCount, err.Error()))
	}

	results, err := client.translate(ctx, []string{text}, sourceMapped, targetMapped)
	if err != nil {
		t.onUpstreamFailure(op, err)
		return t.record(op, provider.NewErrorResponse(sourceLang, targetLang, charCount, "DeepL API error: "+err.Error()))
	}
	metrics.ProviderUp.WithLabelValues(ProviderName).Set(1)

	if len(results) == 0 {
		return t.record(op, provider.NewErrorResponse(sourceLang, targetLang, charCount, "DeepL API error: response contained no translations"))
	}
	return t.record(op, successResponse(results[0], text, sourceLang, targetLang))
}

func (t *Translator) translateBatch(ctx context.Context, client *apiClient, op string, texts []string, sourceLang, targetLang string) []provider.Response {
	if len(texts) == 0 {
		return []provider.Response{}
	}

	responses := make([]provider.Response, len(texts))

	// Filter out blank and oversized inputs, remembering where the rest
	// came from so results scatter back to their original positions.
	indices := make([]int, 0, len(texts))
	valid := make([]string, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			responses[i] = emptyResponse(sourceLang, targetLang)
			continue
		}
		if charCount := utf8.RuneCountInString(text); charCount > MaxChunkSize {
			err := &provider.TextTooLongError{Length: charCount, Limit: MaxChunkSize}
			responses[i] = provider.NewErrorResponse(sourceLang, targetLang, charCount, err.Error())
			continue
		}
		indices = append(indices, i)
		valid = append(valid, text)
	}

	if len(valid) == 0 {
		return t.recordAll(op, responses)
	}

	sourceMapped, targetMapped, err := mapLanguagePair(sourceLang, targetLang)
	if err != nil {
		return t.recordAll(op, failBatch(responses, texts, sourceLang, targetLang, err.Error()))
	}

	if err := t.wait(ctx); err != nil {
		return t.recordAll(op, failBatch(responses, texts, sourceLang, targetLang, err.Error()))
	}

	results, err := client.translate(ctx, valid, sourceMapped, targetMapped)
	if err != nil {
		t.onUpstreamFailure(op, err)
		return t.recordAll(op, failBatch(responses, texts, sourceLang, targetLang, "DeepL API error: "+err.Error()))
	}
	metrics.ProviderUp.WithLabelValues(ProviderName).Set(1)

	if len(results) != len(valid) {
		msg := "DeepL API error: response translation count does not match request"
		return t.recordAll(op, failBatch(responses, texts, sourceLang, targetLang, msg))
	}

	for i, result := range results {
		original := indices[i]
		responses[original] = successResponse(result, texts[original], sourceLang, targetLang)
	}
	return t.recordAll(op, responses)
}

// failBatch converts the entire batch into error responses: the upstream
// call is atomic across the batch, so a single fault fails every input,
// each keeping its own char count.
func failBatch(responses []provider.Response, texts []string, sourceLang, targetLang, message string) []provider.Response {
	for i := range responses {
		responses[i] = provider.NewErrorResponse(sourceLang, targetLang, utf8.RuneCountInString(texts[i]), message)
	}
	return responses
}

func mapLanguagePair(sourceLang, targetLang string) (string, string, error) {
	sourceMapped, err := mapSourceLang(sourceLang)
	if err != nil {
		return "", "", err
	}
	targetMapped, err := mapTargetLang(targetLang)
	if err != nil {
		return "", "", err
	}
	return sourceMapped, targetMapped, nil
}

func (t *Translator) wait(ctx context.Context) error {
	if t.limiter == nil {
		return nil
	}
	return t.limiter.Wait(ctx)
}

func (t *Translator) onUpstreamFailure(op string, err error) {
	metrics.ProviderUp.WithLabelValues(ProviderName).Set(0)
	t.logger.Error().Err(err).Str("operation", op).Msg("deepl request failed")
}

func (t *Translator) record(op string, resp provider.Response) provider.Response {
	billed := 0
	if resp.Metadata != nil {
		billed = resp.Metadata.BilledCharacters
	}
	metrics.RecordResponse(op, string(resp.Status), billed)
	return resp
}

func (t *Translator) recordAll(op string, responses []provider.Response) []provider.Response {
	for _, resp := range responses {
		t.record(op, resp)
	}
	return responses
}

func emptyResponse(sourceLang, targetLang string) provider.Response {
	return provider.NewResponse("", sourceLang, targetLang, 0, nil)
}

func successResponse(result wireTranslation, original, sourceLang, targetLang string) provider.Response {
	detected := sourceLang
	if result.DetectedSourceLanguage != "" {
		detected = strings.ToLower(result.DetectedSourceLanguage)
	}

	charCount := utf8.RuneCountInString(original)
	return provider.NewResponse(result.Text, sourceLang, targetLang, charCount, &provider.Metadata{
		DetectedLanguage: detected,
		Confidence:       1.0, // DeepL does not report confidence scores.
		Provider:         ProviderName,
		Model:            modelName,
		BilledCharacters: charCount,
	})
}

// SupportedLanguages queries DeepL's language listings. It never fails
// visibly: when the service is unreachable it degrades to a fixed
// fallback list.
func (t *Translator) SupportedLanguages(ctx context.Context) provider.Languages {
	client := t.sharedClient()

	source, err := client.languages(ctx, "source")
	if err != nil {
		t.logger.Warn().Err(err).Msg("language listing failed, using fallback")
		return fallbackLanguages
	}
	target, err := client.languages(ctx, "target")
	if err != nil {
		t.logger.Warn().Err(err).Msg("language listing failed, using fallback")
		return fallbackLanguages
	}

	return provider.Languages{Source: source, Target: target}
}

// GetUsage queries quota consumption. On failure it returns the zero
// Usage with Known=false instead of an error.
func (t *Translator) GetUsage(ctx context.Context) provider.Usage {
	usage, err := t.sharedClient().usage(ctx)
	if err != nil {
		t.logger.Warn().Err(err).Msg("usage query failed")
		return provider.Usage{}
	}

	return provider.Usage{
		CharacterCount:        usage.CharacterCount,
		CharacterLimit:        usage.CharacterLimit,
		CharacterLimitReached: usage.CharacterLimitReached,
		DocumentCount:         usage.DocumentCount,
		DocumentLimit:         usage.DocumentLimit,
		TeamDocumentCount:     usage.TeamDocumentCount,
		TeamDocumentLimit:     usage.TeamDocumentLimit,
		Known:                 true,
	}
}
