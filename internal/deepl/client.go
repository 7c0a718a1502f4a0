package deepl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	baseURLFree = "https://api-free.deepl.com"
	baseURLPro  = "https://api.deepl.com"
)

// apiClient is a thin DeepL REST client. The adapter keeps one lazily
// built instance for the shared path and builds a throwaway one per call
// for the direct path.
type apiClient struct {
	httpClient *http.Client
	baseURL    string
	authKey    string
	userAgent  string
}

func newAPIClient(baseURL, authKey, userAgent string, timeout time.Duration, transport http.RoundTripper) *apiClient {
	return &apiClient{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		authKey:   authKey,
		userAgent: userAgent,
	}
}

type wireTranslation struct {
	Text                   string `json:"text"`
	DetectedSourceLanguage string `json:"detected_source_language"`
}

type wireTranslateRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
	SourceLang string   `json:"source_lang,omitempty"`
}

type wireTranslateResponse struct {
	Translations []wireTranslation `json:"translations"`
}

type wireLanguage struct {
	Language string `json:"language"`
	Name     string `json:"name"`
}

// wireUsage mirrors /v2/usage. Fields beyond the character counters only
// appear for some account types; missing fields default to zero.
type wireUsage struct {
	CharacterCount        int64 `json:"character_count"`
	CharacterLimit        int64 `json:"character_limit"`
	CharacterLimitReached bool  `json:"character_limit_reached"`
	DocumentCount         int64 `json:"document_count"`
	DocumentLimit         int64 `json:"document_limit"`
	TeamDocumentCount     int64 `json:"team_document_count"`
	TeamDocumentLimit     int64 `json:"team_document_limit"`
}

type wireError struct {
	Message string `json:"message"`
}

// translate POSTs one batch to /v2/translate. An empty sourceLang omits
// source_lang from the body, which asks DeepL to auto-detect.
func (c *apiClient) translate(ctx context.Context, texts []string, sourceLang, targetLang string) ([]wireTranslation, error) {
	body, err := json.Marshal(wireTranslateRequest{
		Text:       texts,
		TargetLang: targetLang,
		SourceLang: sourceLang,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal translate request: %w", err)
	}

	var parsed wireTranslateResponse
	if err := c.postJSON(ctx, "/v2/translate", body, &parsed); err != nil {
		return nil, err
	}
	return parsed.Translations, nil
}

// languages lists supported codes; kind is "source" or "target".
func (c *apiClient) languages(ctx context.Context, kind string) ([]string, error) {
	var parsed []wireLanguage
	endpoint := "/v2/languages?type=" + url.QueryEscape(kind)
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(parsed))
	for _, lang := range parsed {
		code := strings.ToLower(strings.TrimSpace(lang.Language))
		if code == "" {
			continue
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func (c *apiClient) usage(ctx context.Context) (wireUsage, error) {
	var parsed wireUsage
	if err := c.getJSON(ctx, "/v2/usage", &parsed); err != nil {
		return wireUsage{}, err
	}
	return parsed, nil
}

func (c *apiClient) postJSON(ctx context.Context, endpoint string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *apiClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *apiClient) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.authKey)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload wireError
		if unmarshalErr := json.Unmarshal(respBody, &payload); unmarshalErr == nil {
			if msg := strings.TrimSpace(payload.Message); msg != "" {
				return fmt.Errorf("deepl status %d: %s", resp.StatusCode, msg)
			}
		}
		return fmt.Errorf("deepl status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
