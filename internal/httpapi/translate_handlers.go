package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/mtbridge/internal/chunker"
	"horse.fit/mtbridge/internal/history"
	"horse.fit/mtbridge/internal/langdetect"
	"horse.fit/mtbridge/internal/language"
	"horse.fit/mtbridge/internal/payloadschema"
	"horse.fit/mtbridge/internal/provider"
	"horse.fit/mtbridge/internal/reader"
)

const maxRequestBodyBytes = 4 << 20

type detectRequest struct {
	Text string `json:"text"`
}

type translateURLRequest struct {
	URL        string `json:"url"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang"`
}

func (s *Server) handleTranslate(c echo.Context) error {
	req, err := s.readTranslatePayload(c)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}
	if req.Text == nil {
		return failValidation(c, map[string]string{"text": "is required; use /translate/bulk for texts"})
	}

	ctx := c.Request().Context()

	if !req.Direct {
		if cached, found := s.lookupHistory(c, *req.Text, req.TargetLang, req.SourceLang); found {
			return success(c, map[string]any{
				"result": cached,
				"cached": true,
			})
		}
	}

	translate := s.translator.Translate
	if req.Direct {
		translate = s.translator.TranslateDirect
	}

	resp, err := translate(ctx, *req.Text, req.SourceLang, req.TargetLang)
	if err != nil {
		if errors.Is(err, provider.ErrMissingAPIKey) {
			return providerUnavailable(c)
		}
		s.logger.Error().Err(err).Msg("translate failed")
		return internalError(c, "Failed to translate text")
	}

	if !req.Direct {
		s.saveHistory(c, *req.Text, resp)
	}

	return success(c, map[string]any{
		"result": resp,
		"cached": false,
	})
}

func (s *Server) handleBulkTranslate(c echo.Context) error {
	req, err := s.readTranslatePayload(c)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}
	if req.Texts == nil {
		return failValidation(c, map[string]string{"texts": "is required; use /translate for a single text"})
	}

	translate := s.translator.BulkTranslate
	if req.Direct {
		translate = s.translator.BulkTranslateDirect
	}

	responses, err := translate(c.Request().Context(), req.Texts, req.SourceLang, req.TargetLang)
	if err != nil {
		if errors.Is(err, provider.ErrMissingAPIKey) {
			return providerUnavailable(c)
		}
		s.logger.Error().Err(err).Msg("bulk translate failed")
		return internalError(c, "Failed to translate texts")
	}

	return success(c, map[string]any{
		"results": responses,
		"count":   len(responses),
	})
}

func (s *Server) handleTranslateURL(c echo.Context) error {
	var req translateURLRequest
	if err := decodeJSONBody(c, &req); err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	fieldErrors := map[string]string{}
	if strings.TrimSpace(req.URL) == "" {
		fieldErrors["url"] = "is required"
	}
	targetLang := language.CanonicalTag(req.TargetLang)
	if targetLang == "" || targetLang == language.Auto {
		fieldErrors["target_lang"] = "must be a usable language tag"
	}
	sourceLang := language.Auto
	if trimmed := strings.TrimSpace(req.SourceLang); trimmed != "" {
		sourceLang = language.CanonicalTag(trimmed)
		if sourceLang == "" {
			fieldErrors["source_lang"] = "must be a usable language tag"
		}
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	ctx := c.Request().Context()
	text, err := reader.FetchText(ctx, req.URL)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", req.URL).Msg("document fetch failed")
		return fail(c, http.StatusBadGateway, "Failed to fetch document", nil)
	}

	paragraphs := chunker.SplitParagraphs(text)
	if len(paragraphs) == 0 {
		return fail(c, http.StatusUnprocessableEntity, "Document contains no readable text", nil)
	}

	caps := s.translator.Capabilities()
	chunks := chunker.SplitByChars(paragraphs, caps.MaxChunkSize)

	translated := make([]string, 0, len(paragraphs))
	detectedLanguage := ""
	charCount := 0
	failedParagraphs := 0

	for _, chunk := range chunks {
		responses, err := s.translator.BulkTranslate(ctx, chunk, sourceLang, targetLang)
		if err != nil {
			if errors.Is(err, provider.ErrMissingAPIKey) {
				return providerUnavailable(c)
			}
			s.logger.Error().Err(err).Msg("document translate failed")
			return internalError(c, "Failed to translate document")
		}

		for i, resp := range responses {
			charCount += resp.CharCount
			if resp.Status != provider.StatusSuccess {
				// Keep the original paragraph so the document stays whole.
				failedParagraphs++
				translated = append(translated, chunk[i])
				continue
			}
			if detectedLanguage == "" && resp.Metadata != nil {
				detectedLanguage = resp.Metadata.DetectedLanguage
			}
			translated = append(translated, resp.TranslatedText)
		}
	}

	return success(c, map[string]any{
		"url":               req.URL,
		"translated_text":   strings.Join(translated, "\n\n"),
		"source_lang":       sourceLang,
		"target_lang":       targetLang,
		"detected_language": detectedLanguage,
		"paragraphs":        len(paragraphs),
		"failed_paragraphs": failedParagraphs,
		"char_count":        charCount,
	})
}

func (s *Server) handleDetect(c echo.Context) error {
	var req detectRequest
	if err := decodeJSONBody(c, &req); err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}
	if strings.TrimSpace(req.Text) == "" {
		return failValidation(c, map[string]string{"text": "is required"})
	}

	code := langdetect.DetectISO6391(req.Text)
	return success(c, map[string]any{
		"language": code,
		"reliable": code != "",
	})
}

func (s *Server) handleLanguages(c echo.Context) error {
	languages := s.translator.SupportedLanguages(c.Request().Context())
	return success(c, map[string]any{
		"languages": languages,
	})
}

func (s *Server) handleUsage(c echo.Context) error {
	usage := s.translator.GetUsage(c.Request().Context())
	return success(c, map[string]any{
		"usage": usage,
	})
}

func (s *Server) readTranslatePayload(c echo.Context) (*payloadschema.TranslateRequest, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxRequestBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return payloadschema.ValidateTranslateRequest(body)
}

func (s *Server) lookupHistory(c echo.Context, text, targetLang, sourceLang string) (*provider.Response, bool) {
	caps := s.translator.Capabilities()
	record, err := s.history.Lookup(c.Request().Context(), text, caps.Name, targetLang)
	if err != nil {
		s.logger.Warn().Err(err).Msg("history lookup failed")
		return nil, false
	}
	if record == nil {
		return nil, false
	}

	resp := provider.NewResponse(record.TranslatedText, sourceLang, targetLang, record.CharCount, &provider.Metadata{
		DetectedLanguage: record.DetectedLanguage,
		Confidence:       1.0,
		Provider:         caps.Name,
	})
	return &resp, true
}

func (s *Server) saveHistory(c echo.Context, text string, resp provider.Response) {
	if resp.Status != provider.StatusSuccess || strings.TrimSpace(text) == "" {
		return
	}

	record := history.RecordFromResponse(resp)
	if err := s.history.Save(c.Request().Context(), text, record); err != nil {
		s.logger.Warn().Err(err).Msg("history save failed")
	}
}

func decodeJSONBody(c echo.Context, target any) error {
	decoder := json.NewDecoder(io.LimitReader(c.Request().Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if decoder.More() {
		return fmt.Errorf("request body contains trailing content")
	}
	return nil
}
