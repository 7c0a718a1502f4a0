// Package payloadschema validates inbound translate payloads against an
// embedded JSON schema before they reach a handler.
package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"horse.fit/mtbridge/internal/language"
)

//go:embed translate_request.schema.json
var translateRequestSchemaJSON string

// TranslateRequest is a validated translate payload. Exactly one of Text
// and Texts is set: Text selects the single operation, Texts the bulk one.
type TranslateRequest struct {
	Text       *string  `json:"text,omitempty"`
	Texts      []string `json:"texts,omitempty"`
	SourceLang string   `json:"source_lang,omitempty"`
	TargetLang string   `json:"target_lang"`
	Direct     bool     `json:"direct,omitempty"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateTranslateRequest strict-decodes and schema-validates a raw
// translate payload, then canonicalizes its language tags.
func ValidateTranslateRequest(payload json.RawMessage) (*TranslateRequest, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var request TranslateRequest
	if err := json.Unmarshal(normalized, &request); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := canonicalizeLanguages(&request); err != nil {
		return nil, err
	}

	return &request, nil
}

func canonicalizeLanguages(request *TranslateRequest) error {
	if request == nil {
		return fmt.Errorf("payload is nil")
	}

	target := language.CanonicalTag(request.TargetLang)
	if target == "" || target == language.Auto {
		return fmt.Errorf("target_lang %q is not a usable language tag", request.TargetLang)
	}
	request.TargetLang = target

	source := strings.TrimSpace(request.SourceLang)
	if source == "" {
		request.SourceLang = language.Auto
		return nil
	}
	canonical := language.CanonicalTag(source)
	if canonical == "" {
		return fmt.Errorf("source_lang %q is not a usable language tag", request.SourceLang)
	}
	request.SourceLang = canonical
	return nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("translate_request.schema.json", strings.NewReader(translateRequestSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("translate_request.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}
