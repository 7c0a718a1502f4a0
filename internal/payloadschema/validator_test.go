package payloadschema

import (
	"encoding/json"
	"testing"
)

func TestValidateTranslateRequestSingle(t *testing.T) {
	t.Parallel()

	request, err := ValidateTranslateRequest(json.RawMessage(`{"text":"Hello","target_lang":"ES"}`))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if request.Text == nil || *request.Text != "Hello" {
		t.Fatalf("unexpected text: %v", request.Text)
	}
	if request.TargetLang != "es" {
		t.Fatalf("expected canonical target, got %q", request.TargetLang)
	}
	if request.SourceLang != "auto" {
		t.Fatalf("expected auto source default, got %q", request.SourceLang)
	}
}

func TestValidateTranslateRequestBulk(t *testing.T) {
	t.Parallel()

	request, err := ValidateTranslateRequest(json.RawMessage(`{"texts":["a","","b"],"source_lang":"EN_us","target_lang":"pt_br"}`))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if request.Text != nil {
		t.Fatalf("did not expect single text: %v", *request.Text)
	}
	if len(request.Texts) != 3 {
		t.Fatalf("unexpected texts: %v", request.Texts)
	}
	if request.SourceLang != "en-US" || request.TargetLang != "pt-BR" {
		t.Fatalf("unexpected canonical tags: %q -> %q", request.SourceLang, request.TargetLang)
	}
}

func TestValidateTranslateRequestRejects(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing target":     `{"text":"Hello"}`,
		"missing text forms": `{"target_lang":"es"}`,
		"both text forms":    `{"text":"a","texts":["b"],"target_lang":"es"}`,
		"unknown field":      `{"text":"a","target_lang":"es","mode":"fast"}`,
		"auto target":        `{"text":"a","target_lang":"auto"}`,
		"malformed tag":      `{"text":"a","target_lang":"e!"}`,
		"trailing content":   `{"text":"a","target_lang":"es"} {}`,
		"empty payload":      ``,
	}
	for name, payload := range cases {
		if _, err := ValidateTranslateRequest(json.RawMessage(payload)); err == nil {
			t.Fatalf("%s: expected validation error for %s", name, payload)
		}
	}
}

func TestValidateTranslateRequestAllowsEmptyText(t *testing.T) {
	t.Parallel()

	request, err := ValidateTranslateRequest(json.RawMessage(`{"text":"","target_lang":"es"}`))
	if err != nil {
		t.Fatalf("empty text must be valid (it yields an empty success response): %v", err)
	}
	if request.Text == nil || *request.Text != "" {
		t.Fatalf("unexpected text: %v", request.Text)
	}
}

func TestValidateTranslateRequestDirectFlag(t *testing.T) {
	t.Parallel()

	request, err := ValidateTranslateRequest(json.RawMessage(`{"text":"a","target_lang":"es","direct":true}`))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !request.Direct {
		t.Fatalf("expected direct flag to survive validation")
	}

	if _, err := ValidateTranslateRequest(json.RawMessage(`{"text":"a","target_lang":"es","direct":"yes"}`)); err == nil {
		t.Fatalf("expected non-boolean direct to fail")
	}
}
