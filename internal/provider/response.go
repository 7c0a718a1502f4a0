package provider

// Status reports whether a translation succeeded.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Metadata carries provider-reported details for a successful translation.
// Every field has a defined default; providers fill what they know.
type Metadata struct {
	DetectedLanguage string  `json:"detected_language,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`
	Provider         string  `json:"provider,omitempty"`
	Model            string  `json:"model,omitempty"`
	BilledCharacters int     `json:"billed_characters,omitempty"`
}

// Response is the uniform translation result envelope. SourceLang and
// TargetLang echo the caller's codes unmapped, and CharCount always
// reflects the original input, even on error.
type Response struct {
	TranslatedText string    `json:"translated_text"`
	Status         Status    `json:"status"`
	SourceLang     string    `json:"source_lang"`
	TargetLang     string    `json:"target_lang"`
	CharCount      int       `json:"char_count"`
	Metadata       *Metadata `json:"metadata,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// NewResponse builds a success response.
func NewResponse(translated, sourceLang, targetLang string, charCount int, metadata *Metadata) Response {
	return Response{
		TranslatedText: translated,
		Status:         StatusSuccess,
		SourceLang:     sourceLang,
		TargetLang:     targetLang,
		CharCount:      charCount,
		Metadata:       metadata,
	}
}

// NewErrorResponse builds an error response carrying the original input's
// char count and a human-readable message.
func NewErrorResponse(sourceLang, targetLang string, charCount int, message string) Response {
	return Response{
		Status:     StatusError,
		SourceLang: sourceLang,
		TargetLang: targetLang,
		CharCount:  charCount,
		Error:      message,
	}
}
