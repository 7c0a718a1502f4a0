package deepl

import (
	"strings"

	"horse.fit/mtbridge/internal/provider"
)

// supportedLanguageMap maps caller locale codes to the exact codes the
// DeepL API expects. Keys are lowercase base codes plus the region
// variants DeepL distinguishes.
var supportedLanguageMap = map[string]string{
	"ar":      "AR",
	"bg":      "BG",
	"cs":      "CS",
	"da":      "DA",
	"de":      "DE",
	"el":      "EL",
	"en":      "EN",
	"en-GB":   "EN-GB",
	"en-US":   "EN-US",
	"es":      "ES",
	"es-419":  "ES-419",
	"et":      "ET",
	"fi":      "FI",
	"fr":      "FR",
	"he":      "HE",
	"hu":      "HU",
	"id":      "ID",
	"it":      "IT",
	"ja":      "JA",
	"ko":      "KO",
	"lt":      "LT",
	"lv":      "LV",
	"nb":      "NB",
	"nl":      "NL",
	"pl":      "PL",
	"pt":      "PT",
	"pt-BR":   "PT-BR",
	"pt-PT":   "PT-PT",
	"ro":      "RO",
	"ru":      "RU",
	"sk":      "SK",
	"sl":      "SL",
	"sv":      "SV",
	"th":      "TH",
	"tr":      "TR",
	"uk":      "UK",
	"vi":      "VI",
	"zh":      "ZH",
	"zh-HANS": "ZH-HANS",
	"zh-HANT": "ZH-HANT",
}

// fallbackLanguages is returned by SupportedLanguages when the remote
// language listing is unavailable.
var fallbackLanguages = provider.Languages{
	Source: []string{"en", "de", "fr", "es", "pt", "it", "ru", "ja", "zh", "pl", "nl", "sv", "da", "no", "fi"},
	Target: []string{"en-us", "en-gb", "de", "fr", "es", "pt-pt", "pt-br", "it", "ru", "ja", "zh", "pl", "nl", "sv", "da", "no", "fi"},
}

// rootLangCode strips the region qualifier: "en-US" becomes "en". Codes
// without a hyphen are returned unchanged, case included.
func rootLangCode(code string) string {
	if strings.Contains(code, "-") {
		return strings.ToLower(strings.SplitN(code, "-", 2)[0])
	}
	return code
}

func mapLanguageCode(code string) (string, error) {
	if mapped, ok := supportedLanguageMap[code]; ok {
		return mapped, nil
	}
	return "", &provider.UnsupportedLanguageError{Code: code}
}

// mapSourceLang maps a source code for the wire. The "auto" sentinel
// returns an empty string, which omits source_lang from the request and
// lets DeepL detect the language. Source codes always go through the
// root-code lookup.
func mapSourceLang(sourceLang string) (string, error) {
	if sourceLang == autoSourceLang {
		return "", nil
	}
	return mapLanguageCode(rootLangCode(sourceLang))
}

// mapTargetLang maps a target code for the wire. Unlike sources, targets
// try the exact code first and only then fall back to the root code, so a
// region-qualified target still resolves when only the base language is
// supported.
func mapTargetLang(targetLang string) (string, error) {
	mapped, err := mapLanguageCode(targetLang)
	if err == nil {
		return mapped, nil
	}
	return mapLanguageCode(rootLangCode(targetLang))
}
