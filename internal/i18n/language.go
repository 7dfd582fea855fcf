package i18n

import "strings"

const (
	LangEN = "en"
	LangRU = "ru"

	DefaultLanguage = LangEN
)

var supportedLanguages = map[string]struct{}{
	LangEN: {},
	LangRU: {},
}

// NormalizeLanguage maps a raw language tag ("ru-RU", "EN", ...) to a
// supported language, falling back to the default.
func NormalizeLanguage(raw string) string {
	normalized := normalizeLanguageTag(raw)
	if _, ok := supportedLanguages[normalized]; ok {
		return normalized
	}
	return DefaultLanguage
}

// DetectFromAcceptLanguage picks the first supported language from an
// Accept-Language header value.
func DetectFromAcceptLanguage(raw string) string {
	for _, part := range strings.Split(raw, ",") {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		token = strings.TrimSpace(strings.Split(token, ";")[0])
		normalized := normalizeLanguageTag(token)
		if _, ok := supportedLanguages[normalized]; ok {
			return normalized
		}
	}
	return DefaultLanguage
}

func normalizeLanguageTag(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if tag == "" {
		return ""
	}
	if separator := strings.IndexAny(tag, "-_"); separator > 0 {
		tag = tag[:separator]
	}
	return tag
}
