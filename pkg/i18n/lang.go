package i18n

import (
	"golang.org/x/text/language"
)

// maxAcceptLanguageLength bounds the header parsed per request.
const maxAcceptLanguageLength = 4096

// Match negotiates an Accept-Language header (or a single language code)
// against the loaded languages and returns the best supported code.
// Unparseable or unmatched input yields the default language.
func (t *Translator) Match(header string) string {
	if header == "" {
		return t.defaultLang
	}
	if len(header) > maxAcceptLanguageLength {
		header = header[:maxAcceptLanguageLength]
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return t.defaultLang
	}

	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return t.defaultLang
	}
	return t.langs[idx]
}
