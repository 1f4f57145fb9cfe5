package model

import "strings"

// AutoLanguage asks an engine to detect the spoken language.
const AutoLanguage = "auto"

// ExplicitLanguage returns the language code to send to an API, or "" when
// lang asks for detection.
func ExplicitLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if strings.EqualFold(lang, AutoLanguage) {
		return ""
	}
	return lang
}
