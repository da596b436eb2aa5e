// Package assist implements the AI-backed reading services: page
// translation and the book chat assistant.
package assist

import "sort"

// LanguageOriginal is the sentinel code meaning "do not translate".
const LanguageOriginal = "ORIGINAL"

// languageNames maps supported language codes to display names used in
// translation prompts. Codes outside the table pass through verbatim.
var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"pa": "Punjabi",
	"ar": "Arabic",
	"fr": "French",
	"es": "Spanish",
	"ta": "Tamil",
	"te": "Telugu",
	"bn": "Bengali",
	"mr": "Marathi",
	"gu": "Gujarati",
	"ru": "Russian",
	"ko": "Korean",
	"ml": "Malayalam",
	"nl": "Dutch",
	"ur": "Urdu",
	"ja": "Japanese",
	"zh": "Chinese (Simplified)",
}

// LanguageName returns the display name for a language code.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// LanguageSupported reports whether code is a known target language.
func LanguageSupported(code string) bool {
	_, ok := languageNames[code]
	return ok
}

// SupportedLanguages returns the codes of all supported target
// languages in stable order.
func SupportedLanguages() []string {
	codes := make([]string, 0, len(languageNames))
	for code := range languageNames {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
