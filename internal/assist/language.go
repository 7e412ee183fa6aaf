package assist

import (
	wl "github.com/abadojack/whatlanggo"
)

// LanguageAuto asks the service to detect the query language.
const LanguageAuto = "auto"

// DetectLanguage resolves the response language for a query. Unknown or
// unreliable detections default to English.
func DetectLanguage(text string) string {
	info := wl.Detect(text)
	if !info.IsReliable() {
		return "English"
	}

	switch info.Lang {
	case wl.Hin:
		return "Hindi"
	case wl.Tam:
		return "Tamil"
	case wl.Tel:
		return "Telugu"
	case wl.Ben:
		return "Bengali"
	case wl.Mar:
		return "Marathi"
	case wl.Urd:
		return "Urdu"
	default:
		return "English"
	}
}
