package protocol

import "strings"

// Language identifies a printer payload language.
type Language string

const (
	LanguageZPL     Language = "zpl"
	LanguageCPCL    Language = "line_print"
	LanguageUnknown Language = "unknown"
)

// zplMarkers appear in ZPL format streams; cpclMarkers open CPCL blocks.
var (
	zplMarkers  = []string{"^XA", "~DG", "^FO", "^XZ"}
	cpclMarkers = []string{"! 0", "! U1", "! UTILITIES"}
)

// DetectLanguage scans body for language-specific markers and reports
// which payload language it belongs to, or LanguageUnknown when neither
// marker family is present.
func DetectLanguage(body []byte) Language {
	if len(body) == 0 {
		return LanguageUnknown
	}
	s := strings.ToUpper(strings.TrimSpace(string(body)))
	for _, m := range cpclMarkers {
		if strings.HasPrefix(s, m) {
			return LanguageCPCL
		}
	}
	for _, m := range zplMarkers {
		if strings.Contains(s, m) {
			return LanguageZPL
		}
	}
	if strings.HasPrefix(s, "^") || strings.HasPrefix(s, "~") {
		return LanguageZPL
	}
	return LanguageUnknown
}

// NormalizeLanguage maps a device.languages value onto a Language. The
// hybrid modes accept ZPL, so they normalize to it.
func NormalizeLanguage(value string) Language {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "":
		return LanguageUnknown
	case strings.Contains(v, "zpl"):
		return LanguageZPL
	case strings.Contains(v, "line_print"), strings.Contains(v, "cpcl"):
		return LanguageCPCL
	default:
		return LanguageUnknown
	}
}
