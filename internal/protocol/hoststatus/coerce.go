package hoststatus

import (
	"strconv"
	"strings"
)

// trueWords and falseWords are the accepted boolean spellings, matched
// case- and whitespace-insensitively.
var (
	trueWords  = []string{"true", "on", "yes", "enabled", "enable", "1", "y"}
	falseWords = []string{"false", "off", "no", "disabled", "disable", "0", "n"}
)

// ParseBool coerces a printer-reported boolean. The second return is
// false for anything outside the known vocabulary; that is an explicit
// unknown, not an error.
func ParseBool(raw string) (bool, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, w := range trueWords {
		if s == w {
			return true, true
		}
	}
	for _, w := range falseWords {
		if s == w {
			return false, true
		}
	}
	return false, false
}

// ExtractNumber returns the first signed integer or decimal substring in
// raw, or false when none exists.
func ExtractNumber(raw string) (float64, bool) {
	start := -1
	seenDot := false
	for i := 0; i <= len(raw); i++ {
		var c byte
		if i < len(raw) {
			c = raw[i]
		}
		switch {
		case c >= '0' && c <= '9':
			if start < 0 {
				start = i
				seenDot = false
				if i > 0 && raw[i-1] == '-' {
					start = i - 1
				}
			}
		case c == '.' && start >= 0 && !seenDot:
			seenDot = true
		default:
			if start >= 0 {
				candidate := strings.TrimSuffix(raw[start:i], ".")
				if n, err := strconv.ParseFloat(candidate, 64); err == nil {
					return n, true
				}
				start = -1
			}
		}
	}
	return 0, false
}
