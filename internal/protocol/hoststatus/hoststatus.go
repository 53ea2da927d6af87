// Package hoststatus decodes printer health reports, both the free-text
// and the comma-separated field-encoded shapes.
package hoststatus

import (
	"strconv"
	"strings"
)

// Positional layout of the field-encoded host status report.
const (
	fieldPrimaryCode = 0
	fieldPaperOut    = 1
	fieldRibbonOut   = 2
	fieldHeadOpen    = 3
	fieldHeadCold    = 4
	fieldHeadTooHot  = 5
)

// Info is a decoded host status report.
type Info struct {
	IsOK       bool
	Code       int
	HasCode    bool
	Message    string
	PaperOut   bool
	RibbonOut  bool
	HeadOpen   bool
	HeadCold   bool
	HeadTooHot bool
	Fields     []string
}

// errorMessages maps known non-zero primary codes to canonical messages.
// The table is a minimum for the supported printer family; extending it
// does not change the parsing algorithm.
var errorMessages = map[int]string{
	1:   "Media out",
	2:   "Ribbon out",
	3:   "Print head open",
	4:   "Cutter fault",
	5:   "Print head over temperature",
	6:   "Motor over temperature",
	7:   "Print head under temperature",
	8:   "Power supply fault",
	11:  "Media low",
	12:  "Ribbon low",
	159: "Hardware error detected",
}

// MessageForCode returns the canonical message for a primary error code.
func MessageForCode(code int) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "Unknown error code: " + strconv.Itoa(code)
}

// ParseFields decodes a comma-separated host status report. Fields beyond
// the supplied length are absent, not erroneous; a report with no usable
// primary code yields a zero Info with the raw fields attached.
func ParseFields(raw string) Info {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(strings.Trim(strings.TrimSpace(p), "\""))
	}
	info := Info{Fields: parts}

	if len(parts) > fieldPrimaryCode {
		if code, ok := parseIntField(parts[fieldPrimaryCode]); ok {
			info.Code = code
			info.HasCode = true
			info.IsOK = code == 0
			if code != 0 {
				info.Message = MessageForCode(code)
			}
		}
	}
	info.PaperOut = flagAt(parts, fieldPaperOut)
	info.RibbonOut = flagAt(parts, fieldRibbonOut)
	info.HeadOpen = flagAt(parts, fieldHeadOpen)
	info.HeadCold = flagAt(parts, fieldHeadCold)
	info.HeadTooHot = flagAt(parts, fieldHeadTooHot)
	return info
}

func flagAt(parts []string, idx int) bool {
	if idx >= len(parts) {
		return false
	}
	n, ok := parseIntField(parts[idx])
	return ok && n != 0
}

func parseIntField(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Condition is the outcome of a free-text health report.
type Condition string

const (
	ConditionHealthy Condition = "healthy"
	ConditionPaper   Condition = "paper_fault"
	ConditionRibbon  Condition = "ribbon_fault"
	ConditionHead    Condition = "head_fault"
	ConditionPaused  Condition = "paused"
	ConditionUnknown Condition = "unknown"
)

// freeTextVocabulary is checked in order; the first containment match
// wins. Healthy words are listed last so a fault keyword in the same
// response takes precedence.
var freeTextVocabulary = []struct {
	keyword   string
	condition Condition
}{
	{"paper out", ConditionPaper},
	{"paper", ConditionPaper},
	{"media out", ConditionPaper},
	{"ribbon", ConditionRibbon},
	{"head open", ConditionHead},
	{"head", ConditionHead},
	{"pause", ConditionPaused},
	{"ok", ConditionHealthy},
	{"ready", ConditionHealthy},
	{"normal", ConditionHealthy},
	{"idle", ConditionHealthy},
}

// ParseFreeText matches a free-text health response against the known
// vocabulary, case-insensitively. Unmatched input is ConditionUnknown.
func ParseFreeText(raw string) Condition {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ConditionUnknown
	}
	for _, entry := range freeTextVocabulary {
		if strings.Contains(s, entry.keyword) {
			return entry.condition
		}
	}
	return ConditionUnknown
}

// Parse decodes a host status response of either shape. Field-encoded
// input is recognized by a leading numeric field; everything else goes
// through the free-text vocabulary.
func Parse(raw string) Info {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, ",") {
		first := strings.TrimSpace(strings.SplitN(s, ",", 2)[0])
		if _, ok := parseIntField(strings.Trim(first, "\"")); ok {
			return ParseFields(s)
		}
	}
	switch ParseFreeText(s) {
	case ConditionHealthy:
		return Info{IsOK: true, Fields: []string{s}}
	case ConditionPaper:
		return Info{PaperOut: true, Message: MessageForCode(1), Fields: []string{s}}
	case ConditionRibbon:
		return Info{RibbonOut: true, Message: MessageForCode(2), Fields: []string{s}}
	case ConditionHead:
		return Info{HeadOpen: true, Message: MessageForCode(3), Fields: []string{s}}
	case ConditionPaused:
		return Info{Message: "Printer is paused", Fields: []string{s}}
	default:
		return Info{Fields: []string{s}}
	}
}
