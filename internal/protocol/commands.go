package protocol

import "fmt"

// Fixed control commands the printers accept outside the SGD template.
var (
	CmdClearErrors = []byte("~JA")
	CmdCalibrate   = []byte("~jc^xa^jus^xz")
	CmdClearBuffer = []byte{0x18}
	CmdFlushBuffer = []byte{0x03}
)

// Unpause builds the command that clears the device pause flag.
func Unpause() []byte {
	return Setvar(KeyPause, "false")
}

// SwitchLanguage builds the command that reconfigures the active payload
// language. Returns nil for LanguageUnknown.
func SwitchLanguage(lang Language) []byte {
	if lang == LanguageUnknown || lang == "" {
		return nil
	}
	return Setvar(KeyLanguages, string(lang))
}

// MediaType selects one of the supported media handling presets.
type MediaType string

const (
	MediaTypeLabel     MediaType = "label"
	MediaTypeBlackMark MediaType = "blackmark"
	MediaTypeJournal   MediaType = "journal"
)

// MediaTypeCommands builds the setvar batch configuring the printer for
// the given media preset. Label and black-mark presets include a
// calibration pass. Unknown presets yield nil.
func MediaTypeCommands(mt MediaType) []byte {
	switch mt {
	case MediaTypeLabel:
		out := Setvar(KeyMediaType, "label")
		out = append(out, Setvar(KeySenseMode, "gap")...)
		out = append(out, CmdCalibrate...)
		return out
	case MediaTypeBlackMark:
		out := Setvar(KeyMediaType, "label")
		out = append(out, Setvar(KeySenseMode, "bar")...)
		out = append(out, CmdCalibrate...)
		return out
	case MediaTypeJournal:
		out := Setvar(KeyTone, "0")
		out = append(out, Setvar(KeyMediaType, "journal")...)
		return out
	default:
		return nil
	}
}

const (
	// MinDarkness and MaxDarkness bound the print.tone range the target
	// printer family accepts.
	MinDarkness = 0
	MaxDarkness = 30
)

// DarknessCommand builds the print tone setting, or nil when tone is out
// of range.
func DarknessCommand(tone int) []byte {
	if tone < MinDarkness || tone > MaxDarkness {
		return nil
	}
	return Setvar(KeyTone, fmt.Sprintf("%d", tone))
}
