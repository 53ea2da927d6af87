package protocol

import (
	"bytes"
	"testing"
)

func TestGetvarWireFormat(t *testing.T) {
	got := Getvar("device.languages")
	want := []byte("! U1 getvar \"device.languages\"\r\n")
	if !bytes.Equal(got, want) {
		t.Fatalf("getvar wire mismatch: %q", got)
	}
}

func TestSetvarWireFormat(t *testing.T) {
	got := Setvar("device.pause", "false")
	want := []byte("! U1 setvar \"device.pause\" \"false\"\r\n")
	if !bytes.Equal(got, want) {
		t.Fatalf("setvar wire mismatch: %q", got)
	}
}

func TestDoWireFormat(t *testing.T) {
	got := Do("device.reset", "")
	want := []byte("! U1 do \"device.reset\" \"\"\r\n")
	if !bytes.Equal(got, want) {
		t.Fatalf("do wire mismatch: %q", got)
	}
}

func TestParseResponse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare quoted", "\"zpl\"", "zpl"},
		{"key value pair", "\"device.languages\" : \"zpl\"", "zpl"},
		{"unquoted literal", "  ready  ", "ready"},
		{"empty", "", ""},
		{"nul padded", "\"ok\"\x00\x00", "ok"},
		{"tight pair", "\"media.status\":\"ready\"", "ready"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseResponse(tc.in); got != tc.want {
				t.Fatalf("ParseResponse(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		name string
		body string
		want Language
	}{
		{"zpl format block", "^XA^FO50,50^FDHello^FS^XZ", LanguageZPL},
		{"zpl graphic", "~DGR:SAMPLE.GRF,08000,010,...", LanguageZPL},
		{"cpcl block", "! 0 200 200 210 1\r\nTEXT 4 0 30 40 Hello\r\nPRINT\r\n", LanguageCPCL},
		{"sgd prefixed", "! U1 setvar \"device.languages\" \"zpl\"\r\n", LanguageCPCL},
		{"plain text", "hello world", LanguageUnknown},
		{"empty", "", LanguageUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectLanguage([]byte(tc.body)); got != tc.want {
				t.Fatalf("DetectLanguage = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeLanguage(t *testing.T) {
	if got := NormalizeLanguage("hybrid_xml_zpl"); got != LanguageZPL {
		t.Fatalf("hybrid should normalize to zpl, got %q", got)
	}
	if got := NormalizeLanguage("line_print"); got != LanguageCPCL {
		t.Fatalf("line_print should normalize to cpcl, got %q", got)
	}
	if got := NormalizeLanguage("epl"); got != LanguageUnknown {
		t.Fatalf("epl should be unknown, got %q", got)
	}
}

func TestControlCommands(t *testing.T) {
	if !bytes.Equal(Unpause(), Setvar(KeyPause, "false")) {
		t.Fatalf("unpause must set device.pause false")
	}
	if string(CmdClearErrors) != "~JA" {
		t.Fatalf("clear errors literal mismatch: %q", CmdClearErrors)
	}
	if !bytes.Equal(CmdClearBuffer, []byte{0x18}) {
		t.Fatalf("clear buffer byte mismatch: %v", CmdClearBuffer)
	}
	if !bytes.Equal(CmdFlushBuffer, []byte{0x03}) {
		t.Fatalf("flush buffer byte mismatch: %v", CmdFlushBuffer)
	}
	if string(CmdCalibrate) != "~jc^xa^jus^xz" {
		t.Fatalf("calibrate literal mismatch: %q", CmdCalibrate)
	}
}

func TestMediaTypeCommands(t *testing.T) {
	label := MediaTypeCommands(MediaTypeLabel)
	if !bytes.Contains(label, Setvar(KeySenseMode, "gap")) {
		t.Fatalf("label preset must select gap sensing")
	}
	if !bytes.Contains(label, CmdCalibrate) {
		t.Fatalf("label preset must calibrate")
	}
	bar := MediaTypeCommands(MediaTypeBlackMark)
	if !bytes.Contains(bar, Setvar(KeySenseMode, "bar")) {
		t.Fatalf("black-mark preset must select bar sensing")
	}
	journal := MediaTypeCommands(MediaTypeJournal)
	if !bytes.Contains(journal, Setvar(KeyMediaType, "journal")) {
		t.Fatalf("journal preset must set journal media")
	}
	if got := MediaTypeCommands(MediaType("bogus")); got != nil {
		t.Fatalf("unknown preset must yield nil, got %q", got)
	}
}

func TestDarknessCommand(t *testing.T) {
	if got := DarknessCommand(15); !bytes.Equal(got, Setvar(KeyTone, "15")) {
		t.Fatalf("darkness command mismatch: %q", got)
	}
	if got := DarknessCommand(-1); got != nil {
		t.Fatalf("out-of-range darkness must yield nil")
	}
	if got := DarknessCommand(31); got != nil {
		t.Fatalf("out-of-range darkness must yield nil")
	}
}
