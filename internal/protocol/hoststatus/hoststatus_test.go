package hoststatus

import "testing"

func TestParseFieldsHealthy(t *testing.T) {
	info := ParseFields("0,0,0,0,0,0,0,0,0,0,0,0")
	if !info.IsOK {
		t.Fatalf("expected healthy report, got %+v", info)
	}
	if !info.HasCode || info.Code != 0 {
		t.Fatalf("expected primary code 0, got %+v", info)
	}
	if info.Message != "" {
		t.Fatalf("healthy report must carry no message, got %q", info.Message)
	}
}

func TestParseFieldsHardwareError(t *testing.T) {
	info := ParseFields("159,0,0,2030,000,0,0,0,000,0,0,0")
	if info.IsOK {
		t.Fatalf("expected unhealthy report")
	}
	if info.Code != 159 {
		t.Fatalf("expected code 159, got %d", info.Code)
	}
	if info.Message != "Hardware error detected" {
		t.Fatalf("unexpected message: %q", info.Message)
	}
	if !info.HeadOpen {
		t.Fatalf("field 3 nonzero must flag head open")
	}
}

func TestParseFieldsShortReport(t *testing.T) {
	info := ParseFields("1,1")
	if info.IsOK {
		t.Fatalf("expected unhealthy report")
	}
	if !info.PaperOut {
		t.Fatalf("expected paper-out flag")
	}
	// Fields beyond the supplied length are absent, not faults.
	if info.RibbonOut || info.HeadOpen || info.HeadCold || info.HeadTooHot {
		t.Fatalf("absent fields must not flag: %+v", info)
	}
}

func TestParseFieldsGarbage(t *testing.T) {
	info := ParseFields("not,a,status")
	if info.HasCode {
		t.Fatalf("garbage primary field must not produce a code")
	}
	if info.IsOK {
		t.Fatalf("undecodable report must not read healthy")
	}
}

func TestMessageForUnknownCode(t *testing.T) {
	if got := MessageForCode(7777); got != "Unknown error code: 7777" {
		t.Fatalf("unexpected unknown-code message: %q", got)
	}
}

func TestParseFreeText(t *testing.T) {
	cases := []struct {
		in   string
		want Condition
	}{
		{"OK", ConditionHealthy},
		{"Ready", ConditionHealthy},
		{"printer is NORMAL", ConditionHealthy},
		{"idle", ConditionHealthy},
		{"PAPER OUT", ConditionPaper},
		{"ribbon low", ConditionRibbon},
		{"Head Open", ConditionHead},
		{"device paused", ConditionPaused},
		{"???", ConditionUnknown},
		{"", ConditionUnknown},
	}
	for _, tc := range cases {
		if got := ParseFreeText(tc.in); got != tc.want {
			t.Fatalf("ParseFreeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseDispatch(t *testing.T) {
	if info := Parse("0,0,0"); !info.IsOK {
		t.Fatalf("field-encoded healthy report expected")
	}
	if info := Parse("ready"); !info.IsOK {
		t.Fatalf("free-text healthy report expected")
	}
	if info := Parse("paper out"); !info.PaperOut {
		t.Fatalf("free-text paper fault expected")
	}
}

func TestParseBool(t *testing.T) {
	cases := []struct {
		in    string
		want  bool
		known bool
	}{
		{"On", true, true},
		{"  TRUE ", true, true},
		{"yes", true, true},
		{"Disabled", false, true},
		{"off", false, true},
		{"0", false, true},
		{"maybe", false, false},
		{"", false, false},
	}
	for _, tc := range cases {
		got, known := ParseBool(tc.in)
		if known != tc.known || (known && got != tc.want) {
			t.Fatalf("ParseBool(%q) = (%v, %v), want (%v, %v)", tc.in, got, known, tc.want, tc.known)
		}
	}
}

func TestExtractNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"error 42 occurred", 42, true},
		{"tone=-12.5", -12.5, true},
		{"12.", 12, true},
		{"no digits here", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ExtractNumber(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("ExtractNumber(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
