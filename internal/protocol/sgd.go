package protocol

import (
	"fmt"
	"strings"
)

// Well-known SGD parameter keys.
const (
	KeyPause      = "device.pause"
	KeyLanguages  = "device.languages"
	KeyHostStatus = "device.host_status"
	KeyMediaRaw   = "media.status"
	KeyHeadLatch  = "head.latch"
	KeyTone       = "print.tone"
	KeyMediaType  = "media.type"
	KeySenseMode  = "media.sense_mode"
	KeyFriendly   = "device.friendly_name"
)

const terminator = "\r\n"

// Getvar builds an SGD read command for key.
func Getvar(key string) []byte {
	return []byte(fmt.Sprintf("! U1 getvar \"%s\"%s", key, terminator))
}

// Setvar builds an SGD write command assigning value to key.
func Setvar(key, value string) []byte {
	return []byte(fmt.Sprintf("! U1 setvar \"%s\" \"%s\"%s", key, value, terminator))
}

// Do builds an SGD action command.
func Do(action, value string) []byte {
	return []byte(fmt.Sprintf("! U1 do \"%s\" \"%s\"%s", action, value, terminator))
}

// ParseResponse unwraps an SGD reply. Replies are either a bare quoted
// value or a `"key" : "value"` pair; only the value survives. Malformed
// input degrades to the trimmed literal, never an error.
func ParseResponse(raw string) string {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), "\x00"))
	if s == "" {
		return ""
	}
	if idx := strings.Index(s, "\" : \""); idx >= 0 {
		s = s[idx+len("\" : \""):]
	} else if idx := strings.Index(s, "\":\""); idx >= 0 {
		s = s[idx+len("\":\""):]
	}
	s = strings.Trim(s, "\"")
	return strings.TrimSpace(s)
}
