// Package discovery models candidate printers and picks a default target
// by scoring them against selection history and preferences.
package discovery

import "strings"

// Kind is the transport family a device was found on.
type Kind string

const (
	KindBluetooth Kind = "bluetooth"
	KindNetwork   Kind = "network"
)

// State distinguishes a merely-discovered device from a live link.
type State string

const (
	StateDiscovered State = "discovered"
	StateConnected  State = "connected"
)

// Device is one discovered printer candidate.
type Device struct {
	Address string
	Name    string
	Model   string
	Kind    Kind
	State   State
}

// SameDevice reports address equality, the device identity used for
// history and previous-selection matching.
func SameDevice(a, b Device) bool {
	return a.Address != "" && strings.EqualFold(a.Address, b.Address)
}

// KindOf infers the transport family from an address shape. Bluetooth
// targets are MAC-style colon-separated addresses; everything else is
// treated as a network host.
func KindOf(address string) Kind {
	if strings.Count(address, ":") >= 5 {
		return KindBluetooth
	}
	return KindNetwork
}
