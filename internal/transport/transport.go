// Package transport defines the byte-shipping boundary the orchestration
// core speaks through, plus the TCP implementation for network printers.
package transport

import "context"

// Transport is the narrow device boundary. Implementations return
// bridged faults, never panic, and keep at most one open link.
type Transport interface {
	Connect(ctx context.Context, address string) error
	Disconnect() error
	IsConnected() bool
	// Query writes the SGD read command for key and returns the raw
	// reply text, unparsed.
	Query(ctx context.Context, key string) (string, error)
	SendRaw(ctx context.Context, data []byte) error
}
