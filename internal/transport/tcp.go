package transport

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rubdev/labelctl/internal/faults"
	"github.com/rubdev/labelctl/internal/protocol"
)

const (
	// NativePort is the raw TCP port of the supported label printers;
	// GenericPort is the conventional raw printing port.
	NativePort  = 6101
	GenericPort = 9100
)

// TCPConfig bounds dialing and per-call I/O.
type TCPConfig struct {
	Port        int
	DialTimeout time.Duration
	IOTimeout   time.Duration
	ReadBuffer  int
}

func DefaultTCPConfig() TCPConfig {
	return TCPConfig{
		Port:        NativePort,
		DialTimeout: 5 * time.Second,
		IOTimeout:   3 * time.Second,
		ReadBuffer:  4096,
	}
}

// TCP is a Transport over a raw printer socket. Calls serialize on one
// connection; timeouts apply per call, not across callers.
type TCP struct {
	cfg TCPConfig
	log zerolog.Logger

	mu   sync.Mutex
	conn net.Conn
}

func NewTCP(cfg TCPConfig, log zerolog.Logger) *TCP {
	if cfg.Port == 0 {
		cfg.Port = NativePort
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultTCPConfig().DialTimeout
	}
	if cfg.IOTimeout <= 0 {
		cfg.IOTimeout = DefaultTCPConfig().IOTimeout
	}
	if cfg.ReadBuffer <= 0 {
		cfg.ReadBuffer = DefaultTCPConfig().ReadBuffer
	}
	return &TCP{cfg: cfg, log: log.With().Str("component", "transport").Logger()}
}

func (t *TCP) Connect(ctx context.Context, address string) error {
	addr := withDefaultPort(address, t.cfg.Port)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}

	dialer := net.Dialer{Timeout: t.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		code := faults.CodeConnectionFailed
		if faults.IsTimeout(err) {
			code = faults.CodeConnectionTimeout
		}
		return faults.Wrap(code, err, "connect %s", addr).WithHint(faults.HintFor(code))
	}
	t.conn = conn
	t.log.Debug().Str("addr", addr).Msg("connected")
	return nil
}

func (t *TCP) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	if err != nil {
		return faults.Wrap(faults.CodeConnectionLost, err, "disconnect")
	}
	t.log.Debug().Msg("disconnected")
	return nil
}

func (t *TCP) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

func (t *TCP) Query(ctx context.Context, key string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return "", faults.New(faults.CodeNotConnected, "query %q without connection", key).
			WithHint(faults.HintFor(faults.CodeNotConnected))
	}

	deadline := t.deadline(ctx)
	if err := t.conn.SetDeadline(deadline); err != nil {
		return "", faults.Wrap(faults.CodePlatformFailure, err, "set deadline")
	}
	if _, err := t.conn.Write(protocol.Getvar(key)); err != nil {
		return "", t.ioFault(err, "query write %q", key)
	}

	buf := make([]byte, t.cfg.ReadBuffer)
	n, err := t.conn.Read(buf)
	if err != nil && n == 0 {
		return "", t.ioFault(err, "query read %q", key)
	}
	return strings.TrimRight(string(buf[:n]), "\x00"), nil
}

func (t *TCP) SendRaw(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return faults.New(faults.CodeNotConnected, "send without connection").
			WithHint(faults.HintFor(faults.CodeNotConnected))
	}
	if err := t.conn.SetWriteDeadline(t.deadline(ctx)); err != nil {
		return faults.Wrap(faults.CodePlatformFailure, err, "set deadline")
	}
	if _, err := t.conn.Write(data); err != nil {
		return t.ioFault(err, "send %d bytes", len(data))
	}
	return nil
}

func (t *TCP) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(t.cfg.IOTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return deadline
}

func (t *TCP) ioFault(err error, format string, args ...any) *faults.Fault {
	code := faults.CodeConnectionLost
	if faults.IsTimeout(err) {
		code = faults.CodeConnectionTimeout
	}
	return faults.Wrap(code, err, format, args...).WithHint(faults.HintFor(code))
}

func withDefaultPort(address string, port int) string {
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	return net.JoinHostPort(address, strconv.Itoa(port))
}
