package discovery

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ProbeConfig bounds the network liveness sweep.
type ProbeConfig struct {
	Ports   []int
	Timeout time.Duration
	// MaxParallel caps concurrent dials; zero means one per candidate.
	MaxParallel int
}

func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Ports:   []int{6101, 9100},
		Timeout: 750 * time.Millisecond,
	}
}

// ProbeNetwork checks candidate host addresses for an open printer port
// and returns the reachable ones as discovered network devices. Probe
// failures are silent; an unreachable candidate is simply absent from
// the result.
func ProbeNetwork(ctx context.Context, hosts []string, cfg ProbeConfig, log zerolog.Logger) []Device {
	if len(cfg.Ports) == 0 {
		cfg.Ports = DefaultProbeConfig().Ports
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultProbeConfig().Timeout
	}
	limit := cfg.MaxParallel
	if limit <= 0 {
		limit = len(hosts)
	}
	if limit == 0 {
		return nil
	}

	sem := make(chan struct{}, limit)
	results := make([]Device, len(hosts))
	found := make([]bool, len(hosts))
	var wg sync.WaitGroup

	for i, host := range hosts {
		wg.Add(1)
		go func(i int, host string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if d, ok := probeHost(ctx, host, cfg); ok {
				results[i] = d
				found[i] = true
			}
		}(i, host)
	}
	wg.Wait()

	out := make([]Device, 0, len(hosts))
	for i := range results {
		if found[i] {
			out = append(out, results[i])
		}
	}
	log.Debug().Int("candidates", len(hosts)).Int("found", len(out)).Msg("network probe done")
	return out
}

func probeHost(ctx context.Context, host string, cfg ProbeConfig) (Device, bool) {
	dialer := net.Dialer{Timeout: cfg.Timeout}
	for _, port := range cfg.Ports {
		if ctx.Err() != nil {
			return Device{}, false
		}
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			continue
		}
		_ = conn.Close()
		return Device{
			Address: host,
			Name:    host,
			Kind:    KindNetwork,
			State:   StateDiscovered,
		}, true
	}
	return Device{}, false
}
