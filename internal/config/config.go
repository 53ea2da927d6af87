// Package config loads the labelctl configuration: TOML file settings
// layered over built-in defaults, with environment overrides on top.
// Only keys the file actually defines replace defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/rubdev/labelctl/internal/discovery"
	"github.com/rubdev/labelctl/internal/transport"
	"github.com/rubdev/labelctl/internal/workflow"
)

// Config is the resolved application configuration.
type Config struct {
	Address   string
	Port      int
	Preferred discovery.Kind
	Hosts     []string
	Workflow  workflow.Options
	Transport transport.TCPConfig
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Port:      transport.NativePort,
		Preferred: discovery.KindNetwork,
		Workflow:  workflow.DefaultOptions(),
		Transport: transport.DefaultTCPConfig(),
	}
}

type fileConfig struct {
	Address     string   `toml:"address"`
	Port        int      `toml:"port"`
	Transport   string   `toml:"transport"`
	Hosts       []string `toml:"hosts"`
	MaxAttempts int      `toml:"max_attempts"`
	RetryDelay  string   `toml:"retry_delay"`
	IOTimeout   string   `toml:"io_timeout"`
	AutoCorrect bool     `toml:"auto_correct"`
	FixPaused   bool     `toml:"fix_paused"`
	FixErrors   bool     `toml:"fix_errors"`
	FixMedia    bool     `toml:"fix_media"`
	FixLanguage bool     `toml:"fix_language"`
}

type envConfig struct {
	Address   string `env:"LABELCTL_ADDRESS"`
	Transport string `env:"LABELCTL_TRANSPORT"`
}

// Load reads path (optional) and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		var raw fileConfig
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		if meta.IsDefined("address") {
			cfg.Address = strings.TrimSpace(raw.Address)
		}
		if meta.IsDefined("port") && raw.Port > 0 {
			cfg.Port = raw.Port
			cfg.Transport.Port = raw.Port
		}
		if meta.IsDefined("transport") {
			kind, err := ParseKind(raw.Transport)
			if err != nil {
				return Config{}, err
			}
			cfg.Preferred = kind
		}
		if meta.IsDefined("hosts") {
			cfg.Hosts = normalizeHosts(raw.Hosts)
		}
		if meta.IsDefined("max_attempts") && raw.MaxAttempts > 0 {
			cfg.Workflow.MaxAttempts = raw.MaxAttempts
		}
		if meta.IsDefined("retry_delay") {
			d, err := time.ParseDuration(strings.TrimSpace(raw.RetryDelay))
			if err != nil {
				return Config{}, fmt.Errorf("parse retry_delay: %w", err)
			}
			cfg.Workflow.RetryDelay = d
		}
		if meta.IsDefined("io_timeout") {
			d, err := time.ParseDuration(strings.TrimSpace(raw.IOTimeout))
			if err != nil {
				return Config{}, fmt.Errorf("parse io_timeout: %w", err)
			}
			cfg.Transport.IOTimeout = d
		}
		if meta.IsDefined("auto_correct") {
			cfg.Workflow.AutoCorrect = raw.AutoCorrect
		}
		if meta.IsDefined("fix_paused") {
			cfg.Workflow.Readiness.FixPaused = raw.FixPaused
		}
		if meta.IsDefined("fix_errors") {
			cfg.Workflow.Readiness.FixErrors = raw.FixErrors
		}
		if meta.IsDefined("fix_media") {
			cfg.Workflow.Readiness.FixMedia = raw.FixMedia
		}
		if meta.IsDefined("fix_language") {
			cfg.Workflow.Readiness.FixLanguage = raw.FixLanguage
		}
	}

	var overrides envConfig
	if err := env.Parse(&overrides); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if v := strings.TrimSpace(overrides.Address); v != "" {
		cfg.Address = v
	}
	if v := strings.TrimSpace(overrides.Transport); v != "" {
		kind, err := ParseKind(v)
		if err != nil {
			return Config{}, err
		}
		cfg.Preferred = kind
	}
	return cfg, nil
}

// ParseKind maps a user-facing transport name onto a discovery kind.
func ParseKind(raw string) (discovery.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "network", "wifi", "tcp":
		return discovery.KindNetwork, nil
	case "bluetooth", "bt":
		return discovery.KindBluetooth, nil
	default:
		return "", fmt.Errorf("unknown transport %q", raw)
	}
}

func normalizeHosts(in []string) []string {
	out := make([]string, 0, len(in))
	for _, h := range in {
		v := strings.TrimSpace(h)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
