// Package logging centralizes zerolog configuration for runtime and
// tests, with environment overrides.
package logging

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is the env-driven logging configuration.
type Config struct {
	Level     string `env:"LABELCTL_LOG_LEVEL" envDefault:"info"`
	Timestamp bool   `env:"LABELCTL_LOG_TIMESTAMP" envDefault:"true"`
	NoColor   bool   `env:"LABELCTL_LOG_NOCOLOR"`
}

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

var configureOnce sync.Once

func ConfigureRuntime(app string) zerolog.Logger {
	return Configure(app, ProfileRuntime)
}

func ConfigureTests() zerolog.Logger {
	return Configure("labelctl-test", ProfileTest)
}

// Configure builds the process logger once and installs it as the
// zerolog global. Later calls return the global unchanged.
func Configure(app string, profile Profile) zerolog.Logger {
	configureOnce.Do(func() {
		cfg := defaultConfig(profile)
		if err := env.Parse(&cfg); err != nil {
			cfg = defaultConfig(profile)
		}
		output := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.NoColor,
		}
		logger := zerolog.New(output).Level(parseLevel(cfg.Level))
		if cfg.Timestamp {
			logger = logger.With().Timestamp().Logger()
		}
		log.Logger = logger.With().Str("app", app).Logger()
	})
	return log.Logger
}

func defaultConfig(profile Profile) Config {
	switch profile {
	case ProfileTest:
		return Config{Level: "debug", Timestamp: false, NoColor: true}
	default:
		return Config{Level: "info", Timestamp: true}
	}
}

func parseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
