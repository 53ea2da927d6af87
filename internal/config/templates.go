package config

import (
	"fmt"
	"os"
)

// Template returns the annotated starter configuration.
func Template() string {
	return configTemplate
}

// WriteTemplate writes the starter configuration to path. An existing
// file is preserved unless overwrite is set.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(configTemplate), 0o600)
}

const configTemplate = `# labelctl configuration

# Default printer address. A bare host gains the default port.
address = "10.0.0.20"

# Raw printing port: 6101 for the native printer port, 9100 generic.
port = 6101

# Preferred transport for device selection: network | bluetooth
transport = "network"

# Candidate hosts for the discover command.
hosts = ["10.0.0.20", "10.0.0.21"]

# Print attempt budget and backoff.
max_attempts = 3
retry_delay = "2s"

# Per-call socket timeout.
io_timeout = "3s"

# Automatic readiness corrections before sending.
auto_correct = true
fix_paused = true
fix_errors = true
fix_media = false
fix_language = false
`
