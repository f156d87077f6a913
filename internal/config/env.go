package config

import "os"

// envKeys maps the AIFIX_ variables aifix reads to their config keys.
var envKeys = map[string]string{
	"AIFIX_ENDPOINT":  KeyEndpoint,
	"AIFIX_LOG_LEVEL": KeyLogLevel,
}

// EnvValues returns the config values set through AIFIX_ variables.
// Empty variables count as unset.
func EnvValues() map[string]string {
	values := make(map[string]string, len(envKeys))
	for name, key := range envKeys {
		if v := os.Getenv(name); v != "" {
			values[key] = v
		}
	}
	return values
}
