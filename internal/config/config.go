// Package config builds the aifix configuration at program entry.
//
// Values come from three places, lowest precedence first: built-in defaults,
// AIFIX_ environment variables, and the optional .aifix/config.yaml file.
// The Google API key is read from GOOGLE_API_KEY only, after api.env has been
// loaded into the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = ".aifix"
	configFileName = "config.yaml"

	// EnvFileName is the dotenv file loaded from the working directory.
	EnvFileName = "api.env"

	// APIKeyEnv names the environment variable holding the Gemini API key.
	APIKeyEnv = "GOOGLE_API_KEY"

	// DefaultEndpoint is the Gemini API base URL.
	DefaultEndpoint = "https://generativelanguage.googleapis.com"

	// Model is the fixed Gemini model used for every request.
	Model = "gemini-2.5-flash"
)

// Recognized keys in config.yaml and AIFIX_ variables.
const (
	KeyEndpoint = "endpoint"
	KeyLogLevel = "log-level"
)

var knownKeys = map[string]struct{}{
	KeyEndpoint: {},
	KeyLogLevel: {},
}

// ErrMissingAPIKey is returned when GOOGLE_API_KEY is absent or empty.
var ErrMissingAPIKey = errors.New(APIKeyEnv + " is not set: add it to " + EnvFileName + " or export it in the environment")

// Config is the resolved configuration for one invocation.
type Config struct {
	APIKey   string
	Endpoint string
	LogLevel string

	// Warnings lists non-fatal problems found while loading (unknown keys).
	Warnings []string
}

// Validate reports whether the configuration can be used to call the provider.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint cannot be empty")
	}
	return nil
}

// Debug reports whether HTTP debug logging was requested.
func (c Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "DEBUG")
}

// ConfigPath returns the path to the local config file for the given base directory.
func ConfigPath(baseDir string) string {
	return filepath.Join(baseDir, configDirName, configFileName)
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]string {
	return map[string]string{
		KeyEndpoint: DefaultEndpoint,
	}
}

// Load reads api.env, the environment, and .aifix/config.yaml and returns a
// validated Config.
func Load(baseDir string) (Config, error) {
	if err := LoadEnvFile(baseDir); err != nil {
		return Config{}, err
	}

	fileValues, warnings, err := LoadFile(baseDir)
	if err != nil {
		return Config{}, err
	}

	merged := MergePrecedence(Defaults(), EnvValues(), fileValues)
	cfg := Config{
		APIKey:   os.Getenv(APIKeyEnv),
		Endpoint: strings.TrimSpace(merged[KeyEndpoint]),
		LogLevel: strings.TrimSpace(merged[KeyLogLevel]),
		Warnings: warnings,
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadEnvFile loads api.env from baseDir into the process environment.
// Variables that are already set are left untouched; a missing file is not
// an error.
func LoadEnvFile(baseDir string) error {
	path := filepath.Join(baseDir, EnvFileName)
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", EnvFileName, err)
	}
	return nil
}

// LoadFile reads .aifix/config.yaml for the given base directory.
// Missing files are treated as empty configuration.
func LoadFile(baseDir string) (map[string]string, []string, error) {
	data, err := os.ReadFile(ConfigPath(baseDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil, nil
		}
		return nil, nil, err
	}

	parsed := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, nil, fmt.Errorf("invalid %s: %w", configFileName, err)
	}

	values := map[string]string{}
	var warnings []string
	keys := make([]string, 0, len(parsed))
	for key := range parsed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := parsed[key]
		if value == nil {
			continue
		}
		values[key] = fmt.Sprint(value)
		if _, ok := knownKeys[key]; !ok {
			warnings = append(warnings, fmt.Sprintf("unknown config key: %s", key))
		}
	}
	return values, warnings, nil
}
