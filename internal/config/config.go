package config

import (
	"fmt"
	"strings"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	API     APIConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type APIConfig struct {
	Token string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4700,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.quoted.app) and secrets
// fall back to macOS Keychain.
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/quoted/config.json
// and secrets must be provided via environment variables.
//
// Environment variables (QUOTED_*) override backend values on all platforms.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts Keychain access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Try platform keychain for the API token if still empty.
	if cfg.API.Token == "" {
		if tok, err := kc.Get("quoted", "api_token"); err == nil && tok != "" {
			cfg.API.Token = tok
		}
	}

	if cfg.API.Token == "" {
		msg := "missing required config: API token. " +
			"Set it via environment variable QUOTED_API_TOKEN" +
			tokenHint()
		return Config{}, fmt.Errorf("%s", msg)
	}

	return cfg, nil
}

// keychainReader reads from the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainExec(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
