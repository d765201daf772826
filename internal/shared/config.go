package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Template values written on first run. A config still carrying either credential placeholder is rejected.
const (
	PlaceholderClientID     = "your_client_id_here"
	PlaceholderClientSecret = "your_client_secret_here"
	DefaultRedirectURI      = "http://127.0.0.1:8888/callback"
	DefaultSourceCache      = ".cache-source"
	DefaultTargetCache      = ".cache-target"
)

// Config is the credential store: API credentials plus the two token cache paths.
//
// The JSON keys are fixed by the config file contract; TOML files use the same keys.
type Config struct {
	ClientID     string `json:"CLIENT_ID" toml:"CLIENT_ID"`
	ClientSecret string `json:"CLIENT_SECRET" toml:"CLIENT_SECRET"`
	RedirectURI  string `json:"REDIRECT_URI" toml:"REDIRECT_URI"`
	SourceCache  string `json:"SOURCE_CACHE" toml:"SOURCE_CACHE"`
	TargetCache  string `json:"TARGET_CACHE" toml:"TARGET_CACHE"`
}

// Environment holds overrides read from the process environment (and an optional .env file).
type Environment struct {
	ClientID     string `env:"SPOTSYNC_CLIENT_ID"`
	ClientSecret string `env:"SPOTSYNC_CLIENT_SECRET"`
	RedirectURI  string `env:"SPOTSYNC_REDIRECT_URI"`
	SourceCache  string `env:"SPOTSYNC_SOURCE_CACHE"`
	TargetCache  string `env:"SPOTSYNC_TARGET_CACHE"`
	LogFile      string `env:"SPOTSYNC_LOG_FILE"`
}

// DefaultConfig returns the template written when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		ClientID:     PlaceholderClientID,
		ClientSecret: PlaceholderClientSecret,
		RedirectURI:  DefaultRedirectURI,
		SourceCache:  DefaultSourceCache,
		TargetCache:  DefaultTargetCache,
	}
}

// LoadEnvironment loads dotenvPath (if it exists) into the process environment and parses the SPOTSYNC_* variables.
//
// Variables already set in the environment win over the .env file.
func LoadEnvironment(dotenvPath string) (*Environment, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}

	var e Environment
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &e, nil
}

// LoadConfig reads the config file at path, applies overrides and validates the result.
//
// A missing file is replaced by the template and [ErrConfigCreated] is returned.
// Unedited credentials produce [ErrPlaceholderConfig].
func LoadConfig(path string, overrides *Environment) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := CreateConfigFile(path); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrConfigCreated, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := ParseConfig(path, data)
	if err != nil {
		return nil, err
	}

	config.Apply(overrides)
	config.fillDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ParseConfig decodes data as TOML when path ends in .toml and as JSON otherwise.
func ParseConfig(path string, data []byte) (*Config, error) {
	var config Config
	if isTOML(path) {
		if _, err := toml.Decode(string(data), &config); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return &config, nil
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &config, nil
}

// CreateConfigFile writes the template config to path, refusing to overwrite an existing file.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	data, err := MarshalConfig(path, DefaultConfig())
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MarshalConfig encodes config in the format implied by path.
func MarshalConfig(path string, config *Config) ([]byte, error) {
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(config); err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
		return buf.Bytes(), nil
	}

	data, err := json.MarshalIndent(config, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return append(data, '\n'), nil
}

// Apply copies every non-empty override onto c.
func (c *Config) Apply(e *Environment) {
	if e == nil {
		return
	}
	for _, o := range []struct {
		dst *string
		src string
	}{
		{&c.ClientID, e.ClientID},
		{&c.ClientSecret, e.ClientSecret},
		{&c.RedirectURI, e.RedirectURI},
		{&c.SourceCache, e.SourceCache},
		{&c.TargetCache, e.TargetCache},
	} {
		if o.src != "" {
			*o.dst = o.src
		}
	}
}

func (c *Config) fillDefaults() {
	if c.RedirectURI == "" {
		c.RedirectURI = DefaultRedirectURI
	}
	if c.SourceCache == "" {
		c.SourceCache = DefaultSourceCache
	}
	if c.TargetCache == "" {
		c.TargetCache = DefaultTargetCache
	}
}

// Validate reports placeholder credentials, an unusable redirect URI, or a shared token cache.
func (c *Config) Validate() error {
	if c.ClientID == "" || c.ClientID == PlaceholderClientID ||
		c.ClientSecret == "" || c.ClientSecret == PlaceholderClientSecret {
		return ErrPlaceholderConfig
	}

	u, err := url.Parse(c.RedirectURI)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: REDIRECT_URI %q is not an absolute URL", ErrInvalidConfig, c.RedirectURI)
	}

	if filepath.Clean(c.SourceCache) == filepath.Clean(c.TargetCache) {
		return fmt.Errorf("%w: SOURCE_CACHE and TARGET_CACHE must differ", ErrInvalidConfig)
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
