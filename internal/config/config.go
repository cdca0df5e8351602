// Package config resolves the web server settings from, in increasing
// precedence: built-in defaults, an optional YAML file, environment
// variables, and command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = "egypt-online.yaml"

// Config holds the server settings.
type Config struct {
	Addr         string `yaml:"addr"`
	Dev          bool   `yaml:"dev"`
	TemplatesDir string `yaml:"templates_dir"`
	PublicDir    string `yaml:"public_dir"`
	LocalesDir   string `yaml:"locales_dir"`
	// DataURL, when set, is the remote static host the JSON data is read
	// from. Otherwise data is read from PublicDir.
	DataURL string `yaml:"data_url"`
	// TemplatesURL, when set, is where raw template sources are fetched
	// from when the registered set cannot serve a name.
	TemplatesURL   string        `yaml:"templates_url"`
	BaseURL        string        `yaml:"base_url"`
	DefaultLang    string        `yaml:"default_lang"`
	Languages      []string      `yaml:"languages"`
	LogLevel       string        `yaml:"log_level"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Analytics      Analytics     `yaml:"analytics"`
}

// Analytics configures client-side measurement tags.
type Analytics struct {
	GA4MeasurementID string `yaml:"ga4_measurement_id"`
	Debug            bool   `yaml:"debug"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Addr:           ":8080",
		TemplatesDir:   "templates",
		PublicDir:      "public",
		LocalesDir:     "locales",
		DefaultLang:    "en",
		Languages:      []string{"en", "ar"},
		LogLevel:       "info",
		RequestTimeout: 30 * time.Second,
	}
}

// LoadFile merges the YAML file at path over c. Keys absent from the file
// keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // operator-provided config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides c from environment variables read through getenv.
// EGYPT_WEB_PORT wins over PORT; either sets the listen port.
func (c *Config) ApplyEnv(getenv func(string) string) {
	port := getenv("EGYPT_WEB_PORT")
	if port == "" {
		port = getenv("PORT")
	}
	if port != "" {
		c.Addr = ":" + port
	}
	if v := firstSet(getenv, "EGYPT_WEB_DEV", "DEV"); v != "" {
		c.Dev = truthy(v)
	}
	if v := getenv("EGYPT_WEB_DATA_URL"); v != "" {
		c.DataURL = v
	}
	if v := getenv("EGYPT_WEB_TEMPLATES_URL"); v != "" {
		c.TemplatesURL = v
	}
	if v := getenv("EGYPT_WEB_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := getenv("EGYPT_WEB_GA_MEASUREMENT_ID"); v != "" {
		c.Analytics.GA4MeasurementID = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Load resolves defaults, the config file and the environment. An empty path
// means DefaultConfigFile, which may be absent; an explicit path must exist.
func Load(path string, getenv func(string) string) (*Config, error) {
	c := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if err := c.LoadFile(path); err != nil {
		if explicit || !errors.Is(err, ErrConfigNotFound) {
			return nil, err
		}
	}
	c.ApplyEnv(getenv)
	return c, nil
}

// Validate checks the resolved settings.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidAddr, c.Addr, err)
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	for _, raw := range []string{c.DataURL, c.TemplatesURL, c.BaseURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
		}
	}
	if !slices.Contains(c.Languages, c.DefaultLang) {
		return fmt.Errorf("%w: %q not in %v", ErrUnsupportedLanguage, c.DefaultLang, c.Languages)
	}
	return nil
}

func firstSet(getenv func(string) string, keys ...string) string {
	for _, k := range keys {
		if v := getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// truthy treats any value other than an explicit false as enabled, so
// DEV=1 and DEV=yes both switch dev mode on.
func truthy(v string) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
		return b
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "no", "off":
		return false
	}
	return true
}
