// Package config loads process settings for the posyandu-admin binary.
//
// Values resolve in this order, later sources winning: built-in defaults,
// an optional YAML file, .env files, then the process environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-posyandu/pkg/editform"
)

// Reference modes accepted by POSYANDU_REFERENCE_MODE.
const (
	ReferenceAbort   = "abort"
	ReferenceDegrade = "degrade"
)

// DefaultEnvFiles are probed when Load is given no explicit list.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Config is the resolved process configuration.
type Config struct {
	APIBaseURL     string        `env:"POSYANDU_API_BASE_URL" envDefault:"http://localhost:3000"`
	APITimeout     time.Duration `env:"POSYANDU_API_TIMEOUT" envDefault:"15s"`
	Locale         string        `env:"POSYANDU_LOCALE" envDefault:"id"`
	ListenAddr     string        `env:"POSYANDU_LISTEN_ADDR" envDefault:":8080"`
	LogLevel       string        `env:"POSYANDU_LOG_LEVEL" envDefault:"info"`
	ReferenceMode  string        `env:"POSYANDU_REFERENCE_MODE" envDefault:"abort"`
	ThemeVariant   string        `env:"POSYANDU_THEME_VARIANT" envDefault:"default"`
	ContractChecks bool          `env:"POSYANDU_CONTRACT_CHECKS" envDefault:"true"`
}

// fileConfig mirrors Config for YAML files. Unset keys keep lower
// precedence values.
type fileConfig struct {
	APIBaseURL     string `yaml:"api_base_url"`
	APITimeout     string `yaml:"api_timeout"`
	Locale         string `yaml:"locale"`
	ListenAddr     string `yaml:"listen_addr"`
	LogLevel       string `yaml:"log_level"`
	ReferenceMode  string `yaml:"reference_mode"`
	ThemeVariant   string `yaml:"theme_variant"`
	ContractChecks *bool  `yaml:"contract_checks"`
}

func (f fileConfig) environment() map[string]string {
	out := make(map[string]string)
	set := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	set("POSYANDU_API_BASE_URL", f.APIBaseURL)
	set("POSYANDU_API_TIMEOUT", f.APITimeout)
	set("POSYANDU_LOCALE", f.Locale)
	set("POSYANDU_LISTEN_ADDR", f.ListenAddr)
	set("POSYANDU_LOG_LEVEL", f.LogLevel)
	set("POSYANDU_REFERENCE_MODE", f.ReferenceMode)
	set("POSYANDU_THEME_VARIANT", f.ThemeVariant)
	if f.ContractChecks != nil {
		out["POSYANDU_CONTRACT_CHECKS"] = fmt.Sprint(*f.ContractChecks)
	}
	return out
}

// LoadEnv loads the env files that exist and reports how many were read.
// Variables already present in the environment are not overridden.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return 0, fmt.Errorf("config: stat %s: %w", file, err)
		}
		existing = append(existing, file)
	}
	if len(existing) == 0 {
		return 0, nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return 0, fmt.Errorf("config: load env files: %w", err)
	}
	return len(existing), nil
}

// Load resolves the configuration. file is an optional YAML path; envFiles
// defaults to DefaultEnvFiles when nil.
func Load(file string, envFiles []string) (*Config, error) {
	if envFiles == nil {
		envFiles = DefaultEnvFiles
	}
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, err
	}

	environment := map[string]string{}
	if file != "" {
		fc, err := readFile(file)
		if err != nil {
			return nil, err
		}
		environment = fc.environment()
	}
	for k, v := range env.ToMap(os.Environ()) {
		environment[k] = v
	}
	return parse(environment)
}

// FromEnvironment resolves a Config from an explicit variable map, ignoring
// the process environment.
func FromEnvironment(environment map[string]string) (*Config, error) {
	return parse(environment)
}

func parse(environment map[string]string) (*Config, error) {
	c := &Config{}
	if err := env.ParseWithOptions(c, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	c.ReferenceMode = strings.ToLower(strings.TrimSpace(c.ReferenceMode))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fc, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return fc, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return errors.New("config: POSYANDU_API_BASE_URL is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: POSYANDU_API_BASE_URL %q is not an http(s) URL", c.APIBaseURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("config: POSYANDU_API_TIMEOUT must be positive, got %s", c.APITimeout)
	}
	switch c.ReferenceMode {
	case ReferenceAbort, ReferenceDegrade:
	default:
		return fmt.Errorf("config: unknown POSYANDU_REFERENCE_MODE %q", c.ReferenceMode)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: POSYANDU_LOG_LEVEL: %w", err)
	}
	return nil
}

// Reference maps ReferenceMode onto the edit form setting.
func (c *Config) Reference() editform.ReferenceMode {
	if c.ReferenceMode == ReferenceDegrade {
		return editform.ReferenceDegrade
	}
	return editform.ReferenceAbort
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
