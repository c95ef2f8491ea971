// Package config manages application configuration.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Config represents the application configuration.
type Config struct {
	DefaultProvider string              `yaml:"default_provider"`
	Providers       map[string]Provider `yaml:"providers"`
	Describe        DescribeConfig      `yaml:"describe"`
	WMF             WMFConfig           `yaml:"wmf"`
	Crypt           CryptConfig         `yaml:"crypt"`
	Log             LogConfig           `yaml:"log"`
}

// Provider represents an LLM provider configuration.
type Provider struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	Endpoint  string `yaml:"endpoint,omitempty"` // for Ollama or custom endpoints
}

// DescribeConfig contains options for drawing descriptions.
type DescribeConfig struct {
	Temperature float64 `yaml:"temperature"`
	Language    string  `yaml:"language"`
}

// WMFConfig contains metafile import options.
type WMFConfig struct {
	DefaultDPI int    `yaml:"default_dpi"`
	StreamName string `yaml:"stream_name,omitempty"` // OLE2 스트림 이름
	Output     string `yaml:"output"`                // json 또는 yaml
}

// CryptConfig contains encrypted document options.
type CryptConfig struct {
	MaxAttempts  int    `yaml:"max_attempts"`
	PasswordEnv  string `yaml:"password_env"`
	MaxPlaintext string `yaml:"max_plaintext"` // "1 GiB" 형식
}

// LogConfig contains logging options.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Supported values for enumerated settings.
var (
	ValidProviders = []string{"anthropic", "openai", "gemini", "ollama"}
	ValidLanguages = []string{"ko", "en"}
	ValidOutputs   = []string{"json", "yaml"}
	ValidLogLevels = []string{"debug", "info", "warn", "error"}
)

// SettableKeys lists the keys accepted by Set.
var SettableKeys = []string{
	"default_provider",
	"describe.temperature",
	"describe.language",
	"wmf.default_dpi",
	"wmf.stream_name",
	"wmf.output",
	"crypt.max_attempts",
	"crypt.password_env",
	"crypt.max_plaintext",
	"log.level",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultProvider: "anthropic",
		Providers: map[string]Provider{
			"openai": {
				APIKey:    "${OPENAI_API_KEY}",
				Model:     "gpt-4o-mini",
				MaxTokens: 1024,
			},
			"anthropic": {
				APIKey:    "${ANTHROPIC_API_KEY}",
				Model:     "claude-sonnet-4-20250514",
				MaxTokens: 1024,
			},
			"gemini": {
				APIKey:    "${GOOGLE_API_KEY}",
				Model:     "gemini-1.5-flash",
				MaxTokens: 1024,
			},
			"ollama": {
				Endpoint:  "http://localhost:11434",
				Model:     "llama3.2",
				MaxTokens: 1024,
			},
		},
		Describe: DescribeConfig{
			Temperature: 0.3,
			Language:    "ko",
		},
		WMF: WMFConfig{
			DefaultDPI: 1440,
			Output:     "json",
		},
		Crypt: CryptConfig{
			MaxAttempts:  3,
			PasswordEnv:  "KOIMPORT_PASSWORD",
			MaxPlaintext: "1 GiB",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// applyDefaults fills sections missing from a partial config file.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.DefaultProvider == "" {
		c.DefaultProvider = def.DefaultProvider
	}
	if c.Providers == nil {
		c.Providers = def.Providers
	}
	if c.Describe.Language == "" {
		c.Describe.Language = def.Describe.Language
	}
	if c.WMF.DefaultDPI <= 0 {
		c.WMF.DefaultDPI = def.WMF.DefaultDPI
	}
	if c.WMF.Output == "" {
		c.WMF.Output = def.WMF.Output
	}
	if c.Crypt.MaxAttempts <= 0 {
		c.Crypt.MaxAttempts = def.Crypt.MaxAttempts
	}
	if c.Crypt.PasswordEnv == "" {
		c.Crypt.PasswordEnv = def.Crypt.PasswordEnv
	}
	if c.Crypt.MaxPlaintext == "" {
		c.Crypt.MaxPlaintext = def.Crypt.MaxPlaintext
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// GetProvider returns the provider configuration by name.
func (c *Config) GetProvider(name string) (*Provider, bool) {
	p, ok := c.Providers[name]
	if !ok {
		return nil, false
	}
	return &p, true
}

// GetDefaultProvider returns the default provider configuration.
func (c *Config) GetDefaultProvider() (*Provider, bool) {
	return c.GetProvider(c.DefaultProvider)
}

// MaxPlaintextBytes parses Crypt.MaxPlaintext. An empty value returns 0.
func (c *Config) MaxPlaintextBytes() (int64, error) {
	if c.Crypt.MaxPlaintext == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(c.Crypt.MaxPlaintext)
	if err != nil {
		return 0, fmt.Errorf("유효하지 않은 크기: %s: %w", c.Crypt.MaxPlaintext, err)
	}
	return int64(n), nil
}

// Get returns the current value of a settable key, or "" for unknown keys.
func (c *Config) Get(key string) string {
	switch key {
	case "default_provider":
		return c.DefaultProvider
	case "describe.temperature":
		return strconv.FormatFloat(c.Describe.Temperature, 'g', -1, 64)
	case "describe.language":
		return c.Describe.Language
	case "wmf.default_dpi":
		return strconv.Itoa(c.WMF.DefaultDPI)
	case "wmf.stream_name":
		return c.WMF.StreamName
	case "wmf.output":
		return c.WMF.Output
	case "crypt.max_attempts":
		return strconv.Itoa(c.Crypt.MaxAttempts)
	case "crypt.password_env":
		return c.Crypt.PasswordEnv
	case "crypt.max_plaintext":
		return c.Crypt.MaxPlaintext
	case "log.level":
		return c.Log.Level
	}
	return ""
}

// Set updates a single setting addressed by its dotted key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "default_provider":
		if !slices.Contains(ValidProviders, value) {
			return fmt.Errorf("유효하지 않은 프로바이더: %s (지원: %s)", value, strings.Join(ValidProviders, ", "))
		}
		c.DefaultProvider = value

	case "describe.temperature":
		temp, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("유효하지 않은 온도 값: %s", value)
		}
		if temp < 0 || temp > 1 {
			return fmt.Errorf("온도는 0.0-1.0 범위여야 합니다: %g", temp)
		}
		c.Describe.Temperature = temp

	case "describe.language":
		if !slices.Contains(ValidLanguages, value) {
			return fmt.Errorf("유효하지 않은 언어: %s (지원: %s)", value, strings.Join(ValidLanguages, ", "))
		}
		c.Describe.Language = value

	case "wmf.default_dpi":
		dpi, err := strconv.Atoi(value)
		if err != nil || dpi <= 0 {
			return fmt.Errorf("유효하지 않은 DPI: %s", value)
		}
		c.WMF.DefaultDPI = dpi

	case "wmf.stream_name":
		c.WMF.StreamName = value

	case "wmf.output":
		if !slices.Contains(ValidOutputs, value) {
			return fmt.Errorf("유효하지 않은 출력 형식: %s (지원: %s)", value, strings.Join(ValidOutputs, ", "))
		}
		c.WMF.Output = value

	case "crypt.max_attempts":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("시도 횟수는 1 이상이어야 합니다: %s", value)
		}
		c.Crypt.MaxAttempts = n

	case "crypt.password_env":
		if value == "" {
			return fmt.Errorf("환경 변수 이름이 비어 있습니다")
		}
		c.Crypt.PasswordEnv = value

	case "crypt.max_plaintext":
		if _, err := humanize.ParseBytes(value); err != nil {
			return fmt.Errorf("유효하지 않은 크기: %s", value)
		}
		c.Crypt.MaxPlaintext = value

	case "log.level":
		if !slices.Contains(ValidLogLevels, value) {
			return fmt.Errorf("유효하지 않은 로그 레벨: %s (지원: %s)", value, strings.Join(ValidLogLevels, ", "))
		}
		c.Log.Level = value

	default:
		return fmt.Errorf("알 수 없는 설정 키: %s\n지원하는 키: %s", key, strings.Join(SettableKeys, ", "))
	}
	return nil
}

// Validate reports every invalid value of a loaded configuration.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(ValidProviders, c.DefaultProvider) {
		errs = append(errs, fmt.Errorf("default_provider: 지원하지 않는 프로바이더 %q", c.DefaultProvider))
	}
	if c.Describe.Temperature < 0 || c.Describe.Temperature > 1 {
		errs = append(errs, fmt.Errorf("describe.temperature: 0.0-1.0 범위를 벗어남 (%g)", c.Describe.Temperature))
	}
	if !slices.Contains(ValidLanguages, c.Describe.Language) {
		errs = append(errs, fmt.Errorf("describe.language: 지원하지 않는 언어 %q", c.Describe.Language))
	}
	if !slices.Contains(ValidOutputs, c.WMF.Output) {
		errs = append(errs, fmt.Errorf("wmf.output: 지원하지 않는 형식 %q", c.WMF.Output))
	}
	if _, err := c.MaxPlaintextBytes(); err != nil {
		errs = append(errs, fmt.Errorf("crypt.max_plaintext: %w", err))
	}
	if !slices.Contains(ValidLogLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level: 지원하지 않는 레벨 %q", c.Log.Level))
	}
	return errors.Join(errs...)
}
