package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DefaultProvider != "anthropic" {
		t.Errorf("expected default provider 'anthropic', got %s", cfg.DefaultProvider)
	}
	if len(cfg.Providers) != 4 {
		t.Errorf("expected 4 providers, got %d", len(cfg.Providers))
	}

	anthropic, ok := cfg.Providers["anthropic"]
	if !ok {
		t.Fatal("expected 'anthropic' provider in config")
	}
	if anthropic.Model != "claude-sonnet-4-20250514" {
		t.Errorf("expected Anthropic model 'claude-sonnet-4-20250514', got %s", anthropic.Model)
	}

	if cfg.WMF.DefaultDPI != 1440 {
		t.Errorf("expected default DPI 1440, got %d", cfg.WMF.DefaultDPI)
	}
	if cfg.Crypt.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.Crypt.MaxAttempts)
	}
	if cfg.Crypt.PasswordEnv != "KOIMPORT_PASSWORD" {
		t.Errorf("expected password env 'KOIMPORT_PASSWORD', got %s", cfg.Crypt.PasswordEnv)
	}
}

func TestConfig_GetProvider(t *testing.T) {
	cfg := DefaultConfig()

	p, ok := cfg.GetProvider("openai")
	if !ok {
		t.Fatal("expected to find 'openai' provider")
	}
	if p.Model != "gpt-4o-mini" {
		t.Errorf("expected model 'gpt-4o-mini', got %s", p.Model)
	}

	if _, ok := cfg.GetProvider("nonexistent"); ok {
		t.Error("expected not to find 'nonexistent' provider")
	}

	def, ok := cfg.GetDefaultProvider()
	if !ok {
		t.Fatal("expected to find default provider")
	}
	if def.Model != "claude-sonnet-4-20250514" {
		t.Errorf("expected default provider model 'claude-sonnet-4-20250514', got %s", def.Model)
	}
}

func TestConfig_MaxPlaintextBytes(t *testing.T) {
	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{"1 GiB", 1 << 30, false},
		{"64MiB", 64 << 20, false},
		{"512", 512, false},
		{"", 0, false},
		{"lots", 0, true},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Crypt.MaxPlaintext = tt.value
		got, err := cfg.MaxPlaintextBytes()
		if (err != nil) != tt.wantErr {
			t.Errorf("MaxPlaintextBytes(%q): unexpected error state %v", tt.value, err)
			continue
		}
		if got != tt.want {
			t.Errorf("MaxPlaintextBytes(%q): expected %d, got %d", tt.value, tt.want, got)
		}
	}
}

func TestConfig_Set(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
		check   func(c *Config) bool
	}{
		{"default_provider", "openai", false, func(c *Config) bool { return c.DefaultProvider == "openai" }},
		{"default_provider", "mistral", true, nil},
		{"describe.temperature", "0.5", false, func(c *Config) bool { return c.Describe.Temperature == 0.5 }},
		{"describe.temperature", "1.5", true, nil},
		{"describe.language", "en", false, func(c *Config) bool { return c.Describe.Language == "en" }},
		{"describe.language", "fr", true, nil},
		{"wmf.default_dpi", "96", false, func(c *Config) bool { return c.WMF.DefaultDPI == 96 }},
		{"wmf.default_dpi", "-1", true, nil},
		{"wmf.output", "yaml", false, func(c *Config) bool { return c.WMF.Output == "yaml" }},
		{"wmf.output", "xml", true, nil},
		{"wmf.stream_name", "Picture", false, func(c *Config) bool { return c.WMF.StreamName == "Picture" }},
		{"crypt.max_attempts", "5", false, func(c *Config) bool { return c.Crypt.MaxAttempts == 5 }},
		{"crypt.max_attempts", "0", true, nil},
		{"crypt.password_env", "DOC_PASS", false, func(c *Config) bool { return c.Crypt.PasswordEnv == "DOC_PASS" }},
		{"crypt.max_plaintext", "10 MB", false, func(c *Config) bool { return c.Crypt.MaxPlaintext == "10 MB" }},
		{"crypt.max_plaintext", "big", true, nil},
		{"log.level", "debug", false, func(c *Config) bool { return c.Log.Level == "debug" }},
		{"log.level", "trace", true, nil},
		{"format.language", "ko", true, nil},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		err := cfg.Set(tt.key, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Set(%s, %s): expected error=%v, got %v", tt.key, tt.value, tt.wantErr, err)
			continue
		}
		if tt.check != nil && !tt.check(cfg) {
			t.Errorf("Set(%s, %s): value not applied", tt.key, tt.value)
		}
		if !tt.wantErr {
			if got := cfg.Get(tt.key); got != tt.value {
				t.Errorf("Get(%s) = %q, want %q", tt.key, got, tt.value)
			}
		}
	}

	if got := DefaultConfig().Get("format.language"); got != "" {
		t.Errorf("expected empty value for unknown key, got %q", got)
	}
}

func TestLoader_SaveAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewLoaderWithPath(configPath)

	cfg := DefaultConfig()
	cfg.DefaultProvider = "openai"
	cfg.Crypt.MaxAttempts = 7

	if err := loader.Save(cfg); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	if !loader.Exists() {
		t.Error("expected config file to exist after save")
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}

	loaded, err := loader.LoadRaw()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if loaded.DefaultProvider != "openai" {
		t.Errorf("expected default provider 'openai', got %s", loaded.DefaultProvider)
	}
	if loaded.Crypt.MaxAttempts != 7 {
		t.Errorf("expected 7 attempts, got %d", loaded.Crypt.MaxAttempts)
	}
}

func TestLoader_LoadNonExistent(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nonexistent", "config.yaml")
	loader := NewLoaderWithPath(configPath)

	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("expected no error for non-existent file, got: %v", err)
	}
	if cfg.DefaultProvider != "anthropic" {
		t.Errorf("expected default provider 'anthropic', got %s", cfg.DefaultProvider)
	}
}

func TestLoader_PartialFileKeepsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `crypt:
  max_attempts: 5
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := NewLoaderWithPath(configPath).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Crypt.MaxAttempts != 5 {
		t.Errorf("expected 5 attempts, got %d", cfg.Crypt.MaxAttempts)
	}
	if cfg.Crypt.PasswordEnv != "KOIMPORT_PASSWORD" {
		t.Errorf("expected default password env, got %q", cfg.Crypt.PasswordEnv)
	}
	if cfg.WMF.DefaultDPI != 1440 {
		t.Errorf("expected default DPI, got %d", cfg.WMF.DefaultDPI)
	}
	if len(cfg.Providers) != 4 {
		t.Errorf("expected default providers, got %d", len(cfg.Providers))
	}
}

func TestLoader_ExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_API_KEY", "test-key-12345")
	os.Unsetenv("UNSET_VAR_FOR_TEST")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `default_provider: openai
providers:
  test:
    api_key: ${TEST_API_KEY}
    model: test-model
    max_tokens: 1000
  other:
    api_key: ${UNSET_VAR_FOR_TEST}
    model: other-model
describe:
  temperature: 0.5
  language: en
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	loader := NewLoaderWithPath(configPath)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	testProvider, ok := cfg.GetProvider("test")
	if !ok {
		t.Fatal("expected to find 'test' provider")
	}
	if testProvider.APIKey != "test-key-12345" {
		t.Errorf("expected API key 'test-key-12345', got %s", testProvider.APIKey)
	}

	other, _ := cfg.GetProvider("other")
	if other == nil || other.APIKey != "" {
		t.Errorf("expected empty API key for unset env var, got %+v", other)
	}

	// LoadRaw keeps the reference
	raw, err := loader.LoadRaw()
	if err != nil {
		t.Fatalf("failed to load raw config: %v", err)
	}
	if raw.Providers["test"].APIKey != "${TEST_API_KEY}" {
		t.Errorf("expected raw reference, got %s", raw.Providers["test"].APIKey)
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_VAR", "test-value")

	if v := GetEnvOrDefault("TEST_VAR", "default"); v != "test-value" {
		t.Errorf("expected 'test-value', got %s", v)
	}
	if v := GetEnvOrDefault("NONEXISTENT_VAR", "default"); v != "default" {
		t.Errorf("expected 'default', got %s", v)
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"provider", func(c *Config) { c.DefaultProvider = "bard" }, "default_provider"},
		{"temperature", func(c *Config) { c.Describe.Temperature = 1.5 }, "describe.temperature"},
		{"language", func(c *Config) { c.Describe.Language = "jp" }, "describe.language"},
		{"output", func(c *Config) { c.WMF.Output = "xml" }, "wmf.output"},
		{"max plaintext", func(c *Config) { c.Crypt.MaxPlaintext = "lots" }, "crypt.max_plaintext"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("expected error to name %s, got %v", tc.field, err)
			}
		})
	}
}

func TestLoader_LoadRejectsInvalidValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "wmf:\n  output: xml\nlog:\n  level: loud\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	loader := NewLoaderWithPath(configPath)
	_, err := loader.Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "wmf.output") || !strings.Contains(err.Error(), "log.level") {
		t.Errorf("expected both fields in error, got %v", err)
	}

	// config 명령은 그대로 읽어서 고칠 수 있다
	if _, err := loader.LoadRaw(); err != nil {
		t.Errorf("LoadRaw should not validate: %v", err)
	}
}

func TestNewLoader(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	loader, err := NewLoader()
	if err != nil {
		t.Fatalf("failed to create loader: %v", err)
	}

	path := loader.ConfigPath()
	if filepath.Base(path) != ConfigFileName {
		t.Errorf("expected config file name %s, got %s", ConfigFileName, filepath.Base(path))
	}
	if filepath.Base(filepath.Dir(path)) != ConfigDirName {
		t.Errorf("expected config dir %s, got %s", ConfigDirName, filepath.Dir(path))
	}

	custom := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv(ConfigPathEnv, custom)
	loader, err = NewLoader()
	if err != nil {
		t.Fatalf("failed to create loader: %v", err)
	}
	if loader.ConfigPath() != custom {
		t.Errorf("expected %s, got %s", custom, loader.ConfigPath())
	}
}

func TestLoader_Init(t *testing.T) {
	loader := NewLoaderWithPath(filepath.Join(t.TempDir(), "config.yaml"))

	if err := loader.Init(); err != nil {
		t.Fatalf("failed to init config: %v", err)
	}
	if !loader.Exists() {
		t.Error("expected config file to exist after init")
	}
	if err := loader.Init(); err == nil {
		t.Error("expected error when initializing existing config")
	}
}

func TestLoader_LoadInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("{{{{invalid yaml"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := NewLoaderWithPath(configPath).Load(); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
