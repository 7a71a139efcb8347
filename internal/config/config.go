package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/indaco/kiln/internal/core"
)

// DefaultConfigFile is the name of the configuration file looked up in the
// working directory.
const DefaultConfigFile = ".kiln.yaml"

// DefaultTheme is the TUI theme used when none is configured.
const DefaultTheme = "kiln"

// LogConfig controls the engine's structured log output.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Config is the main configuration structure for kiln.
type Config struct {
	// SiteRoot is the base directory site-side extension roots are created in.
	SiteRoot string `yaml:"site_root"`
	// AdminRoot defaults to SiteRoot/administrator.
	AdminRoot string `yaml:"admin_root,omitempty"`
	// MediaRoot is optional; without it media sections are not installed.
	MediaRoot string `yaml:"media_root,omitempty"`
	// Database defaults to SiteRoot/.kiln/kiln.db.
	Database string `yaml:"database,omitempty"`
	// HookTimeout bounds each script hook call, as a Go duration ("30s").
	HookTimeout string     `yaml:"hook_timeout,omitempty"`
	Theme       string     `yaml:"theme,omitempty"`
	Log         *LogConfig `yaml:"log,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{SiteRoot: "."}
}

// AdminPath returns the administrator root.
func (c *Config) AdminPath() string {
	if c.AdminRoot != "" {
		return c.AdminRoot
	}
	return filepath.Join(c.SiteRoot, "administrator")
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	return filepath.Join(c.SiteRoot, ".kiln", "kiln.db")
}

// HookTimeoutDuration parses HookTimeout. An empty value means no limit.
func (c *Config) HookTimeoutDuration() (time.Duration, error) {
	if c.HookTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.HookTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid hook_timeout %q: %w", c.HookTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid hook_timeout %q: must not be negative", c.HookTimeout)
	}
	return d, nil
}

// GetTheme returns the configured theme, or DefaultTheme.
func (c *Config) GetTheme() string {
	if c.Theme == "" {
		return DefaultTheme
	}
	return c.Theme
}

// LogLevel returns the configured log level, "warn" by default.
func (c *Config) LogLevel() string {
	if c.Log == nil || c.Log.Level == "" {
		return "warn"
	}
	return c.Log.Level
}

// LogFormat returns the configured log format, "text" by default.
func (c *Config) LogFormat() string {
	if c.Log == nil || c.Log.Format == "" {
		return "text"
	}
	return c.Log.Format
}

// FileOpener abstracts file opening operations for testability.
type FileOpener interface {
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
}

// FileWriter abstracts file writing operations for testability.
type FileWriter interface {
	WriteFile(file *os.File, data []byte) (int, error)
}

// ConfigSaver handles configuration saving with injected dependencies.
type ConfigSaver struct {
	marshaler  core.Marshaler
	fileOpener FileOpener
	fileWriter FileWriter
}

type osFileOpener struct{}

func (o *osFileOpener) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, flag, perm)
}

type osFileWriter struct{}

func (w *osFileWriter) WriteFile(file *os.File, data []byte) (int, error) {
	return file.Write(data)
}

type yamlMarshaler struct{}

func (m *yamlMarshaler) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// NewConfigSaver creates a ConfigSaver with the given dependencies.
// If any dependency is nil, the production default is used.
func NewConfigSaver(marshaler core.Marshaler, opener FileOpener, writer FileWriter) *ConfigSaver {
	if marshaler == nil {
		marshaler = &yamlMarshaler{}
	}
	if opener == nil {
		opener = &osFileOpener{}
	}
	if writer == nil {
		writer = &osFileWriter{}
	}
	return &ConfigSaver{
		marshaler:  marshaler,
		fileOpener: opener,
		fileWriter: writer,
	}
}

// Save saves the configuration to the default config file.
func (s *ConfigSaver) Save(cfg *Config) error {
	return s.SaveTo(cfg, DefaultConfigFile)
}

// SaveTo saves the configuration to the specified file path.
func (s *ConfigSaver) SaveTo(cfg *Config, configFile string) error {
	data, err := s.marshaler.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to %q: %w", configFile, err)
	}
	return s.WriteTo(data, configFile)
}

// WriteTo writes already encoded configuration data to configFile.
func (s *ConfigSaver) WriteTo(data []byte, configFile string) error {
	file, err := s.fileOpener.OpenFile(configFile, os.O_RDWR|os.O_CREATE|os.O_TRUNC, ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to open config file %q: %w", configFile, err)
	}
	defer file.Close()

	if _, err := s.fileWriter.WriteFile(file, data); err != nil {
		return fmt.Errorf("failed to write config to %q: %w", configFile, err)
	}
	return nil
}

var defaultConfigSaver = NewConfigSaver(nil, nil, nil)

// LoadConfigFn and SaveConfigFn are the package entry points; tests may
// replace them.
var (
	LoadConfigFn = loadConfig
	SaveConfigFn = func(cfg *Config) error {
		return defaultConfigSaver.Save(cfg)
	}
)

// loadConfig reads the config file named by KILN_CONFIG, or .kiln.yaml in
// the working directory, then applies KILN_SITE_ROOT. It returns nil, nil
// when there is neither a file nor an override.
func loadConfig() (*Config, error) {
	path := DefaultConfigFile
	fromEnv := false
	if envPath := os.Getenv("KILN_CONFIG"); envPath != "" {
		cleanPath := filepath.Clean(envPath)
		// Reject relative paths with traversal (use absolute paths instead)
		if strings.Contains(cleanPath, "..") {
			return nil, fmt.Errorf("invalid KILN_CONFIG: path traversal not allowed, use absolute path instead")
		}
		path = cleanPath
		fromEnv = true
	}

	cfg, err := ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !fromEnv {
			cfg = nil
		} else {
			return nil, err
		}
	}

	if siteRoot := os.Getenv("KILN_SITE_ROOT"); siteRoot != "" {
		if cfg == nil {
			cfg = &Config{}
		}
		cfg.SiteRoot = filepath.Clean(siteRoot)
	}
	if cfg != nil && cfg.SiteRoot == "" {
		cfg.SiteRoot = "."
	}
	return cfg, nil
}

// ReadFile decodes the config file at path. Unknown keys are rejected.
func ReadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if len(bytes.TrimSpace(data)) == 0 {
		return &cfg, nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}
	return &cfg, nil
}

// ConfigFilePerm defines secure file permissions for config files (owner read/write only).
const ConfigFilePerm = core.PermOwnerRW
