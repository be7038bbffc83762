package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-cv2pdf/internal/fileutil"
	"github.com/alnah/go-cv2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// appDir is the directory searched under the user config dir.
const appDir = "go-cv2pdf"

// Field length limits.
const (
	MaxPathLength = 4096
	MaxURLLength  = 2048
	MaxAddrLength = 256
)

// Defaults.
const (
	DefaultInputPath      = "cv_content.csv"
	DefaultOutputPath     = "cv_output.pdf"
	DefaultBackend        = "native"
	DefaultTimeout        = 30 * time.Second
	DefaultAddr           = ":5000"
	DefaultMaxUploadBytes = 16 << 20
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	MaxWorkers            = 64
)

// Config holds all configuration for the CLI and the HTTP service.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Renderer RendererConfig `yaml:"renderer"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// InputConfig defines the default source table.
type InputConfig struct {
	DefaultPath string `yaml:"defaultPath"`
}

// OutputConfig defines the default destination PDF.
type OutputConfig struct {
	DefaultPath string `yaml:"defaultPath"`
}

// RendererConfig selects the PDF backend.
type RendererConfig struct {
	Backend string `yaml:"backend"` // "native" or "chrome"
	Timeout string `yaml:"timeout"` // Go duration, chrome backend only
}

// ServerConfig defines the HTTP service.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	StorageDir     string `yaml:"storageDir"`     // empty = <tmp>/cv_outputs
	MaxUploadBytes int64  `yaml:"maxUploadBytes"` // request body limit
	PublicURL      string `yaml:"publicURL"`      // base for download links; empty = from request
	Workers        int    `yaml:"workers"`        // 0 = derived from GOMAXPROCS
}

// LogConfig defines structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Input:    InputConfig{DefaultPath: DefaultInputPath},
		Output:   OutputConfig{DefaultPath: DefaultOutputPath},
		Renderer: RendererConfig{Backend: DefaultBackend, Timeout: DefaultTimeout.String()},
		Server: ServerConfig{
			Addr:           DefaultAddr,
			StorageDir:     DefaultStorageDir(),
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Log: LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// DefaultStorageDir is where the service keeps generated documents.
func DefaultStorageDir() string {
	return filepath.Join(os.TempDir(), "cv_outputs")
}

// TimeoutDuration parses Renderer.Timeout; empty means DefaultTimeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Renderer.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Renderer.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: renderer.timeout %q (want a positive duration such as 30s)", ErrInvalidValue, c.Renderer.Timeout)
	}
	return d, nil
}

// Validate checks enums, ranges and field lengths. Called by LoadConfig,
// and by the CLI again after flags and environment are merged.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"input.defaultPath", c.Input.DefaultPath, MaxPathLength},
		{"output.defaultPath", c.Output.DefaultPath, MaxPathLength},
		{"server.storageDir", c.Server.StorageDir, MaxPathLength},
		{"server.addr", c.Server.Addr, MaxAddrLength},
		{"server.publicURL", c.Server.PublicURL, MaxURLLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	if c.Output.DefaultPath != "" && !fileutil.HasExtension(c.Output.DefaultPath, "pdf") {
		return fmt.Errorf("%w: output.defaultPath %q must end in .pdf", ErrInvalidValue, c.Output.DefaultPath)
	}

	switch strings.ToLower(c.Renderer.Backend) {
	case "", "native", "chrome":
	default:
		return fmt.Errorf("%w: renderer.backend %q (must be native or chrome)", ErrInvalidValue, c.Renderer.Backend)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}

	if c.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("%w: server.maxUploadBytes must not be negative, got %d", ErrInvalidValue, c.Server.MaxUploadBytes)
	}
	if c.Server.Workers < 0 || c.Server.Workers > MaxWorkers {
		return fmt.Errorf("%w: server.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Server.Workers)
	}
	if c.Server.PublicURL != "" {
		u, err := url.Parse(c.Server.PublicURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: server.publicURL %q (must be an absolute http(s) URL)", ErrInvalidValue, c.Server.PublicURL)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q (must be debug, info, warn, or error)", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log.format %q (must be console or json)", ErrInvalidValue, c.Log.Format)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name, on top of
// DefaultConfig. A value containing a path separator is read as a path;
// otherwise it names a file searched in standard locations. A missing file
// is an error (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.ReadFileStrict(configPath, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths lists the files LoadConfig tries for a config name, in order:
// current directory, then the user config directory; .yaml before .yml.
func SearchPaths(name string) []string {
	exts := []string{".yaml", ".yml"}
	paths := make([]string, 0, 2*len(exts))
	for _, ext := range exts {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range exts {
			paths = append(paths, filepath.Join(dir, appDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

// YAML renders the configuration, e.g. for `cv2pdf config`.
func (c *Config) YAML() ([]byte, error) {
	return yamlutil.Marshal(c)
}
