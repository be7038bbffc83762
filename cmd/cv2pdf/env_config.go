package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-cv2pdf/internal/config"
)

// envPrefix starts every recognized variable.
const envPrefix = "CV2PDF_"

// envConfig holds configuration from environment variables.
// Provides CI/CD and container friendly overrides without YAML files.
type envConfig struct {
	ConfigPath string // CV2PDF_CONFIG: config file name or path
	Backend    string // CV2PDF_BACKEND: native or chrome
	Timeout    string // CV2PDF_TIMEOUT: chrome page-load timeout

	Addr       string // CV2PDF_ADDR: listen address for serve
	StorageDir string // CV2PDF_STORAGE_DIR: where serve keeps PDFs
	PublicURL  string // CV2PDF_PUBLIC_URL: base of download links
	Workers    string // CV2PDF_WORKERS: parallel converters for serve

	LogLevel  string // CV2PDF_LOG_LEVEL: debug, info, warn, error
	LogFormat string // CV2PDF_LOG_FORMAT: console or json
}

// knownEnvVars lists valid CV2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"CV2PDF_CONFIG":      true,
	"CV2PDF_BACKEND":     true,
	"CV2PDF_TIMEOUT":     true,
	"CV2PDF_ADDR":        true,
	"CV2PDF_STORAGE_DIR": true,
	"CV2PDF_PUBLIC_URL":  true,
	"CV2PDF_WORKERS":     true,
	"CV2PDF_LOG_LEVEL":   true,
	"CV2PDF_LOG_FORMAT":  true,
}

// loadEnvConfig reads the recognized CV2PDF_* values.
func loadEnvConfig(getenv func(string) string) *envConfig {
	return &envConfig{
		ConfigPath: getenv("CV2PDF_CONFIG"),
		Backend:    getenv("CV2PDF_BACKEND"),
		Timeout:    getenv("CV2PDF_TIMEOUT"),
		Addr:       getenv("CV2PDF_ADDR"),
		StorageDir: getenv("CV2PDF_STORAGE_DIR"),
		PublicURL:  getenv("CV2PDF_PUBLIC_URL"),
		Workers:    getenv("CV2PDF_WORKERS"),
		LogLevel:   getenv("CV2PDF_LOG_LEVEL"),
		LogFormat:  getenv("CV2PDF_LOG_FORMAT"),
	}
}

// warnUnknownEnvVars warns about unrecognized CV2PDF_* variables.
// Helps catch typos like CV2PDF_BACKEDN.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overlays set variables on cfg, which already holds the
// config file and defaults. Flags are merged afterwards, giving
// flags > env > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) error {
	setIf(&cfg.Renderer.Backend, env.Backend)
	setIf(&cfg.Renderer.Timeout, env.Timeout)
	setIf(&cfg.Server.Addr, env.Addr)
	setIf(&cfg.Server.StorageDir, env.StorageDir)
	setIf(&cfg.Server.PublicURL, env.PublicURL)
	setIf(&cfg.Log.Level, env.LogLevel)
	setIf(&cfg.Log.Format, env.LogFormat)

	if env.Workers != "" {
		n, err := strconv.Atoi(env.Workers)
		if err != nil {
			return fmt.Errorf("%w: CV2PDF_WORKERS %q is not an integer", config.ErrInvalidValue, env.Workers)
		}
		cfg.Server.Workers = n
	}
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
