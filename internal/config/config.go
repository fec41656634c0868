package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dshills/scrub/internal/detect"
)

// Config represents the scrub configuration.
type Config struct {
	Style       string       `json:"style"`
	BlurRadius  float64      `json:"blurRadius"`
	PixelScale  float64      `json:"pixelScale"`
	Padding     float64      `json:"padding"`
	MaskPadding int          `json:"maskPadding"`
	CustomTerms []string     `json:"customTerms,omitempty"`
	Format      string       `json:"format"`
	Concurrency int          `json:"concurrency"`
	OCR         OCRConfig    `json:"ocr"`
	NER         NERConfig    `json:"ner"`
	Cache       CacheConfig  `json:"cache"`
	Limits      LimitsConfig `json:"limits"`
}

// OCRConfig selects and tunes the text recognizer.
type OCRConfig struct {
	Mode           string  `json:"mode"`
	URL            string  `json:"url,omitempty"`
	SidecarSuffix  string  `json:"sidecarSuffix,omitempty"`
	RatePerSecond  float64 `json:"ratePerSecond"`
	Burst          int     `json:"burst"`
	TimeoutSeconds int     `json:"timeoutSeconds"`
}

// NERConfig controls the optional named-entity sidecar.
type NERConfig struct {
	Enabled       bool    `json:"enabled"`
	URL           string  `json:"url,omitempty"`
	RatePerSecond float64 `json:"ratePerSecond"`
}

// CacheConfig controls caching of recognizer responses.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// LimitsConfig bounds the work done per image. It is read once at startup.
type LimitsConfig struct {
	TimeoutSeconds  float64 `json:"timeoutSeconds"`
	MaxDimension    int     `json:"maxDimension"`
	DownscaleFactor float64 `json:"downscaleFactor"`
	MaxNameAttempts int     `json:"maxNameAttempts"`
}

// Timeout returns the per-image timeout as a duration.
func (l LimitsConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds * float64(time.Second))
}

const (
	OCRModeSidecar = "sidecar"
	OCRModeHTTP    = "http"
)

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Style:       "blur",
		BlurRadius:  20,
		PixelScale:  24,
		Padding:     6,
		MaskPadding: 16,
		Format:      "text",
		Concurrency: 2,
		OCR: OCRConfig{
			Mode:           OCRModeSidecar,
			SidecarSuffix:  ".json",
			RatePerSecond:  2,
			Burst:          1,
			TimeoutSeconds: 30,
		},
		NER: NERConfig{
			URL:           "http://localhost:8001",
			RatePerSecond: 10,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Limits: LimitsConfig{
			TimeoutSeconds:  15,
			MaxDimension:    4000,
			DownscaleFactor: 1.2,
			MaxNameAttempts: 100,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for scrub.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scrub"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "scrub"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "scrub"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "scrub"), nil
	default:
		return filepath.Join(home, ".config", "scrub"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile returns the defaults overlaid with the config file. A missing
// file is not an error. Keys absent from the file keep their defaults.
func LoadFile() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-empty values are applied).
func Load(overrides map[string]string) (Config, error) {
	// A missing .env is the common case.
	_ = godotenv.Load()

	cfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	cfg.CustomTerms = detect.NormalizeTerms(cfg.CustomTerms)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKeys maps environment variables to config keys.
var envKeys = map[string]string{
	"SCRUB_STYLE":            "style",
	"SCRUB_BLUR_RADIUS":      "blurRadius",
	"SCRUB_PIXEL_SCALE":      "pixelScale",
	"SCRUB_PADDING":          "padding",
	"SCRUB_MASK_PADDING":     "maskPadding",
	"SCRUB_CUSTOM_TERMS":     "customTerms",
	"SCRUB_FORMAT":           "format",
	"SCRUB_CONCURRENCY":      "concurrency",
	"SCRUB_OCR_MODE":         "ocr.mode",
	"SCRUB_OCR_URL":          "ocr.url",
	"SCRUB_NER_ENABLED":      "ner.enabled",
	"SCRUB_NER_URL":          "ner.url",
	"SCRUB_CACHE_ENABLED":    "cache.enabled",
	"SCRUB_CACHE_DIR":        "cache.dir",
	"SCRUB_TIMEOUT_SECONDS":  "limits.timeoutSeconds",
	"SCRUB_MAX_DIMENSION":    "limits.maxDimension",
	"SCRUB_DOWNSCALE_FACTOR": "limits.downscaleFactor",
}

// EnvVars returns the supported environment variable names, sorted.
func EnvVars() []string {
	names := make([]string, 0, len(envKeys))
	for k := range envKeys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func mergeEnv(cfg *Config) error {
	for _, name := range EnvVars() {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			continue
		}
		if err := SetField(cfg, envKeys[name], v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	keys := make([]string, 0, len(overrides))
	for k, v := range overrides {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := SetField(cfg, k, overrides[k]); err != nil {
			return fmt.Errorf("--%s: %w", k, err)
		}
	}
	return nil
}

// Keys lists every key accepted by SetField.
func Keys() []string {
	return []string{
		"style", "blurRadius", "pixelScale", "padding", "maskPadding",
		"customTerms", "format", "concurrency",
		"ocr.mode", "ocr.url", "ocr.sidecarSuffix", "ocr.ratePerSecond", "ocr.burst", "ocr.timeoutSeconds",
		"ner.enabled", "ner.url", "ner.ratePerSecond",
		"cache.enabled", "cache.dir", "cache.ttlSeconds",
		"limits.timeoutSeconds", "limits.maxDimension", "limits.downscaleFactor", "limits.maxNameAttempts",
	}
}

// SetField sets a single config field by key name. Returns error if key is
// unknown or the value does not parse.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "style":
		cfg.Style = value
	case "blurRadius":
		return setFloat(&cfg.BlurRadius, key, value)
	case "pixelScale":
		return setFloat(&cfg.PixelScale, key, value)
	case "padding":
		return setFloat(&cfg.Padding, key, value)
	case "maskPadding":
		return setInt(&cfg.MaskPadding, key, value)
	case "customTerms":
		cfg.CustomTerms = splitList(value)
	case "format":
		cfg.Format = value
	case "concurrency":
		return setInt(&cfg.Concurrency, key, value)
	case "ocr.mode":
		cfg.OCR.Mode = value
	case "ocr.url":
		cfg.OCR.URL = value
	case "ocr.sidecarSuffix":
		cfg.OCR.SidecarSuffix = value
	case "ocr.ratePerSecond":
		return setFloat(&cfg.OCR.RatePerSecond, key, value)
	case "ocr.burst":
		return setInt(&cfg.OCR.Burst, key, value)
	case "ocr.timeoutSeconds":
		return setInt(&cfg.OCR.TimeoutSeconds, key, value)
	case "ner.enabled":
		return setBool(&cfg.NER.Enabled, key, value)
	case "ner.url":
		cfg.NER.URL = value
	case "ner.ratePerSecond":
		return setFloat(&cfg.NER.RatePerSecond, key, value)
	case "cache.enabled":
		return setBool(&cfg.Cache.Enabled, key, value)
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		return setInt(&cfg.Cache.TTLSeconds, key, value)
	case "limits.timeoutSeconds":
		return setFloat(&cfg.Limits.TimeoutSeconds, key, value)
	case "limits.maxDimension":
		return setInt(&cfg.Limits.MaxDimension, key, value)
	case "limits.downscaleFactor":
		return setFloat(&cfg.Limits.DownscaleFactor, key, value)
	case "limits.maxNameAttempts":
		return setInt(&cfg.Limits.MaxNameAttempts, key, value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key, value string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("%s must be a number: %w", key, err)
	}
	*dst = f
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s must be true or false: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Style {
	case "blur":
		if c.BlurRadius <= 0 {
			return fmt.Errorf("blurRadius must be positive")
		}
	case "pixelate":
		if c.PixelScale <= 0 {
			return fmt.Errorf("pixelScale must be positive")
		}
	default:
		return fmt.Errorf("invalid style %q (must be blur or pixelate)", c.Style)
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("invalid format %q (must be text or json)", c.Format)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	if c.Padding < 0 || c.MaskPadding < 0 {
		return fmt.Errorf("padding values must not be negative")
	}
	switch c.OCR.Mode {
	case OCRModeSidecar:
	case OCRModeHTTP:
		if c.OCR.URL == "" {
			return fmt.Errorf("ocr.url is required when ocr.mode is http")
		}
	default:
		return fmt.Errorf("invalid ocr.mode %q (must be sidecar or http)", c.OCR.Mode)
	}
	if c.NER.Enabled && c.NER.URL == "" {
		return fmt.Errorf("ner.url is required when ner.enabled is true")
	}
	l := c.Limits
	if l.TimeoutSeconds <= 0 || l.MaxDimension <= 0 || l.MaxNameAttempts <= 0 {
		return fmt.Errorf("limits must be positive")
	}
	if l.DownscaleFactor <= 1 {
		return fmt.Errorf("limits.downscaleFactor must be greater than 1")
	}
	return nil
}
