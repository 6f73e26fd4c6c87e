// Package config loads runtime settings for ScreenOff.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/frudas24/screenoff/internal/store"
)

// AppID names the per-user data directory.
const AppID = "dev.zidane.screenoff"

// AppName is the display name used for the tray tooltip and autostart value.
const AppName = "ScreenOff"

const (
	defaultControlAddr    = "127.0.0.1:8791"
	defaultControlEnabled = true
	settingsFile          = "settings.yaml"
	envFile               = ".env"
)

// Config holds runtime configuration values.
type Config struct {
	DataDir        string
	StatePath      string
	SettingsPath   string
	ControlAddr    string
	ControlEnabled bool
	Debug          bool
	LogFile        string
	GenericNames   []string
}

// Settings mirrors settings.yaml. Nil fields keep the current value.
type Settings struct {
	ControlAddr    *string  `yaml:"control_addr"`
	ControlEnabled *bool    `yaml:"control_enabled"`
	Debug          *bool    `yaml:"debug"`
	LogFile        *string  `yaml:"log_file"`
	GenericNames   []string `yaml:"generic_monitor_names"`
}

// Load reads defaults, then settings.yaml, then .env and environment overrides.
func Load() (Config, error) {
	dataDir := envString("SCREENOFF_DATA_DIR", "")
	if dataDir == "" {
		dir, err := defaultDataDir()
		if err != nil {
			return Config{}, err
		}
		dataDir = dir
	}

	if err := loadEnvFile(filepath.Join(dataDir, envFile)); err != nil {
		return Config{}, err
	}
	dataDir = envString("SCREENOFF_DATA_DIR", dataDir)

	cfg := Config{
		DataDir:        dataDir,
		StatePath:      filepath.Join(dataDir, store.FileName),
		SettingsPath:   filepath.Join(dataDir, settingsFile),
		ControlAddr:    defaultControlAddr,
		ControlEnabled: defaultControlEnabled,
	}

	s, err := LoadSettings(cfg.SettingsPath)
	if err != nil {
		return Config{}, err
	}
	cfg.Apply(s)

	cfg.ControlAddr = envString("CONTROL_ADDR", cfg.ControlAddr)
	cfg.ControlEnabled = envBool("CONTROL_ENABLED", cfg.ControlEnabled)
	cfg.Debug = envBool("DEBUG", cfg.Debug)
	cfg.LogFile = envString("LOG_FILE", cfg.LogFile)
	if raw := strings.TrimSpace(os.Getenv("GENERIC_MONITOR_NAMES")); raw != "" {
		cfg.GenericNames = splitList(raw)
	}
	if cfg.LogFile != "" && !filepath.IsAbs(cfg.LogFile) {
		cfg.LogFile = filepath.Join(cfg.DataDir, cfg.LogFile)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadSettings reads settings.yaml. A missing file yields empty settings.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

// Apply copies the non-nil settings onto c.
func (c *Config) Apply(s Settings) {
	if s.ControlAddr != nil {
		c.ControlAddr = strings.TrimSpace(*s.ControlAddr)
	}
	if s.ControlEnabled != nil {
		c.ControlEnabled = *s.ControlEnabled
	}
	if s.Debug != nil {
		c.Debug = *s.Debug
	}
	if s.LogFile != nil {
		c.LogFile = strings.TrimSpace(*s.LogFile)
	}
	if len(s.GenericNames) > 0 {
		c.GenericNames = append([]string{}, s.GenericNames...)
	}
}

// validate checks values that would otherwise fail late.
func (c Config) validate() error {
	if c.DataDir == "" {
		return errors.New("data directory is empty")
	}
	if !c.ControlEnabled {
		return nil
	}
	host, port, err := net.SplitHostPort(c.ControlAddr)
	if err != nil {
		return fmt.Errorf("CONTROL_ADDR must be host:port: %w", err)
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return fmt.Errorf("CONTROL_ADDR port must be 0-65535: %w", err)
	}
	if ip := net.ParseIP(host); host != "localhost" && (ip == nil || !ip.IsLoopback()) {
		return fmt.Errorf("CONTROL_ADDR must be a loopback address, got %q", host)
	}
	return nil
}

// defaultDataDir returns the per-user application data directory.
func defaultDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(base, AppID), nil
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envString returns an env override when present, otherwise a default.
func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envBool returns a bool env override when present, otherwise a default.
func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// loadEnvFile loads KEY=VALUE pairs from a .env file.
func loadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := parseEnvLine(line)
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}

	return nil
}

// parseEnvLine parses a single .env line into key/value.
func parseEnvLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.Trim(strings.TrimSpace(value), `"'`), true
}
