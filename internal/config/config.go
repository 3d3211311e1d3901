// Package config loads service configuration from an optional TOML file with
// environment variable overrides. Every field has a working default so the
// service runs with no config file at all.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxUploadMB  int    `toml:"max_upload_mb"`
	MinReportLen int    `toml:"min_report_len"`
}

type DetectorConfig struct {
	BinaryThreshold     float64 `toml:"binary_threshold"`
	MinBlobAreaFraction float64 `toml:"min_blob_area_fraction"`
	PresenceThreshold   float64 `toml:"presence_threshold"`
	FallbackSeed        int64   `toml:"fallback_seed"`
}

type CalibrationConfig struct {
	DefaultRatio  float64 `toml:"default_ratio"`
	TickSpacingMM float64 `toml:"tick_spacing_mm"`
}

type CompareConfig struct {
	HighConfidence float64 `toml:"high_confidence"`
}

type TelemetryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Config struct {
	Server      ServerConfig      `toml:"server"`
	Detector    DetectorConfig    `toml:"detector"`
	Calibration CalibrationConfig `toml:"calibration"`
	Compare     CompareConfig     `toml:"compare"`
	Telemetry   TelemetryConfig   `toml:"telemetry"`
	LogLevel    string            `toml:"log_level"`
}

// Default returns the configuration used when no file or overrides are set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			MaxUploadMB:  10,
			MinReportLen: 10,
		},
		Detector: DetectorConfig{
			BinaryThreshold:     128,
			MinBlobAreaFraction: 0.002,
			PresenceThreshold:   0.30,
			FallbackSeed:        0,
		},
		Calibration: CalibrationConfig{
			DefaultRatio:  0.1,
			TickSpacingMM: 10,
		},
		Compare: CompareConfig{
			HighConfidence: 0.8,
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
			Path:    "logs/telemetry.jsonl",
		},
		LogLevel: "info",
	}
}

// Load reads the TOML file at path on top of the defaults, then applies
// environment overrides. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides fields from RADVERIFY_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("RADVERIFY_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("RADVERIFY_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("RADVERIFY_TELEMETRY_PATH"); v != "" {
		c.Telemetry.Path = v
	}
	if v := os.Getenv("RADVERIFY_TELEMETRY_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Telemetry.Enabled = b
		}
	}
	if v := os.Getenv("RADVERIFY_FALLBACK_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Detector.FallbackSeed = n
		}
	}
}
