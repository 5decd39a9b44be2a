// Package config loads the optional YAML defaults file the CLI
// front-ends accept via -config, and builds the zap logger they share.
package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"
)

// A Config holds the defaults a CLI front-end falls back to when a
// flag is left unset. The cmd front-ends read LocalHost, LocalRealm,
// VendorID and LogLevel; DictionaryPath, StackingDepth and the
// ProprietaryMinCode/ProprietaryMaxCode range are loaded but not read
// by them (their flags and built-in defaults decide those values).
type Config struct {
	DictionaryPath     string `yaml:"dictionary_path"`
	LocalHost          string `yaml:"local_host"`
	LocalRealm         string `yaml:"local_realm"`
	VendorID           uint32 `yaml:"vendor_id"`
	StackingDepth      int    `yaml:"stacking_depth"`
	ProprietaryMinCode uint32 `yaml:"proprietary_min_code"`
	ProprietaryMaxCode uint32 `yaml:"proprietary_max_code"`
	LogLevel           string `yaml:"log_level"`
}

// Default returns the baseline Config a CLI starts from before any
// -config file or flag overrides it.
func Default() *Config {
	return &Config{
		DictionaryPath:     ".",
		LocalHost:          "fuzzer.localdomain",
		LocalRealm:         "localdomain",
		VendorID:           0,
		StackingDepth:      128,
		ProprietaryMinCode: 0,
		ProprietaryMaxCode: 1 << 24,
		LogLevel:           "info",
	}
}

// Load reads a YAML file at path and overlays it onto Default(). A
// field absent from the file keeps its default value.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewLogger builds the *zap.SugaredLogger a CLI front-end uses for its
// own lifetime, at the level named by c.LogLevel (info when the name is
// empty; an unrecognized name returns the level parse error).
func (c *Config) NewLogger() (*zap.SugaredLogger, error) {
	level := zapcore.InfoLevel
	if c.LogLevel != "" {
		if err := level.Set(c.LogLevel); err != nil {
			return nil, err
		}
	}

	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// NopLogger returns a logger that discards everything, the default
// for library callers that never asked for log output.
func NopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
