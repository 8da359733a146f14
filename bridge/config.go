package bridge

import (
	"bytes"
	"context"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/native"
	"github.com/wippyai/hostbridge/vm"
)

// Config holds converter settings. A nil *Config means defaults.
type Config struct {
	// Charset used by DecodeString. Empty means LegacyCharset.
	Charset string `yaml:"charset"`

	// Heap selects where native buffers live: "go" (default) or "linear".
	Heap string `yaml:"heap"`

	// LinearPages caps a linear heap in 64KB pages.
	// 0 means default (256 pages = 16MB).
	LinearPages uint32 `yaml:"linear_pages"`

	// LogLevel is a zap level name ("debug", "info", ...). Empty means "info".
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the settings used when no config is given.
func DefaultConfig() *Config {
	return &Config{
		Charset: LegacyCharset,
		Heap:    native.HeapGo,
	}
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML into a Config on top of DefaultConfig and validates it.
// Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode yaml")
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the heap kind, charset and log level.
func (c *Config) Validate() error {
	switch c.Heap {
	case "", native.HeapGo, native.HeapLinear:
	default:
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("heap").
			Value(c.Heap).
			Detail("unknown heap kind %q", c.Heap).
			Build()
	}
	if c.Charset != "" {
		if err := ValidateCharset(c.Charset); err != nil {
			return errors.New(errors.PhaseConfig, errors.KindUnsupported).
				Path("charset").
				Value(c.Charset).
				Cause(err).
				Build()
		}
	}
	if _, err := c.level(); err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("log_level").
			Value(c.LogLevel).
			Cause(err).
			Build()
	}
	return nil
}

func (c *Config) charset() string {
	if c == nil || c.Charset == "" {
		return LegacyCharset
	}
	return c.Charset
}

func (c *Config) level() (zapcore.Level, error) {
	if c == nil || c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(c.LogLevel)
}

// NewHeap creates the configured native heap.
func (c *Config) NewHeap(ctx context.Context) (native.Heap, error) {
	if c == nil {
		return native.NewGoHeap(), nil
	}
	return native.NewHeap(ctx, c.Heap, c.LinearPages)
}

// NewLogger builds a development logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	lvl, err := c.level()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log level")
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// ValidateCharset reports whether the runtime can encode through name.
func ValidateCharset(name string) error {
	_, err := vm.LookupCharset(name)
	return err
}
