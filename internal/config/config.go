package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables read by Load. A double underscore
// separates nesting levels: REVIEWSENSE_MODEL__PATH sets model.path.
const EnvPrefix = "REVIEWSENSE_"

type Config struct {
	Vocabulary VocabularyConfig `koanf:"vocabulary"`
	Model      ModelConfig      `koanf:"model"`
	Feature    FeatureConfig    `koanf:"feature"`
	Log        LogConfig        `koanf:"log"`
	Metrics    MetricsConfig    `koanf:"metrics"`
}

type VocabularyConfig struct {
	Path           string `koanf:"path" validate:"required"`
	AllowOverrides bool   `koanf:"allow_overrides"`
}

// ModelConfig selects the scorer: a local model directory or a TensorFlow
// Serving endpoint, never both.
type ModelConfig struct {
	Path      string        `koanf:"path" validate:"required_without=RemoteURL,excluded_with=RemoteURL"`
	RemoteURL string        `koanf:"remote_url" validate:"omitempty,url"`
	Name      string        `koanf:"name" validate:"required_with=RemoteURL"`
	Timeout   time.Duration `koanf:"timeout" validate:"gte=0"`
}

type FeatureConfig struct {
	Length int `koanf:"length" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

var validate = validator.New()

// Default returns the settings used for keys absent from every source.
func Default() *Config {
	return &Config{
		Model:   ModelConfig{Timeout: 10 * time.Second},
		Feature: FeatureConfig{Length: 600},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path (skipped when it does not exist), then the environment, on
// top of Default, and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}
