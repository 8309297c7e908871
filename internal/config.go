// Package internal provides application configuration and component wiring.
package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	Cache   CacheConfig       `yaml:"cache"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Content.Validate(); err != nil {
		return err
	}
	return c.Cache.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// ContentConfig describes the content corpus on disk.
type ContentConfig struct {
	Path       string   `yaml:"path"`
	Extensions []string `yaml:"extensions"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Extensions, validation.Required, validation.Each(validation.By(checkExtension))),
	)
}

func checkExtension(value interface{}) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, ".") {
		return fmt.Errorf("extension %q must start with a dot", s)
	}
	return nil
}

// Duration wraps time.Duration so YAML accepts "1h30m" strings.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	v, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// CacheConfig holds the lifetimes of the engine's logical caches.
//
// The corpus load carries the longest TTL since a full reload is the most
// expensive operation in the system; derived views stay short so editorial
// changes surface quickly even without the watcher.
type CacheConfig struct {
	CorpusTTL  Duration `yaml:"corpus_ttl"`
	PostTTL    Duration `yaml:"post_ttl"`
	DerivedTTL Duration `yaml:"derived_ttl"`
	TagsTTL    Duration `yaml:"tags_ttl"`
	RenderTTL  Duration `yaml:"render_ttl"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CorpusTTL, validation.Required),
		validation.Field(&c.PostTTL, validation.Required),
		validation.Field(&c.DerivedTTL, validation.Required),
		validation.Field(&c.TagsTTL, validation.Required),
		validation.Field(&c.RenderTTL, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Content: ContentConfig{
			Path:       "./content",
			Extensions: []string{".md", ".mdx"},
		},
		Cache: CacheConfig{
			CorpusTTL:  Duration(time.Hour),
			PostTTL:    Duration(5 * time.Minute),
			DerivedTTL: Duration(5 * time.Minute),
			TagsTTL:    Duration(15 * time.Minute),
			RenderTTL:  Duration(time.Hour),
		},
	}
}
