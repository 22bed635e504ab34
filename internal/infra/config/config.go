// Package config provides configuration loading from YAML files.
package config

import (
	"net/url"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig            `yaml:"server"`
	Catalog  CatalogConfig           `yaml:"catalog"`
	Player   PlayerConfig            `yaml:"player"`
	Filters  map[string]FilterConfig `yaml:"filters"`
	Messages MessagesConfig          `yaml:"messages"`
	Spotify  SpotifyConfig           `yaml:"spotify"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr         string      `yaml:"addr" default:":8080"`
	ControlToken string      `yaml:"control_token"` // empty disables the check
	Hooks        HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// CatalogConfig represents episode catalog configuration.
type CatalogConfig struct {
	HomeLimit         int            `yaml:"home_limit" default:"12" validate:"gte=1,lte=100"`
	LatestCount       int            `yaml:"latest_count" default:"2" validate:"gte=0"`
	HomeRevalidate    time.Duration  `yaml:"home_revalidate" default:"8h" validate:"gte=0"`
	EpisodeRevalidate time.Duration  `yaml:"episode_revalidate" default:"24h" validate:"gte=0"`
	Locale            string         `yaml:"locale" default:"pt-BR"`
	Sources           []SourceConfig `yaml:"sources" validate:"required,min=1,dive"`
}

// SourceConfig represents a single episode source configuration.
type SourceConfig struct {
	Type        string         `yaml:"type" validate:"required,oneof=api spotify"`
	DisplayName string         `yaml:"display_name" validate:"required"`
	Settings    map[string]any `yaml:"settings"`
}

// PlayerConfig represents playback session configuration.
type PlayerConfig struct {
	KeepQueueOnCatalogChange bool          `yaml:"keep_queue_on_catalog_change"`
	RefreshInterval          time.Duration `yaml:"refresh_interval" default:"15m" validate:"gte=0"` // 0 disables
	EventBuffer              int           `yaml:"event_buffer" default:"32" validate:"gte=1"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// MessagesConfig represents user-facing messages for no-op player actions.
type MessagesConfig struct {
	Success           string `yaml:"success" default:"ok"`
	DefaultError      string `yaml:"default_error" default:"request failed"`
	EmptyQueue        string `yaml:"empty_queue" default:"nothing is playing"`
	NoNextEpisode     string `yaml:"no_next_episode" default:"this is the last episode"`
	NoPreviousEpisode string `yaml:"no_previous_episode" default:"this is the first episode"`
	InvalidIndex      string `yaml:"invalid_index" default:"episode position out of range"`
	EpisodeNotFound   string `yaml:"episode_not_found" default:"episode not found"`
}

// SpotifyConfig represents Spotify API configuration.
// Only required when a spotify source is configured.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Market       string `yaml:"market" validate:"omitempty,len=2" default:"BR"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses YAML configuration, applies env overrides and defaults,
// and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("PODCASTR_CONTROL_TOKEN"); v != "" {
		c.Server.ControlToken = v
	}
	if v := os.Getenv("PODCASTR_API_URL"); v != "" {
		for i := range c.Catalog.Sources {
			if c.Catalog.Sources[i].Type == "api" {
				if c.Catalog.Sources[i].Settings == nil {
					c.Catalog.Sources[i].Settings = map[string]any{}
				}
				c.Catalog.Sources[i].Settings["base_url"] = v
				break
			}
		}
	}
}

// GetMessage returns the message for the given code.
func (c *Config) GetMessage(code string) string {
	switch code {
	case "success":
		return c.Messages.Success
	case "empty_queue":
		return c.Messages.EmptyQueue
	case "no_next_episode":
		return c.Messages.NoNextEpisode
	case "no_previous_episode":
		return c.Messages.NoPreviousEpisode
	case "invalid_index":
		return c.Messages.InvalidIndex
	case "episode_not_found":
		return c.Messages.EpisodeNotFound
	default:
		return c.Messages.DefaultError
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.Catalog.Locale != "" && !episode.IsSupportedLocale(c.Catalog.Locale) {
		return errors.Newf("unsupported catalog locale %q", c.Catalog.Locale)
	}
	if c.Catalog.LatestCount > c.Catalog.HomeLimit {
		return errors.Newf("latest_count (%d) must not exceed home_limit (%d)", c.Catalog.LatestCount, c.Catalog.HomeLimit)
	}

	return c.validateSources()
}

// validateSources checks per-type requirements that struct tags cannot express.
func (c *Config) validateSources() error {
	for i, src := range c.Catalog.Sources {
		switch src.Type {
		case "api":
			raw, _ := src.Settings["base_url"].(string)
			if raw == "" {
				return errors.Newf("source %d (%s): base_url is required", i, src.DisplayName)
			}
			if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
				return errors.Newf("source %d (%s): invalid base_url %q", i, src.DisplayName, raw)
			}
		case "spotify":
			if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
				return errors.Newf("source %d (%s): spotify client_id and client_secret are required", i, src.DisplayName)
			}
		}
	}
	return nil
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}

// FilterSettings returns the settings for a filter.
func (c *Config) FilterSettings(filterName string) map[string]any {
	if f, ok := c.Filters[filterName]; ok {
		return f.Settings
	}
	return nil
}
