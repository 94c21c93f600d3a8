// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/podbox/internal/domain/episode"
	"github.com/osa030/podbox/internal/domain/podcast"
)

// Config represents the application configuration.
type Config struct {
	Player  PlayerConfig            `yaml:"player"`
	Refill  RefillConfig            `yaml:"refill"`
	Sources SourcesConfig           `yaml:"sources"`
	Filters map[string]FilterConfig `yaml:"filters"`
	Catalog CatalogConfig           `yaml:"catalog"`
}

// PlayerConfig represents playback engine configuration.
type PlayerConfig struct {
	// SpeedMs is the initial playback speed/tick length. Runtime speed
	// changes through the engine are not bounded by this.
	SpeedMs  int  `yaml:"speed_ms" default:"1000" validate:"gte=1,lte=60000"`
	Autoplay bool `yaml:"autoplay"`
}

// Speed returns the initial playback speed as a duration.
func (p PlayerConfig) Speed() time.Duration {
	return time.Duration(p.SpeedMs) * time.Millisecond
}

// RefillConfig represents automatic queue refill configuration.
type RefillConfig struct {
	Enabled   bool `yaml:"enabled"`
	Threshold int  `yaml:"threshold" default:"2" validate:"gte=0"`
	BatchSize int  `yaml:"batch_size" default:"5" validate:"gte=1,lte=100"`
}

// SourcesConfig represents episode source configuration.
type SourcesConfig struct {
	Providers []ProviderConfig `yaml:"providers" validate:"dive"`
}

// ProviderConfig represents a single episode provider configuration.
type ProviderConfig struct {
	Type        string         `yaml:"type" validate:"required"`
	DisplayName string         `yaml:"display_name" validate:"required"`
	Settings    map[string]any `yaml:"settings"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// CatalogConfig represents the locally configured podcast catalog.
type CatalogConfig struct {
	Podcasts []PodcastConfig `yaml:"podcasts" validate:"dive"`
}

// PodcastConfig represents one catalog podcast.
type PodcastConfig struct {
	URI         string          `yaml:"uri" validate:"required"`
	Title       string          `yaml:"title" validate:"required"`
	Description string          `yaml:"description"`
	Author      string          `yaml:"author"`
	ImageURL    string          `yaml:"image_url"`
	Episodes    []EpisodeConfig `yaml:"episodes" validate:"dive"`
}

// EpisodeConfig represents one catalog episode.
type EpisodeConfig struct {
	URI         string `yaml:"uri" validate:"required"`
	Title       string `yaml:"title" validate:"required"`
	Subtitle    string `yaml:"subtitle"`
	Author      string `yaml:"author"`
	Summary     string `yaml:"summary"`
	Published   string `yaml:"published"` // RFC3339, optional
	DurationSec int    `yaml:"duration_sec" validate:"gte=0"`
}

// Load loads configuration from a YAML file. Environment variables take
// precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

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
	if v := os.Getenv("PODBOX_AUTOPLAY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Player.Autoplay = b
		}
	}
	if v := os.Getenv("PODBOX_SPEED_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Player.SpeedMs = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	// Validate catalog publish timestamps
	for _, p := range c.Catalog.Podcasts {
		for _, e := range p.Episodes {
			if e.Published == "" {
				continue
			}
			if _, err := time.Parse(time.RFC3339, e.Published); err != nil {
				return errors.Wrapf(err, "invalid published timestamp for episode %s", e.URI)
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

// Podcasts converts the catalog configuration into domain podcasts.
// Validate must have succeeded before calling.
func (c *Config) Podcasts() []podcast.Podcast {
	pods := make([]podcast.Podcast, 0, len(c.Catalog.Podcasts))
	for _, pc := range c.Catalog.Podcasts {
		pod := podcast.Podcast{
			URI:         pc.URI,
			Title:       pc.Title,
			Description: pc.Description,
			Author:      pc.Author,
			ImageURL:    pc.ImageURL,
			Episodes:    make([]episode.Episode, 0, len(pc.Episodes)),
		}
		for _, ec := range pc.Episodes {
			ep := episode.Episode{
				URI:      ec.URI,
				Title:    ec.Title,
				Subtitle: ec.Subtitle,
				Author:   ec.Author,
				Summary:  ec.Summary,
				Duration: time.Duration(ec.DurationSec) * time.Second,
			}
			if ec.Published != "" {
				// Already checked by Validate.
				if t, err := time.Parse(time.RFC3339, ec.Published); err == nil {
					ep.Published = t
				}
			}
			pod.Episodes = append(pod.Episodes, ep)
		}
		pods = append(pods, pod)
	}
	return pods
}
