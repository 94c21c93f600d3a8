package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
player:
  speed_ms: 500
  autoplay: true

refill:
  enabled: true
  threshold: 3

sources:
  providers:
    - type: catalog
      display_name: Library
      settings:
        loop: false
    - type: feed
      display_name: Morning Feed
      settings:
        feed_url: https://example.com/feed.xml

filters:
  duration_limit_filter:
    enabled: true
    settings:
      max_minutes: 90
  stale_episode_filter:
    enabled: false

catalog:
  podcasts:
    - uri: pod-1
      title: Pod One
      author: Jordan Example
      episodes:
        - uri: ep-1
          title: First
          published: 2025-06-01T09:00:00Z
          duration_sec: 1800
        - uri: ep-2
          title: Second
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playerd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Player.SpeedMs)
	assert.Equal(t, 500*time.Millisecond, cfg.Player.Speed())
	assert.True(t, cfg.Player.Autoplay)

	assert.True(t, cfg.Refill.Enabled)
	assert.Equal(t, 3, cfg.Refill.Threshold)
	// batch_size not set in the file, default applies.
	assert.Equal(t, 5, cfg.Refill.BatchSize)

	require.Len(t, cfg.Sources.Providers, 2)
	assert.Equal(t, "catalog", cfg.Sources.Providers[0].Type)
	assert.Equal(t, "Morning Feed", cfg.Sources.Providers[1].DisplayName)
	assert.Equal(t, "https://example.com/feed.xml", cfg.Sources.Providers[1].Settings["feed_url"])

	assert.True(t, cfg.IsFilterEnabled("duration_limit_filter"))
	assert.False(t, cfg.IsFilterEnabled("stale_episode_filter"))
	assert.False(t, cfg.IsFilterEnabled("no_such_filter"))
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PODBOX_SPEED_MS", "2000")
	t.Setenv("PODBOX_AUTOPLAY", "false")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.Player.SpeedMs)
	assert.False(t, cfg.Player.Autoplay)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "player:\n  autoplay: false\n"))
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Player.SpeedMs)
	assert.Equal(t, 2, cfg.Refill.Threshold)
	assert.Equal(t, 5, cfg.Refill.BatchSize)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Player: PlayerConfig{SpeedMs: 1000},
			Refill: RefillConfig{Threshold: 2, BatchSize: 5},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "negative speed",
			mutate:  func(c *Config) { c.Player.SpeedMs = -5 },
			wantErr: true,
		},
		{
			name:    "speed above ceiling",
			mutate:  func(c *Config) { c.Player.SpeedMs = 70000 },
			wantErr: true,
		},
		{
			name:    "batch size too large",
			mutate:  func(c *Config) { c.Refill.BatchSize = 1000 },
			wantErr: true,
		},
		{
			name: "provider missing display name",
			mutate: func(c *Config) {
				c.Sources.Providers = []ProviderConfig{{Type: "catalog"}}
			},
			wantErr: true,
		},
		{
			name: "catalog episode missing title",
			mutate: func(c *Config) {
				c.Catalog.Podcasts = []PodcastConfig{{
					URI:      "pod-1",
					Title:    "Pod One",
					Episodes: []EpisodeConfig{{URI: "ep-1"}},
				}}
			},
			wantErr: true,
		},
		{
			name: "malformed published timestamp",
			mutate: func(c *Config) {
				c.Catalog.Podcasts = []PodcastConfig{{
					URI:   "pod-1",
					Title: "Pod One",
					Episodes: []EpisodeConfig{{
						URI:       "ep-1",
						Title:     "First",
						Published: "June 1st",
					}},
				}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPodcasts(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	pods := cfg.Podcasts()
	require.Len(t, pods, 1)
	assert.Equal(t, "Pod One", pods[0].Title)
	assert.Equal(t, "Jordan Example", pods[0].Author)

	require.Len(t, pods[0].Episodes, 2)
	ep1 := pods[0].Episodes[0]
	assert.Equal(t, "ep-1", ep1.URI)
	assert.Equal(t, 30*time.Minute, ep1.Duration)
	assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), ep1.Published.UTC())

	ep2 := pods[0].Episodes[1]
	assert.True(t, ep2.Published.IsZero())
	assert.Equal(t, time.Duration(0), ep2.Duration)
}
