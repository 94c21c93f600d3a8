package episode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEpisode_Equal(t *testing.T) {
	published := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	base := Episode{
		URI:             "https://example.com/ep/1.mp3",
		Title:           "Episode 1",
		Subtitle:        "The first one",
		Author:          "Host",
		Summary:         "An introduction.",
		Published:       published,
		Duration:        30 * time.Minute,
		PodcastName:     "Example Cast",
		PodcastImageURL: "https://example.com/art.png",
	}

	tests := []struct {
		name     string
		other    Episode
		expected bool
	}{
		{
			name:     "identical fields",
			other:    base,
			expected: true,
		},
		{
			name: "same instant in another zone",
			other: func() Episode {
				e := base
				e.Published = published.In(time.FixedZone("JST", 9*3600))
				return e
			}(),
			expected: true,
		},
		{
			name: "different URI",
			other: func() Episode {
				e := base
				e.URI = "https://example.com/ep/2.mp3"
				return e
			}(),
			expected: false,
		},
		{
			name: "different duration",
			other: func() Episode {
				e := base
				e.Duration = 31 * time.Minute
				return e
			}(),
			expected: false,
		},
		{
			name: "different podcast name",
			other: func() Episode {
				e := base
				e.PodcastName = "Other Cast"
				return e
			}(),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, base.Equal(tt.other))
		})
	}
}

func TestEpisode_HasDuration(t *testing.T) {
	assert.True(t, Episode{Duration: time.Minute}.HasDuration())
	assert.False(t, Episode{}.HasDuration())
	assert.False(t, Episode{Duration: -time.Second}.HasDuration())
}

func TestEpisode_ClampPosition(t *testing.T) {
	tests := []struct {
		name     string
		episode  Episode
		pos      time.Duration
		expected time.Duration
	}{
		{
			name:     "within range",
			episode:  Episode{Duration: 10 * time.Minute},
			pos:      5 * time.Minute,
			expected: 5 * time.Minute,
		},
		{
			name:     "negative clamps to zero",
			episode:  Episode{Duration: 10 * time.Minute},
			pos:      -time.Minute,
			expected: 0,
		},
		{
			name:     "beyond duration clamps to duration",
			episode:  Episode{Duration: 10 * time.Minute},
			pos:      time.Hour,
			expected: 10 * time.Minute,
		},
		{
			name:     "exactly duration",
			episode:  Episode{Duration: 10 * time.Minute},
			pos:      10 * time.Minute,
			expected: 10 * time.Minute,
		},
		{
			name:     "unknown duration has no upper bound",
			episode:  Episode{},
			pos:      100 * time.Hour,
			expected: 100 * time.Hour,
		},
		{
			name:     "unknown duration still clamps below zero",
			episode:  Episode{},
			pos:      -time.Second,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.episode.ClampPosition(tt.pos))
		})
	}
}
