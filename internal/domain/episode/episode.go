// Package episode provides the Episode domain value.
package episode

import "time"

// Episode represents a playable podcast episode.
// The parent podcast's name and artwork are denormalized onto the episode
// so that playback state can be rendered without a podcast lookup.
type Episode struct {
	URI             string        // Enclosure/media URI, the episode identity
	Title           string        // Episode title
	Subtitle        string        // Short tagline (optional)
	Author          string        // Episode author
	Summary         string        // Episode description
	Published       time.Time     // Publish timestamp
	Duration        time.Duration // Episode length; 0 when unknown
	PodcastName     string        // Parent podcast name
	PodcastImageURL string        // Parent podcast artwork URL
}

// Equal reports whether two episodes are interchangeable for queue
// membership. Episodes compare by value: every field must match.
func (e Episode) Equal(other Episode) bool {
	return e.URI == other.URI &&
		e.Title == other.Title &&
		e.Subtitle == other.Subtitle &&
		e.Author == other.Author &&
		e.Summary == other.Summary &&
		e.Published.Equal(other.Published) &&
		e.Duration == other.Duration &&
		e.PodcastName == other.PodcastName &&
		e.PodcastImageURL == other.PodcastImageURL
}

// HasDuration reports whether the episode length is known.
func (e Episode) HasDuration() bool {
	return e.Duration > 0
}

// ClampPosition clamps a playback position into the episode's valid range.
// The lower bound is always zero; the upper bound applies only when the
// duration is known.
func (e Episode) ClampPosition(pos time.Duration) time.Duration {
	if pos < 0 {
		return 0
	}
	if e.HasDuration() && pos > e.Duration {
		return e.Duration
	}
	return pos
}
