// Package podcast provides the Podcast domain entity.
package podcast

import (
	"time"

	"github.com/osa030/podbox/internal/domain/episode"
)

// Podcast represents a podcast show and its known episodes.
type Podcast struct {
	URI         string            // Feed URI
	Title       string            // Show title
	Description string            // Show description
	Author      string            // Show author
	ImageURL    string            // Artwork URL
	Episodes    []episode.Episode // Known episodes, newest first not guaranteed
}

// EpisodeURIs returns the URIs of all known episodes.
func (p *Podcast) EpisodeURIs() []string {
	uris := make([]string, len(p.Episodes))
	for i, e := range p.Episodes {
		uris[i] = e.URI
	}
	return uris
}

// TotalDuration returns the combined duration of all episodes with a
// known length.
func (p *Podcast) TotalDuration() time.Duration {
	var total time.Duration
	for _, e := range p.Episodes {
		if e.HasDuration() {
			total += e.Duration
		}
	}
	return total
}

// Latest returns the most recently published episode.
func (p *Podcast) Latest() (episode.Episode, bool) {
	if len(p.Episodes) == 0 {
		return episode.Episode{}, false
	}
	latest := p.Episodes[0]
	for _, e := range p.Episodes[1:] {
		if e.Published.After(latest.Published) {
			latest = e
		}
	}
	return latest, true
}

// Denormalized returns the podcast's episodes with the show name and
// artwork copied onto each one.
func (p *Podcast) Denormalized() []episode.Episode {
	eps := make([]episode.Episode, len(p.Episodes))
	for i, e := range p.Episodes {
		if e.PodcastName == "" {
			e.PodcastName = p.Title
		}
		if e.PodcastImageURL == "" {
			e.PodcastImageURL = p.ImageURL
		}
		eps[i] = e
	}
	return eps
}
