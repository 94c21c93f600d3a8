// Package player provides the episode playback engine with an integrated
// play queue.
package player

import (
	"time"

	"github.com/osa030/podbox/internal/domain/episode"
)

// DefaultSpeed is normal playback speed: one second of episode time per
// second of real time. The speed doubles as the tick length of the
// advancement schedule.
const DefaultSpeed = time.Second

// State is an immutable snapshot of the engine. A fresh snapshot is built
// and republished after every mutation; holders must not retain and mutate
// the queue slice.
type State struct {
	CurrentEpisode *episode.Episode  // nil when no episode is loaded
	Queue          []episode.Episode // Episodes awaiting playback, head is next
	Speed          time.Duration     // Elapsed time added per real-time tick
	IsPlaying      bool              // True while the advancement schedule runs
	TimeElapsed    time.Duration     // Position within the current episode
}

// Status represents the engine's coarse playback status, derived from the
// snapshot fields.
type Status int

const (
	StatusIdle    Status = iota // No episode loaded
	StatusPaused                // Episode loaded, not playing
	StatusPlaying               // Episode loaded and playing
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPaused:
		return "paused"
	case StatusPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Status derives the playback status from the snapshot.
func (s State) Status() Status {
	switch {
	case s.CurrentEpisode == nil:
		return StatusIdle
	case s.IsPlaying:
		return StatusPlaying
	default:
		return StatusPaused
	}
}
