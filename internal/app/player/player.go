package player

import (
	"context"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podbox/internal/domain/episode"
)

// Player is the playback contract the session and UI layers program
// against. Operations with unmet preconditions (no current episode, empty
// queue, already playing) are silent no-ops rather than errors.
type Player interface {
	SetCurrentEpisode(ep episode.Episode)
	CurrentEpisode() (episode.Episode, bool)
	AddToQueue(ep episode.Episode)
	ClearQueue()
	Play()
	PlayOne(ep episode.Episode)
	PlayMany(eps []episode.Episode)
	Pause()
	Stop()
	AdvanceBy(d time.Duration)
	RewindBy(d time.Duration)
	OnSeekStarted()
	OnSeekFinished(target time.Duration)
	IncreaseSpeed(delta time.Duration)
	DecreaseSpeed(delta time.Duration)
	Next()
	Previous()
	State() State
}

// Sink receives the rebuilt state snapshot after every mutation.
type Sink interface {
	Publish(State)
}

// Engine is a simulated-clock implementation of Player. It performs no
// media decoding; while playing, a tick schedule adds one speed-unit of
// elapsed time per tick until the episode duration is reached.
//
// The mutex only coordinates the tick goroutine with its owner. The public
// API still assumes a single controlling caller; serializing independent
// concurrent clients is out of scope.
type Engine struct {
	mu sync.Mutex

	current *episode.Episode
	queue   []episode.Episode
	speed   time.Duration
	playing bool
	elapsed time.Duration

	// Cancel for the active advancement schedule. Non-nil only between
	// Play and the matching cancel or natural completion.
	tickerCancel context.CancelFunc

	sink Sink
}

var _ Player = (*Engine)(nil)

// NewEngine creates an engine publishing snapshots to sink. A nil sink
// disables publication.
func NewEngine(sink Sink) *Engine {
	return &Engine{
		queue: make([]episode.Episode, 0),
		speed: DefaultSpeed,
		sink:  sink,
	}
}

// SetCurrentEpisode replaces the loaded episode. The queue and playing
// flag are untouched; a running schedule keeps ticking into the new
// episode.
func (e *Engine) SetCurrentEpisode(ep episode.Episode) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.current = &ep
	e.publishLocked()
}

// CurrentEpisode returns the loaded episode, if any.
func (e *Engine) CurrentEpisode() (episode.Episode, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return episode.Episode{}, false
	}
	return *e.current, true
}

// AddToQueue appends an episode to the tail of the queue. Duplicates are
// allowed.
func (e *Engine) AddToQueue(ep episode.Episode) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.queue = append(e.queue, ep)
	e.publishLocked()
}

// ClearQueue empties the queue. The current episode and playing state are
// unaffected.
func (e *Engine) ClearQueue() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.queue = make([]episode.Episode, 0)
	e.publishLocked()
}

// Play starts the advancement schedule. No-op if already playing or no
// episode is loaded.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.playLocked()
	e.publishLocked()
}

// PlayOne is shorthand for PlayMany with a single episode.
func (e *Engine) PlayOne(ep episode.Episode) {
	e.PlayMany([]episode.Episode{ep})
}

// PlayMany rebuilds the queue and starts playing the first input episode.
// The new queue is: the input episodes, then the previously loaded episode
// (if any), then the old queue with the first occurrence of each input
// episode removed. The head is then promoted and played.
func (e *Engine) PlayMany(eps []episode.Episode) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.playing {
		e.playing = false
		e.cancelScheduleLocked()
	}

	remainder := append([]episode.Episode(nil), e.queue...)
	for _, in := range eps {
		for i, queued := range remainder {
			if queued.Equal(in) {
				remainder = append(remainder[:i], remainder[i+1:]...)
				break
			}
		}
	}

	next := make([]episode.Episode, 0, len(eps)+len(remainder)+1)
	next = append(next, eps...)
	if e.current != nil {
		next = append(next, *e.current)
	}
	next = append(next, remainder...)
	e.queue = next

	e.nextLocked()
	e.publishLocked()
}

// Pause stops the schedule and clears the playing flag. Elapsed time is
// kept.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.playing = false
	e.cancelScheduleLocked()
	e.publishLocked()
}

// Stop stops the schedule and resets elapsed time to zero.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.playing = false
	e.elapsed = 0
	e.cancelScheduleLocked()
	e.publishLocked()
}

// AdvanceBy moves elapsed time forward by d, clamped into the episode's
// valid range. A negative d moves backward. No-op without a loaded
// episode.
func (e *Engine) AdvanceBy(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return
	}
	e.elapsed = e.current.ClampPosition(e.elapsed + d)
	e.publishLocked()
}

// RewindBy moves elapsed time backward by d, clamped at zero. Only the
// lower bound is applied; a negative d can push elapsed forward unclamped.
func (e *Engine) RewindBy(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return
	}
	e.elapsed -= d
	if e.elapsed < 0 {
		e.elapsed = 0
	}
	e.publishLocked()
}

// OnSeekStarted pauses playback so the schedule does not fight a
// drag-style seek gesture.
func (e *Engine) OnSeekStarted() {
	e.Pause()
}

// OnSeekFinished sets elapsed time to target, clamped into the episode's
// duration, and resumes playback. No-op when no episode is loaded or its
// duration is unknown.
func (e *Engine) OnSeekFinished(target time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil || !e.current.HasDuration() {
		return
	}
	e.elapsed = e.current.ClampPosition(target)
	e.playLocked()
	e.publishLocked()
}

// IncreaseSpeed adds delta to the playback speed. The change applies from
// the next tick of the schedule.
func (e *Engine) IncreaseSpeed(delta time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.speed += delta
	e.publishLocked()
}

// DecreaseSpeed subtracts delta from the playback speed. No floor is
// enforced: a decrease past zero leaves the schedule with a non-positive
// tick. Known defect, kept as-is.
func (e *Engine) DecreaseSpeed(delta time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.speed -= delta
	e.publishLocked()
}

// Next promotes the queue head to the current episode and plays it.
// No-op when the queue is empty.
func (e *Engine) Next() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextLocked()
	e.publishLocked()
}

// Previous resets elapsed time to zero and stops playback in place. It
// does not navigate to an earlier episode; there is no playback history.
func (e *Engine) Previous() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.elapsed = 0
	e.playing = false
	e.cancelScheduleLocked()
	e.publishLocked()
}

// State returns a snapshot of the engine.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// playLocked starts the advancement schedule. Idempotent: at most one
// schedule is active at a time.
func (e *Engine) playLocked() {
	if e.playing {
		return
	}
	if e.current == nil {
		return
	}

	e.playing = true
	ctx, cancel := context.WithCancel(context.Background())
	e.tickerCancel = cancel

	zlog.Debug().Msgf("player: starting schedule: episode=%s speed=%v elapsed=%v",
		e.current.Title, e.speed, e.elapsed)
	go e.advance(ctx)
}

// advance is the advancement schedule: wait one tick (the current speed as
// real time), then add one speed-unit to elapsed. Exits when cancelled or
// when elapsed reaches a known duration, which completes the episode.
// Speed changes take effect on the following tick, never an in-flight wait.
func (e *Engine) advance(ctx context.Context) {
	for {
		e.mu.Lock()
		tick := e.speed
		e.mu.Unlock()

		timer := time.NewTimer(tick)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		e.mu.Lock()
		// Cancelled between the tick firing and acquiring the lock.
		if ctx.Err() != nil {
			e.mu.Unlock()
			return
		}

		e.elapsed += e.speed
		if e.current != nil && e.current.HasDuration() && e.elapsed >= e.current.Duration {
			e.completeLocked()
			e.publishLocked()
			e.mu.Unlock()
			return
		}

		e.publishLocked()
		e.mu.Unlock()
	}
}

// completeLocked finishes the current episode: playback stops, elapsed
// resets, and a queued episode, if any, is promoted and played
// immediately. The completed episode stays loaded when the queue is empty.
func (e *Engine) completeLocked() {
	zlog.Debug().Msgf("player: episode completed: episode=%s queue=%d",
		e.current.Title, len(e.queue))

	e.playing = false
	e.cancelScheduleLocked()
	e.elapsed = 0

	if len(e.queue) > 0 {
		e.nextLocked()
	}
}

// nextLocked pops the queue head into the current episode, resets elapsed
// time, and starts playing. No-op on an empty queue. If a schedule is
// already running it simply keeps ticking into the new episode.
func (e *Engine) nextLocked() {
	if len(e.queue) == 0 {
		return
	}

	e.elapsed = 0
	head := e.queue[0]
	e.current = &head
	e.queue = append([]episode.Episode(nil), e.queue[1:]...)

	e.playLocked()
}

// cancelScheduleLocked cancels the active schedule. Safe to call when none
// is active.
func (e *Engine) cancelScheduleLocked() {
	if e.tickerCancel != nil {
		e.tickerCancel()
		e.tickerCancel = nil
	}
}

// snapshotLocked rebuilds the published state from the engine fields.
func (e *Engine) snapshotLocked() State {
	s := State{
		Queue:       append([]episode.Episode(nil), e.queue...),
		Speed:       e.speed,
		IsPlaying:   e.playing,
		TimeElapsed: e.elapsed,
	}
	if e.current != nil {
		cp := *e.current
		s.CurrentEpisode = &cp
	}
	return s
}

// publishLocked republishes the snapshot. The sink must not call back into
// the engine.
func (e *Engine) publishLocked() {
	if e.sink == nil {
		return
	}
	e.sink.Publish(e.snapshotLocked())
}
