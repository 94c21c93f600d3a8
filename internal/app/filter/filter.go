// Package filter provides admission filters for automatically queued
// episodes. Filters only guard the refill path; episodes queued directly
// through the player API bypass them.
package filter

import (
	"context"

	"github.com/osa030/podbox/internal/app/player"
	"github.com/osa030/podbox/internal/domain/episode"
)

// Result represents the result of a filter check.
type Result struct {
	Admitted bool
	Code     string // e.g. "duplicate_episode", "duration_limit_exceeded"
}

// Admit returns an admitted result.
func Admit() Result {
	return Result{Admitted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Admitted: false, Code: code}
}

// Filter is the interface for episode admission filters.
type Filter interface {
	// Name returns the filter name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ReturnCodes returns the codes this filter can return.
	ReturnCodes() []string
	// ValidateConfig validates and applies the filter configuration.
	ValidateConfig(settings map[string]any) error
	// Check decides whether the candidate may be enqueued given the
	// current playback state.
	Check(ctx context.Context, candidate episode.Episode, st player.State) Result
}

// registry holds registered filter factories.
var registry = make(map[string]func() Filter)

// Register registers a filter factory.
func Register(name string, factory func() Filter) {
	registry[name] = factory
}

// GetRegistered returns all registered filter factories.
func GetRegistered() map[string]func() Filter {
	return registry
}
