package storage

import (
	"context"
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Transition records one rule changing state.
type Transition struct {
	At     time.Time `json:"at"`    // wall clock of the sample
	Civil  string    `json:"civil"` // civil date-time the rule was evaluated at
	Rule   string    `json:"rule"`
	Active bool      `json:"active"`
}

// Store is the persistence API used by the sampler.
type Store interface {
	AppendTransition(ctx context.Context, t Transition) error
	// LastStates returns the most recent recorded state per rule.
	LastStates(ctx context.Context) (map[string]bool, error)
	// Recent returns up to limit transitions, newest first.
	Recent(ctx context.Context, limit int) ([]Transition, error)
	Close() error
}
