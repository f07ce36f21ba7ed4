package game

import (
	"github.com/coder/quartz"

	"github.com/lox/liarspoker/internal/roomid"
)

// ManagerOption configures a Manager during creation.
type ManagerOption func(*managerConfig)

// managerConfig holds all configuration for creating a manager.
type managerConfig struct {
	clock      quartz.Clock
	secrets    SecretSource
	generateID func() string
	bus        EventBus
	seed       int64
	seedSet    bool
}

// NewManager creates a room manager. Defaults are the real clock, the
// PCG secret source, UUIDv7 room ids and a clock-derived base seed;
// options override each capability for deterministic runs.
//
// Example usage:
//
//	// Production
//	mgr := NewManager()
//
//	// Testing - deterministic clock, seed and secrets
//	mgr := NewManager(
//	    WithClock(quartz.NewMock(t)),
//	    WithSeed(42),
//	)
func NewManager(opts ...ManagerOption) *Manager {
	cfg := &managerConfig{
		clock:      quartz.NewReal(),
		secrets:    NewSecretSource(),
		generateID: roomid.Generate,
		bus:        NewEventBus(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if !cfg.seedSet {
		cfg.seed = cfg.clock.Now().UnixNano()
	}

	return &Manager{
		clock:      cfg.clock,
		secrets:    cfg.secrets,
		generateID: cfg.generateID,
		bus:        cfg.bus,
		seed:       cfg.seed,
	}
}

// WithClock overrides the time source. Event and bid timestamps all
// come from this clock.
func WithClock(clock quartz.Clock) ManagerOption {
	return func(c *managerConfig) {
		c.clock = clock
	}
}

// WithSecretSource overrides how hidden secrets are dealt.
func WithSecretSource(source SecretSource) ManagerOption {
	return func(c *managerConfig) {
		c.secrets = source
	}
}

// WithSeed fixes the base seed that room seeds derive from. Two
// managers with the same seed, clock and id generation produce
// identical rooms for identical operation sequences.
func WithSeed(seed int64) ManagerOption {
	return func(c *managerConfig) {
		c.seed = seed
		c.seedSet = true
	}
}

// WithRoomID overrides room id generation.
func WithRoomID(generate func() string) ManagerOption {
	return func(c *managerConfig) {
		c.generateID = generate
	}
}

// WithEventBus shares an external event bus instead of the manager's
// own.
func WithEventBus(bus EventBus) ManagerOption {
	return func(c *managerConfig) {
		c.bus = bus
	}
}
