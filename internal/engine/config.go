package engine

import "go.uber.org/zap"

// Config holds engine-wide defaults (spec §6, §9). Build one with
// DefaultConfig and override fields via Option functions passed to New.
type Config struct {
	// Logger receives structured diagnostics (batch flushes with output
	// add/remove counts, enumerable-provider cold-start failures).
	// Defaults to a no-op logger so the engine is silent unless a caller
	// opts in.
	Logger *zap.Logger

	// AutoFlush, when true, runs Propagate immediately on every Insert/
	// Delete/Update/ApplyDelta call instead of waiting for an explicit
	// Flush (spec §6.1's batch-vs-immediate tradeoff).
	AutoFlush bool

	// ColdStartByDefault seeds newly built query graphs against any
	// already-present base data before returning them from BuildQuery
	// (spec §6.1).
	ColdStartByDefault bool
}

// DefaultConfig returns the engine's zero-configuration defaults: a no-op
// logger, auto-flush disabled (batches are coalesced until Flush), and
// cold start enabled.
func DefaultConfig() Config {
	return Config{
		Logger:             zap.NewNop(),
		AutoFlush:          false,
		ColdStartByDefault: true,
	}
}

// Option mutates a Config during New.
type Option func(*Config)

// WithLogger overrides the engine's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithAutoFlush sets whether Insert/Delete/Update/ApplyDelta propagate
// immediately rather than coalescing until Flush/FlushAll.
func WithAutoFlush(autoFlush bool) Option {
	return func(c *Config) { c.AutoFlush = autoFlush }
}

// WithColdStart sets whether newly built queries cold-start against
// existing base data.
func WithColdStart(coldStart bool) Option {
	return func(c *Config) { c.ColdStartByDefault = coldStart }
}
