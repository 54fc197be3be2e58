package engine

import "fmt"

// ValidationError reports a structural problem found while building a
// query graph (spec §7): a bad schema, an unwired input, a cycle. The
// engine collects every problem found in one BuildQuery call via
// go.uber.org/multierr rather than failing on the first.
type ValidationError struct {
	Query  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("engine: validation failed for query %q: %s", e.Query, e.Reason)
}

// StateError reports that an operation was attempted against the engine
// or a query handle in a state that does not permit it (spec §7): a
// relation or query name registered twice, a second transaction opened
// while one is open, a transaction ended twice, an insert naming an
// undefined relation.
type StateError struct {
	Op     string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("engine: %s: %s", e.Op, e.Reason)
}

// ProviderError wraps a failure returned by a Compute provider (spec
// §4.6, §7), naming which relation's provider failed.
type ProviderError struct {
	Relation string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("engine: provider for relation %q failed: %v", e.Relation, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
