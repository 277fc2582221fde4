// Package engine evaluates relationship rules.
//
// Apply is pure apart from resource reads through its Loader. It never
// writes: the mutations of one rule firing are returned together in an
// Outcome, built on a clone of the run configuration, and committed by the
// caller as a unit. A rule that fails halfway leaves nothing to commit.
package engine
