// Package lifecycle orchestrates runs: creating them from a signature,
// mutating variables and resources, propagating relationships, resetting
// resources to their defaults and handing runs to the container executor.
//
// Every mutation is validated before anything is written. Relationship
// outcomes are committed one rule at a time, resources first and the run
// configuration last.
package lifecycle
