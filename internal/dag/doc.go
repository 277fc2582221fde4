// Package dag holds a small directed graph over named vertices. The registry
// builds one per signature, with an edge from each relationship source to
// each of its targets, to prove relationships acyclic before transitive
// propagation is allowed.
package dag
