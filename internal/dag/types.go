package dag

import "errors"

// ErrCycle is returned by DetectCycles.
var ErrCycle = errors.New("cycle detected")

// Graph is a set of vertices and the directed edges between them. Vertices
// are kept in insertion order so traversals are deterministic.
type Graph struct {
	order []string
	nodes map[string]*node
}

type node struct {
	id string
	// dependents are the vertices this one has an edge to.
	dependents []string
}
