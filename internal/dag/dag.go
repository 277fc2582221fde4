package dag

import (
	"fmt"
	"slices"
	"strings"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a vertex. Adding an existing vertex does nothing.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{id: id}
	g.order = append(g.order, id)
}

// AddEdge creates a directed edge from fromID to toID. Both vertices must
// exist. A repeated edge is ignored; an edge from a vertex to itself is
// recorded and reported by DetectCycles.
func (g *Graph) AddEdge(fromID, toID string) error {
	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	if _, ok := g.nodes[toID]; !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}
	if slices.Contains(fromNode.dependents, toID) {
		return nil
	}
	fromNode.dependents = append(fromNode.dependents, toID)
	return nil
}

// DetectCycles returns an error wrapping ErrCycle that names the first cycle
// found, walking vertices in insertion order.
func (g *Graph) DetectCycles() error {
	// permanent: fully visited and not on a cycle.
	// stack: the current DFS path.
	permanent := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		if permanent[id] {
			return nil
		}
		if onStack[id] {
			start := slices.Index(stack, id)
			path := append(slices.Clone(stack[start:]), id)
			return fmt.Errorf("%w: %s", ErrCycle, strings.Join(path, " -> "))
		}

		onStack[id] = true
		stack = append(stack, id)
		for _, next := range g.nodes[id].dependents {
			if err := visit(next); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		delete(onStack, id)
		permanent[id] = true
		return nil
	}

	for _, id := range g.order {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}
