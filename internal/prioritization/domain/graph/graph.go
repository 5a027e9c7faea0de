// Package graph builds the task dependency graph for a batch and finds the
// tasks that take part in a dependency cycle.
package graph

import "sort"

// Node is a task as seen by the graph: its id and the ids it depends on.
type Node struct {
	ID           int64
	Dependencies []int64
}

// Set is an unordered set of task ids.
type Set map[int64]struct{}

// Has reports whether id is in the set.
func (s Set) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Graph maps each task id to the set of ids it depends on.
// It is built once per batch and never mutated afterwards.
type Graph struct {
	edges map[int64]Set
}

// Build creates the graph. When an id appears twice the later node's
// dependencies replace the earlier ones. Edges to ids outside the batch are
// kept on the owning node but are never traversed.
func Build(nodes []Node) Graph {
	edges := make(map[int64]Set, len(nodes))
	for _, n := range nodes {
		deps := make(Set, len(n.Dependencies))
		for _, d := range n.Dependencies {
			deps[d] = struct{}{}
		}
		edges[n.ID] = deps
	}
	return Graph{edges: edges}
}

// Len returns the number of nodes.
func (g Graph) Len() int {
	return len(g.edges)
}

// Has reports whether id is a node of the graph.
func (g Graph) Has(id int64) bool {
	_, ok := g.edges[id]
	return ok
}

// IDs returns all node ids in ascending order.
func (g Graph) IDs() []int64 {
	out := make([]int64, 0, len(g.edges))
	for id := range g.edges {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DependenciesOf returns the declared dependencies of id in ascending order.
func (g Graph) DependenciesOf(id int64) []int64 {
	return g.edges[id].Sorted()
}

// DependentsCount returns how many other nodes list id as a dependency.
// A self dependency does not count.
func (g Graph) DependentsCount(id int64) int {
	count := 0
	for node, deps := range g.edges {
		if node == id {
			continue
		}
		if deps.Has(id) {
			count++
		}
	}
	return count
}

// Cycles returns the ids of every node found on a dependency cycle.
func (g Graph) Cycles() Set {
	circular := make(Set)
	visited := make(Set, len(g.edges))
	onStack := make(Set)

	for _, id := range g.IDs() {
		if !visited.Has(id) {
			g.visit(id, nil, visited, onStack, circular)
		}
	}
	return circular
}

// visit walks depth-first from node. Reaching a node that is still on the
// recursion stack closes a cycle made of the path suffix starting at it.
func (g Graph) visit(node int64, path []int64, visited, onStack, circular Set) {
	visited[node] = struct{}{}
	onStack[node] = struct{}{}
	path = append(path, node)

	for _, next := range g.DependenciesOf(node) {
		if !g.Has(next) {
			continue
		}
		if onStack.Has(next) {
			for i := len(path) - 1; i >= 0; i-- {
				circular[path[i]] = struct{}{}
				if path[i] == next {
					break
				}
			}
			continue
		}
		if !visited.Has(next) {
			g.visit(next, path, visited, onStack, circular)
		}
	}

	delete(onStack, node)
}

// Analyze builds the graph for nodes and detects cycles in one call.
func Analyze(nodes []Node) (Graph, Set) {
	g := Build(nodes)
	return g, g.Cycles()
}
