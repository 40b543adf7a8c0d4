// Package graph provides a small directed-graph primitive over string IDs.
// Edges point from a node to its predecessors, matching how tasks store
// their dependencies.
package graph

import "sort"

// Graph is an adjacency structure: node ID -> set of predecessor IDs.
type Graph struct {
	preds map[string]map[string]struct{}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{preds: make(map[string]map[string]struct{})}
}

// AddNode registers id with no edges. Adding an existing node is a no-op.
func (g *Graph) AddNode(id string) {
	if _, ok := g.preds[id]; !ok {
		g.preds[id] = make(map[string]struct{})
	}
}

// AddEdge records pred as a predecessor of succ. Both nodes are created if
// absent.
func (g *Graph) AddEdge(pred, succ string) {
	g.AddNode(pred)
	g.AddNode(succ)
	g.preds[succ][pred] = struct{}{}
}

// RemoveEdge deletes the pred -> succ edge if present.
func (g *Graph) RemoveEdge(pred, succ string) {
	if set, ok := g.preds[succ]; ok {
		delete(set, pred)
	}
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.preds[id]
	return ok
}

// HasEdge reports whether pred is a direct predecessor of succ.
func (g *Graph) HasEdge(pred, succ string) bool {
	_, ok := g.preds[succ][pred]
	return ok
}

// Predecessors returns the direct predecessors of id, sorted.
func (g *Graph) Predecessors(id string) []string {
	return sortedKeys(g.preds[id])
}

// Successors returns the nodes that list id as a predecessor, sorted.
func (g *Graph) Successors(id string) []string {
	var out []string
	for succ, set := range g.preds {
		if _, ok := set[id]; ok {
			out = append(out, succ)
		}
	}
	sort.Strings(out)
	return out
}

// Nodes returns every node ID, sorted.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.preds))
	for id := range g.preds {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Reachable reports whether target can be reached from start by repeatedly
// following predecessor edges. A node reaches itself.
func (g *Graph) Reachable(start, target string) bool {
	if start == target {
		return true
	}
	visited := map[string]bool{start: true}
	stack := []string{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for pred := range g.preds[id] {
			if pred == target {
				return true
			}
			if !visited[pred] {
				visited[pred] = true
				stack = append(stack, pred)
			}
		}
	}
	return false
}

// WouldCycle reports whether adding the edge pred -> succ would close a
// cycle, i.e. whether a path already leads from succ forward to pred.
func (g *Graph) WouldCycle(pred, succ string) bool {
	return g.Reachable(pred, succ)
}

// Edge is a single predecessor -> successor relation.
type Edge struct {
	Pred string
	Succ string
}

// FindCycleEdges runs a DFS over predecessor edges and returns the back edges
// it meets. Removing every returned edge leaves the graph acyclic. Traversal
// order is deterministic.
func (g *Graph) FindCycleEdges() []Edge {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(g.preds))
	var back []Edge

	var visit func(id string)
	visit = func(id string) {
		color[id] = grey
		for _, pred := range sortedKeys(g.preds[id]) {
			switch color[pred] {
			case grey:
				back = append(back, Edge{Pred: pred, Succ: id})
			case white:
				visit(pred)
			}
		}
		color[id] = black
	}

	for _, id := range g.Nodes() {
		if color[id] == white {
			visit(id)
		}
	}
	return back
}

// TopoOrder returns the nodes ordered so that every predecessor precedes its
// successors. ok is false when the graph contains a cycle. Ties are broken
// lexically.
func (g *Graph) TopoOrder() (order []string, ok bool) {
	indegree := make(map[string]int, len(g.preds))
	for id, set := range g.preds {
		indegree[id] = len(set)
	}
	successors := make(map[string][]string, len(g.preds))
	for id, set := range g.preds {
		for pred := range set {
			successors[pred] = append(successors[pred], id)
		}
	}

	var ready []string
	for id, n := range indegree {
		if n == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		next := successors[id]
		sort.Strings(next)
		for _, succ := range next {
			indegree[succ]--
			if indegree[succ] == 0 {
				ready = insertSorted(ready, succ)
			}
		}
	}
	return order, len(order) == len(g.preds)
}

func insertSorted(vals []string, s string) []string {
	i := sort.SearchStrings(vals, s)
	vals = append(vals, "")
	copy(vals[i+1:], vals[i:])
	vals[i] = s
	return vals
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
