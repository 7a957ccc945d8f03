// Package graph builds the directed link graph between documents.
package graph

import (
	"sort"
	"strings"
)

// Graph is a directed graph over document names. Forward and reverse
// adjacency are updated together on every edge insertion so predecessor
// lookups never scan the whole graph.
type Graph struct {
	order      []string
	successors map[string]map[string]struct{}
	// predecessors mirrors successors: b is in predecessors[a] iff a is in
	// successors[b].
	predecessors map[string]map[string]struct{}
	edges        int
}

// New constructs an empty graph.
func New() *Graph {
	return &Graph{
		successors:   make(map[string]map[string]struct{}),
		predecessors: make(map[string]map[string]struct{}),
	}
}

// AddNode adds a node if it is not already present.
func (g *Graph) AddNode(name string) {
	if _, ok := g.successors[name]; ok {
		return
	}
	g.order = append(g.order, name)
	g.successors[name] = make(map[string]struct{})
	g.predecessors[name] = make(map[string]struct{})
}

// AddEdge adds a directed edge, creating both endpoints when needed.
// Duplicate edges collapse into one.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if _, ok := g.successors[from][to]; ok {
		return
	}
	g.successors[from][to] = struct{}{}
	g.predecessors[to][from] = struct{}{}
	g.edges++
}

// Has reports whether the node exists.
func (g *Graph) Has(name string) bool {
	_, ok := g.successors[name]
	return ok
}

// HasEdge reports whether the edge from -> to exists.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.successors[from][to]
	return ok
}

// Nodes returns the node names in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.order...)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Successors returns the nodes the given node links to, sorted by name.
func (g *Graph) Successors(name string) []string {
	return setToSortedSlice(g.successors[name])
}

// Predecessors returns the nodes linking to the given node, sorted by name.
func (g *Graph) Predecessors(name string) []string {
	return setToSortedSlice(g.predecessors[name])
}

// OutDegree returns the number of distinct successors.
func (g *Graph) OutDegree(name string) int {
	return len(g.successors[name])
}

// InDegree returns the number of distinct predecessors.
func (g *Graph) InDegree(name string) int {
	return len(g.predecessors[name])
}

// OutDegrees returns the out-degree of every node.
func (g *Graph) OutDegrees() Degrees {
	out := make(Degrees, len(g.order))
	for _, name := range g.order {
		out[name] = len(g.successors[name])
	}
	return out
}

// InDegrees returns the in-degree of every node.
func (g *Graph) InDegrees() Degrees {
	in := make(Degrees, len(g.order))
	for _, name := range g.order {
		in[name] = len(g.predecessors[name])
	}
	return in
}

// Neighbor describes a node along with its outbound links and backlinks.
type Neighbor struct {
	Name      string
	Outbound  []string
	Backlinks []string
}

// Neighborhood returns the seed nodes and their direct neighbors. Unknown
// seeds are skipped. The result is sorted by name.
func (g *Graph) Neighborhood(seeds ...string) []Neighbor {
	visited := make(map[string]struct{})
	var out []Neighbor

	visit := func(name string) {
		if _, ok := visited[name]; ok {
			return
		}
		visited[name] = struct{}{}
		out = append(out, Neighbor{
			Name:      name,
			Outbound:  g.Successors(name),
			Backlinks: g.Predecessors(name),
		})
	}

	for _, seed := range seeds {
		if !g.Has(seed) {
			continue
		}
		visit(seed)
		for next := range g.successors[seed] {
			visit(next)
		}
		for prev := range g.predecessors[seed] {
			visit(prev)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// String renders the adjacency list, one "node -> a, b" line per node.
func (g *Graph) String() string {
	var b strings.Builder
	for i, name := range g.order {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(name)
		b.WriteString(" ->")
		if succ := g.Successors(name); len(succ) > 0 {
			b.WriteByte(' ')
			b.WriteString(strings.Join(succ, ", "))
		}
	}
	return b.String()
}

// Degrees maps node names to a degree count.
type Degrees map[string]int

// Values returns the degree counts ordered by node name.
func (d Degrees) Values() []int {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]int, len(names))
	for i, name := range names {
		out[i] = d[name]
	}
	return out
}

// Total returns the sum of all degree counts.
func (d Degrees) Total() int {
	total := 0
	for _, v := range d {
		total += v
	}
	return total
}

func setToSortedSlice(values map[string]struct{}) []string {
	out := make([]string, 0, len(values))
	for v := range values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
