// Package pagerank computes PageRank over a link graph with the power method.
package pagerank

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Paintersrp/linkrank/internal/graph"
)

const (
	DefaultDamping       = 0.85
	DefaultMaxIterations = 10000
	DefaultTolerance     = 0.005
)

// minChunk is the smallest number of nodes handed to a single worker.
var minChunk = 2048

// ErrInvalidOptions is returned when Options fail validation.
var ErrInvalidOptions = errors.New("invalid pagerank options")

// Iteration describes one completed power-method step.
type Iteration struct {
	N     int
	Delta float64
	// Sum is the total rank after renormalization.
	Sum float64
}

// Options configures a PageRank computation.
type Options struct {
	// Damping is the probability of following a link rather than jumping to
	// a random node. Must lie in (0, 1).
	Damping float64
	// MaxIterations caps the number of power-method steps.
	MaxIterations int
	// Tolerance stops iteration once the L1 distance between successive
	// vectors drops below it.
	Tolerance float64
	// Workers bounds the goroutines used per iteration. Zero uses GOMAXPROCS.
	Workers int
	// OnIteration, when set, is called after every iteration.
	OnIteration func(Iteration)
}

// DefaultOptions returns the standard damping, iteration cap and tolerance.
func DefaultOptions() Options {
	return Options{
		Damping:       DefaultDamping,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}
}

// Validate reports whether the options can drive a computation.
func (o Options) Validate() error {
	switch {
	case math.IsNaN(o.Damping) || o.Damping <= 0 || o.Damping >= 1:
		return fmt.Errorf("%w: damping must be in (0, 1), got %v", ErrInvalidOptions, o.Damping)
	case o.MaxIterations < 1:
		return fmt.Errorf("%w: max iterations must be at least 1, got %d", ErrInvalidOptions, o.MaxIterations)
	case math.IsNaN(o.Tolerance) || o.Tolerance <= 0:
		return fmt.Errorf("%w: tolerance must be positive, got %v", ErrInvalidOptions, o.Tolerance)
	case o.Workers < 0:
		return fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidOptions, o.Workers)
	}
	return nil
}

// Result is the outcome of a computation.
type Result struct {
	Ranks      Ranks
	Iterations int
	Converged  bool
	// Delta is the L1 distance of the final iteration.
	Delta float64
}

// Compute runs the power method over g.
//
// Rank held by nodes without outgoing links is spread evenly over every node
// on each iteration, and the vector is renormalized to sum to one. Hitting
// the iteration cap is not an error: the last vector is returned with
// Converged set to false.
func Compute(g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	nodes := g.Nodes()
	n := len(nodes)
	if n == 0 {
		return &Result{Ranks: Ranks{}, Converged: true}, nil
	}

	m := newMatrix(g, nodes)

	rank := make([]float64, n)
	next := make([]float64, n)
	initial := 1.0 / float64(n)
	for i := range rank {
		rank[i] = initial
	}

	res := &Result{}
	workers := opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	base := (1 - opts.Damping) / float64(n)

	for iter := 1; iter <= opts.MaxIterations; iter++ {
		dangling := 0.0
		for _, i := range m.dangling {
			dangling += rank[i]
		}
		dangling /= float64(n)

		m.step(rank, next, base, opts.Damping, dangling, workers)

		sum := 0.0
		for _, v := range next {
			sum += v
		}
		delta := 0.0
		for i := range next {
			next[i] /= sum
			delta += math.Abs(next[i] - rank[i])
		}

		rank, next = next, rank
		res.Iterations = iter
		res.Delta = delta

		if opts.OnIteration != nil {
			total := 0.0
			for _, v := range rank {
				total += v
			}
			opts.OnIteration(Iteration{N: iter, Delta: delta, Sum: total})
		}

		if delta < opts.Tolerance {
			res.Converged = true
			break
		}
	}

	res.Ranks = make(Ranks, n)
	for i, name := range nodes {
		res.Ranks[name] = rank[i]
	}
	return res, nil
}

// matrix is the index-based view of the graph used in the hot loop.
type matrix struct {
	preds    [][]int
	out      []float64
	dangling []int
}

func newMatrix(g *graph.Graph, nodes []string) *matrix {
	index := make(map[string]int, len(nodes))
	for i, name := range nodes {
		index[name] = i
	}

	m := &matrix{
		preds: make([][]int, len(nodes)),
		out:   make([]float64, len(nodes)),
	}
	for i, name := range nodes {
		preds := g.Predecessors(name)
		m.preds[i] = make([]int, len(preds))
		for j, p := range preds {
			m.preds[i][j] = index[p]
		}
		m.out[i] = float64(g.OutDegree(name))
		if m.out[i] == 0 {
			m.dangling = append(m.dangling, i)
		}
	}
	return m
}

// step fills next from rank. Workers write disjoint ranges of next and
// only read rank, so no locking is needed; Wait is the barrier.
func (m *matrix) step(rank, next []float64, base, damping, dangling float64, workers int) {
	n := len(rank)
	chunk := (n + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}
	if chunk >= n {
		m.stepRange(rank, next, base, damping, dangling, 0, n)
		return
	}

	var eg errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		eg.Go(func() error {
			m.stepRange(rank, next, base, damping, dangling, lo, hi)
			return nil
		})
	}
	_ = eg.Wait()
}

func (m *matrix) stepRange(rank, next []float64, base, damping, dangling float64, lo, hi int) {
	for v := lo; v < hi; v++ {
		sum := 0.0
		for _, u := range m.preds[v] {
			// A predecessor always has at least one outgoing edge.
			if m.out[u] > 0 {
				sum += rank[u] / m.out[u]
			}
		}
		next[v] = base + damping*(sum+dangling)
	}
}

// Ranks maps node names to their PageRank score.
type Ranks map[string]float64

// Entry is a single ranked node.
type Entry struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Sum returns the total of all scores.
func (r Ranks) Sum() float64 {
	total := 0.0
	for _, v := range r {
		total += v
	}
	return total
}

// Top returns the k highest-ranked nodes, highest first. Equal scores are
// ordered by name. A non-positive k returns every node.
func (r Ranks) Top(k int) []Entry {
	entries := make([]Entry, 0, len(r))
	for name, score := range r {
		entries = append(entries, Entry{Name: name, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})
	if k > 0 && k < len(entries) {
		entries = entries[:k]
	}
	return entries
}
