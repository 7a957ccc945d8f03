// Package stats summarises link degree distributions.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Paintersrp/linkrank/internal/graph"
)

// ErrEmpty is returned when a summary is requested over no values.
var ErrEmpty = errors.New("no values to summarise")

// QuintilePercents are the percentiles reported as quintiles.
var QuintilePercents = [5]float64{20, 40, 60, 80, 100}

// Summary describes a distribution of degree counts.
type Summary struct {
	Count     int        `json:"count"`
	Mean      float64    `json:"mean"`
	Median    float64    `json:"median"`
	Min       int        `json:"min"`
	Max       int        `json:"max"`
	Quintiles [5]float64 `json:"quintiles"`
}

// Summarize computes count, mean, median, extremes and quintiles. Percentiles
// use linear interpolation between closest ranks.
func Summarize(values []int) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrEmpty
	}

	sorted := append([]int(nil), values...)
	sort.Ints(sorted)

	total := 0
	for _, v := range sorted {
		total += v
	}

	s := Summary{
		Count:  len(sorted),
		Mean:   float64(total) / float64(len(sorted)),
		Median: Percentile(sorted, 50),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
	for i, p := range QuintilePercents {
		s.Quintiles[i] = Percentile(sorted, p)
	}
	return s, nil
}

// Percentile returns the p-th percentile of sorted values. It returns NaN for
// an empty slice.
func Percentile(sorted []int, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return float64(sorted[0])
	}
	if p >= 100 {
		return float64(sorted[len(sorted)-1])
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return float64(sorted[lo]) + (float64(sorted[hi])-float64(sorted[lo]))*frac
}

// Report pairs the outgoing and incoming link summaries of a graph.
type Report struct {
	Outgoing Summary `json:"outgoing"`
	Incoming Summary `json:"incoming"`
}

// Describe summarises both degree maps.
func Describe(out, in graph.Degrees) (Report, error) {
	outgoing, err := Summarize(out.Values())
	if err != nil {
		return Report{}, fmt.Errorf("outgoing links: %w", err)
	}
	incoming, err := Summarize(in.Values())
	if err != nil {
		return Report{}, fmt.Errorf("incoming links: %w", err)
	}
	return Report{Outgoing: outgoing, Incoming: incoming}, nil
}
