// Package report renders ranking runs for the terminal.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Paintersrp/linkrank/internal/graph"
	"github.com/Paintersrp/linkrank/internal/pagerank"
	"github.com/Paintersrp/linkrank/internal/services/rank"
	"github.com/Paintersrp/linkrank/internal/stats"
)

type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat maps a flag value onto a Format. Empty selects text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown report format %q, expected text, markdown or json", s)
	}
}

type Options struct {
	Format  Format
	Top     int
	NoColor bool
	// Width wraps markdown output. Zero uses 100 columns.
	Width int
	// StatsOnly omits the ranking section.
	StatsOnly bool
}

func (o Options) width() int {
	if o.Width > 0 {
		return o.Width
	}
	return 100
}

// Render writes run to w in the requested format.
func Render(w io.Writer, run *rank.Run, opts Options) error {
	if run == nil {
		return errors.New("nothing to report")
	}

	switch opts.Format {
	case "", FormatText:
		return renderText(w, run, opts)
	case FormatMarkdown:
		return renderMarkdown(w, run, opts)
	case FormatJSON:
		return renderJSON(w, run, opts)
	default:
		return fmt.Errorf("unknown report format %q", opts.Format)
	}
}

// Document is the JSON form of a run.
type Document struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	DurationMS int64            `json:"duration_ms"`
	Documents  int              `json:"documents"`
	Nodes      int              `json:"nodes"`
	Edges      int              `json:"edges"`
	Iterations int              `json:"iterations,omitempty"`
	Converged  bool             `json:"converged,omitempty"`
	Delta      float64          `json:"delta,omitempty"`
	Stats      *stats.Report    `json:"stats,omitempty"`
	Top        []pagerank.Entry `json:"top,omitempty"`
}

func newDocument(run *rank.Run, opts Options) Document {
	doc := Document{
		RunID:      run.ID.String(),
		StartedAt:  run.StartedAt.UTC(),
		DurationMS: run.Duration.Milliseconds(),
		Documents:  run.Documents,
	}
	if run.Graph != nil {
		doc.Nodes = run.Graph.Len()
		doc.Edges = run.Graph.EdgeCount()
	}
	if r, err := run.Stats(); err == nil {
		doc.Stats = &r
	}
	if !opts.StatsOnly && run.Result != nil {
		doc.Iterations = run.Result.Iterations
		doc.Converged = run.Result.Converged
		doc.Delta = run.Result.Delta
		doc.Top = run.Top(opts.Top)
	}
	return doc
}

func renderJSON(w io.Writer, run *rank.Run, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newDocument(run, opts)); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// Graph writes the adjacency listing, or the neighborhood of around when it
// is not empty.
func Graph(w io.Writer, g *graph.Graph, around []string) error {
	if len(around) == 0 {
		if g.Len() == 0 {
			return nil
		}
		_, err := fmt.Fprintln(w, g.String())
		return err
	}

	neighbors := g.Neighborhood(around...)
	if len(neighbors) == 0 {
		return fmt.Errorf("no documents named %s", strings.Join(around, ", "))
	}
	for _, n := range neighbors {
		if _, err := fmt.Fprintf(w, "%s\n  out: %s\n  in:  %s\n",
			n.Name,
			strings.Join(n.Outbound, ", "),
			strings.Join(n.Backlinks, ", "),
		); err != nil {
			return err
		}
	}
	return nil
}

func formatQuintiles(q [5]float64) string {
	parts := make([]string, len(q))
	for i, v := range q {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, " / ")
}

func formatFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
