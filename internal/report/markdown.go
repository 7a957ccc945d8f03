package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/Paintersrp/linkrank/internal/services/rank"
	"github.com/Paintersrp/linkrank/internal/stats"
)

// Markdown builds the markdown source of a run report.
func Markdown(run *rank.Run, opts Options) string {
	var b strings.Builder

	b.WriteString("# Link report\n\n")
	fmt.Fprintf(&b, "Run `%s`: %d documents, %d links.\n\n", run.ID, run.Graph.Len(), run.Graph.EdgeCount())

	b.WriteString("## Link statistics\n\n")
	if r, err := run.Stats(); err != nil {
		b.WriteString("_No documents to summarise._\n")
	} else {
		b.WriteString("| Links | Count | Mean | Median | Min | Max | Quintiles |\n")
		b.WriteString("| --- | ---: | ---: | ---: | ---: | ---: | --- |\n")
		writeSummaryRow(&b, "outgoing", r.Outgoing)
		writeSummaryRow(&b, "incoming", r.Incoming)
	}

	if opts.StatsOnly || run.Result == nil {
		return b.String()
	}

	b.WriteString("\n## PageRank\n\n")
	if run.Result.Converged {
		fmt.Fprintf(&b, "Converged after %d iterations.\n\n", run.Result.Iterations)
	} else {
		fmt.Fprintf(&b, "Stopped at %d iterations without converging.\n\n", run.Result.Iterations)
	}

	top := run.Top(opts.Top)
	if len(top) == 0 {
		b.WriteString("_No documents ranked._\n")
		return b.String()
	}
	for i, e := range top {
		fmt.Fprintf(&b, "%d. **%s** %.6f\n", i+1, e.Name, e.Score)
	}
	return b.String()
}

func writeSummaryRow(b *strings.Builder, label string, s stats.Summary) {
	fmt.Fprintf(b, "| %s | %d | %s | %s | %d | %d | %s |\n",
		label, s.Count, formatFloat(s.Mean), formatFloat(s.Median), s.Min, s.Max, formatQuintiles(s.Quintiles))
}

func renderMarkdown(w io.Writer, run *rank.Run, opts Options) error {
	style, profile := "dracula", termenv.ANSI256
	if opts.NoColor {
		style, profile = "notty", termenv.Ascii
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(opts.width()),
		glamour.WithColorProfile(profile),
	)
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}

	out, err := r.Render(Markdown(run, opts))
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
