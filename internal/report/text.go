package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/Paintersrp/linkrank/internal/services/rank"
	"github.com/Paintersrp/linkrank/internal/stats"
)

type styles struct {
	title  lipgloss.Style
	muted  lipgloss.Style
	border lipgloss.Style
	cell   lipgloss.Style
}

func newStyles(w io.Writer, noColor bool) styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		title: r.NewStyle().
			Foreground(lipgloss.Color("#0AF")).
			Bold(true),
		muted: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555", Dark: "#999"}),
		border: r.NewStyle().
			Foreground(lipgloss.Color("#334455")),
		cell: r.NewStyle().Padding(0, 1),
	}
}

func (st styles) cellStyle(_, _ int) lipgloss.Style {
	return st.cell
}

func renderText(w io.Writer, run *rank.Run, opts Options) error {
	st := newStyles(w, opts.NoColor)

	header := fmt.Sprintf("%d documents, %d links", run.Graph.Len(), run.Graph.EdgeCount())
	if _, err := fmt.Fprintf(w, "%s\n%s\n\n", st.title.Render("Link statistics"), st.muted.Render(header)); err != nil {
		return err
	}

	report, err := run.Stats()
	if err != nil {
		if _, err := fmt.Fprintln(w, st.muted.Render("no documents to summarise")); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(w, statsTable(st, report).Render()); err != nil {
			return err
		}
	}

	if opts.StatsOnly || run.Result == nil {
		return nil
	}

	convergence := fmt.Sprintf("converged after %d iterations (delta %.6f)", run.Result.Iterations, run.Result.Delta)
	if !run.Result.Converged {
		convergence = fmt.Sprintf("stopped at %d iterations without converging (delta %.6f)", run.Result.Iterations, run.Result.Delta)
	}
	if _, err := fmt.Fprintf(w, "\n%s\n%s\n\n", st.title.Render("PageRank"), st.muted.Render(convergence)); err != nil {
		return err
	}

	top := run.Top(opts.Top)
	rows := make([][]string, 0, len(top))
	for i, e := range top {
		rows = append(rows, []string{strconv.Itoa(i + 1), e.Name, fmt.Sprintf("%.6f", e.Score)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.border).
		StyleFunc(st.cellStyle).
		Headers("#", "Document", "Score").
		Rows(rows...)

	_, err = fmt.Fprintln(w, t.Render())
	return err
}

func statsTable(st styles, r stats.Report) *table.Table {
	row := func(label string, s stats.Summary) []string {
		return []string{
			label,
			strconv.Itoa(s.Count),
			formatFloat(s.Mean),
			formatFloat(s.Median),
			strconv.Itoa(s.Min),
			strconv.Itoa(s.Max),
			formatQuintiles(s.Quintiles),
		}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.border).
		StyleFunc(st.cellStyle).
		Headers("Links", "Count", "Mean", "Median", "Min", "Max", "Quintiles").
		Row(row("outgoing", r.Outgoing)...).
		Row(row("incoming", r.Incoming)...)
}
