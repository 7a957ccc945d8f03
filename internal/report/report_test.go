package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/Paintersrp/linkrank/internal/graph"
	"github.com/Paintersrp/linkrank/internal/pagerank"
	"github.com/Paintersrp/linkrank/internal/services/rank"
)

func sampleRun(t *testing.T, docs ...graph.Document) *rank.Run {
	t.Helper()
	g, out, in := graph.Build(docs, graph.Config{})
	res, err := pagerank.Compute(g, pagerank.DefaultOptions())
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	return &rank.Run{
		ID:         uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2"),
		StartedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Duration:   42 * time.Millisecond,
		Documents:  len(docs),
		Graph:      g,
		OutDegrees: out,
		InDegrees:  in,
		Result:     res,
	}
}

func threeDocs() []graph.Document {
	return []graph.Document{
		{Name: "A.html", Text: []byte(`<a href="B.html">b</a><a href="C.html">c</a>`)},
		{Name: "B.html", Text: []byte(`<a href="C.html">c</a>`)},
		{Name: "C.html"},
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":         FormatText,
		"TEXT":     FormatText,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
		"json":     FormatJSON,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil {
			t.Fatalf("ParseFormat(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestRenderTextListsTopDocuments(t *testing.T) {
	var buf bytes.Buffer
	run := sampleRun(t, threeDocs()...)

	if err := Render(&buf, run, Options{Format: FormatText, Top: 2, NoColor: true}); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Link statistics", "3 documents, 3 links", "outgoing", "incoming", "PageRank", "converged after"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no escape sequences with colour disabled:\n%s", out)
	}

	cIdx, bIdx := strings.Index(out, "│ C "), strings.Index(out, "│ B ")
	if cIdx < 0 || bIdx < 0 || cIdx > bIdx {
		t.Fatalf("expected C ranked above B:\n%s", out)
	}
	if strings.Contains(out, "│ A ") {
		t.Fatalf("expected A to be cut by top 2:\n%s", out)
	}
}

func TestRenderTextStatsOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleRun(t, threeDocs()...), Options{StatsOnly: true, NoColor: true}); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if strings.Contains(buf.String(), "PageRank") {
		t.Fatalf("expected ranking section to be omitted:\n%s", buf.String())
	}
}

func TestRenderTextEmptyRun(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleRun(t), Options{NoColor: true}); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "no documents to summarise") {
		t.Fatalf("expected empty notice:\n%s", buf.String())
	}
}

func TestMarkdownSource(t *testing.T) {
	md := Markdown(sampleRun(t, threeDocs()...), Options{Top: 3})

	for _, want := range []string{
		"# Link report",
		"| outgoing | 3 | 1 | 1 | 0 | 2 |",
		"1. **C**",
		"3. **A**",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in markdown:\n%s", want, md)
		}
	}
}

func TestRenderMarkdownWithoutColour(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleRun(t, threeDocs()...), Options{Format: FormatMarkdown, Top: 1, NoColor: true}); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "Link report") {
		t.Fatalf("expected rendered heading:\n%s", buf.String())
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleRun(t, threeDocs()...), Options{Format: FormatJSON, Top: 2}); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if doc.RunID != "7d444840-9dc0-11d1-b245-5ffdce74fad2" || doc.Nodes != 3 || doc.Edges != 3 || doc.DurationMS != 42 {
		t.Fatalf("unexpected header: %+v", doc)
	}
	if doc.Stats == nil || doc.Stats.Incoming.Max != 2 {
		t.Fatalf("unexpected stats: %+v", doc.Stats)
	}

	names := []string{doc.Top[0].Name, doc.Top[1].Name}
	if diff := cmp.Diff([]string{"C", "B"}, names); diff != "" {
		t.Fatalf("top documents (-want +got):\n%s", diff)
	}
}

func TestGraphListing(t *testing.T) {
	run := sampleRun(t, threeDocs()...)

	var buf bytes.Buffer
	if err := Graph(&buf, run.Graph, nil); err != nil {
		t.Fatalf("Graph returned error: %v", err)
	}
	want := "A -> B, C\nB -> C\nC ->\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("listing (-want +got):\n%s", diff)
	}

	buf.Reset()
	if err := Graph(&buf, run.Graph, []string{"B"}); err != nil {
		t.Fatalf("Graph returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "B\n  out: C\n  in:  A\n") {
		t.Fatalf("unexpected neighborhood:\n%s", buf.String())
	}

	if err := Graph(&buf, run.Graph, []string{"missing"}); err == nil {
		t.Fatalf("expected error for unknown document")
	}
}
