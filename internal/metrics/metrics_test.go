package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRunSetsGauges(t *testing.T) {
	m := New()
	m.RecordRun(RunSample{
		Started:    time.Unix(1700000000, 0),
		Duration:   250 * time.Millisecond,
		Documents:  3,
		Edges:      3,
		Iterations: 9,
		Delta:      0.004,
		Converged:  true,
	})

	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("ok")); got != 1 {
		t.Fatalf("expected 1 ok run, got %v", got)
	}
	if got := testutil.ToFloat64(m.Iterations); got != 9 {
		t.Fatalf("expected 9 iterations, got %v", got)
	}
	if got := testutil.ToFloat64(m.Converged); got != 1 {
		t.Fatalf("expected converged gauge 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.LastRunStart); got != 1700000000 {
		t.Fatalf("unexpected last run timestamp %v", got)
	}

	m.RecordFailure(time.Second)
	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("error")); got != 1 {
		t.Fatalf("expected 1 failed run, got %v", got)
	}
}

func TestNilMetricsIgnoresRecords(t *testing.T) {
	var m *Metrics
	m.RecordRun(RunSample{})
	m.RecordFailure(time.Second)
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.RecordRun(RunSample{Started: time.Now(), Documents: 2, Iterations: 4})

	path := filepath.Join(t.TempDir(), "linkrank.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "linkrank_graph_documents 2") {
		t.Fatalf("expected documents gauge in textfile, got:\n%s", data)
	}
}
