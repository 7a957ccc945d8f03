package flags

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/linkrank/internal/report"
)

func TestHandleFormat(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	AddFormat(cmd)

	got, err := HandleFormat(cmd)
	if err != nil || got != report.FormatText {
		t.Fatalf("expected text default, got %q err=%v", got, err)
	}

	if err := cmd.Flags().Set("format", "json"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if got, _ := HandleFormat(cmd); got != report.FormatJSON {
		t.Fatalf("expected json, got %q", got)
	}

	if err := cmd.Flags().Set("format", "xml"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if _, err := HandleFormat(cmd); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestAddSourceRegistersEveryBoundFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	AddSource(cmd)

	for name := range SourceKeys {
		if cmd.Flags().Lookup(name) == nil {
			t.Fatalf("expected flag %q", name)
		}
	}
}
