package rank

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/Paintersrp/linkrank/internal/pagerank"
	"github.com/Paintersrp/linkrank/internal/state"
)

func TestFlagDefaultsMatchEngine(t *testing.T) {
	cmd := NewCmdRank(state.NewLoader(viper.New()))

	damping, err := cmd.Flags().GetFloat64("damping")
	if err != nil {
		t.Fatalf("damping flag: %v", err)
	}
	iterations, err := cmd.Flags().GetInt("max-iterations")
	if err != nil {
		t.Fatalf("max-iterations flag: %v", err)
	}
	tolerance, err := cmd.Flags().GetFloat64("tolerance")
	if err != nil {
		t.Fatalf("tolerance flag: %v", err)
	}

	want := pagerank.DefaultOptions()
	if damping != want.Damping || iterations != want.MaxIterations || tolerance != want.Tolerance {
		t.Fatalf("got damping=%v iterations=%d tolerance=%v, want %+v", damping, iterations, tolerance, want)
	}
}
