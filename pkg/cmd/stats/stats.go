package stats

import (
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/linkrank/internal/graph"
	"github.com/Paintersrp/linkrank/internal/report"
	"github.com/Paintersrp/linkrank/internal/services/rank"
	"github.com/Paintersrp/linkrank/internal/state"
	"github.com/Paintersrp/linkrank/pkg/shared/arg"
	"github.com/Paintersrp/linkrank/pkg/shared/flags"
)

func NewCmdStats(l *state.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [dir]",
		Short: "Print outgoing and incoming link statistics.",
		Long: heredoc.Doc(`
			Builds the link graph and prints count, mean, median, extremes and
			quintiles of the outgoing and incoming link counts. PageRank is not
			computed and no sinks are written.
		`),
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			arg.HandleDir(l, args)
			return l.Bind(cmd.Flags(), flags.SourceKeys)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := flags.HandleFormat(cmd)
			if err != nil {
				return err
			}

			s, err := l.State(cmd.Context(), state.Options{NoSinks: true})
			if err != nil {
				return err
			}

			started := time.Now()
			docs, err := s.Source.Documents(cmd.Context())
			if err != nil {
				return err
			}
			g, out, in := graph.Build(docs, s.Config.GraphConfig())

			run := &rank.Run{
				ID:         uuid.New(),
				StartedAt:  started,
				Duration:   time.Since(started),
				Documents:  len(docs),
				Graph:      g,
				OutDegrees: out,
				InDegrees:  in,
			}
			return report.Render(cmd.OutOrStdout(), run, report.Options{
				Format:    format,
				NoColor:   l.NoColor,
				StatsOnly: true,
			})
		},
	}

	flags.AddFormat(cmd)
	flags.AddSource(cmd)

	return cmd
}
