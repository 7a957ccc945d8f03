package graph

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	linkgraph "github.com/Paintersrp/linkrank/internal/graph"
	"github.com/Paintersrp/linkrank/internal/report"
	"github.com/Paintersrp/linkrank/internal/state"
	"github.com/Paintersrp/linkrank/pkg/shared/arg"
	"github.com/Paintersrp/linkrank/pkg/shared/flags"
)

func NewCmdGraph(l *state.Loader) *cobra.Command {
	var around []string

	cmd := &cobra.Command{
		Use:   "graph [dir]",
		Short: "Print the resolved link graph.",
		Long: heredoc.Doc(`
			Prints one "document -> targets" line per document in source order.
			With --around, prints only the named documents and their direct
			neighbours together with their outbound links and backlinks.
		`),
		Example: heredoc.Doc(`
			linkrank graph ./site
			linkrank graph ./site --around index --around about
		`),
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			arg.HandleDir(l, args)
			return l.Bind(cmd.Flags(), flags.SourceKeys)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := l.State(cmd.Context(), state.Options{NoSinks: true})
			if err != nil {
				return err
			}

			docs, err := s.Source.Documents(cmd.Context())
			if err != nil {
				return err
			}
			g, _, _ := linkgraph.Build(docs, s.Config.GraphConfig())

			return report.Graph(cmd.OutOrStdout(), g, around)
		},
	}

	flags.AddSource(cmd)
	cmd.Flags().StringSliceVarP(&around, "around", "a", nil, "Only show these documents and their direct neighbours.")

	return cmd
}
