package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/linkrank/internal/constants"
	"github.com/Paintersrp/linkrank/internal/state"
	"github.com/Paintersrp/linkrank/pkg/cmd/graph"
	"github.com/Paintersrp/linkrank/pkg/cmd/initialize"
	"github.com/Paintersrp/linkrank/pkg/cmd/rank"
	"github.com/Paintersrp/linkrank/pkg/cmd/stats"
)

func NewCmdRoot(l *state.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkrank",
		Short: "Rank a collection of linked documents with PageRank.",
		Long: heredoc.Doc(`
			linkrank reads a set of named documents from a directory, an S3
			bucket or a git revision, resolves the links between them and ranks them with the
			PageRank power method.

			Configuration is read from $HOME/.linkrank/cfg.yaml. Flags and
			LINKRANK_* environment variables override the file, for example
			LINKRANK_RANKING_DAMPING=0.9.
		`),
		Version:       constants.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return l.Bind(cmd.Flags(), map[string]string{
				"log-level":  "log.level",
				"log-pretty": "log.pretty",
			})
		},
	}

	cmd.PersistentFlags().
		StringVar(&l.ConfigPath, "config", "", "config file (default is $HOME/.linkrank/cfg.yaml)")
	cmd.PersistentFlags().
		String("log-level", "info", "Log level: trace, debug, info, warn, error or disabled.")
	cmd.PersistentFlags().
		Bool("log-pretty", false, "Write human readable logs instead of JSON.")
	cmd.PersistentFlags().
		BoolVar(&l.NoColor, "no-color", false, "Disable colour in rendered output.")

	cmd.AddCommand(
		initialize.NewCmdInit(l),
		rank.NewCmdRank(l),
		stats.NewCmdStats(l),
		graph.NewCmdGraph(l),
	)

	return cmd
}
