/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package rank

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/linkrank/internal/config"
	"github.com/Paintersrp/linkrank/internal/pagerank"
	"github.com/Paintersrp/linkrank/internal/report"
	"github.com/Paintersrp/linkrank/internal/state"
	"github.com/Paintersrp/linkrank/internal/watch"
	"github.com/Paintersrp/linkrank/pkg/shared/arg"
	"github.com/Paintersrp/linkrank/pkg/shared/flags"
)

var flagKeys = map[string]string{
	"top":            "ranking.top",
	"damping":        "ranking.damping",
	"max-iterations": "ranking.max_iterations",
	"tolerance":      "ranking.tolerance",
	"metrics-file":   "metrics.textfile",
}

func NewCmdRank(l *state.Loader) *cobra.Command {
	var watchDir bool

	cmd := &cobra.Command{
		Use:     "rank [dir]",
		Aliases: []string{"r"},
		Short:   "Rank documents by PageRank over their links.",
		Long: heredoc.Doc(`
			Reads every document from the configured source (or [dir] when given),
			builds the link graph, prints degree statistics and the highest ranked
			documents. Runs are also written to PostgreSQL and announced over Redis
			when those sinks are configured.
		`),
		Example: heredoc.Doc(`
			linkrank rank ./site
			linkrank rank ./site --top 25 --format json
			linkrank rank ./notes --syntax markdown --suffixes .md --extensions .md
			linkrank rank ./site --watch
		`),
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			arg.HandleDir(l, args)
			if err := l.Bind(cmd.Flags(), flags.SourceKeys); err != nil {
				return err
			}
			return l.Bind(cmd.Flags(), flagKeys)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := flags.HandleFormat(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd.OutOrStdout(), l, format, watchDir)
		},
	}

	flags.AddFormat(cmd)
	flags.AddSource(cmd)
	cmd.Flags().IntP("top", "t", config.DefaultTop, "Number of top ranked documents to print. 0 prints every document.")
	cmd.Flags().Float64P("damping", "d", pagerank.DefaultDamping, "Damping factor, strictly between 0 and 1.")
	cmd.Flags().Int("max-iterations", pagerank.DefaultMaxIterations, "Iteration cap for the power method.")
	cmd.Flags().Float64("tolerance", pagerank.DefaultTolerance, "Convergence threshold on the L1 change between iterations.")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file after each run.")
	cmd.Flags().BoolVar(&watchDir, "watch", false, "Re-rank whenever a document in the directory changes.")

	return cmd
}

func run(ctx context.Context, out io.Writer, l *state.Loader, format report.Format, watchDir bool) error {
	s, err := l.State(ctx, state.Options{})
	if err != nil {
		return err
	}

	if err := rankOnce(ctx, out, l, s, format); err != nil {
		return err
	}
	if !watchDir {
		return nil
	}

	if s.Config.Source.Kind != config.SourceDir {
		return errors.New("--watch requires a directory source")
	}

	w, err := watch.New(s.Config.Source.Dir, s.Config.Source.Extensions, s.Config.Source.IgnoredFolders, 0)
	if err != nil {
		return fmt.Errorf("watch %s: %w", s.Config.Source.Dir, err)
	}
	defer w.Close()

	s.Logger.Info().Str("dir", s.Config.Source.Dir).Msg("watching for changes")
	err = w.Run(ctx, func(changed []string) {
		s.Logger.Info().Strs("changed", changed).Msg("documents changed, re-ranking")
		if err := rankOnce(ctx, out, l, s, format); err != nil {
			s.Logger.Error().Err(err).Msg("re-rank failed")
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func rankOnce(ctx context.Context, out io.Writer, l *state.Loader, s *state.State, format report.Format) error {
	result, runErr := s.Ranker.Run(ctx)
	if result == nil {
		return runErr
	}

	if err := report.Render(out, result, report.Options{
		Format:  format,
		Top:     s.Config.Ranking.Top,
		NoColor: l.NoColor,
	}); err != nil {
		return err
	}

	if path := s.Config.Metrics.Textfile; path != "" {
		if err := s.Metrics.WriteTextfile(path); err != nil {
			return err
		}
	}

	if runErr != nil {
		return fmt.Errorf("run %s completed but a sink failed: %w", result.ID, runErr)
	}
	return nil
}
