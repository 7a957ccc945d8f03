// Package rank runs the ranking pipeline: load documents, build the link
// graph, compute PageRank and hand the run to the configured sinks.
package rank

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Paintersrp/linkrank/internal/graph"
	"github.com/Paintersrp/linkrank/internal/logger"
	"github.com/Paintersrp/linkrank/internal/metrics"
	"github.com/Paintersrp/linkrank/internal/pagerank"
	"github.com/Paintersrp/linkrank/internal/source"
	"github.com/Paintersrp/linkrank/internal/stats"
)

// ErrClosed signals that the service has been shut down.
var ErrClosed = errors.New("rank service closed")

// Sink consumes completed runs.
type Sink interface {
	Record(ctx context.Context, run *Run) error
}

// Run is the outcome of one pass over the document source.
type Run struct {
	ID         uuid.UUID
	StartedAt  time.Time
	Duration   time.Duration
	Documents  int
	Graph      *graph.Graph
	OutDegrees graph.Degrees
	InDegrees  graph.Degrees
	Result     *pagerank.Result
}

// Top returns the k highest ranked documents.
func (r *Run) Top(k int) []pagerank.Entry {
	if r == nil || r.Result == nil {
		return nil
	}
	return r.Result.Ranks.Top(k)
}

// Stats summarises the degree distributions of the run's graph.
func (r *Run) Stats() (stats.Report, error) {
	if r == nil {
		return stats.Report{}, stats.ErrEmpty
	}
	return stats.Describe(r.OutDegrees, r.InDegrees)
}

// Stats captures lightweight instrumentation about the service.
type Stats struct {
	LastRun   time.Time
	LastRunID uuid.UUID
	Runs      int
}

// Options configures a Service.
type Options struct {
	Graph    graph.Config
	PageRank pagerank.Options
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
	Sinks    []Sink
	// MaxAge bounds how long Latest reuses a cached run. Zero always reuses.
	MaxAge time.Duration
}

// Service owns a document source and produces ranking runs from it.
type Service struct {
	mu     sync.Mutex
	src    source.Source
	opts   Options
	log    zerolog.Logger
	latest *Run
	runs   int
	closed bool
	now    func() time.Time
	newID  func() uuid.UUID
}

// NewService constructs a service reading from src.
func NewService(src source.Source, opts Options) *Service {
	return &Service{
		src:   src,
		opts:  opts,
		log:   logger.Component(opts.Logger, "rank"),
		now:   time.Now,
		newID: uuid.New,
	}
}

// Run performs a full ranking pass. When a sink fails the completed run is
// still returned and cached alongside the joined sink errors.
func (s *Service) Run(ctx context.Context) (*Run, error) {
	if s == nil {
		return nil, ErrClosed
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	if err := s.opts.PageRank.Validate(); err != nil {
		return nil, err
	}

	run := &Run{ID: s.newID(), StartedAt: s.now()}
	log := s.log.With().Str("run_id", run.ID.String()).Logger()
	log.Debug().Msg("starting ranking run")

	docs, err := s.src.Documents(ctx)
	if err != nil {
		s.fail(run, log, err)
		return nil, fmt.Errorf("load documents: %w", err)
	}
	run.Documents = len(docs)

	run.Graph, run.OutDegrees, run.InDegrees = graph.Build(docs, s.opts.Graph)
	log.Debug().
		Int("documents", len(docs)).
		Int("nodes", run.Graph.Len()).
		Int("edges", run.Graph.EdgeCount()).
		Msg("link graph built")

	if err := ctx.Err(); err != nil {
		s.fail(run, log, err)
		return nil, err
	}

	opts := s.opts.PageRank
	if opts.OnIteration == nil {
		opts.OnIteration = func(it pagerank.Iteration) {
			log.Trace().Int("iteration", it.N).Float64("delta", it.Delta).Float64("sum", it.Sum).Msg("pagerank iteration")
		}
	}
	run.Result, err = pagerank.Compute(run.Graph, opts)
	if err != nil {
		s.fail(run, log, err)
		return nil, fmt.Errorf("compute pagerank: %w", err)
	}
	run.Duration = s.now().Sub(run.StartedAt)

	event := log.Info()
	if !run.Result.Converged {
		event = log.Warn()
	}
	event.
		Int("nodes", run.Graph.Len()).
		Int("edges", run.Graph.EdgeCount()).
		Int("iterations", run.Result.Iterations).
		Bool("converged", run.Result.Converged).
		Float64("delta", run.Result.Delta).
		Dur("duration", run.Duration).
		Msg("ranking run finished")

	s.opts.Metrics.RecordRun(metrics.RunSample{
		Started:    run.StartedAt,
		Duration:   run.Duration,
		Documents:  run.Graph.Len(),
		Edges:      run.Graph.EdgeCount(),
		Iterations: run.Result.Iterations,
		Delta:      run.Result.Delta,
		Converged:  run.Result.Converged,
	})

	sinkErr := s.record(ctx, run, log)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.latest = run
	s.runs++

	return run, sinkErr
}

// Latest returns the cached run while it is younger than MaxAge and performs
// a new run otherwise.
func (s *Service) Latest(ctx context.Context) (*Run, error) {
	if s == nil {
		return nil, ErrClosed
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	latest := s.latest
	fresh := latest != nil && (s.opts.MaxAge <= 0 || s.now().Sub(latest.StartedAt) <= s.opts.MaxAge)
	s.mu.Unlock()

	if fresh {
		return latest, nil
	}
	return s.Run(ctx)
}

// Stats returns instrumentation about the service lifecycle.
func (s *Service) Stats() Stats {
	if s == nil {
		return Stats{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Runs: s.runs}
	if s.latest != nil {
		st.LastRun = s.latest.StartedAt
		st.LastRunID = s.latest.ID
	}
	return st
}

// Close releases the service. Subsequent calls to Run and Latest return
// ErrClosed.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.latest = nil
	return nil
}

func (s *Service) record(ctx context.Context, run *Run, log zerolog.Logger) error {
	var errs []error
	for _, sink := range s.opts.Sinks {
		if err := sink.Record(ctx, run); err != nil {
			log.Error().Err(err).Str("sink", fmt.Sprintf("%T", sink)).Msg("sink failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) fail(run *Run, log zerolog.Logger, err error) {
	log.Error().Err(err).Msg("ranking run failed")
	s.opts.Metrics.RecordFailure(s.now().Sub(run.StartedAt))
}
