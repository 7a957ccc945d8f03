// Package notify announces completed ranking runs over Redis pub/sub.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Paintersrp/linkrank/internal/pagerank"
	"github.com/Paintersrp/linkrank/internal/services/rank"
)

// Options configures a Publisher.
type Options struct {
	URL     string
	Channel string
	// Top is how many ranked documents each message carries.
	Top int

	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
}

// Summary is the JSON message published for each run.
type Summary struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	DurationMS int64            `json:"duration_ms"`
	Documents  int              `json:"documents"`
	Nodes      int              `json:"nodes"`
	Edges      int              `json:"edges"`
	Iterations int              `json:"iterations"`
	Converged  bool             `json:"converged"`
	Delta      float64          `json:"delta"`
	Top        []pagerank.Entry `json:"top"`
}

// NewSummary condenses a run into its published form.
func NewSummary(run *rank.Run, top int) Summary {
	s := Summary{
		RunID:      run.ID.String(),
		StartedAt:  run.StartedAt.UTC(),
		DurationMS: run.Duration.Milliseconds(),
		Documents:  run.Documents,
		Top:        run.Top(top),
	}
	if run.Graph != nil {
		s.Nodes = run.Graph.Len()
		s.Edges = run.Graph.EdgeCount()
	}
	if run.Result != nil {
		s.Iterations = run.Result.Iterations
		s.Converged = run.Result.Converged
		s.Delta = run.Result.Delta
	}
	return s
}

// Publisher publishes run summaries to a Redis channel.
type Publisher struct {
	client  *redis.Client
	channel string
	top     int
}

// NewPublisher connects to the Redis server at opts.URL.
func NewPublisher(opts Options) (*Publisher, error) {
	if opts.Channel == "" {
		return nil, fmt.Errorf("redis channel cannot be empty")
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Publisher{client: client, channel: opts.Channel, top: opts.Top}, nil
}

// Record publishes the run summary.
func (p *Publisher) Record(ctx context.Context, run *rank.Run) error {
	data, err := json.Marshal(NewSummary(run, p.top))
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", p.channel, err)
	}
	return nil
}

// Close closes the Redis connection.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
