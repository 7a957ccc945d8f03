// Package source loads raw documents from a directory, an S3 bucket, a git
// revision or memory.
package source

import (
	"context"
	"errors"
	"runtime"

	"github.com/Paintersrp/linkrank/internal/graph"
)

// ErrUnknownSource is returned when a configured source kind is not supported.
var ErrUnknownSource = errors.New("unknown document source")

// Source yields the named documents that make up one ranking run.
type Source interface {
	Documents(ctx context.Context) ([]graph.Document, error)
}

// Static is an in-memory Source.
type Static []graph.Document

// Documents returns a copy of the static document list.
func (s Static) Documents(ctx context.Context) ([]graph.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]graph.Document(nil), s...), nil
}

func workerLimit(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}
