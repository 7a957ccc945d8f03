package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Paintersrp/linkrank/internal/graph"
	"github.com/Paintersrp/linkrank/internal/pathutil"
)

// Dir reads documents from files below a root directory.
type Dir struct {
	Root string
	// Extensions limits which files are read. Empty reads every file.
	Extensions []string
	// IgnoredFolders contains directory names that are skipped while walking.
	IgnoredFolders []string
	// Workers bounds concurrent file reads. Zero uses GOMAXPROCS.
	Workers int
}

// NewDir constructs a directory source rooted at root.
func NewDir(root string, extensions []string) *Dir {
	return &Dir{
		Root:       pathutil.NormalizePath(root),
		Extensions: append([]string(nil), extensions...),
	}
}

// Documents walks the root and reads every matching file. Documents are
// returned in path order and named after their base name without extension.
func (d *Dir) Documents(ctx context.Context) ([]graph.Document, error) {
	paths, err := d.collectPaths()
	if err != nil {
		return nil, err
	}

	docs := make([]graph.Document, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workerLimit(d.Workers))
	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			docs[i] = graph.Document{Name: pathutil.DocumentName(path), Text: data}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (d *Dir) collectPaths() ([]string, error) {
	if d.Root == "" {
		return nil, errors.New("document directory cannot be empty")
	}

	ignored := make(map[string]struct{}, len(d.IgnoredFolders))
	for _, dir := range d.IgnoredFolders {
		ignored[strings.ToLower(dir)] = struct{}{}
	}

	paths := make([]string, 0)
	err := filepath.WalkDir(d.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			name := strings.ToLower(entry.Name())
			if strings.HasPrefix(name, ".") && path != d.Root {
				return filepath.SkipDir
			}
			if _, skip := ignored[name]; skip {
				return filepath.SkipDir
			}
			return nil
		}

		if pathutil.HasExtension(entry.Name(), d.Extensions) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", d.Root, err)
	}

	sort.Strings(paths)
	return paths, nil
}
