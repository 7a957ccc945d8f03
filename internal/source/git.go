package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/Paintersrp/linkrank/internal/graph"
	"github.com/Paintersrp/linkrank/internal/pathutil"
)

// DefaultRevision is read when Git.Revision is empty.
const DefaultRevision = "HEAD"

// Git reads documents from the tree of a commit in a local repository, so a
// site can be ranked as it was at any revision without checking it out.
type Git struct {
	Repo string
	// Revision is anything go-git can resolve: a branch, tag or hash.
	Revision string
	// Prefix limits the walk to paths below this directory in the tree.
	Prefix     string
	Extensions []string
}

// NewGit constructs a source for the repository at repo.
func NewGit(repo, revision, prefix string, extensions []string) *Git {
	return &Git{
		Repo:       repo,
		Revision:   revision,
		Prefix:     strings.Trim(prefix, "/"),
		Extensions: append([]string(nil), extensions...),
	}
}

// Documents walks the commit tree in path order.
func (g *Git) Documents(ctx context.Context) ([]graph.Document, error) {
	if g.Repo == "" {
		return nil, errors.New("git repository cannot be empty")
	}

	repo, err := git.PlainOpen(g.Repo)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", g.Repo, err)
	}

	revision := g.Revision
	if revision == "" {
		revision = DefaultRevision
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", revision, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("load tree for %s: %w", hash, err)
	}
	if g.Prefix != "" {
		if tree, err = tree.Tree(g.Prefix); err != nil {
			return nil, fmt.Errorf("find %s in %s: %w", g.Prefix, hash, err)
		}
	}

	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()

	var docs []graph.Document
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name, entry, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("walk tree %s: %w", hash, err)
		}

		if !entry.Mode.IsFile() || !pathutil.HasExtension(name, g.Extensions) {
			continue
		}

		file, err := tree.TreeEntryFile(&entry)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		contents, err := file.Contents()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		docs = append(docs, graph.Document{Name: pathutil.DocumentName(name), Text: []byte(contents)})
	}

	return docs, nil
}
