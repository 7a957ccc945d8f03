package graph

import (
	"crypto/sha256"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Paintersrp/linkrank/internal/pathutil"
)

// DefaultSuffixes are stripped from link targets and document names before
// resolution.
var DefaultSuffixes = []string{".html", ".htm"}

// Document is a named piece of raw text.
type Document struct {
	Name string
	Text []byte
}

// Config describes how documents are turned into a graph.
type Config struct {
	// Syntax selects the link markup to recognise. Defaults to SyntaxHTML.
	Syntax Syntax
	// Suffixes are stripped from names and link targets. Defaults to
	// DefaultSuffixes.
	Suffixes []string
	// Workers bounds concurrent link extraction. Zero uses GOMAXPROCS.
	Workers int
	// Cache, when set, keeps extracted links between builds so unchanged
	// documents are not parsed again.
	Cache LinkCache
}

// LinkCache stores the raw links extracted from a document body. Keys are
// derived from the syntax and the body. Implementations must be safe for
// concurrent use.
type LinkCache interface {
	Get(key [sha256.Size]byte) ([]string, bool)
	Put(key [sha256.Size]byte, links []string)
}

func (cfg Config) extract(body []byte) []string {
	if cfg.Cache == nil {
		return ExtractLinks(body, cfg.Syntax)
	}

	h := sha256.New()
	h.Write([]byte(cfg.Syntax))
	h.Write([]byte{0})
	h.Write(body)
	var key [sha256.Size]byte
	h.Sum(key[:0])

	if links, ok := cfg.Cache.Get(key); ok {
		return links
	}
	links := ExtractLinks(body, cfg.Syntax)
	cfg.Cache.Put(key, links)
	return links
}

func (cfg Config) suffixes() []string {
	if cfg.Suffixes == nil {
		return DefaultSuffixes
	}
	return cfg.Suffixes
}

func (cfg Config) workers() int {
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Build constructs the link graph for docs and returns it along with the
// out-degree and in-degree of every node.
//
// Only links whose target resolves to a known document name produce edges;
// everything else is dropped. When two documents share a name the later
// text wins, while the node keeps its first position.
func Build(docs []Document, cfg Config) (*Graph, Degrees, Degrees) {
	suffixes := cfg.suffixes()

	names := make([]string, 0, len(docs))
	texts := make(map[string][]byte, len(docs))
	for _, doc := range docs {
		name := pathutil.StripSuffix(strings.TrimSpace(doc.Name), suffixes)
		if name == "" {
			continue
		}
		if _, seen := texts[name]; !seen {
			names = append(names, name)
		}
		texts[name] = doc.Text
	}

	known := make(map[string]struct{}, len(names))
	for _, name := range names {
		known[name] = struct{}{}
	}

	// Each worker writes only its own slot.
	targets := make([][]string, len(names))
	var eg errgroup.Group
	eg.SetLimit(cfg.workers())
	for i, name := range names {
		eg.Go(func() error {
			targets[i] = resolveTargets(cfg.extract(texts[name]), suffixes, known)
			return nil
		})
	}
	_ = eg.Wait()

	// All nodes before any edge keeps node order equal to input order.
	g := New()
	for _, name := range names {
		g.AddNode(name)
	}
	for i, name := range names {
		for _, target := range targets[i] {
			g.AddEdge(name, target)
		}
	}

	return g, g.OutDegrees(), g.InDegrees()
}

func resolveTargets(raw []string, suffixes []string, known map[string]struct{}) []string {
	if len(raw) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, link := range raw {
		target := ResolveTarget(link, suffixes)
		if _, ok := known[target]; !ok {
			continue
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

// ResolveTarget normalises a raw link target for lookup against document
// names.
func ResolveTarget(link string, suffixes []string) string {
	return pathutil.StripSuffix(strings.TrimSpace(link), suffixes)
}
