package graph

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Syntax selects which link markup is recognised in document bodies.
type Syntax string

const (
	// SyntaxHTML matches anchor tags: <a href="target">.
	SyntaxHTML Syntax = "html"
	// SyntaxMarkdown matches inline markdown links: [label](target).
	SyntaxMarkdown Syntax = "markdown"
	// SyntaxAny matches both.
	SyntaxAny Syntax = "any"
)

// ParseSyntax validates a syntax name. The empty string selects SyntaxHTML.
func ParseSyntax(s string) (Syntax, error) {
	switch Syntax(strings.ToLower(strings.TrimSpace(s))) {
	case "", SyntaxHTML:
		return SyntaxHTML, nil
	case SyntaxMarkdown:
		return SyntaxMarkdown, nil
	case SyntaxAny:
		return SyntaxAny, nil
	default:
		return "", fmt.Errorf("unknown link syntax %q", s)
	}
}

var anchorRe = regexp.MustCompile(`(?is)<a\s(?:[^>]*?\s)?href\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// ExtractLinks returns the raw link targets found in body, in document order.
// Repeated targets are kept; deduplication happens after resolution.
func ExtractLinks(body []byte, syntax Syntax) []string {
	switch syntax {
	case SyntaxMarkdown:
		return extractMarkdownLinks(body)
	case SyntaxAny:
		return append(extractAnchorLinks(body), extractMarkdownLinks(body)...)
	default:
		return extractAnchorLinks(body)
	}
}

func extractAnchorLinks(body []byte) []string {
	matches := anchorRe.FindAllSubmatch(body, -1)
	links := make([]string, 0, len(matches))
	for _, match := range matches {
		target := match[1]
		if target == nil {
			target = match[2]
		}
		links = append(links, string(target))
	}
	return links
}

func extractMarkdownLinks(body []byte) []string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(body))

	var links []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			links = append(links, string(node.Destination))
		case *ast.AutoLink:
			links = append(links, string(node.URL(body)))
		}
		return ast.WalkContinue, nil
	})
	return links
}
