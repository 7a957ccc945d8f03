package flags

import (
	"github.com/spf13/cobra"
)

// SourceKeys maps the flags added by AddSource onto config keys.
var SourceKeys = map[string]string{
	"syntax":     "links.syntax",
	"suffixes":   "links.suffixes",
	"extensions": "source.extensions",
	"workers":    "ranking.workers",
}

func AddSource(cmd *cobra.Command) {
	cmd.Flags().
		String("syntax", "html", "Link syntax to extract: html, markdown or any.")
	cmd.Flags().
		StringSlice("suffixes", nil, "Suffixes stripped from link targets and document names (default .html,.htm).")
	cmd.Flags().
		StringSlice("extensions", nil, "File extensions read from the source (default .html,.htm).")
	cmd.Flags().
		IntP("workers", "w", 0, "Concurrent workers for reading, parsing and ranking. 0 uses every CPU.")
}
