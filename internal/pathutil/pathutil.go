package pathutil

import (
	"path/filepath"
	"strings"
)

// NormalizePath converts Windows-style separators to the current platform's separator
// and cleans the resulting path.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	replaced := strings.ReplaceAll(p, "\\", "/")
	return filepath.Clean(filepath.FromSlash(replaced))
}

// RootRelative returns the path to target relative to the provided root directory.
// The returned path always uses forward slashes so object keys and file paths
// compare the same way.
func RootRelative(root, target string) (string, error) {
	base := NormalizePath(root)
	cleanedTarget := NormalizePath(target)

	rel, err := filepath.Rel(base, cleanedTarget)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(rel), nil
}

// DocumentName derives a document identifier from a file path or object key:
// the base name with any extension stripped.
func DocumentName(p string) string {
	slashed := strings.ReplaceAll(p, "\\", "/")
	if i := strings.LastIndex(slashed, "/"); i >= 0 {
		slashed = slashed[i+1:]
	}
	if ext := filepath.Ext(slashed); ext != "" && ext != slashed {
		return strings.TrimSuffix(slashed, ext)
	}
	return slashed
}

// StripSuffix removes the first matching suffix from name. Matching ignores
// case, so "Page.HTML" and "Page.html" both become "Page".
func StripSuffix(name string, suffixes []string) string {
	lowered := strings.ToLower(name)
	for _, suffix := range suffixes {
		if suffix == "" || len(suffix) >= len(name) {
			continue
		}
		if strings.HasSuffix(lowered, strings.ToLower(suffix)) {
			return name[:len(name)-len(suffix)]
		}
	}
	return name
}

// HasExtension reports whether p ends in one of the provided extensions. An
// empty extension list matches every path.
func HasExtension(p string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := filepath.Ext(p)
	for _, candidate := range extensions {
		if strings.EqualFold(ext, candidate) {
			return true
		}
	}
	return false
}
