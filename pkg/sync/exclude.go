package sync

import (
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// File patterns match anywhere in the path, directory patterns only at its end.
var (
	containsPattern = strings.Contains
	suffixPattern   = strings.HasSuffix
)

// IsFileExcluded returns whether any pattern appears anywhere in `path`.
// Patterns are literal substrings, not globs.
func IsFileExcluded(path string, patterns mapset.Set[string]) bool {
	return anyMatch(filepath.Clean(path), patterns, containsPattern)
}

// IsDirExcluded returns whether `path` ends with any pattern. Unlike file
// patterns, directory patterns only match at the end of the path, so
// "node_modules" excludes "src/node_modules" but not "node_modules_old".
func IsDirExcluded(path string, patterns mapset.Set[string]) bool {
	return anyMatch(filepath.Clean(path), patterns, suffixPattern)
}

// anyMatch returns whether `match` succeeds for any pattern. Empty patterns
// never match.
func anyMatch(path string, patterns mapset.Set[string],
	match func(s, pattern string) bool) (ok bool) {

	if patterns == nil {
		return false
	}

	patterns.Each(func(pattern string) bool {
		ok = pattern != "" && match(path, pattern)
		return ok
	})
	return ok
}
