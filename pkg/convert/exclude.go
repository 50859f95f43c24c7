package convert

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Excluder filters source files by excluded path prefixes.
//
// A plain pattern excludes the file or directory it names and everything
// below it, compared component by component after cleaning; "reqs/old"
// excludes "reqs/old/a.trlc" but not "reqs/older.trlc". A pattern holding
// glob metacharacters is matched with doublestar syntax ("**/legacy/*").
type Excluder struct {
	patterns []string
}

// NewExcluder returns an Excluder for the given patterns. Empty patterns
// are ignored.
func NewExcluder(patterns []string) *Excluder {
	e := &Excluder{}
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			e.patterns = append(e.patterns, p)
		}
	}
	return e
}

// Excluded reports whether path is excluded.
func (e *Excluder) Excluded(path string) bool {
	if e == nil {
		return false
	}
	for _, p := range e.patterns {
		if matchPattern(p, path) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, path string) bool {
	if strings.ContainsAny(pattern, "*?[{") {
		pat := filepath.ToSlash(filepath.Clean(pattern))
		name := filepath.ToSlash(filepath.Clean(path))
		if ok, _ := doublestar.Match(pat, name); ok {
			return true
		}
		ok, _ := doublestar.Match(pat+"/**", name)
		return ok
	}
	return underPrefix(pattern, path)
}

func underPrefix(prefix, path string) bool {
	prefix = filepath.Clean(prefix)
	path = filepath.Clean(path)
	if filepath.IsAbs(prefix) != filepath.IsAbs(path) {
		var err error
		if prefix, err = filepath.Abs(prefix); err != nil {
			return false
		}
		if path, err = filepath.Abs(path); err != nil {
			return false
		}
	}
	if prefix == "." {
		return !filepath.IsAbs(path)
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(prefix, string(filepath.Separator))+string(filepath.Separator))
}
