package candidate

import (
	"path"
	"strings"
)

// matchGlob matches a slash-separated relative path against a pattern in
// which "**" spans any number of directories. Patterns without a slash
// match the base name.
func matchGlob(pattern, rel string) bool {
	if !strings.Contains(pattern, "/") {
		ok, _ := path.Match(pattern, path.Base(rel))
		return ok
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(rel, "/"))
}

func matchSegments(pat, segs []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			rest := pat[1:]
			if len(rest) == 0 {
				return len(segs) > 0
			}
			for i := 0; i < len(segs); i++ {
				if matchSegments(rest, segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 {
			return false
		}
		if ok, _ := path.Match(pat[0], segs[0]); !ok {
			return false
		}
		pat, segs = pat[1:], segs[1:]
	}
	return len(segs) == 0
}

func excluded(rel string, cfg ProducerConfig) bool {
	for _, glob := range cfg.Excludes {
		if matchGlob(glob, rel) {
			return true
		}
	}
	if cfg.ExcludeTests {
		for _, glob := range testExcludeGlobs {
			if matchGlob(glob, rel) {
				return true
			}
		}
	}
	return false
}

func hidden(name string) bool {
	return len(name) > 1 && name[0] == '.'
}
