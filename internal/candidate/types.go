// Package candidate indexes the outline symbols of every file under a
// root and ranks them against a fuzzy query.
package candidate

import "hlkit/internal/grammar"

type Candidate struct {
	ID      int
	File    string
	Line    int
	Col     int
	Text    string
	Key     string
	Grammar string
	Kind    grammar.OutlineKind
	Level   int

	SemanticScore int16
}

type ProducerConfig struct {
	Root         string
	Excludes     []string
	ExcludeTests bool
	Hidden       bool
	Workers      int
}

type FilteredCandidate struct {
	Index int32
	Score int32
}

var filterParallelThreshold = 20_000
var filterMinChunkSize = 4_096

var testExcludeGlobs = []string{
	"test/**",
	"tests/**",
	"__tests__/**",
	"spec/**",
	"specs/**",
	"**/test/**",
	"**/tests/**",
	"**/__tests__/**",
	"**/spec/**",
	"**/specs/**",
	"*_test.*",
	"*_spec.*",
	"*.test.*",
	"*.spec.*",
	"test_*.py",
	"**/*_test.*",
	"**/*_spec.*",
	"**/*.test.*",
	"**/*.spec.*",
	"**/test_*.py",
}

var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"__pycache__":  true,
}
