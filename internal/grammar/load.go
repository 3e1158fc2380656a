package grammar

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Decode picks the decoder from the file extension of path.
func Decode(path string, data []byte) (Grammar, error) {
	name := NameFromPath(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(name, data)
	case ".toml":
		return DecodeTOML(name, data)
	default:
		return Grammar{}, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

func Load(path string) (Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Grammar{}, fmt.Errorf("read grammar: %w", err)
	}
	return Decode(path, data)
}

// LoadDir loads every grammar file directly inside dir, sorted by name.
// Files that fail to load are reported together; the rest are returned.
func LoadDir(dir string) ([]Grammar, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read grammar dir: %w", err)
	}

	var (
		out  []Grammar
		errs []error
	)
	for _, e := range entries {
		if e.IsDir() || !IsGrammarFile(e.Name()) {
			continue
		}
		g, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool { return lessFold(out[i].Name, out[j].Name) })
	return out, errors.Join(errs...)
}

func IsGrammarFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".toml":
		return !strings.HasPrefix(name, ".")
	default:
		return false
	}
}

func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
