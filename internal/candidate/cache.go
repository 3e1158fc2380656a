package candidate

import (
	"bufio"
	"encoding/gob"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"slices"
)

const indexCacheVersion = 2

// IndexKey identifies an index: the walk settings plus the set of
// grammars that produced it.
type IndexKey struct {
	Config   ProducerConfig
	Grammars []string
}

type diskIndexCache struct {
	Version      int
	Root         string
	ExcludeTests bool
	Hidden       bool
	Excludes     []string
	Grammars     []string
	Candidates   []Candidate
}

// IndexCache stores one index per root under Dir.
type IndexCache struct {
	Dir string
}

func DefaultIndexCache() (IndexCache, error) {
	root, err := os.UserCacheDir()
	if err != nil {
		return IndexCache{}, err
	}
	return IndexCache{Dir: filepath.Join(root, "hlkit")}, nil
}

func (c IndexCache) path(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(filepath.Clean(abs)))
	return filepath.Join(c.Dir, fmt.Sprintf("index-%016x.gob", h.Sum64()))
}

func (c IndexCache) Load(key IndexKey) ([]Candidate, bool, error) {
	f, err := os.Open(c.path(key.Config.Root))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var disk diskIndexCache
	if err := gob.NewDecoder(bufio.NewReaderSize(f, 1<<20)).Decode(&disk); err != nil {
		return nil, false, err
	}

	if !indexCacheMatches(disk, key) {
		return nil, false, nil
	}

	return disk.Candidates, true, nil
}

func (c IndexCache) Save(key IndexKey, candidates []Candidate) error {
	path := c.path(key.Config.Root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	writer := bufio.NewWriterSize(f, 1<<20)
	disk := diskIndexCache{
		Version:      indexCacheVersion,
		Root:         filepath.Clean(key.Config.Root),
		ExcludeTests: key.Config.ExcludeTests,
		Hidden:       key.Config.Hidden,
		Excludes:     slices.Clone(key.Config.Excludes),
		Grammars:     slices.Sorted(slices.Values(key.Grammars)),
		Candidates:   candidates,
	}
	if err := gob.NewEncoder(writer).Encode(&disk); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := writer.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	return nil
}

func indexCacheMatches(disk diskIndexCache, key IndexKey) bool {
	if disk.Version != indexCacheVersion {
		return false
	}
	cfg := key.Config
	if filepath.Clean(disk.Root) != filepath.Clean(cfg.Root) {
		return false
	}
	if disk.ExcludeTests != cfg.ExcludeTests || disk.Hidden != cfg.Hidden {
		return false
	}
	return slices.Equal(disk.Excludes, cfg.Excludes) &&
		slices.Equal(disk.Grammars, slices.Sorted(slices.Values(key.Grammars)))
}
