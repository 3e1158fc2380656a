package candidate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sourcegraph/conc/stream"
	"go.uber.org/zap"

	"hlkit/internal/lang"
	"hlkit/internal/outline"
	"hlkit/internal/readfile"
	"hlkit/internal/syntaxctl"
	"hlkit/internal/textrange"
)

// Indexer turns files into candidates.
type Indexer struct {
	Registry *lang.Registry
	Compile  syntaxctl.Compiler
	Policy   outline.Policy
	Log      *zap.Logger
}

// StartProducer walks cfg.Root and streams the candidates of every file
// with a grammar. Files are indexed in parallel but emitted in walk
// order, so IDs are stable across runs.
func StartProducer(ctx context.Context, cfg ProducerConfig, idx Indexer) (<-chan Candidate, <-chan error) {
	out := make(chan Candidate, 4096)
	done := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(done)

		if err := idx.produce(ctx, cfg, out); err != nil {
			done <- fmt.Errorf("index symbols: %w", err)
			return
		}
		done <- nil
	}()

	return out, done
}

func (idx Indexer) produce(ctx context.Context, cfg ProducerConfig, out chan<- Candidate) error {
	log := idx.Log
	if log == nil {
		log = zap.NewNop()
	}
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		root = "."
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	s := stream.New().WithMaxGoroutines(workers)
	id := 0
	emit := func(file string, cands []Candidate) {
		for _, cand := range cands {
			id++
			cand.ID = id
			cand.File = file
			select {
			case out <- cand:
			case <-ctx.Done():
				return
			}
		}
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Debug("skip unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		slashRel := filepath.ToSlash(rel)

		if d.IsDir() {
			if skipDirs[d.Name()] || (!cfg.Hidden && hidden(d.Name())) || excluded(slashRel+"/", cfg) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || (!cfg.Hidden && hidden(d.Name())) || excluded(slashRel, cfg) {
			return nil
		}

		s.Go(func() stream.Callback {
			cands, err := idx.IndexFile(ctx, path)
			return func() {
				if err != nil {
					log.Debug("skip file", zap.String("path", path), zap.Error(err))
					return
				}
				emit(rel, cands)
			}
		})
		return nil
	})
	s.Wait()

	if walkErr != nil {
		return walkErr
	}
	return ctx.Err()
}

// IndexFile extracts the outline of one file. Files without a grammar,
// binary files and oversized files yield no candidates.
func (idx Indexer) IndexFile(ctx context.Context, path string) ([]Candidate, error) {
	text, err := readfile.ReadNormalized(path)
	if err != nil {
		if errors.Is(err, readfile.ErrBinary) || errors.Is(err, readfile.ErrTooLarge) {
			return nil, nil
		}
		return nil, err
	}

	g := idx.Registry.Detect(path, readfile.FirstLine(text))
	syn := idx.Compile(g)
	if syn.OutlinesNothing() {
		return nil, nil
	}

	runes := []rune(text)
	items, err := syn.Outline(ctx, runes)
	if err != nil {
		return nil, err
	}
	items = outline.Normalize(items, idx.Policy)

	lines := textrange.NewLines(runes)
	depths := nestingDepths(items)
	out := make([]Candidate, 0, len(items))
	for i, it := range items {
		if it.IsSeparator() {
			continue
		}
		start := textrange.LineStart(runes, it.Range.Start)
		end := textrange.LineContentsEnd(runes, it.Range.Start)
		line := strings.TrimSpace(string(runes[start:end]))
		out = append(out, Candidate{
			File:          path,
			Line:          lines.Number(it.Range.Start),
			Col:           it.Range.Start - start + 1,
			Text:          line,
			Key:           it.Title,
			Grammar:       g.Name,
			Kind:          it.Kind,
			Level:         depths[i],
			SemanticScore: semanticScore(it.Kind, depths[i]),
		})
	}
	return out, nil
}
