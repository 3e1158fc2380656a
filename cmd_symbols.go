package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hlkit/internal/candidate"
	"hlkit/internal/fuzzy"
)

const symbolBatch = 512

func newSymbolsCmd(a *app) *cobra.Command {
	var (
		query   string
		limit   int
		width   int
		open    bool
		copyLoc bool
		rebuild bool
	)
	cmd := &cobra.Command{
		Use:   "symbols [ROOT]",
		Short: "Search the outline symbols of every file under ROOT",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			absRoot, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("resolve root: %w", err)
			}
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.Symbols.Limit
			}

			cfg := candidate.ProducerConfig{
				Root:         absRoot,
				Excludes:     a.cfg.Symbols.Exclude,
				ExcludeTests: a.cfg.Symbols.ExcludeTests,
				Hidden:       a.cfg.Symbols.Hidden,
				Workers:      a.cfg.Symbols.Workers,
			}
			q := fuzzy.NewQuery(query)
			cands, filtered, err := a.searchSymbols(cmd.Context(), cfg, q, rebuild || a.cfg.Symbols.NoCache)
			if err != nil {
				return err
			}
			if len(filtered) == 0 {
				return fmt.Errorf("no symbols match %q", query)
			}

			shown := filtered
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}
			for _, f := range shown {
				c := cands[f.Index]
				loc := renderLocationLine(c.File, c.Line, c.Col, width/2, false, fuzzy.Query{})
				fmt.Fprintf(a.out, "%s  %s\n", padRightANSI(loc, width/2), renderSymbol(c, q))
			}

			best := cands[filtered[0].Index]
			target := filepath.Join(absRoot, best.File)
			if open {
				if err := openLocation(target, best.Line, best.Col, a.cfg.EditorCmd); err != nil {
					return fmt.Errorf("open %s: %w", best.File, err)
				}
			}
			if copyLoc {
				if err := copyToClipboard(fmt.Sprintf("%s:%d:%d", target, best.Line, best.Col)); err != nil {
					return fmt.Errorf("copy location: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "fuzzy query matched against symbol names and paths")
	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "maximum number of results (0 for all)")
	cmd.Flags().IntVar(&width, "width", 100, "output width")
	cmd.Flags().BoolVar(&open, "open", false, "open the best match in the editor")
	cmd.Flags().BoolVar(&copyLoc, "copy", false, "copy the location of the best match to the clipboard")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "ignore the cached index")
	return cmd
}

// searchSymbols returns the index of cfg.Root and the candidates matching
// q, best first. A fresh walk is filtered batch by batch as it streams in
// and saved for the next run.
func (a *app) searchSymbols(ctx context.Context, cfg candidate.ProducerConfig, q fuzzy.Query, rebuild bool) ([]candidate.Candidate, []candidate.FilteredCandidate, error) {
	key := candidate.IndexKey{Config: cfg, Grammars: append(a.registry.Names(), "backend="+a.cfg.Backend)}
	store, storeErr := candidate.DefaultIndexCache()
	if storeErr != nil {
		a.log.Debug("index cache unavailable", zap.Error(storeErr))
	}

	if storeErr == nil && !rebuild {
		cands, ok, err := store.Load(key)
		if err != nil {
			a.log.Debug("index cache unreadable", zap.Error(err))
		}
		if ok {
			return cands, candidate.FilterCandidatesWithQuery(cands, q), nil
		}
	}

	idx := candidate.Indexer{
		Registry: a.registry,
		Compile:  a.compiler(),
		Policy:   a.cfg.policy(),
		Log:      a.log,
	}
	out, done := candidate.StartProducer(ctx, cfg, idx)

	var (
		cands    []candidate.Candidate
		filtered []candidate.FilteredCandidate
		scanned  int
	)
	flush := func() {
		if q.IsEmpty() || scanned == len(cands) {
			return
		}
		batch := candidate.FilterCandidatesRangeWithQuery(cands, scanned, len(cands), q)
		filtered = candidate.MergeFilteredCandidates(cands, filtered, batch)
		scanned = len(cands)
	}
	for c := range out {
		cands = append(cands, c)
		if len(cands)-scanned >= symbolBatch {
			flush()
		}
	}
	if err := <-done; err != nil {
		return nil, nil, err
	}
	flush()
	if q.IsEmpty() {
		filtered = candidate.FilterCandidatesWithQuery(cands, q)
	}

	if storeErr == nil {
		if err := store.Save(key, cands); err != nil {
			a.log.Warn("save index cache", zap.Error(err))
		}
	}
	return cands, filtered, nil
}
