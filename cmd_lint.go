package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"hlkit/internal/grammar"
)

var errLintFailed = errors.New("lint failed")

func newLintCmd(a *app) *cobra.Command {
	var (
		showDiff bool
		write    bool
	)
	cmd := &cobra.Command{
		Use:   "lint GRAMMAR...",
		Short: "Check grammar files or registered grammars for mistakes",
		Long: `lint reports duplicated rules, invalid regular expressions, empty outline
patterns and unbalanced block comment delimiters.

With --diff it also shows how the file would look once sanitized: empty
rules dropped and rules sorted. --write saves that version.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			problems := 0
			for _, arg := range args {
				g, err := a.loadGrammarArg(arg)
				if err != nil {
					return err
				}
				findings := grammar.Validate(g)
				for _, f := range findings {
					fmt.Fprintf(a.out, "%s: %v\n", arg, f)
				}
				problems += len(findings)

				if !showDiff && !write {
					continue
				}
				if !grammar.IsGrammarFile(arg) {
					return fmt.Errorf("%s: --diff and --write need a grammar file", arg)
				}
				if err := sanitizeFile(a.out, arg, g, showDiff, write); err != nil {
					return err
				}
			}
			if problems > 0 {
				return fmt.Errorf("%d problem(s) (%w)", problems, errLintFailed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showDiff, "diff", false, "show the changes sanitizing would make")
	cmd.Flags().BoolVar(&write, "write", false, "rewrite the file sanitized")
	return cmd
}

func encodeLike(path string, g grammar.Grammar) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return grammar.EncodeYAML(g)
	default:
		return grammar.EncodeTOML(g)
	}
}

func sanitizeFile(w io.Writer, path string, g grammar.Grammar, showDiff, write bool) error {
	before, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	after, err := encodeLike(path, g.Sanitized())
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if showDiff {
		if d := lineDiff(string(before), string(after)); d != "" {
			fmt.Fprintf(w, "--- %s\n+++ %s (sanitized)\n%s", path, path, d)
		}
	}
	if write {
		if err := os.WriteFile(path, after, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

// lineDiff renders the line changes from a to b with - and + markers, or
// "" when they are equal.
func lineDiff(a, b string) string {
	if a == b {
		return ""
	}
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix + line)
			if !strings.HasSuffix(line, "\n") {
				out.WriteString("\n")
			}
		}
	}
	return out.String()
}
