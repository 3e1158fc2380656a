package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"hlkit/internal/fuzzy"
	"hlkit/internal/outline"
	"hlkit/internal/textrange"
)

func newOutlineCmd(a *app) *cobra.Command {
	var (
		grammarName string
		filter      string
		at          int
	)
	cmd := &cobra.Command{
		Use:   "outline FILE",
		Short: "List the outline of FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.openDocument(args[0], grammarName)
			if err != nil {
				return err
			}
			items, err := a.engine().Outline(cmd.Context(), doc.Grammar, doc.Text)
			if err != nil {
				return fmt.Errorf("outline %s: %w", doc.Path, err)
			}

			text := []rune(doc.Text)
			if at > 0 {
				it, ok := items.ItemAt(lineOffset(text, at))
				if !ok {
					return fmt.Errorf("no outline item at line %d", at)
				}
				items = outline.List{it}
			}
			items = items.Filter(filter)
			return writeOutline(a.out, text, items, fuzzy.NewQuery(filter))
		},
	}
	cmd.Flags().StringVarP(&grammarName, "grammar", "g", "", "grammar name (default: detect from the file)")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "keep items whose title fuzzily matches")
	cmd.Flags().IntVar(&at, "at", 0, "print only the item enclosing this line")
	return cmd
}

// lineOffset returns the offset of the first rune of the one-based line n.
func lineOffset(text []rune, n int) int {
	line := 1
	for i, r := range text {
		if line == n {
			return i
		}
		if r == '\n' {
			line++
		}
	}
	return len(text)
}

func writeOutline(w io.Writer, text []rune, items outline.List, q fuzzy.Query) error {
	lines := textrange.NewLines(text)
	for _, it := range items {
		line := lines.Number(it.Range.Start)
		col := it.Range.Start - textrange.LineStart(text, it.Range.Start) + 1
		loc := lineNumberStyle().Render(fmt.Sprintf("%5d:%-3d", line, col))
		if _, err := fmt.Fprintf(w, "%s %s%s\n", loc, it.Indent.Prefix(2), renderOutlineTitle(it, q, false)); err != nil {
			return err
		}
	}
	return nil
}
