package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"hlkit/internal/highlight"
	"hlkit/internal/syntaxctl"
	"hlkit/internal/textrange"
)

func newHighlightCmd(a *app) *cobra.Command {
	var (
		grammarName string
		numbers     bool
		spans       bool
	)
	cmd := &cobra.Command{
		Use:   "highlight FILE",
		Short: "Print FILE with syntax colours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.openDocument(args[0], grammarName)
			if err != nil {
				return err
			}
			hs, err := a.engine().Highlight(cmd.Context(), doc.Grammar, doc.Text)
			if err != nil {
				return fmt.Errorf("highlight %s: %w", doc.Path, err)
			}
			if spans {
				return writeSpans(a.out, []rune(doc.Text), hs)
			}
			return writeHighlighted(a.out, []rune(doc.Text), hs, categoryStyle, numbers)
		},
	}
	cmd.Flags().StringVarP(&grammarName, "grammar", "g", "", "grammar name (default: detect from the file)")
	cmd.Flags().BoolVarP(&numbers, "line-numbers", "n", false, "prefix each line with its number")
	cmd.Flags().BoolVar(&spans, "spans", false, "list the spans instead of printing coloured text")
	return cmd
}

func writeHighlighted(w io.Writer, text []rune, hs []highlight.Highlight, style syntaxctl.StyleFunc, numbers bool) error {
	if len(text) == 0 {
		return nil
	}
	lines := lineSpans(text, hs)
	if text[len(text)-1] == '\n' {
		lines = lines[:len(lines)-1]
	}
	gutter := len(fmt.Sprint(len(lines)))

	var b strings.Builder
	start := 0
	for i, spans := range lines {
		end := textrange.LineContentsEnd(text, start)
		if numbers {
			b.WriteString(lineNumberStyle().Render(fmt.Sprintf("%*d ", gutter, i+1)))
		}
		b.WriteString(renderTokenLine(text[start:end], spans, style, false, nil))
		b.WriteByte('\n')
		start = end + 1
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeSpans(w io.Writer, text []rune, hs []highlight.Highlight) error {
	for _, h := range hs {
		if _, err := fmt.Fprintf(w, "%s\t%q\n", h, string(text[h.Range.Start:h.Range.End])); err != nil {
			return err
		}
	}
	return nil
}
