package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"hlkit/internal/grammar"
)

// noMarginStyle drops the document margins glamour adds by default.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

func newInfoCmd(a *app) *cobra.Command {
	var (
		raw   bool
		width int
	)
	cmd := &cobra.Command{
		Use:   "info GRAMMAR",
		Short: "Describe a grammar file or a registered grammar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGrammarArg(args[0])
			if err != nil {
				return err
			}
			md := grammarMarkdown(g)
			if raw {
				_, err := io.WriteString(a.out, md)
				return err
			}

			r, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return err
			}
			out, err := r.Render(md)
			if err != nil {
				return err
			}
			_, err = io.WriteString(a.out, out)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown instead of rendering it")
	cmd.Flags().IntVar(&width, "width", 80, "word wrap width")
	return cmd
}

func grammarMarkdown(g grammar.Grammar) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", g.Name)
	if g.Metadata.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", g.Metadata.Description)
	}

	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Kind | %s |\n", orDash(string(g.Kind)))
	row := func(label string, values []string) {
		fmt.Fprintf(&b, "| %s | %s |\n", label, orDash(codeList(values)))
	}
	row("Extensions", g.FileMap.Extensions)
	row("Filenames", g.FileMap.Filenames)
	row("Interpreters", g.FileMap.Interpreters)
	m := g.Metadata
	for _, kv := range [][2]string{
		{"Version", m.Version},
		{"Last modified", m.LastModified},
		{"Author", m.Author},
		{"License", m.License},
		{"Distribution", m.DistributionURL},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&b, "| %s | %s |\n", kv[0], kv[1])
		}
	}

	b.WriteString("\n## Highlights\n\n| Category | Words | Pairs | Regex |\n|---|---|---|---|\n")
	for _, cat := range grammar.Categories {
		rules := g.Highlights[cat]
		if len(rules) == 0 {
			continue
		}
		var words, pairs, regex int
		for _, r := range rules {
			switch {
			case r.IsRegex:
				regex++
			case r.End != nil:
				pairs++
			default:
				words++
			}
		}
		fmt.Fprintf(&b, "| %s | %d | %d | %d |\n", cat, words, pairs, regex)
	}

	if len(g.Outlines) > 0 {
		b.WriteString("\n## Outline\n\n")
		for _, o := range g.Outlines {
			kind := string(o.Kind)
			if kind == "" {
				kind = "item"
			}
			fmt.Fprintf(&b, "- %s: `%s`", kind, o.Pattern)
			if o.Template != "" {
				fmt.Fprintf(&b, " as `%s`", o.Template)
			}
			b.WriteString("\n")
		}
	}

	if !g.Comments.IsEmpty() {
		b.WriteString("\n## Comments\n\n")
		for _, in := range g.Comments.Inlines {
			where := "anywhere"
			if in.LeadingOnly {
				where = "line start"
			}
			fmt.Fprintf(&b, "- inline `%s` (%s)\n", in.Begin, where)
		}
		for _, bl := range g.Comments.Blocks {
			fmt.Fprintf(&b, "- block `%s` ... `%s`\n", bl.Begin, bl.End)
		}
	}

	if words := g.CompletionWords(); len(words) > 0 {
		texts := make([]string, 0, len(words))
		for _, w := range words {
			texts = append(texts, w.Text)
		}
		fmt.Fprintf(&b, "\n## Completions\n\n%s\n", codeList(texts))
	}

	if errs := grammar.Validate(g); len(errs) > 0 {
		b.WriteString("\n## Problems\n\n")
		for _, e := range errs {
			fmt.Fprintf(&b, "- %s\n", strings.ReplaceAll(e.Error(), "`", "'"))
		}
	}
	return b.String()
}

func codeList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, "`"+v+"`")
	}
	return strings.Join(quoted, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
