package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"hlkit/internal/candidate"
	"hlkit/internal/fuzzy"
	"hlkit/internal/grammar"
	"hlkit/internal/syntaxctl"
)

func BenchmarkFilterSymbols50k(b *testing.B) {
	b.ReportAllocs()
	candidates := makeBenchmarkCandidates(50_000)
	queries := []fuzzy.Query{
		fuzzy.NewQuery("parse"),
		fuzzy.NewQuery("handler"),
		fuzzy.NewQuery("install"),
		fuzzy.NewQuery("srv"),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = candidate.FilterCandidatesWithQuery(candidates, queries[i%len(queries)])
	}
}

func BenchmarkHighlightDocument(b *testing.B) {
	a := benchApp(b)
	text := makeBenchmarkPythonSource(2_000)
	g, err := a.engine().Grammar("Python", "", "")
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := a.engine().Highlight(context.Background(), g, text); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkOutlineDocument(b *testing.B) {
	a := benchApp(b)
	text := makeBenchmarkPythonSource(2_000)
	g, err := a.engine().Grammar("Python", "", "")
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := a.engine().Outline(context.Background(), g, text); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEditLine measures one keystroke in the middle of a long buffer
// until the controller has applied the new highlights.
func BenchmarkEditLine(b *testing.B) {
	a := benchApp(b)
	text := makeBenchmarkPythonSource(2_000)
	g, err := a.engine().Grammar("Python", "", "")
	if err != nil {
		b.Fatal(err)
	}

	c := syntaxctl.New(context.Background(), text, nil, append(a.controllerOptions(), syntaxctl.WithDelays(time.Hour, time.Hour))...)
	defer c.Close()
	events := c.SubscribeHighlights(context.Background())
	c.SetupParser(g)
	for _, dirty := c.Dirty(); dirty; _, dirty = c.Dirty() {
		<-events
	}
	for len(events) > 0 {
		<-events
	}

	mid := utf8.RuneCountInString(text) / 2
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%2 == 0 {
			c.Replace(mid, mid, []rune{'x'})
		} else {
			c.Replace(mid, mid+1, nil)
		}
		c.ParseAll()
		<-events
	}
}

func BenchmarkSymbolScan(b *testing.B) {
	root := strings.TrimSpace(os.Getenv("HLKIT_BENCH_ROOT"))
	if root == "" {
		b.Skip("set HLKIT_BENCH_ROOT to scan a real tree")
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		b.Skipf("HLKIT_BENCH_ROOT %q is not a readable directory", root)
	}
	a := benchApp(b)
	cfg := candidate.ProducerConfig{Root: root, ExcludeTests: true, Workers: a.cfg.Symbols.Workers}

	b.ReportAllocs()
	total := 0
	for i := 0; i < b.N; i++ {
		cands, _, err := a.searchSymbols(context.Background(), cfg, fuzzy.Query{}, true)
		if err != nil {
			b.Fatal(err)
		}
		total += len(cands)
	}
	b.ReportMetric(float64(total)/float64(b.N), "symbols/op")
}

func benchApp(b *testing.B) *app {
	b.Helper()
	b.Setenv("XDG_CONFIG_HOME", b.TempDir())
	b.Setenv("XDG_CACHE_HOME", b.TempDir())
	a := newApp(os.Stdout, os.Stderr)
	a.tui = true
	if err := a.setup(context.Background()); err != nil {
		b.Fatal(err)
	}
	return a
}

func makeBenchmarkCandidates(n int) []candidate.Candidate {
	out := make([]candidate.Candidate, n)
	for i := 0; i < n; i++ {
		c := candidate.Candidate{
			ID:      i + 1,
			File:    fmt.Sprintf("pkg/mod%d/file%d.py", i%100, i%37),
			Line:    (i % 400) + 1,
			Col:     1,
			Text:    fmt.Sprintf("symbol_%d_handler", i),
			Grammar: "Python",
			Kind:    grammar.OutlineFunction,
		}
		switch i % 3 {
		case 1:
			c.File = fmt.Sprintf("docs/section%d/page%d.md", i%90, i%45)
			c.Text = fmt.Sprintf("Install step %d", i)
			c.Grammar = "Markdown"
			c.Kind = grammar.OutlineHeading
		case 2:
			c.File = fmt.Sprintf("scripts/tool%d.sh", i%70)
			c.Text = fmt.Sprintf("parse_args_%d", i)
			c.Grammar = "Shell"
		}
		c.Key = c.Text
		out[i] = c
	}
	return out
}

func makeBenchmarkPythonSource(functions int) string {
	var sb strings.Builder
	sb.WriteString("class Server:\n")
	for i := 0; i < functions; i++ {
		fmt.Fprintf(&sb, "    def handler_%d(self, value):\n", i)
		fmt.Fprintf(&sb, "        # scale by %d\n", i)
		fmt.Fprintf(&sb, "        return value * %d + len('item %d')\n\n", i, i)
	}
	return sb.String()
}
