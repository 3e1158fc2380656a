package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"hlkit/internal/grammar"
	"hlkit/internal/lang"
	"hlkit/internal/nestable"
	"hlkit/internal/outline"
	"hlkit/internal/syntaxctl"
	"hlkit/internal/textrange"
	"hlkit/internal/tracing"
)

func testEngine() *Engine {
	py := grammar.Grammar{
		Name:    "Py",
		FileMap: grammar.FileMap{Extensions: []string{"py"}, Interpreters: []string{"python"}},
		Highlights: map[grammar.Category][]grammar.Highlight{
			grammar.Keywords: {grammar.Word("def"), grammar.Word("class")},
		},
		Outlines: []grammar.Outline{
			{Pattern: `^class (\w+)`, Template: "$1", Kind: grammar.OutlineContainer},
			{Pattern: `^\s*def (\w+)`, Template: "$1", Kind: grammar.OutlineFunction},
		},
	}
	return &Engine{
		Registry: lang.NewRegistry(py),
		Compile:  syntaxctl.RegexCompiler(zap.NewNop(), nestable.Backslash),
		Policy:   outline.DefaultPolicy,
	}
}

func TestGrammar(t *testing.T) {
	e := testEngine()

	g, err := e.Grammar("", "src/app.py", "")
	require.NoError(t, err)
	require.Equal(t, "Py", g.Name)

	g, err = e.Grammar("", "script", "#!/usr/bin/env python\n")
	require.NoError(t, err)
	require.Equal(t, "Py", g.Name)

	g, err = e.Grammar("", "notes.txt", "hello")
	require.NoError(t, err)
	require.Equal(t, grammar.None.Name, g.Name)

	g, err = e.Grammar("py", "notes.txt", "")
	require.NoError(t, err)
	require.Equal(t, "Py", g.Name)

	_, err = e.Grammar("cobol", "", "")
	require.ErrorIs(t, err, ErrUnknownGrammar)
}

func TestHighlightAndOutline(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	p := tracing.NewWithExporter(exp)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	e := testEngine()
	e.Tracer = p.Tracer()
	g, _ := e.Registry.Get("Py")
	text := "class A:\n  def run(self):\n"

	hs, err := e.Highlight(context.Background(), g, text)
	require.NoError(t, err)
	require.Len(t, hs, 2)
	require.Equal(t, textrange.Range{Start: 0, End: 5}, hs[0].Range)
	require.Equal(t, textrange.Range{Start: 11, End: 14}, hs[1].Range)

	items, err := e.Outline(context.Background(), g, text)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "A", items[0].Title)
	require.Equal(t, "run", items[1].Title)
	require.Equal(t, grammar.OutlineFunction, items[1].Kind)

	names := map[string]bool{}
	for _, s := range exp.GetSpans() {
		names[s.Name] = true
	}
	require.True(t, names["highlight.document"])
	require.True(t, names["outline.document"])
}

func TestNoneGrammar(t *testing.T) {
	e := testEngine()

	hs, err := e.Highlight(context.Background(), grammar.None, "def x")
	require.NoError(t, err)
	require.Empty(t, hs)

	items, err := e.Outline(context.Background(), grammar.None, "def x")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestHighlightCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := testEngine()
	g, _ := e.Registry.Get("Py")
	_, err := e.Highlight(ctx, g, "def a\n")
	require.ErrorIs(t, err, context.Canceled)
}
