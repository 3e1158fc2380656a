// Package engine runs single highlight and outline passes over whole
// documents, for hosts that do not edit them.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"hlkit/internal/grammar"
	"hlkit/internal/highlight"
	"hlkit/internal/lang"
	"hlkit/internal/outline"
	"hlkit/internal/readfile"
	"hlkit/internal/syntaxctl"
	"hlkit/internal/textrange"
)

var ErrUnknownGrammar = errors.New("unknown grammar")

type Engine struct {
	Registry *lang.Registry
	Compile  syntaxctl.Compiler
	Policy   outline.Policy
	Tracer   trace.Tracer
}

func (e *Engine) tracer() trace.Tracer {
	if e.Tracer == nil {
		return noop.NewTracerProvider().Tracer("hlkit")
	}
	return e.Tracer
}

// Grammar returns the grammar called name, matched case-insensitively.
// Without a name it is detected from path and the first line of text.
func (e *Engine) Grammar(name, path, text string) (grammar.Grammar, error) {
	if name == "" {
		return e.Registry.Detect(path, readfile.FirstLine(text)), nil
	}
	if g, ok := e.Registry.Get(name); ok {
		return g, nil
	}
	for _, n := range e.Registry.Names() {
		if strings.EqualFold(n, name) {
			g, _ := e.Registry.Get(n)
			return g, nil
		}
	}
	return grammar.Grammar{}, fmt.Errorf("%q: %w (known: %s)", name, ErrUnknownGrammar, strings.Join(e.Registry.Names(), ", "))
}

// Highlight returns the spans of the whole text.
func (e *Engine) Highlight(ctx context.Context, g grammar.Grammar, text string) (hs []highlight.Highlight, err error) {
	runes := []rune(text)
	ctx, span := e.tracer().Start(ctx, "highlight.document", trace.WithAttributes(
		attribute.String("grammar", g.Name),
		attribute.Int("length", len(runes)),
	))
	defer func() { end(span, err) }()

	syntax := e.Compile(g)
	if syntax.Parser == nil {
		return nil, nil
	}
	return syntax.Parser.Parse(ctx, runes, textrange.Range{End: len(runes)})
}

// Outline returns the normalized outline of text.
func (e *Engine) Outline(ctx context.Context, g grammar.Grammar, text string) (items outline.List, err error) {
	runes := []rune(text)
	ctx, span := e.tracer().Start(ctx, "outline.document", trace.WithAttributes(
		attribute.String("grammar", g.Name),
		attribute.Int("length", len(runes)),
	))
	defer func() { end(span, err) }()

	syntax := e.Compile(g)
	if syntax.OutlinesNothing() {
		return nil, nil
	}
	raw, err := syntax.Outline(ctx, runes)
	if err != nil {
		return nil, err
	}
	return outline.List(outline.Normalize(raw, e.Policy)), nil
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
