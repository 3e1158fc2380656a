// Package syntaxctl keeps the highlights and outline of one document up to
// date while it is edited.
//
// A Controller owns a single coordinator goroutine. Every public method is
// turned into a command executed on that goroutine, so the dirty ranges and
// applied spans are never shared. Scans run on worker goroutines and report
// back through the same command queue; results from a superseded or
// cancelled pass are discarded.
package syntaxctl

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"hlkit/internal/grammar"
	"hlkit/internal/highlight"
	"hlkit/internal/logger"
	"hlkit/internal/nestable"
	"hlkit/internal/outline"
	"hlkit/internal/pubsub"
	"hlkit/internal/textrange"
)

// Renderer receives the result of each highlight pass. highlights is
// sorted and non-overlapping; rng bounds what has to be redrawn, and any
// styling left inside it from earlier passes is stale.
//
// Apply runs on the controller goroutine and must not call back into the
// controller.
type Renderer interface {
	Apply(highlights []highlight.Highlight, style StyleFunc, rng textrange.Range)
}

type RendererFunc func([]highlight.Highlight, StyleFunc, textrange.Range)

func (f RendererFunc) Apply(hs []highlight.Highlight, style StyleFunc, rng textrange.Range) {
	f(hs, style, rng)
}

type Controller struct {
	id     string
	opts   Options
	render Renderer
	log    *zap.Logger

	cmds chan func(*state)
	done chan struct{}
	stop context.CancelFunc

	outlines   *pubsub.Broker[outline.List]
	highlights *pubsub.Broker[[]highlight.Highlight]
}

// task is one kind of pass: its debounce timer and the run in flight.
type task struct {
	timer  *time.Timer
	ticket uint64
	cancel context.CancelFunc
	run    uint64
}

func (t *task) busy() bool { return t.timer != nil || t.cancel != nil }

func (t *task) stop() {
	t.ticket++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

type state struct {
	ctx context.Context
	c   *Controller

	text     []rune
	syntax   Syntax
	attached bool

	dirty   EditedRangeSet
	applied []highlight.Highlight
	items   outline.List

	// gen counts invalidations. highlighted is the generation whose
	// highlight pass finished last.
	gen         uint64
	highlighted uint64

	hl, ol     task
	outlineDue bool
}

// New starts a controller for text. Nothing is highlighted until
// SetupParser is called.
func New(ctx context.Context, text string, r Renderer, opts ...Option) *Controller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	log := logger.L(ctx).With(zap.String("doc", id))
	if o.Compiler == nil {
		o.Compiler = RegexCompiler(log, nestable.Backslash)
	}

	ctx, stop := context.WithCancel(ctx)
	c := &Controller{
		id:         id,
		opts:       o,
		render:     r,
		log:        log,
		cmds:       make(chan func(*state)),
		done:       make(chan struct{}),
		stop:       stop,
		outlines:   pubsub.NewBroker[outline.List](),
		highlights: pubsub.NewBroker[[]highlight.Highlight](),
	}

	runes := []rune(text)
	s := &state{
		ctx:    ctx,
		c:      c,
		text:   runes,
		syntax: Syntax{Name: grammar.None.Name, Parser: highlight.Empty{}},
		dirty:  NewEditedRangeSet(textrange.Range{End: len(runes)}),
		gen:    1,
	}
	go c.loop(ctx, s)
	return c
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) loop(ctx context.Context, s *state) {
	defer close(c.done)
	for {
		select {
		case f := <-c.cmds:
			f(s)
		case <-ctx.Done():
			s.hl.stop()
			s.ol.stop()
			return
		}
	}
}

// send queues f without waiting for it to run.
func (c *Controller) send(f func(*state)) bool {
	select {
	case c.cmds <- f:
		return true
	case <-c.done:
		return false
	}
}

// do runs f on the controller goroutine and waits for it.
func (c *Controller) do(f func(*state)) {
	ran := make(chan struct{})
	if c.send(func(s *state) {
		defer close(ran)
		f(s)
	}) {
		select {
		case <-ran:
		case <-c.done:
		}
	}
}

// SetupParser compiles g and reparses the whole buffer with it. The first
// call on a long buffer highlights its head before the full pass.
func (c *Controller) SetupParser(g grammar.Grammar) {
	syntax := c.opts.Compiler(g)
	c.do(func(s *state) {
		s.hl.stop()
		s.ol.stop()
		s.syntax = syntax
		s.items = nil
		c.outlines.Publish(pubsub.ResetEvent, s.gen, nil)

		bootstrap := !s.attached && len(s.text) > c.opts.BootstrapLength
		s.attached = true
		s.parseAll(bootstrap)
	})
}

// Update replaces the buffer snapshot. Pair it with Invalidate.
func (c *Controller) Update(text string) {
	runes := []rune(text)
	c.do(func(s *state) { s.text = runes })
}

// Invalidate records an edit that left edited in the current text and
// changed its length by delta. Passes in flight are cancelled.
func (c *Controller) Invalidate(edited textrange.Range, delta int) {
	c.do(func(s *state) { s.invalidate(edited, delta) })
}

// Edit replaces the buffer with text, invalidates what changed and
// schedules the debounced passes. The change is found by diffing the
// whole buffer; prefer Replace when the edit is known.
func (c *Controller) Edit(text string) {
	c.do(func(s *state) {
		edited, delta, ok := EditBetween(string(s.text), text)
		if !ok {
			return
		}
		s.text = []rune(text)
		s.invalidate(edited, delta)
		s.parseIfNeeded()
	})
}

// Replace splices ins over [start, end) of the buffer and invalidates the
// inserted range. It is Edit for callers that already know what changed.
func (c *Controller) Replace(start, end int, ins []rune) {
	ins = slices.Clone(ins)
	c.do(func(s *state) {
		start := min(max(start, 0), len(s.text))
		end := min(max(end, start), len(s.text))
		if start == end && len(ins) == 0 {
			return
		}
		s.text = slices.Concat(s.text[:start], ins, s.text[end:])
		s.invalidate(textrange.Range{Start: start, End: start + len(ins)}, len(ins)-(end-start))
		s.parseIfNeeded()
	})
}

// ParseIfNeeded schedules a highlight pass and an outline pass when
// anything is dirty. Calls within the debounce delay coalesce.
func (c *Controller) ParseIfNeeded() {
	c.do(func(s *state) { s.parseIfNeeded() })
}

// ParseAll marks everything dirty and parses immediately.
func (c *Controller) ParseAll() {
	c.do(func(s *state) { s.parseAll(false) })
}

// Cancel stops pending and running passes. Dirty ranges are kept.
func (c *Controller) Cancel() {
	c.do(func(s *state) {
		s.hl.stop()
		s.ol.stop()
		s.outlineDue = false
	})
}

// Close stops the controller and closes every subscription.
func (c *Controller) Close() {
	c.stop()
	<-c.done
	c.outlines.Close()
	c.highlights.Close()
}

// Highlights returns the spans applied so far.
func (c *Controller) Highlights() []highlight.Highlight {
	var out []highlight.Highlight
	c.do(func(s *state) { out = slices.Clone(s.applied) })
	return out
}

// Outline returns the last published outline.
func (c *Controller) Outline() outline.List {
	var out outline.List
	c.do(func(s *state) { out = slices.Clone(s.items) })
	return out
}

// Dirty returns the bounding range still waiting for a highlight pass.
func (c *Controller) Dirty() (textrange.Range, bool) {
	var (
		r  textrange.Range
		ok bool
	)
	c.do(func(s *state) { r, ok = s.dirty.Range() })
	return r, ok
}

func (c *Controller) SyntaxName() string {
	var name string
	c.do(func(s *state) { name = s.syntax.Name })
	return name
}

func (c *Controller) SubscribeOutline(ctx context.Context) <-chan pubsub.Event[outline.List] {
	return c.outlines.Subscribe(ctx)
}

func (c *Controller) SubscribeHighlights(ctx context.Context) <-chan pubsub.Event[[]highlight.Highlight] {
	return c.highlights.Subscribe(ctx)
}

func (s *state) whole() textrange.Range { return textrange.Range{End: len(s.text)} }

func (s *state) invalidate(edited textrange.Range, delta int) {
	s.hl.stop()
	if s.ol.cancel != nil {
		s.ol.stop()
		s.outlineDue = true
	}
	s.dirty.Append(edited, delta)
	s.applied = shiftSpans(s.applied, edited, delta)
	s.gen++
}

func (s *state) parseIfNeeded() {
	if s.dirty.IsEmpty() {
		return
	}
	s.hl.stop()
	s.schedule(&s.hl, s.c.opts.HighlightDelay, func(s *state) { s.startHighlight() })

	s.ol.stop()
	s.schedule(&s.ol, s.c.opts.OutlineDelay, func(s *state) {
		s.outlineDue = true
		s.maybeStartOutline()
	})
}

func (s *state) parseAll(bootstrap bool) {
	s.hl.stop()
	s.ol.stop()
	s.dirty.Reset(s.whole())
	s.gen++
	s.outlineDue = true

	if bootstrap {
		head := textrange.Range{End: textrange.LineEnd(s.text, s.c.opts.BootstrapLength)}
		s.runHighlight(head, true)
		return
	}
	s.startHighlight()
}

// schedule runs f on the controller goroutine after d unless t is stopped
// first.
func (s *state) schedule(t *task, d time.Duration, f func(*state)) {
	ticket, c := t.ticket, s.c
	t.timer = time.AfterFunc(d, func() {
		c.send(func(s *state) {
			if t.ticket != ticket {
				return
			}
			t.timer = nil
			f(s)
		})
	})
}

func (s *state) startHighlight() {
	s.hl.stop()

	dirty, ok := s.dirty.Range()
	switch {
	case !ok:
		s.highlightDone()
		return
	case len(s.text) == 0 || s.syntax.highlightsNothing():
		s.dirty.Clear()
		s.apply(nil, s.whole())
		s.highlightDone()
		return
	case dirty.End > len(s.text):
		s.c.log.Debug("dirty range beyond buffer",
			zap.Stringer("range", dirty), zap.Int("length", len(s.text)))
		s.highlightDone()
		return
	}

	s.runHighlight(parseRange(s.text, dirty, s.applied, s.c.opts.MinimumParseLength), false)
}

// runHighlight scans rng in the background. A bootstrap pass leaves the
// dirty ranges alone and is followed by a regular pass.
func (s *state) runHighlight(rng textrange.Range, bootstrap bool) {
	ctx, cancel := context.WithCancel(s.ctx)
	s.hl.cancel = cancel
	s.hl.run++
	run, gen := s.hl.run, s.gen
	parser, text := s.syntax.Parser, s.text
	c := s.c

	go func() {
		spanCtx, span := c.opts.Tracer.Start(ctx, "highlight.pass", trace.WithAttributes(
			attribute.Int("range.start", rng.Start),
			attribute.Int("range.end", rng.End),
			attribute.Int64("generation", int64(gen)),
			attribute.Bool("bootstrap", bootstrap),
		))
		hs, err := parser.Parse(spanCtx, text, rng)
		endSpan(span, err)

		c.send(func(s *state) {
			if run != s.hl.run || ctx.Err() != nil {
				c.log.Debug("discard highlight pass", zap.Uint64("generation", gen))
				return
			}
			s.hl.cancel = nil
			cancel()

			if err != nil {
				if !errors.Is(err, context.Canceled) {
					c.log.Warn("highlight pass failed", zap.Stringer("range", rng), zap.Error(err))
				}
				s.highlightDone()
				return
			}
			s.apply(hs, rng)
			if bootstrap {
				s.startHighlight()
				return
			}
			s.dirty.Clear()
			s.highlightDone()
		})
	}()
}

func (s *state) apply(hs []highlight.Highlight, rng textrange.Range) {
	s.applied = replaceSpans(s.applied, rng, hs)
	if s.c.render != nil {
		s.c.render.Apply(hs, s.c.opts.Style, rng)
	}
	s.c.highlights.Publish(pubsub.HighlightEvent, s.gen, slices.Clone(s.applied))
}

func (s *state) highlightDone() {
	s.highlighted = s.gen
	s.maybeStartOutline()
}

// maybeStartOutline starts a due outline pass once the highlight pass of
// the same generation has finished.
func (s *state) maybeStartOutline() {
	if !s.outlineDue || s.highlighted != s.gen || s.hl.busy() {
		return
	}
	s.outlineDue = false
	s.runOutline()
}

func (s *state) runOutline() {
	s.ol.stop()

	if s.syntax.OutlinesNothing() || len(s.text) == 0 {
		s.items = nil
		s.c.outlines.Publish(pubsub.OutlineEvent, s.gen, nil)
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	s.ol.cancel = cancel
	s.ol.run++
	run, gen := s.ol.run, s.gen
	syntax, text, policy := s.syntax, s.text, s.c.opts.Policy
	c := s.c

	go func() {
		spanCtx, span := c.opts.Tracer.Start(ctx, "outline.pass", trace.WithAttributes(
			attribute.Int("range.start", 0),
			attribute.Int("range.end", len(text)),
			attribute.Int64("generation", int64(gen)),
		))
		items, err := syntax.Outline(spanCtx, text)
		endSpan(span, err)
		if err == nil {
			items = outline.Normalize(items, policy)
		}

		c.send(func(s *state) {
			if run != s.ol.run || ctx.Err() != nil {
				c.log.Debug("discard outline pass", zap.Uint64("generation", gen))
				return
			}
			s.ol.cancel = nil
			cancel()

			if err != nil {
				c.log.Warn("outline pass failed", zap.Error(err))
				return
			}
			s.items = items
			c.outlines.Publish(pubsub.OutlineEvent, gen, slices.Clone(s.items))
		})
	}()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
