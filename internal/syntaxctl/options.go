package syntaxctl

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"hlkit/internal/grammar"
	"hlkit/internal/outline"
)

const (
	DefaultHighlightDelay     = 50 * time.Millisecond
	DefaultOutlineDelay       = 600 * time.Millisecond
	DefaultBootstrapLength    = 2_000
	DefaultMinimumParseLength = 5_000
)

// StyleFunc maps a category to the style it is drawn with. ok is false
// for categories the theme leaves plain.
type StyleFunc func(grammar.Category) (style lipgloss.Style, ok bool)

type Options struct {
	HighlightDelay time.Duration
	OutlineDelay   time.Duration

	// BootstrapLength is the prefix highlighted first when a grammar is
	// attached to a longer buffer.
	BootstrapLength int

	// MinimumParseLength is the buffer size up to which every pass scans
	// the whole text.
	MinimumParseLength int

	Policy   outline.Policy
	Style    StyleFunc
	Compiler Compiler
	Tracer   trace.Tracer
}

type Option func(*Options)

func WithDelays(highlight, outline time.Duration) Option {
	return func(o *Options) {
		o.HighlightDelay = highlight
		o.OutlineDelay = outline
	}
}

func WithBootstrapLength(n int) Option {
	return func(o *Options) { o.BootstrapLength = n }
}

func WithMinimumParseLength(n int) Option {
	return func(o *Options) { o.MinimumParseLength = n }
}

func WithPolicy(p outline.Policy) Option {
	return func(o *Options) { o.Policy = p }
}

func WithStyle(f StyleFunc) Option {
	return func(o *Options) { o.Style = f }
}

func WithCompiler(c Compiler) Option {
	return func(o *Options) { o.Compiler = c }
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Options) { o.Tracer = t }
}

func defaultOptions() Options {
	return Options{
		HighlightDelay:     DefaultHighlightDelay,
		OutlineDelay:       DefaultOutlineDelay,
		BootstrapLength:    DefaultBootstrapLength,
		MinimumParseLength: DefaultMinimumParseLength,
		Policy:             outline.DefaultPolicy,
		Style:              func(grammar.Category) (lipgloss.Style, bool) { return lipgloss.Style{}, false },
		Tracer:             noop.NewTracerProvider().Tracer("hlkit"),
	}
}
