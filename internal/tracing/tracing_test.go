package tracing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDisabledProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{})
	require.NoError(t, err)
	require.False(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "highlight.pass")
	require.False(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestUnknownExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, Exporter: "zipkin"})
	require.ErrorIs(t, err, ErrUnknownExporter)
}

func TestFileExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "spans.jsonl")

	_, err := NewProvider(context.Background(), Config{Enabled: true, Exporter: "file"})
	require.Error(t, err)

	p, err := NewProvider(context.Background(), Config{Enabled: true, Exporter: "file", FilePath: path})
	require.NoError(t, err)
	require.True(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "outline.pass")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "outline.pass")
}

func TestNewWithExporter(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	p := NewWithExporter(exp)

	_, span := p.Tracer().Start(context.Background(), "highlight.pass")
	span.End()

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	require.Equal(t, "highlight.pass", spans[0].Name)
	require.NoError(t, p.Shutdown(context.Background()))
}
