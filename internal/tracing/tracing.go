// Package tracing sets up the OpenTelemetry tracer used to time highlight
// and outline passes.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const defaultService = "hlkit"

var ErrUnknownExporter = errors.New("unknown trace exporter")

type Config struct {
	Enabled bool `mapstructure:"enabled"`

	// Exporter is one of "none", "stdout", "file" or "otlp".
	Exporter string `mapstructure:"exporter"`

	FilePath     string `mapstructure:"file"`
	OTLPEndpoint string `mapstructure:"endpoint"`
	ServiceName  string `mapstructure:"service"`
}

func DefaultConfig() Config {
	return Config{
		Exporter:     "stdout",
		OTLPEndpoint: "localhost:4317",
		ServiceName:  defaultService,
	}
}

// Provider owns the tracer provider for the lifetime of the process.
type Provider struct {
	sdk    *sdktrace.TracerProvider
	tracer trace.Tracer
	closer io.Closer
}

// NewProvider returns a no-op provider when tracing is disabled.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{tracer: noop.NewTracerProvider().Tracer(defaultService)}, nil
	}

	var (
		exp    sdktrace.SpanExporter
		closer io.Closer
		err    error
	)
	switch cfg.Exporter {
	case "", "none":
	case "stdout":
		exp, err = stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("file exporter: no path")
		}
		var f *os.File
		f, err = openTraceFile(cfg.FilePath)
		if err == nil {
			closer = f
			exp, err = stdouttrace.New(stdouttrace.WithWriter(f))
		}
	case "otlp":
		exp, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("%q: %w", cfg.Exporter, ErrUnknownExporter)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", cfg.Exporter, err)
	}

	return newSDKProvider(cfg.ServiceName, exp, closer), nil
}

// NewWithExporter builds an enabled provider around exp, syncing every span.
func NewWithExporter(exp sdktrace.SpanExporter) *Provider {
	p := newSDKProvider(defaultService, nil, nil)
	p.sdk.RegisterSpanProcessor(sdktrace.NewSimpleSpanProcessor(exp))
	return p
}

func newSDKProvider(service string, exp sdktrace.SpanExporter, closer io.Closer) *Provider {
	if service == "" {
		service = defaultService
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", service))),
	}
	if exp != nil {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	sdk := sdktrace.NewTracerProvider(opts...)
	return &Provider{sdk: sdk, tracer: sdk.Tracer(service), closer: closer}
}

func openTraceFile(path string) (*os.File, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
}

func (p *Provider) Tracer() trace.Tracer { return p.tracer }

func (p *Provider) Enabled() bool { return p.sdk != nil }

// Shutdown flushes buffered spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}
	err := p.sdk.Shutdown(ctx)
	if p.closer != nil {
		err = errors.Join(err, p.closer.Close())
	}
	return err
}
