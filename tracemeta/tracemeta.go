// Package tracemeta instruments an [ec2meta.Provider] for distributed
// tracing. The OpenTelemetry API is supported.
//
// # Usage
//
// Wrap a provider with [New], or pass [Middleware] to
// [ec2meta.WithProviderMiddleware] so that every request made by a Getter
// (including in dummy mode) gets a span:
//
//	g, err := ec2meta.New(dir, ec2meta.WithProviderMiddleware(tracemeta.Middleware()))
//
// In order to report traces, an OTel [trace.TracerProvider] must first be set
// up. See the ec2meta example in this repository's examples directory for one
// approach. A [trace.TracerProvider] can optionally be passed with
// [WithTracerProvider].
package tracemeta

import (
	"context"
	"fmt"

	"github.com/hairyhenderson/go-ec2meta"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/hairyhenderson/go-ec2meta/tracemeta"

type traceProvider struct {
	p      ec2meta.Provider
	tracer trace.Tracer
}

var _ ec2meta.Provider = (*traceProvider)(nil)

// New returns a provider that adds a span for each Get made on p.
func New(p ec2meta.Provider, opts ...Option) ec2meta.Provider {
	cfg := config{}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.tp == nil {
		cfg.tp = otel.GetTracerProvider()
	}

	return &traceProvider{
		p:      p,
		tracer: cfg.tp.Tracer(tracerName),
	}
}

// Middleware returns a function that wraps providers with New, for use with
// ec2meta.WithProviderMiddleware.
func Middleware(opts ...Option) func(ec2meta.Provider) ec2meta.Provider {
	return func(p ec2meta.Provider) ec2meta.Provider {
		return New(p, opts...)
	}
}

func getattribs(p ec2meta.Provider, field ec2meta.Field, subPath string) trace.SpanStartEventOption {
	attrs := []attribute.KeyValue{
		Field(field.Name),
		Kind(field.Kind.String()),
		Path(field.Path),
		Type(fmt.Sprintf("%T", p)),
	}

	if subPath != "" {
		attrs = append(attrs, SubPath(subPath))
	}

	return trace.WithAttributes(attrs...)
}

func (t *traceProvider) Get(ctx context.Context, field ec2meta.Field, subPath string) (string, error) {
	ctx, span := t.tracer.Start(ctx, "metadata.Get", getattribs(t.p, field, subPath))
	defer span.End()

	v, err := t.p.Get(ctx, field, subPath)

	span.SetAttributes(ValueSize(len(v)))

	return v, recordError(span, err)
}

// recordError records the given error on the span, and returns it. It does not
// set the span's status to error.
func recordError(span trace.Span, err error) error {
	span.RecordError(err)

	return err
}
