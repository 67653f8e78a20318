package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	options "github.com/kart-io/sentinel-mongo/pkg/options/tracing"
)

func TestNewProvider_Disabled(t *testing.T) {
	before := otel.GetTracerProvider()

	p, err := NewProvider(context.Background(), NewOptions(), "svc", "v1")
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.Same(t, before, otel.GetTracerProvider())
	assert.NoError(t, p.ForceFlush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_InvalidOptions(t *testing.T) {
	opts := NewOptions()
	opts.Enabled = true
	opts.ExporterType = "zipkin"

	_, err := NewProvider(context.Background(), opts, "svc", "v1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exporter-type")
}

func TestNewProvider_ExportsSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	opts := NewOptions()
	opts.Enabled = true
	opts.ExporterType = options.ExporterNoop

	p, err := NewProvider(context.Background(), opts, "svc", "v1", WithExporter(exp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	assert.True(t, p.Enabled())

	_, span := otel.Tracer("test").Start(context.Background(), "mongodb.connect")
	span.End()
	require.NoError(t, p.ForceFlush(context.Background()))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "mongodb.connect", spans[0].Name)

	var found bool
	for _, kv := range spans[0].Resource.Attributes() {
		if kv.Key == "service.name" {
			found = true
			assert.Equal(t, "svc", kv.Value.AsString())
		}
	}
	assert.True(t, found, "service.name resource attribute")
}

func TestNewProvider_ServiceNameOverride(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	opts := NewOptions()
	opts.Enabled = true
	opts.ExporterType = options.ExporterNoop
	opts.ServiceName = "custom"

	p, err := NewProvider(context.Background(), opts, "svc", "", WithExporter(exp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	_, span := p.Tracer("test").Start(context.Background(), "op")
	span.End()
	require.NoError(t, p.ForceFlush(context.Background()))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Resource.String(), "service.name=custom")
}

func TestNewProvider_StdoutWriter(t *testing.T) {
	var buf bytes.Buffer
	opts := NewOptions()
	opts.Enabled = true
	opts.ExporterType = options.ExporterStdout

	p, err := NewProvider(context.Background(), opts, "svc", "v1", WithWriter(&buf))
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "stdout-span")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "stdout-span")
}

func TestProvider_ShutdownRestoresPrevious(t *testing.T) {
	before := otel.GetTracerProvider()
	opts := NewOptions()
	opts.Enabled = true
	opts.ExporterType = options.ExporterNoop

	p, err := NewProvider(context.Background(), opts, "svc", "v1")
	require.NoError(t, err)
	assert.NotSame(t, before, otel.GetTracerProvider())

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Same(t, before, otel.GetTracerProvider())
}
