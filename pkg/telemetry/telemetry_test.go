package telemetry

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap/zaptest"
)

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), Config{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, span := p.TracerProvider.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSetup_StdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	p, err := Setup(context.Background(), Config{
		Enabled:        true,
		Exporter:       ExporterStdout,
		SampleRatio:    1,
		ServiceName:    "user-registry",
		ServiceVersion: "test",
		Environment:    "test",
		Writer:         &buf,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "exported-span")
	assert.True(t, span.SpanContext().IsSampled())
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "exported-span")
	assert.Contains(t, buf.String(), "user-registry")
}

func TestSetup_ZeroRatioDropsRootSpans(t *testing.T) {
	var buf bytes.Buffer
	p, err := Setup(context.Background(), Config{
		Enabled:     true,
		Exporter:    ExporterStdout,
		SampleRatio: 0,
		Writer:      &buf,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	_, span := p.TracerProvider.Tracer("test").Start(context.Background(), "dropped")
	defer span.End()

	assert.False(t, span.SpanContext().IsSampled())
}

func TestSetup_InstallsTraceContextPropagator(t *testing.T) {
	_, err := Setup(context.Background(), Config{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	fields := otel.GetTextMapPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
	assert.Contains(t, fields, "baggage")
}

func TestSetup_UnknownExporter(t *testing.T) {
	_, err := Setup(context.Background(), Config{Enabled: true, Exporter: "zipkin"}, zaptest.NewLogger(t))

	assert.ErrorContains(t, err, `unknown telemetry exporter "zipkin"`)
}

type recordingSpanExporter struct {
	sdktrace.SpanExporter
	shutdown bool
}

func (e *recordingSpanExporter) Shutdown(context.Context) error {
	e.shutdown = true
	return nil
}

func TestSetup_MetricExporterFailureReleasesSpanExporter(t *testing.T) {
	spans := &recordingSpanExporter{}
	origSpan, origMetric := newStdoutSpanExporter, newStdoutMetricExporter
	t.Cleanup(func() { newStdoutSpanExporter, newStdoutMetricExporter = origSpan, origMetric })

	newStdoutSpanExporter = func(io.Writer) (sdktrace.SpanExporter, error) { return spans, nil }
	newStdoutMetricExporter = func(io.Writer) (sdkmetric.Exporter, error) { return nil, errors.New("writer closed") }

	_, err := Setup(context.Background(), Config{
		Enabled:     true,
		Exporter:    ExporterStdout,
		SampleRatio: 1,
		ServiceName: "test",
	}, zaptest.NewLogger(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdout metric exporter")
	assert.True(t, spans.shutdown)
}
