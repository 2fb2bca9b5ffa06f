package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/cory-johannsen/skirmish/internal/config"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	before := otel.GetTracerProvider()
	shutdown, err := Setup(context.Background(), config.TelemetryConfig{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestInstall_RecordsSpansFromTracer(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	rec := tracetest.NewSpanRecorder()
	shutdown, err := install(context.Background(), "skirmish-test", sdktrace.WithSpanProcessor(rec))
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	_, span := Tracer("ai").Start(context.Background(), "ai.turn")
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "ai.turn", ended[0].Name())
	assert.Equal(t, "skirmish/ai", ended[0].InstrumentationScope().Name)
}

func TestNoopTracer_DoesNotRecord(t *testing.T) {
	_, span := NoopTracer().Start(context.Background(), "x")
	assert.False(t, span.IsRecording())
	span.End()
}
