package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestSetup_WithoutCollector(t *testing.T) {
	shutdown, err := Setup(context.Background(), "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, span := GetTracer("hirefeed/test").Start(context.Background(), "noop")
	span.SetAttributes(String("k", "v"), Int("n", 1))
	span.End()
}

func TestSetup_InstallsProvider(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	// Dialing is lazy, so no collector has to be listening.
	shutdown, err := Setup(context.Background(), "localhost:4317")
	require.NoError(t, err)

	assert.IsType(t, &sdktrace.TracerProvider{}, otel.GetTracerProvider())
	assert.NoError(t, shutdown(context.Background()))
}
