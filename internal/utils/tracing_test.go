package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracing_Disabled(t *testing.T) {
	tr, err := InitTracing(context.Background(), TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, tr.provider)
	assert.NoError(t, tr.Shutdown(context.Background()))
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
}

func TestTracing_NilShutdown(t *testing.T) {
	var tr *Tracing
	assert.NoError(t, tr.Shutdown(context.Background()))
}
