package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupDisabledKeepsGlobalProvider(t *testing.T) {
	before := otel.GetTracerProvider()

	for _, cfg := range []Config{
		{ServiceName: "expensesync", Endpoint: "", Enabled: true},
		{ServiceName: "expensesync", Endpoint: "http://localhost:4318", Enabled: false},
	} {
		shutdown, err := Setup(context.Background(), cfg)
		require.NoError(t, err)
		require.NotNil(t, shutdown)
		assert.NoError(t, shutdown(context.Background()))
		assert.Equal(t, before, otel.GetTracerProvider())
	}
}
