package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	tests := []Config{
		{Enabled: false, Endpoint: "collector:4317"},
		{Enabled: true, Endpoint: ""},
	}

	for _, cfg := range tests {
		shutdown, err := Setup(context.Background(), cfg)
		require.NoError(t, err)
		require.NotNil(t, shutdown)
		assert.NoError(t, shutdown(context.Background()))
	}
}
