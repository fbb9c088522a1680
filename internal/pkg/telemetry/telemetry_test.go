package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/fitness-inventory/internal/config"
)

func TestInit_WithoutEndpointIsNoop(t *testing.T) {
	cfg := &config.Config{
		App:       config.AppConfig{Version: "test", Environment: "test"},
		Telemetry: config.TelemetryConfig{ServiceName: "fitness-inventory"},
	}

	shutdown, err := Init(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(context.Background()))
}
