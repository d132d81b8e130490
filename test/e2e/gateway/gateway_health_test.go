package gateway_test

import (
	"testing"

	"github.com/aussiebroadwan/idgate/pkg/gatewaysdk"
	"github.com/stretchr/testify/require"
)

// TestLivezEndpoint verifies the liveness check endpoint works.
func TestLivezEndpoint(t *testing.T) {
	baseURL, cleanup := setupStack(t)
	defer cleanup()

	client := gatewaysdk.NewSDKClient(baseURL)

	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)

	t.Logf("Livez endpoint is healthy")
}

// TestReadyzEndpoint verifies the readiness check reports healthy dependencies
// once the verifier has loaded the provider's signing keys.
func TestReadyzEndpoint(t *testing.T) {
	baseURL, cleanup := setupStack(t)
	defer cleanup()

	client := gatewaysdk.NewSDKClient(baseURL)

	health, err := client.GetReadiness(t.Context())
	assertHealthy(t, health, err)

	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database, "Database check should be ok")
	require.Equal(t, "ok", health.Checks.Verifier, "Verifier check should be ok")

	t.Logf("Readyz endpoint is healthy")
}
