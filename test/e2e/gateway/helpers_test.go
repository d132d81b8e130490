package gateway_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/idgate/pkg/gatewaysdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for gateway end-to-end tests.
 * This includes container setup for both the gateway and its identity
 * provider, service operations, and assertions.
 */

const (
	testImageName = "idgate-test:latest"
	keycloakImage = "quay.io/keycloak/keycloak:26.0"

	testRealm        = "demo"
	testClientID     = "idgate"
	testClientSecret = "gateway-secret"

	adminUsername = "admin"
	adminPassword = "Admin123!"
)

// TestMain manages the test lifecycle, builds the Docker image once before
// all tests and cleans it up after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Identity Gateway Docker image...")

	// Build the Docker image once before all tests
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	// Run all tests
	exitCode := m.Run()

	// Clean up the Docker image after all tests complete
	fmt.Fprintf(os.Stdout, "Cleaning up Identity Gateway Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image if it doesn't exist.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/idgate/Dockerfile",
		"../../../")
	cmd.Dir = "." // Ensure we're in the test directory
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// setupKeycloakContainer starts a Keycloak container with the demo realm
// pre-imported and returns the container plus its bridge network address,
// which the gateway container uses to reach it.
func setupKeycloakContainer(t *testing.T) (testcontainers.Container, string) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        keycloakImage,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"KC_BOOTSTRAP_ADMIN_USERNAME": "kcadmin",
			"KC_BOOTSTRAP_ADMIN_PASSWORD": "kcadmin",
		},
		Cmd: []string{"start-dev", "--import-realm"},
		Files: []testcontainers.ContainerFile{
			{
				HostFilePath:      "testdata/demo-realm.json",
				ContainerFilePath: "/opt/keycloak/data/import/demo-realm.json",
				FileMode:          0o644,
			},
		},
		// The realm endpoint only responds once the import has finished,
		// so waiting on it covers both startup and import.
		WaitingFor: wait.ForHTTP("/realms/" + testRealm).
			WithPort("8080/tcp").
			WithStartupTimeout(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	ip, err := container.ContainerIP(ctx)
	require.NoError(t, err)

	return container, fmt.Sprintf("http://%s:8080", ip)
}

// setupGatewayContainer starts the gateway in a container pointed at the
// given Keycloak base URL and returns the host-reachable base URL.
func setupGatewayContainer(t *testing.T, keycloakURL string) (testcontainers.Container, string) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"IDGATE_KC_BASE_URL":         keycloakURL,
			"IDGATE_KC_REALM":            testRealm,
			"IDGATE_KC_ADMIN_REALM":      testRealm,
			"IDGATE_KC_CLIENT_ID":        testClientID,
			"IDGATE_KC_CLIENT_SECRET":    testClientSecret,
			"IDGATE_DEFAULT_AUTHORITIES": "ROLE_USER",
			"IDGATE_DATABASE_FILE":       "/idgate.db",
			"ENV":                        "test",
			"LOG_LEVEL":                  "info",
			"LOG_FORMAT":                 "json",
			// Increase rate limits for E2E tests to prevent test failures
			// Tests often make many rapid requests which would otherwise hit the strict production limits
			"RATELIMIT_STRICT_REQUESTS":   "1000",
			"RATELIMIT_STRICT_WINDOW_SEC": "60",
			"RATELIMIT_STRICT_BURST":      "1000",
			"RATELIMIT_MODERATE_REQUESTS": "1000",
			"RATELIMIT_MODERATE_BURST":    "1000",
			"RATELIMIT_LENIENT_REQUESTS":  "1000",
			"RATELIMIT_LENIENT_BURST":     "1000",
		},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return container, fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// setupStack starts Keycloak and the gateway and returns the gateway base URL.
func setupStack(t *testing.T) (string, func()) {
	t.Helper()
	ctx := context.Background()

	keycloak, keycloakURL := setupKeycloakContainer(t)
	gateway, baseURL := setupGatewayContainer(t, keycloakURL)

	cleanup := func() {
		if err := gateway.Terminate(ctx); err != nil {
			t.Logf("failed to terminate gateway container: %v", err)
		}
		if err := keycloak.Terminate(ctx); err != nil {
			t.Logf("failed to terminate keycloak container: %v", err)
		}
	}

	return baseURL, cleanup
}

// loginAdmin authenticates the pre-provisioned realm admin and returns a session.
func loginAdmin(t *testing.T, client *gatewaysdk.SDKClient) *gatewaysdk.Session {
	t.Helper()

	session, err := client.AuthenticateWithPassword(t.Context(), adminUsername, adminPassword)
	require.NoError(t, err, "Admin login should succeed")
	require.NotNil(t, session, "Session should not be nil")

	return session
}

// assertTokenResponse verifies a token response has all required fields.
func assertTokenResponse(t *testing.T, resp *gatewaysdk.TokenResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken, "Access token should not be empty")
	require.Equal(t, "Bearer", resp.TokenType, "Token type should be Bearer")
	require.NotNil(t, resp.ExpiresIn, "Expiry should be set")
	require.Positive(t, *resp.ExpiresIn, "Expiry should be positive")
}

// assertUnauthorized checks that an error indicates unauthorized access.
func assertUnauthorized(t *testing.T, err error, context string) {
	t.Helper()
	require.Error(t, err, context)
	errMsg := err.Error()
	hasUnauthorized := strings.Contains(errMsg, "401") ||
		strings.Contains(errMsg, "Authentication failed") ||
		strings.Contains(errMsg, "Invalid user credentials")
	require.True(t, hasUnauthorized, "%s - error should indicate unauthorized access, got: %s", context, errMsg)
}

// assertForbidden checks that an error indicates insufficient authority.
func assertForbidden(t *testing.T, err error, context string) {
	t.Helper()
	require.Error(t, err, context)
	errMsg := err.Error()
	hasForbidden := strings.Contains(errMsg, "403") || strings.Contains(errMsg, "Forbidden")
	require.True(t, hasForbidden, "%s - error should indicate forbidden access, got: %s", context, errMsg)
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *gatewaysdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
