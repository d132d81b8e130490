package gateway_test

import (
	"testing"

	"github.com/aussiebroadwan/idgate/pkg/gatewaysdk"
	"github.com/stretchr/testify/require"
)

// TestUserProvisioning covers the full dual-system lifecycle: creating a user
// provisions it in the identity provider and the local registry, and the new
// user can immediately authenticate through the gateway.
func TestUserProvisioning(t *testing.T) {
	baseURL, cleanup := setupStack(t)
	defer cleanup()

	client := gatewaysdk.NewSDKClient(baseURL)
	session := loginAdmin(t, client)

	created, err := session.CreateUser(t.Context(), gatewaysdk.CreateUserRequest{
		Username:  "jane",
		Email:     "jane@example.com",
		Password:  "Jane123!",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err, "Create user should succeed")
	require.NotEmpty(t, created.ID)
	require.NotEmpty(t, created.ExternalID, "Provider id should be recorded")
	require.Equal(t, "jane", created.Username)
	require.True(t, created.Enabled)

	t.Run("new user can log in", func(t *testing.T) {
		tokens, err := client.Login(t.Context(), "jane", "Jane123!")
		require.NoError(t, err)
		assertTokenResponse(t, tokens)
	})

	t.Run("new user appears in the registry", func(t *testing.T) {
		list, err := session.ListUsers(t.Context())
		require.NoError(t, err)
		require.Equal(t, 1, list.Count)
		require.Equal(t, created.ID, list.Users[0].ID)

		got, err := session.GetUser(t.Context(), created.ID)
		require.NoError(t, err)
		require.Equal(t, created.ExternalID, got.ExternalID)
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		_, err := session.CreateUser(t.Context(), gatewaysdk.CreateUserRequest{
			Username: "jane",
			Email:    "jane2@example.com",
			Password: "Jane123!",
		})
		require.Error(t, err)

		var apiErr *gatewaysdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.True(t, apiErr.IsConflict(), "Duplicate username should return 409, got %d", apiErr.StatusCode)
	})

	t.Run("update and delete", func(t *testing.T) {
		email := "jane.doe@example.com"
		updated, err := session.UpdateUser(t.Context(), created.ID, gatewaysdk.UpdateUserRequest{
			Email: &email,
		})
		require.NoError(t, err)
		require.Equal(t, email, updated.Email)
		require.Equal(t, created.Username, updated.Username, "Username is immutable")

		require.NoError(t, session.DeleteUser(t.Context(), created.ID))

		_, err = session.GetUser(t.Context(), created.ID)
		var apiErr *gatewaysdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.True(t, apiErr.IsNotFound())
	})
}

// TestUserEndpointsRequireAdmin verifies that user management is gated on the
// admin authority and a valid token.
func TestUserEndpointsRequireAdmin(t *testing.T) {
	baseURL, cleanup := setupStack(t)
	defer cleanup()

	client := gatewaysdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	_, err := admin.CreateUser(t.Context(), gatewaysdk.CreateUserRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "Bob123!",
	})
	require.NoError(t, err)

	t.Run("regular user is forbidden", func(t *testing.T) {
		bob, err := client.AuthenticateWithPassword(t.Context(), "bob", "Bob123!")
		require.NoError(t, err)

		_, err = bob.ListUsers(t.Context())
		assertForbidden(t, err, "List users as non-admin")

		_, err = bob.CreateUser(t.Context(), gatewaysdk.CreateUserRequest{
			Username: "eve",
			Email:    "eve@example.com",
			Password: "Eve123!",
		})
		assertForbidden(t, err, "Create user as non-admin")
	})

	t.Run("missing token is unauthorized", func(t *testing.T) {
		anon := client.NewSessionFromToken("")
		_, err := anon.ListUsers(t.Context())
		assertUnauthorized(t, err, "List users without token")
	})
}
