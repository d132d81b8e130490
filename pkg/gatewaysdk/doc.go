// Package gatewaysdk provides a Go client for the identity gateway.
//
// The SDKClient covers the unauthenticated surface (login, health), and a
// Session wraps an access token for the admin user management endpoints:
//
//	client := gatewaysdk.NewSDKClient("http://localhost:8080")
//
//	session, err := client.AuthenticateWithPassword(ctx, "admin", "secret")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	user, err := session.CreateUser(ctx, gatewaysdk.CreateUserRequest{
//		Username: "jane",
//		Email:    "jane@example.com",
//		Password: "changeme",
//	})
//
// Error responses are RFC 7807 problems and surface as *APIError, so callers
// can branch on the status: err.(*gatewaysdk.APIError).IsConflict() and so on.
package gatewaysdk
