// Package api provides the HTTP REST API for Lights Core.
//
// It exposes authentication, user management, light control, and audit
// trail endpoints. The server follows the standard lifecycle pattern:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// All methods are safe for concurrent use from multiple goroutines.
package api
