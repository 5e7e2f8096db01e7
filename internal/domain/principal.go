// Package domain holds types shared across the domain services.
package domain

// Principal is the authenticated identity attached to a request by the auth
// middleware. The image service scopes every query to Principal.ID and
// namespaces object keys by Principal.Username.
type Principal struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}
