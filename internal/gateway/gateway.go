// Package gateway consumes the LinkCut auth API. The session core depends on
// the Gateway interface only; Client is the HTTP/JSON implementation.
package gateway

import (
	"context"

	"github.com/linkcut/linkcut-client/internal/model"
)

// RegisterInput is the wire shape of a registration request.
type RegisterInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Gateway defines the remote auth operations consumed by the session core.
type Gateway interface {
	// Login authenticates an email/password pair.
	Login(ctx context.Context, email, password string) (model.User, model.TokenPair, error)
	// Register creates an account and returns an authenticated session.
	Register(ctx context.Context, in RegisterInput) (model.User, model.TokenPair, error)
	// Refresh exchanges the refresh token for a new pair; the server may
	// rotate the refresh token.
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	// Logout invalidates the server-side session (best effort on the client).
	Logout(ctx context.Context) error
	// Profile fetches the current user; requires a valid access token.
	Profile(ctx context.Context) (model.User, error)
	// Permissions fetches the capability set for the current session.
	Permissions(ctx context.Context) (model.PermissionSet, error)
	// ChangePassword rotates the account password.
	ChangePassword(ctx context.Context, current, next string) error
	// DeleteAccount permanently removes the account.
	DeleteAccount(ctx context.Context, password, confirmText string) error
}
