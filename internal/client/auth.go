package client

import (
	"context"
	"errors"

	"streamaccts/internal/model"
)

var ErrUserNotFound = errors.New("auth user not found")

// TokenVerifier resolves a bearer token into the calling identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*model.Identity, error)
}

// ClaimsManager edits the custom claims carried by future tokens of a user.
type ClaimsManager interface {
	SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error
	UserByEmail(ctx context.Context, email string) (*model.Identity, error)
}

// Authenticator is what the identity provider offers the rest of the app.
type Authenticator interface {
	TokenVerifier
	ClaimsManager
}

func isAdminClaim(claims map[string]interface{}) bool {
	v, ok := claims["isAdmin"].(bool)
	return ok && v
}
