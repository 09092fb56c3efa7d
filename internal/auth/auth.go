// Package auth resolves bearer tokens into caller identities.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/linkboard/linkboard/internal/directory"
)

// StoreAuthenticator implements directory.Authenticator by looking tokens up
// in a user store. Token issuance and credential verification live outside
// this service entirely.
type StoreAuthenticator struct {
	users directory.UserStore
}

// New constructs a StoreAuthenticator.
func New(users directory.UserStore) *StoreAuthenticator {
	return &StoreAuthenticator{users: users}
}

// Identify resolves a bearer token to its user. An empty or unknown token
// yields ErrNoIdentity.
func (a *StoreAuthenticator) Identify(ctx context.Context, token string) (directory.User, error) {
	if token == "" {
		return directory.User{}, directory.ErrNoIdentity
	}
	user, err := a.users.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return directory.User{}, directory.ErrNoIdentity
		}
		return directory.User{}, fmt.Errorf("resolve token: %w", err)
	}
	return user, nil
}
