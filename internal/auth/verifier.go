// Package auth verifies Google sign-in tokens and tracks signed-in sessions.
package auth

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

// User is the signed-in identity extracted from a verified ID token.
type User struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// Verifier checks a Google ID token and returns the user it belongs to.
type Verifier interface {
	Verify(ctx context.Context, token string) (User, error)
}

// GoogleVerifier validates ID tokens against the app's OAuth client ID.
type GoogleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) (*GoogleVerifier, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, fmt.Errorf("google client ID is required")
	}
	return &GoogleVerifier{clientID: clientID}, nil
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (User, error) {
	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return User{}, fmt.Errorf("validate ID token: %w", err)
	}

	user := User{ID: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		user.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		user.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		user.Picture = picture
	}

	if user.ID == "" {
		return User{}, fmt.Errorf("ID token has no subject")
	}
	return user, nil
}
