// Package identity signs users in against an external identity provider and
// keeps the resulting session in memory.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrGoogleSignInDisabled = errors.New("google sign-in is disabled")
	ErrMissingCredentials   = errors.New("email and password must not be empty")
)

// User is the signed-in account
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Session is the provider's answer to a successful sign-in
type Session struct {
	User         User
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// Claims are the fields read from an ID token
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Provider is an email/password identity provider
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignInWithGoogle(ctx context.Context, googleIDToken string) (*Session, error)
	SignOut(ctx context.Context) error
	// CurrentUser returns nil when there is no unexpired session
	CurrentUser() *User
	// IDToken returns the token of the current session, or ""
	IDToken() string
}

var _ Provider = (*RESTProvider)(nil)
