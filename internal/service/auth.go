package service

import (
	"context"
	"log"

	"github.com/pageza/nutriplan/internal/api"
	"github.com/pageza/nutriplan/internal/async"
	"github.com/pageza/nutriplan/internal/identity"
)

// AuthResult is the outcome of a sign-in attempt. Provider failures are
// reported here rather than as task errors.
type AuthResult struct {
	Success      bool
	ErrorMessage string
	User         *identity.User
}

// AuthRepository wraps an identity provider and keeps the API client's
// bearer token in step with the session
type AuthRepository struct {
	provider identity.Provider
	tokens   api.TokenSetter
	logger   *log.Logger
}

// NewAuthRepository creates an AuthRepository. tokens may be nil.
func NewAuthRepository(provider identity.Provider, tokens api.TokenSetter, logger *log.Logger) *AuthRepository {
	if logger == nil {
		logger = log.Default()
	}
	return &AuthRepository{
		provider: provider,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login signs in with email and password
func (r *AuthRepository) Login(ctx context.Context, email, password string) *async.Task[AuthResult] {
	return async.Run(ctx, func(ctx context.Context) (AuthResult, error) {
		return r.result(r.provider.SignIn(ctx, email, password))
	})
}

// Signup creates an account and signs it in
func (r *AuthRepository) Signup(ctx context.Context, email, password string) *async.Task[AuthResult] {
	return async.Run(ctx, func(ctx context.Context) (AuthResult, error) {
		return r.result(r.provider.SignUp(ctx, email, password))
	})
}

// LoginWithGoogle signs in with a Google ID token when the provider allows it
func (r *AuthRepository) LoginWithGoogle(ctx context.Context, googleIDToken string) *async.Task[AuthResult] {
	return async.Run(ctx, func(ctx context.Context) (AuthResult, error) {
		return r.result(r.provider.SignInWithGoogle(ctx, googleIDToken))
	})
}

// GetCurrentUser returns the signed-in user or nil
func (r *AuthRepository) GetCurrentUser() *identity.User {
	return r.provider.CurrentUser()
}

// Logout ends the provider session. Local preferences are left to the caller.
func (r *AuthRepository) Logout() {
	if err := r.provider.SignOut(context.Background()); err != nil {
		r.logger.Printf("Failed to sign out: %v", err)
	}
	if r.tokens != nil {
		r.tokens.SetToken("")
	}
}

func (r *AuthRepository) result(session *identity.Session, err error) (AuthResult, error) {
	if err != nil {
		r.logger.Printf("Authentication failed: %v", err)
		return AuthResult{Success: false, ErrorMessage: identity.Message(err)}, nil
	}
	if r.tokens != nil {
		r.tokens.SetToken(session.IDToken)
	}
	user := session.User
	return AuthResult{Success: true, User: &user}, nil
}
