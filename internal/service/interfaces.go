package service

import (
	"context"

	"github.com/pageza/nutriplan/internal/async"
	"github.com/pageza/nutriplan/internal/identity"
)

// IAuthRepository defines the authentication operations used by view-models
type IAuthRepository interface {
	Login(ctx context.Context, email, password string) *async.Task[AuthResult]
	Signup(ctx context.Context, email, password string) *async.Task[AuthResult]
	LoginWithGoogle(ctx context.Context, googleIDToken string) *async.Task[AuthResult]
	GetCurrentUser() *identity.User
	Logout()
}

var _ IAuthRepository = (*AuthRepository)(nil)
