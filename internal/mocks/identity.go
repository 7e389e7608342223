package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/nutriplan/internal/identity"
)

// MockIdentityProvider is a mock implementation of identity.Provider
type MockIdentityProvider struct {
	mock.Mock
}

var _ identity.Provider = (*MockIdentityProvider)(nil)

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, email, password string) (*identity.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func (m *MockIdentityProvider) SignInWithGoogle(ctx context.Context, googleIDToken string) (*identity.Session, error) {
	args := m.Called(ctx, googleIDToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func (m *MockIdentityProvider) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockIdentityProvider) CurrentUser() *identity.User {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*identity.User)
}

func (m *MockIdentityProvider) IDToken() string {
	args := m.Called()
	return args.String(0)
}

// MockTokenSetter records bearer tokens handed to the API client
type MockTokenSetter struct {
	mock.Mock
}

func (m *MockTokenSetter) SetToken(token string) {
	m.Called(token)
}
