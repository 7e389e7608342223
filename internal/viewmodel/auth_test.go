package viewmodel

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutriplan/internal/identity"
	"github.com/pageza/nutriplan/internal/mocks"
	"github.com/pageza/nutriplan/internal/preferences"
	"github.com/pageza/nutriplan/internal/service"
	"github.com/pageza/nutriplan/internal/state"
)

func newAuthVM(t *testing.T) (*AuthViewModel, *mocks.MockIdentityProvider, *preferences.Store) {
	t.Helper()
	provider := &mocks.MockIdentityProvider{}
	session := newStore(t, preferences.NamespaceSession)
	onboarding := newStore(t, preferences.NamespaceOnboarding)
	repo := service.NewAuthRepository(provider, nil, nil)
	vm := NewAuthViewModel(context.Background(), repo, session, onboarding, nil)
	t.Cleanup(vm.Close)
	return vm, provider, session
}

func TestAuthViewModel_LoginSuccessTransitions(t *testing.T) {
	vm, provider, session := newAuthVM(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	provider.On("SignIn", mock.Anything, "a@x.com", "pw").
		Run(func(mock.Arguments) { <-release }).
		Return(&identity.Session{User: identity.User{UID: "uid-a", Email: "a@x.com"}, IDToken: "tok"}, nil)

	states := vm.State.Subscribe(ctx)
	assert.Equal(t, AuthState{Phase: state.Idle}, nextSnapshot(t, states))

	task := vm.Login("a@x.com", "pw")
	assert.Equal(t, AuthState{Phase: state.Loading}, nextSnapshot(t, states))

	close(release)
	result, err := wait(t, task)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, AuthState{Phase: state.Success, IsSignup: false}, nextSnapshot(t, states))

	uid, ok, err := session.Get(ctx, preferences.KeyUserUID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "uid-a", uid)
}

func TestAuthViewModel_WrongPasswordThenReset(t *testing.T) {
	vm, provider, session := newAuthVM(t)
	ctx := context.Background()

	provider.On("SignIn", mock.Anything, "a@x.com", "wrong").
		Return(nil, &identity.Error{Code: "INVALID_PASSWORD", Message: "The password is invalid."})

	result, err := wait(t, vm.Login("a@x.com", "wrong"))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, AuthState{Phase: state.Failed, Message: "The password is invalid."}, vm.State.Value())
	assert.Equal(t, "The password is invalid.", vm.op.Status().Err)

	_, ok, err := session.Get(ctx, preferences.KeyUserUID)
	require.NoError(t, err)
	assert.False(t, ok)

	vm.ResetAuthState()
	assert.Equal(t, AuthState{Phase: state.Idle}, vm.State.Value())
}

func TestAuthViewModel_SignupMarksIsSignup(t *testing.T) {
	vm, provider, _ := newAuthVM(t)

	provider.On("SignUp", mock.Anything, "new@x.com", "secret1").
		Return(&identity.Session{User: identity.User{UID: "uid-n"}}, nil)

	_, err := wait(t, vm.Signup("new@x.com", "secret1"))
	require.NoError(t, err)
	assert.Equal(t, AuthState{Phase: state.Success, IsSignup: true}, vm.State.Value())
}

type tokenRecorder struct {
	mu    sync.Mutex
	token string
}

func (r *tokenRecorder) SetToken(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = token
}

func (r *tokenRecorder) Token() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

func TestAuthViewModel_ResetDropsInFlightResult(t *testing.T) {
	vm, provider, session := newAuthVM(t)

	release := make(chan struct{})
	provider.On("SignIn", mock.Anything, "a@x.com", "pw").
		Run(func(mock.Arguments) { <-release }).
		Return(&identity.Session{User: identity.User{UID: "uid-a"}}, nil)
	provider.On("SignOut", mock.Anything).Return(nil)

	task := vm.Login("a@x.com", "pw")
	vm.ResetAuthState()
	close(release)
	result, err := wait(t, task)
	require.NoError(t, err)
	assert.False(t, result.Success)

	assert.Equal(t, AuthState{Phase: state.Idle}, vm.State.Value())
	_, ok, err := session.Get(context.Background(), preferences.KeyUserUID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthViewModel_LogoutDuringLoginLeavesSignedOut(t *testing.T) {
	provider := &mocks.MockIdentityProvider{}
	tokens := &tokenRecorder{}
	session := newStore(t, preferences.NamespaceSession)
	vm := NewAuthViewModel(context.Background(), service.NewAuthRepository(provider, tokens, nil), session, nil, nil)
	t.Cleanup(vm.Close)

	entered := make(chan struct{})
	release := make(chan struct{})
	provider.On("SignIn", mock.Anything, "a@x.com", "pw").
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&identity.Session{User: identity.User{UID: "uid-a"}, IDToken: "tok"}, nil)
	provider.On("SignOut", mock.Anything).Return(nil)

	task := vm.Login("a@x.com", "pw")
	<-entered
	require.NoError(t, vm.Logout())
	close(release)

	result, err := wait(t, task)
	require.NoError(t, err)
	assert.False(t, result.Success)

	_, ok, err := session.Get(context.Background(), preferences.KeyUserUID)
	require.NoError(t, err)
	assert.False(t, ok, "stale sign-in must not persist the user id")
	assert.Empty(t, tokens.Token())
	assert.Equal(t, AuthState{Phase: state.Idle}, vm.State.Value())
	provider.AssertNumberOfCalls(t, "SignOut", 2)
}

func TestAuthViewModel_StaleLoginKeepsNewerSignIn(t *testing.T) {
	vm, provider, session := newAuthVM(t)
	ctx := context.Background()

	release := make(chan struct{})
	provider.On("SignIn", mock.Anything, "a@x.com", "pw").
		Run(func(mock.Arguments) { <-release }).
		Return(&identity.Session{User: identity.User{UID: "uid-a"}}, nil)
	provider.On("SignIn", mock.Anything, "b@x.com", "pw").
		Return(&identity.Session{User: identity.User{UID: "uid-b"}}, nil)

	stale := vm.Login("a@x.com", "pw")
	vm.ResetAuthState()
	fresh, err := wait(t, vm.Login("b@x.com", "pw"))
	require.NoError(t, err)
	require.True(t, fresh.Success)

	close(release)
	_, err = wait(t, stale)
	require.NoError(t, err)

	uid, ok, err := session.Get(ctx, preferences.KeyUserUID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "uid-b", uid)
	assert.Equal(t, state.Success, vm.State.Value().Phase)
	provider.AssertNotCalled(t, "SignOut", mock.Anything)
}

func TestAuthViewModel_ReconcileSession(t *testing.T) {
	ctx := context.Background()

	t.Run("clears id without live sign-in", func(t *testing.T) {
		vm, provider, session := newAuthVM(t)
		provider.On("CurrentUser").Return(nil)
		require.NoError(t, session.Save(ctx, preferences.KeyUserUID, "uid-a"))

		live, err := vm.ReconcileSession(ctx)
		require.NoError(t, err)
		assert.False(t, live)

		_, ok, err := session.Get(ctx, preferences.KeyUserUID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("keeps id of signed-in user", func(t *testing.T) {
		vm, provider, session := newAuthVM(t)
		provider.On("CurrentUser").Return(&identity.User{UID: "uid-a"})
		require.NoError(t, session.Save(ctx, preferences.KeyUserUID, "uid-a"))

		live, err := vm.ReconcileSession(ctx)
		require.NoError(t, err)
		assert.True(t, live)

		uid, ok, err := session.Get(ctx, preferences.KeyUserUID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "uid-a", uid)
	})

	t.Run("clears id of a different user", func(t *testing.T) {
		vm, provider, session := newAuthVM(t)
		provider.On("CurrentUser").Return(&identity.User{UID: "uid-b"})
		require.NoError(t, session.Save(ctx, preferences.KeyUserUID, "uid-a"))

		live, err := vm.ReconcileSession(ctx)
		require.NoError(t, err)
		assert.False(t, live)

		_, ok, err := session.Get(ctx, preferences.KeyUserUID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestAuthViewModel_LogoutClearsSession(t *testing.T) {
	vm, provider, session := newAuthVM(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider.On("SignIn", mock.Anything, "a@x.com", "pw").
		Return(&identity.Session{User: identity.User{UID: "uid-a"}}, nil)
	provider.On("SignOut", mock.Anything).Return(nil)

	_, err := wait(t, vm.Login("a@x.com", "pw"))
	require.NoError(t, err)

	uids, err := vm.SessionUID(ctx)
	require.NoError(t, err)
	assert.Equal(t, preferences.Value{Value: "uid-a", Present: true}, <-uids)

	require.NoError(t, vm.Logout())
	assert.Equal(t, preferences.Value{}, <-uids)

	_, ok, err := session.Get(ctx, preferences.KeyUserUID)
	require.NoError(t, err)
	assert.False(t, ok)
	provider.AssertCalled(t, "SignOut", mock.Anything)
}

func TestAuthViewModel_CurrentUser(t *testing.T) {
	vm, provider, _ := newAuthVM(t)
	provider.On("CurrentUser").Return(&identity.User{UID: "uid-a"})

	require.NotNil(t, vm.CurrentUser())
	assert.Equal(t, "uid-a", vm.CurrentUser().UID)
}

func TestAuthViewModel_Onboarding(t *testing.T) {
	vm, _, _ := newAuthVM(t)
	ctx := context.Background()

	seen, err := vm.OnboardingSeen(ctx)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, vm.MarkOnboardingSeen(ctx))
	seen, err = vm.OnboardingSeen(ctx)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestAuthViewModel_ClosedDoesNotApply(t *testing.T) {
	vm, provider, session := newAuthVM(t)

	release := make(chan struct{})
	provider.On("SignIn", mock.Anything, "a@x.com", "pw").
		Run(func(mock.Arguments) { <-release }).
		Return(&identity.Session{User: identity.User{UID: "uid-a"}}, nil)

	task := vm.Login("a@x.com", "pw")
	vm.Close()
	close(release)
	<-task.Done()

	assert.Equal(t, state.Loading, vm.State.Value().Phase)
	_, ok, err := session.Get(context.Background(), preferences.KeyUserUID)
	require.NoError(t, err)
	assert.False(t, ok)
}
