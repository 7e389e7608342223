package viewmodel

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/pageza/nutriplan/internal/async"
	"github.com/pageza/nutriplan/internal/identity"
	"github.com/pageza/nutriplan/internal/preferences"
	"github.com/pageza/nutriplan/internal/service"
	"github.com/pageza/nutriplan/internal/state"
)

// AuthState is the observable state of sign-in and sign-up
type AuthState struct {
	Phase    state.Phase
	IsSignup bool
	Message  string
}

// AuthViewModel drives login, signup and logout
type AuthViewModel struct {
	base

	State state.Slot[AuthState]

	op         state.Op
	repo       service.IAuthRepository

	// sessionMu orders session writes against Logout and reset. resetGen is
	// the generation issued by the last reset.
	sessionMu sync.Mutex
	resetGen  uint64

	session    *preferences.Store
	onboarding *preferences.Store
}

// NewAuthViewModel creates an AuthViewModel. session must be scoped to the
// session namespace; onboarding may be nil.
func NewAuthViewModel(ctx context.Context, repo service.IAuthRepository, session, onboarding *preferences.Store, logger *log.Logger) *AuthViewModel {
	vm := &AuthViewModel{
		base:       newBase(ctx, logger),
		repo:       repo,
		session:    session,
		onboarding: onboarding,
	}
	vm.State.Set(AuthState{Phase: state.Idle})
	return vm
}

// Login signs in and persists the user id on success
func (vm *AuthViewModel) Login(email, password string) *async.Task[service.AuthResult] {
	return vm.authenticate(false, func(ctx context.Context) *async.Task[service.AuthResult] {
		return vm.repo.Login(ctx, email, password)
	})
}

// Signup creates an account and persists the user id on success
func (vm *AuthViewModel) Signup(email, password string) *async.Task[service.AuthResult] {
	return vm.authenticate(true, func(ctx context.Context) *async.Task[service.AuthResult] {
		return vm.repo.Signup(ctx, email, password)
	})
}

// LoginWithGoogle signs in with a Google ID token
func (vm *AuthViewModel) LoginWithGoogle(googleIDToken string) *async.Task[service.AuthResult] {
	return vm.authenticate(false, func(ctx context.Context) *async.Task[service.AuthResult] {
		return vm.repo.LoginWithGoogle(ctx, googleIDToken)
	})
}

func (vm *AuthViewModel) authenticate(isSignup bool, start func(context.Context) *async.Task[service.AuthResult]) *async.Task[service.AuthResult] {
	gen := vm.op.Start(func() {
		vm.State.Set(AuthState{Phase: state.Loading, IsSignup: isSignup})
	})

	return async.Run(vm.ctx, func(ctx context.Context) (service.AuthResult, error) {
		res, err := start(ctx).Wait(ctx)
		if vm.closed() {
			return res, ctx.Err()
		}
		if err != nil {
			res = service.AuthResult{ErrorMessage: failureText(err)}
		}

		vm.sessionMu.Lock()
		defer vm.sessionMu.Unlock()

		if !vm.op.Current(gen) {
			vm.dropStale(gen, res)
			return service.AuthResult{ErrorMessage: cancelledSignIn}, nil
		}

		if res.Success && res.User != nil && vm.session != nil {
			if err := vm.session.Save(ctx, preferences.KeyUserUID, res.User.UID); err != nil {
				vm.logger.Printf("Failed to persist session for %s: %v", res.User.UID, err)
				res = service.AuthResult{ErrorMessage: failureText(fmt.Errorf("failed to save session: %w", err))}
			}
		}

		if res.Success {
			vm.op.Succeed(gen, func() {
				vm.State.Set(AuthState{Phase: state.Success, IsSignup: isSignup})
			})
			return res, nil
		}

		msg := res.ErrorMessage
		vm.op.Fail(gen, msg, func() {
			vm.State.Set(AuthState{Phase: state.Failed, IsSignup: isSignup, Message: msg})
		})
		return res, nil
	})
}

const cancelledSignIn = "Sign-in was cancelled"

// dropStale undoes the provider sign-in of a superseded attempt when nothing
// started after the reset that superseded it. Caller holds sessionMu.
func (vm *AuthViewModel) dropStale(gen uint64, res service.AuthResult) {
	if !res.Success {
		return
	}
	if vm.resetGen > gen && vm.op.Current(vm.resetGen) {
		vm.logger.Println("Dropping sign-in that completed after reset")
		vm.repo.Logout()
	}
}

// ResetAuthState returns State to Idle and drops any in-flight result. A
// sign-in that completes afterwards is signed out and never persisted.
func (vm *AuthViewModel) ResetAuthState() {
	vm.sessionMu.Lock()
	defer vm.sessionMu.Unlock()
	vm.resetLocked()
}

func (vm *AuthViewModel) resetLocked() {
	vm.resetGen = vm.op.Reset(func() {
		vm.State.Set(AuthState{Phase: state.Idle})
	})
}

// CurrentUser returns the signed-in user or nil
func (vm *AuthViewModel) CurrentUser() *identity.User {
	return vm.repo.GetCurrentUser()
}

// Logout ends the provider session and removes the stored user id
func (vm *AuthViewModel) Logout() error {
	vm.sessionMu.Lock()
	defer vm.sessionMu.Unlock()

	vm.repo.Logout()
	vm.resetLocked()
	if vm.session == nil {
		return nil
	}
	if err := vm.session.Delete(vm.ctx, preferences.KeyUserUID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// ReconcileSession clears a stored user id that has no matching live provider
// session. Provider sessions do not survive a restart while the stored id
// does, so this runs once at startup. It reports whether the stored id is
// still backed by a signed-in user.
func (vm *AuthViewModel) ReconcileSession(ctx context.Context) (bool, error) {
	if vm.session == nil {
		return false, nil
	}
	vm.sessionMu.Lock()
	defer vm.sessionMu.Unlock()

	uid, ok, err := vm.session.Get(ctx, preferences.KeyUserUID)
	if err != nil {
		return false, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return false, nil
	}
	if user := vm.repo.GetCurrentUser(); user != nil && user.UID == uid {
		return true, nil
	}

	vm.logger.Printf("Clearing stored session for %s: no live sign-in", uid)
	if err := vm.session.Delete(ctx, preferences.KeyUserUID); err != nil {
		return false, fmt.Errorf("failed to clear session: %w", err)
	}
	return false, nil
}

// SessionUID observes the stored user id. The id is only written on a
// completed sign-in and removed by Logout or ReconcileSession, so a present
// value always has a live provider session behind it.
func (vm *AuthViewModel) SessionUID(ctx context.Context) (<-chan preferences.Value, error) {
	if vm.session == nil {
		return nil, fmt.Errorf("no session store configured")
	}
	return vm.session.Observe(ctx, preferences.KeyUserUID)
}

// MarkOnboardingSeen records that onboarding was shown
func (vm *AuthViewModel) MarkOnboardingSeen(ctx context.Context) error {
	if vm.onboarding == nil {
		return nil
	}
	return vm.onboarding.Save(ctx, preferences.KeyOnboardingSeen, "true")
}

// OnboardingSeen reports whether onboarding was already shown
func (vm *AuthViewModel) OnboardingSeen(ctx context.Context) (bool, error) {
	if vm.onboarding == nil {
		return false, nil
	}
	v, ok, err := vm.onboarding.Get(ctx, preferences.KeyOnboardingSeen)
	if err != nil {
		return false, err
	}
	return ok && v == "true", nil
}
