package viewmodel

import (
	"context"
	"errors"
	"log"

	"github.com/pageza/nutriplan/internal/api"
	"github.com/pageza/nutriplan/internal/async"
	"github.com/pageza/nutriplan/internal/models"
	"github.com/pageza/nutriplan/internal/state"
)

var ErrEmptyPatch = errors.New("nothing to update")

// UserViewModel registers users and loads their server-side details
type UserViewModel struct {
	base

	UserDetails state.Slot[models.UserDetails]

	RegisterOp state.Op
	DetailsOp  state.Op
	UpdateOp   state.Op

	client api.NutritionAPI
}

func NewUserViewModel(ctx context.Context, client api.NutritionAPI, logger *log.Logger) *UserViewModel {
	return &UserViewModel{
		base:   newBase(ctx, logger),
		client: client,
	}
}

// RegisterUser validates profile locally and submits it
func (vm *UserViewModel) RegisterUser(profile models.UserProfile) *async.Task[*models.MessageResponse] {
	if err := models.Validate(profile); err != nil {
		return reject[*models.MessageResponse](&vm.base, &vm.RegisterOp, "register user", err)
	}
	return launch(&vm.base, &vm.RegisterOp, "register user",
		func(ctx context.Context) (*models.MessageResponse, error) {
			return vm.client.RegisterUser(ctx, profile)
		},
		func(resp *models.MessageResponse) {
			msg := resp.Message
			if msg == "" {
				msg = "User registered successfully"
			}
			vm.Message.Set(msg)
		})
}

// FetchUserDetails loads details for uid. The task yields the display name,
// or "" when the user has none or the fetch failed.
func (vm *UserViewModel) FetchUserDetails(uid string) *async.Task[string] {
	if uid == "" {
		return reject[string](&vm.base, &vm.DetailsOp, "fetch user details", errors.New("uid is required"))
	}
	details := launch(&vm.base, &vm.DetailsOp, "fetch user details",
		func(ctx context.Context) (*models.UserDetails, error) {
			return vm.client.GetUserDetails(ctx, uid)
		},
		func(d *models.UserDetails) {
			vm.UserDetails.Set(*d)
		})
	return async.Then(vm.ctx, details, func(ctx context.Context, d *models.UserDetails) (string, error) {
		return d.Name, nil
	})
}

// UpdateUserDetails applies patch and replaces UserDetails with the result
func (vm *UserViewModel) UpdateUserDetails(uid string, patch models.UserDetailsPatch) *async.Task[*models.UserDetails] {
	if patch.IsEmpty() {
		return reject[*models.UserDetails](&vm.base, &vm.UpdateOp, "update user details", ErrEmptyPatch)
	}
	if err := models.Validate(patch); err != nil {
		return reject[*models.UserDetails](&vm.base, &vm.UpdateOp, "update user details", err)
	}
	return launch(&vm.base, &vm.UpdateOp, "update user details",
		func(ctx context.Context) (*models.UserDetails, error) {
			return vm.client.UpdateUserDetails(ctx, uid, patch)
		},
		func(d *models.UserDetails) {
			vm.UserDetails.Set(*d)
			vm.Message.Set("Profile updated")
		})
}
