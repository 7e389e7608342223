package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/pageza/nutriplan/internal/api"
	"github.com/pageza/nutriplan/internal/async"
	"github.com/pageza/nutriplan/internal/models"
	"github.com/pageza/nutriplan/internal/preferences"
	"github.com/pageza/nutriplan/internal/state"
)

var (
	ErrIndexOutOfRange = errors.New("meal index out of range")
	ErrNoIngredients   = errors.New("at least one ingredient is required")
)

// MealPlanViewModel loads and edits a user's meal plan and collects recipe
// feedback for it
type MealPlanViewModel struct {
	base

	MealPlan        state.Slot[models.MealPlanResponse]
	GeneratedRecipe state.Slot[models.RecipeDetails]
	RecipeFeedback  state.Slot[models.RecipeWithFeedback]
	// Drafts holds one feedback draft per meal of MealPlan, in plan order
	Drafts state.Slot[[]models.RecipeFeedback]

	PlanOp     state.Op
	SwapOp     state.Op
	RecipeOp   state.Op
	FeedbackOp state.Op
	SubmitOp   state.Op

	client   api.NutritionAPI
	feedback *preferences.Store
	now      func() time.Time

	// draftMu orders draft edits against wholesale rebuilds
	draftMu sync.Mutex
}

// NewMealPlanViewModel creates a MealPlanViewModel. feedback is the store for
// the feedback namespace and may be nil.
func NewMealPlanViewModel(ctx context.Context, client api.NutritionAPI, feedback *preferences.Store, logger *log.Logger) *MealPlanViewModel {
	return &MealPlanViewModel{
		base:     newBase(ctx, logger),
		client:   client,
		feedback: feedback,
		now:      time.Now,
	}
}

// GetMealPlan replaces MealPlan and rebuilds Drafts from it
func (vm *MealPlanViewModel) GetMealPlan(userName string) *async.Task[*models.MealPlanResponse] {
	if userName == "" {
		return reject[*models.MealPlanResponse](&vm.base, &vm.PlanOp, "get meal plan", errors.New("user name is required"))
	}
	return launch(&vm.base, &vm.PlanOp, "get meal plan",
		func(ctx context.Context) (*models.MealPlanResponse, error) {
			return vm.client.GetMealPlan(ctx, userName)
		},
		func(plan *models.MealPlanResponse) {
			vm.draftMu.Lock()
			defer vm.draftMu.Unlock()
			vm.MealPlan.Set(*plan)
			vm.Drafts.Set(buildDrafts(plan))
		})
}

// SwapMeal asks the server to replace the meal at index. The task yields
// whether the swap succeeded. MealPlan is not updated; callers re-fetch, for
// example with SwapMealAndRefresh.
//
// A negative index is always rejected locally. An index past the end is
// rejected locally only when the loaded plan belongs to userName; otherwise
// the server decides.
func (vm *MealPlanViewModel) SwapMeal(userName string, index int) *async.Task[bool] {
	if err := vm.checkSwapIndex(userName, index); err != nil {
		return reject[bool](&vm.base, &vm.SwapOp, "swap meal", err)
	}
	swap := launch(&vm.base, &vm.SwapOp, "swap meal",
		func(ctx context.Context) (*models.SwapMealResponse, error) {
			return vm.client.SwapMeal(ctx, userName, index)
		},
		func(resp *models.SwapMealResponse) {
			if resp.NewMeal != nil {
				vm.logger.Printf("Swapped meal %d for %s: %s", index, userName, resp.NewMeal.Name)
			}
			msg := resp.Message
			if msg == "" {
				msg = "Meal swapped successfully"
			}
			vm.Message.Set(msg)
		})
	return async.Then(vm.ctx, swap, func(ctx context.Context, _ *models.SwapMealResponse) (bool, error) {
		return true, nil
	})
}

// SwapMealAndRefresh swaps the meal at index and then reloads the plan
func (vm *MealPlanViewModel) SwapMealAndRefresh(userName string, index int) *async.Task[*models.MealPlanResponse] {
	return async.Then(vm.ctx, vm.SwapMeal(userName, index), func(ctx context.Context, _ bool) (*models.MealPlanResponse, error) {
		return vm.GetMealPlan(userName).Wait(ctx)
	})
}

func (vm *MealPlanViewModel) checkSwapIndex(userName string, index int) error {
	if userName == "" {
		return errors.New("user name is required")
	}
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	plan, ok := vm.MealPlan.Get()
	if ok && plan.UserName == userName && index >= plan.Len() {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, plan.Len())
	}
	return nil
}

// GenerateRecipeByIngredients asks for a recipe using ingredients and
// replaces GeneratedRecipe
func (vm *MealPlanViewModel) GenerateRecipeByIngredients(uid string, ingredients []string) *async.Task[*models.RecipeDetails] {
	cleaned := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing = strings.TrimSpace(ing); ing != "" {
			cleaned = append(cleaned, ing)
		}
	}
	if len(cleaned) == 0 {
		return reject[*models.RecipeDetails](&vm.base, &vm.RecipeOp, "generate recipe", ErrNoIngredients)
	}

	req := models.RecommendRequest{UID: uid, Ingredients: cleaned}
	if err := models.Validate(req); err != nil {
		return reject[*models.RecipeDetails](&vm.base, &vm.RecipeOp, "generate recipe", err)
	}
	return launch(&vm.base, &vm.RecipeOp, "generate recipe",
		func(ctx context.Context) (*models.RecipeDetails, error) {
			return vm.client.RecommendRecipe(ctx, req)
		},
		func(r *models.RecipeDetails) {
			vm.GeneratedRecipe.Set(*r)
		})
}

// FetchRecipeFeedback replaces RecipeFeedback with the ratings for recipeID
func (vm *MealPlanViewModel) FetchRecipeFeedback(recipeID string) *async.Task[*models.RecipeWithFeedback] {
	if recipeID == "" {
		return reject[*models.RecipeWithFeedback](&vm.base, &vm.FeedbackOp, "fetch recipe feedback", errors.New("recipe id is required"))
	}
	return launch(&vm.base, &vm.FeedbackOp, "fetch recipe feedback",
		func(ctx context.Context) (*models.RecipeWithFeedback, error) {
			return vm.client.GetRecipeFeedback(ctx, recipeID)
		},
		func(r *models.RecipeWithFeedback) {
			vm.RecipeFeedback.Set(*r)
		})
}
