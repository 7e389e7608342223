package api

import (
	"context"

	"github.com/pageza/nutriplan/internal/models"
)

// NutritionAPI is the remote nutrition service as seen by the client
type NutritionAPI interface {
	RegisterUser(ctx context.Context, profile models.UserProfile) (*models.MessageResponse, error)
	GetUserDetails(ctx context.Context, uid string) (*models.UserDetails, error)
	UpdateUserDetails(ctx context.Context, uid string, patch models.UserDetailsPatch) (*models.UserDetails, error)

	GetMealPlan(ctx context.Context, userName string) (*models.MealPlanResponse, error)
	SwapMeal(ctx context.Context, userName string, index int) (*models.SwapMealResponse, error)
	RecommendRecipe(ctx context.Context, req models.RecommendRequest) (*models.RecipeDetails, error)

	LogMeal(ctx context.Context, req models.LogMealRequest) (*models.MessageResponse, error)
	LogCustomMeal(ctx context.Context, meal models.CustomMeal) (*models.MessageResponse, error)
	GetDailyNutrition(ctx context.Context, uid, date string) (*models.DailyNutrition, error)
	GetWeeklyReport(ctx context.Context, uid, endDate string) (*models.WeeklyReport, error)
	GetNutritionReport(ctx context.Context, uid, startDate, endDate string) (*models.NutritionReport, error)

	SubmitRecipeFeedback(ctx context.Context, feedback models.FeedbackSubmission) (*models.MessageResponse, error)
	GetRecipeFeedback(ctx context.Context, recipeID string) (*models.RecipeWithFeedback, error)
}

// TokenSetter accepts the bearer token attached to outgoing requests
type TokenSetter interface {
	SetToken(token string)
}

var (
	_ NutritionAPI = (*Client)(nil)
	_ TokenSetter  = (*Client)(nil)
)
