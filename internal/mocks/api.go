package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/nutriplan/internal/api"
	"github.com/pageza/nutriplan/internal/models"
)

// MockNutritionAPI is a mock implementation of api.NutritionAPI
type MockNutritionAPI struct {
	mock.Mock
}

var _ api.NutritionAPI = (*MockNutritionAPI)(nil)

func (m *MockNutritionAPI) RegisterUser(ctx context.Context, profile models.UserProfile) (*models.MessageResponse, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessageResponse), args.Error(1)
}

func (m *MockNutritionAPI) GetUserDetails(ctx context.Context, uid string) (*models.UserDetails, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserDetails), args.Error(1)
}

func (m *MockNutritionAPI) UpdateUserDetails(ctx context.Context, uid string, patch models.UserDetailsPatch) (*models.UserDetails, error) {
	args := m.Called(ctx, uid, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserDetails), args.Error(1)
}

func (m *MockNutritionAPI) GetMealPlan(ctx context.Context, userName string) (*models.MealPlanResponse, error) {
	args := m.Called(ctx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MealPlanResponse), args.Error(1)
}

func (m *MockNutritionAPI) SwapMeal(ctx context.Context, userName string, index int) (*models.SwapMealResponse, error) {
	args := m.Called(ctx, userName, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SwapMealResponse), args.Error(1)
}

func (m *MockNutritionAPI) RecommendRecipe(ctx context.Context, req models.RecommendRequest) (*models.RecipeDetails, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecipeDetails), args.Error(1)
}

func (m *MockNutritionAPI) LogMeal(ctx context.Context, req models.LogMealRequest) (*models.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessageResponse), args.Error(1)
}

func (m *MockNutritionAPI) LogCustomMeal(ctx context.Context, meal models.CustomMeal) (*models.MessageResponse, error) {
	args := m.Called(ctx, meal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessageResponse), args.Error(1)
}

func (m *MockNutritionAPI) GetDailyNutrition(ctx context.Context, uid, date string) (*models.DailyNutrition, error) {
	args := m.Called(ctx, uid, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyNutrition), args.Error(1)
}

func (m *MockNutritionAPI) GetWeeklyReport(ctx context.Context, uid, endDate string) (*models.WeeklyReport, error) {
	args := m.Called(ctx, uid, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeeklyReport), args.Error(1)
}

func (m *MockNutritionAPI) GetNutritionReport(ctx context.Context, uid, startDate, endDate string) (*models.NutritionReport, error) {
	args := m.Called(ctx, uid, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NutritionReport), args.Error(1)
}

func (m *MockNutritionAPI) SubmitRecipeFeedback(ctx context.Context, feedback models.FeedbackSubmission) (*models.MessageResponse, error) {
	args := m.Called(ctx, feedback)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessageResponse), args.Error(1)
}

func (m *MockNutritionAPI) GetRecipeFeedback(ctx context.Context, recipeID string) (*models.RecipeWithFeedback, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecipeWithFeedback), args.Error(1)
}
