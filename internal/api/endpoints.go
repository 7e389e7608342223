package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pageza/nutriplan/internal/models"
)

func (c *Client) RegisterUser(ctx context.Context, profile models.UserProfile) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	if err := c.do(ctx, http.MethodPost, c.endpoint(nil, "register_user"), profile, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetUserDetails(ctx context.Context, uid string) (*models.UserDetails, error) {
	var resp models.UserDetails
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "user_details", uid), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateUserDetails(ctx context.Context, uid string, patch models.UserDetailsPatch) (*models.UserDetails, error) {
	var resp models.UserDetails
	if err := c.do(ctx, http.MethodPatch, c.endpoint(nil, "user_details", uid), patch, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetMealPlan(ctx context.Context, userName string) (*models.MealPlanResponse, error) {
	var resp models.MealPlanResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "meal_plan", userName), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SwapMeal(ctx context.Context, userName string, index int) (*models.SwapMealResponse, error) {
	var resp models.SwapMealResponse
	endpoint := c.endpoint(nil, "swap_meal", userName, strconv.Itoa(index))
	if err := c.do(ctx, http.MethodPost, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RecommendRecipe(ctx context.Context, req models.RecommendRequest) (*models.RecipeDetails, error) {
	var resp models.RecipeDetails
	if err := c.do(ctx, http.MethodPost, c.endpoint(nil, "recommend_recipe"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) LogMeal(ctx context.Context, req models.LogMealRequest) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	if err := c.do(ctx, http.MethodPost, c.endpoint(nil, "log_meal"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) LogCustomMeal(ctx context.Context, meal models.CustomMeal) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	if err := c.do(ctx, http.MethodPost, c.endpoint(nil, "log_custom_meal"), meal, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetDailyNutrition(ctx context.Context, uid, date string) (*models.DailyNutrition, error) {
	var resp models.DailyNutrition
	endpoint := c.endpoint(url.Values{"date": {date}}, "daily_nutrition", uid)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetWeeklyReport(ctx context.Context, uid, endDate string) (*models.WeeklyReport, error) {
	var resp models.WeeklyReport
	endpoint := c.endpoint(url.Values{"end_date": {endDate}}, "weekly_report", uid)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetNutritionReport(ctx context.Context, uid, startDate, endDate string) (*models.NutritionReport, error) {
	var resp models.NutritionReport
	query := url.Values{"start_date": {startDate}, "end_date": {endDate}}
	if err := c.do(ctx, http.MethodGet, c.endpoint(query, "nutrition_report", uid), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SubmitRecipeFeedback(ctx context.Context, feedback models.FeedbackSubmission) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	if err := c.do(ctx, http.MethodPost, c.endpoint(nil, "recipe_feedback"), feedback, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetRecipeFeedback(ctx context.Context, recipeID string) (*models.RecipeWithFeedback, error) {
	var resp models.RecipeWithFeedback
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "recipe_feedback", recipeID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
