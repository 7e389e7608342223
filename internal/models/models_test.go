package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() UserProfile {
	return UserProfile{
		Name:          "Alice",
		Age:           30,
		Gender:        "female",
		Weight:        62.5,
		Height:        168,
		ActivityLevel: "moderate",
		Goal:          "maintain",
	}
}

func TestValidate_UserProfile(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *UserProfile)
		wantErr string
	}{
		{name: "valid", mutate: func(p *UserProfile) {}},
		{name: "missing name", mutate: func(p *UserProfile) { p.Name = "" }, wantErr: "name is required"},
		{name: "age too high", mutate: func(p *UserProfile) { p.Age = 121 }, wantErr: "age must be at most 120"},
		{name: "bad gender", mutate: func(p *UserProfile) { p.Gender = "x" }, wantErr: "gender must be one of: male, female, other"},
		{name: "negative weight", mutate: func(p *UserProfile) { p.Weight = -1 }, wantErr: "weight must be greater than 0"},
		{name: "bad activity", mutate: func(p *UserProfile) { p.ActivityLevel = "couch" }, wantErr: "activity_level must be one of"},
		{name: "bad goal", mutate: func(p *UserProfile) { p.Goal = "bulk" }, wantErr: "goal must be one of: lose, maintain, gain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(&p)
			err := Validate(p)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_CollectsAllFields(t *testing.T) {
	err := Validate(UserProfile{})
	require.Error(t, err)
	for _, field := range []string{"name", "age", "gender", "weight", "height", "activity_level", "goal"} {
		assert.Contains(t, err.Error(), field+" is required")
	}
}

func TestValidate_RecommendRequest(t *testing.T) {
	assert.NoError(t, Validate(RecommendRequest{UID: "u1", Ingredients: []string{"egg"}}))

	err := Validate(RecommendRequest{UID: "u1", Ingredients: []string{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingredients must have at least 1 entries")
}

func TestValidate_CustomMealDate(t *testing.T) {
	meal := CustomMeal{UID: "u1", Date: "01/02/2024", Name: "Toast", Calories: 120}
	err := Validate(meal)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date must be a date in YYYY-MM-DD format")

	meal.Date = "2024-01-02"
	assert.NoError(t, Validate(meal))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", FormatDate(d))

	_, err = ParseDate("2024-13-01")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestValidateRange(t *testing.T) {
	assert.NoError(t, ValidateRange("2024-01-01", "2024-01-07"))
	assert.NoError(t, ValidateRange("2024-01-01", "2024-01-01"))
	assert.Error(t, ValidateRange("2024-01-08", "2024-01-07"))
	assert.Error(t, ValidateRange("bad", "2024-01-07"))
}

func TestRecipeFeedback_Rated(t *testing.T) {
	assert.False(t, RecipeFeedback{Rating: 0, Comment: "tasty"}.Rated())
	assert.True(t, RecipeFeedback{Rating: 1}.Rated())
	assert.True(t, RecipeFeedback{Rating: 5}.Rated())
	assert.False(t, RecipeFeedback{Rating: 6}.Rated())
}

func TestMealPlanResponse_WireNames(t *testing.T) {
	payload := `{"user_name":"alice","meal_plan":[{"meal_id":"m1","meal_type":"breakfast","name":"Oats","calories":350}]}`

	var plan MealPlanResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &plan))
	assert.Equal(t, "alice", plan.UserName)
	require.Equal(t, 1, plan.Len())
	assert.Equal(t, "m1", plan.MealPlan[0].MealID)
	assert.Equal(t, "breakfast", plan.MealPlan[0].MealType)

	var nilPlan *MealPlanResponse
	assert.Equal(t, 0, nilPlan.Len())
}

func TestUserDetailsPatch_IsEmpty(t *testing.T) {
	assert.True(t, UserDetailsPatch{}.IsEmpty())
	goal := "gain"
	assert.False(t, UserDetailsPatch{Goal: &goal}.IsEmpty())
}
