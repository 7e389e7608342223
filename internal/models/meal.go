package models

// Meal is one entry of a meal plan
type Meal struct {
	MealID       string   `json:"meal_id"`
	MealType     string   `json:"meal_type"`
	Name         string   `json:"name"`
	Calories     float64  `json:"calories"`
	Protein      float64  `json:"protein"`
	Carbs        float64  `json:"carbs"`
	Fat          float64  `json:"fat"`
	Ingredients  []string `json:"ingredients,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
}

// MealPlanResponse is a user's plan. The position of a meal in MealPlan is its
// index for swapping.
type MealPlanResponse struct {
	UserName string `json:"user_name"`
	MealPlan []Meal `json:"meal_plan"`
}

// Len returns the number of meals in the plan
func (p *MealPlanResponse) Len() int {
	if p == nil {
		return 0
	}
	return len(p.MealPlan)
}

// SwapMealResponse is returned after the server replaced one meal
type SwapMealResponse struct {
	Message string `json:"message"`
	NewMeal *Meal  `json:"new_meal,omitempty"`
}

// LogMealRequest records that a planned meal was eaten
type LogMealRequest struct {
	UID    string `json:"uid" validate:"required"`
	MealID string `json:"meal_id" validate:"required"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
}

// CustomMeal is a meal the user entered by hand
type CustomMeal struct {
	UID      string  `json:"uid" validate:"required"`
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	Name     string  `json:"name" validate:"required,max=200"`
	Calories float64 `json:"calories" validate:"gte=0"`
	Protein  float64 `json:"protein" validate:"gte=0"`
	Carbs    float64 `json:"carbs" validate:"gte=0"`
	Fat      float64 `json:"fat" validate:"gte=0"`
}
