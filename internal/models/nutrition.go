package models

// NutritionTotals are server-computed macro sums
type NutritionTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// LoggedMeal is one meal counted towards a day
type LoggedMeal struct {
	MealID   string `json:"meal_id"`
	Name     string `json:"name"`
	LoggedAt string `json:"logged_at,omitempty"`
	NutritionTotals
}

// DailyNutrition is the server's summary of a single day
type DailyNutrition struct {
	UID         string          `json:"uid"`
	Date        string          `json:"date"`
	Totals      NutritionTotals `json:"totals"`
	Target      NutritionTotals `json:"target"`
	Percentages NutritionTotals `json:"percentages"`
	Meals       []LoggedMeal    `json:"meals"`
}

// WeeklyReport covers the seven days ending at EndDate
type WeeklyReport struct {
	UID       string           `json:"uid"`
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	Days      []DailyNutrition `json:"days"`
	Average   NutritionTotals  `json:"average"`
	Total     NutritionTotals  `json:"total"`
}

// NutritionReport covers an arbitrary inclusive date range
type NutritionReport struct {
	UID              string           `json:"uid"`
	StartDate        string           `json:"start_date"`
	EndDate          string           `json:"end_date"`
	Totals           NutritionTotals  `json:"totals"`
	Averages         NutritionTotals  `json:"averages"`
	AdherencePercent float64          `json:"adherence_percent"`
	Days             []DailyNutrition `json:"days"`
}
