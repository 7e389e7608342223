package models

// RecipeDetails describes a single recipe
type RecipeDetails struct {
	RecipeID     string   `json:"recipe_id"`
	Name         string   `json:"name"`
	Cuisine      string   `json:"cuisine,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	PrepTime     int      `json:"prep_time,omitempty"`
	Calories     float64  `json:"calories"`
	Protein      float64  `json:"protein"`
	Carbs        float64  `json:"carbs"`
	Fat          float64  `json:"fat"`
}

// RecipeWithFeedback adds aggregated ratings to a recipe
type RecipeWithFeedback struct {
	RecipeDetails
	AverageRating float64 `json:"average_rating"`
	FeedbackCount int     `json:"feedback_count"`
}

// RecommendRequest asks the server for a recipe built from ingredients
type RecommendRequest struct {
	UID         string   `json:"uid" validate:"required"`
	Ingredients []string `json:"ingredients" validate:"required,min=1,dive,required"`
}

// RecipeFeedback is a local, not yet submitted rating for one meal of the
// loaded plan. Rating 0 means not rated.
type RecipeFeedback struct {
	RecipeID   string `json:"recipe_id"`
	RecipeName string `json:"recipe_name"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

// Rated reports whether the draft carries a rating worth submitting
func (f RecipeFeedback) Rated() bool {
	return f.Rating >= MinRating && f.Rating <= MaxRating
}

// Rating bounds for submitted feedback
const (
	MinRating = 1
	MaxRating = 5
)

// FeedbackSubmission is the wire form of one rating
type FeedbackSubmission struct {
	UID      string `json:"uid" validate:"required"`
	RecipeID string `json:"recipe_id" validate:"required"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Comment  string `json:"comment,omitempty" validate:"max=1000"`
}
