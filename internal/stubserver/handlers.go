package stubserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutriplan/internal/models"
)

// Handlers serves the nutrition API over a Store
type Handlers struct {
	store *Store
}

// NewHandlers creates handlers backed by store
func NewHandlers(store *Store) *Handlers {
	return &Handlers{store: store}
}

// bind decodes and validates a JSON body, writing a 400 on failure
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := models.Validate(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// ownsUID forbids reading or writing another account's data
func ownsUID(c *gin.Context, uid string) bool {
	if c.GetString(uidKey) != uid {
		c.JSON(http.StatusForbidden, gin.H{"error": "access to another user's data is not allowed"})
		return false
	}
	return true
}

func storeFailure(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrMealNotFound), errors.Is(err, ErrRecipeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func (h *Handlers) RegisterUser(c *gin.Context) {
	var profile models.UserProfile
	if !bind(c, &profile) {
		return
	}
	uid := c.GetString(uidKey)
	if profile.UID != "" && profile.UID != uid {
		c.JSON(http.StatusForbidden, gin.H{"error": "uid does not match token"})
		return
	}
	if _, err := h.store.Register(uid, profile); err != nil {
		storeFailure(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.MessageResponse{Message: "User registered successfully"})
}

func (h *Handlers) GetUserDetails(c *gin.Context) {
	uid := c.Param("uid")
	if !ownsUID(c, uid) {
		return
	}
	details, err := h.store.Details(uid)
	if err != nil {
		storeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *Handlers) UpdateUserDetails(c *gin.Context) {
	uid := c.Param("uid")
	if !ownsUID(c, uid) {
		return
	}
	var patch models.UserDetailsPatch
	if !bind(c, &patch) {
		return
	}
	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}
	details, err := h.store.Patch(uid, patch)
	if err != nil {
		storeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *Handlers) GetMealPlan(c *gin.Context) {
	name := c.Param("user_name")
	plan, err := h.store.MealPlan(name)
	if err != nil {
		storeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MealPlanResponse{UserName: name, MealPlan: plan})
}

func (h *Handlers) SwapMeal(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal index"})
		return
	}
	meal, err := h.store.Swap(c.Param("user_name"), index)
	if errors.Is(err, ErrInvalidIndex) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal index"})
		return
	}
	if err != nil {
		storeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SwapMealResponse{Message: "Meal swapped successfully", NewMeal: &meal})
}

func (h *Handlers) RecommendRecipe(c *gin.Context) {
	var req models.RecommendRequest
	if !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.store.Recommend(req.Ingredients))
}

func (h *Handlers) LogMeal(c *gin.Context) {
	var req models.LogMealRequest
	if !bind(c, &req) || !ownsUID(c, req.UID) {
		return
	}
	if err := h.store.LogMeal(req.UID, req.MealID, req.Date); err != nil {
		storeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Meal logged successfully"})
}

func (h *Handlers) LogCustomMeal(c *gin.Context) {
	var meal models.CustomMeal
	if !bind(c, &meal) || !ownsUID(c, meal.UID) {
		return
	}
	h.store.LogCustomMeal(meal)
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Custom meal logged successfully"})
}

func (h *Handlers) GetDailyNutrition(c *gin.Context) {
	uid := c.Param("uid")
	if !ownsUID(c, uid) {
		return
	}
	date := c.Query("date")
	if _, err := models.ParseDate(date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.store.Daily(uid, date))
}

func (h *Handlers) GetWeeklyReport(c *gin.Context) {
	uid := c.Param("uid")
	if !ownsUID(c, uid) {
		return
	}
	report, err := h.store.Weekly(uid, c.Query("end_date"))
	if err != nil {
		storeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handlers) GetNutritionReport(c *gin.Context) {
	uid := c.Param("uid")
	if !ownsUID(c, uid) {
		return
	}
	report, err := h.store.Range(uid, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		storeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handlers) SubmitRecipeFeedback(c *gin.Context) {
	var req models.FeedbackSubmission
	if !bind(c, &req) || !ownsUID(c, req.UID) {
		return
	}
	if err := h.store.AddFeedback(req); err != nil {
		storeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Feedback submitted successfully"})
}

func (h *Handlers) GetRecipeFeedback(c *gin.Context) {
	recipe, err := h.store.Feedback(c.Param("recipe_id"))
	if err != nil {
		storeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}
