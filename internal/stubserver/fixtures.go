package stubserver

import (
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/nutriplan/internal/models"
)

var (
	ErrUserExists     = errors.New("user already exists")
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidIndex   = errors.New("invalid meal index")
	ErrMealNotFound   = errors.New("meal not found")
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrRangeTooLong   = errors.New("date range must not exceed 366 days")
)

const maxReportRangeDays = 366

var mealTypes = []string{"breakfast", "lunch", "dinner"}

// catalog is the fixed set of recipes meal plans are drawn from
var catalog = []models.Meal{
	{MealID: "r-oats", MealType: "breakfast", Name: "Overnight Oats", Calories: 380, Protein: 14, Carbs: 58, Fat: 10,
		Ingredients: []string{"oats", "milk", "banana", "chia seeds"}, Instructions: "Soak oats in milk overnight and top with banana."},
	{MealID: "r-omelette", MealType: "breakfast", Name: "Spinach Omelette", Calories: 320, Protein: 22, Carbs: 4, Fat: 24,
		Ingredients: []string{"egg", "spinach", "cheese"}, Instructions: "Whisk eggs, cook with spinach, fold with cheese."},
	{MealID: "r-yogurt", MealType: "breakfast", Name: "Greek Yogurt Bowl", Calories: 300, Protein: 20, Carbs: 35, Fat: 8,
		Ingredients: []string{"greek yogurt", "berries", "honey", "granola"}, Instructions: "Layer yogurt, berries and granola."},
	{MealID: "r-quinoa", MealType: "lunch", Name: "Quinoa Salad", Calories: 450, Protein: 16, Carbs: 60, Fat: 15,
		Ingredients: []string{"quinoa", "cucumber", "tomato", "feta"}, Instructions: "Toss cooked quinoa with chopped vegetables and feta."},
	{MealID: "r-wrap", MealType: "lunch", Name: "Chicken Wrap", Calories: 520, Protein: 35, Carbs: 45, Fat: 20,
		Ingredients: []string{"chicken", "tortilla", "lettuce", "yogurt sauce"}, Instructions: "Grill chicken and wrap with lettuce and sauce."},
	{MealID: "r-lentil", MealType: "lunch", Name: "Lentil Soup", Calories: 410, Protein: 24, Carbs: 55, Fat: 9,
		Ingredients: []string{"lentils", "carrot", "onion", "cumin"}, Instructions: "Simmer lentils with vegetables and spices."},
	{MealID: "r-salmon", MealType: "dinner", Name: "Baked Salmon", Calories: 560, Protein: 40, Carbs: 30, Fat: 28,
		Ingredients: []string{"salmon", "potato", "broccoli", "lemon"}, Instructions: "Bake salmon with potatoes and broccoli."},
	{MealID: "r-stirfry", MealType: "dinner", Name: "Tofu Stir Fry", Calories: 480, Protein: 26, Carbs: 50, Fat: 18,
		Ingredients: []string{"tofu", "rice", "pepper", "soy sauce"}, Instructions: "Stir fry tofu and peppers, serve over rice."},
	{MealID: "r-chili", MealType: "dinner", Name: "Bean Chili", Calories: 530, Protein: 28, Carbs: 70, Fat: 12,
		Ingredients: []string{"beans", "tomato", "onion", "chili"}, Instructions: "Simmer beans with tomato and spices."},
}

var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

var goalAdjustments = map[string]float64{
	"lose":     -500,
	"maintain": 0,
	"gain":     300,
}

type logEntry struct {
	date string
	meal models.LoggedMeal
}

// Store is the in-memory state behind the stub API
type Store struct {
	mu      sync.Mutex
	users   map[string]*models.UserDetails
	names   map[string]string
	plans   map[string][]models.Meal
	logs    map[string][]logEntry
	ratings map[string][]int
	now     func() time.Time
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		users:   make(map[string]*models.UserDetails),
		names:   make(map[string]string),
		plans:   make(map[string][]models.Meal),
		logs:    make(map[string][]logEntry),
		ratings: make(map[string][]int),
		now:     time.Now,
	}
}

// Register stores a profile under uid and computes its targets
func (s *Store) Register(uid string, p models.UserProfile) (*models.UserDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[uid]; ok {
		return nil, ErrUserExists
	}
	if _, ok := s.names[p.Name]; ok {
		return nil, ErrUserExists
	}

	d := &models.UserDetails{
		UID: uid, Name: p.Name, Age: p.Age, Gender: p.Gender, Weight: p.Weight,
		Height: p.Height, ActivityLevel: p.ActivityLevel, Goal: p.Goal,
	}
	computeTargets(d)
	s.users[uid] = d
	s.names[p.Name] = uid
	return copyDetails(d), nil
}

// Details returns the stored details for uid
func (s *Store) Details(uid string) (*models.UserDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.users[uid]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyDetails(d), nil
}

// Patch applies the set fields of patch and recomputes targets
func (s *Store) Patch(uid string, patch models.UserDetailsPatch) (*models.UserDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.users[uid]
	if !ok {
		return nil, ErrUserNotFound
	}

	if patch.Name != nil && *patch.Name != d.Name {
		if _, taken := s.names[*patch.Name]; taken {
			return nil, ErrUserExists
		}
		delete(s.names, d.Name)
		if plan, ok := s.plans[d.Name]; ok {
			s.plans[*patch.Name] = plan
			delete(s.plans, d.Name)
		}
		d.Name = *patch.Name
		s.names[d.Name] = uid
	}
	if patch.Age != nil {
		d.Age = *patch.Age
	}
	if patch.Gender != nil {
		d.Gender = *patch.Gender
	}
	if patch.Weight != nil {
		d.Weight = *patch.Weight
	}
	if patch.Height != nil {
		d.Height = *patch.Height
	}
	if patch.ActivityLevel != nil {
		d.ActivityLevel = *patch.ActivityLevel
	}
	if patch.Goal != nil {
		d.Goal = *patch.Goal
	}
	computeTargets(d)
	return copyDetails(d), nil
}

// MealPlan returns the plan for a registered user, creating it on first use
func (s *Store) MealPlan(userName string) ([]models.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.names[userName]; !ok {
		return nil, ErrUserNotFound
	}
	plan, ok := s.plans[userName]
	if !ok {
		plan = make([]models.Meal, 0, len(mealTypes))
		for _, mt := range mealTypes {
			plan = append(plan, byType(mt)[0])
		}
		s.plans[userName] = plan
	}
	return append([]models.Meal(nil), plan...), nil
}

// Swap replaces the meal at index with the next catalog recipe of the same type
func (s *Store) Swap(userName string, index int) (models.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, ok := s.plans[userName]
	if !ok {
		if _, registered := s.names[userName]; !registered {
			return models.Meal{}, ErrUserNotFound
		}
		return models.Meal{}, ErrInvalidIndex
	}
	if index < 0 || index >= len(plan) {
		return models.Meal{}, ErrInvalidIndex
	}

	current := plan[index]
	options := byType(current.MealType)
	next := options[0]
	for i, m := range options {
		if m.MealID == current.MealID {
			next = options[(i+1)%len(options)]
			break
		}
	}

	updated := append([]models.Meal(nil), plan...)
	updated[index] = next
	s.plans[userName] = updated
	return next, nil
}

// Recommend picks the catalog recipe sharing the most ingredients
func (s *Store) Recommend(ingredients []string) models.RecipeDetails {
	want := make(map[string]bool, len(ingredients))
	for _, ing := range ingredients {
		want[strings.ToLower(strings.TrimSpace(ing))] = true
	}

	best, bestScore := catalog[0], -1
	for _, m := range catalog {
		score := 0
		for _, ing := range m.Ingredients {
			if want[ing] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = m, score
		}
	}
	return recipeOf(best)
}

// LogMeal records a catalog meal as eaten on date
func (s *Store) LogMeal(uid, mealID, date string) error {
	meal, ok := findMeal(mealID)
	if !ok {
		return ErrMealNotFound
	}
	s.addLog(uid, date, models.LoggedMeal{
		MealID: meal.MealID,
		Name:   meal.Name,
		NutritionTotals: models.NutritionTotals{
			Calories: meal.Calories, Protein: meal.Protein, Carbs: meal.Carbs, Fat: meal.Fat,
		},
	})
	return nil
}

// LogCustomMeal records a hand-entered meal
func (s *Store) LogCustomMeal(m models.CustomMeal) {
	s.addLog(m.UID, m.Date, models.LoggedMeal{
		MealID: "custom-" + uuid.NewString(),
		Name:   m.Name,
		NutritionTotals: models.NutritionTotals{
			Calories: m.Calories, Protein: m.Protein, Carbs: m.Carbs, Fat: m.Fat,
		},
	})
}

func (s *Store) addLog(uid, date string, meal models.LoggedMeal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meal.LoggedAt = s.now().UTC().Format(time.RFC3339)
	s.logs[uid] = append(s.logs[uid], logEntry{date: date, meal: meal})
}

// Daily sums what uid logged on date
func (s *Store) Daily(uid, date string) models.DailyNutrition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dailyLocked(uid, date)
}

func (s *Store) dailyLocked(uid, date string) models.DailyNutrition {
	day := models.DailyNutrition{UID: uid, Date: date, Meals: []models.LoggedMeal{}}
	for _, e := range s.logs[uid] {
		if e.date != date {
			continue
		}
		day.Meals = append(day.Meals, e.meal)
		day.Totals = add(day.Totals, e.meal.NutritionTotals)
	}
	if d, ok := s.users[uid]; ok {
		day.Target = models.NutritionTotals{
			Calories: d.TargetCalories, Protein: d.TargetProtein, Carbs: d.TargetCarbs, Fat: d.TargetFat,
		}
		day.Percentages = percentOf(day.Totals, day.Target)
	}
	return day
}

// Weekly covers the seven days ending at endDate
func (s *Store) Weekly(uid, endDate string) (models.WeeklyReport, error) {
	end, err := models.ParseDate(endDate)
	if err != nil {
		return models.WeeklyReport{}, err
	}
	start := end.AddDate(0, 0, -6)
	days, total := s.days(uid, start, end)
	return models.WeeklyReport{
		UID:       uid,
		StartDate: models.FormatDate(start),
		EndDate:   endDate,
		Days:      days,
		Total:     total,
		Average:   scale(total, 1/float64(len(days))),
	}, nil
}

// Range covers startDate..endDate inclusive
func (s *Store) Range(uid, startDate, endDate string) (models.NutritionReport, error) {
	if err := models.ValidateRange(startDate, endDate); err != nil {
		return models.NutritionReport{}, err
	}
	start, _ := models.ParseDate(startDate)
	end, _ := models.ParseDate(endDate)
	if end.Sub(start) > time.Duration(maxReportRangeDays)*24*time.Hour {
		return models.NutritionReport{}, ErrRangeTooLong
	}

	days, total := s.days(uid, start, end)
	onTarget := 0
	for _, d := range days {
		if d.Target.Calories > 0 && d.Totals.Calories > 0 &&
			math.Abs(d.Totals.Calories-d.Target.Calories) <= 0.1*d.Target.Calories {
			onTarget++
		}
	}
	return models.NutritionReport{
		UID:              uid,
		StartDate:        startDate,
		EndDate:          endDate,
		Totals:           total,
		Averages:         scale(total, 1/float64(len(days))),
		AdherencePercent: math.Round(float64(onTarget)/float64(len(days))*1000) / 10,
		Days:             days,
	}, nil
}

func (s *Store) days(uid string, start, end time.Time) ([]models.DailyNutrition, models.NutritionTotals) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var days []models.DailyNutrition
	var total models.NutritionTotals
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := s.dailyLocked(uid, models.FormatDate(d))
		days = append(days, day)
		total = add(total, day.Totals)
	}
	return days, total
}

// AddFeedback stores one rating for a catalog recipe
func (s *Store) AddFeedback(f models.FeedbackSubmission) error {
	if _, ok := findMeal(f.RecipeID); !ok {
		return ErrRecipeNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings[f.RecipeID] = append(s.ratings[f.RecipeID], f.Rating)
	return nil
}

// Feedback returns a recipe with its rating summary
func (s *Store) Feedback(recipeID string) (models.RecipeWithFeedback, error) {
	meal, ok := findMeal(recipeID)
	if !ok {
		return models.RecipeWithFeedback{}, ErrRecipeNotFound
	}

	s.mu.Lock()
	ratings := append([]int(nil), s.ratings[recipeID]...)
	s.mu.Unlock()

	out := models.RecipeWithFeedback{RecipeDetails: recipeOf(meal), FeedbackCount: len(ratings)}
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		out.AverageRating = math.Round(float64(sum)/float64(len(ratings))*10) / 10
	}
	return out, nil
}

// computeTargets fills BMR, TDEE and macro targets using Mifflin-St Jeor
func computeTargets(d *models.UserDetails) {
	bmr := 10*d.Weight + 6.25*d.Height - 5*float64(d.Age)
	if d.Gender == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}
	mult, ok := activityMultipliers[d.ActivityLevel]
	if !ok {
		mult = activityMultipliers["sedentary"]
	}
	tdee := bmr * mult
	target := math.Max(1200, tdee+goalAdjustments[d.Goal])

	d.BMR = math.Round(bmr)
	d.TDEE = math.Round(tdee)
	d.TargetCalories = math.Round(target)
	d.TargetProtein = math.Round(target * 0.30 / 4)
	d.TargetCarbs = math.Round(target * 0.40 / 4)
	d.TargetFat = math.Round(target * 0.30 / 9)
}

func byType(mealType string) []models.Meal {
	var out []models.Meal
	for _, m := range catalog {
		if m.MealType == mealType {
			out = append(out, m)
		}
	}
	return out
}

func findMeal(id string) (models.Meal, bool) {
	for _, m := range catalog {
		if m.MealID == id {
			return m, true
		}
	}
	return models.Meal{}, false
}

func recipeOf(m models.Meal) models.RecipeDetails {
	return models.RecipeDetails{
		RecipeID:     m.MealID,
		Name:         m.Name,
		Ingredients:  append([]string(nil), m.Ingredients...),
		Instructions: m.Instructions,
		PrepTime:     20,
		Calories:     m.Calories,
		Protein:      m.Protein,
		Carbs:        m.Carbs,
		Fat:          m.Fat,
	}
}

func copyDetails(d *models.UserDetails) *models.UserDetails {
	c := *d
	return &c
}

func add(a, b models.NutritionTotals) models.NutritionTotals {
	return models.NutritionTotals{
		Calories: a.Calories + b.Calories,
		Protein:  a.Protein + b.Protein,
		Carbs:    a.Carbs + b.Carbs,
		Fat:      a.Fat + b.Fat,
	}
}

func scale(t models.NutritionTotals, f float64) models.NutritionTotals {
	return models.NutritionTotals{
		Calories: math.Round(t.Calories * f),
		Protein:  math.Round(t.Protein * f),
		Carbs:    math.Round(t.Carbs * f),
		Fat:      math.Round(t.Fat * f),
	}
}

func percentOf(v, target models.NutritionTotals) models.NutritionTotals {
	pct := func(a, b float64) float64 {
		if b == 0 {
			return 0
		}
		return math.Round(a / b * 100)
	}
	return models.NutritionTotals{
		Calories: pct(v.Calories, target.Calories),
		Protein:  pct(v.Protein, target.Protein),
		Carbs:    pct(v.Carbs, target.Carbs),
		Fat:      pct(v.Fat, target.Fat),
	}
}
