package stubserver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutriplan/internal/api"
	"github.com/pageza/nutriplan/internal/async"
	"github.com/pageza/nutriplan/internal/identity"
	"github.com/pageza/nutriplan/internal/models"
	"github.com/pageza/nutriplan/internal/preferences"
	"github.com/pageza/nutriplan/internal/service"
	"github.com/pageza/nutriplan/internal/state"
	"github.com/pageza/nutriplan/internal/stubserver"
	"github.com/pageza/nutriplan/internal/viewmodel"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type harness struct {
	server   *httptest.Server
	client   *api.Client
	provider *identity.RESTProvider
	auth     *viewmodel.AuthViewModel
	user     *viewmodel.UserViewModel
	plan     *viewmodel.MealPlanViewModel
	stats    *viewmodel.StatsViewModel
	session  *preferences.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	idp := stubserver.NewIdentity("test-secret", "test-key", nil)
	srv := httptest.NewServer(stubserver.NewRouter(stubserver.NewStore(), idp, nil))
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL, 5*time.Second, nil)
	require.NoError(t, err)
	provider := identity.NewRESTProvider(identity.RESTConfig{
		BaseURL:             srv.URL + "/identity",
		APIKey:              "test-key",
		Timeout:             5 * time.Second,
		GoogleSignInEnabled: true,
	}, nil)

	backend := preferences.NewMemoryBackend()
	session := preferences.New(backend, preferences.NamespaceSession, nil)
	feedback := preferences.New(backend, preferences.NamespaceFeedback, nil)
	t.Cleanup(session.Close)
	t.Cleanup(feedback.Close)

	ctx := context.Background()
	h := &harness{
		server:   srv,
		client:   client,
		provider: provider,
		auth:     viewmodel.NewAuthViewModel(ctx, service.NewAuthRepository(provider, client, nil), session, nil, nil),
		user:     viewmodel.NewUserViewModel(ctx, client, nil),
		plan:     viewmodel.NewMealPlanViewModel(ctx, client, feedback, nil),
		stats:    viewmodel.NewStatsViewModel(ctx, client, nil, nil),
		session:  session,
	}
	t.Cleanup(h.auth.Close)
	t.Cleanup(h.user.Close)
	t.Cleanup(h.plan.Close)
	t.Cleanup(h.stats.Close)
	return h
}

func wait[T any](t *testing.T, task *async.Task[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := task.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "task did not complete")
	return v, err
}

func (h *harness) signup(t *testing.T, email string) string {
	t.Helper()
	res, err := wait(t, h.auth.Signup(email, "secret123"))
	require.NoError(t, err)
	require.True(t, res.Success, res.ErrorMessage)
	return res.User.UID
}

func TestEndToEnd_MealPlanAndFeedback(t *testing.T) {
	h := newHarness(t)
	uid := h.signup(t, "alice@example.com")

	stored, ok, err := h.session.Get(context.Background(), preferences.KeyUserUID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uid, stored)

	_, err = wait(t, h.user.RegisterUser(models.UserProfile{
		UID: uid, Name: "alice", Age: 30, Gender: "male", Weight: 80, Height: 180,
		ActivityLevel: "moderate", Goal: "maintain",
	}))
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", h.user.Message.Value())

	name, err := wait(t, h.user.FetchUserDetails(uid))
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
	assert.Equal(t, 2759.0, h.user.UserDetails.Value().TargetCalories)

	plan, err := wait(t, h.plan.GetMealPlan("alice"))
	require.NoError(t, err)
	require.Len(t, plan.MealPlan, 3)
	assert.Len(t, h.plan.Drafts.Value(), 3)

	refreshed, err := wait(t, h.plan.SwapMealAndRefresh("alice", 2))
	require.NoError(t, err)
	assert.Equal(t, "r-stirfry", refreshed.MealPlan[2].MealID)
	assert.Equal(t, "Meal swapped successfully", h.plan.Message.Value())
	assert.Equal(t, "r-stirfry", h.plan.Drafts.Value()[2].RecipeID)

	_, err = wait(t, h.plan.SwapMeal("alice", 3))
	assert.ErrorIs(t, err, viewmodel.ErrIndexOutOfRange)

	require.NoError(t, h.plan.SetRating(0, 5))
	require.NoError(t, h.plan.SetComment(0, "great"))
	require.NoError(t, h.plan.SetRating(2, 3))
	require.NoError(t, h.plan.SetComment(1, "unrated comment"))

	summary, err := wait(t, h.plan.SubmitFeedback(uid))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, summary.Failures)
	assert.Equal(t, state.Success, h.plan.SubmitOp.Status().Phase)

	prompt, err := h.plan.ShouldPromptFeedback(context.Background(), time.Now())
	require.NoError(t, err)
	assert.False(t, prompt)

	recipe, err := wait(t, h.plan.FetchRecipeFeedback("r-stirfry"))
	require.NoError(t, err)
	assert.Equal(t, 1, recipe.FeedbackCount)
	assert.Equal(t, 3.0, recipe.AverageRating)

	generated, err := wait(t, h.plan.GenerateRecipeByIngredients(uid, []string{"tofu", " rice "}))
	require.NoError(t, err)
	assert.Equal(t, "r-stirfry", generated.RecipeID)
}

func TestEndToEnd_StatsAndReports(t *testing.T) {
	h := newHarness(t)
	uid := h.signup(t, "bob@example.com")
	_, err := wait(t, h.user.RegisterUser(models.UserProfile{
		UID: uid, Name: "bob", Age: 30, Gender: "male", Weight: 80, Height: 180,
		ActivityLevel: "moderate", Goal: "maintain",
	}))
	require.NoError(t, err)

	_, err = wait(t, h.stats.LogMeal(uid, "r-oats", "2024-03-02"))
	require.NoError(t, err)
	_, err = wait(t, h.stats.LogCustomMeal(models.CustomMeal{UID: uid, Date: "2024-03-02", Name: "Snack", Calories: 200}))
	require.NoError(t, err)

	day, err := wait(t, h.stats.FetchDailyNutrition(uid, "2024-03-02"))
	require.NoError(t, err)
	assert.Equal(t, 580.0, day.Totals.Calories)
	assert.Len(t, h.stats.DailyNutrition.Value().Meals, 2)

	week, err := wait(t, h.stats.FetchWeeklyReport(uid, "2024-03-03"))
	require.NoError(t, err)
	assert.Equal(t, "2024-02-26", week.StartDate)
	assert.Equal(t, 580.0, week.Total.Calories)

	report, err := wait(t, h.stats.FetchNutritionReport(uid, "2024-03-01", "2024-03-03"))
	require.NoError(t, err)
	assert.Len(t, report.Days, 3)

	_, err = wait(t, h.stats.LogMeal(uid, "unknown", "2024-03-02"))
	require.Error(t, err)
	assert.Equal(t, `Failed: {"error":"meal not found"}`, h.stats.Error.Value())
}

func TestEndToEnd_AuthFailures(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "carol@example.com")

	res, err := wait(t, h.auth.Signup("carol@example.com", "secret123"))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "The email address is already in use by another account.", res.ErrorMessage)

	res, err = wait(t, h.auth.Login("carol@example.com", "wrong-password"))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "The password is invalid.", res.ErrorMessage)
	assert.Equal(t, state.Failed, h.auth.State.Value().Phase)

	res, err = wait(t, h.auth.Signup("dave@example.com", "123"))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "The given password is invalid. Password should be at least 6 characters.", res.ErrorMessage)

	res, err = wait(t, h.auth.LoginWithGoogle("google-token"))
	require.NoError(t, err)
	require.True(t, res.Success, res.ErrorMessage)
	again, err := wait(t, h.auth.LoginWithGoogle("google-token"))
	require.NoError(t, err)
	assert.Equal(t, res.User.UID, again.User.UID)

	require.NoError(t, h.auth.Logout())
	assert.Nil(t, h.auth.CurrentUser())

	_, err = wait(t, h.plan.GetMealPlan("carol"))
	require.Error(t, err)
	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestEndToEnd_ForeignUID(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "erin@example.com")

	_, err := wait(t, h.user.FetchUserDetails("someone-else"))
	require.Error(t, err)
	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestIdentity_RejectsWrongAPIKey(t *testing.T) {
	idp := stubserver.NewIdentity("test-secret", "test-key", nil)
	router := stubserver.NewRouter(stubserver.NewStore(), idp, nil)

	srv := httptest.NewServer(router)
	defer srv.Close()

	provider := identity.NewRESTProvider(identity.RESTConfig{BaseURL: srv.URL + "/identity", APIKey: "bad"}, nil)
	_, err := provider.SignUp(context.Background(), "x@example.com", "secret123")
	require.Error(t, err)
	assert.Contains(t, identity.Message(err), "API key not valid")
}

func TestAuthMiddleware(t *testing.T) {
	idp := stubserver.NewIdentity("test-secret", "", nil)
	router := stubserver.NewRouter(stubserver.NewStore(), idp, nil)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/recipe_feedback/r-oats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	t.Run("valid token", func(t *testing.T) {
		_, token, err := idp.SignUp("frank@example.com", "secret123")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/recipe_feedback/r-oats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(api.RequestIDHeader, "req-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "req-1", w.Header().Get(api.RequestIDHeader))
	})
}

func TestValidateToken_WrongSecret(t *testing.T) {
	idp := stubserver.NewIdentity("test-secret", "", nil)
	_, token, err := idp.SignUp("gina@example.com", "secret123")
	require.NoError(t, err)

	claims, err := idp.ValidateToken(token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.UserID)

	other := stubserver.NewIdentity("other-secret", "", nil)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
