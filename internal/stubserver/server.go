// Package stubserver is an in-memory implementation of the nutrition API and
// its identity provider, used for local development and end-to-end tests.
package stubserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/nutriplan/config"
	"github.com/pageza/nutriplan/internal/database"
)

// NewRouter registers the identity routes under /identity and the API routes
// at the root. limiter may be nil.
func NewRouter(store *Store, idp *Identity, limiter *RateLimiter) *gin.Engine {
	router := gin.Default()

	router.Use(RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/identity/v1/:action", idp.Handle)

	h := NewHandlers(store)
	protected := router.Group("/")
	protected.Use(AuthMiddleware(idp))
	{
		protected.POST("/register_user", h.RegisterUser)
		protected.GET("/user_details/:uid", h.GetUserDetails)
		protected.PATCH("/user_details/:uid", h.UpdateUserDetails)
		protected.GET("/meal_plan/:user_name", h.GetMealPlan)
		protected.POST("/swap_meal/:user_name/:index", h.SwapMeal)
		if limiter != nil {
			protected.POST("/recommend_recipe", limiter.Middleware(), h.RecommendRecipe)
		} else {
			protected.POST("/recommend_recipe", h.RecommendRecipe)
		}
		protected.POST("/log_meal", h.LogMeal)
		protected.POST("/log_custom_meal", h.LogCustomMeal)
		protected.GET("/daily_nutrition/:uid", h.GetDailyNutrition)
		protected.GET("/weekly_report/:uid", h.GetWeeklyReport)
		protected.GET("/nutrition_report/:uid", h.GetNutritionReport)
		protected.POST("/recipe_feedback", h.SubmitRecipeFeedback)
		protected.GET("/recipe_feedback/:recipe_id", h.GetRecipeFeedback)
	}

	return router
}

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	redis  *redis.Client
	logger *log.Logger
}

// New creates a server from cfg. Without a configured secret tokens are signed
// with a random per-process key.
func New(cfg *config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	secret := cfg.StubJWTSecret
	if secret == "" {
		secret = uuid.NewString()
		logger.Println("STUB_JWT_SECRET not set, using a random signing key")
	}

	var (
		limiter     *RateLimiter
		redisClient *redis.Client
	)
	if cfg.StubRecommendLimit > 0 {
		client, err := database.NewRedisClient(cfg)
		if err != nil {
			logger.Printf("Rate limiting disabled: %v", err)
		} else {
			redisClient = client
			limiter = NewRecommendRateLimiter(client, cfg.StubRecommendLimit)
		}
	}

	router := NewRouter(NewStore(), NewIdentity(secret, cfg.IdentityAPIKey, logger), limiter)
	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + cfg.StubPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		redis:  redisClient,
		logger: logger,
	}
}

// Handler returns the router for use with httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called
func (s *Server) Start() error {
	s.logger.Printf("Stub API listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := s.http.Shutdown(ctx)
	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil {
			s.logger.Printf("Failed to close Redis client: %v", cerr)
		}
	}
	return err
}
