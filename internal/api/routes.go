package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ritujaab/workout-planner/internal/config"
	"github.com/ritujaab/workout-planner/internal/service"
)

// NewRouter builds the engine with middleware in this order: tracing,
// request id, access log, panic recovery, body limit, metrics, CORS.
// Rate limiting is applied per group so signed-in users are keyed by id.
func NewRouter(cfg *config.Config, logger zerolog.Logger, authService service.AuthService, workoutService service.WorkoutService) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	if cfg.OTel.Enabled {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(RequestID(), Logger(logger), Recovery())
	router.Use(limitBody(cfg.Server.MaxBodyBytes))
	router.Use(Metrics())
	router.Use(corsMiddleware(cfg.CORS.AllowedOrigins))

	router.NoRoute(func(c *gin.Context) { abortWithError(c, http.StatusNotFound, "Route not found") })
	router.NoMethod(func(c *gin.Context) { abortWithError(c, http.StatusMethodNotAllowed, "Method not allowed") })

	SetupRoutes(router, cfg.Rate, authService, workoutService)
	return router
}

// SetupRoutes mounts the public and authenticated endpoints.
func SetupRoutes(
	router *gin.Engine,
	rateCfg config.RateConfig,
	authService service.AuthService,
	workoutService service.WorkoutService,
) {
	authHandler := NewAuthHandler(authService)
	workoutHandler := NewWorkoutHandler(workoutService)
	authMiddleware := AuthMiddleware(authService)
	limit := rateLimit(rateCfg)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	userGroup := api.Group("/user", limit)
	{
		userGroup.POST("/signup", authHandler.Signup)
		userGroup.POST("/login", authHandler.Login)
		userGroup.POST("/forgot-password", authHandler.ForgotPassword)
		userGroup.POST("/reset-password/:token", authHandler.ResetPassword)
	}

	workouts := api.Group("/workouts", authMiddleware, limit)
	{
		workouts.GET("", workoutHandler.ListWorkouts)
		workouts.POST("", workoutHandler.CreateWorkout)
		workouts.GET("/week", workoutHandler.GetWeek)
		workouts.POST("/week/export", workoutHandler.ExportWeek)

		workouts.GET("/:id", workoutHandler.GetWorkout)
		workouts.PATCH("/:id", workoutHandler.UpdateWorkout)
		workouts.DELETE("/:id", workoutHandler.DeleteWorkout)
		workouts.POST("/:id/truncate", workoutHandler.TruncateSeries)

		workouts.PUT("/:id/completions/:date", workoutHandler.MarkCompleted)
		workouts.DELETE("/:id/completions/:date", workoutHandler.UnmarkCompleted)
		workouts.PUT("/:id/skips/:date", workoutHandler.SkipDate)
		workouts.DELETE("/:id/skips/:date", workoutHandler.UnskipDate)
	}
}

// rateLimit returns a shared limiter, or a pass-through when RPS is 0.
func rateLimit(cfg config.RateConfig) gin.HandlerFunc {
	if cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return NewRateLimiter(cfg.RPS, cfg.Burst, KeyByUserOrIP()).Handler()
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader, "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cors.New(cc)
}

// limitBody caps request bodies; reads past maxBytes fail and bindJSON answers 400.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
