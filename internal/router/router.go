package router

import (
	"net/http"
	"time"

	"github.com/btesedu/scholarex-backend/internal/config"
	"github.com/btesedu/scholarex-backend/internal/handler"
	"github.com/btesedu/scholarex-backend/internal/middleware"
	"github.com/btesedu/scholarex-backend/internal/response"
	"github.com/btesedu/scholarex-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Registration *handler.RegistrationHandler
	Quiz         *handler.QuizHandler
	College      *handler.CollegeHandler
	Schedule     *handler.ScheduleHandler
	Question     *handler.QuestionHandler
	Result       *handler.ResultHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiters: registration costs a bcrypt round plus an outbound
	// mail per request; login costs a bcrypt round.
	registrationLimiter := middleware.NewRateLimiter(10, time.Minute)
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/colleges", handlers.College.ListPublic)
	}

	// ─── 1. Registration Group (Public, Rate Limited) ──────────────────
	registration := router.Group("/api/v1/registration")
	registration.Use(registrationLimiter.Middleware())
	{
		registration.POST("/colleges/:college_id", handlers.Registration.Begin)
		registration.POST("/verify", handlers.Registration.Verify)
	}

	// ─── 2. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/admin/login", handlers.Auth.AdminLogin)

		// Authenticated profile routes
		auth.POST("/student/logout",
			middleware.RequireStudentJWT(authService),
			handlers.Auth.StudentLogout,
		)
		auth.GET("/student/me",
			middleware.RequireStudentJWT(authService),
			handlers.Auth.GetStudentProfile,
		)
		auth.GET("/admin/me",
			middleware.RequireAdminJWT(authService),
			handlers.Auth.GetAdminProfile,
		)
	}

	// ─── 3. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.GET("/quiz", handlers.Quiz.GetQuiz)
		studentAPI.POST("/quiz/submit", handlers.Quiz.Submit)
	}

	// ─── 4. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Colleges and officials
		adminAPI.GET("/colleges", handlers.College.List)
		adminAPI.POST("/colleges", handlers.College.Create)
		adminAPI.POST("/colleges/:college_id/officials", handlers.College.CreateOfficial)
		adminAPI.PUT("/officials/:id", handlers.College.UpdateOfficial)
		adminAPI.PATCH("/officials/:id/toggle", handlers.College.ToggleOfficial)

		// Schedules
		adminAPI.GET("/schedules", handlers.Schedule.List)
		adminAPI.GET("/colleges/:college_id/schedules", handlers.Schedule.ListByCollege)
		adminAPI.POST("/colleges/:college_id/schedule/date", handlers.Schedule.SetDate)
		adminAPI.PUT("/schedules/:id", handlers.Schedule.Update)
		adminAPI.PATCH("/schedules/:id/toggle-quiz", handlers.Schedule.ToggleQuiz)
		adminAPI.PATCH("/schedules/:id/toggle-registration", handlers.Schedule.ToggleRegistration)
		adminAPI.POST("/colleges/:college_id/share-registration", handlers.Schedule.ShareRegistrationLink)
		adminAPI.POST("/colleges/:college_id/share-quiz", handlers.Schedule.ShareQuizLink)

		// Dashboard
		adminAPI.GET("/histories", handlers.Schedule.ListHistories)
		adminAPI.GET("/histories/:id/registrations", handlers.Schedule.Registrations)
		adminAPI.GET("/histories/:id/registrations/export", handlers.Result.ExportRegistrations)
		adminAPI.GET("/histories/:id/results", handlers.Result.ListBySchedule)
		adminAPI.GET("/histories/:id/results/export", handlers.Result.ExportResults)

		// Questions
		adminAPI.GET("/questions", handlers.Question.List)
		adminAPI.POST("/questions", handlers.Question.Create)
		adminAPI.POST("/questions/import", handlers.Question.Import)
		adminAPI.PUT("/questions/:id", handlers.Question.Update)
		adminAPI.PATCH("/questions/:id/toggle", handlers.Question.ToggleActive)

		// Students
		adminAPI.POST("/students/:id/reset-session", handlers.Schedule.ResetStudentSession)
	}

	return router
}
