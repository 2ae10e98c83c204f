package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/btesedu/scholarex-backend/internal/config"
	"github.com/btesedu/scholarex-backend/internal/database"
	"github.com/btesedu/scholarex-backend/internal/handler"
	"github.com/btesedu/scholarex-backend/internal/logger"
	"github.com/btesedu/scholarex-backend/internal/mail"
	"github.com/btesedu/scholarex-backend/internal/repository"
	"github.com/btesedu/scholarex-backend/internal/router"
	"github.com/btesedu/scholarex-backend/internal/service"
	"github.com/btesedu/scholarex-backend/internal/validator"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ScholarEx Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	kv := database.NewRedisKV(rdb)

	// ─── Mail Backend ──────────────────────────────────────────────────
	var mailer mail.Mailer
	switch cfg.MailBackend {
	case "sendgrid":
		mailer = mail.NewSendgridMailer(cfg.SendgridAPIKey, cfg.DefaultFromName, cfg.DefaultFromEmail)
	default:
		mailer = mail.NewConsoleMailer(log)
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	studentRepo := repository.NewStudentRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	collegeRepo := repository.NewCollegeRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, studentRepo, resultRepo, adminRepo, kv, log)
	registrationService := service.NewRegistrationService(cfg, collegeRepo, scheduleRepo, studentRepo, kv, mailer, log)
	quizService := service.NewQuizService(cfg, scheduleRepo, questionRepo, resultRepo, authService, kv, log)
	collegeService := service.NewCollegeService(collegeRepo)
	scheduleService := service.NewScheduleService(cfg, scheduleRepo, collegeRepo, studentRepo, mailer, log)
	questionService := service.NewQuestionService(questionRepo)
	resultService := service.NewResultService(resultRepo, scheduleRepo, studentRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Registration: handler.NewRegistrationHandler(registrationService),
		Quiz:         handler.NewQuizHandler(authService, quizService),
		College:      handler.NewCollegeHandler(collegeService),
		Schedule:     handler.NewScheduleHandler(scheduleService, authService),
		Question:     handler.NewQuestionHandler(questionService),
		Result:       handler.NewResultHandler(resultService),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
