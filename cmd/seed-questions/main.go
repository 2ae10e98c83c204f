package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/btesedu/scholarex-backend/internal/config"
	"github.com/btesedu/scholarex-backend/internal/database"
	"github.com/btesedu/scholarex-backend/internal/logger"
	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/btesedu/scholarex-backend/internal/repository"
	"github.com/btesedu/scholarex-backend/internal/service"
)

// Seeds the question banks from a JSON file: an array of question objects
// in the same shape the bulk-import endpoint accepts.
func main() {
	var file string
	flag.StringVar(&file, "file", "questions.json", "Path to the questions JSON file")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	raw, err := os.ReadFile(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to read questions file")
	}

	var items []model.QuestionImportItem
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse questions file")
	}

	questionService := service.NewQuestionService(repository.NewQuestionRepository(pool))

	imported, skipped, err := questionService.Import(ctx, items)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	fmt.Printf("Imported %d questions, skipped %d invalid entries\n", imported, skipped)
}
