package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rtagency/mocktest-backend/internal/config"
	"github.com/rtagency/mocktest-backend/internal/database"
	"github.com/rtagency/mocktest-backend/internal/exam"
	"github.com/rtagency/mocktest-backend/internal/logger"
	"github.com/rtagency/mocktest-backend/internal/model"
	"github.com/rtagency/mocktest-backend/internal/repository"
	"github.com/rtagency/mocktest-backend/internal/service"
)

// seedQuestion mirrors model.AddQuestionRequest but leaves answer_type
// optional so catalog files do not have to spell it out; when absent it
// is derived from the test's exam profile by position.
type seedQuestion struct {
	Subject       string   `json:"subject"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	AnswerType    string   `json:"answer_type"`
	CorrectAnswer string   `json:"correct_answer"`
	Image         *string  `json:"image"`
	OrderNum      int      `json:"order_num"`
}

func main() {
	var testID int64
	var file string
	flag.Int64Var(&testID, "test", 0, "Target mock test ID")
	flag.StringVar(&file, "file", "", "Path to the question catalog JSON file (defaults to CATALOG_PATH)")
	flag.Parse()

	if testID == 0 {
		fmt.Println("Usage: seed-questions -test <test_id> [-file <catalog.json>]")
		os.Exit(1)
	}

	cfg := config.Load()
	if file == "" {
		file = cfg.CatalogPath
	}
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	packRepo := repository.NewPackRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	catalogService := service.NewCatalogService(packRepo, testRepo, questionRepo, rdb, log)

	// ─── Load Catalog ──────────────────────────────────────────────────
	raw, err := os.ReadFile(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to read catalog file")
	}

	var seeds []seedQuestion
	if err := json.Unmarshal(raw, &seeds); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse catalog file")
	}
	if len(seeds) == 0 {
		fmt.Println("Error: catalog file contains no questions")
		os.Exit(1)
	}

	test, err := testRepo.GetByID(ctx, testID)
	if err != nil {
		log.Fatal().Err(err).Int64("test_id", testID).Msg("Failed to load test")
	}

	profile, err := exam.ProfileFor(test.ExamType)
	if err != nil {
		log.Fatal().Err(err).Str("exam_type", test.ExamType).Msg("Unknown exam type")
	}

	fmt.Printf("=== Seeding %d questions into test %d (%s) ===\n", len(seeds), testID, test.Title)

	// ─── Build Request ─────────────────────────────────────────────────
	reqs := make([]model.AddQuestionRequest, 0, len(seeds))
	for i, q := range seeds {
		answerType := q.AnswerType
		if answerType == "" {
			answerType = string(model.AnswerTypeChoice)
			if profile.IsIntegerOrdinal(i + 1) {
				answerType = string(model.AnswerTypeInteger)
			}
		}
		subject := q.Subject
		if subject == "" {
			subject = profile.SubjectAt(i)
		}
		reqs = append(reqs, model.AddQuestionRequest{
			Subject:       subject,
			Prompt:        q.Prompt,
			Options:       q.Options,
			AnswerType:    answerType,
			CorrectAnswer: q.CorrectAnswer,
			Image:         q.Image,
			OrderNum:      q.OrderNum,
		})
	}

	if err := catalogService.ReplaceQuestions(ctx, testID, reqs); err != nil {
		log.Fatal().Err(err).Msg("Failed to replace questions")
	}

	fmt.Printf("\nSeed completed! Test %d now holds %d questions.\n", testID, len(reqs))
}
