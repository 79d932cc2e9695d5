package main

import (
	"log"

	"github.com/joho/godotenv"

	"hacplanner/adapters/api"
	"hacplanner/adapters/excel"
	"hacplanner/adapters/llm"
	"hacplanner/adapters/postgres"
	"hacplanner/app"
	"hacplanner/domain/archetype"
	"hacplanner/internal"
	"hacplanner/internal/config"
	"hacplanner/internal/pipeline"
	"hacplanner/internal/validation"
	"hacplanner/ports"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()

	db, err := postgres.Connect(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := postgres.EnsureSchema(db); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	generator := llm.NewClient(llm.Config{
		APIKey:      cfg.AI.OpenAIKey,
		Model:       cfg.AI.OpenAIModel,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AI.Timeout,
	}, logger)

	planStore := postgres.NewPlanRepository(db)
	failAction := validation.FailActionWarn
	if cfg.Planning.Strict {
		failAction = validation.FailActionBlock
	}

	planner := app.NewPlannerService(
		archetype.NewDefaultResolver(logger),
		pipeline.NewExecutor(generator, logger),
		validation.NewCoupler(cfg.Planning.QualityThreshold),
		planStore,
		failAction,
		logger,
	)

	var bulk *app.BulkService
	if cfg.Paths.RosterFile != "" {
		var roster ports.ConcernRoster = excel.NewRosterReader(cfg.Paths.RosterFile)
		bulk = app.NewBulkService(planner, roster, cfg.Planning.BulkConcurrency, logger)
	}

	interrogation := app.NewInterrogationService(planStore, generator, logger)

	server := api.NewServer(planner, bulk, interrogation, cfg.Server.GinMode, logger)
	logger.Info("planning API listening on :%s", cfg.Server.Port)
	if err := server.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
