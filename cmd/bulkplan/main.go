package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"hacplanner/adapters/excel"
	"hacplanner/adapters/fsstore"
	"hacplanner/adapters/llm"
	"hacplanner/app"
	"hacplanner/domain/archetype"
	"hacplanner/domain/plan"
	"hacplanner/internal"
	"hacplanner/internal/config"
	"hacplanner/internal/pipeline"
	"hacplanner/internal/validation"
)

func main() {
	var (
		rosterFile     = flag.String("roster", "", "path to the concern roster (xlsx or csv)")
		narrativesFile = flag.String("narratives", "", "path to a JSON file mapping concern tokens to case narratives")
		mode           = flag.String("mode", "fast", "generation mode: fast or research")
	)
	flag.Parse()

	if *rosterFile == "" || *narrativesFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewDefaultLogger()

	data, err := os.ReadFile(*narrativesFile)
	if err != nil {
		log.Fatalf("Failed to read narratives: %v", err)
	}
	var narratives map[string]string
	if err := json.Unmarshal(data, &narratives); err != nil {
		log.Fatalf("Failed to parse narratives: %v", err)
	}

	store, err := fsstore.New(cfg.Planning.PlansDir)
	if err != nil {
		log.Fatalf("Failed to open plan store: %v", err)
	}

	generator := llm.NewClient(llm.Config{
		APIKey:      cfg.AI.OpenAIKey,
		Model:       cfg.AI.OpenAIModel,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AI.Timeout,
	}, logger)

	planner := app.NewPlannerService(
		archetype.NewDefaultResolver(logger),
		pipeline.NewExecutor(generator, logger),
		validation.NewCoupler(cfg.Planning.QualityThreshold),
		store,
		validation.FailActionWarn,
		logger,
	)
	bulk := app.NewBulkService(planner, excel.NewRosterReader(*rosterFile), cfg.Planning.BulkConcurrency, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	result, err := bulk.Run(ctx, app.BulkRequest{
		Mode:       plan.GenerationMode(*mode),
		Narratives: narratives,
		Timeout:    cfg.AI.Timeout,
	})
	if err != nil {
		log.Fatalf("Bulk run failed: %v", err)
	}

	fmt.Printf("bulk run: %d succeeded, %d failed, %d skipped in %dms\n",
		result.Succeeded, result.Failed, result.Skipped, result.RuntimeMs)
	for _, item := range result.Items {
		switch {
		case item.Skipped:
			fmt.Printf("  %-16s skipped (no narrative)\n", item.Concern)
		case item.Error != "":
			fmt.Printf("  %-16s FAILED: %s\n", item.Concern, item.Error)
		default:
			fmt.Printf("  %-16s plan %s grade %s deployable=%t\n",
				item.Concern,
				item.Result.Plan.Metadata.PlanningID,
				item.Result.Verdict.Grade,
				item.Result.Verdict.DeploymentReady)
		}
	}
}
