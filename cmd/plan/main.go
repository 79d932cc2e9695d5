package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"hacplanner/adapters/fsstore"
	"hacplanner/adapters/llm"
	"hacplanner/adapters/report"
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
		concern       = flag.String("concern", "", "concern token to plan for (e.g. CLABSI, C4)")
		narrativeFile = flag.String("narrative", "", "path to the case narrative text file")
		mode          = flag.String("mode", "fast", "generation mode: fast or research")
		strict        = flag.Bool("strict", false, "disable the template fallback")
		domainHint    = flag.String("domain", "", "optional domain hint for unmapped concerns")
	)
	flag.Parse()

	if *concern == "" || *narrativeFile == "" {
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

	narrative, err := os.ReadFile(*narrativeFile)
	if err != nil {
		log.Fatalf("Failed to read narrative: %v", err)
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := planner.GeneratePlan(ctx, app.PlanRequest{
		Concern:    *concern,
		Narrative:  string(narrative),
		DomainHint: archetype.Domain(*domainHint),
		Mode:       plan.GenerationMode(*mode),
		Strict:     *strict,
		Timeout:    cfg.AI.Timeout,
	})
	if err != nil {
		log.Fatalf("Plan generation failed: %v", err)
	}

	fmt.Print(report.NewRenderer().Markdown(result.Plan, &result.Verdict))
	if result.FromTemplate {
		fmt.Println("\n> generation failed; this is the template fallback plan")
	}
	if !result.Validation.IsValid {
		fmt.Println("\n> plan failed validation:")
		for _, issue := range result.Validation.Errors {
			fmt.Printf(">   - %s\n", issue.Message)
		}
	}
}
