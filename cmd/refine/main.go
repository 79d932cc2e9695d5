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
	"hacplanner/domain/core"
	"hacplanner/internal"
	"hacplanner/internal/config"
	"hacplanner/internal/refinery"
)

func main() {
	var (
		promptID = flag.String("prompt-id", "", "identifier of the prompt artifact to refine")
		seedFile = flag.String("seed", "", "path to the seed prompt text (used when the store has no artifact yet)")
		batch    = flag.String("batch", "", "name of the frozen eval batch")
	)
	flag.Parse()

	if *promptID == "" || *batch == "" {
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

	store, err := fsstore.New(cfg.Planning.PlansDir)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	id := core.PromptID(*promptID)
	seed, err := store.LoadPrompt(ctx, id)
	if err != nil {
		if *seedFile == "" {
			log.Fatalf("No stored prompt %s and no -seed file given", id)
		}
		data, err := os.ReadFile(*seedFile)
		if err != nil {
			log.Fatalf("Failed to read seed prompt: %v", err)
		}
		seed = string(data)
	}

	evalBatch, err := store.LoadBatch(ctx, *batch)
	if err != nil {
		log.Fatalf("Failed to load eval batch %s: %v", *batch, err)
	}

	generator := llm.NewClient(llm.Config{
		APIKey:      cfg.AI.OpenAIKey,
		Model:       cfg.AI.OpenAIModel,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AI.Timeout,
	}, logger)

	loop := refinery.NewLoop(
		refinery.NewPromptMutator(generator, cfg.AI.Timeout),
		refinery.NewExtractionEvaluator(generator, cfg.AI.Timeout),
		store,
		store,
		logger,
	)

	state, err := loop.Run(ctx, id, seed, evalBatch)
	if err != nil {
		log.Fatalf("Refinement failed: %v", err)
	}

	fmt.Print(refinery.Summary(state))
}
