package app

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"hacplanner/domain/plan"
	"hacplanner/internal"
	"hacplanner/internal/errors"
	"hacplanner/ports"
)

// BulkService fans plan generation out over a concern roster with bounded
// concurrency. Each concern gets its own run; one failure never aborts the
// batch.
type BulkService struct {
	planner     *PlannerService
	roster      ports.ConcernRoster
	concurrency int64
	log         *internal.Logger
}

// BulkRequest parameterizes a roster-wide run.
type BulkRequest struct {
	Mode plan.GenerationMode
	// Narratives maps concern tokens to their case narratives. Concerns
	// without a narrative are skipped and reported.
	Narratives map[string]string
	Timeout    time.Duration
}

// BulkItem is one concern's outcome.
type BulkItem struct {
	Concern string      `json:"concern"`
	Result  *PlanResult `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
	Skipped bool        `json:"skipped,omitempty"`
}

// BulkResult aggregates a roster run.
type BulkResult struct {
	Items     []BulkItem `json:"items"`
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Skipped   int        `json:"skipped"`
	RuntimeMs int64      `json:"runtime_ms"`
}

// NewBulkService creates a bulk planning service.
func NewBulkService(planner *PlannerService, roster ports.ConcernRoster, concurrency int, log *internal.Logger) *BulkService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BulkService{
		planner:     planner,
		roster:      roster,
		concurrency: int64(concurrency),
		log:         log,
	}
}

// Run generates a plan for every concern on the roster. Results keep roster
// order regardless of completion order.
func (s *BulkService) Run(ctx context.Context, req BulkRequest) (*BulkResult, error) {
	startTime := time.Now()

	concerns, err := s.roster.ListConcerns(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load concern roster")
	}
	if len(concerns) == 0 {
		return nil, errors.InvalidInput("concern roster is empty")
	}

	sem := semaphore.NewWeighted(s.concurrency)
	items := make([]BulkItem, len(concerns))
	var wg sync.WaitGroup

	for i, concern := range concerns {
		narrative, ok := req.Narratives[concern]
		if !ok || narrative == "" {
			items[i] = BulkItem{Concern: concern, Skipped: true}
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			items[i] = BulkItem{Concern: concern, Error: err.Error()}
			continue
		}

		wg.Add(1)
		go func(i int, concern, narrative string) {
			defer wg.Done()
			defer sem.Release(1)

			result, err := s.planner.GeneratePlan(ctx, PlanRequest{
				Concern:   concern,
				Narrative: narrative,
				Mode:      req.Mode,
				Timeout:   req.Timeout,
			})
			if err != nil {
				if s.log != nil {
					s.log.Warn("bulk plan for %s failed: %v", concern, err)
				}
				items[i] = BulkItem{Concern: concern, Error: err.Error(), Result: result}
				return
			}
			items[i] = BulkItem{Concern: concern, Result: result}
		}(i, concern, narrative)
	}

	wg.Wait()

	out := &BulkResult{Items: items, RuntimeMs: time.Since(startTime).Milliseconds()}
	for _, item := range items {
		switch {
		case item.Skipped:
			out.Skipped++
		case item.Error != "":
			out.Failed++
		default:
			out.Succeeded++
		}
	}

	if s.log != nil {
		s.log.Info("bulk run finished: %d succeeded, %d failed, %d skipped", out.Succeeded, out.Failed, out.Skipped)
	}
	return out, nil
}
