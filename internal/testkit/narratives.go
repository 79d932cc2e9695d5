package testkit

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"hacplanner/domain/core"
	"hacplanner/domain/refine"
	"hacplanner/ports"
)

// NarrativeGenerator produces seeded synthetic case narratives. The same seed
// always yields the same narratives, so fixtures stay stable across runs.
type NarrativeGenerator struct {
	rng *rand.Rand
}

// NewNarrativeGenerator creates a generator with a fixed seed.
func NewNarrativeGenerator(seed int64) *NarrativeGenerator {
	return &NarrativeGenerator{rng: rand.New(rand.NewSource(seed))}
}

var narrativeFragments = map[string][]string{
	"CLABSI": {
		"Central line placed in the right IJ on hospital day %d.",
		"Fever to 38.9C noted on day %d with rigors.",
		"Blood culture drawn day %d grew coagulase-negative staph in 2 of 2 bottles.",
		"Line site without erythema or drainage on exam.",
	},
	"CAUTI": {
		"Indwelling urinary catheter placed on admission, day %d.",
		"Urinalysis on day %d with pyuria and positive leukocyte esterase.",
		"Urine culture grew >100k CFU/mL E. coli on day %d.",
		"Patient afebrile but with new suprapubic tenderness.",
	},
	"SSI": {
		"Underwent colectomy on day %d without intraoperative complication.",
		"Incision noted with purulent drainage on postoperative day %d.",
		"Wound culture from day %d grew Enterococcus faecalis.",
		"Fascia intact; superficial tissue involvement only.",
	},
}

var defaultFragments = []string{
	"Admitted on day %d with the indexed concern under surveillance.",
	"Relevant device or procedure documented on day %d.",
	"Confirmatory diagnostic result returned on day %d.",
	"No competing etiology identified on chart review.",
}

// Narrative builds one synthetic case narrative for the concern.
func (g *NarrativeGenerator) Narrative(concern string) string {
	fragments, ok := narrativeFragments[strings.ToUpper(concern)]
	if !ok {
		fragments = defaultFragments
	}
	day := 1
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if strings.Contains(f, "%d") {
			day += g.rng.Intn(3) + 1
			parts = append(parts, fmt.Sprintf(f, day))
		} else {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

// Batch builds a frozen eval batch of n synthetic cases for the concern.
func (g *NarrativeGenerator) Batch(concern string, n int) *refine.EvalBatch {
	b := &refine.EvalBatch{
		Name:    fmt.Sprintf("%s-synthetic", strings.ToLower(concern)),
		Version: "1",
	}
	for i := 0; i < n; i++ {
		b.Cases = append(b.Cases, refine.EvalCase{
			ID:        core.EvalCaseID(core.NewID()),
			Narrative: g.Narrative(concern),
		})
	}
	b.Hash = b.Fingerprint()
	return b
}

// CannedGenerator is a ports.Generator returning fixed structurally valid
// payloads, for service-level tests that exercise the whole pipeline without
// an LLM.
type CannedGenerator struct {
	Calls int
	// Err, when set, is returned on every call.
	Err error
}

func (c *CannedGenerator) Generate(_ context.Context, req ports.GenerateRequest) (*ports.Generation, error) {
	c.Calls++
	if c.Err != nil {
		return nil, c.Err
	}

	payload := map[string]interface{}{
		"signals": []interface{}{
			map[string]interface{}{"id": "s1", "name": "Device in place >2 days", "trigger": "devices.line.status", "sourced": true},
			map[string]interface{}{"id": "s2", "name": "Positive confirmatory culture", "trigger": "labs.culture.result", "sourced": true},
		},
		"questions": []interface{}{
			map[string]interface{}{"id": "q1", "text": "Was the device present on the event date?"},
		},
		"exclusions":    []interface{}{},
		"determination": "POSSIBLE",
		"criteria_met":  map[string]interface{}{"device_days": true, "positive_culture": true},
		"sources":       []interface{}{"NHSN LCBI criteria"},
		"summary":       "Case meets possible-event criteria pending exclusion review.",
	}
	return &ports.Generation{
		Text: "Device placed day 2, confirmatory culture positive day 6, no competing source identified.",
		JSON: payload,
	}, nil
}

var _ ports.Generator = (*CannedGenerator)(nil)
