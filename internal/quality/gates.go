package quality

import "sort"

// Gate compares one dimension's score (or the overall score when Dimension is
// empty) against a fixed minimum.
type Gate struct {
	Name      string    `json:"name"`
	Dimension Dimension `json:"dimension,omitempty"`
	Min       float64   `json:"min"`
}

// GateResult is the evaluated outcome of one gate.
type GateResult struct {
	Name   string  `json:"name"`
	Passed bool    `json:"passed"`
	Score  float64 `json:"score"`
	Min    float64 `json:"min"`
}

// evaluateGates checks every configured gate. deployment_ready is the
// conjunction of these: a single failing gate blocks deployment regardless of
// the overall score.
func evaluateGates(gates []Gate, overall float64, dims map[Dimension]DimensionScore) []GateResult {
	results := make([]GateResult, 0, len(gates))
	for _, g := range gates {
		score := overall
		if g.Dimension != "" {
			score = dims[g.Dimension].Score
		}
		results = append(results, GateResult{
			Name:   g.Name,
			Passed: score >= g.Min,
			Score:  score,
			Min:    g.Min,
		})
	}
	return results
}

// recommendation templates keyed to which dimension scored low.
var recommendationTemplates = map[Dimension]string{
	DimClinicalAccuracy:        "Cite criteria sources for more signals and anchor the narrative in domain terminology.",
	DimDataFeasibility:         "Rewrite signal triggers as structured field paths (e.g. labs.blood_culture.result) instead of free text.",
	DimParsimony:               "Trim or consolidate the signal battery toward the target count; overlapping triggers dilute reviewer attention.",
	DimCompleteness:            "Populate the missing required plan fields before review.",
	DimResearchCoverage:        "Attach research references covering the plan's criteria decisions.",
	DimSpecCompliance:          "Tie each research reference to the specification section it satisfies.",
	DimImplementationReadiness: "Mark which referenced requirements are actually implemented by the plan.",
}

// recommend emits templated suggestions for every dimension scoring below 0.70,
// in stable dimension order.
func recommend(dims map[Dimension]DimensionScore) []string {
	var low []Dimension
	for d, score := range dims {
		if score.Score < 0.70 {
			low = append(low, d)
		}
	}
	sort.Slice(low, func(i, j int) bool { return low[i] < low[j] })

	var out []string
	for _, d := range low {
		if tmpl, ok := recommendationTemplates[d]; ok {
			out = append(out, tmpl)
		}
	}
	return out
}
