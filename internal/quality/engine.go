package quality

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"hacplanner/domain/plan"
)

// Dimension names one independently computed quality axis.
type Dimension string

const (
	DimClinicalAccuracy        Dimension = "clinical_accuracy"
	DimDataFeasibility         Dimension = "data_feasibility"
	DimParsimony               Dimension = "parsimony"
	DimCompleteness            Dimension = "completeness"
	DimResearchCoverage        Dimension = "research_coverage"
	DimSpecCompliance          Dimension = "spec_compliance"
	DimImplementationReadiness Dimension = "implementation_readiness"
)

// DimensionScore is one computed dimension. Scores are always clamped to
// [0,1] regardless of accumulated deltas.
type DimensionScore struct {
	Dimension Dimension              `json:"dimension"`
	Score     float64                `json:"score"`
	Rationale string                 `json:"rationale"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Grade is the 4-band letter mapping of the overall score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// GradeFor maps an overall score to its letter band.
func GradeFor(overall float64) Grade {
	switch {
	case overall >= 0.90:
		return GradeA
	case overall >= 0.80:
		return GradeB
	case overall >= 0.70:
		return GradeC
	default:
		return GradeD
	}
}

// Verdict is derived entirely from dimension values and static thresholds.
// It is recomputed whenever the plan changes.
type Verdict struct {
	OverallScore    float64                       `json:"overall_score"`
	Grade           Grade                         `json:"grade"`
	Dimensions      map[Dimension]DimensionScore  `json:"dimensions"`
	Gates           []GateResult                  `json:"gates"`
	DeploymentReady bool                          `json:"deployment_ready"`
	FlaggedAreas    []string                      `json:"flagged_areas,omitempty"`
	Recommendations []string                      `json:"recommendations,omitempty"`
}

// Engine computes quality verdicts. Assess is a pure function of the plan's
// content and the engine's static configuration.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// NewDefaultEngine creates an engine with the standard configuration for the
// mode.
func NewDefaultEngine(mode plan.GenerationMode) *Engine {
	return NewEngine(DefaultConfig(mode))
}

// Assess scores the plan across every configured dimension, aggregates with
// mode-dependent weights, evaluates gates, and derives grade, flagged areas,
// and recommendations.
func (e *Engine) Assess(p *plan.Plan) Verdict {
	dims := map[Dimension]DimensionScore{
		DimCompleteness:     e.scoreCompleteness(p),
		DimClinicalAccuracy: e.scoreClinicalAccuracy(p),
		DimDataFeasibility:  e.scoreDataFeasibility(p),
		DimParsimony:        e.scoreParsimony(p),
	}
	if e.cfg.Mode == plan.ModeResearch {
		dims[DimResearchCoverage] = e.scoreResearchCoverage(p)
		dims[DimSpecCompliance] = e.scoreSpecCompliance(p)
		dims[DimImplementationReadiness] = e.scoreImplementationReadiness(p)
	}

	overall := e.aggregate(dims)

	gates := evaluateGates(e.cfg.Gates, overall, dims)
	ready := true
	var flagged []string
	for _, g := range gates {
		if !g.Passed {
			ready = false
			flagged = append(flagged, g.Name)
		}
	}

	return Verdict{
		OverallScore:    overall,
		Grade:           GradeFor(overall),
		Dimensions:      dims,
		Gates:           gates,
		DeploymentReady: ready,
		FlaggedAreas:    flagged,
		Recommendations: recommend(dims),
	}
}

// aggregate computes the weighted overall score. Dimension order is fixed so
// the computation is deterministic; weights sum to 1.0 per mode.
func (e *Engine) aggregate(dims map[Dimension]DimensionScore) float64 {
	names := make([]Dimension, 0, len(dims))
	for d := range dims {
		if _, ok := e.cfg.Weights[d]; ok {
			names = append(names, d)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	scores := make([]float64, len(names))
	weights := make([]float64, len(names))
	for i, d := range names {
		scores[i] = dims[d].Score
		weights[i] = e.cfg.Weights[d]
	}
	if len(scores) == 0 {
		return 0
	}
	return stat.Mean(scores, weights)
}

// clamp01 keeps stacked bonus/penalty deltas inside [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func rationalef(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
