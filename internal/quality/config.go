package quality

import (
	"hacplanner/domain/plan"
)

// Band edges for parsimony are configuration, not derived.
type ParsimonyBands struct {
	SignalTargetMin   int
	SignalTargetMax   int
	QuestionTargetMin int
	QuestionTargetMax int
	// NearMargin and WideMargin widen the target band outward; counts inside
	// the near band score 0.85, inside the wide band 0.70, outside 0.50.
	NearMargin int
	WideMargin int
}

// Config is the engine's static configuration.
type Config struct {
	Mode    plan.GenerationMode
	Weights map[Dimension]float64
	Gates   []Gate
	Bands   ParsimonyBands
	// RequiredPaths is the fixed dot-path checklist for completeness.
	RequiredPaths []string
	// Vocabulary is the fixed domain terminology list; distinct-term count is
	// thresholded at VocabularyThreshold.
	Vocabulary          []string
	VocabularyThreshold int
	// Baselines for clinical accuracy by mode.
	AccuracyBaseline float64
}

// DefaultConfig returns the production configuration for the mode.
func DefaultConfig(mode plan.GenerationMode) Config {
	cfg := Config{
		Mode: mode,
		Bands: ParsimonyBands{
			SignalTargetMin:   15,
			SignalTargetMax:   25,
			QuestionTargetMin: 3,
			QuestionTargetMax: 7,
			NearMargin:        5,
			WideMargin:        15,
		},
		RequiredPaths: []string{
			"metadata.planning_id",
			"metadata.concern",
			"metadata.domain",
			"metadata.archetype",
			"category",
			"narrative",
			"criteria_evaluation.determination",
			"provenance.sources",
		},
		Vocabulary: []string{
			"central line", "catheter", "culture", "sepsis", "bacteremia",
			"infection", "antibiotic", "device days", "lumen", "dressing",
			"insertion site", "exclusion", "criteria", "surveillance",
			"denominator", "numerator", "present on admission",
		},
		VocabularyThreshold: 3,
		AccuracyBaseline:    0.70,
	}

	switch mode {
	case plan.ModeResearch:
		cfg.AccuracyBaseline = 0.75
		cfg.Weights = map[Dimension]float64{
			DimClinicalAccuracy:        0.20,
			DimDataFeasibility:         0.15,
			DimParsimony:               0.10,
			DimCompleteness:            0.10,
			DimResearchCoverage:        0.15,
			DimSpecCompliance:          0.20,
			DimImplementationReadiness: 0.10,
		}
		cfg.Gates = []Gate{
			{Name: "overall_minimum", Min: 0.70},
			{Name: "clinical_accuracy_minimum", Dimension: DimClinicalAccuracy, Min: 0.60},
			{Name: "completeness_minimum", Dimension: DimCompleteness, Min: 0.60},
			{Name: "data_feasibility_minimum", Dimension: DimDataFeasibility, Min: 0.50},
			{Name: "spec_compliance_minimum", Dimension: DimSpecCompliance, Min: 0.70},
			{Name: "research_coverage_minimum", Dimension: DimResearchCoverage, Min: 0.60},
		}
	default:
		cfg.Weights = map[Dimension]float64{
			DimClinicalAccuracy: 0.30,
			DimDataFeasibility:  0.25,
			DimParsimony:        0.20,
			DimCompleteness:     0.25,
		}
		cfg.Gates = []Gate{
			{Name: "overall_minimum", Min: 0.70},
			{Name: "clinical_accuracy_minimum", Dimension: DimClinicalAccuracy, Min: 0.60},
			{Name: "completeness_minimum", Dimension: DimCompleteness, Min: 0.60},
			{Name: "data_feasibility_minimum", Dimension: DimDataFeasibility, Min: 0.50},
		}
	}
	return cfg
}
