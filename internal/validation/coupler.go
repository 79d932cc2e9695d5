package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"hacplanner/domain/plan"
	"hacplanner/internal/quality"
)

// Issue is one typed validation finding.
type Issue struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result couples structural/business-rule validation with the quality-gate
// verdict. IsValid is true only if business rules succeed AND the quality
// score meets the configured threshold; the two are coupled, not independent.
type Result struct {
	IsValid            bool    `json:"is_valid"`
	Errors             []Issue `json:"errors,omitempty"`
	Warnings           []Issue `json:"warnings,omitempty"`
	SchemaValid        bool    `json:"schema_valid"`
	BusinessRulesValid bool    `json:"business_rules_valid"`
	QualityScore       float64 `json:"quality_score"`
	QualityThreshold   float64 `json:"quality_threshold"`
}

// FailAction controls how a quality shortfall is handled by callers: warn
// keeps the plan with its negative verdict, block refuses to persist it.
type FailAction string

const (
	FailActionWarn  FailAction = "warn"
	FailActionBlock FailAction = "block"
)

// Coupler merges the schema pass, the hand-written business rules, and the
// quality verdict into one overall pass/fail.
type Coupler struct {
	validate  *validator.Validate
	threshold float64
}

// DefaultQualityThreshold is the minimum overall score a valid plan needs.
const DefaultQualityThreshold = 0.70

// NewCoupler creates a coupler with the given quality threshold.
func NewCoupler(threshold float64) *Coupler {
	return &Coupler{
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		threshold: threshold,
	}
}

// Validate runs all three passes. Error ordering is fixed: schema errors,
// then business-rule errors, then the synthesized quality error (if any).
func (c *Coupler) Validate(p *plan.Plan, verdict quality.Verdict) Result {
	result := Result{
		SchemaValid:        true,
		BusinessRulesValid: true,
		QualityScore:       verdict.OverallScore,
		QualityThreshold:   c.threshold,
	}

	// Schema pass: struct-tag validation produces a structured error list.
	if err := c.validate.Struct(p); err != nil {
		result.SchemaValid = false
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok {
			for _, fe := range verrs {
				result.Errors = append(result.Errors, Issue{
					Code:    "schema",
					Field:   fe.Namespace(),
					Message: fmt.Sprintf("failed %q constraint", fe.Tag()),
				})
			}
		} else {
			result.Errors = append(result.Errors, Issue{Code: "schema", Message: err.Error()})
		}
	}

	// Business-rule pass: numeric ranges and cross-field dependencies stay
	// hand-written and explicit.
	bizErrors, bizWarnings := businessRules(p)
	result.Errors = append(result.Errors, bizErrors...)
	result.Warnings = append(result.Warnings, bizWarnings...)
	if len(bizErrors) > 0 {
		result.BusinessRulesValid = false
	}

	// Quality coupling: a structurally clean plan below threshold is still
	// invalid, with a descriptive error naming the shortfall.
	qualityOK := verdict.OverallScore >= c.threshold
	if !qualityOK {
		result.Errors = append(result.Errors, Issue{
			Code: "quality_shortfall",
			Message: fmt.Sprintf(
				"quality score %.2f below threshold %.2f; flagged areas: %s",
				verdict.OverallScore, c.threshold, flaggedOrNone(verdict.FlaggedAreas)),
		})
	}

	result.IsValid = result.SchemaValid && result.BusinessRulesValid && qualityOK
	return result
}

func flaggedOrNone(areas []string) string {
	if len(areas) == 0 {
		return "none"
	}
	return strings.Join(areas, ", ")
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}
