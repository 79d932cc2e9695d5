package quality

import (
	"encoding/json"
	"strings"

	"hacplanner/domain/plan"
)

// scoreCompleteness is the fraction of the required-field checklist present,
// via dot-path lookups into the plan document. Missing fields are named in
// the rationale.
func (e *Engine) scoreCompleteness(p *plan.Plan) DimensionScore {
	doc := toDocument(p)

	var missing []string
	for _, path := range e.cfg.RequiredPaths {
		if !pathPresent(doc, path) {
			missing = append(missing, path)
		}
	}

	total := len(e.cfg.RequiredPaths)
	score := 1.0
	if total > 0 {
		score = float64(total-len(missing)) / float64(total)
	}

	rationale := "all required fields present"
	if len(missing) > 0 {
		rationale = rationalef("missing required fields: %s", strings.Join(missing, ", "))
	}
	return DimensionScore{
		Dimension: DimCompleteness,
		Score:     clamp01(score),
		Rationale: rationale,
		Metadata:  map[string]interface{}{"missing": missing, "checked": total},
	}
}

// scoreClinicalAccuracy starts at the mode baseline and applies fixed deltas
// for sourced-criteria coverage, reference-tool integration, and domain
// terminology density. The result is always clamped to [0,1].
func (e *Engine) scoreClinicalAccuracy(p *plan.Plan) DimensionScore {
	score := e.cfg.AccuracyBaseline
	var notes []string

	if sourcedFraction(p.Signals) >= 0.5 {
		score += 0.10
		notes = append(notes, "majority of signals cite a criteria source (+0.10)")
	}

	if len(p.Provenance.ReferenceTools) > 0 {
		score += 0.05
		notes = append(notes, "external reference tools integrated (+0.05)")
	}

	terms := distinctVocabularyTerms(p, e.cfg.Vocabulary)
	if len(terms) >= e.cfg.VocabularyThreshold {
		score += 0.10
		notes = append(notes, rationalef("%d domain terms present (+0.10)", len(terms)))
	} else {
		score -= 0.05
		notes = append(notes, rationalef("only %d domain terms present (-0.05)", len(terms)))
	}

	return DimensionScore{
		Dimension: DimClinicalAccuracy,
		Score:     clamp01(score),
		Rationale: strings.Join(notes, "; "),
		Metadata:  map[string]interface{}{"baseline": e.cfg.AccuracyBaseline, "terms": terms},
	}
}

// feasibilityMarkers are heuristic substrings indicating a trigger can be
// evaluated against structured data.
var feasibilityMarkers = []string{".", "code", "result", "status", "value"}

// scoreDataFeasibility is the fraction of signals whose trigger expression
// contains a structured-data extractability marker.
func (e *Engine) scoreDataFeasibility(p *plan.Plan) DimensionScore {
	if len(p.Signals) == 0 {
		return DimensionScore{
			Dimension: DimDataFeasibility,
			Score:     0,
			Rationale: "no signals to evaluate",
		}
	}

	extractable := 0
	for _, s := range p.Signals {
		trigger := strings.ToLower(s.Trigger)
		for _, marker := range feasibilityMarkers {
			if strings.Contains(trigger, marker) {
				extractable++
				break
			}
		}
	}

	score := float64(extractable) / float64(len(p.Signals))
	return DimensionScore{
		Dimension: DimDataFeasibility,
		Score:     clamp01(score),
		Rationale: rationalef("%d of %d signal triggers look extractable from structured data", extractable, len(p.Signals)),
		Metadata:  map[string]interface{}{"extractable": extractable, "total": len(p.Signals)},
	}
}

// scoreParsimony bands the plan's signal or question count against its
// category target. Band edges come from configuration.
func (e *Engine) scoreParsimony(p *plan.Plan) DimensionScore {
	count := p.CountForParsimony()

	min, max := e.cfg.Bands.SignalTargetMin, e.cfg.Bands.SignalTargetMax
	unit := "signals"
	if p.Category == plan.CategoryQuestionBattery {
		min, max = e.cfg.Bands.QuestionTargetMin, e.cfg.Bands.QuestionTargetMax
		unit = "questions"
	}

	score := bandScore(count, min, max, e.cfg.Bands.NearMargin, e.cfg.Bands.WideMargin)
	return DimensionScore{
		Dimension: DimParsimony,
		Score:     score,
		Rationale: rationalef("%d %s against target %d-%d", count, unit, min, max),
		Metadata:  map[string]interface{}{"count": count, "target_min": min, "target_max": max},
	}
}

// bandScore implements the fixed band mapping: in-target 1.0, near 0.85,
// wide 0.70, outside 0.50. Band edges are inclusive.
func bandScore(count, min, max, nearMargin, wideMargin int) float64 {
	switch {
	case count >= min && count <= max:
		return 1.0
	case count >= min-nearMargin && count <= max+nearMargin:
		return 0.85
	case count >= min-wideMargin && count <= max+wideMargin:
		return 0.70
	default:
		return 0.50
	}
}

// scoreResearchCoverage measures how much of the plan is backed by research
// references (research mode only).
func (e *Engine) scoreResearchCoverage(p *plan.Plan) DimensionScore {
	refs := len(p.Provenance.ResearchRefs)
	if refs == 0 {
		return DimensionScore{
			Dimension: DimResearchCoverage,
			Score:     0,
			Rationale: "no research references in provenance",
		}
	}
	// Five distinct references is treated as full coverage.
	score := clamp01(float64(refs) / 5.0)
	return DimensionScore{
		Dimension: DimResearchCoverage,
		Score:     score,
		Rationale: rationalef("%d research references", refs),
		Metadata:  map[string]interface{}{"refs": refs},
	}
}

// scoreSpecCompliance is the fraction of research references tied to a
// specification section (research mode only).
func (e *Engine) scoreSpecCompliance(p *plan.Plan) DimensionScore {
	refs := p.Provenance.ResearchRefs
	if len(refs) == 0 {
		return DimensionScore{
			Dimension: DimSpecCompliance,
			Score:     0,
			Rationale: "no research references to check against the specification",
		}
	}
	tied := 0
	for _, r := range refs {
		if r.SpecSection != "" {
			tied++
		}
	}
	return DimensionScore{
		Dimension: DimSpecCompliance,
		Score:     clamp01(float64(tied) / float64(len(refs))),
		Rationale: rationalef("%d of %d references tied to a spec section", tied, len(refs)),
	}
}

// scoreImplementationReadiness is the fraction of research references marked
// implemented (research mode only).
func (e *Engine) scoreImplementationReadiness(p *plan.Plan) DimensionScore {
	refs := p.Provenance.ResearchRefs
	if len(refs) == 0 {
		return DimensionScore{
			Dimension: DimImplementationReadiness,
			Score:     0,
			Rationale: "no research references to assess readiness",
		}
	}
	done := 0
	for _, r := range refs {
		if r.Implemented {
			done++
		}
	}
	return DimensionScore{
		Dimension: DimImplementationReadiness,
		Score:     clamp01(float64(done) / float64(len(refs))),
		Rationale: rationalef("%d of %d references implemented", done, len(refs)),
	}
}

// sourcedFraction is the share of signals backed by a cited criteria source.
func sourcedFraction(signals []plan.Signal) float64 {
	if len(signals) == 0 {
		return 0
	}
	sourced := 0
	for _, s := range signals {
		if s.Sourced {
			sourced++
		}
	}
	return float64(sourced) / float64(len(signals))
}

// distinctVocabularyTerms counts distinct fixed-vocabulary terms appearing
// anywhere in the plan's generated text.
func distinctVocabularyTerms(p *plan.Plan, vocabulary []string) []string {
	var blob strings.Builder
	blob.WriteString(p.Narrative)
	for _, s := range p.Signals {
		blob.WriteString(" ")
		blob.WriteString(s.Name)
		blob.WriteString(" ")
		blob.WriteString(s.Rationale)
	}
	for _, q := range p.Questions {
		blob.WriteString(" ")
		blob.WriteString(q.Text)
	}
	for _, x := range p.Exclusions {
		blob.WriteString(" ")
		blob.WriteString(x.Name)
		blob.WriteString(" ")
		blob.WriteString(x.Rationale)
	}
	text := strings.ToLower(blob.String())

	var found []string
	for _, term := range vocabulary {
		if strings.Contains(text, term) {
			found = append(found, term)
		}
	}
	return found
}

// toDocument converts the canonical plan to a generic document for dot-path
// lookups.
func toDocument(p *plan.Plan) map[string]interface{} {
	data, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return doc
}

// pathPresent walks a dot path through nested objects. A field counts as
// present when it exists and is neither empty-string, nil, nor an empty array.
func pathPresent(doc map[string]interface{}, path string) bool {
	parts := strings.Split(path, ".")
	var current interface{} = doc
	for _, part := range parts {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return false
		}
		current, ok = obj[part]
		if !ok {
			return false
		}
	}
	switch v := current.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []interface{}:
		return len(v) > 0
	default:
		return true
	}
}
