package archetype

import "regexp"

// MatcherKind is an explicit tagged variant for table matchers.
type MatcherKind string

const (
	MatchExact   MatcherKind = "exact"
	MatchPattern MatcherKind = "pattern"
)

// Mapping is one row of the classification table. The ordered list of these
// is process-wide, read-only configuration loaded once; updates are
// deploy-time changes, not runtime mutations.
type Mapping struct {
	Kind        MatcherKind
	Token       string         // exact-match token, upper case
	Pattern     *regexp.Regexp // compiled pattern, nil unless Kind == MatchPattern
	Domain      Domain
	Archetype   Archetype
	Description string
}

// Exact builds an exact-string mapping row.
func Exact(token string, domain Domain, arch Archetype, desc string) Mapping {
	return Mapping{Kind: MatchExact, Token: token, Domain: domain, Archetype: arch, Description: desc}
}

// Pattern builds a regexp mapping row. Patterns are applied to the
// upper-cased concern, so they are written in upper case and anchored.
func Pattern(expr string, domain Domain, arch Archetype, desc string) Mapping {
	return Mapping{Kind: MatchPattern, Pattern: regexp.MustCompile(expr), Domain: domain, Archetype: arch, Description: desc}
}

// Matches reports whether the row matches the already-normalized concern.
func (m Mapping) Matches(concern string) bool {
	switch m.Kind {
	case MatchExact:
		return m.Token == concern
	case MatchPattern:
		return m.Pattern.MatchString(concern)
	default:
		return false
	}
}

// DefaultTable returns the production classification table.
//
// Order is load-bearing: the table is scanned top to bottom and the first
// matching row wins. Exact HAC concerns come before the USNWR metric-prefix
// patterns so that a literal concern token is never swallowed by a broader
// pattern. Reordering rows changes production behavior.
func DefaultTable() []Mapping {
	return []Mapping{
		// Hospital-acquired conditions (exact tokens)
		Exact("CLABSI", DomainInfectionPrevention, ArchetypePreventabilityDetective, "Central line-associated bloodstream infection"),
		Exact("CAUTI", DomainInfectionPrevention, ArchetypePreventabilityDetective, "Catheter-associated urinary tract infection"),
		Exact("SSI", DomainInfectionPrevention, ArchetypePreventabilityDetective, "Surgical site infection"),
		Exact("VAE", DomainInfectionPrevention, ArchetypePreventabilityDetective, "Ventilator-associated event"),
		Exact("PRESSURE_INJURY", DomainPatientSafety, ArchetypePreventabilityDetective, "Hospital-acquired pressure injury"),
		Exact("FALLS", DomainPatientSafety, ArchetypePreventabilityDetective, "Inpatient falls with injury"),
		Exact("READMISSION_30D", DomainGeneralMedical, ArchetypeExclusionAuditor, "30-day unplanned readmission review"),

		// USNWR pediatric metric prefixes (C41.1a style tokens)
		Pattern(`^C\d`, DomainEndocrinology, ArchetypeMetricAbstractor, "USNWR endocrinology metric"),
		Pattern(`^D\d`, DomainGastroenterology, ArchetypeMetricAbstractor, "USNWR gastroenterology metric"),
		Pattern(`^E\d`, DomainCardiology, ArchetypeMetricAbstractor, "USNWR cardiology metric"),
		Pattern(`^F\d`, DomainNeonatology, ArchetypeMetricAbstractor, "USNWR neonatology metric"),
		Pattern(`^G\d`, DomainNephrology, ArchetypeMetricAbstractor, "USNWR nephrology metric"),
		Pattern(`^H\d`, DomainNeurology, ArchetypeMetricAbstractor, "USNWR neurology/neurosurgery metric"),
		Pattern(`^I\d`, DomainOrthopedics, ArchetypeMetricAbstractor, "USNWR orthopedics metric"),
		Pattern(`^J\d`, DomainPulmonology, ArchetypeMetricAbstractor, "USNWR pulmonology metric"),
		Pattern(`^K\d`, DomainUrology, ArchetypeMetricAbstractor, "USNWR urology metric"),
		Pattern(`^L\d`, DomainBehavioralHealth, ArchetypeMetricAbstractor, "USNWR behavioral health metric"),

		// Catch-alls for infection-style free text
		Pattern(`INFECTION`, DomainInfectionPrevention, ArchetypePreventabilityDetective, "Free-text infection concern"),
	}
}
