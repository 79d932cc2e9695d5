package archetype

// Domain is the clinical service line a concern belongs to.
type Domain string

const (
	DomainInfectionPrevention Domain = "Infection_Prevention"
	DomainPatientSafety       Domain = "Patient_Safety"
	DomainEndocrinology       Domain = "Endocrinology"
	DomainGastroenterology    Domain = "Gastroenterology"
	DomainCardiology          Domain = "Cardiology"
	DomainNeonatology         Domain = "Neonatology"
	DomainNephrology          Domain = "Nephrology"
	DomainNeurology           Domain = "Neurology_Neurosurgery"
	DomainOrthopedics         Domain = "Orthopedics"
	DomainPulmonology         Domain = "Pulmonology"
	DomainUrology             Domain = "Urology"
	DomainBehavioralHealth    Domain = "Behavioral_Health"
	DomainGeneralMedical      Domain = "General_Medical"
)

// Archetype is a behavioral template governing which tasks and scoring
// weights apply to a concern.
type Archetype string

const (
	// ArchetypePreventabilityDetective drives hospital-acquired-condition
	// surveillance (CLABSI, CAUTI, SSI, pressure injury): was the event
	// preventable, and which exclusions apply.
	ArchetypePreventabilityDetective Archetype = "Preventability_Detective"
	// ArchetypeMetricAbstractor drives USNWR registry metric abstraction:
	// pull structured criteria out of the chart for a numbered metric.
	ArchetypeMetricAbstractor Archetype = "Metric_Abstractor"
	// ArchetypeExclusionAuditor drives concerns whose main work is ruling
	// cases out (readmission and present-on-admission review).
	ArchetypeExclusionAuditor Archetype = "Exclusion_Auditor"
	// ArchetypeGeneralSurveillance is the fixed fallback for unknown concerns.
	ArchetypeGeneralSurveillance Archetype = "General_Surveillance"
)

// ResolvedContext is the output of resolution. It is consumed by every
// downstream stage and never mutated after creation.
type ResolvedContext struct {
	Domain    Domain    `json:"domain"`
	Archetype Archetype `json:"archetype"`
}

// WarnLogger is the capability the resolver needs to make the fallback path
// observable. Unknown concerns are expected in production, so the miss is a
// warning, never an error.
type WarnLogger interface {
	Warn(format string, args ...interface{})
}
