package archetype

import "strings"

// FallbackArchetype is returned when no table row matches.
const FallbackArchetype = ArchetypeGeneralSurveillance

// FallbackDomain is paired with the fallback archetype when the caller
// supplied no domain hint.
const FallbackDomain = DomainGeneralMedical

// Resolver maps a free-text concern identifier to a (domain, archetype) pair
// via an ordered rule table. It is fully deterministic given the same table
// and input and has no side effects beyond the injected warn logger.
type Resolver struct {
	table []Mapping
	log   WarnLogger
}

// NewResolver creates a resolver over the given ordered table.
func NewResolver(table []Mapping, log WarnLogger) *Resolver {
	return &Resolver{table: table, log: log}
}

// NewDefaultResolver creates a resolver over the production table.
func NewDefaultResolver(log WarnLogger) *Resolver {
	return NewResolver(DefaultTable(), log)
}

// Resolve scans the table top to bottom; the first row whose matcher equals
// (exact case) or matches (pattern case) the concern wins. A miss falls back
// to FallbackArchetype paired with the hint domain if supplied, else
// FallbackDomain, and emits a warning. Resolve never fails.
func (r *Resolver) Resolve(concern string, hint Domain) ResolvedContext {
	normalized := strings.ToUpper(strings.TrimSpace(concern))

	for _, row := range r.table {
		if row.Matches(normalized) {
			return ResolvedContext{Domain: row.Domain, Archetype: row.Archetype}
		}
	}

	domain := FallbackDomain
	if hint != "" {
		domain = hint
	}
	if r.log != nil {
		r.log.Warn("no archetype mapping for concern %q, falling back to %s/%s", concern, domain, FallbackArchetype)
	}
	return ResolvedContext{Domain: domain, Archetype: FallbackArchetype}
}

// Table returns the resolver's table for inspection (tests pin its order).
func (r *Resolver) Table() []Mapping {
	return r.table
}
