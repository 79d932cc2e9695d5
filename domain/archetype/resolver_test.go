package archetype

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingLogger struct {
	warnings []string
}

func (c *capturingLogger) Warn(format string, args ...interface{}) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func TestResolveExactMatch(t *testing.T) {
	r := NewDefaultResolver(nil)

	ctx := r.Resolve("CLABSI", "")
	assert.Equal(t, DomainInfectionPrevention, ctx.Domain)
	assert.Equal(t, ArchetypePreventabilityDetective, ctx.Archetype)
}

func TestResolveCaseInsensitive(t *testing.T) {
	r := NewDefaultResolver(nil)

	upper := r.Resolve("CAUTI", "")
	lower := r.Resolve("cauti", "")
	mixed := r.Resolve("  CaUtI ", "")

	assert.Equal(t, upper, lower)
	assert.Equal(t, upper, mixed)
}

func TestResolveMetricPrefixPatterns(t *testing.T) {
	r := NewDefaultResolver(nil)

	tests := []struct {
		concern string
		domain  Domain
	}{
		{"C41.1a", DomainEndocrinology},
		{"E12", DomainCardiology},
		{"I27", DomainOrthopedics},
		{"L3", DomainBehavioralHealth},
	}

	for _, tt := range tests {
		t.Run(tt.concern, func(t *testing.T) {
			ctx := r.Resolve(tt.concern, "")
			assert.Equal(t, tt.domain, ctx.Domain)
			assert.Equal(t, ArchetypeMetricAbstractor, ctx.Archetype)
		})
	}
}

// TestResolveFirstMatchWins pins the order-sensitivity invariant: when two
// rows match the same concern, the earlier row always wins.
func TestResolveFirstMatchWins(t *testing.T) {
	table := []Mapping{
		Pattern(`^SSI`, DomainInfectionPrevention, ArchetypePreventabilityDetective, "first"),
		Exact("SSI_DEEP", DomainPatientSafety, ArchetypeExclusionAuditor, "second, shadowed"),
	}
	r := NewResolver(table, nil)

	// "SSI_DEEP" matches both rows; the pattern row is listed first.
	ctx := r.Resolve("SSI_DEEP", "")
	assert.Equal(t, DomainInfectionPrevention, ctx.Domain)
	assert.Equal(t, ArchetypePreventabilityDetective, ctx.Archetype)

	// Reversing the table flips the result, which is exactly why table order
	// is pinned.
	reversed := []Mapping{table[1], table[0]}
	ctxRev := NewResolver(reversed, nil).Resolve("SSI_DEEP", "")
	assert.Equal(t, DomainPatientSafety, ctxRev.Domain)
}

// TestDefaultTableOrder pins the production table head so an accidental
// reorder fails loudly.
func TestDefaultTableOrder(t *testing.T) {
	table := DefaultTable()
	require.GreaterOrEqual(t, len(table), 18)

	assert.Equal(t, "CLABSI", table[0].Token)
	assert.Equal(t, "CAUTI", table[1].Token)
	assert.Equal(t, "SSI", table[2].Token)
	assert.Equal(t, "VAE", table[3].Token)

	// Exact rows precede all pattern rows except the free-text catch-all.
	sawPattern := false
	for i, row := range table[:len(table)-1] {
		if row.Kind == MatchPattern {
			sawPattern = true
		}
		if sawPattern && row.Kind == MatchExact {
			t.Fatalf("exact row at index %d after first pattern row", i)
		}
	}
}

func TestResolveFallbackWithHint(t *testing.T) {
	logger := &capturingLogger{}
	r := NewDefaultResolver(logger)

	ctx := r.Resolve("TOTALLY_UNKNOWN_CONCERN", DomainNephrology)
	assert.Equal(t, DomainNephrology, ctx.Domain)
	assert.Equal(t, FallbackArchetype, ctx.Archetype)
	require.Len(t, logger.warnings, 1)
	assert.Contains(t, logger.warnings[0], "TOTALLY_UNKNOWN_CONCERN")
}

func TestResolveFallbackWithoutHint(t *testing.T) {
	logger := &capturingLogger{}
	r := NewDefaultResolver(logger)

	ctx := r.Resolve("TOTALLY_UNKNOWN_CONCERN", "")
	assert.Equal(t, FallbackDomain, ctx.Domain)
	assert.Equal(t, FallbackArchetype, ctx.Archetype)
	assert.Len(t, logger.warnings, 1)
}

// TestResolveNeverPanicsOnNilLogger exercises the miss path without a logger.
func TestResolveNeverPanicsOnNilLogger(t *testing.T) {
	r := NewDefaultResolver(nil)
	assert.NotPanics(t, func() {
		r.Resolve("???", "")
	})
}
