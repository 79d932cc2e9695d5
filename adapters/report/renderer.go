package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"hacplanner/domain/plan"
	"hacplanner/internal/quality"
)

// Renderer produces reviewer-facing plan reports, as markdown or HTML.
type Renderer struct{}

// NewRenderer creates a report renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Markdown renders the plan and its verdict as a markdown document.
func (r *Renderer) Markdown(p *plan.Plan, v *quality.Verdict) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Surveillance Plan: %s\n\n", p.Metadata.Concern)
	fmt.Fprintf(&b, "- **Plan ID:** %s\n", p.Metadata.PlanningID)
	fmt.Fprintf(&b, "- **Domain:** %s\n", p.Metadata.Domain)
	fmt.Fprintf(&b, "- **Archetype:** %s\n", p.Metadata.Archetype)
	fmt.Fprintf(&b, "- **Mode:** %s\n", p.Metadata.Mode)
	fmt.Fprintf(&b, "- **Category:** %s\n\n", p.Category)

	if p.Narrative != "" {
		b.WriteString("## Case Narrative\n\n")
		b.WriteString(p.Narrative)
		b.WriteString("\n\n")
	}

	if len(p.Signals) > 0 {
		b.WriteString("## Signals\n\n")
		b.WriteString("| # | Signal | Trigger | Sourced |\n")
		b.WriteString("|---|--------|---------|--------|\n")
		for i, s := range p.Signals {
			sourced := ""
			if s.Sourced {
				sourced = "yes"
			}
			fmt.Fprintf(&b, "| %d | %s | `%s` | %s |\n", i+1, s.Name, s.Trigger, sourced)
		}
		b.WriteString("\n")
	}

	if len(p.Questions) > 0 {
		b.WriteString("## Abstraction Questions\n\n")
		for i, q := range p.Questions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q.Text)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Criteria Evaluation\n\n")
	fmt.Fprintf(&b, "- **Determination:** %s\n", p.Criteria.Determination)
	if p.Criteria.TotalCriteria > 0 {
		fmt.Fprintf(&b, "- **Criteria met:** %d of %d\n", p.Criteria.CriteriaMetCount, p.Criteria.TotalCriteria)
	}
	b.WriteString("\n")

	if len(p.Exclusions) > 0 {
		b.WriteString("## Exclusion Analysis\n\n")
		for _, e := range p.Exclusions {
			fmt.Fprintf(&b, "- **%s** — %s", e.Name, e.Status)
			if e.Rationale != "" {
				fmt.Fprintf(&b, " (%s)", e.Rationale)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if v != nil {
		b.WriteString("## Quality Assessment\n\n")
		fmt.Fprintf(&b, "- **Overall:** %.2f (grade %s)\n", v.OverallScore, v.Grade)
		fmt.Fprintf(&b, "- **Deployment ready:** %t\n\n", v.DeploymentReady)

		b.WriteString("| Dimension | Score | Rationale |\n")
		b.WriteString("|-----------|-------|----------|\n")
		for _, d := range sortedDimensions(v) {
			ds := v.Dimensions[d]
			fmt.Fprintf(&b, "| %s | %.2f | %s |\n", d, ds.Score, ds.Rationale)
		}
		b.WriteString("\n")

		if len(v.Recommendations) > 0 {
			b.WriteString("### Recommendations\n\n")
			for _, rec := range v.Recommendations {
				fmt.Fprintf(&b, "- %s\n", rec)
			}
			b.WriteString("\n")
		}
	}

	if len(p.Provenance.Sources) > 0 {
		b.WriteString("## Provenance\n\n")
		for _, s := range p.Provenance.Sources {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	return b.String()
}

// HTML renders the markdown report as an HTML fragment.
func (r *Renderer) HTML(p *plan.Plan, v *quality.Verdict) []byte {
	md := r.Markdown(p, v)

	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	mdParser := parser.NewWithExtensions(extensions)
	doc := mdParser.Parse([]byte(md))

	htmlRenderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, htmlRenderer)
}

func sortedDimensions(v *quality.Verdict) []quality.Dimension {
	dims := make([]quality.Dimension, 0, len(v.Dimensions))
	for d := range v.Dimensions {
		dims = append(dims, d)
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })
	return dims
}
