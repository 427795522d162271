// Package analyzer runs deterministic gap analysis over a quote profile and
// the customer's existing policy documents. Every finding is rule-driven:
// same inputs, same gaps, no inference.
package analyzer

import "time"

// Severity orders findings by how urgently they need attention.
type Severity string

const (
	SeverityCritical     Severity = "critical"
	SeverityWarning      Severity = "warning"
	SeverityOptimization Severity = "optimization"
)

// Category groups findings by what kind of problem they describe.
type Category string

const (
	CategoryCompliance Category = "compliance"
	CategoryProtection Category = "protection"
	CategoryCost       Category = "cost"
)

// Gap is one finding. IDs are stable identifiers a caller can key UI or
// dedup logic on; two runs over the same inputs produce the same IDs.
type Gap struct {
	ID       string   `json:"id"`
	Severity Severity `json:"severity"`
	Category Category `json:"category"`

	Title          string `json:"title"`
	Message        string `json:"message"`
	Reasoning      string `json:"reasoning"`
	Recommendation string `json:"recommendation"`

	// Source cites the statute or rule behind the finding, when one exists.
	Source string `json:"source,omitempty"`

	// PotentialSavings is the estimated annual dollar impact. Positive
	// means money saved by acting; negative means expected added premium
	// cost to close the gap.
	PotentialSavings float64 `json:"potentialSavings,omitempty"`

	// Priority ranks gaps for presentation, 1 is most urgent.
	Priority int `json:"priority"`
}

// Analysis is the full result of one analyzer run.
type Analysis struct {
	HealthScore int       `json:"healthScore"`
	Gaps        []Gap     `json:"gaps"`
	Summary     string    `json:"summary"`
	Citations   []string  `json:"citations,omitempty"`
	AnalyzedAt  time.Time `json:"analyzedAt"`
}
