package analyzer

import (
	"fmt"
	"math"

	"github.com/dazzie/quoted/internal/coverage"
)

// financialGaps estimates premium savings from requalifying the policy.
// Requires a parseable premium on the document; a blank or garbled premium
// simply yields no finding.
func (a *Analyzer) financialGaps(doc coverage.Document) []Gap {
	if doc.TotalPremium == "" {
		return nil
	}
	premium, err := coverage.ParseDollars(doc.TotalPremium)
	if err != nil || premium <= 0 {
		return nil
	}

	savings := math.Round(a.rules.Thresholds.SavingsRate * float64(premium))
	return []Gap{{
		ID:               "premium_optimization",
		Severity:         SeverityOptimization,
		Category:         CategoryCost,
		Title:            "Premium likely above market",
		Message:          fmt.Sprintf("You pay $%s per year; comparable coverage commonly runs about $%s less after requalification.", dollars(premium), dollars(int(savings))),
		Reasoning:        "Carriers reprice risk on renewal history, not current market rates, so long-held policies drift above what a fresh quote returns.",
		Recommendation:   "Requote the policy with current household details to capture the discount.",
		PotentialSavings: savings,
		Priority:         3,
	}}
}
