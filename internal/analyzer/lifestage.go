package analyzer

import (
	"fmt"

	"github.com/dazzie/quoted/internal/coverage"
	"github.com/dazzie/quoted/internal/profile"
)

// lifeStageGaps flags coverage that no longer fits the household: young
// drivers without uninsured motorist protection, high-value homes without
// umbrella liability, and liability limits too low for the assets behind
// them.
func (a *Analyzer) lifeStageGaps(p profile.QuoteProfile, doc coverage.Document) []Gap {
	thr := a.rules.Thresholds
	var gaps []Gap

	if doc.Auto != nil && !doc.Auto.UninsuredMotorist && hasYoungDriver(p, thr.YoungDriverAge) {
		gaps = append(gaps, Gap{
			ID:             "young_driver_um",
			Severity:       SeverityWarning,
			Category:       CategoryProtection,
			Title:          "Young driver without uninsured motorist coverage",
			Message:        fmt.Sprintf("A driver on this policy is under %d and the policy has no uninsured motorist coverage.", thr.YoungDriverAge),
			Reasoning:      "Young drivers carry the highest accident exposure, and uninsured motorist coverage is what pays when the other party cannot.",
			Recommendation: "Add uninsured motorist coverage to the auto policy.",
			Priority:       3,
		})
	}

	homeValue := 0
	if p.Risk != nil {
		homeValue = p.Risk.HomeValue
	}

	if homeValue > 0 && !doc.Umbrella {
		gaps = append(gaps, Gap{
			ID:             "umbrella_missing",
			Severity:       SeverityOptimization,
			Category:       CategoryProtection,
			Title:          "No umbrella liability policy",
			Message:        fmt.Sprintf("You own a home valued at $%s with no umbrella liability policy.", dollars(homeValue)),
			Reasoning:      "Homeowners are a primary target in liability suits; an umbrella policy extends protection past the underlying auto and home limits.",
			Recommendation: "Consider a $1M umbrella liability policy.",
			Priority:       4,
		})
	}

	if homeValue > thr.UmbrellaHomeValue && doc.Auto != nil && doc.Auto.LiabilityLimits != "" {
		if limits, err := coverage.ParseLiabilityLimits(doc.Auto.LiabilityLimits); err == nil &&
			limits.BodilyInjuryPerAccident < thr.LiabilityFloor {
			gaps = append(gaps, Gap{
				ID:             "liability_below_assets",
				Severity:       SeverityWarning,
				Category:       CategoryProtection,
				Title:          "Liability limits below asset exposure",
				Message:        fmt.Sprintf("Your home is valued at $%s but your auto liability tops out at $%s per accident.", dollars(homeValue), dollars(limits.BodilyInjuryPerAccident)),
				Reasoning:      "In an at-fault accident, damages past the liability limit can be recovered against home equity.",
				Recommendation: fmt.Sprintf("Raise auto liability to at least $%s per accident.", dollars(thr.LiabilityFloor)),
				Priority:       3,
			})
		}
	}

	return gaps
}

func hasYoungDriver(p profile.QuoteProfile, maxAge int) bool {
	for _, d := range p.Drivers {
		if d.Age > 0 && d.Age < maxAge {
			return true
		}
	}
	return false
}
