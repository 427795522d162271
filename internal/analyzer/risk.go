package analyzer

import (
	"fmt"

	"github.com/dazzie/quoted/internal/coverage"
	"github.com/dazzie/quoted/internal/profile"
)

// riskGaps matches location risk scores against the coverages on the
// document. All rules need a risk assessment on the profile; without one
// they skip entirely.
func (a *Analyzer) riskGaps(p profile.QuoteProfile, doc coverage.Document) []Gap {
	if p.Risk == nil {
		return nil
	}
	risk := p.Risk
	thr := a.rules.Thresholds

	var gaps []Gap

	if risk.EarthquakeScore > thr.EarthquakeRisk && missingEarthquake(doc) {
		gaps = append(gaps, Gap{
			ID:             "earthquake_unprotected",
			Severity:       SeverityWarning,
			Category:       CategoryProtection,
			Title:          "High earthquake risk without earthquake coverage",
			Message:        fmt.Sprintf("Your area's earthquake risk score is %.2f and your policy has no earthquake coverage.", risk.EarthquakeScore),
			Reasoning:      "Standard home and renters policies exclude earthquake damage; in a high-risk zone that exclusion is the single largest uncovered exposure.",
			Recommendation: "Add an earthquake endorsement or a standalone earthquake policy.",
			Priority:       2,
		})
	}

	if risk.FloodScore > thr.FloodRisk && missingFlood(doc) {
		gaps = append(gaps, Gap{
			ID:             "flood_unprotected",
			Severity:       SeverityWarning,
			Category:       CategoryProtection,
			Title:          "High flood risk without flood coverage",
			Message:        fmt.Sprintf("Your area's flood risk score is %.2f and your policy has no flood coverage.", risk.FloodScore),
			Reasoning:      "Flood damage is excluded from standard policies and federal assistance rarely covers rebuilding costs.",
			Recommendation: "Add flood coverage, through NFIP or a private flood policy.",
			Priority:       2,
		})
	}

	if risk.WildfireScore > thr.WildfireRisk && doc.Home != nil && !doc.Home.ExtendedReplacementCost {
		gaps = append(gaps, Gap{
			ID:             "wildfire_replacement_cost",
			Severity:       SeverityWarning,
			Category:       CategoryProtection,
			Title:          "Wildfire zone without extended replacement cost",
			Message:        fmt.Sprintf("Your area's wildfire risk score is %.2f and your dwelling coverage lacks extended replacement cost.", risk.WildfireScore),
			Reasoning:      "After a regional wildfire, rebuilding costs spike well past standard dwelling limits; extended replacement cost absorbs that surge.",
			Recommendation: "Add an extended replacement cost endorsement to the dwelling coverage.",
			Priority:       3,
		})
	}

	if risk.CrimeScore > thr.CrimeRisk && doc.Auto != nil && !doc.Auto.Comprehensive {
		gaps = append(gaps, Gap{
			ID:             "theft_unprotected",
			Severity:       SeverityWarning,
			Category:       CategoryProtection,
			Title:          "High-crime area without comprehensive coverage",
			Message:        fmt.Sprintf("Your area's crime risk score is %.2f and your auto policy has no comprehensive coverage.", risk.CrimeScore),
			Reasoning:      "Vehicle theft and vandalism are only covered under comprehensive; liability-only coverage leaves the vehicle itself exposed.",
			Recommendation: "Add comprehensive coverage to the auto policy.",
			Priority:       3,
		})
	}

	return gaps
}

func missingEarthquake(doc coverage.Document) bool {
	switch {
	case doc.Home != nil:
		return !doc.Home.Earthquake
	case doc.Renters != nil:
		return !doc.Renters.Earthquake
	}
	return false
}

func missingFlood(doc coverage.Document) bool {
	switch {
	case doc.Home != nil:
		return !doc.Home.Flood
	case doc.Renters != nil:
		return !doc.Renters.Flood
	}
	return false
}
