package analyzer

import (
	"fmt"

	"github.com/dazzie/quoted/internal/coverage"
	"github.com/dazzie/quoted/internal/profile"
)

// Estimated annual premium cost of closing each compliance gap. Negative:
// fixing these costs money, it does not save any.
const (
	costRaiseBodilyInjury   = -150
	costRaisePropertyDamage = -75
	costAddPIP              = -120
	costAddUM               = -90
)

// complianceGaps checks an auto document against the profile state's
// mandatory minimums. Bodily injury is one compliance dimension even when
// both the per-person and per-accident limits fall short, so a policy below
// the floor yields one bodily-injury gap, not two.
func (a *Analyzer) complianceGaps(p profile.QuoteProfile, doc coverage.Document) []Gap {
	if doc.Auto == nil {
		return nil
	}
	min, ok := a.rules.MinimumFor(p.Basics.State)
	if !ok {
		return nil
	}

	var gaps []Gap

	if doc.Auto.LiabilityLimits != "" {
		limits, err := coverage.ParseLiabilityLimits(doc.Auto.LiabilityLimits)
		if err == nil {
			if limits.BodilyInjuryPerPerson < min.BodilyInjuryPerPerson ||
				limits.BodilyInjuryPerAccident < min.BodilyInjuryPerAccident {
				gaps = append(gaps, Gap{
					ID:       "bodily_injury_below_minimum",
					Severity: SeverityCritical,
					Category: CategoryCompliance,
					Title:    "Bodily injury liability below state minimum",
					Message: fmt.Sprintf("Your bodily injury limits of $%s/$%s are below %s's required $%s/$%s.",
						dollars(limits.BodilyInjuryPerPerson), dollars(limits.BodilyInjuryPerAccident),
						p.Basics.State, dollars(min.BodilyInjuryPerPerson), dollars(min.BodilyInjuryPerAccident)),
					Reasoning:        "Driving below the state liability floor risks fines, license suspension and personal exposure in an at-fault accident.",
					Recommendation:   fmt.Sprintf("Raise bodily injury liability to at least $%s per person / $%s per accident.", dollars(min.BodilyInjuryPerPerson), dollars(min.BodilyInjuryPerAccident)),
					Source:           min.Citation,
					PotentialSavings: costRaiseBodilyInjury,
					Priority:         1,
				})
			}
			if min.PropertyDamage > 0 && limits.PropertyDamage < min.PropertyDamage {
				gaps = append(gaps, Gap{
					ID:       "property_damage_below_minimum",
					Severity: SeverityCritical,
					Category: CategoryCompliance,
					Title:    "Property damage liability below state minimum",
					Message: fmt.Sprintf("Your property damage limit of $%s is below %s's required $%s.",
						dollars(limits.PropertyDamage), p.Basics.State, dollars(min.PropertyDamage)),
					Reasoning:        "Property damage below the state floor leaves you personally liable for the difference after an at-fault accident.",
					Recommendation:   fmt.Sprintf("Raise property damage liability to at least $%s.", dollars(min.PropertyDamage)),
					Source:           min.Citation,
					PotentialSavings: costRaisePropertyDamage,
					Priority:         1,
				})
			}
		}
	}

	if min.PIPRequired && !doc.Auto.PIP {
		gaps = append(gaps, Gap{
			ID:               "pip_missing",
			Severity:         SeverityCritical,
			Category:         CategoryCompliance,
			Title:            "Personal injury protection missing",
			Message:          fmt.Sprintf("%s requires personal injury protection and your policy does not include it.", p.Basics.State),
			Reasoning:        "PIP is mandatory in this state; a policy without it is not legally compliant.",
			Recommendation:   "Add personal injury protection to the policy.",
			Source:           min.Citation,
			PotentialSavings: costAddPIP,
			Priority:         1,
		})
	}
	if min.UMRequired && !doc.Auto.UninsuredMotorist {
		gaps = append(gaps, Gap{
			ID:               "um_missing",
			Severity:         SeverityCritical,
			Category:         CategoryCompliance,
			Title:            "Uninsured motorist coverage missing",
			Message:          fmt.Sprintf("%s requires uninsured motorist coverage and your policy does not include it.", p.Basics.State),
			Reasoning:        "Uninsured motorist coverage is mandatory in this state; a policy without it is not legally compliant.",
			Recommendation:   "Add uninsured motorist coverage to the policy.",
			Source:           min.Citation,
			PotentialSavings: costAddUM,
			Priority:         1,
		})
	}

	return gaps
}

// dollars formats a whole-dollar amount with thousands separators.
func dollars(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
