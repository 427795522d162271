// Package coverage defines the policy document model the analyzer consumes,
// plus parsers for the loosely formatted limit and dollar strings those
// documents carry.
package coverage

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the policy line a document describes.
type Kind string

const (
	KindAuto    Kind = "auto"
	KindHome    Kind = "home"
	KindRenters Kind = "renters"
	KindLife    Kind = "life"
)

// Document is one existing policy as the customer holds it today. Exactly
// one of the per-line sections is expected to be set, matching Kind.
type Document struct {
	Kind         Kind   `json:"kind"`
	Carrier      string `json:"carrier,omitempty"`
	PolicyNumber string `json:"policyNumber,omitempty"`

	// TotalPremium is the annual premium as written on the document,
	// e.g. "$1,200" or "1200".
	TotalPremium string `json:"totalPremium,omitempty"`

	// Umbrella marks an umbrella liability policy attached to this line.
	Umbrella bool `json:"umbrella,omitempty"`

	Auto    *AutoCoverage    `json:"auto,omitempty"`
	Home    *HomeCoverage    `json:"home,omitempty"`
	Renters *RentersCoverage `json:"renters,omitempty"`
	Life    *LifeCoverage    `json:"life,omitempty"`
}

// AutoCoverage is the auto section of a policy document.
type AutoCoverage struct {
	// LiabilityLimits is the split-limit string as written, e.g. "15/30/5"
	// or "$15,000/$30,000/$5,000".
	LiabilityLimits string `json:"liabilityLimits,omitempty"`

	UninsuredMotorist bool `json:"uninsuredMotorist,omitempty"`
	PIP               bool `json:"pip,omitempty"`
	Collision         bool `json:"collision,omitempty"`
	Comprehensive     bool `json:"comprehensive,omitempty"`

	CollisionDeductible int  `json:"collisionDeductible,omitempty"`
	Roadside            bool `json:"roadside,omitempty"`
	RentalReimbursement bool `json:"rentalReimbursement,omitempty"`
	GapCoverage         bool `json:"gapCoverage,omitempty"`
}

// HomeCoverage is the homeowners section of a policy document.
type HomeCoverage struct {
	DwellingLimit           int  `json:"dwellingLimit,omitempty"`
	PersonalLiability       int  `json:"personalLiability,omitempty"`
	Earthquake              bool `json:"earthquake,omitempty"`
	Flood                   bool `json:"flood,omitempty"`
	ExtendedReplacementCost bool `json:"extendedReplacementCost,omitempty"`
}

// RentersCoverage is the renters section of a policy document.
type RentersCoverage struct {
	PersonalProperty  int  `json:"personalProperty,omitempty"`
	PersonalLiability int  `json:"personalLiability,omitempty"`
	Earthquake        bool `json:"earthquake,omitempty"`
	Flood             bool `json:"flood,omitempty"`
}

// LifeCoverage is the life section of a policy document.
type LifeCoverage struct {
	FaceAmount int    `json:"faceAmount,omitempty"`
	Term       string `json:"term,omitempty"`
}

// Limits is a parsed split-limit liability declaration, in whole dollars.
type Limits struct {
	BodilyInjuryPerPerson   int
	BodilyInjuryPerAccident int
	PropertyDamage          int
}

// ParseLiabilityLimits reads the split-limit shorthand found on policy
// declarations. Accepted forms include "15/30/5", "15k/30k/5k" and
// "$15,000/$30,000/$5,000". Bare values under 1000 are read as thousands,
// the way the shorthand is written. The property-damage part is optional
// and reads as zero when absent.
func ParseLiabilityLimits(s string) (Limits, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) < 2 || len(parts) > 3 {
		return Limits{}, fmt.Errorf("liability limits %q: want 2 or 3 parts", s)
	}
	vals := make([]int, len(parts))
	for i, part := range parts {
		v, err := parseLimitPart(part)
		if err != nil {
			return Limits{}, fmt.Errorf("liability limits %q: %w", s, err)
		}
		vals[i] = v
	}
	l := Limits{
		BodilyInjuryPerPerson:   vals[0],
		BodilyInjuryPerAccident: vals[1],
	}
	if len(vals) == 3 {
		l.PropertyDamage = vals[2]
	}
	return l, nil
}

func parseLimitPart(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	thousands := false
	if ls := strings.ToLower(s); strings.HasSuffix(ls, "k") {
		thousands = true
		s = s[:len(s)-1]
	}
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("bad limit part %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative limit part %q", s)
	}
	if thousands || n < 1000 {
		n *= 1000
	}
	return n, nil
}

// ParseDollars reads a dollar amount as written on a document ("$1,200",
// "1200", "$1,200.50"). Cents are truncated.
func ParseDollars(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return 0, fmt.Errorf("empty dollar amount")
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad dollar amount %q", s)
	}
	return n, nil
}
