// Package rules holds the regulatory and advisory tables the analyzer runs
// against. The tables are plain data injected into the analyzer, so tests
// and deployments can swap them without touching analysis logic.
package rules

// StateMinimum is one state's mandatory auto liability floor, in whole
// dollars, plus the coverages the state mandates beyond liability.
type StateMinimum struct {
	BodilyInjuryPerPerson   int
	BodilyInjuryPerAccident int
	PropertyDamage          int
	PIPRequired             bool
	UMRequired              bool

	// Citation names the statute or regulation the minimum comes from,
	// surfaced to the customer alongside compliance findings.
	Citation string
}

// Thresholds are the advisory trigger points for risk, life-stage and
// financial findings.
type Thresholds struct {
	EarthquakeRisk float64
	FloodRisk      float64
	WildfireRisk   float64
	CrimeRisk      float64

	YoungDriverAge    int
	UmbrellaHomeValue int
	LiabilityFloor    int

	// SavingsRate is the assumed achievable premium reduction when a
	// customer requalifies, as a fraction of the current premium.
	SavingsRate float64
}

// Set is a complete rule configuration.
type Set struct {
	StateMinimums map[string]StateMinimum
	Thresholds    Thresholds
}

// MinimumFor looks up a state's liability floor by two-letter code.
func (s Set) MinimumFor(state string) (StateMinimum, bool) {
	m, ok := s.StateMinimums[state]
	return m, ok
}

// Default returns the built-in rule set.
func Default() Set {
	return Set{
		StateMinimums: map[string]StateMinimum{
			"AZ": {25000, 50000, 15000, false, false, "A.R.S. § 28-4009"},
			"CA": {15000, 30000, 5000, false, false, "Cal. Ins. Code § 11580.1b"},
			"CO": {25000, 50000, 15000, false, false, "C.R.S. § 10-4-620"},
			"FL": {10000, 20000, 10000, true, false, "Fla. Stat. § 324.022"},
			"GA": {25000, 50000, 25000, false, false, "O.C.G.A. § 33-7-11"},
			"IL": {25000, 50000, 20000, false, true, "215 ILCS 5/143a"},
			"MA": {20000, 40000, 5000, true, true, "M.G.L. c. 90 § 34A"},
			"MD": {30000, 60000, 15000, true, true, "Md. Code, Transp. § 17-103"},
			"MI": {50000, 100000, 10000, true, false, "MCL § 500.3101"},
			"MN": {30000, 60000, 10000, true, true, "Minn. Stat. § 65B.49"},
			"NC": {30000, 60000, 25000, false, true, "N.C.G.S. § 20-279.21"},
			"NJ": {25000, 50000, 25000, true, true, "N.J.S.A. 39:6A-3"},
			"NV": {25000, 50000, 20000, false, false, "NRS § 485.185"},
			"NY": {25000, 50000, 10000, true, true, "N.Y. Ins. Law § 3420"},
			"OH": {25000, 50000, 25000, false, false, "R.C. § 4509.51"},
			"OR": {25000, 50000, 20000, true, true, "ORS § 806.070"},
			"PA": {15000, 30000, 5000, true, false, "75 Pa.C.S. § 1702"},
			"TX": {30000, 60000, 25000, false, false, "Tex. Transp. Code § 601.072"},
			"VA": {30000, 60000, 20000, false, true, "Va. Code § 46.2-472"},
			"WA": {25000, 50000, 10000, false, false, "RCW § 46.29.090"},
		},
		Thresholds: Thresholds{
			EarthquakeRisk:    0.8,
			FloodRisk:         0.7,
			WildfireRisk:      0.7,
			CrimeRisk:         0.7,
			YoungDriverAge:    25,
			UmbrellaHomeValue: 500000,
			LiabilityFloor:    300000,
			SavingsRate:       0.20,
		},
	}
}
