package analyzer

import (
	"testing"
	"time"

	"github.com/dazzie/quoted/internal/coverage"
	"github.com/dazzie/quoted/internal/profile"
	"github.com/dazzie/quoted/internal/rules"
)

func newTestAnalyzer() *Analyzer {
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return NewWithClock(rules.Default(), func() time.Time { return fixed })
}

func caProfile() profile.QuoteProfile {
	return profile.QuoteProfile{
		Basics:  profile.Basics{State: "CA", DriverCount: 1},
		Drivers: []profile.DriverProfile{{Age: 35}},
	}
}

func TestComplianceBelowStateMinimum(t *testing.T) {
	a := newTestAnalyzer()
	docs := []coverage.Document{{
		Kind: coverage.KindAuto,
		Auto: &coverage.AutoCoverage{LiabilityLimits: "10/20/3"},
	}}

	res := a.Analyze(caProfile(), docs)

	var criticals []Gap
	for _, g := range res.Gaps {
		if g.Severity == SeverityCritical {
			criticals = append(criticals, g)
		}
	}
	if len(criticals) != 2 {
		t.Fatalf("got %d critical gaps %+v, want 2", len(criticals), criticals)
	}
	// Both bodily injury limits are short, but bodily injury is one
	// compliance dimension: one gap, alongside the property damage gap.
	if criticals[0].ID != "bodily_injury_below_minimum" {
		t.Errorf("first critical = %q", criticals[0].ID)
	}
	if criticals[1].ID != "property_damage_below_minimum" {
		t.Errorf("second critical = %q", criticals[1].ID)
	}
	for _, g := range criticals {
		if g.Priority != 1 {
			t.Errorf("%s priority = %d, want 1", g.ID, g.Priority)
		}
		if g.Source == "" {
			t.Errorf("%s has no citation", g.ID)
		}
		if g.PotentialSavings >= 0 {
			t.Errorf("%s savings = %v, closing a compliance gap costs money", g.ID, g.PotentialSavings)
		}
	}
	if len(res.Citations) != 1 {
		t.Errorf("Citations = %v, want the one statute deduplicated", res.Citations)
	}
}

func TestComplianceCompliantPolicy(t *testing.T) {
	a := newTestAnalyzer()
	docs := []coverage.Document{{
		Kind: coverage.KindAuto,
		Auto: &coverage.AutoCoverage{LiabilityLimits: "100/300/50", UninsuredMotorist: true},
	}}
	res := a.Analyze(caProfile(), docs)
	for _, g := range res.Gaps {
		if g.Category == CategoryCompliance {
			t.Errorf("unexpected compliance gap %q", g.ID)
		}
	}
}

func TestComplianceUnknownStateSkips(t *testing.T) {
	a := newTestAnalyzer()
	p := caProfile()
	p.Basics.State = ""
	docs := []coverage.Document{{
		Kind: coverage.KindAuto,
		Auto: &coverage.AutoCoverage{LiabilityLimits: "10/20/3"},
	}}
	res := a.Analyze(p, docs)
	for _, g := range res.Gaps {
		if g.Category == CategoryCompliance {
			t.Errorf("compliance gap %q without a known state", g.ID)
		}
	}
}

func TestComplianceUnparseableLimitsStillChecksMandates(t *testing.T) {
	a := newTestAnalyzer()
	p := caProfile()
	p.Basics.State = "NY" // PIP and UM both required
	docs := []coverage.Document{{
		Kind: coverage.KindAuto,
		Auto: &coverage.AutoCoverage{LiabilityLimits: "full coverage"},
	}}
	res := a.Analyze(p, docs)

	got := map[string]bool{}
	for _, g := range res.Gaps {
		got[g.ID] = true
	}
	if got["bodily_injury_below_minimum"] || got["property_damage_below_minimum"] {
		t.Error("limit gaps emitted from an unparseable limit string")
	}
	if !got["pip_missing"] || !got["um_missing"] {
		t.Errorf("gaps = %v, want pip_missing and um_missing", got)
	}
}

func TestRiskGaps(t *testing.T) {
	a := newTestAnalyzer()
	p := caProfile()
	p.Risk = &profile.RiskAssessment{
		EarthquakeScore: 0.9,
		FloodScore:      0.8,
		WildfireScore:   0.75,
		CrimeScore:      0.8,
	}

	t.Run("home document", func(t *testing.T) {
		docs := []coverage.Document{{
			Kind: coverage.KindHome,
			Home: &coverage.HomeCoverage{DwellingLimit: 400000},
		}}
		res := a.Analyze(p, docs)
		want := []string{"earthquake_unprotected", "flood_unprotected", "wildfire_replacement_cost"}
		assertGapIDs(t, res.Gaps, want)
	})

	t.Run("auto document in high crime area", func(t *testing.T) {
		docs := []coverage.Document{{
			Kind: coverage.KindAuto,
			Auto: &coverage.AutoCoverage{LiabilityLimits: "100/300/50", UninsuredMotorist: true},
		}}
		res := a.Analyze(p, docs)
		assertGapIDs(t, res.Gaps, []string{"theft_unprotected"})
	})

	t.Run("no risk assessment skips", func(t *testing.T) {
		docs := []coverage.Document{{
			Kind: coverage.KindHome,
			Home: &coverage.HomeCoverage{},
		}}
		res := a.Analyze(caProfile(), docs)
		if len(res.Gaps) != 0 {
			t.Errorf("gaps = %+v, want none without risk scores", res.Gaps)
		}
	})

	t.Run("below thresholds stays quiet", func(t *testing.T) {
		calm := caProfile()
		calm.Risk = &profile.RiskAssessment{EarthquakeScore: 0.3, FloodScore: 0.2}
		docs := []coverage.Document{{
			Kind: coverage.KindHome,
			Home: &coverage.HomeCoverage{},
		}}
		res := a.Analyze(calm, docs)
		if len(res.Gaps) != 0 {
			t.Errorf("gaps = %+v, want none below thresholds", res.Gaps)
		}
	})
}

func TestYoungDriverUM(t *testing.T) {
	a := newTestAnalyzer()
	p := caProfile()
	p.Basics.DriverCount = 2
	p.Drivers = []profile.DriverProfile{{Age: 48}, {Age: 19}}

	docs := []coverage.Document{{
		Kind: coverage.KindAuto,
		Auto: &coverage.AutoCoverage{LiabilityLimits: "100/300/50"},
	}}
	res := a.Analyze(p, docs)

	found := false
	for _, g := range res.Gaps {
		if g.ID == "young_driver_um" {
			found = true
			if g.Priority != 3 || g.Severity != SeverityWarning {
				t.Errorf("young_driver_um = priority %d severity %s", g.Priority, g.Severity)
			}
		}
	}
	if !found {
		t.Errorf("gaps = %+v, want young_driver_um", res.Gaps)
	}

	// UM present: no gap.
	docs[0].Auto.UninsuredMotorist = true
	res = a.Analyze(p, docs)
	for _, g := range res.Gaps {
		if g.ID == "young_driver_um" {
			t.Error("young_driver_um emitted despite UM coverage")
		}
	}
}

func TestUmbrellaAndLiabilityFloor(t *testing.T) {
	a := newTestAnalyzer()
	p := caProfile()
	p.Risk = &profile.RiskAssessment{HomeValue: 750000}

	docs := []coverage.Document{{
		Kind: coverage.KindAuto,
		Auto: &coverage.AutoCoverage{LiabilityLimits: "50/100/50", UninsuredMotorist: true},
	}}
	res := a.Analyze(p, docs)
	assertGapIDs(t, res.Gaps, []string{"liability_below_assets", "umbrella_missing"})

	// With an umbrella and strong limits, both findings disappear.
	docs[0].Umbrella = true
	docs[0].Auto.LiabilityLimits = "250/500/100"
	res = a.Analyze(p, docs)
	if len(res.Gaps) != 0 {
		t.Errorf("gaps = %+v, want none", res.Gaps)
	}
}

func TestFinancialSavings(t *testing.T) {
	a := newTestAnalyzer()
	docs := []coverage.Document{{
		Kind:         coverage.KindAuto,
		TotalPremium: "$1,200",
		Auto:         &coverage.AutoCoverage{LiabilityLimits: "100/300/50", UninsuredMotorist: true},
	}}
	res := a.Analyze(caProfile(), docs)

	var gap *Gap
	for i := range res.Gaps {
		if res.Gaps[i].ID == "premium_optimization" {
			gap = &res.Gaps[i]
		}
	}
	if gap == nil {
		t.Fatalf("gaps = %+v, want premium_optimization", res.Gaps)
	}
	if gap.PotentialSavings != 240 {
		t.Errorf("PotentialSavings = %v, want 240 (20%% of 1200)", gap.PotentialSavings)
	}
	if gap.Severity != SeverityOptimization || gap.Category != CategoryCost {
		t.Errorf("gap = %+v, want cost optimization", gap)
	}
}

func TestFinancialSkipsWithoutPremium(t *testing.T) {
	a := newTestAnalyzer()
	docs := []coverage.Document{
		{Kind: coverage.KindAuto, Auto: &coverage.AutoCoverage{LiabilityLimits: "100/300/50", UninsuredMotorist: true}},
		{Kind: coverage.KindAuto, TotalPremium: "a lot", Auto: &coverage.AutoCoverage{LiabilityLimits: "100/300/50", UninsuredMotorist: true}},
	}
	res := a.Analyze(caProfile(), docs)
	for _, g := range res.Gaps {
		if g.ID == "premium_optimization" {
			t.Error("premium_optimization emitted without a parseable premium")
		}
	}
}

func TestAnalyzeOrdersGaps(t *testing.T) {
	a := newTestAnalyzer()
	p := caProfile()
	p.Drivers = []profile.DriverProfile{{Age: 22}}
	docs := []coverage.Document{{
		Kind:         coverage.KindAuto,
		TotalPremium: "$1,200",
		Auto:         &coverage.AutoCoverage{LiabilityLimits: "10/20/3"},
	}}
	res := a.Analyze(p, docs)

	for i := 1; i < len(res.Gaps); i++ {
		prev, cur := res.Gaps[i-1], res.Gaps[i]
		if prev.Priority > cur.Priority {
			t.Fatalf("gap %q (priority %d) sorted after %q (priority %d)", prev.ID, prev.Priority, cur.ID, cur.Priority)
		}
		if prev.Priority == cur.Priority && prev.ID > cur.ID {
			t.Fatalf("ties not broken by ID: %q before %q", prev.ID, cur.ID)
		}
	}
	if res.Gaps[0].Severity != SeverityCritical {
		t.Errorf("first gap = %+v, want a critical", res.Gaps[0])
	}
	if res.AnalyzedAt.IsZero() {
		t.Error("AnalyzedAt not set")
	}
	if res.Summary == "" {
		t.Error("Summary empty")
	}
}

func TestScoreHealth(t *testing.T) {
	tests := []struct {
		name string
		gaps []Gap
		want int
	}{
		{"no gaps", nil, 100},
		{"one critical", []Gap{{Severity: SeverityCritical}}, 70},
		{"one of each", []Gap{
			{Severity: SeverityCritical},
			{Severity: SeverityWarning},
			{Severity: SeverityOptimization},
		}, 50},
		{"clamped at zero", []Gap{
			{Severity: SeverityCritical}, {Severity: SeverityCritical},
			{Severity: SeverityCritical}, {Severity: SeverityCritical},
		}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreHealth(tt.gaps); got != tt.want {
				t.Errorf("ScoreHealth = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSummaryBands(t *testing.T) {
	tests := []struct {
		name string
		gaps []Gap
		want string
	}{
		{"no gaps", nil,
			"Coverage health 100/100: no gaps found."},
		{"one warning still healthy", []Gap{{Severity: SeverityWarning}},
			"Coverage health 85/100: coverage is in good shape with 0 critical issue(s), 1 warning(s), 0 optimization(s)."},
		{"mid band", []Gap{
			{Severity: SeverityOptimization}, {Severity: SeverityOptimization},
			{Severity: SeverityOptimization}, {Severity: SeverityOptimization},
			{Severity: SeverityOptimization}, {Severity: SeverityOptimization},
		},
			"Coverage health 70/100: some gaps are worth reviewing, with 0 critical issue(s), 0 warning(s), 6 optimization(s)."},
		{"low band", []Gap{
			{Severity: SeverityCritical}, {Severity: SeverityCritical},
		},
			"Coverage health 40/100: significant gaps need attention, with 2 critical issue(s), 0 warning(s), 0 optimization(s)."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := summarize(ScoreHealth(tt.gaps), tt.gaps); got != tt.want {
				t.Errorf("summarize = %q, want %q", got, tt.want)
			}
		})
	}
}

func assertGapIDs(t *testing.T, gaps []Gap, want []string) {
	t.Helper()
	if len(gaps) != len(want) {
		t.Fatalf("got %d gaps %+v, want IDs %v", len(gaps), gaps, want)
	}
	for i, id := range want {
		if gaps[i].ID != id {
			t.Errorf("gap[%d] = %q, want %q", i, gaps[i].ID, id)
		}
	}
}
