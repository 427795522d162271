package analyzer

import (
	"fmt"
	"sort"
	"time"

	"github.com/dazzie/quoted/internal/coverage"
	"github.com/dazzie/quoted/internal/profile"
	"github.com/dazzie/quoted/internal/rules"
)

// Analyzer evaluates policy documents against a quote profile using an
// injected rule set. Safe for concurrent use.
type Analyzer struct {
	rules rules.Set
	now   func() time.Time
}

// New creates an Analyzer with the given rule set.
func New(rs rules.Set) *Analyzer {
	return &Analyzer{rules: rs, now: time.Now}
}

// NewWithClock creates an Analyzer with a fixed clock, for tests.
func NewWithClock(rs rules.Set, now func() time.Time) *Analyzer {
	return &Analyzer{rules: rs, now: now}
}

// Analyze runs every rule family over the profile and documents and returns
// the ranked findings. The profile supplies household context (state,
// driver ages, risk scores); the documents supply what coverage actually
// exists today. Either side may be sparse: rules that lack their inputs
// skip rather than guess.
func (a *Analyzer) Analyze(p profile.QuoteProfile, docs []coverage.Document) Analysis {
	var gaps []Gap
	for _, doc := range docs {
		gaps = append(gaps, a.complianceGaps(p, doc)...)
		gaps = append(gaps, a.riskGaps(p, doc)...)
		gaps = append(gaps, a.lifeStageGaps(p, doc)...)
		gaps = append(gaps, a.financialGaps(doc)...)
	}

	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].Priority != gaps[j].Priority {
			return gaps[i].Priority < gaps[j].Priority
		}
		return gaps[i].ID < gaps[j].ID
	})

	score := ScoreHealth(gaps)
	return Analysis{
		HealthScore: score,
		Gaps:        gaps,
		Summary:     summarize(score, gaps),
		Citations:   citations(gaps),
		AnalyzedAt:  a.now().UTC(),
	}
}

func citations(gaps []Gap) []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range gaps {
		if g.Source == "" || seen[g.Source] {
			continue
		}
		seen[g.Source] = true
		out = append(out, g.Source)
	}
	sort.Strings(out)
	return out
}

func summarize(score int, gaps []Gap) string {
	var critical, warning, optimization int
	for _, g := range gaps {
		switch g.Severity {
		case SeverityCritical:
			critical++
		case SeverityWarning:
			warning++
		case SeverityOptimization:
			optimization++
		}
	}
	// The band follows the score, not the raw counts, so a single mild
	// warning on an otherwise healthy policy still reads as healthy.
	switch {
	case score >= 80:
		if len(gaps) == 0 {
			return fmt.Sprintf("Coverage health %d/100: no gaps found.", score)
		}
		return fmt.Sprintf("Coverage health %d/100: coverage is in good shape with %d critical issue(s), %d warning(s), %d optimization(s).", score, critical, warning, optimization)
	case score >= 50:
		return fmt.Sprintf("Coverage health %d/100: some gaps are worth reviewing, with %d critical issue(s), %d warning(s), %d optimization(s).", score, critical, warning, optimization)
	default:
		return fmt.Sprintf("Coverage health %d/100: significant gaps need attention, with %d critical issue(s), %d warning(s), %d optimization(s).", score, critical, warning, optimization)
	}
}
