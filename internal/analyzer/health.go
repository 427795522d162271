package analyzer

// ScoreHealth collapses a gap list into a 0-100 coverage health score.
// Each critical gap costs 30 points, each warning 15, each optimization 5,
// clamped at zero.
func ScoreHealth(gaps []Gap) int {
	score := 100
	for _, g := range gaps {
		switch g.Severity {
		case SeverityCritical:
			score -= 30
		case SeverityWarning:
			score -= 15
		case SeverityOptimization:
			score -= 5
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}
