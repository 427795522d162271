// Package pipeline wires extraction, merging and completeness scoring into
// the single per-turn operation callers use.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/dazzie/quoted/internal/completeness"
	"github.com/dazzie/quoted/internal/extract"
	"github.com/dazzie/quoted/internal/profile"
)

// Pipeline processes conversation turns into profile updates.
// Stateless and safe for concurrent use.
type Pipeline struct {
	extractor *extract.Extractor
}

// New creates a Pipeline around the given extractor.
func New(e *extract.Extractor) *Pipeline {
	return &Pipeline{extractor: e}
}

// TurnResult is the outcome of processing one batch of turns.
type TurnResult struct {
	Profile      profile.QuoteProfile      `json:"profile"`
	Completeness completeness.Completeness `json:"completeness"`

	// NextQuestion is empty once there is nothing left worth asking.
	NextQuestion completeness.FieldID `json:"nextQuestion,omitempty"`
}

// ProcessTurns extracts facts from the transcript, merges them into the
// current profile, applies customer-profile defaults, and rescores. The
// transcript is expected to be the full conversation so far; extraction is
// idempotent against facts the profile already holds.
func (pl *Pipeline) ProcessTurns(current profile.QuoteProfile, turns []extract.Turn, hint *profile.CustomerHint) (TurnResult, error) {
	facts := pl.extractor.Extract(turns, current, hint)

	next, err := profile.Merge(current, facts)
	if err != nil {
		return TurnResult{}, fmt.Errorf("process turns: %w", err)
	}
	next = profile.ApplyCustomerDefaults(next, hint)

	comp := completeness.Evaluate(next)
	question, _ := completeness.Next(comp)

	slog.Debug("processed turns",
		"turns", len(turns),
		"score", comp.Score,
		"missing_required", len(comp.MissingRequired),
		"ready", comp.ReadyForQuote,
		"next_question", string(question))

	return TurnResult{
		Profile:      next,
		Completeness: comp,
		NextQuestion: question,
	}, nil
}
