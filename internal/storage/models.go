package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Session is one quoting conversation and its accumulated profile snapshot.
// Profile and hint are stored as JSON text; the engine packages own their
// shape, storage only round-trips it.
type Session struct {
	ID          string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ProfileJSON string
	HintJSON    string
}

// Analysis is one persisted gap-analysis run for a session.
type Analysis struct {
	ID           string
	SessionID    string
	CreatedAt    time.Time
	CoverageJSON string // the documents the run was given
	AnalysisJSON string // the full analyzer result
}
