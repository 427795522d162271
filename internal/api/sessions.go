// Package api exposes the quote engine over HTTP and MCP. Sessions are the
// unit of persistence: each holds one conversation's profile snapshot and
// the analyses run against it.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dazzie/quoted/internal/analyzer"
	"github.com/dazzie/quoted/internal/completeness"
	"github.com/dazzie/quoted/internal/coverage"
	"github.com/dazzie/quoted/internal/extract"
	"github.com/dazzie/quoted/internal/pipeline"
	"github.com/dazzie/quoted/internal/profile"
	"github.com/dazzie/quoted/internal/storage"
)

type AppDeps struct {
	Store    *storage.Store
	Pipeline *pipeline.Pipeline
	Analyzer *analyzer.Analyzer
	Token    string
}

// SessionState is the API view of a session.
type SessionState struct {
	ID           string                    `json:"id"`
	Profile      profile.QuoteProfile      `json:"profile"`
	Completeness completeness.Completeness `json:"completeness"`
	NextQuestion completeness.FieldID      `json:"nextQuestion,omitempty"`
	CreatedAt    time.Time                 `json:"createdAt"`
	UpdatedAt    time.Time                 `json:"updatedAt"`
}

type CreateSessionRequest struct {
	Hint *profile.CustomerHint `json:"hint,omitempty"`
}

type TurnsRequest struct {
	Turns []extract.Turn `json:"turns"`
}

type AnalyzeRequest struct {
	Documents []coverage.Document `json:"documents"`
}

// AnalysisRecord is one stored analysis run.
type AnalysisRecord struct {
	ID        string            `json:"id"`
	SessionID string            `json:"sessionId"`
	CreatedAt time.Time         `json:"createdAt"`
	Analysis  analyzer.Analysis `json:"analysis"`
}

func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/sessions", handleCreateSession(deps))
		r.Get("/sessions/{id}", handleGetSession(deps))
		r.Delete("/sessions/{id}", handleDeleteSession(deps))
		r.Post("/sessions/{id}/turns", handleTurns(deps))
		r.Post("/sessions/{id}/analysis", handleAnalyze(deps))
		r.Get("/sessions/{id}/analyses", handleListAnalyses(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleCreateSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		hintJSON := ""
		if req.Hint != nil {
			b, err := json.Marshal(req.Hint)
			if err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to marshal hint: %v", err)
				return
			}
			hintJSON = string(b)
		}

		now := time.Now().UTC()
		sess := storage.Session{
			ID:          uuid.New().String(),
			CreatedAt:   now,
			UpdatedAt:   now,
			ProfileJSON: "{}",
			HintJSON:    hintJSON,
		}
		if err := deps.Store.CreateSession(sess); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create session: %v", err)
			return
		}

		var empty profile.QuoteProfile
		comp := completeness.Evaluate(empty)
		question, _ := completeness.Next(comp)

		w.WriteHeader(http.StatusCreated)
		respondJSON(w, SessionState{
			ID:           sess.ID,
			Profile:      empty,
			Completeness: comp,
			NextQuestion: question,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
}

func handleGetSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, p, _, ok := loadSession(w, deps, chi.URLParam(r, "id"))
		if !ok {
			return
		}
		comp := completeness.Evaluate(p)
		question, _ := completeness.Next(comp)
		respondJSON(w, SessionState{
			ID:           sess.ID,
			Profile:      p,
			Completeness: comp,
			NextQuestion: question,
			CreatedAt:    sess.CreatedAt,
			UpdatedAt:    sess.UpdatedAt,
		})
	}
}

func handleDeleteSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := deps.Store.DeleteSession(chi.URLParam(r, "id"))
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete session: %v", err)
			return
		}
		respondJSON(w, map[string]string{"status": "deleted"})
	}
}

func handleTurns(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		sess, current, hint, ok := loadSession(w, deps, chi.URLParam(r, "id"))
		if !ok {
			return
		}

		var req TurnsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if len(req.Turns) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "turns is required and must not be empty")
			return
		}

		res, err := deps.Pipeline.ProcessTurns(current, req.Turns, hint)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to process turns: %v", err)
			return
		}

		b, err := json.Marshal(res.Profile)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to marshal profile: %v", err)
			return
		}
		now := time.Now().UTC()
		if err := deps.Store.UpdateSessionProfile(sess.ID, string(b), now); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save profile: %v", err)
			return
		}

		respondJSON(w, SessionState{
			ID:           sess.ID,
			Profile:      res.Profile,
			Completeness: res.Completeness,
			NextQuestion: res.NextQuestion,
			CreatedAt:    sess.CreatedAt,
			UpdatedAt:    now,
		})
	}
}

func handleAnalyze(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		sess, p, hint, ok := loadSession(w, deps, chi.URLParam(r, "id"))
		if !ok {
			return
		}

		var req AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if len(req.Documents) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "documents is required and must not be empty")
			return
		}

		// The conversation may not have reached the state question yet; the
		// customer profile is the fallback for compliance lookups.
		if p.Basics.State == "" && hint != nil {
			p.Basics.State = hint.State
		}

		result := deps.Analyzer.Analyze(p, req.Documents)

		coverageJSON, err := json.Marshal(req.Documents)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to marshal documents: %v", err)
			return
		}
		analysisJSON, err := json.Marshal(result)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to marshal analysis: %v", err)
			return
		}

		rec := storage.Analysis{
			ID:           uuid.New().String(),
			SessionID:    sess.ID,
			CreatedAt:    result.AnalyzedAt,
			CoverageJSON: string(coverageJSON),
			AnalysisJSON: string(analysisJSON),
		}
		if err := deps.Store.SaveAnalysis(rec); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save analysis: %v", err)
			return
		}

		respondJSON(w, AnalysisRecord{
			ID:        rec.ID,
			SessionID: sess.ID,
			CreatedAt: rec.CreatedAt,
			Analysis:  result,
		})
	}
}

func handleListAnalyses(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := deps.Store.GetSession(id); errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "session not found")
			return
		} else if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get session: %v", err)
			return
		}

		limit := parseIntParam(r, "limit", 20, 100)
		stored, err := deps.Store.ListAnalyses(id, limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list analyses: %v", err)
			return
		}

		records := make([]AnalysisRecord, 0, len(stored))
		for _, a := range stored {
			var result analyzer.Analysis
			if err := json.Unmarshal([]byte(a.AnalysisJSON), &result); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to decode stored analysis %s: %v", a.ID, err)
				return
			}
			records = append(records, AnalysisRecord{
				ID:        a.ID,
				SessionID: a.SessionID,
				CreatedAt: a.CreatedAt,
				Analysis:  result,
			})
		}
		respondJSON(w, records)
	}
}

// loadSession fetches a session and decodes its profile and hint, writing
// the HTTP error itself when anything fails.
func loadSession(w http.ResponseWriter, deps AppDeps, id string) (storage.Session, profile.QuoteProfile, *profile.CustomerHint, bool) {
	sess, err := deps.Store.GetSession(id)
	if errors.Is(err, storage.ErrNotFound) {
		httpError(w, http.StatusNotFound, "not_found", "session not found")
		return storage.Session{}, profile.QuoteProfile{}, nil, false
	}
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "failed to get session: %v", err)
		return storage.Session{}, profile.QuoteProfile{}, nil, false
	}

	var p profile.QuoteProfile
	if err := json.Unmarshal([]byte(sess.ProfileJSON), &p); err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "failed to decode stored profile: %v", err)
		return storage.Session{}, profile.QuoteProfile{}, nil, false
	}

	var hint *profile.CustomerHint
	if sess.HintJSON != "" {
		hint = &profile.CustomerHint{}
		if err := json.Unmarshal([]byte(sess.HintJSON), hint); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to decode stored hint: %v", err)
			return storage.Session{}, profile.QuoteProfile{}, nil, false
		}
	}
	return sess, p, hint, true
}
