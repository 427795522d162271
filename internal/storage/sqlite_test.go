package storage

import (
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the schema_version count stays correct (migration not re-applied).
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}

	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}

	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := openTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	sess := Session{
		ID:          "sess-1",
		CreatedAt:   now,
		UpdatedAt:   now,
		ProfileJSON: `{"basics":{"driverCount":1}}`,
		HintJSON:    `{"age":40}`,
	}
	if err := s.CreateSession(sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSession("sess-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.ProfileJSON != sess.ProfileJSON || got.HintJSON != sess.HintJSON {
		t.Errorf("got %+v, want %+v", got, sess)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}

	later := now.Add(time.Minute)
	if err := s.UpdateSessionProfile("sess-1", `{"basics":{"driverCount":2}}`, later); err != nil {
		t.Fatalf("UpdateSessionProfile: %v", err)
	}
	got, err = s.GetSession("sess-1")
	if err != nil {
		t.Fatalf("GetSession after update: %v", err)
	}
	if got.ProfileJSON != `{"basics":{"driverCount":2}}` {
		t.Errorf("ProfileJSON = %q", got.ProfileJSON)
	}
	if !got.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, later)
	}
}

func TestSessionNotFound(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetSession("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession error = %v, want ErrNotFound", err)
	}
	if err := s.UpdateSessionProfile("missing", "{}", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateSessionProfile error = %v, want ErrNotFound", err)
	}
	if err := s.DeleteSession("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteSession error = %v, want ErrNotFound", err)
	}
}

func TestAnalysesListedNewestFirst(t *testing.T) {
	s := openTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	if err := s.CreateSession(Session{ID: "sess-1", CreatedAt: now, UpdatedAt: now, ProfileJSON: "{}"}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	for i := 0; i < 3; i++ {
		a := Analysis{
			ID:           "an-" + string(rune('a'+i)),
			SessionID:    "sess-1",
			CreatedAt:    now.Add(time.Duration(i) * time.Minute),
			CoverageJSON: "[]",
			AnalysisJSON: "{}",
		}
		if err := s.SaveAnalysis(a); err != nil {
			t.Fatalf("SaveAnalysis: %v", err)
		}
	}

	got, err := s.ListAnalyses("sess-1", 10)
	if err != nil {
		t.Fatalf("ListAnalyses: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != "an-c" || got[2].ID != "an-a" {
		t.Errorf("order = %s,%s,%s, want newest first", got[0].ID, got[1].ID, got[2].ID)
	}

	limited, err := s.ListAnalyses("sess-1", 1)
	if err != nil {
		t.Fatalf("ListAnalyses limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "an-c" {
		t.Errorf("limited = %+v", limited)
	}
}

func TestDeleteSessionCascades(t *testing.T) {
	s := openTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	if err := s.CreateSession(Session{ID: "sess-1", CreatedAt: now, UpdatedAt: now, ProfileJSON: "{}"}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := s.SaveAnalysis(Analysis{ID: "an-1", SessionID: "sess-1", CreatedAt: now, CoverageJSON: "[]", AnalysisJSON: "{}"}); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}

	if err := s.DeleteSession("sess-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}

	got, err := s.ListAnalyses("sess-1", 10)
	if err != nil {
		t.Fatalf("ListAnalyses: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("analyses survived session delete: %+v", got)
	}
}
