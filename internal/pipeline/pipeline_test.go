package pipeline

import (
	"testing"

	"github.com/dazzie/quoted/internal/completeness"
	"github.com/dazzie/quoted/internal/extract"
	"github.com/dazzie/quoted/internal/profile"
)

func testPipeline() *Pipeline {
	return New(extract.NewWithYear(2026))
}

func TestProcessTurnsEndToEnd(t *testing.T) {
	pl := testPipeline()

	// Turn batches arrive as the conversation grows; each call replays the
	// full transcript against the profile built so far.
	current := profile.QuoteProfile{}
	transcript := []extract.Turn{}

	step := func(role, text string) TurnResult {
		t.Helper()
		transcript = append(transcript, extract.Turn{Role: role, Text: text})
		res, err := pl.ProcessTurns(current, transcript, nil)
		if err != nil {
			t.Fatal(err)
		}
		current = res.Profile
		return res
	}

	res := step(extract.RoleUser, "just me and 1 vehicle")
	if res.Profile.Basics.DriverCount != 1 || res.Profile.Basics.VehicleCount != 1 {
		t.Fatalf("counts = %+v", res.Profile.Basics)
	}
	if res.NextQuestion != completeness.FieldZIPCode {
		t.Errorf("NextQuestion = %q, want %q", res.NextQuestion, completeness.FieldZIPCode)
	}

	res = step(extract.RoleUser, "zip 94105, I'm 35")
	if res.NextQuestion != completeness.VehicleYear(0) {
		t.Errorf("NextQuestion = %q, want %q", res.NextQuestion, completeness.VehicleYear(0))
	}

	res = step(extract.RoleUser, "2019 Honda Civic")
	if !res.Completeness.ReadyForQuote {
		t.Fatalf("not ready for quote: %+v", res.Completeness)
	}
	if res.Completeness.Score < 70 {
		t.Errorf("Score = %d, want >= 70 with all required fields", res.Completeness.Score)
	}
	// Optional fields remain, so a question is still offered.
	if res.NextQuestion == "" {
		t.Error("NextQuestion empty with optional fields outstanding")
	}
}

func TestProcessTurnsMonotonic(t *testing.T) {
	pl := testPipeline()
	turns := []extract.Turn{
		{Role: extract.RoleUser, Text: "2 drivers, 1 car, zip 94105"},
	}
	res, err := pl.ProcessTurns(profile.QuoteProfile{}, turns, nil)
	if err != nil {
		t.Fatal(err)
	}

	// A contradicting later turn never overwrites committed facts.
	turns = append(turns, extract.Turn{Role: extract.RoleUser, Text: "actually 5 drivers and zip 10001"})
	res2, err := pl.ProcessTurns(res.Profile, turns, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res2.Profile.Basics.DriverCount != 2 || res2.Profile.Basics.ZIPCode != "94105" {
		t.Errorf("basics = %+v, committed facts changed", res2.Profile.Basics)
	}
	if res2.Completeness.Score < res.Completeness.Score {
		t.Errorf("score regressed: %d -> %d", res.Completeness.Score, res2.Completeness.Score)
	}
}

func TestProcessTurnsAppliesHintDefaults(t *testing.T) {
	pl := testPipeline()
	hint := &profile.CustomerHint{Age: 40}
	turns := []extract.Turn{{Role: extract.RoleUser, Text: "just me"}}

	res, err := pl.ProcessTurns(profile.QuoteProfile{}, turns, hint)
	if err != nil {
		t.Fatal(err)
	}
	if res.Profile.Drivers[0].Age != 40 || !res.Profile.Drivers[0].AgeFromHint {
		t.Fatalf("driver = %+v, want hint-defaulted age", res.Profile.Drivers[0])
	}

	// The stated age replaces the default on the next pass.
	turns = append(turns, extract.Turn{Role: extract.RoleUser, Text: "I'm 35"})
	res, err = pl.ProcessTurns(res.Profile, turns, hint)
	if err != nil {
		t.Fatal(err)
	}
	if res.Profile.Drivers[0].Age != 35 || res.Profile.Drivers[0].AgeFromHint {
		t.Errorf("driver = %+v, want stated age 35", res.Profile.Drivers[0])
	}
}

func TestProcessTurnsRejectsBrokenProfile(t *testing.T) {
	pl := testPipeline()
	broken := profile.QuoteProfile{
		Basics:  profile.Basics{DriverCount: 2},
		Drivers: []profile.DriverProfile{{}},
	}
	if _, err := pl.ProcessTurns(broken, nil, nil); err == nil {
		t.Error("expected error for profile violating count invariants")
	}
}
