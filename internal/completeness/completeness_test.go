package completeness

import (
	"reflect"
	"testing"

	"github.com/dazzie/quoted/internal/profile"
)

func TestEvaluateEmptyProfile(t *testing.T) {
	c := Evaluate(profile.QuoteProfile{})

	if c.Score != 0 {
		t.Errorf("Score = %d, want 0", c.Score)
	}
	if c.ReadyForQuote {
		t.Error("empty profile must not be quote-ready")
	}
	want := []FieldID{FieldDriverCount, FieldVehicleCount, FieldZIPCode}
	if !reflect.DeepEqual(c.MissingRequired, want) {
		t.Errorf("MissingRequired = %v, want %v", c.MissingRequired, want)
	}
	// Entity fields stay out of the books until counts are known.
	wantOpt := []FieldID{FieldCoverageTier, FieldDeductible}
	if !reflect.DeepEqual(c.MissingOptional, wantOpt) {
		t.Errorf("MissingOptional = %v, want %v", c.MissingOptional, wantOpt)
	}
}

func TestEvaluateScoreWeights(t *testing.T) {
	// 1 driver, 1 vehicle: 7 required, 8 optional.
	full := profile.QuoteProfile{
		Basics: profile.Basics{DriverCount: 1, VehicleCount: 1, ZIPCode: "94105"},
		Drivers: []profile.DriverProfile{{
			Age:           35,
			YearsLicensed: profile.Int(15),
			MaritalStatus: "married",
			HasViolations: profile.Bool(false),
		}},
		Vehicles: []profile.VehicleProfile{{
			Year: 2019, Make: "honda", Model: "Civic",
			AnnualMileage: 12000, PrimaryUse: profile.UseCommute, ParkingLocation: "garage",
		}},
		Coverage: profile.CoverageProfile{DesiredCoverage: profile.TierFull, Deductible: 500},
	}

	c := Evaluate(full)
	if c.Score != 100 {
		t.Errorf("Score = %d, want 100", c.Score)
	}
	if !c.ReadyForQuote {
		t.Error("complete profile must be quote-ready")
	}

	// Drop all optional answers: required side alone is 70.
	requiredOnly := full
	requiredOnly.Drivers = []profile.DriverProfile{{Age: 35}}
	requiredOnly.Vehicles = []profile.VehicleProfile{{Year: 2019, Make: "honda", Model: "Civic"}}
	requiredOnly.Coverage = profile.CoverageProfile{}

	c = Evaluate(requiredOnly)
	if c.Score != 70 {
		t.Errorf("Score = %d, want 70 with every required answered", c.Score)
	}
	if !c.ReadyForQuote {
		t.Error("profile with all required fields must be quote-ready")
	}

	// 6 of 7 required, nothing optional: round(70*6/7) = 60.
	partial := requiredOnly
	partial.Vehicles = []profile.VehicleProfile{{Year: 2019, Make: "honda"}}
	c = Evaluate(partial)
	if c.Score != 60 {
		t.Errorf("Score = %d, want 60", c.Score)
	}
	if c.ReadyForQuote {
		t.Error("missing model must block quote readiness")
	}
}

func TestEvaluateDefaultedAgeCounts(t *testing.T) {
	p := profile.QuoteProfile{
		Basics:  profile.Basics{DriverCount: 1},
		Drivers: []profile.DriverProfile{{Age: 40, AgeFromHint: true}},
	}
	c := Evaluate(p)
	for _, id := range c.MissingRequired {
		if id == DriverAge(0) {
			t.Error("defaulted age still reported missing")
		}
	}
}

func TestEvaluatePerEntityFields(t *testing.T) {
	p := profile.QuoteProfile{
		Basics:   profile.Basics{DriverCount: 2, VehicleCount: 1, ZIPCode: "94105"},
		Drivers:  []profile.DriverProfile{{Age: 35}, {}},
		Vehicles: []profile.VehicleProfile{{Year: 2019}},
	}
	c := Evaluate(p)
	want := []FieldID{DriverAge(1), VehicleMake(0), VehicleModel(0)}
	if !reflect.DeepEqual(c.MissingRequired, want) {
		t.Errorf("MissingRequired = %v, want %v", c.MissingRequired, want)
	}
}

func TestNextOrder(t *testing.T) {
	tests := []struct {
		name string
		c    Completeness
		want FieldID
	}{
		{
			"counts before everything",
			Completeness{MissingRequired: []FieldID{DriverAge(1), VehicleYear(0), FieldDriverCount}},
			FieldDriverCount,
		},
		{
			"vehicle count before zip",
			Completeness{MissingRequired: []FieldID{FieldZIPCode, FieldVehicleCount}},
			FieldVehicleCount,
		},
		{
			"driver ages before vehicle fields",
			Completeness{MissingRequired: []FieldID{VehicleYear(0), DriverAge(0)}},
			DriverAge(0),
		},
		{
			"first driver before second",
			Completeness{MissingRequired: []FieldID{DriverAge(1), DriverAge(0)}},
			DriverAge(0),
		},
		{
			"vehicle year before make before model",
			Completeness{MissingRequired: []FieldID{VehicleModel(0), VehicleMake(0), VehicleYear(0)}},
			VehicleYear(0),
		},
		{
			"finish vehicle 1 before vehicle 2",
			Completeness{MissingRequired: []FieldID{VehicleYear(1), VehicleModel(0)}},
			VehicleModel(0),
		},
		{
			"required before optional",
			Completeness{
				MissingRequired: []FieldID{VehicleModel(1)},
				MissingOptional: []FieldID{DriverYearsLicensed(0)},
			},
			VehicleModel(1),
		},
		{
			"optional ask order",
			Completeness{
				MissingOptional: []FieldID{FieldDeductible, VehicleMileage(0), DriverYearsLicensed(0)},
			},
			DriverYearsLicensed(0),
		},
		{
			"coverage tier before deductible",
			Completeness{
				MissingOptional: []FieldID{FieldDeductible, FieldCoverageTier},
			},
			FieldCoverageTier,
		},
		{
			"coverage tier before primary use",
			Completeness{
				MissingOptional: []FieldID{VehiclePrimaryUse(0), FieldCoverageTier},
			},
			FieldCoverageTier,
		},
		{
			"deductible before parking",
			Completeness{
				MissingOptional: []FieldID{VehicleParking(0), FieldDeductible},
			},
			FieldDeductible,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Next(tt.c)
			if !ok {
				t.Fatal("Next returned no question")
			}
			if got != tt.want {
				t.Errorf("Next = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNextExhausted(t *testing.T) {
	if id, ok := Next(Completeness{}); ok {
		t.Errorf("Next = %q on a complete profile, want none", id)
	}
}

func TestNextOrderIndependent(t *testing.T) {
	// Same missing set in two different orders picks the same question.
	a := Completeness{MissingRequired: []FieldID{DriverAge(1), VehicleYear(0), FieldDriverCount}}
	b := Completeness{MissingRequired: []FieldID{VehicleYear(0), FieldDriverCount, DriverAge(1)}}

	idA, _ := Next(a)
	idB, _ := Next(b)
	if idA != idB {
		t.Errorf("selection depends on list order: %q vs %q", idA, idB)
	}
	if idA != FieldDriverCount {
		t.Errorf("Next = %q, want %q", idA, FieldDriverCount)
	}
}
