package completeness

import (
	"math"

	"github.com/dazzie/quoted/internal/profile"
)

// Required fields carry 70 points of the score, optional fields 30.
const (
	requiredWeight = 70.0
	optionalWeight = 30.0
)

// Completeness is the readiness snapshot for one profile state.
type Completeness struct {
	Score           int       `json:"score"`
	MissingRequired []FieldID `json:"missingRequired"`
	MissingOptional []FieldID `json:"missingOptional"`
	ReadyForQuote   bool      `json:"readyForQuote"`
}

// Evaluate scores a profile. Required fields are the counts, the ZIP code,
// every driver's age and every vehicle's year, make and model. Entity-scoped
// fields only enter the denominator once the corresponding count is known:
// an empty profile is scored against the three always-required fields, not
// against drivers that may never exist.
func Evaluate(p profile.QuoteProfile) Completeness {
	var reqTotal, reqHave, optTotal, optHave int
	var missingReq, missingOpt []FieldID

	required := func(have bool, id FieldID) {
		reqTotal++
		if have {
			reqHave++
			return
		}
		missingReq = append(missingReq, id)
	}
	optional := func(have bool, id FieldID) {
		optTotal++
		if have {
			optHave++
			return
		}
		missingOpt = append(missingOpt, id)
	}

	required(p.Basics.DriverCount > 0, FieldDriverCount)
	required(p.Basics.VehicleCount > 0, FieldVehicleCount)
	required(p.Basics.ZIPCode != "", FieldZIPCode)

	if p.Basics.DriverCount > 0 {
		for i, d := range p.Drivers {
			required(d.Age > 0, DriverAge(i))
			optional(d.YearsLicensed != nil, DriverYearsLicensed(i))
			optional(d.MaritalStatus != "", DriverMaritalStatus(i))
			optional(d.HasViolations != nil, DriverViolations(i))
		}
	}
	if p.Basics.VehicleCount > 0 {
		for i, v := range p.Vehicles {
			required(v.Year > 0, VehicleYear(i))
			required(v.Make != "", VehicleMake(i))
			required(v.Model != "", VehicleModel(i))
			optional(v.AnnualMileage > 0, VehicleMileage(i))
			optional(v.PrimaryUse != "", VehiclePrimaryUse(i))
			optional(v.ParkingLocation != "", VehicleParking(i))
		}
	}

	optional(p.Coverage.DesiredCoverage != "", FieldCoverageTier)
	optional(p.Coverage.Deductible > 0, FieldDeductible)

	score := requiredWeight * float64(reqHave) / float64(reqTotal)
	if optTotal > 0 {
		score += optionalWeight * float64(optHave) / float64(optTotal)
	}
	rounded := int(math.Round(score))
	if rounded < 0 {
		rounded = 0
	}
	if rounded > 100 {
		rounded = 100
	}

	return Completeness{
		Score:           rounded,
		MissingRequired: missingReq,
		MissingOptional: missingOpt,
		ReadyForQuote:   len(missingReq) == 0,
	}
}
