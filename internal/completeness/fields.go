// Package completeness scores how ready a quote profile is for rating and
// decides the single best next question to ask.
package completeness

import "fmt"

// FieldID names one askable profile field. Entity-scoped fields embed a
// 1-based entity number, e.g. "driver_2_age".
type FieldID string

// Profile-level fields.
const (
	FieldDriverCount  FieldID = "number_of_drivers"
	FieldVehicleCount FieldID = "number_of_vehicles"
	FieldZIPCode      FieldID = "zip_code"
	FieldCoverageTier FieldID = "coverage_level"
	FieldDeductible   FieldID = "deductible"
)

// DriverAge returns the required age field for the i-th driver (0-based in,
// 1-based out).
func DriverAge(i int) FieldID { return FieldID(fmt.Sprintf("driver_%d_age", i+1)) }

func DriverYearsLicensed(i int) FieldID {
	return FieldID(fmt.Sprintf("driver_%d_years_licensed", i+1))
}

func DriverMaritalStatus(i int) FieldID {
	return FieldID(fmt.Sprintf("driver_%d_marital_status", i+1))
}

func DriverViolations(i int) FieldID {
	return FieldID(fmt.Sprintf("driver_%d_violations", i+1))
}

func VehicleYear(i int) FieldID  { return FieldID(fmt.Sprintf("vehicle_%d_year", i+1)) }
func VehicleMake(i int) FieldID  { return FieldID(fmt.Sprintf("vehicle_%d_make", i+1)) }
func VehicleModel(i int) FieldID { return FieldID(fmt.Sprintf("vehicle_%d_model", i+1)) }

func VehicleMileage(i int) FieldID {
	return FieldID(fmt.Sprintf("vehicle_%d_mileage", i+1))
}

func VehiclePrimaryUse(i int) FieldID {
	return FieldID(fmt.Sprintf("vehicle_%d_primary_use", i+1))
}

func VehicleParking(i int) FieldID {
	return FieldID(fmt.Sprintf("vehicle_%d_parking", i+1))
}
