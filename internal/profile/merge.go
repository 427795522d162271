package profile

import (
	"fmt"
	"strings"
)

// Merge folds an extraction pass into the current profile and returns the new
// snapshot. It is a pure function: the input profile is never modified.
//
// Merge rules:
//   - Per field: current non-empty value wins; extracted values only fill
//     blanks. Nothing is ever cleared.
//   - Counts fix array lengths: the moment a count becomes known the
//     corresponding array is extended with empty entries, and never shrinks.
//   - Enriched vehicle facts are the one exception to first-value-wins: they
//     overwrite conversational values, because structured document data
//     outranks conversational inference.
//   - Facts.CleanRecord applies last, to drivers still undecided.
//
// Merging the same facts twice yields the same profile as merging once.
func Merge(current QuoteProfile, facts Facts) (QuoteProfile, error) {
	if err := Validate(current); err != nil {
		return QuoteProfile{}, fmt.Errorf("merge: %w", err)
	}
	if facts.VehicleCount < 0 || facts.DriverCount < 0 {
		return QuoteProfile{}, fmt.Errorf("merge: negative count in facts (vehicles=%d, drivers=%d)", facts.VehicleCount, facts.DriverCount)
	}

	next := Clone(current)

	if next.Basics.VehicleCount == 0 && facts.VehicleCount > 0 {
		next.Basics.VehicleCount = facts.VehicleCount
	}
	if next.Basics.DriverCount == 0 && facts.DriverCount > 0 {
		next.Basics.DriverCount = facts.DriverCount
	}
	if next.Basics.ZIPCode == "" && facts.ZIPCode != "" {
		next.Basics.ZIPCode = facts.ZIPCode
	}
	if next.Basics.State == "" && facts.State != "" {
		next.Basics.State = strings.ToUpper(facts.State)
	}

	// Pre-size arrays as soon as counts are known. Never shrink.
	for len(next.Vehicles) < next.Basics.VehicleCount {
		next.Vehicles = append(next.Vehicles, VehicleProfile{})
	}
	for len(next.Drivers) < next.Basics.DriverCount {
		next.Drivers = append(next.Drivers, DriverProfile{})
	}

	for _, vf := range facts.Vehicles {
		target := vehicleSlot(&next, vf.Index)
		if target == nil {
			continue
		}
		mergeVehicle(target, vf)
	}

	for _, df := range facts.Drivers {
		target := driverSlot(&next, df.Index)
		if target == nil {
			continue
		}
		mergeDriver(target, df)
	}

	mergeCoverage(&next.Coverage, facts.Coverage)

	// Bulk clean-record default: only drivers still undecided after every
	// per-driver fact has been applied. An explicit per-driver violation
	// statement therefore always overrides this heuristic.
	if facts.CleanRecord {
		for i := range next.Drivers {
			if next.Drivers[i].HasViolations == nil {
				next.Drivers[i].HasViolations = Bool(false)
				next.Drivers[i].ViolationsAssumed = true
			}
		}
	}

	return next, nil
}

// vehicleSlot resolves the vehicle entry facts at index should merge into.
// Before the vehicle count is known only index 0 may be buffered; facts for
// later indexes are dropped rather than fabricating entries.
func vehicleSlot(p *QuoteProfile, index int) *VehicleProfile {
	if index < 0 {
		return nil
	}
	if index < len(p.Vehicles) {
		return &p.Vehicles[index]
	}
	if p.Basics.VehicleCount == 0 && index == 0 && len(p.Vehicles) == 0 {
		p.Vehicles = append(p.Vehicles, VehicleProfile{})
		return &p.Vehicles[0]
	}
	return nil
}

func driverSlot(p *QuoteProfile, index int) *DriverProfile {
	if index < 0 {
		return nil
	}
	if index < len(p.Drivers) {
		return &p.Drivers[index]
	}
	if p.Basics.DriverCount == 0 && index == 0 && len(p.Drivers) == 0 {
		p.Drivers = append(p.Drivers, DriverProfile{})
		return &p.Drivers[0]
	}
	return nil
}

func mergeVehicle(v *VehicleProfile, f VehicleFacts) {
	if f.Enriched {
		if f.Year != 0 {
			v.Year = f.Year
		}
		if f.Make != "" {
			v.Make = f.Make
		}
		if f.Model != "" {
			v.Model = f.Model
		}
		if f.AnnualMileage != 0 {
			v.AnnualMileage = f.AnnualMileage
		}
		if f.PrimaryUse != "" {
			v.PrimaryUse = f.PrimaryUse
		}
		if f.ParkingLocation != "" {
			v.ParkingLocation = f.ParkingLocation
		}
		v.Enriched = true
		return
	}
	if v.Year == 0 {
		v.Year = f.Year
	}
	if v.Make == "" {
		v.Make = f.Make
	}
	if v.Model == "" {
		v.Model = f.Model
	}
	if v.AnnualMileage == 0 {
		v.AnnualMileage = f.AnnualMileage
	}
	if v.PrimaryUse == "" {
		v.PrimaryUse = f.PrimaryUse
	}
	if v.ParkingLocation == "" {
		v.ParkingLocation = f.ParkingLocation
	}
}

func mergeDriver(d *DriverProfile, f DriverFacts) {
	// An extracted age replaces a hint-defaulted one: conversation wins over
	// the implicit default, and only over the default.
	if f.Age != 0 && (d.Age == 0 || d.AgeFromHint) {
		d.Age = f.Age
		d.AgeFromHint = false
	}
	if d.YearsLicensed == nil && f.YearsLicensed != nil {
		d.YearsLicensed = cloneInt(f.YearsLicensed)
	}
	if d.MaritalStatus == "" {
		d.MaritalStatus = f.MaritalStatus
	}
	// An explicit per-driver answer replaces a bulk-assumed clean record,
	// and only that.
	if (d.HasViolations == nil || d.ViolationsAssumed) && f.HasViolations != nil {
		d.HasViolations = cloneBool(f.HasViolations)
		d.ViolationDetails = f.ViolationDetails
		d.ViolationsAssumed = false
	}
}

func mergeCoverage(c *CoverageProfile, f CoverageFacts) {
	if c.CurrentCarrier == "" {
		c.CurrentCarrier = f.CurrentCarrier
	}
	if c.MonthlyPremium == 0 {
		c.MonthlyPremium = f.MonthlyPremium
	}
	if c.DesiredCoverage == "" {
		c.DesiredCoverage = f.DesiredCoverage
	}
	if c.Deductible == 0 {
		c.Deductible = f.Deductible
	}
	if c.Roadside == nil && f.Roadside != nil {
		c.Roadside = cloneBool(f.Roadside)
	}
	if c.RentalCar == nil && f.RentalCar != nil {
		c.RentalCar = cloneBool(f.RentalCar)
	}
	if c.GapCoverage == nil && f.GapCoverage != nil {
		c.GapCoverage = cloneBool(f.GapCoverage)
	}
}

// ApplyCustomerDefaults fills driver 1's age from the externally supplied
// customer profile when the conversation has not stated it. It must run
// strictly after Merge so an extracted value is never overwritten; the
// AgeFromHint marker lets a later conversational statement replace the
// default on a subsequent merge.
func ApplyCustomerDefaults(p QuoteProfile, hint *CustomerHint) QuoteProfile {
	if hint == nil {
		return p
	}
	next := Clone(p)
	if len(next.Drivers) > 0 && next.Drivers[0].Age == 0 && hint.Age >= 16 && hint.Age <= 99 {
		next.Drivers[0].Age = hint.Age
		next.Drivers[0].AgeFromHint = true
	}
	return next
}

// Validate checks the caller-contract invariants: counts are non-negative
// and array lengths agree with known counts. A violation means broken state
// upstream, so it fails fast instead of degrading.
func Validate(p QuoteProfile) error {
	if p.Basics.VehicleCount < 0 {
		return fmt.Errorf("invalid profile: negative vehicle count %d", p.Basics.VehicleCount)
	}
	if p.Basics.DriverCount < 0 {
		return fmt.Errorf("invalid profile: negative driver count %d", p.Basics.DriverCount)
	}
	if p.Basics.VehicleCount > 0 && len(p.Vehicles) != p.Basics.VehicleCount {
		return fmt.Errorf("invalid profile: %d vehicles but vehicle count %d", len(p.Vehicles), p.Basics.VehicleCount)
	}
	if p.Basics.DriverCount > 0 && len(p.Drivers) != p.Basics.DriverCount {
		return fmt.Errorf("invalid profile: %d drivers but driver count %d", len(p.Drivers), p.Basics.DriverCount)
	}
	if p.Basics.VehicleCount == 0 && len(p.Vehicles) > 1 {
		return fmt.Errorf("invalid profile: %d vehicles buffered before vehicle count is known", len(p.Vehicles))
	}
	if p.Basics.DriverCount == 0 && len(p.Drivers) > 1 {
		return fmt.Errorf("invalid profile: %d drivers buffered before driver count is known", len(p.Drivers))
	}
	return nil
}
