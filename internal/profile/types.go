package profile

// QuoteProfile is the accumulating model of everything known about a
// prospective customer. It is a plain serializable value: callers own the
// snapshot and must supply the latest one on every call — the engine only
// derives new snapshots, it never stores them.
type QuoteProfile struct {
	Basics   Basics           `json:"basics"`
	Vehicles []VehicleProfile `json:"vehicles"`
	Drivers  []DriverProfile  `json:"drivers"`
	Coverage CoverageProfile  `json:"coverage"`
	Risk     *RiskAssessment  `json:"risk,omitempty"`
}

// Basics holds the counts and location that anchor the rest of the profile.
// Zero means "not yet known" for counts; empty string for ZIP and state.
type Basics struct {
	VehicleCount int    `json:"vehicleCount,omitempty"`
	DriverCount  int    `json:"driverCount,omitempty"`
	ZIPCode      string `json:"zipCode,omitempty"`
	State        string `json:"state,omitempty"`
}

// VehicleProfile describes one vehicle. Index i in QuoteProfile.Vehicles is
// "vehicle i+1" in conversation order. Fields are monotonic: once set they
// are never cleared by extraction.
type VehicleProfile struct {
	Year            int    `json:"year,omitempty"`
	Make            string `json:"make,omitempty"`
	Model           string `json:"model,omitempty"`
	AnnualMileage   int    `json:"annualMileage,omitempty"`
	PrimaryUse      string `json:"primaryUse,omitempty"`
	ParkingLocation string `json:"parkingLocation,omitempty"`

	// Enriched marks fields populated from an external structured source
	// (e.g. a scanned declaration page). Enriched data outranks
	// conversational inference and is never overwritten by it.
	Enriched bool `json:"enriched,omitempty"`
}

// DriverProfile describes one driver, symmetric to VehicleProfile.
// YearsLicensed and HasViolations are pointers because zero and false are
// meaningful answers, distinct from "not yet asked".
type DriverProfile struct {
	Age              int    `json:"age,omitempty"`
	YearsLicensed    *int   `json:"yearsLicensed,omitempty"`
	MaritalStatus    string `json:"maritalStatus,omitempty"`
	HasViolations    *bool  `json:"hasViolations,omitempty"`
	ViolationDetails string `json:"violationDetails,omitempty"`

	// AgeFromHint marks an age filled from the customer-profile default
	// rather than conversation, so a later explicit statement can replace it.
	AgeFromHint bool `json:"ageFromHint,omitempty"`

	// ViolationsAssumed marks a HasViolations=false that came from a bulk
	// "clean record" statement rather than a per-driver answer. A later
	// explicit violation statement replaces it.
	ViolationsAssumed bool `json:"violationsAssumed,omitempty"`
}

// CoverageProfile captures the customer's current policy and preferences.
type CoverageProfile struct {
	CurrentCarrier  string `json:"currentCarrier,omitempty"`
	MonthlyPremium  int    `json:"monthlyPremium,omitempty"`
	DesiredCoverage string `json:"desiredCoverage,omitempty"`
	Deductible      int    `json:"deductible,omitempty"`
	Roadside        *bool  `json:"roadside,omitempty"`
	RentalCar       *bool  `json:"rentalCar,omitempty"`
	GapCoverage     *bool  `json:"gapCoverage,omitempty"`
}

// RiskAssessment holds externally resolved risk signals. The engine never
// looks these up itself; they arrive pre-resolved from the caller.
type RiskAssessment struct {
	CrimeScore      float64 `json:"crimeScore,omitempty"`
	EarthquakeScore float64 `json:"earthquakeScore,omitempty"`
	WildfireScore   float64 `json:"wildfireScore,omitempty"`
	FloodScore      float64 `json:"floodScore,omitempty"`
	HomeValue       int     `json:"homeValue,omitempty"`
}

// Primary-use values recognized in vehicle extraction.
const (
	UseCommute  = "commute"
	UsePleasure = "pleasure"
	UseBusiness = "business"
)

// Desired-coverage tiers.
const (
	TierMinimum  = "minimum"
	TierStandard = "standard"
	TierFull     = "full"
)

// CustomerHint is the externally supplied customer profile: account data or
// scanned-document output that seeds extraction. Conversation always wins
// over the implicit age default; enriched vehicle data wins over
// conversational inference.
type CustomerHint struct {
	Age      int            `json:"age,omitempty"`
	State    string         `json:"state,omitempty"`
	ZIPCode  string         `json:"zipCode,omitempty"`
	Vehicles []VehicleFacts `json:"vehicles,omitempty"`

	// Enriched marks the vehicle data as coming from a structured document
	// scan rather than conversation.
	Enriched bool `json:"enriched,omitempty"`
}

// Facts is a partial fact set produced by one extraction pass. Only fields
// the extractor found positive evidence for are populated; zero values mean
// "no evidence", never "clear this field".
type Facts struct {
	VehicleCount int
	DriverCount  int
	ZIPCode      string
	State        string
	Vehicles     []VehicleFacts
	Drivers      []DriverFacts
	Coverage     CoverageFacts

	// CleanRecord is the bulk-default rule: an explicit "clean record"
	// statement sets HasViolations=false for every driver still undecided
	// after all per-driver facts are applied. A per-driver violation fact
	// always overrides it.
	CleanRecord bool
}

// VehicleFacts carries newly recognized attributes for the vehicle at Index.
type VehicleFacts struct {
	Index           int    `json:"index"`
	Year            int    `json:"year,omitempty"`
	Make            string `json:"make,omitempty"`
	Model           string `json:"model,omitempty"`
	AnnualMileage   int    `json:"annualMileage,omitempty"`
	PrimaryUse      string `json:"primaryUse,omitempty"`
	ParkingLocation string `json:"parkingLocation,omitempty"`
	Enriched        bool   `json:"enriched,omitempty"`
}

// DriverFacts carries newly recognized attributes for the driver at Index.
type DriverFacts struct {
	Index            int
	Age              int
	YearsLicensed    *int
	MaritalStatus    string
	HasViolations    *bool
	ViolationDetails string
}

// CoverageFacts carries newly recognized coverage preferences.
type CoverageFacts struct {
	CurrentCarrier  string
	MonthlyPremium  int
	DesiredCoverage string
	Deductible      int
	Roadside        *bool
	RentalCar       *bool
	GapCoverage     *bool
}

// Clone returns a deep copy so callers can hand snapshots across goroutines
// without sharing backing arrays.
func Clone(p QuoteProfile) QuoteProfile {
	cp := p
	if p.Vehicles != nil {
		cp.Vehicles = make([]VehicleProfile, len(p.Vehicles))
		copy(cp.Vehicles, p.Vehicles)
	}
	if p.Drivers != nil {
		cp.Drivers = make([]DriverProfile, len(p.Drivers))
		for i, d := range p.Drivers {
			cp.Drivers[i] = cloneDriver(d)
		}
	}
	cp.Coverage = cloneCoverage(p.Coverage)
	if p.Risk != nil {
		r := *p.Risk
		cp.Risk = &r
	}
	return cp
}

func cloneDriver(d DriverProfile) DriverProfile {
	cp := d
	cp.YearsLicensed = cloneInt(d.YearsLicensed)
	cp.HasViolations = cloneBool(d.HasViolations)
	return cp
}

func cloneCoverage(c CoverageProfile) CoverageProfile {
	cp := c
	cp.Roadside = cloneBool(c.Roadside)
	cp.RentalCar = cloneBool(c.RentalCar)
	cp.GapCoverage = cloneBool(c.GapCoverage)
	return cp
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	b := *v
	return &b
}

// Int returns a pointer to v, for building facts literals.
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for building facts literals.
func Bool(v bool) *bool { return &v }
