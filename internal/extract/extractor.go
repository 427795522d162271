// Package extract turns unstructured conversation turns into structured
// quote-profile facts using an ordered table of deterministic pattern rules.
// There is no model inference here: every rule is a trigger plus a bounded
// pattern, so the same transcript always yields the same facts.
package extract

import (
	"sort"
	"strings"
	"time"

	"github.com/dazzie/quoted/internal/profile"
)

// Turn is one conversation message.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Roles the extractor distinguishes. Facts are only read from user turns;
// assistant turns provide question context for short-reply resolution.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Extractor scans conversation transcripts for quote-profile facts.
// It is stateless and safe for concurrent use.
type Extractor struct {
	currentYear int
}

// New creates an Extractor anchored to the current calendar year (used to
// bound vehicle-year extraction).
func New() *Extractor {
	return &Extractor{currentYear: time.Now().Year()}
}

// NewWithYear creates an Extractor with a fixed reference year, for tests.
func NewWithYear(year int) *Extractor {
	return &Extractor{currentYear: year}
}

// extractionRule is one entry of the ordered rule table. Rules run in table
// order against each user turn; each rule enforces its own first-match-wins
// commit discipline via the pass state.
type extractionRule struct {
	field string
	scan  func(p *pass, text, lower string)
}

var ruleTable = []extractionRule{
	{"driver_count", (*pass).scanDriverCount},
	{"vehicle_count", (*pass).scanVehicleCount},
	{"zip_code", (*pass).scanZIP},
	{"state", (*pass).scanState},
	{"driver_age", (*pass).scanDriverAge},
	{"years_licensed", (*pass).scanYearsLicensed},
	{"marital_status", (*pass).scanMaritalStatus},
	{"violations", (*pass).scanViolations},
	{"vehicle_year", (*pass).scanVehicleYear},
	{"vehicle_make_model", (*pass).scanMakeModel},
	{"annual_mileage", (*pass).scanMileage},
	{"primary_use", (*pass).scanPrimaryUse},
	{"parking_location", (*pass).scanParking},
	{"carrier", (*pass).scanCarrier},
	{"premium", (*pass).scanPremium},
	{"deductible", (*pass).scanDeductible},
	{"coverage_tier", (*pass).scanCoverageTier},
	{"riders", (*pass).scanRiders},
}

// Extract scans the full ordered transcript against the prior profile and
// returns only the facts it found positive evidence for. It never blanks a
// field and never fabricates entity entries beyond index 0 before the
// corresponding count is known. When the hint carries enriched vehicle data,
// that data supersedes anything extracted from conversation for the same
// fields.
func (e *Extractor) Extract(turns []Turn, prior profile.QuoteProfile, hint *profile.CustomerHint) profile.Facts {
	p := &pass{
		prior:       prior,
		currentYear: e.currentYear,
	}

	for _, turn := range turns {
		switch turn.Role {
		case RoleAssistant:
			p.prevAssistant = strings.ToLower(turn.Text)
			continue
		case RoleUser:
			// fall through
		default:
			continue
		}
		text := turn.Text
		lower := strings.ToLower(text)
		for _, r := range ruleTable {
			r.scan(p, text, lower)
		}
		// A user turn consumes the pending assistant question: short-reply
		// rules must not fire against a question asked two turns ago.
		p.prevAssistant = ""
	}

	if hint != nil && hint.Enriched {
		for _, hv := range hint.Vehicles {
			p.applyEnrichedVehicle(hv)
		}
	}

	sort.Slice(p.facts.Vehicles, func(i, j int) bool {
		return p.facts.Vehicles[i].Index < p.facts.Vehicles[j].Index
	})
	sort.Slice(p.facts.Drivers, func(i, j int) bool {
		return p.facts.Drivers[i].Index < p.facts.Drivers[j].Index
	})
	return p.facts
}

// pass is the working state of a single extraction run over a transcript.
type pass struct {
	prior         profile.QuoteProfile
	facts         profile.Facts
	prevAssistant string
	currentYear   int
}

// entityLimit caps the entity indexes a pass may address. Before the count
// is known only index 0 may be buffered.
func entityLimit(count int) int {
	if count > 0 {
		return count
	}
	return 1
}

func firstCount(prior, pass int) int {
	if prior > 0 {
		return prior
	}
	return pass
}

// vehicleFor returns the pass's facts entry for a vehicle index, creating it
// on first use.
func (p *pass) vehicleFor(index int) *profile.VehicleFacts {
	for i := range p.facts.Vehicles {
		if p.facts.Vehicles[i].Index == index {
			return &p.facts.Vehicles[i]
		}
	}
	p.facts.Vehicles = append(p.facts.Vehicles, profile.VehicleFacts{Index: index})
	return &p.facts.Vehicles[len(p.facts.Vehicles)-1]
}

func (p *pass) driverFor(index int) *profile.DriverFacts {
	for i := range p.facts.Drivers {
		if p.facts.Drivers[i].Index == index {
			return &p.facts.Drivers[i]
		}
	}
	p.facts.Drivers = append(p.facts.Drivers, profile.DriverFacts{Index: index})
	return &p.facts.Drivers[len(p.facts.Drivers)-1]
}

// nextVehicleMissing finds the first vehicle index that lacks the field in
// both the prior profile and this pass, or -1 when every slot is filled.
func (p *pass) nextVehicleMissing(inPrior func(profile.VehicleProfile) bool, inPass func(profile.VehicleFacts) bool) int {
	limit := entityLimit(firstCount(p.prior.Basics.VehicleCount, p.facts.VehicleCount))
	for i := 0; i < limit; i++ {
		if i < len(p.prior.Vehicles) && inPrior(p.prior.Vehicles[i]) {
			continue
		}
		if p.passVehicleHas(i, inPass) {
			continue
		}
		return i
	}
	return -1
}

func (p *pass) passVehicleHas(index int, has func(profile.VehicleFacts) bool) bool {
	for _, vf := range p.facts.Vehicles {
		if vf.Index == index && has(vf) {
			return true
		}
	}
	return false
}

func (p *pass) nextDriverMissing(inPrior func(profile.DriverProfile) bool, inPass func(profile.DriverFacts) bool) int {
	limit := entityLimit(firstCount(p.prior.Basics.DriverCount, p.facts.DriverCount))
	for i := 0; i < limit; i++ {
		if i < len(p.prior.Drivers) && inPrior(p.prior.Drivers[i]) {
			continue
		}
		if p.passDriverHas(i, inPass) {
			continue
		}
		return i
	}
	return -1
}

func (p *pass) passDriverHas(index int, has func(profile.DriverFacts) bool) bool {
	for _, df := range p.facts.Drivers {
		if df.Index == index && has(df) {
			return true
		}
	}
	return false
}

// applyEnrichedVehicle folds externally scanned vehicle data into the pass
// result, overriding any conversational values for the same fields.
func (p *pass) applyEnrichedVehicle(hv profile.VehicleFacts) {
	if hv.Index < 0 {
		return
	}
	target := p.vehicleFor(hv.Index)
	if hv.Year != 0 {
		target.Year = hv.Year
	}
	if hv.Make != "" {
		target.Make = strings.ToLower(hv.Make)
	}
	if hv.Model != "" {
		target.Model = hv.Model
	}
	if hv.AnnualMileage != 0 {
		target.AnnualMileage = hv.AnnualMileage
	}
	if hv.PrimaryUse != "" {
		target.PrimaryUse = hv.PrimaryUse
	}
	if hv.ParkingLocation != "" {
		target.ParkingLocation = hv.ParkingLocation
	}
	target.Enriched = true
}

// assistantAsked reports whether the pending assistant question contains any
// of the given markers. Used to resolve short numeric replies like "2".
func (p *pass) assistantAsked(markers ...string) bool {
	if p.prevAssistant == "" {
		return false
	}
	for _, m := range markers {
		if strings.Contains(p.prevAssistant, m) {
			return true
		}
	}
	return false
}
