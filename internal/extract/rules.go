package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dazzie/quoted/internal/profile"
)

// ---------- package-level compiled regexes ----------

var (
	driverCountRE = regexp.MustCompile(`(?i)\b(\d{1,2}|one|two|three|four|five|six|seven|eight)\s+(?:licensed\s+)?drivers?\b`)
	justMeRE      = regexp.MustCompile(`(?i)\b(?:just me|only me|me only|it'?s just me|i'?m the only (?:one|driver))\b`)
	twoOfUsRE     = regexp.MustCompile(`(?i)\b(?:me and my (?:wife|husband|spouse|partner|girlfriend|boyfriend)|my (?:wife|husband|spouse|partner) and (?:i|me)|both of us|the two of us)\b`)
	vehicleCountRE = regexp.MustCompile(`(?i)\b(\d{1,2}|a|single|one|two|three|four|five|six|seven|eight)\s+(?:cars?|vehicles?|trucks?|suvs?|vans?|autos?)\b`)
	bareNumberRE  = regexp.MustCompile(`^\s*(\d{1,2})\s*[.!]?\s*$`)

	zipLabeledRE = regexp.MustCompile(`(?i)\bzip(?:\s*code)?(?:\s+is)?[:\s]\s*(\d{5})\b`)
	zipBareRE    = regexp.MustCompile(`(?:^|[^$\d])(\d{5})\b`)
	zipTailRE    = regexp.MustCompile(`^\s*(?:miles?\b|mi\b|mpg\b|dollars\b|sq\b)`)
	stateZipRE   = regexp.MustCompile(`\b([A-Z]{2}),?\s+\d{5}\b`)

	agePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:years?[-\s]old|yrs?[-\s]old|y/?o\b)`),
		regexp.MustCompile(`(?i)\b(?:i'?m|i am)\s+(\d{1,2})\b`),
		regexp.MustCompile(`(?i)\bage\s+(?:is\s+)?(\d{1,2})\b`),
		regexp.MustCompile(`(?i)\b(?:my\s+)?(?:wife|husband|spouse|partner|son|daughter|mom|dad|mother|father)\s+is\s+(\d{1,2})\b`),
	}
	ageFalseTailRE = regexp.MustCompile(`^\s*(?:minutes?\b|mins?\b|miles?\b|mi\b|percent\b|%|hours?\b|days?\b|weeks?\b|months?\b|dollars\b|bucks\b)`)

	yearsLicensedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\blicensed\s+(?:for\s+)?(\d{1,2})\s+years?\b`),
		regexp.MustCompile(`(?i)\b(?:been\s+)?driving\s+(?:for\s+)?(\d{1,2})\s+years?\b`),
		regexp.MustCompile(`(?i)\b(\d{1,2})\s+years?\s+(?:of\s+)?(?:driving|licensed|license|experience)\b`),
		regexp.MustCompile(`(?i)\b(?:had|held)\s+(?:my|a)\s+licen[sc]e\s+(?:for\s+)?(\d{1,2})\s+years?\b`),
	}

	singleVehicleRE = regexp.MustCompile(`(?i)\bsingle\s+(?:car|vehicle|truck|suv|driver)\b`)

	vehicleYearRE = regexp.MustCompile(`\b(19[0-9]{2}|20[0-9]{2})\b`)

	modelTokenRE        = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*$`)
	modelContinuationRE = regexp.MustCompile(`^[A-Z0-9][A-Za-z0-9-]*$`)

	mileageKMilesRE    = regexp.MustCompile(`(?i)\b(\d{1,3})k\s*(?:miles?|mi)\b`)
	mileageKYearRE     = regexp.MustCompile(`(?i)\b(\d{1,3})k\s+(?:a|per)\s+year\b`)
	mileagePlainRE     = regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})+|\d{4,6})\s*(?:miles?|mi)\b`)

	premiumMonthRE = regexp.MustCompile(`(?i)\$\s*([\d,]+)(?:\.\d+)?\s*(?:/\s*mo(?:nth)?|per\s+month|a\s+month|each\s+month|monthly)\b`)
	premiumYearRE  = regexp.MustCompile(`(?i)\$\s*([\d,]+)(?:\.\d+)?\s*(?:/\s*(?:yr|year)|per\s+year|a\s+year|annually|yearly)\b`)

	deductiblePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\$?\s*([\d,]+)\s*deductible\b`),
		regexp.MustCompile(`(?i)\bdeductible\s*(?:of|is)?\s*\$?\s*([\d,]+)\b`),
	}
)

// ---------- counts ----------

func (p *pass) scanDriverCount(text, lower string) {
	if p.prior.Basics.DriverCount > 0 || p.facts.DriverCount > 0 {
		return
	}
	if m := driverCountRE.FindStringSubmatch(text); m != nil {
		if n, ok := parseCount(m[1]); ok {
			p.facts.DriverCount = n
			return
		}
	}
	if justMeRE.MatchString(lower) {
		p.facts.DriverCount = 1
		return
	}
	if twoOfUsRE.MatchString(lower) {
		p.facts.DriverCount = 2
		return
	}
	if p.assistantAsked("how many drivers", "number of drivers", "how many people drive") {
		if n, ok := bareCount(text); ok {
			p.facts.DriverCount = n
		}
	}
}

func (p *pass) scanVehicleCount(text, lower string) {
	if p.prior.Basics.VehicleCount > 0 || p.facts.VehicleCount > 0 {
		return
	}
	if m := vehicleCountRE.FindStringSubmatch(text); m != nil {
		if n, ok := parseCount(m[1]); ok {
			p.facts.VehicleCount = n
			return
		}
	}
	if p.assistantAsked("how many vehicles", "how many cars", "number of vehicles") {
		if n, ok := bareCount(text); ok {
			p.facts.VehicleCount = n
		}
	}
}

func parseCount(s string) (int, bool) {
	if n, ok := parseNumberWord(s); ok {
		return n, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 10 {
		return 0, false
	}
	return n, true
}

func bareCount(text string) (int, bool) {
	m := bareNumberRE.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 10 {
		return 0, false
	}
	return n, true
}

// ---------- location ----------

func (p *pass) scanZIP(text, lower string) {
	if p.prior.Basics.ZIPCode != "" || p.facts.ZIPCode != "" {
		return
	}
	if m := zipLabeledRE.FindStringSubmatch(text); m != nil {
		p.facts.ZIPCode = m[1]
		return
	}
	// Bare five digits: reject dollar amounts and quantities like
	// "50000 miles" by inspecting the surrounding text.
	for _, m := range zipBareRE.FindAllStringSubmatchIndex(text, -1) {
		candidate := text[m[2]:m[3]]
		if zipTailRE.MatchString(text[m[3]:]) {
			continue
		}
		p.facts.ZIPCode = candidate
		return
	}
}

func (p *pass) scanState(text, lower string) {
	if p.prior.Basics.State != "" || p.facts.State != "" {
		return
	}
	for _, name := range stateNamesOrdered {
		if containsWord(lower, name) {
			p.facts.State = stateNames[name]
			return
		}
	}
	if m := stateZipRE.FindStringSubmatch(text); m != nil && stateCodes[m[1]] {
		p.facts.State = m[1]
	}
}

// ---------- drivers ----------

func (p *pass) scanDriverAge(text, lower string) {
	idx := p.nextDriverMissing(
		func(d profile.DriverProfile) bool { return d.Age != 0 && !d.AgeFromHint },
		func(f profile.DriverFacts) bool { return f.Age != 0 },
	)
	if idx < 0 {
		return
	}
	for _, re := range agePatterns {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			age, err := strconv.Atoi(text[m[2]:m[3]])
			if err != nil || age < 16 || age > 99 {
				continue
			}
			if ageFalseTailRE.MatchString(text[m[1]:]) {
				continue
			}
			p.driverFor(idx).Age = age
			return
		}
	}
	if p.assistantAsked("how old", "your age", "age of") {
		if m := bareNumberRE.FindStringSubmatch(text); m != nil {
			if age, err := strconv.Atoi(m[1]); err == nil && age >= 16 && age <= 99 {
				p.driverFor(idx).Age = age
			}
		}
	}
}

func (p *pass) scanYearsLicensed(text, lower string) {
	idx := p.nextDriverMissing(
		func(d profile.DriverProfile) bool { return d.YearsLicensed != nil },
		func(f profile.DriverFacts) bool { return f.YearsLicensed != nil },
	)
	if idx < 0 {
		return
	}
	for _, re := range yearsLicensedPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 0 || n > 80 {
				continue
			}
			p.driverFor(idx).YearsLicensed = profile.Int(n)
			return
		}
	}
}

func (p *pass) scanMaritalStatus(text, lower string) {
	idx := p.nextDriverMissing(
		func(d profile.DriverProfile) bool { return d.MaritalStatus != "" },
		func(f profile.DriverFacts) bool { return f.MaritalStatus != "" },
	)
	if idx < 0 {
		return
	}
	var status string
	switch {
	case strings.Contains(lower, "not married") || strings.Contains(lower, "unmarried"):
		status = "single"
	case strings.Contains(lower, "married"):
		status = "married"
	case strings.Contains(lower, "divorced"):
		status = "divorced"
	case strings.Contains(lower, "widow"):
		status = "widowed"
	case containsWord(lower, "single") && !singleVehicleRE.MatchString(text):
		status = "single"
	}
	if status != "" {
		p.driverFor(idx).MaritalStatus = status
	}
}

// cleanRecordPhrases trigger the bulk clean-record default. Checked before
// violation phrases so "no accidents" is not read as an accident.
var cleanRecordPhrases = []string{
	"clean record", "clean driving record", "no tickets", "no ticket",
	"no accidents", "no accident", "no violations", "no moving violations",
	"never had a ticket", "never had an accident", "never been in an accident",
	"spotless record", "perfect record",
}

var violationPhrases = []string{
	"speeding ticket", "got a ticket", "had a ticket", "dui", "dwi",
	"at-fault", "at fault", "reckless driving", "ran a red light",
	"fender bender", "an accident", "one accident", "a ticket", "one ticket",
	"a violation", "moving violation",
}

func (p *pass) scanViolations(text, lower string) {
	for _, phrase := range cleanRecordPhrases {
		if strings.Contains(lower, phrase) {
			p.facts.CleanRecord = true
			return
		}
	}
	idx := p.nextDriverMissing(
		func(d profile.DriverProfile) bool { return d.HasViolations != nil && !d.ViolationsAssumed },
		func(f profile.DriverFacts) bool { return f.HasViolations != nil },
	)
	if idx < 0 {
		return
	}
	for _, phrase := range violationPhrases {
		if strings.Contains(lower, phrase) {
			d := p.driverFor(idx)
			d.HasViolations = profile.Bool(true)
			d.ViolationDetails = truncate(strings.TrimSpace(text), 200)
			return
		}
	}
}

// ---------- vehicles ----------

func (p *pass) scanVehicleYear(text, lower string) {
	idx := p.nextVehicleMissing(
		func(v profile.VehicleProfile) bool { return v.Year != 0 },
		func(f profile.VehicleFacts) bool { return f.Year != 0 },
	)
	if idx < 0 {
		return
	}
	for _, m := range vehicleYearRE.FindAllStringSubmatch(text, -1) {
		y, err := strconv.Atoi(m[1])
		if err != nil || y < 1990 || y > p.currentYear+1 {
			continue
		}
		p.vehicleFor(idx).Year = y
		return
	}
}

func (p *pass) scanMakeModel(text, lower string) {
	loc := makeRE.FindStringSubmatchIndex(text)
	if loc == nil {
		return
	}
	canonical := makeAliases[strings.ToLower(text[loc[2]:loc[3]])]
	if idx := p.nextVehicleMissing(
		func(v profile.VehicleProfile) bool { return v.Make != "" },
		func(f profile.VehicleFacts) bool { return f.Make != "" },
	); idx >= 0 {
		p.vehicleFor(idx).Make = canonical
	}
	model := modelAfterMake(text[loc[1]:])
	if model == "" {
		return
	}
	if idx := p.nextVehicleMissing(
		func(v profile.VehicleProfile) bool { return v.Model != "" },
		func(f profile.VehicleFacts) bool { return f.Model != "" },
	); idx >= 0 {
		p.vehicleFor(idx).Model = model
	}
}

// modelAfterMake reads model text immediately following a make mention:
// one token, plus a second when it reads like a model continuation
// ("Grand Cherokee", "Model 3") rather than sentence flow.
func modelAfterMake(rest string) string {
	tokens := strings.Fields(rest)
	if len(tokens) == 0 {
		return ""
	}
	first := trimToken(tokens[0])
	if first == "" || modelStopWords[strings.ToLower(first)] || !modelTokenRE.MatchString(first) {
		return ""
	}
	model := first
	if len(tokens) > 1 {
		second := trimToken(tokens[1])
		if second != "" && !modelStopWords[strings.ToLower(second)] && modelContinuationRE.MatchString(second) {
			model += " " + second
		}
	}
	return model
}

func (p *pass) scanMileage(text, lower string) {
	idx := p.nextVehicleMissing(
		func(v profile.VehicleProfile) bool { return v.AnnualMileage != 0 },
		func(f profile.VehicleFacts) bool { return f.AnnualMileage != 0 },
	)
	if idx < 0 {
		return
	}
	for _, re := range []*regexp.Regexp{mileageKMilesRE, mileageKYearRE} {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				if miles := n * 1000; miles >= 1000 && miles <= 200000 {
					p.vehicleFor(idx).AnnualMileage = miles
					return
				}
			}
		}
	}
	if m := mileagePlainRE.FindStringSubmatch(text); m != nil {
		if miles := parseCommaInt(m[1]); miles >= 1000 && miles <= 200000 {
			p.vehicleFor(idx).AnnualMileage = miles
		}
	}
}

var primaryUseKeywords = []struct {
	phrases []string
	use     string
}{
	{[]string{"commute", "commuting", "to work", "to the office"}, profile.UseCommute},
	{[]string{"pleasure", "leisure", "weekend driving", "weekends only", "errands"}, profile.UsePleasure},
	{[]string{"business use", "for business", "rideshare", "uber", "lyft", "deliveries", "delivery driving"}, profile.UseBusiness},
}

func (p *pass) scanPrimaryUse(text, lower string) {
	idx := p.nextVehicleMissing(
		func(v profile.VehicleProfile) bool { return v.PrimaryUse != "" },
		func(f profile.VehicleFacts) bool { return f.PrimaryUse != "" },
	)
	if idx < 0 {
		return
	}
	for _, kw := range primaryUseKeywords {
		for _, phrase := range kw.phrases {
			if strings.Contains(lower, phrase) {
				p.vehicleFor(idx).PrimaryUse = kw.use
				return
			}
		}
	}
}

var parkingKeywords = []struct {
	phrase   string
	location string
}{
	{"parking garage", "garage"},
	{"garage", "garage"},
	{"driveway", "driveway"},
	{"carport", "carport"},
	{"parking lot", "parking lot"},
	{"street parking", "street"},
	{"on the street", "street"},
	{"street", "street"},
}

func (p *pass) scanParking(text, lower string) {
	idx := p.nextVehicleMissing(
		func(v profile.VehicleProfile) bool { return v.ParkingLocation != "" },
		func(f profile.VehicleFacts) bool { return f.ParkingLocation != "" },
	)
	if idx < 0 {
		return
	}
	for _, kw := range parkingKeywords {
		if strings.Contains(lower, kw.phrase) {
			p.vehicleFor(idx).ParkingLocation = kw.location
			return
		}
	}
}

// ---------- coverage ----------

func (p *pass) scanCarrier(text, lower string) {
	if p.prior.Coverage.CurrentCarrier != "" || p.facts.Coverage.CurrentCarrier != "" {
		return
	}
	for _, c := range carrierAliases {
		if strings.Contains(lower, c.pattern) {
			p.facts.Coverage.CurrentCarrier = c.name
			return
		}
	}
}

func (p *pass) scanPremium(text, lower string) {
	if p.prior.Coverage.MonthlyPremium != 0 || p.facts.Coverage.MonthlyPremium != 0 {
		return
	}
	if m := premiumMonthRE.FindStringSubmatch(text); m != nil {
		if n := parseCommaInt(m[1]); n > 0 {
			p.facts.Coverage.MonthlyPremium = n
			return
		}
	}
	if m := premiumYearRE.FindStringSubmatch(text); m != nil {
		if n := parseCommaInt(m[1]); n > 0 {
			p.facts.Coverage.MonthlyPremium = (n + 6) / 12
		}
	}
}

func (p *pass) scanDeductible(text, lower string) {
	if p.prior.Coverage.Deductible != 0 || p.facts.Coverage.Deductible != 0 {
		return
	}
	for _, re := range deductiblePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if n := parseCommaInt(m[1]); n >= 100 && n <= 10000 {
				p.facts.Coverage.Deductible = n
				return
			}
		}
	}
}

var coverageTierKeywords = []struct {
	phrases []string
	tier    string
}{
	{[]string{"full coverage", "fully covered", "maximum coverage", "comprehensive coverage", "best coverage"}, profile.TierFull},
	{[]string{"state minimum", "minimum coverage", "bare minimum", "liability only", "just liability", "basic coverage", "cheapest", "minimum"}, profile.TierMinimum},
	{[]string{"standard coverage", "typical coverage", "recommended coverage", "mid-tier", "standard"}, profile.TierStandard},
}

func (p *pass) scanCoverageTier(text, lower string) {
	if p.prior.Coverage.DesiredCoverage != "" || p.facts.Coverage.DesiredCoverage != "" {
		return
	}
	for _, kw := range coverageTierKeywords {
		for _, phrase := range kw.phrases {
			if strings.Contains(lower, phrase) {
				p.facts.Coverage.DesiredCoverage = kw.tier
				return
			}
		}
	}
}

func (p *pass) scanRiders(text, lower string) {
	if p.prior.Coverage.Roadside == nil && p.facts.Coverage.Roadside == nil && strings.Contains(lower, "roadside") {
		val := !containsAny(lower, "no roadside", "don't need roadside", "dont need roadside", "without roadside", "skip roadside")
		p.facts.Coverage.Roadside = profile.Bool(val)
	}
	if p.prior.Coverage.RentalCar == nil && p.facts.Coverage.RentalCar == nil &&
		containsAny(lower, "rental car coverage", "rental coverage", "rental reimbursement", "a rental") {
		val := !containsAny(lower, "no rental", "don't need rental", "dont need rental", "without rental")
		p.facts.Coverage.RentalCar = profile.Bool(val)
	}
	if p.prior.Coverage.GapCoverage == nil && p.facts.Coverage.GapCoverage == nil &&
		containsAny(lower, "gap insurance", "gap coverage") {
		val := !containsAny(lower, "no gap", "don't need gap", "dont need gap", "without gap")
		p.facts.Coverage.GapCoverage = profile.Bool(val)
	}
}

// ---------- helpers ----------

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// containsWord reports whether w occurs in s bounded by non-alphanumerics.
func containsWord(s, w string) bool {
	for idx := 0; ; {
		i := strings.Index(s[idx:], w)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(w)
		beforeOK := start == 0 || !isAlnum(s[start-1])
		afterOK := end == len(s) || !isAlnum(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func trimToken(tok string) string {
	return strings.Trim(tok, ".,!?;:\"'()[]")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func parseCommaInt(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0
	}
	return n
}
