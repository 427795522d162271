package extract

import (
	"regexp"
	"sort"
	"strings"
)

// makeAliases maps every recognized spelling of a vehicle make to its
// canonical (lowercase) form. Model text is whatever follows a recognized
// make, so this list is the anchor for vehicle identity extraction.
var makeAliases = map[string]string{
	"toyota":        "toyota",
	"honda":         "honda",
	"ford":          "ford",
	"chevrolet":     "chevrolet",
	"chevy":         "chevrolet",
	"nissan":        "nissan",
	"bmw":           "bmw",
	"mercedes-benz": "mercedes-benz",
	"mercedes":      "mercedes-benz",
	"benz":          "mercedes-benz",
	"audi":          "audi",
	"volkswagen":    "volkswagen",
	"vw":            "volkswagen",
	"subaru":        "subaru",
	"mazda":         "mazda",
	"hyundai":       "hyundai",
	"kia":           "kia",
	"tesla":         "tesla",
	"jeep":          "jeep",
	"dodge":         "dodge",
	"ram":           "ram",
	"gmc":           "gmc",
	"lexus":         "lexus",
	"acura":         "acura",
	"infiniti":      "infiniti",
	"volvo":         "volvo",
	"porsche":       "porsche",
	"cadillac":      "cadillac",
	"buick":         "buick",
	"chrysler":      "chrysler",
	"lincoln":       "lincoln",
	"mitsubishi":    "mitsubishi",
	"mini":          "mini",
	"fiat":          "fiat",
}

// makeRE matches any known make alias as a whole word, longest alias first
// so "mercedes-benz" beats "mercedes".
var makeRE = buildMakeRE()

func buildMakeRE() *regexp.Regexp {
	aliases := make([]string, 0, len(makeAliases))
	for a := range makeAliases {
		aliases = append(aliases, a)
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})
	for i, a := range aliases {
		aliases[i] = regexp.QuoteMeta(a)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(aliases, "|") + `)\b`)
}

// carrierAliases maps lowercase carrier mentions to display names.
// Checked longest-first so "liberty mutual" wins over any shorter overlap.
var carrierAliases = []struct {
	pattern string
	name    string
}{
	{"american family", "American Family"},
	{"liberty mutual", "Liberty Mutual"},
	{"the general", "The General"},
	{"state farm", "State Farm"},
	{"progressive", "Progressive"},
	{"nationwide", "Nationwide"},
	{"travelers", "Travelers"},
	{"esurance", "Esurance"},
	{"allstate", "Allstate"},
	{"farmers", "Farmers"},
	{"mercury", "Mercury"},
	{"geico", "GEICO"},
	{"usaa", "USAA"},
	{"aaa", "AAA"},
}

// stateNames maps lowercase state names to two-letter codes. Composite
// names are listed before their suffix states and matched longest-first.
var stateNames = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT",
	"delaware": "DE", "florida": "FL", "georgia": "GA", "hawaii": "HI",
	"idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME",
	"maryland": "MD", "massachusetts": "MA", "michigan": "MI",
	"minnesota": "MN", "mississippi": "MS", "missouri": "MO",
	"montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM",
	"new york": "NY", "north carolina": "NC", "north dakota": "ND",
	"ohio": "OH", "oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA",
	"rhode island": "RI", "south carolina": "SC", "south dakota": "SD",
	"tennessee": "TN", "texas": "TX", "utah": "UT", "vermont": "VT",
	"virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY",
}

var stateNamesOrdered = buildStateNamesOrdered()

func buildStateNamesOrdered() []string {
	names := make([]string, 0, len(stateNames))
	for n := range stateNames {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}

var stateCodes = buildStateCodes()

func buildStateCodes() map[string]bool {
	codes := make(map[string]bool, len(stateNames))
	for _, c := range stateNames {
		codes[c] = true
	}
	return codes
}

// numberWords covers spelled-out counts in phrases like "two cars".
var numberWords = map[string]int{
	"one": 1, "a": 1, "single": 1,
	"two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8,
}

// modelStopWords are tokens that end model capture after a make mention
// ("my honda that I bought" must not yield model "that").
var modelStopWords = map[string]bool{
	"and": true, "is": true, "was": true, "that": true, "with": true,
	"for": true, "the": true, "a": true, "an": true, "in": true,
	"on": true, "i": true, "it": true, "my": true, "which": true,
	"to": true, "but": true, "or": true, "so": true, "too": true,
	"from": true, "at": true, "as": true, "of": true, "if": true,
	"car": true, "vehicle": true, "truck": true, "suv": true,
}

func parseNumberWord(s string) (int, bool) {
	n, ok := numberWords[strings.ToLower(s)]
	return n, ok
}
