package completeness

import (
	"strconv"
	"strings"
)

// Rank bands. Required fields always rank below every optional field, so
// the selector drains the required pool first. Within a band, lower entity
// numbers come first so the conversation finishes one driver or vehicle
// before moving to the next.
const (
	rankDriverAgeBase = 100
	rankVehicleBase   = 10_000
	rankOptionalBase  = 1_000_000
	rankOptionalSpan  = 10_000
	rankUnknown       = 1 << 30
)

// Optional field types in ask order.
const (
	optYearsLicensed = iota
	optMaritalStatus
	optViolations
	optMileage
	optCoverageTier
	optDeductible
	optPrimaryUse
	optParking
)

// Next picks the single best question to ask for this completeness state.
// The order is a strict total order over field IDs, so the same missing set
// always yields the same question regardless of how the lists are ordered.
// Returns false when nothing is left to ask.
func Next(c Completeness) (FieldID, bool) {
	if id, ok := lowest(c.MissingRequired); ok {
		return id, true
	}
	return lowest(c.MissingOptional)
}

func lowest(ids []FieldID) (FieldID, bool) {
	best := FieldID("")
	bestRank := rankUnknown + 1
	for _, id := range ids {
		if r := rank(id); r < bestRank {
			best, bestRank = id, r
		}
	}
	return best, best != ""
}

// rank maps a field ID onto the ask order. Unrecognized IDs sort last
// rather than failing, so a stored snapshot from a newer writer degrades to
// "ask it eventually".
func rank(id FieldID) int {
	switch id {
	case FieldDriverCount:
		return 0
	case FieldVehicleCount:
		return 1
	case FieldZIPCode:
		return 2
	case FieldCoverageTier:
		return rankOptionalBase + optCoverageTier*rankOptionalSpan
	case FieldDeductible:
		return rankOptionalBase + optDeductible*rankOptionalSpan
	}

	parts := strings.SplitN(string(id), "_", 3)
	if len(parts) != 3 {
		return rankUnknown
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 1 {
		return rankUnknown
	}
	idx := n - 1

	switch parts[0] {
	case "driver":
		switch parts[2] {
		case "age":
			return rankDriverAgeBase + idx
		case "years_licensed":
			return rankOptionalBase + optYearsLicensed*rankOptionalSpan + idx
		case "marital_status":
			return rankOptionalBase + optMaritalStatus*rankOptionalSpan + idx
		case "violations":
			return rankOptionalBase + optViolations*rankOptionalSpan + idx
		}
	case "vehicle":
		switch parts[2] {
		case "year":
			return rankVehicleBase + idx*10
		case "make":
			return rankVehicleBase + idx*10 + 1
		case "model":
			return rankVehicleBase + idx*10 + 2
		case "mileage":
			return rankOptionalBase + optMileage*rankOptionalSpan + idx
		case "primary_use":
			return rankOptionalBase + optPrimaryUse*rankOptionalSpan + idx
		case "parking":
			return rankOptionalBase + optParking*rankOptionalSpan + idx
		}
	}
	return rankUnknown
}
