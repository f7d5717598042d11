// Package region maps US state abbreviations to Census regions for
// report rollups.
package region

import "strings"

// Region is one of the four US Census regions, or Other for territories
// and unrecognized codes.
type Region string

const (
	Northeast Region = "Northeast"
	Midwest   Region = "Midwest"
	South     Region = "South"
	West      Region = "West"
	Other     Region = "Other"
)

var stateRegions = map[string]Region{
	"ME": Northeast, "NH": Northeast, "VT": Northeast, "MA": Northeast,
	"RI": Northeast, "CT": Northeast, "NY": Northeast, "NJ": Northeast,
	"PA": Northeast,

	"OH": Midwest, "MI": Midwest, "IN": Midwest, "IL": Midwest,
	"WI": Midwest, "MN": Midwest, "IA": Midwest, "MO": Midwest,
	"ND": Midwest, "SD": Midwest, "NE": Midwest, "KS": Midwest,

	"DE": South, "MD": South, "DC": South, "VA": South, "WV": South,
	"NC": South, "SC": South, "GA": South, "FL": South, "KY": South,
	"TN": South, "AL": South, "MS": South, "AR": South, "LA": South,
	"OK": South, "TX": South,

	"MT": West, "ID": West, "WY": West, "CO": West, "NM": West,
	"AZ": West, "UT": West, "NV": West, "WA": West, "OR": West,
	"CA": West, "AK": West, "HI": West,
}

// FromState returns the Census region for a two-letter state code.
// Territories (PR, GU, VI, ...) and unknown codes map to Other.
func FromState(state string) Region {
	if r, ok := stateRegions[strings.ToUpper(strings.TrimSpace(state))]; ok {
		return r
	}
	return Other
}

// All lists the four regions in conventional order.
func All() []Region {
	return []Region{Northeast, Midwest, South, West}
}
