package customer

import "strings"

// RegionUnknown is used when a postcode is empty or unrecognized.
const RegionUnknown = "Unknown"

// Regions lists the nine fixed UK regions a customer can be mapped to.
var Regions = []string{
	"London",
	"South East",
	"South West",
	"Midlands",
	"North East",
	"North West",
	"Wales",
	"Scotland",
	"Northern Ireland",
}

// regionByArea maps a postcode area (the leading letters of the outward
// code) to a region. Yorkshire and East Anglia areas are folded into
// North East and South East respectively, keeping the fixed nine-region
// model.
var regionByArea = map[string]string{
	// London and the surrounding postcode areas.
	"BR": "London", "CR": "London", "DA": "London", "E": "London",
	"EC": "London", "EN": "London", "HA": "London", "IG": "London",
	"KT": "London", "N": "London", "NW": "London", "RM": "London",
	"SE": "London", "SM": "London", "SW": "London", "TW": "London",
	"UB": "London", "W": "London", "WC": "London", "WD": "London",

	"AL": "South East", "BN": "South East", "CB": "South East",
	"CM": "South East", "CO": "South East", "CT": "South East",
	"GU": "South East", "HP": "South East", "IP": "South East",
	"LU": "South East", "ME": "South East", "MK": "South East",
	"NR": "South East", "OX": "South East", "PO": "South East",
	"RG": "South East", "RH": "South East", "SG": "South East",
	"SL": "South East", "SO": "South East", "SS": "South East",
	"TN": "South East",

	"BA": "South West", "BH": "South West", "BS": "South West",
	"DT": "South West", "EX": "South West", "GL": "South West",
	"PL": "South West", "SN": "South West", "SP": "South West",
	"TA": "South West", "TQ": "South West", "TR": "South West",

	"B": "Midlands", "CV": "Midlands", "DE": "Midlands", "DY": "Midlands",
	"HR": "Midlands", "LE": "Midlands", "LN": "Midlands", "NG": "Midlands",
	"NN": "Midlands", "PE": "Midlands", "ST": "Midlands", "TF": "Midlands",
	"WR": "Midlands", "WS": "Midlands", "WV": "Midlands",

	"BD": "North East", "DH": "North East", "DL": "North East",
	"DN": "North East", "HD": "North East", "HG": "North East",
	"HU": "North East", "HX": "North East", "LS": "North East",
	"NE": "North East", "S": "North East", "SR": "North East",
	"TS": "North East", "WF": "North East", "YO": "North East",

	"BB": "North West", "BL": "North West", "CA": "North West",
	"CH": "North West", "CW": "North West", "FY": "North West",
	"L": "North West", "LA": "North West", "M": "North West",
	"OL": "North West", "PR": "North West", "SK": "North West",
	"WA": "North West", "WN": "North West",

	"CF": "Wales", "LD": "Wales", "LL": "Wales", "NP": "Wales",
	"SA": "Wales", "SY": "Wales",

	"AB": "Scotland", "DD": "Scotland", "DG": "Scotland", "EH": "Scotland",
	"FK": "Scotland", "G": "Scotland", "HS": "Scotland", "IV": "Scotland",
	"KA": "Scotland", "KW": "Scotland", "KY": "Scotland", "ML": "Scotland",
	"PA": "Scotland", "PH": "Scotland", "TD": "Scotland", "ZE": "Scotland",

	"BT": "Northern Ireland",
}

// RegionForPostcode maps a UK postcode to one of the nine fixed regions by
// its postcode area (the leading letters of the outward code). Unrecognized
// or empty input maps to RegionUnknown.
func RegionForPostcode(postcode string) string {
	area := postcodeArea(postcode)
	if area == "" {
		return RegionUnknown
	}
	if region, ok := regionByArea[area]; ok {
		return region
	}
	return RegionUnknown
}

// postcodeArea extracts the leading letters of a postcode, uppercased.
// "sw1a 1aa" -> "SW", "EH1 1AA" -> "EH".
func postcodeArea(postcode string) string {
	pc := strings.ToUpper(strings.TrimSpace(postcode))
	i := 0
	for i < len(pc) && pc[i] >= 'A' && pc[i] <= 'Z' {
		i++
	}
	return pc[:i]
}
