package dataset

import "slices"

// ZipCodeType is the USPS classification of a ZIP code.
type ZipCodeType string

const (
	Standard ZipCodeType = "STANDARD"
	POBox    ZipCodeType = "PO BOX"
	Unique   ZipCodeType = "UNIQUE"
	Military ZipCodeType = "MILITARY"
)

// Record is a single ZIP code entry from the embedded dataset.
//
// Latitude and Longitude are kept as the exact strings from the source data.
type Record struct {
	Code               string      `json:"zip_code"`
	Type               ZipCodeType `json:"zip_code_type"`
	City               string      `json:"city"`
	AcceptableCities   []string    `json:"acceptable_cities"`
	UnacceptableCities []string    `json:"unacceptable_cities"`
	State              string      `json:"state"`
	County             string      `json:"county"`
	Country            string      `json:"country"`
	Latitude           string      `json:"lat"`
	Longitude          string      `json:"long"`
	Timezone           string      `json:"timezone"`
	AreaCodes          []string    `json:"area_codes"`
	Active             bool        `json:"active"`
	WorldRegion        string      `json:"world_region"`
}

// Clone returns a copy of r that shares no slices with it.
func (r Record) Clone() Record {
	r.AcceptableCities = cloneList(r.AcceptableCities)
	r.UnacceptableCities = cloneList(r.UnacceptableCities)
	r.AreaCodes = cloneList(r.AreaCodes)
	return r
}

func cloneList(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
