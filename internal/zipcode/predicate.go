package zipcode

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"zipcodes/internal/dataset"
)

// Predicate decides whether a record belongs in a filtered result.
type Predicate interface {
	Match(r Record) bool
}

// PredicateFunc adapts an ordinary function to a Predicate.
type PredicateFunc func(r Record) bool

func (f PredicateFunc) Match(r Record) bool { return f(r) }

// All matches records that satisfy every p. All() matches everything.
func All(preds ...Predicate) Predicate {
	return PredicateFunc(func(r Record) bool {
		for _, p := range preds {
			if !p.Match(r) {
				return false
			}
		}
		return true
	})
}

// Or matches records that satisfy at least one p. Or() matches nothing.
func Or(preds ...Predicate) Predicate {
	return PredicateFunc(func(r Record) bool {
		for _, p := range preds {
			if p.Match(r) {
				return true
			}
		}
		return false
	})
}

func Not(p Predicate) Predicate {
	return PredicateFunc(func(r Record) bool { return !p.Match(r) })
}

func ActiveEquals(active bool) Predicate {
	return PredicateFunc(func(r Record) bool { return r.Active == active })
}

func CityEquals(city string) Predicate {
	return PredicateFunc(func(r Record) bool { return r.City == city })
}

func StateEquals(state string) Predicate {
	return PredicateFunc(func(r Record) bool { return r.State == state })
}

func CountyEquals(county string) Predicate {
	return PredicateFunc(func(r Record) bool { return r.County == county })
}

func TypeEquals(t dataset.ZipCodeType) Predicate {
	return PredicateFunc(func(r Record) bool { return r.Type == t })
}

func TimezoneEquals(tz string) Predicate {
	return PredicateFunc(func(r Record) bool { return r.Timezone == tz })
}

func WorldRegionEquals(region string) Predicate {
	return PredicateFunc(func(r Record) bool { return r.WorldRegion == region })
}

// HasAreaCode matches records served by the telephone area code.
func HasAreaCode(code string) Predicate {
	return PredicateFunc(func(r Record) bool { return slices.Contains(r.AreaCodes, code) })
}

// AcceptsCity matches records whose primary or acceptable city names
// include city, ignoring case.
func AcceptsCity(city string) Predicate {
	return PredicateFunc(func(r Record) bool {
		if strings.EqualFold(r.City, city) {
			return true
		}
		return slices.ContainsFunc(r.AcceptableCities, func(c string) bool {
			return strings.EqualFold(c, city)
		})
	})
}

// CityContains matches records whose primary city contains sub, ignoring case.
func CityContains(sub string) Predicate {
	sub = strings.ToLower(sub)
	return PredicateFunc(func(r Record) bool {
		return strings.Contains(strings.ToLower(r.City), sub)
	})
}

// LatitudeBetween matches records with lo <= latitude <= hi. Records
// without a parseable latitude never match.
func LatitudeBetween(lo, hi float64) Predicate {
	return PredicateFunc(func(r Record) bool { return between(r.Latitude, lo, hi) })
}

// LongitudeBetween matches records with lo <= longitude <= hi.
func LongitudeBetween(lo, hi float64) Predicate {
	return PredicateFunc(func(r Record) bool { return between(r.Longitude, lo, hi) })
}

func between(coord string, lo, hi float64) bool {
	v, err := strconv.ParseFloat(coord, 64)
	if err != nil {
		return false
	}
	return v >= lo && v <= hi
}

// AttributeEquals builds an equality predicate from a field name as it
// appears in the dataset (for example "city", "state" or "active").
func AttributeEquals(name, value string) (Predicate, error) {
	switch name {
	case "zip_code", "code":
		zip, err := attributeCode(value)
		if err != nil {
			return nil, err
		}
		return PredicateFunc(func(r Record) bool { return r.Code == zip }), nil
	case "zip_code_type", "type":
		return TypeEquals(dataset.ZipCodeType(value)), nil
	case "city":
		return CityEquals(value), nil
	case "state":
		return StateEquals(value), nil
	case "county":
		return CountyEquals(value), nil
	case "country":
		return PredicateFunc(func(r Record) bool { return r.Country == value }), nil
	case "timezone":
		return TimezoneEquals(value), nil
	case "world_region":
		return WorldRegionEquals(value), nil
	case "area_code", "area_codes":
		return HasAreaCode(value), nil
	case "lat":
		return PredicateFunc(func(r Record) bool { return r.Latitude == value }), nil
	case "long":
		return PredicateFunc(func(r Record) bool { return r.Longitude == value }), nil
	case "active":
		active, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("attribute active: %w", err)
		}
		return ActiveEquals(active), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
}

// attributeCode normalizes a code given as a filter value. Like the codes in
// the source data, a base shorter than five digits is zero padded.
func attributeCode(value string) (string, error) {
	base, suffix, hasSuffix := strings.Cut(value, "-")
	if padded, err := dataset.PadCode(base); err == nil {
		base = padded
	}
	if hasSuffix {
		base += "-" + suffix
	}

	zip, err := Normalize(base)
	var verr *ValidationError
	if errors.As(err, &verr) {
		return "", &ValidationError{Input: value, Err: verr.Err}
	}
	return zip, err
}
