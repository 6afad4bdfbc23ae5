// Package zipcode answers lookups against the embedded US ZIP code dataset.
//
// Package level functions search the whole dataset. The same operations
// are available as methods on Records, so the result of one query can be
// used as the scope of the next:
//
//	windsor := zipcode.FilterBy(zipcode.ActiveEquals(true), zipcode.CityEquals("Windsor"))
//	south, err := windsor.SimilarTo("2")
//
// Every operation returns a new slice of copied records. The dataset itself
// is never modified, so all functions are safe for concurrent use.
package zipcode

import (
	"strings"
	"sync"

	"zipcodes/internal/dataset"
)

// Record is a single ZIP code entry.
type Record = dataset.Record

// Records is an ordered set of records that queries can be scoped to.
type Records []Record

// all returns the process-wide dataset without copying it. It panics if the
// embedded dataset is corrupt, since an empty dataset would make every
// lookup report "not found".
func all() Records {
	return dataset.MustLoad()
}

// ListAll returns every record in dataset order.
func ListAll() Records {
	return all().clone()
}

// byCode maps each code in the dataset to the positions of its records.
var byCode = sync.OnceValue(func() map[string][]int {
	idx := make(map[string][]int)
	for i, r := range all() {
		idx[r.Code] = append(idx[r.Code], i)
	}
	return idx
})

// IsReal reports whether code, after normalization, belongs to at least one
// record in the dataset.
func IsReal(code string) (bool, error) {
	zip, err := Normalize(code)
	if err != nil {
		return false, err
	}
	return len(byCode()[zip]) > 0, nil
}

// Matching returns every record in the dataset whose code equals code.
// A ZIP+4 suffix is accepted and ignored.
func Matching(code string) (Records, error) {
	zip, err := Normalize(code)
	if err != nil {
		return nil, err
	}

	recs := all()
	out := Records{}
	for _, i := range byCode()[zip] {
		out = append(out, recs[i].Clone())
	}
	return out, nil
}

// SimilarTo returns every record in the dataset whose code starts with
// prefix.
func SimilarTo(prefix string) (Records, error) {
	return all().SimilarTo(prefix)
}

// FilterBy returns every record in the dataset that satisfies all preds.
func FilterBy(preds ...Predicate) Records {
	return all().FilterBy(preds...)
}

// Matching returns the records in rs whose code equals the normalized code,
// in rs order. No match is an empty result, not an error.
func (rs Records) Matching(code string) (Records, error) {
	zip, err := Normalize(code)
	if err != nil {
		return nil, err
	}
	return rs.where(func(r Record) bool { return r.Code == zip }), nil
}

// SimilarTo returns the records in rs whose code starts with prefix, which
// must be one to five digits.
func (rs Records) SimilarTo(prefix string) (Records, error) {
	p, err := normalizePrefix(prefix)
	if err != nil {
		return nil, err
	}
	return rs.where(func(r Record) bool { return strings.HasPrefix(r.Code, p) }), nil
}

// FilterBy returns the records in rs for which every predicate matches.
// With no predicates it returns a copy of rs.
func (rs Records) FilterBy(preds ...Predicate) Records {
	return rs.where(All(preds...).Match)
}

// Codes returns the code of each record, in order.
func (rs Records) Codes() []string {
	codes := make([]string, len(rs))
	for i, r := range rs {
		codes[i] = r.Code
	}
	return codes
}

func (rs Records) where(keep func(Record) bool) Records {
	out := Records{}
	for _, r := range rs {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func (rs Records) clone() Records {
	out := make(Records, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}
	return out
}
