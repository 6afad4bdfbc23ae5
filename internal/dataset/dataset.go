// Package dataset loads the embedded US ZIP code dataset.
//
// The dataset is produced at build time by cmd/precompute and compiled into
// the binary. It is decoded once, on first use, and never mutated after.
package dataset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
)

//go:generate go run ../../cmd/precompute -input ../../data -output zips.json.gz

const codeLength = 5

// ErrDataCorruption is returned when the embedded dataset cannot be decoded.
// A correctly built binary never returns it.
var ErrDataCorruption = errors.New("zipcode dataset is corrupt")

//go:embed zips.json.gz
var artifact []byte

var (
	loadOnce sync.Once
	records  []Record
	loadErr  error
)

// Load returns the embedded dataset in artifact order. The artifact is
// decoded on the first call only; later calls return the same slice and
// error. Callers must not modify the returned records.
func Load() ([]Record, error) {
	loadOnce.Do(func() {
		records, loadErr = Decode(bytes.NewReader(artifact))
	})
	return records, loadErr
}

// MustLoad is like Load but panics if the dataset is corrupt.
func MustLoad() []Record {
	recs, err := Load()
	if err != nil {
		panic(err)
	}
	return recs
}

// Decode reads a gzip compressed JSON array of records and normalizes them.
// Every failure wraps ErrDataCorruption.
func Decode(r io.Reader) ([]Record, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, corrupt("open gzip stream", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, corrupt("decompress", err)
	}

	var recs []Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, corrupt("decode json", err)
	}
	if len(recs) == 0 {
		return nil, corrupt("decode json", errors.New("no records"))
	}

	for i := range recs {
		if err := normalize(&recs[i]); err != nil {
			return nil, corrupt(fmt.Sprintf("record %d", i), err)
		}
	}

	return recs, nil
}

// normalize zero pads short codes and replaces nil lists with empty ones.
func normalize(r *Record) error {
	code, err := PadCode(r.Code)
	if err != nil {
		return err
	}
	r.Code = code

	if r.AcceptableCities == nil {
		r.AcceptableCities = []string{}
	}
	if r.UnacceptableCities == nil {
		r.UnacceptableCities = []string{}
	}
	if r.AreaCodes == nil {
		r.AreaCodes = []string{}
	}
	return nil
}

// PadCode left pads an all-digit code with zeros to five digits, the way
// spreadsheet exports lose leading zeros ("501" -> "00501").
func PadCode(code string) (string, error) {
	if code == "" || len(code) > codeLength {
		return "", fmt.Errorf("invalid zip code %q", code)
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return "", fmt.Errorf("invalid zip code %q", code)
		}
	}
	for len(code) < codeLength {
		code = "0" + code
	}
	return code, nil
}

func corrupt(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDataCorruption, op, err)
}
