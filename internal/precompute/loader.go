package precompute

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"zipcodes/internal/dataset"
)

// Source CSV columns. Other columns (such as irs_estimated_population) are
// ignored.
const (
	colZip                = "zip"
	colType               = "type"
	colDecommissioned     = "decommissioned"
	colPrimaryCity        = "primary_city"
	colAcceptableCities   = "acceptable_cities"
	colUnacceptableCities = "unacceptable_cities"
	colState              = "state"
	colCounty             = "county"
	colTimezone           = "timezone"
	colAreaCodes          = "area_codes"
	colWorldRegion        = "world_region"
	colCountry            = "country"
	colLatitude           = "latitude"
	colLongitude          = "longitude"
)

var requiredColumns = []string{
	colZip, colType, colDecommissioned, colPrimaryCity,
	colAcceptableCities, colUnacceptableCities, colState, colCounty,
	colTimezone, colAreaCodes, colWorldRegion, colCountry,
	colLatitude, colLongitude,
}

// LoadFile parses a ZIP code database CSV and returns its records in file
// order.
func LoadFile(filename string) ([]dataset.Record, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer f.Close()

	records, err := parseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filename, err)
	}
	return records, nil
}

func parseCSV(r io.Reader) ([]dataset.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var records []dataset.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRow(row []string, index map[string]int) (dataset.Record, error) {
	field := func(name string) string {
		i := index[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	code, err := dataset.PadCode(field(colZip))
	if err != nil {
		return dataset.Record{}, err
	}

	return dataset.Record{
		Code:               code,
		Type:               dataset.ZipCodeType(field(colType)),
		City:               field(colPrimaryCity),
		AcceptableCities:   splitList(field(colAcceptableCities)),
		UnacceptableCities: splitList(field(colUnacceptableCities)),
		State:              field(colState),
		County:             field(colCounty),
		Country:            field(colCountry),
		Latitude:           field(colLatitude),
		Longitude:          field(colLongitude),
		Timezone:           field(colTimezone),
		AreaCodes:          splitList(field(colAreaCodes)),
		Active:             field(colDecommissioned) != "1",
		WorldRegion:        field(colWorldRegion),
	}, nil
}

// splitList splits a comma separated cell, dropping blanks.
func splitList(cell string) []string {
	out := []string{}
	for _, part := range strings.Split(cell, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// InputFiles returns path itself when it is a file, or the CSV files
// directly inside it when it is a directory, sorted by name.
func InputFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no csv files found in directory %s", path)
	}
	sort.Strings(files)
	return files, nil
}

// LoadInputs parses every input file with a pool of workers and merges the
// results with DeduplicateRecords.
//
// workers: number of parallel parsers. If 0 or negative, uses runtime.NumCPU().
func LoadInputs(path string, workers int, progressCallback func(string)) ([]dataset.Record, error) {
	files, err := InputFiles(path)
	if err != nil {
		return nil, err
	}

	workerPoolSize := workers
	if workerPoolSize <= 0 {
		workerPoolSize = runtime.NumCPU()
	}
	if workerPoolSize > len(files) {
		workerPoolSize = len(files)
	}

	// Each worker writes only its own file's slot.
	batches := make([][]dataset.Record, len(files))
	fileIdx := make(chan int, len(files))
	for i := range files {
		fileIdx <- i
	}
	close(fileIdx)

	var progressMu sync.Mutex
	report := func(msg string) {
		if progressCallback == nil {
			return
		}
		progressMu.Lock()
		defer progressMu.Unlock()
		progressCallback(msg)
	}

	var eg errgroup.Group
	for w := 1; w <= workerPoolSize; w++ {
		w := w
		eg.Go(func() error {
			for i := range fileIdx {
				records, err := LoadFile(files[i])
				if err != nil {
					return err
				}
				batches[i] = records
				report(fmt.Sprintf("  Parsed file %d/%d: %s (%d records, worker %d)",
					i+1, len(files), filepath.Base(files[i]), len(records), w))
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := DeduplicateRecords(batches...)
	report(fmt.Sprintf("  Merged %d files into %d records", len(files), len(merged)))
	return merged, nil
}

// DeduplicateRecords concatenates batches, keeps the first record seen for
// each code and sorts the result by code.
func DeduplicateRecords(batches ...[]dataset.Record) []dataset.Record {
	seen := make(map[string]bool)
	result := make([]dataset.Record, 0)

	for _, batch := range batches {
		for _, r := range batch {
			if !seen[r.Code] {
				seen[r.Code] = true
				result = append(result, r)
			}
		}
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result
}
