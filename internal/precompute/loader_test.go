package precompute

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"zipcodes/internal/dataset"
)

const testHeader = "zip,type,decommissioned,primary_city,acceptable_cities,unacceptable_cities,state,county,timezone,area_codes,world_region,country,latitude,longitude,irs_estimated_population\n"

func writeFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		want     []dataset.Record
		wantErr  bool
		setupErr bool // Whether to skip file creation to test errors
	}{
		{
			name:    "single standard code",
			content: testHeader + `77429,STANDARD,0,Cypress,,,TX,Harris County,America/Chicago,"281,832",NA,US,29.9857,-95.6548,74110`,
			want: []dataset.Record{{
				Code:               "77429",
				Type:               dataset.Standard,
				City:               "Cypress",
				AcceptableCities:   []string{},
				UnacceptableCities: []string{},
				State:              "TX",
				County:             "Harris County",
				Country:            "US",
				Latitude:           "29.9857",
				Longitude:          "-95.6548",
				Timezone:           "America/Chicago",
				AreaCodes:          []string{"281", "832"},
				Active:             true,
				WorldRegion:        "NA",
			}},
		},
		{
			name: "decommissioned code with city lists",
			content: testHeader +
				`21401,STANDARD,1,Annapolis,"Cape Saint Claire, Crownsville",Parole,MD,Anne Arundel County,America/New_York,410,NA,US,38.98,-76.49,0`,
			want: []dataset.Record{{
				Code:               "21401",
				Type:               dataset.Standard,
				City:               "Annapolis",
				AcceptableCities:   []string{"Cape Saint Claire", "Crownsville"},
				UnacceptableCities: []string{"Parole"},
				State:              "MD",
				County:             "Anne Arundel County",
				Country:            "US",
				Latitude:           "38.98",
				Longitude:          "-76.49",
				Timezone:           "America/New_York",
				AreaCodes:          []string{"410"},
				Active:             false,
				WorldRegion:        "NA",
			}},
		},
		{
			name:    "leading zeros restored",
			content: testHeader + `501,UNIQUE,0,Holtsville,,,NY,Suffolk County,America/New_York,631,NA,US,40.81,-73.04,0`,
			want: []dataset.Record{{
				Code:               "00501",
				Type:               dataset.Unique,
				City:               "Holtsville",
				AcceptableCities:   []string{},
				UnacceptableCities: []string{},
				State:              "NY",
				County:             "Suffolk County",
				Country:            "US",
				Latitude:           "40.81",
				Longitude:          "-73.04",
				Timezone:           "America/New_York",
				AreaCodes:          []string{"631"},
				Active:             true,
				WorldRegion:        "NA",
			}},
		},
		{
			name:    "reordered columns",
			content: "state,zip,primary_city,type,decommissioned,acceptable_cities,unacceptable_cities,county,timezone,area_codes,world_region,country,latitude,longitude\nAE,09002,APO,MILITARY,0,,,,,,EU,US,,\n",
			want: []dataset.Record{{
				Code:               "09002",
				Type:               dataset.Military,
				City:               "APO",
				AcceptableCities:   []string{},
				UnacceptableCities: []string{},
				State:              "AE",
				Country:            "US",
				AreaCodes:          []string{},
				Active:             true,
				WorldRegion:        "EU",
			}},
		},
		{
			name:    "header only",
			content: testHeader,
			want:    nil,
		},
		{
			name:    "empty file",
			content: "",
			wantErr: true,
		},
		{
			name:    "missing column",
			content: "zip,type\n77429,STANDARD\n",
			wantErr: true,
		},
		{
			name:    "bad zip",
			content: testHeader + `7742X,STANDARD,0,Cypress,,,TX,Harris County,America/Chicago,281,NA,US,29.98,-95.65,0`,
			wantErr: true,
		},
		{
			name:    "unterminated quote",
			content: testHeader + `77429,STANDARD,0,Cypress,,,TX,Harris County,America/Chicago,"281,NA,US,29.98,-95.65,0`,
			wantErr: true,
		},
		{
			name:     "non-existent file",
			setupErr: true,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var testFile string
			if tt.setupErr {
				testFile = filepath.Join(tmpDir, "nonexistent.csv")
			} else {
				testFile = writeFile(t, tmpDir, tt.name+".csv", tt.content)
			}

			got, err := LoadFile(testFile)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadFile() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LoadFile() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadFile_SourceData(t *testing.T) {
	got, err := LoadFile(filepath.Join("..", "..", "data", "zip_code_database.csv"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	embedded, err := dataset.Load()
	if err != nil {
		t.Fatalf("dataset.Load() error = %v", err)
	}

	// The embedded artifact is generated from this file.
	if !reflect.DeepEqual(DeduplicateRecords(got), embedded) {
		t.Error("source CSV and embedded dataset differ; run go generate ./internal/dataset")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		cell string
		want []string
	}{
		{cell: "", want: []string{}},
		{cell: "281", want: []string{"281"}},
		{cell: "281,832", want: []string{"281", "832"}},
		{cell: " 281 , ,832, ", want: []string{"281", "832"}},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			if got := splitList(tt.cell); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitList(%q) = %v, want %v", tt.cell, got, tt.want)
			}
		})
	}
}

func TestInputFiles(t *testing.T) {
	t.Run("single file", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := writeFile(t, tmpDir, "zips.csv", testHeader)

		files, err := InputFiles(path)
		if err != nil {
			t.Fatalf("InputFiles() error = %v", err)
		}
		if !reflect.DeepEqual(files, []string{path}) {
			t.Errorf("InputFiles() = %v", files)
		}
	})

	t.Run("directory skips non csv and subdirectories", func(t *testing.T) {
		tmpDir := t.TempDir()
		b := writeFile(t, tmpDir, "b.csv", testHeader)
		a := writeFile(t, tmpDir, "a.CSV", testHeader)
		writeFile(t, tmpDir, "README.md", "notes")
		if err := os.Mkdir(filepath.Join(tmpDir, "sub.csv"), 0755); err != nil {
			t.Fatalf("Failed to create subdirectory: %v", err)
		}

		files, err := InputFiles(tmpDir)
		if err != nil {
			t.Fatalf("InputFiles() error = %v", err)
		}
		if !reflect.DeepEqual(files, []string{a, b}) {
			t.Errorf("InputFiles() = %v, want %v", files, []string{a, b})
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		if _, err := InputFiles(t.TempDir()); err == nil {
			t.Error("Expected error for directory without csv files, got nil")
		}
	})

	t.Run("non-existent path", func(t *testing.T) {
		if _, err := InputFiles("/path/that/does/not/exist"); err == nil {
			t.Error("Expected error for non-existent path, got nil")
		}
	})
}

func TestLoadInputs(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "1-east.csv", testHeader+
		"06902,STANDARD,0,Stamford,,,CT,Fairfield County,America/New_York,203,NA,US,41.06,-73.54,0\n"+
		"06095,STANDARD,0,Windsor,,,CT,Hartford County,America/New_York,860,NA,US,41.85,-72.65,0\n")
	writeFile(t, tmpDir, "2-south.csv", testHeader+
		"77429,STANDARD,0,Cypress,,,TX,Harris County,America/Chicago,281,NA,US,29.98,-95.65,0\n"+
		"06902,STANDARD,0,Duplicate,,,CT,Fairfield County,America/New_York,203,NA,US,41.06,-73.54,0\n")
	writeFile(t, tmpDir, "3-west.csv", testHeader+
		"95492,STANDARD,0,Windsor,,,CA,Sonoma County,America/Los_Angeles,707,NA,US,38.54,-122.81,0\n")

	for _, workers := range []int{0, 1, 2, 8} {
		t.Run(fmt.Sprintf("%d workers", workers), func(t *testing.T) {
			var messages []string
			got, err := LoadInputs(tmpDir, workers, func(msg string) {
				messages = append(messages, msg)
			})
			if err != nil {
				t.Fatalf("LoadInputs() error = %v", err)
			}

			codes := make([]string, len(got))
			for i, r := range got {
				codes[i] = r.Code
			}
			want := []string{"06095", "06902", "77429", "95492"}
			if !reflect.DeepEqual(codes, want) {
				t.Errorf("LoadInputs() codes = %v, want %v", codes, want)
			}

			// First file wins for a duplicated code.
			if got[1].City != "Stamford" {
				t.Errorf("06902 city = %s, want Stamford", got[1].City)
			}

			if len(messages) != 4 {
				t.Errorf("Expected 4 progress messages, got %d: %v", len(messages), messages)
			}
			if !strings.Contains(messages[len(messages)-1], "Merged 3 files into 4 records") {
				t.Errorf("Unexpected final message %q", messages[len(messages)-1])
			}
		})
	}
}

func TestLoadInputs_BadFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "good.csv", testHeader+
		"06902,STANDARD,0,Stamford,,,CT,Fairfield County,America/New_York,203,NA,US,41.06,-73.54,0\n")
	writeFile(t, tmpDir, "bad.csv", "zip\n06902\n")

	if _, err := LoadInputs(tmpDir, 2, nil); err == nil {
		t.Error("Expected error for file with missing columns, got nil")
	}
}

func TestDeduplicateRecords(t *testing.T) {
	rec := func(code, city string) dataset.Record {
		return dataset.Record{Code: code, City: city}
	}

	tests := []struct {
		name    string
		batches [][]dataset.Record
		want    []dataset.Record
	}{
		{
			name:    "no batches",
			batches: nil,
			want:    []dataset.Record{},
		},
		{
			name:    "sorted by code",
			batches: [][]dataset.Record{{rec("77429", "Cypress"), rec("06902", "Stamford")}},
			want:    []dataset.Record{rec("06902", "Stamford"), rec("77429", "Cypress")},
		},
		{
			name: "first occurrence wins across batches",
			batches: [][]dataset.Record{
				{rec("06902", "Stamford")},
				{rec("06902", "Other"), rec("00501", "Holtsville")},
			},
			want: []dataset.Record{rec("00501", "Holtsville"), rec("06902", "Stamford")},
		},
		{
			name:    "duplicates within a batch",
			batches: [][]dataset.Record{{rec("1", "a"), rec("1", "b"), rec("1", "c")}},
			want:    []dataset.Record{rec("1", "a")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeduplicateRecords(tt.batches...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DeduplicateRecords() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Benchmarks

func BenchmarkLoadFile(b *testing.B) {
	tmpDir := b.TempDir()

	var builder strings.Builder
	builder.WriteString(testHeader)
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&builder, "%05d,STANDARD,0,City %d,,,TX,County,America/Chicago,\"281,832\",NA,US,29.98,-95.65,0\n", i, i)
	}
	testFile := writeFile(b, tmpDir, "bench.csv", builder.String())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LoadFile(testFile); err != nil {
			b.Fatalf("LoadFile() error = %v", err)
		}
	}
}

func BenchmarkDeduplicateRecords(b *testing.B) {
	records := make([]dataset.Record, 10000)
	for i := range records {
		records[i] = dataset.Record{Code: fmt.Sprintf("%05d", i%100)}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = DeduplicateRecords(records)
	}
}
