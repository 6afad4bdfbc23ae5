// Package store exports ZIP code records into a SQLite database so the
// dataset can be queried with plain SQL.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"zipcodes/internal/dataset"
)

const (
	dropTables = `
		DROP TABLE IF EXISTS zipcode_cities;
		DROP TABLE IF EXISTS zipcode_area_codes;
		DROP TABLE IF EXISTS zipcodes;
	`

	createTables = `
		CREATE TABLE zipcodes (
			position INTEGER NOT NULL,
			zip_code TEXT NOT NULL,
			zip_code_type TEXT NOT NULL,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			county TEXT NOT NULL,
			country TEXT NOT NULL,
			lat TEXT NOT NULL,
			long TEXT NOT NULL,
			timezone TEXT NOT NULL,
			active INTEGER NOT NULL,
			world_region TEXT NOT NULL,
			PRIMARY KEY (position)
		);

		CREATE INDEX idx_zipcodes_zip_code ON zipcodes(zip_code);

		CREATE TABLE zipcode_area_codes (
			position INTEGER NOT NULL,
			ordinal INTEGER NOT NULL,
			area_code TEXT NOT NULL,
			FOREIGN KEY (position) REFERENCES zipcodes(position),
			PRIMARY KEY (position, ordinal)
		);

		CREATE TABLE zipcode_cities (
			position INTEGER NOT NULL,
			acceptable INTEGER NOT NULL,
			ordinal INTEGER NOT NULL,
			city TEXT NOT NULL,
			FOREIGN KEY (position) REFERENCES zipcodes(position),
			PRIMARY KEY (position, acceptable, ordinal)
		);
	`
)

// InitDB initializes and returns a SQLite database connection
func InitDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// CreateSchema drops any previous export and creates empty tables.
func CreateSchema(db *sql.DB) error {
	if _, err := db.Exec(dropTables); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	if _, err := db.Exec(createTables); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// InsertRecords writes records in a single transaction. A record's position
// in the slice is its key, so duplicate codes are preserved.
func InsertRecords(db *sql.DB, records []dataset.Record) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertZip, err := tx.Prepare(`INSERT INTO zipcodes
		(position, zip_code, zip_code_type, city, state, county, country, lat, long, timezone, active, world_region)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare zipcode insert: %w", err)
	}
	defer insertZip.Close()

	insertAreaCode, err := tx.Prepare(`INSERT INTO zipcode_area_codes (position, ordinal, area_code) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare area code insert: %w", err)
	}
	defer insertAreaCode.Close()

	insertCity, err := tx.Prepare(`INSERT INTO zipcode_cities (position, acceptable, ordinal, city) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare city insert: %w", err)
	}
	defer insertCity.Close()

	for pos, r := range records {
		if _, err := insertZip.Exec(pos, r.Code, string(r.Type), r.City, r.State, r.County, r.Country,
			r.Latitude, r.Longitude, r.Timezone, r.Active, r.WorldRegion); err != nil {
			return fmt.Errorf("failed to insert zipcode %s: %w", r.Code, err)
		}
		for i, ac := range r.AreaCodes {
			if _, err := insertAreaCode.Exec(pos, i, ac); err != nil {
				return fmt.Errorf("failed to insert area code for %s: %w", r.Code, err)
			}
		}
		for i, c := range r.AcceptableCities {
			if _, err := insertCity.Exec(pos, true, i, c); err != nil {
				return fmt.Errorf("failed to insert city for %s: %w", r.Code, err)
			}
		}
		for i, c := range r.UnacceptableCities {
			if _, err := insertCity.Exec(pos, false, i, c); err != nil {
				return fmt.Errorf("failed to insert city for %s: %w", r.Code, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CountRecords returns the number of exported records.
func CountRecords(db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM zipcodes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count zipcodes: %w", err)
	}
	return count, nil
}

// GetRecords fetches every exported record with the given code, in export
// order.
func GetRecords(db *sql.DB, code string) ([]dataset.Record, error) {
	rows, err := db.Query(`SELECT position, zip_code, zip_code_type, city, state, county, country, lat, long, timezone, active, world_region
		FROM zipcodes WHERE zip_code = ? ORDER BY position`, code)
	if err != nil {
		return nil, fmt.Errorf("failed to query zipcodes: %w", err)
	}
	defer rows.Close()

	var positions []int
	var records []dataset.Record
	for rows.Next() {
		var pos int
		var r dataset.Record
		var zipType string

		if err := rows.Scan(&pos, &r.Code, &zipType, &r.City, &r.State, &r.County, &r.Country,
			&r.Latitude, &r.Longitude, &r.Timezone, &r.Active, &r.WorldRegion); err != nil {
			return nil, fmt.Errorf("failed to scan zipcode: %w", err)
		}
		r.Type = dataset.ZipCodeType(zipType)

		positions = append(positions, pos)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating zipcodes: %w", err)
	}

	for i := range records {
		if err := loadLists(db, positions[i], &records[i]); err != nil {
			return nil, err
		}
	}

	return records, nil
}

func loadLists(db *sql.DB, pos int, r *dataset.Record) error {
	r.AreaCodes = []string{}
	r.AcceptableCities = []string{}
	r.UnacceptableCities = []string{}

	rows, err := db.Query(`SELECT area_code FROM zipcode_area_codes WHERE position = ? ORDER BY ordinal`, pos)
	if err != nil {
		return fmt.Errorf("failed to query area codes: %w", err)
	}
	for rows.Next() {
		var ac string
		if err := rows.Scan(&ac); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan area code: %w", err)
		}
		r.AreaCodes = append(r.AreaCodes, ac)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating area codes: %w", err)
	}

	rows, err = db.Query(`SELECT acceptable, city FROM zipcode_cities WHERE position = ? ORDER BY acceptable DESC, ordinal`, pos)
	if err != nil {
		return fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var acceptable bool
		var city string
		if err := rows.Scan(&acceptable, &city); err != nil {
			return fmt.Errorf("failed to scan city: %w", err)
		}
		if acceptable {
			r.AcceptableCities = append(r.AcceptableCities, city)
		} else {
			r.UnacceptableCities = append(r.UnacceptableCities, city)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating cities: %w", err)
	}

	return nil
}
