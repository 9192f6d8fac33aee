package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get for an unknown station.
var ErrNotFound = errors.New("store: station not found")

// StationInfo is the deployment metadata of one station.
type StationInfo struct {
	Network   string
	Station   string
	Latitude  float64
	Longitude float64
	Elevation float64 // meters, negative below sea level
	Channels  string  // recorded components, e.g. "12ZP"
	Sampling  float64 // samples per second
}

// DB is the station metadata database.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates the station database at path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS stations (
		network   TEXT NOT NULL,
		station   TEXT NOT NULL,
		latitude  REAL,
		longitude REAL,
		elevation REAL,
		channels  TEXT,
		sampling  REAL,
		PRIMARY KEY (network, station)
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Put inserts or replaces a station record.
func (d *DB) Put(info StationInfo) error {
	const q = `INSERT OR REPLACE INTO stations
		(network, station, latitude, longitude, elevation, channels, sampling)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := d.db.Exec(q, info.Network, info.Station,
		info.Latitude, info.Longitude, info.Elevation, info.Channels, info.Sampling)
	return err
}

// Get returns the record of one station.
func (d *DB) Get(network, station string) (StationInfo, error) {
	const q = `SELECT network, station, latitude, longitude, elevation, channels, sampling
		FROM stations WHERE network = ? AND station = ?`
	var info StationInfo
	err := d.db.QueryRow(q, network, station).Scan(
		&info.Network, &info.Station,
		&info.Latitude, &info.Longitude, &info.Elevation,
		&info.Channels, &info.Sampling)
	if err == sql.ErrNoRows {
		return StationInfo{}, ErrNotFound
	}
	if err != nil {
		return StationInfo{}, err
	}
	return info, nil
}

// List returns all stations ordered by network and station code.
func (d *DB) List() ([]StationInfo, error) {
	const q = `SELECT network, station, latitude, longitude, elevation, channels, sampling
		FROM stations ORDER BY network, station`
	rows, err := d.db.Query(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StationInfo
	for rows.Next() {
		var info StationInfo
		if err := rows.Scan(&info.Network, &info.Station,
			&info.Latitude, &info.Longitude, &info.Elevation,
			&info.Channels, &info.Sampling); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}
