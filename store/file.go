package store

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/cwbudde/algo-obsnoise/measure/transfer"
	"github.com/cwbudde/algo-obsnoise/noise"
)

// SaveDay writes a daily estimate to path.
func SaveDay(path string, d *noise.Day) error {
	rec := NewDayRecord(d)
	return writeGob(path, &rec)
}

// LoadDay reads a daily estimate from path.
func LoadDay(path string) (*noise.Day, error) {
	var rec DayRecord
	if err := readGob(path, &rec); err != nil {
		return nil, err
	}
	return rec.Day(), nil
}

// SaveStation writes a station estimate to path.
func SaveStation(path string, s *noise.Station) error {
	rec := NewStationRecord(s)
	return writeGob(path, &rec)
}

// LoadStation reads a station estimate from path.
func LoadStation(path string) (*noise.Station, error) {
	var rec StationRecord
	if err := readGob(path, &rec); err != nil {
		return nil, err
	}
	return rec.Station(), nil
}

// SaveTransfer writes a transfer function set to path.
func SaveTransfer(path string, s transfer.Set) error {
	rec := NewTransferRecord(s)
	return writeGob(path, &rec)
}

// LoadTransfer reads a transfer function set from path.
func LoadTransfer(path string) (transfer.Set, error) {
	var rec TransferRecord
	if err := readGob(path, &rec); err != nil {
		return transfer.Set{}, err
	}
	return rec.Set(), nil
}

func writeGob(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	if err := gob.NewEncoder(zw).Encode(v); err != nil {
		zw.Close()
		return fmt.Errorf("store: encode %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return f.Close()
}

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer zr.Close()

	if err := gob.NewDecoder(zr).Decode(v); err != nil {
		return fmt.Errorf("store: decode %s: %w", path, err)
	}
	return nil
}
