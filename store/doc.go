// Package store persists pipeline results between processing stages.
//
// Spectral estimates and transfer function sets are written as
// gzip-compressed gob files so that daily averaging, station
// aggregation and event correction can run as separate invocations.
// Station metadata lives in a small SQLite database keyed by network
// and station code.
package store
