// Package segment slices day-long and event time series into overlapping,
// tapered windows and transforms them into per-window spectra.
//
// Two outputs are produced from the same framing: one-sided power
// spectrograms used by the quality-control stage, and full-length complex
// spectra used by the averaging and correction stages. Both share the same
// stride so a goodness mask computed on one indexes the other.
package segment
