// Package tilt estimates the azimuth of maximum coherence between the
// rotated horizontal channels and the vertical, the direction in which
// sensor tilt leaks into the vertical record.
//
// A coarse azimuth sweep is refined around its maximum; the rotated
// horizontal spectra at the chosen azimuth feed the ZH and ZP-H transfer
// function models.
package tilt
