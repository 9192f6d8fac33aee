// Package outlier flags anomalous spectral windows through iterative
// leave-one-out rejection.
//
// Each window receives a penalty measuring how much its presence inflates
// the across-window scatter of the de-meaned log spectra, summed over all
// channels. Windows whose penalty exceeds a tolerance multiple of the
// penalty spread are removal candidates; a candidate set is only removed
// when an F-ratio test confirms the variance reduction is significant.
// The loop repeats on the surviving set until no removal passes the test.
//
// The identical procedure runs at two scales: per-window within a day and
// per-day within a station aggregate.
package outlier
