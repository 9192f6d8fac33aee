// Package correct removes predicted tilt and compliance noise from
// event records on the vertical channel.
//
// Transfer functions solved on a one-sided frequency axis are extended
// to the full two-sided transform length by Hermitian symmetry, the
// predicted noise is subtracted in the frequency domain following the
// cascade order of each model, and the cleaned vertical is recovered by
// the inverse transform.
package correct
