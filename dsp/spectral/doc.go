// Package spectral defines the power, cross-power and rotated-spectrum
// containers of the noise pipeline and the averaging operations that
// produce them from per-window spectra and per-day estimates.
//
// Containers are produced once per averaging call and treated as
// immutable afterwards; absent channels leave their fields nil.
package spectral
