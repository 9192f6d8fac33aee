// Package transfer computes frequency-domain transfer functions that
// predict tilt- and compliance-related noise on the vertical channel
// from the horizontal and pressure channels.
//
// Six models are supported, from a single-channel pressure regression
// (ZP) up to the full cascade removing both horizontals and pressure in
// sequence (ZP-21). The rotated-horizontal models ZH and ZP-H operate
// on spectra rotated into the tilt direction and are only meaningful
// for single-day estimates, where the tilt azimuth is stable.
package transfer
