package spectral

import (
	"errors"
	"fmt"
	"math/cmplx"
)

var (
	// ErrNoGoodWindows is returned when a goodness mask leaves nothing
	// to average.
	ErrNoGoodWindows = errors.New("spectral: no good windows to average")
	// ErrNoGoodDays is the station-level counterpart of ErrNoGoodWindows.
	ErrNoGoodDays = errors.New("spectral: no good days to average")

	errMissingVertical = errors.New("spectral: vertical channel spectra are required")
)

// WindowSpectra groups the per-window complex spectra of the available
// channels. Absent channels are nil; Z is mandatory. All populated
// channels must hold the same number of windows, equal to the mask length.
type WindowSpectra struct {
	H1 [][]complex128
	H2 [][]complex128
	Z  [][]complex128
	P  [][]complex128
}

func (w WindowSpectra) validate(nwin int) error {
	if w.Z == nil {
		return errMissingVertical
	}
	for name, ft := range map[string][][]complex128{"H1": w.H1, "H2": w.H2, "Z": w.Z, "P": w.P} {
		if ft == nil {
			continue
		}
		if len(ft) != nwin {
			return fmt.Errorf("spectral: channel %s has %d windows, mask has %d", name, len(ft), nwin)
		}
	}
	if (w.H1 == nil) != (w.H2 == nil) {
		return errors.New("spectral: horizontal channels must both be present or both absent")
	}
	return nil
}

// AverageWindows averages per-window spectra over the good windows of the
// mask, producing auto-power and cross-power containers restricted to the
// one-sided axis of length nf. The complementary averages over bad
// windows are returned for diagnostics; the bad Power is empty when every
// window is good.
func AverageWindows(w WindowSpectra, good []bool, nf int) (Power, Cross, Power, error) {
	if err := w.validate(len(good)); err != nil {
		return Power{}, Cross{}, Power{}, err
	}

	ngood := 0
	for _, g := range good {
		if g {
			ngood++
		}
	}
	if ngood == 0 {
		return Power{}, Cross{}, Power{}, ErrNoGoodWindows
	}

	var pw Power
	pw.CZZ = meanAuto(w.Z, good, true, nf)
	if w.P != nil {
		pw.CPP = meanAuto(w.P, good, true, nf)
	}
	if w.H1 != nil {
		pw.C11 = meanAuto(w.H1, good, true, nf)
		pw.C22 = meanAuto(w.H2, good, true, nf)
	}

	var bad Power
	if ngood < len(good) {
		bad.CZZ = meanAuto(w.Z, good, false, nf)
		if w.P != nil {
			bad.CPP = meanAuto(w.P, good, false, nf)
		}
		if w.H1 != nil {
			bad.C11 = meanAuto(w.H1, good, false, nf)
			bad.C22 = meanAuto(w.H2, good, false, nf)
		}
	}

	var cs Cross
	if w.H1 != nil {
		cs.C12 = meanCross(w.H1, w.H2, good, nf)
		cs.C1Z = meanCross(w.H1, w.Z, good, nf)
		cs.C2Z = meanCross(w.H2, w.Z, good, nf)
		if w.P != nil {
			cs.C1P = meanCross(w.H1, w.P, good, nf)
			cs.C2P = meanCross(w.H2, w.P, good, nf)
		}
	}
	if w.P != nil {
		cs.CZP = meanCross(w.Z, w.P, good, nf)
	}

	return pw, cs, bad, nil
}

// meanAuto returns |mean(ft*conj(ft))| over the selected windows,
// restricted to nf bins.
func meanAuto(ft [][]complex128, good []bool, sel bool, nf int) []float64 {
	out := make([]float64, nf)
	acc := make([]complex128, nf)
	n := 0
	for w, row := range ft {
		if good[w] != sel {
			continue
		}
		n++
		for k := 0; k < nf; k++ {
			acc[k] += row[k] * cmplx.Conj(row[k])
		}
	}
	if n == 0 {
		return out
	}
	inv := complex(1/float64(n), 0)
	for k := range acc {
		out[k] = cmplx.Abs(acc[k] * inv)
	}
	return out
}

// meanCross returns mean(fta*conj(ftb)) over good windows, restricted to
// nf bins.
func meanCross(fta, ftb [][]complex128, good []bool, nf int) []complex128 {
	out := make([]complex128, nf)
	n := 0
	for w := range fta {
		if !good[w] {
			continue
		}
		n++
		a := fta[w]
		b := ftb[w]
		for k := 0; k < nf; k++ {
			out[k] += a[k] * cmplx.Conj(b[k])
		}
	}
	if n == 0 {
		return out
	}
	inv := complex(1/float64(n), 0)
	for k := range out {
		out[k] *= inv
	}
	return out
}

// DayEstimate is one day's averaged spectra with its surviving window
// count, the station-stage averaging weight.
type DayEstimate struct {
	Power    Power
	Cross    Cross
	Rotation Rotation
	NWins    int
}

// AverageStation combines daily estimates into station averages using a
// window-count-weighted mean over good days, so days with more surviving
// windows contribute proportionally more. Bad-day power averages are
// returned for diagnostics.
func AverageStation(days []DayEstimate, good []bool) (Power, Cross, Rotation, Power, error) {
	if len(days) == 0 || len(days) != len(good) {
		return Power{}, Cross{}, Rotation{}, Power{}, fmt.Errorf("spectral: %d day estimates for %d mask entries", len(days), len(good))
	}

	ngood := 0
	for _, g := range good {
		if g {
			ngood++
		}
	}
	if ngood == 0 {
		return Power{}, Cross{}, Rotation{}, Power{}, ErrNoGoodDays
	}

	pw := Power{
		CZZ: weightedReal(days, good, true, func(d DayEstimate) []float64 { return d.Power.CZZ }),
		CPP: weightedReal(days, good, true, func(d DayEstimate) []float64 { return d.Power.CPP }),
		C11: weightedReal(days, good, true, func(d DayEstimate) []float64 { return d.Power.C11 }),
		C22: weightedReal(days, good, true, func(d DayEstimate) []float64 { return d.Power.C22 }),
	}

	var bad Power
	if ngood < len(good) {
		bad = Power{
			CZZ: weightedReal(days, good, false, func(d DayEstimate) []float64 { return d.Power.CZZ }),
			CPP: weightedReal(days, good, false, func(d DayEstimate) []float64 { return d.Power.CPP }),
			C11: weightedReal(days, good, false, func(d DayEstimate) []float64 { return d.Power.C11 }),
			C22: weightedReal(days, good, false, func(d DayEstimate) []float64 { return d.Power.C22 }),
		}
	}

	cs := Cross{
		C12: weightedComplex(days, good, func(d DayEstimate) []complex128 { return d.Cross.C12 }),
		C1Z: weightedComplex(days, good, func(d DayEstimate) []complex128 { return d.Cross.C1Z }),
		C1P: weightedComplex(days, good, func(d DayEstimate) []complex128 { return d.Cross.C1P }),
		C2Z: weightedComplex(days, good, func(d DayEstimate) []complex128 { return d.Cross.C2Z }),
		C2P: weightedComplex(days, good, func(d DayEstimate) []complex128 { return d.Cross.C2P }),
		CZP: weightedComplex(days, good, func(d DayEstimate) []complex128 { return d.Cross.CZP }),
	}

	rot := Rotation{
		CHH: weightedReal(days, good, true, func(d DayEstimate) []float64 { return d.Rotation.CHH }),
		CHZ: weightedComplex(days, good, func(d DayEstimate) []complex128 { return d.Rotation.CHZ }),
		CHP: weightedComplex(days, good, func(d DayEstimate) []complex128 { return d.Rotation.CHP }),
	}

	return pw, cs, rot, bad, nil
}

// weightedReal computes sum(day*nwins)/sum(nwins) per bin over the
// selected days. Days whose field is nil disable the output entirely.
func weightedReal(days []DayEstimate, good []bool, sel bool, field func(DayEstimate) []float64) []float64 {
	var out []float64
	wsum := 0.0
	for i, d := range days {
		if good[i] != sel {
			continue
		}
		v := field(d)
		if v == nil {
			return nil
		}
		if out == nil {
			out = make([]float64, len(v))
		}
		w := float64(d.NWins)
		wsum += w
		for k := range v {
			out[k] += v[k] * w
		}
	}
	if out == nil || wsum == 0 {
		return nil
	}
	for k := range out {
		out[k] /= wsum
	}
	return out
}

func weightedComplex(days []DayEstimate, good []bool, field func(DayEstimate) []complex128) []complex128 {
	var out []complex128
	wsum := 0.0
	for i, d := range days {
		if !good[i] {
			continue
		}
		v := field(d)
		if v == nil {
			return nil
		}
		if out == nil {
			out = make([]complex128, len(v))
		}
		w := float64(d.NWins)
		wsum += w
		for k := range v {
			out[k] += v[k] * complex(w, 0)
		}
	}
	if out == nil || wsum == 0 {
		return nil
	}
	inv := complex(1/wsum, 0)
	for k := range out {
		out[k] *= inv
	}
	return out
}

// Coherence returns |gxy|^2 / (gxx*gyy) per bin, the normalized
// magnitude-squared cross-power. Zero denominators yield zero coherence.
func Coherence(gxy []complex128, gxx, gyy []float64) []float64 {
	out := make([]float64, len(gxy))
	for k := range gxy {
		den := gxx[k] * gyy[k]
		if den == 0 {
			continue
		}
		m := cmplx.Abs(gxy[k])
		out[k] = m * m / den
	}
	return out
}
