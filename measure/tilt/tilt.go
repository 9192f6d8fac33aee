package tilt

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-obsnoise/dsp/spectral"
)

// Config holds the azimuth search parameters.
type Config struct {
	Band       [2]float64 // coherence passband in Hz
	CoarseStep float64    // coarse grid step in degrees
	FineStep   float64    // refinement step in degrees
}

// DefaultConfig returns the search defaults: a 10 degree sweep refined at
// 1 degree, with coherence averaged over the 0.005-0.035 Hz band where
// tilt noise dominates.
func DefaultConfig() Config {
	return Config{
		Band:       [2]float64{0.005, 0.035},
		CoarseStep: 10,
		FineStep:   1,
	}
}

var (
	errMissingChannels = errors.New("tilt: both horizontal and vertical spectra are required")
	errEmptyBand       = errors.New("tilt: passband selects no frequency bins")
	errNoGoodWindows   = errors.New("tilt: no good windows")
)

// Estimate searches the azimuth grid for the rotation maximizing the mean
// in-band coherence between the rotated horizontal and the vertical,
// averaged over good windows. ftP may be nil for three-channel records.
// The returned container carries the rotated spectra at the chosen tilt
// plus the coarse coherence/phase curves for diagnostics.
func Estimate(ft1, ft2, ftZ, ftP [][]complex128, freqs []float64, good []bool, cfg Config) (spectral.Rotation, error) {
	if ft1 == nil || ft2 == nil || ftZ == nil {
		return spectral.Rotation{}, errMissingChannels
	}
	if cfg.CoarseStep <= 0 || cfg.FineStep <= 0 {
		cfg = DefaultConfig()
	}

	nf := len(freqs)
	band := bandIndices(freqs, cfg.Band)
	if len(band) == 0 {
		return spectral.Rotation{}, errEmptyBand
	}
	if countGood(good) == 0 {
		return spectral.Rotation{}, errNoGoodWindows
	}

	cZZ := meanAuto(ftZ, good, nf)

	// Coarse sweep.
	nAz := int(360 / cfg.CoarseStep)
	azimuths := make([]float64, nAz)
	coh := make([]float64, nAz)
	ph := make([]float64, nAz)
	for i := range azimuths {
		az := float64(i) * cfg.CoarseStep
		azimuths[i] = az
		coh[i], ph[i] = directionScore(ft1, ft2, ftZ, cZZ, good, band, nf, az)
	}

	best := argmax(coh)
	tiltAz := azimuths[best]
	cohValue := coh[best]
	phaseValue := ph[best]

	// Refine around the coarse maximum.
	for az := tiltAz - cfg.CoarseStep; az <= tiltAz+cfg.CoarseStep; az += cfg.FineStep {
		c, p := directionScore(ft1, ft2, ftZ, cZZ, good, band, nf, az)
		if c > cohValue {
			cohValue = c
			phaseValue = p
			tiltAz = az
		}
	}

	// Tilt noise leaks in phase with the vertical; an anti-phase maximum
	// means the axis points the opposite way.
	if math.Abs(phaseValue) > 0.5*math.Pi {
		tiltAz += 180
	}
	tiltAz = math.Mod(tiltAz+360, 360)

	ftH := RotateSpectra(ft1, ft2, tiltAz)
	rot := spectral.Rotation{
		CHH:        meanAuto(ftH, good, nf),
		CHZ:        meanCross(ftH, ftZ, good, nf),
		Coh:        coh,
		Phase:      ph,
		Azimuths:   azimuths,
		Tilt:       tiltAz,
		CohValue:   cohValue,
		PhaseValue: phaseValue,
	}
	if ftP != nil {
		rot.CHP = meanCross(ftH, ftP, good, nf)
	}
	return rot, nil
}

// RotateSpectra forms the rotated horizontal H = cos(az)*H1 + sin(az)*H2
// per window and bin. Rotation commutes with the Fourier transform, so it
// applies directly to the spectra.
func RotateSpectra(ft1, ft2 [][]complex128, azimuthDeg float64) [][]complex128 {
	rad := azimuthDeg * math.Pi / 180
	c := complex(math.Cos(rad), 0)
	s := complex(math.Sin(rad), 0)

	out := make([][]complex128, len(ft1))
	for w := range ft1 {
		row := make([]complex128, len(ft1[w]))
		for k := range row {
			row[k] = c*ft1[w][k] + s*ft2[w][k]
		}
		out[w] = row
	}
	return out
}

// directionScore returns the mean in-band coherence of the rotated
// horizontal with Z and the corresponding mean phase offset.
func directionScore(ft1, ft2, ftZ [][]complex128, cZZ []float64, good []bool, band []int, nf int, az float64) (float64, float64) {
	ftH := RotateSpectra(ft1, ft2, az)
	cHH := meanAuto(ftH, good, nf)
	cHZ := meanCross(ftH, ftZ, good, nf)

	cohSum := 0.0
	phSum := 0.0
	for _, k := range band {
		den := cHH[k] * cZZ[k]
		if den > 0 {
			m := cmplx.Abs(cHZ[k])
			cohSum += m * m / den
		}
		phSum += cmplx.Phase(cHZ[k])
	}
	n := float64(len(band))
	return cohSum / n, phSum / n
}

func meanAuto(ft [][]complex128, good []bool, nf int) []float64 {
	acc := make([]complex128, nf)
	n := 0
	for w, row := range ft {
		if !good[w] {
			continue
		}
		n++
		for k := 0; k < nf; k++ {
			acc[k] += row[k] * cmplx.Conj(row[k])
		}
	}
	out := make([]float64, nf)
	if n == 0 {
		return out
	}
	inv := complex(1/float64(n), 0)
	for k := range acc {
		out[k] = cmplx.Abs(acc[k] * inv)
	}
	return out
}

func meanCross(fta, ftb [][]complex128, good []bool, nf int) []complex128 {
	out := make([]complex128, nf)
	n := 0
	for w := range fta {
		if !good[w] {
			continue
		}
		n++
		for k := 0; k < nf; k++ {
			out[k] += fta[w][k] * cmplx.Conj(ftb[w][k])
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

func bandIndices(freqs []float64, band [2]float64) []int {
	var idx []int
	for k, f := range freqs {
		if f > band[0] && f < band[1] {
			idx = append(idx, k)
		}
	}
	return idx
}

func countGood(good []bool) int {
	n := 0
	for _, g := range good {
		if g {
			n++
		}
	}
	return n
}

func argmax(x []float64) int {
	best := 0
	for i, v := range x {
		if v > x[best] {
			best = i
		}
	}
	return best
}
