package transfer

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/cwbudde/algo-obsnoise/dsp/spectral"
)

var (
	errEmptyPower    = errors.New("transfer: empty power container")
	errEmptyCross    = errors.New("transfer: empty cross-power container")
	errEmptyRotation = errors.New("transfer: rotated-horizontal model needs rotation spectra")
)

// ZPCoeffs holds the single-stage pressure regression.
type ZPCoeffs struct {
	TFZP []complex128
}

// Z1Coeffs holds the single-stage H1 regression.
type Z1Coeffs struct {
	TFZ1 []complex128
}

// Z21Coeffs holds the H2-after-H1 cascade. TF21 predicts H2 from H1;
// TFZ21 predicts the H1-cleaned vertical from the H1-cleaned H2.
type Z21Coeffs struct {
	TF21  []complex128
	TFZ21 []complex128
}

// ZP21Coeffs holds the full three-stage cascade removing H1, H2 and
// pressure in sequence.
type ZP21Coeffs struct {
	TFZ1   []complex128
	TF21   []complex128
	TFP1   []complex128
	TFP21  []complex128
	TFZ21  []complex128
	TFZP21 []complex128
}

// ZHCoeffs holds the rotated-horizontal regression.
type ZHCoeffs struct {
	TFZH []complex128
}

// ZPHCoeffs holds the pressure-after-rotated-horizontal cascade.
type ZPHCoeffs struct {
	TFPH  []complex128
	TFZPH []complex128
}

// Set collects the solved transfer functions of one estimate. Models
// that were not requested, or could not be solved from the available
// channels, leave their field nil.
type Set struct {
	Freqs []float64
	Tilt  float64 // azimuth the ZH/ZP-H coefficients were solved at

	ZP   *ZPCoeffs
	Z1   *Z1Coeffs
	Z21  *Z21Coeffs
	ZP21 *ZP21Coeffs
	ZH   *ZHCoeffs
	ZPH  *ZPHCoeffs
}

// Has reports whether the set carries solved coefficients for m.
func (s *Set) Has(m Model) bool {
	switch m {
	case ModelZP:
		return s.ZP != nil
	case ModelZ1:
		return s.Z1 != nil
	case ModelZ21:
		return s.Z21 != nil
	case ModelZP21:
		return s.ZP21 != nil
	case ModelZH:
		return s.ZH != nil
	case ModelZPH:
		return s.ZPH != nil
	}
	return false
}

// Solve derives the requested transfer function models from averaged
// auto- and cross-spectra. The rotation container may be empty when no
// rotated model is requested. Bins where a stage's denominator vanishes
// yield zero coefficients, leaving those bins uncorrected.
func Solve(pw spectral.Power, cs spectral.Cross, rot spectral.Rotation, freqs []float64, models []Model) (Set, error) {
	if pw.Empty() {
		return Set{}, errEmptyPower
	}
	if cs.Empty() {
		return Set{}, errEmptyCross
	}

	set := Set{Freqs: freqs, Tilt: rot.Tilt}
	for _, m := range models {
		switch m {
		case ModelZP:
			if pw.CPP == nil || cs.CZP == nil {
				return Set{}, fmt.Errorf("transfer: model %s needs pressure spectra", m)
			}
			set.ZP = &ZPCoeffs{TFZP: divCR(cs.CZP, pw.CPP)}

		case ModelZ1:
			if pw.C11 == nil || cs.C1Z == nil {
				return Set{}, fmt.Errorf("transfer: model %s needs horizontal spectra", m)
			}
			set.Z1 = &Z1Coeffs{TFZ1: divCR(conj(cs.C1Z), pw.C11)}

		case ModelZ21:
			if pw.C11 == nil || pw.C22 == nil || cs.C12 == nil {
				return Set{}, fmt.Errorf("transfer: model %s needs horizontal spectra", m)
			}
			set.Z21 = solveZ21(pw, cs)

		case ModelZP21:
			if pw.C11 == nil || pw.CPP == nil || cs.C1P == nil {
				return Set{}, fmt.Errorf("transfer: model %s needs horizontal and pressure spectra", m)
			}
			set.ZP21 = solveZP21(pw, cs)

		case ModelZH:
			if rot.Empty() {
				return Set{}, errEmptyRotation
			}
			set.ZH = &ZHCoeffs{TFZH: divCR(conj(rot.CHZ), rot.CHH)}

		case ModelZPH:
			if rot.Empty() || rot.CHP == nil {
				return Set{}, errEmptyRotation
			}
			if pw.CPP == nil || cs.CZP == nil {
				return Set{}, fmt.Errorf("transfer: model %s needs pressure spectra", m)
			}
			set.ZPH = solveZPH(pw, cs, rot)

		default:
			return Set{}, fmt.Errorf("transfer: unknown model %q", m)
		}
	}
	return set, nil
}

func solveZ21(pw spectral.Power, cs spectral.Cross) *Z21Coeffs {
	lc1c2 := divCR(conj(cs.C12), pw.C11)
	coh12 := spectral.Coherence(cs.C12, pw.C11, pw.C22)

	n := len(pw.C11)
	g22c1 := make([]float64, n)
	gz2c1 := make([]complex128, n)
	for k := 0; k < n; k++ {
		g22c1[k] = pw.C22[k] * (1 - coh12[k])
		gz2c1[k] = cmplx.Conj(cs.C2Z[k]) - cmplx.Conj(lc1c2[k]*cs.C1Z[k])
	}

	return &Z21Coeffs{
		TF21:  lc1c2,
		TFZ21: divCR(gz2c1, g22c1),
	}
}

func solveZP21(pw spectral.Power, cs spectral.Cross) *ZP21Coeffs {
	lc1cZ := divCR(conj(cs.C1Z), pw.C11)
	lc1c2 := divCR(conj(cs.C12), pw.C11)
	lc1cP := divCR(conj(cs.C1P), pw.C11)

	coh12 := spectral.Coherence(cs.C12, pw.C11, pw.C22)
	coh1P := spectral.Coherence(cs.C1P, pw.C11, pw.CPP)

	n := len(pw.C11)
	g22c1 := make([]float64, n)
	gPPc1 := make([]float64, n)
	gz2c1 := make([]complex128, n)
	gzPc1 := make([]complex128, n)
	gP2c1 := make([]complex128, n)
	for k := 0; k < n; k++ {
		g22c1[k] = pw.C22[k] * (1 - coh12[k])
		gPPc1[k] = pw.CPP[k] * (1 - coh1P[k])
		gz2c1[k] = cmplx.Conj(cs.C2Z[k]) - cmplx.Conj(lc1c2[k]*cs.C1Z[k])
		gzPc1[k] = cs.CZP[k] - cmplx.Conj(lc1cP[k]*cs.C1Z[k])
		gP2c1[k] = cmplx.Conj(cs.C2P[k]) - cmplx.Conj(lc1c2[k]*cs.C1P[k])
	}

	lc2cPc1 := divCR(gP2c1, g22c1)
	lc2cZc1 := divCR(gz2c1, g22c1)
	cohP2c1 := spectral.Coherence(gP2c1, g22c1, gPPc1)

	gPPc1c2 := make([]float64, n)
	gzPc1c2 := make([]complex128, n)
	for k := 0; k < n; k++ {
		gPPc1c2[k] = gPPc1[k] * (1 - cohP2c1[k])
		gzPc1c2[k] = gzPc1[k] - cmplx.Conj(lc2cPc1[k])*gz2c1[k]
	}

	return &ZP21Coeffs{
		TFZ1:   lc1cZ,
		TF21:   lc1c2,
		TFP1:   lc1cP,
		TFP21:  lc2cPc1,
		TFZ21:  lc2cZc1,
		TFZP21: divCR(gzPc1c2, gPPc1c2),
	}
}

func solveZPH(pw spectral.Power, cs spectral.Cross, rot spectral.Rotation) *ZPHCoeffs {
	lcHcP := divCR(conj(rot.CHP), rot.CHH)
	cohHP := spectral.Coherence(rot.CHP, rot.CHH, pw.CPP)

	n := len(rot.CHH)
	gPPcH := make([]float64, n)
	gzPcH := make([]complex128, n)
	for k := 0; k < n; k++ {
		gPPcH[k] = pw.CPP[k] * (1 - cohHP[k])
		gzPcH[k] = cs.CZP[k] - cmplx.Conj(lcHcP[k]*rot.CHZ[k])
	}

	return &ZPHCoeffs{
		TFPH:  lcHcP,
		TFZPH: divCR(gzPcH, gPPcH),
	}
}

// divCR divides a complex numerator by a real denominator per bin,
// mapping zero denominators to zero.
func divCR(num []complex128, den []float64) []complex128 {
	out := make([]complex128, len(num))
	for k := range num {
		if den[k] == 0 {
			continue
		}
		out[k] = num[k] / complex(den[k], 0)
	}
	return out
}

func conj(x []complex128) []complex128 {
	out := make([]complex128, len(x))
	for k, v := range x {
		out[k] = cmplx.Conj(v)
	}
	return out
}
