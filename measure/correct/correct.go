package correct

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"

	"github.com/cwbudde/algo-obsnoise/dsp/segment"
	"github.com/cwbudde/algo-obsnoise/measure/tilt"
	"github.com/cwbudde/algo-obsnoise/measure/transfer"
)

// axisTol bounds the per-bin frequency mismatch between the event
// spectra and the transfer function set. Event records and noise
// averages must share window length and sample rate.
const axisTol = 1e-9

var (
	// ErrAxisMismatch is returned when the event's frequency axis does
	// not match the axis the transfer functions were solved on.
	ErrAxisMismatch = errors.New("correct: frequency axes do not match")

	errMissingVertical = errors.New("correct: vertical event spectra are required")
)

// Event groups the per-channel event spectra. Z is mandatory; absent
// channels are nil. All populated channels must share window count and
// transform length.
type Event struct {
	H1 *segment.Spectra
	H2 *segment.Spectra
	Z  *segment.Spectra
	P  *segment.Spectra
}

// Result is the corrected vertical for one model, one row of samples
// per event window.
type Result struct {
	Model transfer.Model
	Data  [][]float64
}

// Apply subtracts the predicted noise of each requested model from the
// vertical event spectra and returns the corrected time-domain records.
// Models whose coefficients or channels are unavailable produce an
// error rather than a silent skip.
func Apply(ev Event, set transfer.Set, models []transfer.Model) ([]Result, error) {
	if ev.Z == nil {
		return nil, errMissingVertical
	}
	if err := checkAxis(ev.Z.Freqs, set.Freqs); err != nil {
		return nil, err
	}
	if err := ev.validate(); err != nil {
		return nil, err
	}

	n2 := ev.Z.NFFT
	plan, err := algofft.NewPlan64(n2)
	if err != nil {
		return nil, fmt.Errorf("correct: failed to create FFT plan: %w", err)
	}

	// The rotated horizontal is shared by ZH and ZP-H.
	var ftH [][]complex128
	needsRotation := false
	for _, m := range models {
		if m == transfer.ModelZH || m == transfer.ModelZPH {
			needsRotation = true
		}
	}
	if needsRotation {
		if ev.H1 == nil || ev.H2 == nil {
			return nil, fmt.Errorf("correct: rotated models need both horizontal channels")
		}
		ftH = tilt.RotateSpectra(ev.H1.FT, ev.H2.FT, set.Tilt)
	}

	results := make([]Result, 0, len(models))
	for _, m := range models {
		spec, err := predictAndSubtract(ev, set, m, ftH, n2)
		if err != nil {
			return nil, err
		}

		data := make([][]float64, len(spec))
		out := make([]complex128, n2)
		for w, ft := range spec {
			if err := plan.Inverse(out, ft); err != nil {
				return nil, err
			}
			row := make([]float64, ev.Z.WS)
			for j := range row {
				row[j] = real(out[j])
			}
			data[w] = row
		}
		results = append(results, Result{Model: m, Data: data})
	}
	return results, nil
}

func (ev Event) validate() error {
	nwin := ev.Z.Windows()
	for name, sp := range map[string]*segment.Spectra{"H1": ev.H1, "H2": ev.H2, "P": ev.P} {
		if sp == nil {
			continue
		}
		if sp.Windows() != nwin || sp.NFFT != ev.Z.NFFT {
			return fmt.Errorf("correct: channel %s geometry differs from Z", name)
		}
	}
	return nil
}

func checkAxis(evFreqs, tfFreqs []float64) error {
	if len(evFreqs) != len(tfFreqs) {
		return fmt.Errorf("%w: %d vs %d bins", ErrAxisMismatch, len(evFreqs), len(tfFreqs))
	}
	for k := range evFreqs {
		if math.Abs(evFreqs[k]-tfFreqs[k]) > axisTol {
			return fmt.Errorf("%w: bin %d differs by %g Hz", ErrAxisMismatch, k, evFreqs[k]-tfFreqs[k])
		}
	}
	return nil
}

// predictAndSubtract builds the corrected full-length vertical spectrum
// per window for one model.
func predictAndSubtract(ev Event, set transfer.Set, m transfer.Model, ftH [][]complex128, n2 int) ([][]complex128, error) {
	nwin := ev.Z.Windows()
	out := make([][]complex128, nwin)

	switch m {
	case transfer.ModelZP:
		if set.ZP == nil || ev.P == nil {
			return nil, missing(m)
		}
		tfZP := hermitian(set.ZP.TFZP, n2)
		for w := 0; w < nwin; w++ {
			out[w] = subtract(ev.Z.FT[w], tfZP, ev.P.FT[w])
		}

	case transfer.ModelZ1:
		if set.Z1 == nil || ev.H1 == nil {
			return nil, missing(m)
		}
		tfZ1 := hermitian(set.Z1.TFZ1, n2)
		for w := 0; w < nwin; w++ {
			out[w] = subtract(ev.Z.FT[w], tfZ1, ev.H1.FT[w])
		}

	case transfer.ModelZ21:
		// The first cascade stage reuses the Z1 coefficients.
		if set.Z21 == nil || set.Z1 == nil || ev.H1 == nil || ev.H2 == nil {
			return nil, missing(m)
		}
		tfZ1 := hermitian(set.Z1.TFZ1, n2)
		tf21 := hermitian(set.Z21.TF21, n2)
		tfZ21 := hermitian(set.Z21.TFZ21, n2)
		for w := 0; w < nwin; w++ {
			res2 := subtract(ev.H2.FT[w], tf21, ev.H1.FT[w])
			spec := subtract(ev.Z.FT[w], tfZ1, ev.H1.FT[w])
			out[w] = subtract(spec, tfZ21, res2)
		}

	case transfer.ModelZP21:
		if set.ZP21 == nil || ev.H1 == nil || ev.H2 == nil || ev.P == nil {
			return nil, missing(m)
		}
		c := set.ZP21
		tfZ1 := hermitian(c.TFZ1, n2)
		tf21 := hermitian(c.TF21, n2)
		tfP1 := hermitian(c.TFP1, n2)
		tfP21 := hermitian(c.TFP21, n2)
		tfZ21 := hermitian(c.TFZ21, n2)
		tfZP21 := hermitian(c.TFZP21, n2)
		for w := 0; w < nwin; w++ {
			res2 := subtract(ev.H2.FT[w], tf21, ev.H1.FT[w])
			resP := subtract(ev.P.FT[w], tfP1, ev.H1.FT[w])
			resP = subtract(resP, tfP21, res2)
			spec := subtract(ev.Z.FT[w], tfZ1, ev.H1.FT[w])
			spec = subtract(spec, tfZ21, res2)
			out[w] = subtract(spec, tfZP21, resP)
		}

	case transfer.ModelZH:
		if set.ZH == nil || ftH == nil {
			return nil, missing(m)
		}
		tfZH := hermitian(set.ZH.TFZH, n2)
		for w := 0; w < nwin; w++ {
			out[w] = subtract(ev.Z.FT[w], tfZH, ftH[w])
		}

	case transfer.ModelZPH:
		// The first cascade stage reuses the ZH coefficients.
		if set.ZPH == nil || set.ZH == nil || ftH == nil || ev.P == nil {
			return nil, missing(m)
		}
		tfZH := hermitian(set.ZH.TFZH, n2)
		tfPH := hermitian(set.ZPH.TFPH, n2)
		tfZPH := hermitian(set.ZPH.TFZPH, n2)
		for w := 0; w < nwin; w++ {
			resP := subtract(ev.P.FT[w], tfPH, ftH[w])
			spec := subtract(ev.Z.FT[w], tfZH, ftH[w])
			out[w] = subtract(spec, tfZPH, resP)
		}

	default:
		return nil, fmt.Errorf("correct: unknown model %q", m)
	}
	return out, nil
}

func missing(m transfer.Model) error {
	return fmt.Errorf("correct: model %s lacks coefficients or channels", m)
}

// subtract returns a - tf*b per bin without modifying its inputs.
func subtract(a, tf, b []complex128) []complex128 {
	out := make([]complex128, len(a))
	for k := range a {
		out[k] = a[k] - tf[k]*b[k]
	}
	return out
}

// hermitian extends a one-sided transfer function of length n2/2+1 to
// the full transform length so that the corrected spectrum stays the
// transform of a real series.
func hermitian(tf []complex128, n2 int) []complex128 {
	full := make([]complex128, n2)
	copy(full, tf)
	for k := len(tf); k < n2; k++ {
		full[k] = cmplx.Conj(tf[n2-k])
	}
	return full
}
