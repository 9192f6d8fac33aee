package correct

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-obsnoise/dsp/segment"
	"github.com/cwbudde/algo-obsnoise/dsp/spectral"
	"github.com/cwbudde/algo-obsnoise/measure/transfer"
)

func synthSeries(n int, seed float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		x := seed + float64(i)
		out[i] = math.Sin(x*0.13) + 0.5*math.Cos(x*0.41) + 0.25*math.Sin(x*0.77)
	}
	return out
}

func constTF(nf int, c complex128) []complex128 {
	out := make([]complex128, nf)
	for k := range out {
		out[k] = c
	}
	return out
}

func energy(rows [][]float64) float64 {
	sum := 0.0
	for _, row := range rows {
		for _, v := range row {
			sum += v * v
		}
	}
	return sum
}

func eventConfig() segment.Config {
	return segment.Config{Window: 64, Overlap: 0.3, Dt: 1}
}

func TestHermitianExtensionSymmetry(t *testing.T) {
	n2 := 16
	nf := n2/2 + 1
	tf := make([]complex128, nf)
	for k := range tf {
		tf[k] = complex(float64(k), float64(k)*0.5)
	}

	full := hermitian(tf, n2)
	if len(full) != n2 {
		t.Fatalf("full length=%d want=%d", len(full), n2)
	}
	for k := 1; k < n2/2; k++ {
		if full[n2-k] != cmplx.Conj(full[k]) {
			t.Fatalf("bin %d breaks Hermitian symmetry: %v vs %v", k, full[n2-k], full[k])
		}
	}
}

func TestApplyConstantCouplingExactRemoval(t *testing.T) {
	cfg := eventConfig()
	n := 2 * cfg.WindowSamples()
	alpha := 1.7

	p := synthSeries(n, 0)
	s := synthSeries(n, 99)
	z := make([]float64, n)
	for i := range z {
		z[i] = s[i] + alpha*p[i]
	}

	ftZ, err := segment.EventSpectra(z, cfg)
	if err != nil {
		t.Fatalf("EventSpectra error: %v", err)
	}
	ftP, err := segment.EventSpectra(p, cfg)
	if err != nil {
		t.Fatalf("EventSpectra error: %v", err)
	}

	nf := len(ftZ.Freqs)
	set := transfer.Set{
		Freqs: ftZ.Freqs,
		ZP:    &transfer.ZPCoeffs{TFZP: constTF(nf, complex(alpha, 0))},
	}

	results, err := Apply(Event{Z: ftZ, P: ftP}, set, []transfer.Model{transfer.ModelZP})
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if len(results) != 1 || results[0].Model != transfer.ModelZP {
		t.Fatalf("unexpected results: %+v", results)
	}

	ws := cfg.WindowSamples()
	for w, row := range results[0].Data {
		if len(row) != ws {
			t.Fatalf("window %d has %d samples, want %d", w, len(row), ws)
		}
		for j, v := range row {
			if math.Abs(v-s[w*ws+j]) > 1e-9 {
				t.Fatalf("window %d sample %d: %g want %g", w, j, v, s[w*ws+j])
			}
		}
	}
}

func TestApplyCascadeOrderExact(t *testing.T) {
	cfg := eventConfig()
	n := cfg.WindowSamples()
	a, b := 0.9, -1.4

	h1 := synthSeries(n, 0)
	h2 := synthSeries(n, 37)
	z := make([]float64, n)
	for i := range z {
		z[i] = a*h1[i] + b*h2[i]
	}

	ftZ, _ := segment.EventSpectra(z, cfg)
	ft1, _ := segment.EventSpectra(h1, cfg)
	ft2, _ := segment.EventSpectra(h2, cfg)

	nf := len(ftZ.Freqs)
	set := transfer.Set{
		Freqs: ftZ.Freqs,
		Z1:    &transfer.Z1Coeffs{TFZ1: constTF(nf, complex(a, 0))},
		Z21: &transfer.Z21Coeffs{
			TF21:  constTF(nf, 0),
			TFZ21: constTF(nf, complex(b, 0)),
		},
	}

	results, err := Apply(Event{Z: ftZ, H1: ft1, H2: ft2}, set, []transfer.Model{transfer.ModelZ21})
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	for _, row := range results[0].Data {
		for j, v := range row {
			if math.Abs(v) > 1e-9 {
				t.Fatalf("sample %d not cancelled: %g", j, v)
			}
		}
	}
}

func TestApplySolvedTransferReducesNoise(t *testing.T) {
	cfg := eventConfig()
	alpha := 1.3

	// Noise record with a pure pressure coupling on the vertical.
	nNoise := 8 * cfg.WindowSamples()
	pNoise := synthSeries(nNoise, 0)
	zNoise := make([]float64, nNoise)
	for i := range zNoise {
		zNoise[i] = alpha * pNoise[i]
	}

	spZ, err := segment.WindowedSpectra(zNoise, cfg)
	if err != nil {
		t.Fatalf("WindowedSpectra error: %v", err)
	}
	spP, err := segment.WindowedSpectra(pNoise, cfg)
	if err != nil {
		t.Fatalf("WindowedSpectra error: %v", err)
	}

	nf := len(spZ.Freqs)
	good := make([]bool, spZ.Windows())
	for i := range good {
		good[i] = true
	}
	pw, cs, _, err := spectral.AverageWindows(spectral.WindowSpectra{Z: onesided(spZ, nf), P: onesided(spP, nf)}, good, nf)
	if err != nil {
		t.Fatalf("AverageWindows error: %v", err)
	}

	set, err := transfer.Solve(pw, cs, spectral.Rotation{}, spZ.Freqs, []transfer.Model{transfer.ModelZP})
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}

	// Event with the same coupling plus a small uncorrelated signal.
	n := 2 * cfg.WindowSamples()
	pEv := synthSeries(n, 211)
	s := synthSeries(n, 307)
	zEv := make([]float64, n)
	for i := range zEv {
		zEv[i] = 0.05*s[i] + alpha*pEv[i]
	}

	ftZ, _ := segment.EventSpectra(zEv, cfg)
	ftP, _ := segment.EventSpectra(pEv, cfg)

	results, err := Apply(Event{Z: ftZ, P: ftP}, set, []transfer.Model{transfer.ModelZP})
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	raw := [][]float64{zEv[:cfg.WindowSamples()], zEv[cfg.WindowSamples():]}
	if e, r := energy(results[0].Data), energy(raw); e >= 0.1*r {
		t.Fatalf("corrected energy %g not reduced against raw %g", e, r)
	}
}

// onesided truncates full-length window spectra to the one-sided axis,
// the form the averaging stage consumes.
func onesided(sp *segment.Spectra, nf int) [][]complex128 {
	out := make([][]complex128, sp.Windows())
	for w, ft := range sp.FT {
		out[w] = ft[:nf]
	}
	return out
}

func TestApplyValidation(t *testing.T) {
	cfg := eventConfig()
	n := cfg.WindowSamples()
	z := synthSeries(n, 0)
	p := synthSeries(n, 5)
	ftZ, _ := segment.EventSpectra(z, cfg)
	ftP, _ := segment.EventSpectra(p, cfg)
	nf := len(ftZ.Freqs)

	set := transfer.Set{
		Freqs: ftZ.Freqs,
		ZP:    &transfer.ZPCoeffs{TFZP: constTF(nf, 1)},
	}

	if _, err := Apply(Event{P: ftP}, set, []transfer.Model{transfer.ModelZP}); err == nil {
		t.Fatalf("expected error for missing vertical")
	}

	shifted := transfer.Set{Freqs: make([]float64, nf), ZP: set.ZP}
	copy(shifted.Freqs, ftZ.Freqs)
	shifted.Freqs[nf/2] += 1e-3
	if _, err := Apply(Event{Z: ftZ, P: ftP}, shifted, []transfer.Model{transfer.ModelZP}); !errors.Is(err, ErrAxisMismatch) {
		t.Fatalf("expected ErrAxisMismatch, got %v", err)
	}

	if _, err := Apply(Event{Z: ftZ, P: ftP}, set, []transfer.Model{transfer.ModelZ1}); err == nil {
		t.Fatalf("expected error for missing coefficients")
	}
	if _, err := Apply(Event{Z: ftZ, P: ftP}, set, []transfer.Model{transfer.Model("bogus")}); err == nil {
		t.Fatalf("expected error for unknown model")
	}
	if _, err := Apply(Event{Z: ftZ}, set, []transfer.Model{transfer.ModelZH}); err == nil {
		t.Fatalf("expected error for rotated model without horizontals")
	}
}
