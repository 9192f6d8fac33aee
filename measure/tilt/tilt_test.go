package tilt

import (
	"math"
	"testing"
)

// synthHorizontals builds per-window spectra whose bins vary with window
// and frequency so the azimuth search has structure to work with.
func synthHorizontals(nwin, nf int) (ft1, ft2 [][]complex128) {
	ft1 = make([][]complex128, nwin)
	ft2 = make([][]complex128, nwin)
	for w := 0; w < nwin; w++ {
		a := make([]complex128, nf)
		b := make([]complex128, nf)
		for k := 0; k < nf; k++ {
			x := float64(w*nf + k)
			a[k] = complex(math.Sin(x*1.3)+1.5, math.Cos(x*0.7))
			b[k] = complex(math.Cos(x*2.1)-1.2, math.Sin(x*1.9))
		}
		ft1[w] = a
		ft2[w] = b
	}
	return ft1, ft2
}

func tiltFreqs(nf int) []float64 {
	f := make([]float64, nf)
	for k := range f {
		f[k] = 0.002 * float64(k)
	}
	return f
}

func allGood(n int) []bool {
	g := make([]bool, n)
	for i := range g {
		g[i] = true
	}
	return g
}

func TestEstimateRecoversCouplingAzimuth(t *testing.T) {
	nwin, nf := 6, 30
	ft1, ft2 := synthHorizontals(nwin, nf)
	freqs := tiltFreqs(nf)
	good := allGood(nwin)

	trueAz := 40.0
	ftZ := RotateSpectra(ft1, ft2, trueAz)

	rot, err := Estimate(ft1, ft2, ftZ, nil, freqs, good, DefaultConfig())
	if err != nil {
		t.Fatalf("Estimate error: %v", err)
	}

	if math.Abs(rot.Tilt-trueAz) > 1.5 {
		t.Fatalf("tilt=%f want close to %f", rot.Tilt, trueAz)
	}
	if rot.CohValue < 0.99 {
		t.Fatalf("coherence at tilt=%f, want ~1 for perfectly coupled Z", rot.CohValue)
	}
	if len(rot.Coh) != 36 || len(rot.Azimuths) != 36 {
		t.Fatalf("coarse curves have %d/%d entries, want 36", len(rot.Coh), len(rot.Azimuths))
	}
	if rot.CHP != nil {
		t.Fatalf("CHP must be nil without pressure data")
	}
	if rot.Empty() {
		t.Fatalf("rotation container unexpectedly empty")
	}
}

func TestEstimateAntiPhaseFlips(t *testing.T) {
	nwin, nf := 6, 30
	ft1, ft2 := synthHorizontals(nwin, nf)
	freqs := tiltFreqs(nf)
	good := allGood(nwin)

	// Z anti-correlated with the 40 degree direction: the estimator sees
	// maximum coherence at 220 as well, and the phase flip must land the
	// tilt on a single consistent side.
	trueAz := 40.0
	ftZ := RotateSpectra(ft1, ft2, trueAz)
	for w := range ftZ {
		for k := range ftZ[w] {
			ftZ[w][k] = -ftZ[w][k]
		}
	}

	rot, err := Estimate(ft1, ft2, ftZ, nil, freqs, good, DefaultConfig())
	if err != nil {
		t.Fatalf("Estimate error: %v", err)
	}

	d := math.Abs(rot.Tilt - 220)
	if d > 1.5 && math.Abs(d-360) > 1.5 {
		t.Fatalf("anti-phase tilt=%f want close to 220", rot.Tilt)
	}
}

func TestEstimateWithPressure(t *testing.T) {
	nwin, nf := 4, 30
	ft1, ft2 := synthHorizontals(nwin, nf)
	ftZ := RotateSpectra(ft1, ft2, 100)
	ftP := RotateSpectra(ft2, ft1, 10)
	freqs := tiltFreqs(nf)

	rot, err := Estimate(ft1, ft2, ftZ, ftP, freqs, allGood(nwin), DefaultConfig())
	if err != nil {
		t.Fatalf("Estimate error: %v", err)
	}
	if rot.CHP == nil {
		t.Fatalf("CHP should be populated with pressure data")
	}
	if len(rot.CHP) != nf {
		t.Fatalf("CHP length=%d want=%d", len(rot.CHP), nf)
	}
}

func TestEstimateErrors(t *testing.T) {
	nwin, nf := 4, 30
	ft1, ft2 := synthHorizontals(nwin, nf)
	ftZ := RotateSpectra(ft1, ft2, 10)
	freqs := tiltFreqs(nf)

	if _, err := Estimate(nil, ft2, ftZ, nil, freqs, allGood(nwin), DefaultConfig()); err == nil {
		t.Fatalf("expected error for missing horizontal")
	}
	if _, err := Estimate(ft1, ft2, ftZ, nil, freqs, make([]bool, nwin), DefaultConfig()); err == nil {
		t.Fatalf("expected error for empty good set")
	}

	cfg := DefaultConfig()
	cfg.Band = [2]float64{10, 20}
	if _, err := Estimate(ft1, ft2, ftZ, nil, freqs, allGood(nwin), cfg); err == nil {
		t.Fatalf("expected error for out-of-range passband")
	}
}

func TestRotateSpectraAxes(t *testing.T) {
	ft1 := [][]complex128{{1 + 1i, 2}}
	ft2 := [][]complex128{{3, 4i}}

	at0 := RotateSpectra(ft1, ft2, 0)
	if at0[0][0] != 1+1i || at0[0][1] != 2 {
		t.Fatalf("rotation at 0 degrees should return H1: %v", at0)
	}

	at90 := RotateSpectra(ft1, ft2, 90)
	if math.Abs(real(at90[0][0])-3) > 1e-12 || math.Abs(imag(at90[0][1])-4) > 1e-12 {
		t.Fatalf("rotation at 90 degrees should return H2: %v", at90)
	}
}
