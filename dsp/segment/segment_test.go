package segment

import (
	"math"
	"testing"
)

func testConfig() Config {
	return Config{Window: 40, Overlap: 0.3, Dt: 0.1}
}

func sineSeries(n int, freq, dt float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) * dt)
	}
	return out
}

func TestConfigGeometry(t *testing.T) {
	cfg := testConfig()

	if ws := cfg.WindowSamples(); ws != 400 {
		t.Fatalf("WindowSamples=%d want=400", ws)
	}
	if ss := cfg.OverlapSamples(); ss != 120 {
		t.Fatalf("OverlapSamples=%d want=120", ss)
	}
	if step := cfg.Step(); step != 280 {
		t.Fatalf("Step=%d want=280", step)
	}
	if n2 := cfg.FFTSize(); n2 != 512 {
		t.Fatalf("FFTSize=%d want=512", n2)
	}

	f := cfg.Freqs()
	if len(f) != 257 {
		t.Fatalf("freq axis length=%d want=257", len(f))
	}
	if f[0] != 0 {
		t.Fatalf("f[0]=%f want=0", f[0])
	}
	nyquist := 1 / (2 * cfg.Dt)
	if math.Abs(f[len(f)-1]-nyquist) > 1e-12 {
		t.Fatalf("f[-1]=%f want=%f", f[len(f)-1], nyquist)
	}
}

func TestSpectrogramWindowCountMatchesSpectra(t *testing.T) {
	cfg := testConfig()
	data := sineSeries(2000, 0.7, cfg.Dt)

	sg, err := ComputeSpectrogram(data, cfg)
	if err != nil {
		t.Fatalf("ComputeSpectrogram error: %v", err)
	}
	sp, err := WindowedSpectra(data, cfg)
	if err != nil {
		t.Fatalf("WindowedSpectra error: %v", err)
	}

	if len(sg.Power) != len(sp.FT) {
		t.Fatalf("window count mismatch: spectrogram=%d spectra=%d", len(sg.Power), len(sp.FT))
	}
	if len(sg.Freqs) != len(sp.Freqs) {
		t.Fatalf("freq axis mismatch: %d != %d", len(sg.Freqs), len(sp.Freqs))
	}
}

func TestSpectrogramPeakAtToneFrequency(t *testing.T) {
	cfg := testConfig()
	tone := 0.7
	data := sineSeries(4000, tone, cfg.Dt)

	sg, err := ComputeSpectrogram(data, cfg)
	if err != nil {
		t.Fatalf("ComputeSpectrogram error: %v", err)
	}

	for w, p := range sg.Power {
		peak := 0
		for k := range p {
			if p[k] > p[peak] {
				peak = k
			}
		}
		if math.Abs(sg.Freqs[peak]-tone) > 0.1 {
			t.Fatalf("window %d: peak at %f Hz, want near %f Hz", w, sg.Freqs[peak], tone)
		}
	}
}

func TestEventSpectraMatchesDirectDFT(t *testing.T) {
	// Events are transformed without taper or detrend, so each bin must
	// equal the direct DFT of the zero-padded raw samples.
	cfg := testConfig()
	data := sineSeries(400, 0.55, cfg.Dt)
	for i := range data {
		data[i] += 0.3 * math.Cos(2*math.Pi*1.3*float64(i)*cfg.Dt)
	}

	sp, err := EventSpectra(data, cfg)
	if err != nil {
		t.Fatalf("EventSpectra error: %v", err)
	}
	if sp.Windows() != 1 {
		t.Fatalf("Windows=%d want=1", sp.Windows())
	}
	if sp.NFFT != 512 || sp.WS != 400 {
		t.Fatalf("unexpected sizes: NFFT=%d WS=%d", sp.NFFT, sp.WS)
	}

	k := 37
	var want complex128
	for n, v := range data {
		arg := -2 * math.Pi * float64(k) * float64(n) / float64(sp.NFFT)
		want += complex(v*math.Cos(arg), v*math.Sin(arg))
	}
	got := sp.FT[0][k]
	if math.Abs(real(got)-real(want)) > 1e-6 || math.Abs(imag(got)-imag(want)) > 1e-6 {
		t.Fatalf("FT bin %d = %v, want %v", k, got, want)
	}
}

func TestDetrendRemovesLine(t *testing.T) {
	buf := make([]float64, 100)
	for i := range buf {
		buf[i] = 3.5 + 0.25*float64(i)
	}
	detrend(buf)
	for i, v := range buf {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("detrend residual at %d: %e", i, v)
		}
	}
}

func TestEdgeTaperShape(t *testing.T) {
	w := edgeTaper(100, 20)
	if len(w) != 100 {
		t.Fatalf("taper length=%d want=100", len(w))
	}
	if w[0] != 0 {
		t.Fatalf("taper should start at 0: %f", w[0])
	}
	for i := 20; i < 80; i++ {
		if w[i] != 1 {
			t.Fatalf("taper not flat at %d: %f", i, w[i])
		}
	}
	if math.Abs(w[10]-w[89]) > 1e-12 {
		t.Fatalf("taper asymmetric: %f != %f", w[10], w[89])
	}
}

func TestValidationErrors(t *testing.T) {
	data := sineSeries(100, 0.5, 0.1)

	if _, err := ComputeSpectrogram(data, Config{Window: 40, Overlap: 0.3, Dt: -1}); err == nil {
		t.Fatalf("expected error for negative dt")
	}
	if _, err := ComputeSpectrogram(data, Config{Window: 40, Overlap: 1.0, Dt: 0.1}); err == nil {
		t.Fatalf("expected error for overlap=1")
	}
	if _, err := WindowedSpectra(data[:10], testConfig()); err == nil {
		t.Fatalf("expected error for short series")
	}
	if _, err := WindowedSpectra(nil, testConfig()); err == nil {
		t.Fatalf("expected error for empty series")
	}
}
