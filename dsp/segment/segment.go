package segment

import (
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Config holds the window parameters shared by all segmentation modes.
type Config struct {
	Window  float64 // window length in seconds
	Overlap float64 // overlap fraction in [0,1)
	Dt      float64 // sample interval in seconds
}

// WindowSamples returns the window length in samples.
func (c Config) WindowSamples() int {
	return int(c.Window / c.Dt)
}

// OverlapSamples returns the number of overlapping samples between
// adjacent windows.
func (c Config) OverlapSamples() int {
	return int(c.Window * c.Overlap / c.Dt)
}

// Step returns the stride in samples between adjacent window starts.
// The same stride is used for quality-control and averaging windows so
// that a goodness mask computed on one indexes the other.
func (c Config) Step() int {
	return c.WindowSamples() - c.OverlapSamples()
}

// FFTSize returns the zero-padded transform length.
func (c Config) FFTSize() int {
	return nextPowerOf2(c.WindowSamples())
}

// Freqs returns the one-sided frequency axis of the padded transform.
func (c Config) Freqs() []float64 {
	n2 := c.FFTSize()
	f := make([]float64, n2/2+1)
	df := 1 / (float64(n2) * c.Dt)
	for k := range f {
		f[k] = float64(k) * df
	}
	return f
}

// Spectrogram holds per-window one-sided power spectra.
type Spectrogram struct {
	Power [][]float64 // [window][bin]
	Freqs []float64   // one-sided axis in Hz
	Times []float64   // window start times in seconds
}

// Spectra holds per-window full-length complex spectra alongside the
// one-sided frequency axis. The full two-sided form is kept so that the
// correction stage can invert the transform exactly.
type Spectra struct {
	FT    [][]complex128 // [window][bin], length NFFT
	Freqs []float64      // one-sided axis in Hz, length NFFT/2+1
	NFFT  int
	WS    int // window length in samples
}

// Windows returns the number of windows.
func (s *Spectra) Windows() int { return len(s.FT) }

// ComputeSpectrogram produces the QC spectrogram of one channel. Each
// window is tapered by a flat window with raised-cosine rise and fall of
// the overlap length before the transform. Power values carry density
// scaling, with non-edge bins doubled for the one-sided form.
func ComputeSpectrogram(data []float64, cfg Config) (*Spectrogram, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errEmptySeries
	}

	ws := cfg.WindowSamples()
	if len(data) < ws {
		return nil, fmt.Errorf("%w: %d < %d samples", errShortSeries, len(data), ws)
	}

	taper := edgeTaper(ws, cfg.OverlapSamples())
	n2 := cfg.FFTSize()
	nf := n2/2 + 1

	plan, err := algofft.NewPlan64(n2)
	if err != nil {
		return nil, fmt.Errorf("segment: failed to create FFT plan: %w", err)
	}

	step := cfg.Step()
	nd := (len(data)-ws)/step + 1

	// Density scaling as used for PSD estimates: 1 / (fs * sum(w^2)).
	sumSq := 0.0
	for _, w := range taper {
		sumSq += w * w
	}
	scale := cfg.Dt / sumSq

	in := make([]complex128, n2)
	out := make([]complex128, n2)
	re := make([]float64, nf)
	im := make([]float64, nf)

	sg := &Spectrogram{
		Power: make([][]float64, nd),
		Freqs: cfg.Freqs(),
		Times: make([]float64, nd),
	}

	for i := 0; i < nd; i++ {
		start := i * step
		sg.Times[i] = float64(start) * cfg.Dt

		for j := 0; j < ws; j++ {
			in[j] = complex(data[start+j]*taper[j], 0)
		}
		for j := ws; j < n2; j++ {
			in[j] = 0
		}
		if err := plan.Forward(out, in); err != nil {
			return nil, err
		}

		for k := 0; k < nf; k++ {
			re[k] = real(out[k])
			im[k] = imag(out[k])
		}
		p := make([]float64, nf)
		vecmath.Power(p, re, im)
		for k := range p {
			p[k] *= scale
			if k != 0 && k != nf-1 {
				p[k] *= 2
			}
		}
		sg.Power[i] = p
	}

	return sg, nil
}

// WindowedSpectra produces per-window complex spectra for the averaging
// stage. Each window is detrended and multiplied by a Hann window before
// the zero-padded transform.
func WindowedSpectra(data []float64, cfg Config) (*Spectra, error) {
	return windowedSpectra(data, cfg, cfg.Step(), true)
}

// EventSpectra produces per-window complex spectra for an event record.
// Windows are adjacent (stride equal to the window length) and no detrend
// or taper is applied, so the correction stage can reconstruct the raw
// samples exactly.
func EventSpectra(data []float64, cfg Config) (*Spectra, error) {
	return windowedSpectra(data, cfg, cfg.WindowSamples(), false)
}

func windowedSpectra(data []float64, cfg Config, step int, taper bool) (*Spectra, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errEmptySeries
	}

	ws := cfg.WindowSamples()
	if len(data) < ws {
		return nil, fmt.Errorf("%w: %d < %d samples", errShortSeries, len(data), ws)
	}

	n2 := cfg.FFTSize()
	plan, err := algofft.NewPlan64(n2)
	if err != nil {
		return nil, fmt.Errorf("segment: failed to create FFT plan: %w", err)
	}

	var win []float64
	if taper {
		win = hann(ws)
	}

	nd := (len(data)-ws)/step + 1
	in := make([]complex128, n2)
	buf := make([]float64, ws)

	sp := &Spectra{
		FT:    make([][]complex128, nd),
		Freqs: cfg.Freqs(),
		NFFT:  n2,
		WS:    ws,
	}

	for i := 0; i < nd; i++ {
		start := i * step
		copy(buf, data[start:start+ws])
		if taper {
			detrend(buf)
			vecmath.MulBlockInPlace(buf, win)
		}

		for j := 0; j < ws; j++ {
			in[j] = complex(buf[j], 0)
		}
		for j := ws; j < n2; j++ {
			in[j] = 0
		}

		ft := make([]complex128, n2)
		if err := plan.Forward(ft, in); err != nil {
			return nil, err
		}
		sp.FT[i] = ft
	}

	return sp, nil
}

// edgeTaper builds the QC window: flat in the middle with a raised-cosine
// rise and fall of ss samples at each edge.
func edgeTaper(ws, ss int) []float64 {
	w := make([]float64, ws)
	for i := range w {
		w[i] = 1
	}
	if ss <= 0 || 2*ss > ws {
		return w
	}
	h := hann(2 * ss)
	copy(w[:ss], h[:ss])
	copy(w[ws-ss:], h[ss:])
	return w
}

// hann returns symmetric Hann window coefficients.
func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// detrend removes the least-squares line from buf in place.
func detrend(buf []float64) {
	n := len(buf)
	if n < 2 {
		return
	}

	// Fit y = a + b*x with x = 0..n-1.
	var sumY, sumXY float64
	for i, v := range buf {
		sumY += v
		sumXY += float64(i) * v
	}
	fn := float64(n)
	sumX := fn * (fn - 1) / 2
	sumXX := (fn - 1) * fn * (2*fn - 1) / 6

	den := fn*sumXX - sumX*sumX
	if den == 0 {
		return
	}
	b := (fn*sumXY - sumX*sumY) / den
	a := (sumY - b*sumX) / fn

	for i := range buf {
		buf[i] -= a + b*float64(i)
	}
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
