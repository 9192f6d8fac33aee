package noise

import (
	"go.uber.org/zap"

	"github.com/cwbudde/algo-obsnoise/dsp/segment"
	"github.com/cwbudde/algo-obsnoise/dsp/spectral"
	"github.com/cwbudde/algo-obsnoise/measure/tilt"
	"github.com/cwbudde/algo-obsnoise/measure/transfer"
	"github.com/cwbudde/algo-obsnoise/stats/outlier"
)

// Day is the spectral estimate of one day-long record after window
// screening and averaging.
type Day struct {
	Key      string // record identifier, e.g. "7D.M08A.2012.069"
	Freqs    []float64
	Goodness []bool // per analysis window
	NComp    int
	NWins    int // surviving windows, the station averaging weight
	Dt       float64
	Window   float64
	Overlap  float64

	Power    spectral.Power
	Cross    spectral.Cross
	Rotation spectral.Rotation
	Bad      spectral.Power // averages over rejected windows
}

// AnalyzeDay segments a day-long record, rejects anomalous windows and
// averages the survivors into auto- and cross-spectra. Records with
// both horizontals also get a tilt azimuth estimate.
func AnalyzeDay(key string, ch Channels, cfg Config) (*Day, error) {
	if err := ch.validate(); err != nil {
		return nil, err
	}
	log := cfg.logger()

	segCfg := segment.Config{Window: cfg.Window, Overlap: cfg.Overlap, Dt: ch.Dt}
	freqs := segCfg.Freqs()
	nf := len(freqs)

	horizontals := ch.hasHorizontals()
	pressure := ch.hasPressure()

	// Screening operates on the power spectrograms of every present
	// channel so a window is dropped when any component misbehaves.
	var qc [][][]float64
	appendQC := func(data []float64) error {
		sg, err := segment.ComputeSpectrogram(data, segCfg)
		if err != nil {
			return err
		}
		qc = append(qc, sg.Power)
		return nil
	}
	if err := appendQC(ch.Z); err != nil {
		return nil, err
	}
	if horizontals {
		if err := appendQC(ch.H1); err != nil {
			return nil, err
		}
		if err := appendQC(ch.H2); err != nil {
			return nil, err
		}
	}
	if pressure {
		if err := appendQC(ch.P); err != nil {
			return nil, err
		}
	}

	mask, err := outlier.Reject(qc, freqs, cfg.QC)
	if err != nil {
		return nil, err
	}

	w := spectral.WindowSpectra{}
	w.Z, err = windowFT(ch.Z, segCfg, nf)
	if err != nil {
		return nil, err
	}
	if horizontals {
		if w.H1, err = windowFT(ch.H1, segCfg, nf); err != nil {
			return nil, err
		}
		if w.H2, err = windowFT(ch.H2, segCfg, nf); err != nil {
			return nil, err
		}
	}
	if pressure {
		if w.P, err = windowFT(ch.P, segCfg, nf); err != nil {
			return nil, err
		}
	}

	pw, cs, bad, err := spectral.AverageWindows(w, mask, nf)
	if err != nil {
		return nil, err
	}

	day := &Day{
		Key:      key,
		Freqs:    freqs,
		Goodness: mask,
		NComp:    ch.NComp(),
		NWins:    countTrue(mask),
		Dt:       ch.Dt,
		Window:   cfg.Window,
		Overlap:  cfg.Overlap,
		Power:    pw,
		Cross:    cs,
		Bad:      bad,
	}

	if horizontals {
		rot, err := tilt.Estimate(w.H1, w.H2, w.Z, w.P, freqs, mask, cfg.Tilt)
		if err != nil {
			return nil, err
		}
		day.Rotation = rot
		log.Info("tilt estimated",
			zap.String("key", key),
			zap.Float64("azimuth", rot.Tilt),
			zap.Float64("coherence", rot.CohValue))
	}

	log.Info("day analyzed",
		zap.String("key", key),
		zap.Int("ncomp", day.NComp),
		zap.Int("windows", len(mask)),
		zap.Int("good", day.NWins))

	return day, nil
}

// TransferFunctions solves every model available for this day's
// component set.
func (d *Day) TransferFunctions() (transfer.Set, error) {
	return transfer.Solve(d.Power, d.Cross, d.Rotation, d.Freqs, transfer.DayModels(d.NComp))
}

// windowFT computes per-window spectra truncated to the one-sided axis.
func windowFT(data []float64, cfg segment.Config, nf int) ([][]complex128, error) {
	sp, err := segment.WindowedSpectra(data, cfg)
	if err != nil {
		return nil, err
	}
	out := make([][]complex128, sp.Windows())
	for i, ft := range sp.FT {
		out[i] = ft[:nf]
	}
	return out, nil
}

func countTrue(mask []bool) int {
	n := 0
	for _, g := range mask {
		if g {
			n++
		}
	}
	return n
}
