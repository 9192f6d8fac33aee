package noise

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-obsnoise/dsp/spectral"
	"github.com/cwbudde/algo-obsnoise/measure/transfer"
	"github.com/cwbudde/algo-obsnoise/stats/outlier"
)

var errNoDays = errors.New("noise: no daily estimates")

// Station is the long-term spectral estimate of one station, combining
// daily estimates after a second screening pass over days.
type Station struct {
	Key      string
	Freqs    []float64
	Goodness []bool // per day
	NComp    int

	Power    spectral.Power
	Cross    spectral.Cross
	Rotation spectral.Rotation
	Bad      spectral.Power
}

// AnalyzeStation screens the daily estimates the same way windows are
// screened within a day, then combines the good days into a weighted
// station average. Channels missing on any day are dropped from the
// station estimate.
func AnalyzeStation(key string, days []*Day, cfg Config) (*Station, error) {
	if len(days) == 0 {
		return nil, errNoDays
	}
	log := cfg.logger()

	freqs := days[0].Freqs
	for _, d := range days[1:] {
		if err := sameAxis(freqs, d.Freqs); err != nil {
			return nil, fmt.Errorf("noise: day %s: %w", d.Key, err)
		}
	}

	// Day-level screening inputs: one row per day, one channel per power
	// field present on every day.
	var qc [][][]float64
	for _, field := range []func(*Day) []float64{
		func(d *Day) []float64 { return d.Power.CZZ },
		func(d *Day) []float64 { return d.Power.C11 },
		func(d *Day) []float64 { return d.Power.C22 },
		func(d *Day) []float64 { return d.Power.CPP },
	} {
		rows := make([][]float64, 0, len(days))
		for _, d := range days {
			v := field(d)
			if v == nil {
				rows = nil
				break
			}
			rows = append(rows, v)
		}
		if rows != nil {
			qc = append(qc, rows)
		}
	}

	mask, err := outlier.Reject(qc, freqs, cfg.StationQC)
	if err != nil {
		return nil, err
	}

	est := make([]spectral.DayEstimate, len(days))
	for i, d := range days {
		est[i] = spectral.DayEstimate{
			Power:    d.Power,
			Cross:    d.Cross,
			Rotation: d.Rotation,
			NWins:    d.NWins,
		}
	}

	pw, cs, rot, bad, err := spectral.AverageStation(est, mask)
	if err != nil {
		return nil, err
	}

	st := &Station{
		Key:      key,
		Freqs:    freqs,
		Goodness: mask,
		NComp:    componentCount(pw),
		Power:    pw,
		Cross:    cs,
		Rotation: rot,
		Bad:      bad,
	}

	log.Info("station analyzed",
		zap.String("key", key),
		zap.Int("ncomp", st.NComp),
		zap.Int("days", len(days)),
		zap.Int("good", countTrue(mask)))

	return st, nil
}

// TransferFunctions solves the station-level models. Rotated models are
// excluded since the tilt azimuth is not stable across days.
func (s *Station) TransferFunctions() (transfer.Set, error) {
	return transfer.Solve(s.Power, s.Cross, s.Rotation, s.Freqs, transfer.StationModels(s.NComp))
}

func componentCount(pw spectral.Power) int {
	n := 1
	if pw.C11 != nil && pw.C22 != nil {
		n += 2
	}
	if pw.CPP != nil {
		n++
	}
	return n
}

func sameAxis(a, b []float64) error {
	if len(a) != len(b) {
		return fmt.Errorf("frequency axes differ: %d vs %d bins", len(a), len(b))
	}
	for k := range a {
		if math.Abs(a[k]-b[k]) > 1e-9 {
			return fmt.Errorf("frequency axes differ at bin %d", k)
		}
	}
	return nil
}
