package outlier

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Config holds the rejection parameters.
type Config struct {
	Band      [2]float64 // passband corner frequencies in Hz
	Tol       float64    // rejection threshold in penalty standard deviations
	Alpha     float64    // significance level of the F-test stopping rule
	Smooth    bool       // smooth log spectra along frequency before scoring
	SmoothLen int        // moving-average length in bins
}

// DefaultDayConfig returns the per-window defaults used within a day.
func DefaultDayConfig() Config {
	return Config{
		Band:      [2]float64{0.004, 0.2},
		Tol:       1.5,
		Alpha:     0.05,
		Smooth:    true,
		SmoothLen: 50,
	}
}

// DefaultStationConfig returns the stricter per-day defaults used at
// station aggregation.
func DefaultStationConfig() Config {
	cfg := DefaultDayConfig()
	cfg.Tol = 2.0
	return cfg
}

var (
	errNoChannels = errors.New("outlier: at least one channel is required")
	errEmptyBand  = errors.New("outlier: passband selects no frequency bins")
)

// Reject returns the goodness mask over windows. channels holds one
// per-window power-spectrum matrix (linear units, indexed [window][bin])
// per available channel; all matrices must share the window count and the
// frequency axis.
//
// Degenerate situations (fewer than two surviving windows, zero penalty
// spread, or an all-flagged pass failing the F-test) stop the loop and
// return the current mask; the mask therefore always keeps at least one
// window.
func Reject(channels [][][]float64, freqs []float64, cfg Config) ([]bool, error) {
	if len(channels) == 0 {
		return nil, errNoChannels
	}

	nwin := len(channels[0])
	for i, ch := range channels {
		if len(ch) != nwin {
			return nil, fmt.Errorf("outlier: channel %d has %d windows, channel 0 has %d", i, len(ch), nwin)
		}
		for w, row := range ch {
			if len(row) != len(freqs) {
				return nil, fmt.Errorf("outlier: channel %d window %d has %d bins, axis has %d", i, w, len(row), len(freqs))
			}
		}
	}
	if nwin == 0 {
		return nil, errors.New("outlier: no windows to screen")
	}

	band := bandIndices(freqs, cfg.Band)
	if len(band) == 0 {
		return nil, errEmptyBand
	}

	// De-meaned passband log spectra per channel, [window][band bin].
	dsls := make([][][]float64, len(channels))
	for c, ch := range channels {
		dsls[c] = demeanedLogSpectra(ch, band, cfg)
	}

	goodIdx := make([]int, nwin)
	for i := range goodIdx {
		goodIdx[i] = i
	}

	for {
		n := len(goodIdx)
		if n < 2 {
			break
		}

		penalty := make([]float64, n)
		for _, dsl := range dsls {
			scores := leaveOneOutScores(dsl, goodIdx)
			med := median(scores)
			for i, s := range scores {
				penalty[i] += med - s
			}
		}

		sd := stat.PopStdDev(penalty, nil)
		if sd == 0 {
			break
		}

		kill := make([]bool, n)
		var kept []float64
		nkill := 0
		for i, p := range penalty {
			if p > cfg.Tol*sd {
				kill[i] = true
				nkill++
			} else {
				kept = append(kept, p)
			}
		}
		if nkill == 0 {
			break
		}
		if len(kept) < 2 {
			// Removing (almost) everything leaves no residual set to
			// test against; stop rather than empty the mask.
			break
		}
		if FTest(penalty, 1, kept, 1) >= cfg.Alpha {
			break
		}

		next := goodIdx[:0]
		for i, idx := range goodIdx {
			if !kill[i] {
				next = append(next, idx)
			}
		}
		goodIdx = next
	}

	mask := make([]bool, nwin)
	for _, idx := range goodIdx {
		mask[idx] = true
	}
	return mask, nil
}

// demeanedLogSpectra takes the log of each window's spectrum, optionally
// smooths it along frequency, restricts it to the passband and removes
// each window's passband mean.
func demeanedLogSpectra(psd [][]float64, band []int, cfg Config) [][]float64 {
	out := make([][]float64, len(psd))
	for w, row := range psd {
		lg := make([]float64, len(row))
		for k, v := range row {
			if v > 0 {
				lg[k] = math.Log(v)
			} else {
				lg[k] = math.Inf(-1)
			}
		}
		if cfg.Smooth && cfg.SmoothLen > 1 {
			lg = movingAverage(lg, cfg.SmoothLen)
		}

		sel := make([]float64, len(band))
		for i, k := range band {
			sel[i] = lg[k]
		}
		mean := stat.Mean(sel, nil)
		for i := range sel {
			sel[i] -= mean
		}
		out[w] = sel
	}
	return out
}

// leaveOneOutScores computes, for every window in goodIdx, the Euclidean
// norm across frequency of the per-bin standard deviation over the
// remaining good windows.
func leaveOneOutScores(dsl [][]float64, goodIdx []int) []float64 {
	n := len(goodIdx)
	nb := len(dsl[goodIdx[0]])
	scores := make([]float64, n)
	col := make([]float64, 0, n-1)

	for i := range goodIdx {
		sumSq := 0.0
		for k := 0; k < nb; k++ {
			col = col[:0]
			for j, idx := range goodIdx {
				if j == i {
					continue
				}
				col = append(col, dsl[idx][k])
			}
			sd := stat.PopStdDev(col, nil)
			sumSq += sd * sd
		}
		scores[i] = math.Sqrt(sumSq)
	}
	return scores
}

// movingAverage smooths x with a length-n boxcar, zero-padded at the
// edges ('same' convolution).
func movingAverage(x []float64, n int) []float64 {
	out := make([]float64, len(x))
	offset := (n - 1) / 2
	inv := 1 / float64(n)
	for i := range x {
		lo := i + offset - n + 1
		hi := i + offset
		if lo < 0 {
			lo = 0
		}
		if hi > len(x)-1 {
			hi = len(x) - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += x[j]
		}
		out[i] = sum * inv
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

func median(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
