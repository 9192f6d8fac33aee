package noise

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-obsnoise/measure/tilt"
	"github.com/cwbudde/algo-obsnoise/stats/outlier"
)

var (
	errMissingVertical = errors.New("noise: vertical channel is required")
	errOneHorizontal   = errors.New("noise: horizontal channels must both be present or both absent")
	errSingleComponent = errors.New("noise: a record needs horizontals or pressure besides the vertical")
)

// Channels holds the raw time series of one record. Z is mandatory;
// absent channels are nil. A channel of all zeros counts as absent,
// matching the convention of archives that pad missing components.
type Channels struct {
	H1 []float64
	H2 []float64
	Z  []float64
	P  []float64
	Dt float64 // sample interval in seconds
}

// NComp returns the number of recorded components: 2 for Z and
// pressure, 3 for Z and horizontals, 4 for the full set.
func (c Channels) NComp() int {
	n := 1
	if c.hasHorizontals() {
		n += 2
	}
	if c.hasPressure() {
		n++
	}
	return n
}

func (c Channels) hasHorizontals() bool {
	return !isAbsent(c.H1) && !isAbsent(c.H2)
}

func (c Channels) hasPressure() bool {
	return !isAbsent(c.P)
}

func (c Channels) validate() error {
	if isAbsent(c.Z) {
		return errMissingVertical
	}
	if c.Dt <= 0 {
		return fmt.Errorf("noise: invalid sample interval %g", c.Dt)
	}
	if isAbsent(c.H1) != isAbsent(c.H2) {
		return errOneHorizontal
	}
	if !c.hasHorizontals() && !c.hasPressure() {
		return errSingleComponent
	}
	n := len(c.Z)
	for name, ch := range map[string][]float64{"H1": c.H1, "H2": c.H2, "P": c.P} {
		if len(ch) > 0 && len(ch) != n {
			return fmt.Errorf("noise: channel %s has %d samples, Z has %d", name, len(ch), n)
		}
	}
	return nil
}

func isAbsent(ch []float64) bool {
	for _, v := range ch {
		if v != 0 {
			return false
		}
	}
	return true
}

// Config holds the pipeline parameters.
type Config struct {
	Window  float64 // analysis window length in seconds
	Overlap float64 // window overlap fraction in [0,1)

	QC        outlier.Config // window screening, day stage
	StationQC outlier.Config // day screening, station stage
	Tilt      tilt.Config

	Logger *zap.Logger
}

// DefaultConfig returns the pipeline defaults: two-hour windows with
// 30 percent overlap and the standard screening thresholds.
func DefaultConfig() Config {
	return Config{
		Window:    7200,
		Overlap:   0.3,
		QC:        outlier.DefaultDayConfig(),
		StationQC: outlier.DefaultStationConfig(),
		Tilt:      tilt.DefaultConfig(),
		Logger:    zap.NewNop(),
	}
}

func (cfg Config) logger() *zap.Logger {
	if cfg.Logger == nil {
		return zap.NewNop()
	}
	return cfg.Logger
}
