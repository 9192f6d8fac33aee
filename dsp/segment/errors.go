package segment

import (
	"errors"
	"fmt"
)

var (
	errShortSeries = errors.New("segment: time series shorter than one window")
	errEmptySeries = errors.New("segment: time series must not be empty")
)

func (c Config) validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("segment: sample interval must be > 0: %f", c.Dt)
	}
	if c.Window <= 0 {
		return fmt.Errorf("segment: window length must be > 0: %f", c.Window)
	}
	if c.Overlap < 0 || c.Overlap >= 1 {
		return fmt.Errorf("segment: overlap must be in [0,1): %f", c.Overlap)
	}
	if c.WindowSamples() < 2 {
		return fmt.Errorf("segment: window of %f s at dt %f s is too short", c.Window, c.Dt)
	}
	return nil
}
