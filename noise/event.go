package noise

import (
	"go.uber.org/zap"

	"github.com/cwbudde/algo-obsnoise/dsp/segment"
	"github.com/cwbudde/algo-obsnoise/measure/correct"
	"github.com/cwbudde/algo-obsnoise/measure/transfer"
)

// CorrectEvent removes the predicted tilt and compliance noise from an
// event record's vertical channel. The record must share the sample
// rate and window length the transfer functions were solved with; a
// mismatch surfaces as correct.ErrAxisMismatch. A nil model list
// selects every model the set carries.
func CorrectEvent(key string, ev Channels, set transfer.Set, models []transfer.Model, cfg Config) ([]correct.Result, error) {
	if err := ev.validate(); err != nil {
		return nil, err
	}
	log := cfg.logger()

	// The default selection is every model the set carries that the
	// event's channel set can feed; an explicit list is passed through
	// so unsupported requests still surface as errors.
	if models == nil {
		for _, m := range transfer.Models() {
			if set.Has(m) && channelsSupport(m, ev) {
				models = append(models, m)
			}
		}
	}

	segCfg := segment.Config{Window: cfg.Window, Overlap: cfg.Overlap, Dt: ev.Dt}

	var (
		evs correct.Event
		err error
	)
	if evs.Z, err = segment.EventSpectra(ev.Z, segCfg); err != nil {
		return nil, err
	}
	if ev.hasHorizontals() {
		if evs.H1, err = segment.EventSpectra(ev.H1, segCfg); err != nil {
			return nil, err
		}
		if evs.H2, err = segment.EventSpectra(ev.H2, segCfg); err != nil {
			return nil, err
		}
	}
	if ev.hasPressure() {
		if evs.P, err = segment.EventSpectra(ev.P, segCfg); err != nil {
			return nil, err
		}
	}

	results, err := correct.Apply(evs, set, models)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(results))
	for i, r := range results {
		names[i] = string(r.Model)
	}
	log.Info("event corrected",
		zap.String("key", key),
		zap.Int("windows", evs.Z.Windows()),
		zap.Strings("models", names))

	return results, nil
}

// channelsSupport reports whether the event record carries the channels
// a model's correction cascade consumes.
func channelsSupport(m transfer.Model, ev Channels) bool {
	switch m {
	case transfer.ModelZP:
		return ev.hasPressure()
	case transfer.ModelZ1, transfer.ModelZ21, transfer.ModelZH:
		return ev.hasHorizontals()
	case transfer.ModelZP21, transfer.ModelZPH:
		return ev.hasHorizontals() && ev.hasPressure()
	}
	return false
}
