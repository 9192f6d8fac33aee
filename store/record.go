package store

import (
	"github.com/cwbudde/algo-obsnoise/dsp/spectral"
	"github.com/cwbudde/algo-obsnoise/measure/transfer"
	"github.com/cwbudde/algo-obsnoise/noise"
)

// ComplexArray is the gob-encodable form of a complex spectrum. The gob
// codec has no complex kind, so real and imaginary parts travel as
// separate arrays.
type ComplexArray struct {
	Re []float64
	Im []float64
}

// SplitComplex converts a complex slice to its encodable form. A nil
// input yields an empty array that converts back to nil.
func SplitComplex(x []complex128) ComplexArray {
	if x == nil {
		return ComplexArray{}
	}
	a := ComplexArray{
		Re: make([]float64, len(x)),
		Im: make([]float64, len(x)),
	}
	for i, v := range x {
		a.Re[i] = real(v)
		a.Im[i] = imag(v)
	}
	return a
}

// Complex rebuilds the complex slice, nil when the array is empty.
func (a ComplexArray) Complex() []complex128 {
	if a.Re == nil {
		return nil
	}
	out := make([]complex128, len(a.Re))
	for i := range out {
		out[i] = complex(a.Re[i], a.Im[i])
	}
	return out
}

type powerRecord struct {
	C11, C22, CZZ, CPP []float64
}

func splitPower(p spectral.Power) powerRecord {
	return powerRecord{C11: p.C11, C22: p.C22, CZZ: p.CZZ, CPP: p.CPP}
}

func (r powerRecord) power() spectral.Power {
	return spectral.Power{C11: r.C11, C22: r.C22, CZZ: r.CZZ, CPP: r.CPP}
}

type crossRecord struct {
	C12, C1Z, C1P, C2Z, C2P, CZP ComplexArray
}

func splitCross(c spectral.Cross) crossRecord {
	return crossRecord{
		C12: SplitComplex(c.C12),
		C1Z: SplitComplex(c.C1Z),
		C1P: SplitComplex(c.C1P),
		C2Z: SplitComplex(c.C2Z),
		C2P: SplitComplex(c.C2P),
		CZP: SplitComplex(c.CZP),
	}
}

func (r crossRecord) cross() spectral.Cross {
	return spectral.Cross{
		C12: r.C12.Complex(),
		C1Z: r.C1Z.Complex(),
		C1P: r.C1P.Complex(),
		C2Z: r.C2Z.Complex(),
		C2P: r.C2P.Complex(),
		CZP: r.CZP.Complex(),
	}
}

type rotationRecord struct {
	CHH      []float64
	CHZ, CHP ComplexArray

	Coh, Phase, Azimuths []float64

	Tilt, CohValue, PhaseValue float64
}

func splitRotation(r spectral.Rotation) rotationRecord {
	return rotationRecord{
		CHH:        r.CHH,
		CHZ:        SplitComplex(r.CHZ),
		CHP:        SplitComplex(r.CHP),
		Coh:        r.Coh,
		Phase:      r.Phase,
		Azimuths:   r.Azimuths,
		Tilt:       r.Tilt,
		CohValue:   r.CohValue,
		PhaseValue: r.PhaseValue,
	}
}

func (r rotationRecord) rotation() spectral.Rotation {
	return spectral.Rotation{
		CHH:        r.CHH,
		CHZ:        r.CHZ.Complex(),
		CHP:        r.CHP.Complex(),
		Coh:        r.Coh,
		Phase:      r.Phase,
		Azimuths:   r.Azimuths,
		Tilt:       r.Tilt,
		CohValue:   r.CohValue,
		PhaseValue: r.PhaseValue,
	}
}

// DayRecord is the persistable form of a daily estimate.
type DayRecord struct {
	Key      string
	Freqs    []float64
	Goodness []bool
	NComp    int
	NWins    int
	Dt       float64
	Window   float64
	Overlap  float64

	Power    powerRecord
	Cross    crossRecord
	Rotation rotationRecord
	Bad      powerRecord
}

// NewDayRecord converts a daily estimate for encoding.
func NewDayRecord(d *noise.Day) DayRecord {
	return DayRecord{
		Key:      d.Key,
		Freqs:    d.Freqs,
		Goodness: d.Goodness,
		NComp:    d.NComp,
		NWins:    d.NWins,
		Dt:       d.Dt,
		Window:   d.Window,
		Overlap:  d.Overlap,
		Power:    splitPower(d.Power),
		Cross:    splitCross(d.Cross),
		Rotation: splitRotation(d.Rotation),
		Bad:      splitPower(d.Bad),
	}
}

// Day rebuilds the daily estimate.
func (r DayRecord) Day() *noise.Day {
	return &noise.Day{
		Key:      r.Key,
		Freqs:    r.Freqs,
		Goodness: r.Goodness,
		NComp:    r.NComp,
		NWins:    r.NWins,
		Dt:       r.Dt,
		Window:   r.Window,
		Overlap:  r.Overlap,
		Power:    r.Power.power(),
		Cross:    r.Cross.cross(),
		Rotation: r.Rotation.rotation(),
		Bad:      r.Bad.power(),
	}
}

// StationRecord is the persistable form of a station estimate.
type StationRecord struct {
	Key      string
	Freqs    []float64
	Goodness []bool
	NComp    int

	Power    powerRecord
	Cross    crossRecord
	Rotation rotationRecord
	Bad      powerRecord
}

// NewStationRecord converts a station estimate for encoding.
func NewStationRecord(s *noise.Station) StationRecord {
	return StationRecord{
		Key:      s.Key,
		Freqs:    s.Freqs,
		Goodness: s.Goodness,
		NComp:    s.NComp,
		Power:    splitPower(s.Power),
		Cross:    splitCross(s.Cross),
		Rotation: splitRotation(s.Rotation),
		Bad:      splitPower(s.Bad),
	}
}

// Station rebuilds the station estimate.
func (r StationRecord) Station() *noise.Station {
	return &noise.Station{
		Key:      r.Key,
		Freqs:    r.Freqs,
		Goodness: r.Goodness,
		NComp:    r.NComp,
		Power:    r.Power.power(),
		Cross:    r.Cross.cross(),
		Rotation: r.Rotation.rotation(),
		Bad:      r.Bad.power(),
	}
}

// TransferRecord is the persistable form of a transfer function set.
// Absent models stay nil through the round trip.
type TransferRecord struct {
	Freqs []float64
	Tilt  float64

	ZP   *ZPRecord
	Z1   *Z1Record
	Z21  *Z21Record
	ZP21 *ZP21Record
	ZH   *ZHRecord
	ZPH  *ZPHRecord
}

type ZPRecord struct{ TFZP ComplexArray }
type Z1Record struct{ TFZ1 ComplexArray }
type Z21Record struct{ TF21, TFZ21 ComplexArray }
type ZP21Record struct {
	TFZ1, TF21, TFP1, TFP21, TFZ21, TFZP21 ComplexArray
}
type ZHRecord struct{ TFZH ComplexArray }
type ZPHRecord struct{ TFPH, TFZPH ComplexArray }

// NewTransferRecord converts a transfer function set for encoding.
func NewTransferRecord(s transfer.Set) TransferRecord {
	r := TransferRecord{Freqs: s.Freqs, Tilt: s.Tilt}
	if s.ZP != nil {
		r.ZP = &ZPRecord{TFZP: SplitComplex(s.ZP.TFZP)}
	}
	if s.Z1 != nil {
		r.Z1 = &Z1Record{TFZ1: SplitComplex(s.Z1.TFZ1)}
	}
	if s.Z21 != nil {
		r.Z21 = &Z21Record{
			TF21:  SplitComplex(s.Z21.TF21),
			TFZ21: SplitComplex(s.Z21.TFZ21),
		}
	}
	if s.ZP21 != nil {
		r.ZP21 = &ZP21Record{
			TFZ1:   SplitComplex(s.ZP21.TFZ1),
			TF21:   SplitComplex(s.ZP21.TF21),
			TFP1:   SplitComplex(s.ZP21.TFP1),
			TFP21:  SplitComplex(s.ZP21.TFP21),
			TFZ21:  SplitComplex(s.ZP21.TFZ21),
			TFZP21: SplitComplex(s.ZP21.TFZP21),
		}
	}
	if s.ZH != nil {
		r.ZH = &ZHRecord{TFZH: SplitComplex(s.ZH.TFZH)}
	}
	if s.ZPH != nil {
		r.ZPH = &ZPHRecord{
			TFPH:  SplitComplex(s.ZPH.TFPH),
			TFZPH: SplitComplex(s.ZPH.TFZPH),
		}
	}
	return r
}

// Set rebuilds the transfer function set.
func (r TransferRecord) Set() transfer.Set {
	s := transfer.Set{Freqs: r.Freqs, Tilt: r.Tilt}
	if r.ZP != nil {
		s.ZP = &transfer.ZPCoeffs{TFZP: r.ZP.TFZP.Complex()}
	}
	if r.Z1 != nil {
		s.Z1 = &transfer.Z1Coeffs{TFZ1: r.Z1.TFZ1.Complex()}
	}
	if r.Z21 != nil {
		s.Z21 = &transfer.Z21Coeffs{
			TF21:  r.Z21.TF21.Complex(),
			TFZ21: r.Z21.TFZ21.Complex(),
		}
	}
	if r.ZP21 != nil {
		s.ZP21 = &transfer.ZP21Coeffs{
			TFZ1:   r.ZP21.TFZ1.Complex(),
			TF21:   r.ZP21.TF21.Complex(),
			TFP1:   r.ZP21.TFP1.Complex(),
			TFP21:  r.ZP21.TFP21.Complex(),
			TFZ21:  r.ZP21.TFZ21.Complex(),
			TFZP21: r.ZP21.TFZP21.Complex(),
		}
	}
	if r.ZH != nil {
		s.ZH = &transfer.ZHCoeffs{TFZH: r.ZH.TFZH.Complex()}
	}
	if r.ZPH != nil {
		s.ZPH = &transfer.ZPHCoeffs{
			TFPH:  r.ZPH.TFPH.Complex(),
			TFZPH: r.ZPH.TFZPH.Complex(),
		}
	}
	return s
}
