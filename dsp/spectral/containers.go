package spectral

// Power holds auto-power spectra for each available channel. Fields of
// absent channels are nil. All populated fields share one frequency axis.
type Power struct {
	C11 []float64 // H1
	C22 []float64 // H2
	CZZ []float64 // Z
	CPP []float64 // P
}

// Empty reports whether no channel is populated.
func (p Power) Empty() bool {
	return p.C11 == nil && p.C22 == nil && p.CZZ == nil && p.CPP == nil
}

// Cross holds complex cross-power spectra for each available channel pair.
type Cross struct {
	C12 []complex128
	C1Z []complex128
	C1P []complex128
	C2Z []complex128
	C2P []complex128
	CZP []complex128
}

// Empty reports whether no channel pair is populated.
func (c Cross) Empty() bool {
	return c.C12 == nil && c.C1Z == nil && c.C1P == nil &&
		c.C2Z == nil && c.C2P == nil && c.CZP == nil
}

// Rotation holds the spectra of the tilt-rotated horizontal channel H,
// together with the coherence and phase curves of the azimuth search.
type Rotation struct {
	CHH []float64    // auto-power of rotated horizontal
	CHZ []complex128 // cross-power H with Z
	CHP []complex128 // cross-power H with P, nil without pressure data

	Coh      []float64 // mean in-band coherence with Z per azimuth
	Phase    []float64 // mean in-band phase per azimuth
	Azimuths []float64 // azimuth grid of the curves, degrees

	Tilt       float64 // chosen tilt azimuth, degrees
	CohValue   float64 // coherence at the chosen azimuth
	PhaseValue float64 // phase at the chosen azimuth
}

// Empty reports whether no rotated spectra are populated. Tilt estimation
// is skipped for two-channel records, leaving the container empty.
func (r Rotation) Empty() bool {
	return len(r.CHH) == 0
}
