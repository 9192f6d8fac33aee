package transfer

// Model identifies a transfer function model by the channels it removes
// from the vertical.
type Model string

const (
	// ModelZP regresses the vertical on pressure alone.
	ModelZP Model = "ZP"
	// ModelZ1 regresses the vertical on the first horizontal.
	ModelZ1 Model = "Z1"
	// ModelZ21 removes H1, then regresses the residual on H2.
	ModelZ21 Model = "Z2-1"
	// ModelZP21 removes both horizontals, then pressure.
	ModelZP21 Model = "ZP-21"
	// ModelZH regresses the vertical on the tilt-rotated horizontal.
	ModelZH Model = "ZH"
	// ModelZPH removes the rotated horizontal, then pressure.
	ModelZPH Model = "ZP-H"
)

// Models returns all models in canonical order.
func Models() []Model {
	return []Model{ModelZP, ModelZ1, ModelZ21, ModelZP21, ModelZH, ModelZPH}
}

// DayModels returns the models solvable from a single day's spectra
// given the number of recorded components. Daily estimates include the
// rotated-horizontal models since the tilt azimuth is fixed within a
// day.
func DayModels(ncomp int) []Model {
	switch ncomp {
	case 2:
		return []Model{ModelZP}
	case 3:
		return []Model{ModelZ1, ModelZ21, ModelZH}
	case 4:
		return Models()
	}
	return nil
}

// StationModels returns the models solvable from station-averaged
// spectra. The tilt azimuth drifts between days, so the rotated models
// are excluded.
func StationModels(ncomp int) []Model {
	switch ncomp {
	case 2:
		return []Model{ModelZP}
	case 3:
		return []Model{ModelZ1, ModelZ21}
	case 4:
		return []Model{ModelZP, ModelZ1, ModelZ21, ModelZP21}
	}
	return nil
}
