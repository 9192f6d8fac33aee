package outlier

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// FTest compares the variance of two residual vectors through an F-ratio
// and returns the two-sided tail probability. pars is the parameter count
// subtracted from each sample size to form the degrees of freedom.
//
// The (·, 1) parameter convention of the rejection loop is kept on
// purpose for behavioral compatibility with established processing, even
// though it is not a textbook F-test.
func FTest(res1 []float64, pars1 int, res2 []float64, pars2 int) float64 {
	dof1 := len(res1) - pars1
	dof2 := len(res2) - pars2
	if dof1 <= 0 || dof2 <= 0 {
		return 1
	}

	ea1 := sumSquares(res1)
	ea2 := sumSquares(res2)
	if ea2 == 0 || ea1 == 0 {
		if ea1 == ea2 {
			return 1
		}
		return 0
	}

	fobs := (ea1 / float64(dof1)) / (ea2 / float64(dof2))
	if math.IsInf(fobs, 0) || math.IsNaN(fobs) {
		return 0
	}

	dist := distuv.F{D1: float64(dof1), D2: float64(dof2)}
	return 1 - (dist.CDF(fobs) - dist.CDF(1/fobs))
}

func sumSquares(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum
}
