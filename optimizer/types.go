package optimizer

import (
	"math/rand"

	"golang.org/x/exp/constraints"
)

// ParameterRange defines the search range of one parameter.
//
// Type Parameter:
//   - T: The numeric type of the parameter. Integer ranges only yield
//     integer suggestions.
//
// Fields:
// - Name: Parameter name, used to key suggestions
// - Min: The minimum (inclusive) value
// - Max: The maximum (inclusive) value
//
// Usage:
//
//	temperature := ParameterRange[float64]{Name: "temp", Min: 0, Max: 100}
//	batchSize := ParameterRange[int]{Name: "batch", Min: 8, Max: 512}
//
// Validation:
// - Min must be less than or equal to Max
// - The range is inclusive of both Min and Max values
type ParameterRange[T constraints.Integer | constraints.Float] struct {
	Name string
	Min  T
	Max  T
}

// Observation is one registered experiment: parameter values in range order
// and the metric measured there.
type Observation struct {
	Params []float64
	Target float64
}

// AcquisitionFunc scores a candidate from its predicted mean and variance.
// Higher is better.
type AcquisitionFunc func(mean, variance float64, params AcquisitionParams) float64

// AcquisitionParams holds the knobs of the acquisition functions.
//
// Fields:
// - Beta: Exploration weight for UCB
// - Xi: Minimum improvement for PI and EI
// - BestSoFar: Best metric observed, filled in by Suggest
// - RandomState: Source for Thompson sampling, filled in by Suggest when nil
type AcquisitionParams struct {
	Beta float64

	Xi float64

	BestSoFar float64

	RandomState *rand.Rand
}

// Config controls one suggestion.
//
// Fields:
// - NumCandidates: Random candidates scored per suggestion
// - AcquisitionFunc: Candidate scoring strategy
// - AcqParams: Parameters for the acquisition function
// - KernelWidth: RBF width on bounds-normalised inputs
// - Alpha: Noise term added to the kernel diagonal
// - GridPoints: Posterior grid size for single-parameter problems
// - Seed: Random seed, so equal inputs give equal suggestions
type Config struct {
	NumCandidates int

	AcquisitionFunc AcquisitionFunc

	AcqParams AcquisitionParams

	KernelWidth float64

	Alpha float64

	GridPoints int

	Seed int64
}

// Posterior is the model's belief over a single parameter, sampled on a
// grid, plus the observations it was fitted on.
type Posterior struct {
	X         []float64
	Mean      []float64
	Sigma     []float64
	ObservedX []float64
	ObservedY []float64
}

// Result is the outcome of Suggest.
type Result[T constraints.Integer | constraints.Float] struct {
	// Next holds the suggested value per parameter, in range order.
	Next []T

	// Posterior is set only when exactly one parameter is optimised.
	Posterior *Posterior
}
