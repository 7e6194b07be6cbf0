package optimizer

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/exp/constraints"
)

//////
// Const, vars, types.
//////

var (
	// ErrNoParameters is returned when there is nothing to optimise.
	ErrNoParameters = errors.New("no parameters to optimize")

	// ErrInvalidRange is returned for a range with Min > Max or NaN bounds.
	ErrInvalidRange = errors.New("invalid parameter range")

	// ErrInvalidObservation is returned for an observation that does not fit
	// the ranges.
	ErrInvalidObservation = errors.New("invalid observation")
)

//////
// Exported functionalities.
//////

// DefaultConfig returns the configuration the reference service uses: UCB
// with kappa 2.5, noise 1e-3 and a 1000 point posterior grid.
func DefaultConfig() Config {
	return Config{
		NumCandidates:   2000,
		AcquisitionFunc: UCB,
		AcqParams: AcquisitionParams{
			Beta: 2.5,
			Xi:   0.01,
		},
		KernelWidth: 0.2,
		Alpha:       1e-3,
		GridPoints:  1000,
		Seed:        1,
	}
}

// Suggest fits a Gaussian process to the observations and returns the next
// point to try. The metric is maximised.
//
// Type Parameter:
//   - T: The numeric type for parameters (integer or float)
//
// Parameters:
// - config: Config controlling the suggestion
// - ranges: One ParameterRange per parameter, defining the search space
// - observations: Registered experiments, Params in range order
//
// Returns:
// - Result[T]: The suggestion, plus the posterior when there is exactly one
// parameter
// - error: ErrNoParameters, ErrInvalidRange or ErrInvalidObservation
//
// Usage example:
//
//	ranges := []ParameterRange[float64]{{Name: "temp", Min: 0, Max: 100}}
//	observations := []Observation{{Params: []float64{50}, Target: 0.8}}
//
//	result, err := Suggest(DefaultConfig(), ranges, observations)
//	if err != nil {
//	    return err
//	}
//	fmt.Println("try temp =", result.Next[0])
//
// How it works:
// - Inputs are normalised to the unit cube by the ranges
// - Without observations the suggestion is a uniform random point
// - Otherwise NumCandidates random points are scored by the acquisition
// function and the best one wins
//
// Suggestions are deterministic for a given config, ranges and
// observations.
func Suggest[T constraints.Integer | constraints.Float](
	config Config,
	ranges []ParameterRange[T],
	observations []Observation,
) (Result[T], error) {
	if len(ranges) == 0 {
		return Result[T]{}, ErrNoParameters
	}

	for _, r := range ranges {
		lo, hi := float64(r.Min), float64(r.Max)
		if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
			return Result[T]{}, fmt.Errorf("%w: %q [%v, %v]", ErrInvalidRange, r.Name, r.Min, r.Max)
		}
	}

	rng := rand.New(rand.NewSource(config.Seed))

	acqParams := config.AcqParams
	if acqParams.RandomState == nil {
		acqParams.RandomState = rng
	}

	acquisition := config.AcquisitionFunc
	if acquisition == nil {
		acquisition = UCB
	}

	kernelWidth := config.KernelWidth
	if kernelWidth <= 0 {
		kernelWidth = DefaultConfig().KernelWidth
	}

	gp := newGaussianProcess(kernelWidth, config.Alpha)

	bestSoFar := math.Inf(-1)

	for i, obs := range observations {
		if len(obs.Params) != len(ranges) {
			return Result[T]{}, fmt.Errorf("%w: #%d has %d values for %d parameters",
				ErrInvalidObservation, i, len(obs.Params), len(ranges))
		}

		if math.IsNaN(obs.Target) || math.IsInf(obs.Target, 0) {
			return Result[T]{}, fmt.Errorf("%w: #%d has no finite target", ErrInvalidObservation, i)
		}

		gp.Update(normalize(ranges, obs.Params), obs.Target)

		bestSoFar = math.Max(bestSoFar, obs.Target)
	}

	var next []T

	if gp.Len() == 0 {
		next = randomParams(rng, ranges)
	} else {
		acqParams.BestSoFar = bestSoFar

		bestScore := math.Inf(-1)
		candidates := max(config.NumCandidates, 1)

		for j := 0; j < candidates; j++ {
			candidate := randomParams(rng, ranges)

			mean, variance := gp.Predict(normalize(ranges, toFloats(candidate)))

			score := acquisition(mean, variance, acqParams)
			if next == nil || score > bestScore {
				bestScore = score
				next = candidate
			}
		}
	}

	result := Result[T]{Next: next}

	if len(ranges) == 1 {
		result.Posterior = posterior(gp, ranges[0], observations, config.GridPoints)
	}

	return result, nil
}

//////
// Helpers.
//////

// posterior samples the model over a single parameter's range.
func posterior[T constraints.Integer | constraints.Float](
	gp *gaussianProcess,
	r ParameterRange[T],
	observations []Observation,
	gridPoints int,
) *Posterior {
	if gridPoints <= 0 {
		gridPoints = DefaultConfig().GridPoints
	}

	lo, hi := float64(r.Min), float64(r.Max)

	p := &Posterior{
		X:         linspace(lo, hi, gridPoints),
		ObservedX: make([]float64, len(observations)),
		ObservedY: make([]float64, len(observations)),
	}

	p.Mean = make([]float64, len(p.X))
	p.Sigma = make([]float64, len(p.X))

	for i, x := range p.X {
		mean, variance := gp.Predict([]float64{scale(x, lo, hi)})

		p.Mean[i] = mean
		p.Sigma[i] = math.Sqrt(variance)
	}

	for i, obs := range observations {
		p.ObservedX[i] = obs.Params[0]
		p.ObservedY[i] = obs.Target
	}

	return p
}

// randomParams draws a uniform point inside the ranges.
func randomParams[T constraints.Integer | constraints.Float](rng *rand.Rand, ranges []ParameterRange[T]) []T {
	params := make([]T, len(ranges))

	for i, r := range ranges {
		switch any(r.Min).(type) {
		case float32, float64:
			lo, hi := float64(r.Min), float64(r.Max)
			params[i] = T(lo + rng.Float64()*(hi-lo))
		default:
			lo, hi := int64(r.Min), int64(r.Max)
			params[i] = T(lo + rng.Int63n(hi-lo+1))
		}
	}

	return params
}

func normalize[T constraints.Integer | constraints.Float](ranges []ParameterRange[T], values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = scale(v, float64(ranges[i].Min), float64(ranges[i].Max))
	}

	return out
}

// scale maps v from [lo, hi] to [0, 1]. A zero-width range maps to 0.
func scale(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}

	return (v - lo) / (hi - lo)
}

func toFloats[T constraints.Integer | constraints.Float](values []T) []float64 {
	floats := make([]float64, len(values))
	for i, v := range values {
		floats[i] = float64(v)
	}

	return floats
}
