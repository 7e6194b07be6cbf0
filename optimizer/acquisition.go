package optimizer

import "math"

//////
// Acquisition functions. The optimizer maximises the metric, so for every
// function here a higher score marks a more promising candidate.
//////

// UCB implements the Upper Confidence Bound acquisition function.
//
// How it works:
// - Adds the predicted mean to Beta standard deviations of uncertainty
// - Beta controls the trade-off between exploration and exploitation
//
// Parameters:
// - mean: Predicted metric at this point
// - variance: Uncertainty in the prediction
// - params.Beta: Exploration weight (the "kappa" of the service, 2.5 by default)
//
// Example:
//
//	params := AcquisitionParams{Beta: 2.5}
//	score := UCB(0.5, 0.04, params) // 0.5 + 2.5*0.2 = 1.0
func UCB(mean, variance float64, params AcquisitionParams) float64 {
	return mean + params.Beta*math.Sqrt(variance)
}

// ProbabilityOfImprovement (PI) is the probability that a point beats the
// best observed metric by at least Xi.
//
// Parameters:
// - mean: Predicted metric at this point
// - variance: Uncertainty in the prediction
// - params.BestSoFar: Best metric observed so far
// - params.Xi: Minimum improvement desired
//
// A point with no uncertainty scores 1 if it improves and 0 otherwise.
func ProbabilityOfImprovement(mean, variance float64, params AcquisitionParams) float64 {
	sigma := math.Sqrt(variance)
	if sigma == 0 {
		if mean-params.BestSoFar-params.Xi > 0 {
			return 1
		}

		return 0
	}

	z := (mean - params.BestSoFar - params.Xi) / sigma

	return normalCDF(z)
}

// ExpectedImprovement (EI) is the expected amount by which a point beats the
// best observed metric.
//
// Parameters:
// - mean: Predicted metric at this point
// - variance: Uncertainty in the prediction
// - params.BestSoFar: Best metric observed so far
// - params.Xi: Minimum improvement desired
func ExpectedImprovement(mean, variance float64, params AcquisitionParams) float64 {
	sigma := math.Sqrt(variance)
	improvement := mean - params.BestSoFar - params.Xi

	if sigma == 0 {
		return math.Max(improvement, 0)
	}

	z := improvement / sigma

	return improvement*normalCDF(z) + sigma*normalPDF(z)
}

// ThompsonSampling draws one sample from the posterior at the point.
//
// Warning:
// - params.RandomState must be set
// - Don't share RandomState between goroutines.
func ThompsonSampling(mean, variance float64, params AcquisitionParams) float64 {
	return mean + math.Sqrt(variance)*params.RandomState.NormFloat64()
}

// AcquisitionByName resolves a configured acquisition name: "ucb", "pi",
// "ei" or "thompson". ok is false for anything else.
func AcquisitionByName(name string) (fn AcquisitionFunc, ok bool) {
	switch name {
	case "ucb":
		return UCB, true
	case "pi":
		return ProbabilityOfImprovement, true
	case "ei":
		return ExpectedImprovement, true
	case "thompson":
		return ThompsonSampling, true
	default:
		return nil, false
	}
}
