// Package optimizer is the Bayesian optimization engine behind the reference
// optimization service. It fits a Gaussian process to registered
// experiments and suggests the next point to try.
//
// # Features
//
//   - Gaussian process regression with an RBF kernel on bounds-normalised
//     inputs, a noise term on the diagonal and standardised targets
//   - Multiple acquisition functions: Upper Confidence Bound (UCB),
//     Probability of Improvement (PI), Expected Improvement (EI) and
//     Thompson Sampling
//   - Generic ranges: works with both integer and floating-point parameters
//   - Posterior sampling on a grid for single-parameter problems, for
//     plotting
//   - Deterministic: a seeded source drives every random choice
//
// # Acquisition Functions
//
// The metric is maximised. Every acquisition function scores a candidate so
// that higher is better.
//
// 1. Upper Confidence Bound (UCB), the default:
//
//	config := DefaultConfig()
//	config.AcqParams.Beta = 2.5 // kappa
//
// 2. Probability of Improvement (PI):
//
//	config := DefaultConfig()
//	config.AcquisitionFunc = ProbabilityOfImprovement
//	config.AcqParams.Xi = 0.01
//
// 3. Expected Improvement (EI):
//
//	config := DefaultConfig()
//	config.AcquisitionFunc = ExpectedImprovement
//
// 4. Thompson Sampling:
//
//	config := DefaultConfig()
//	config.AcquisitionFunc = ThompsonSampling
//
// # Thread Safety
//
// Suggest shares no state between calls and is safe for concurrent use. The
// Gaussian process model guards its fields with a RWMutex.
package optimizer
