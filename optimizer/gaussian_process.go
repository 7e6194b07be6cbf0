package optimizer

import (
	"sync"
)

//////
// Const, vars, types.
//////

// jitterSteps are the extra diagonal terms tried, in order, when the kernel
// matrix is not numerically positive definite.
var jitterSteps = []float64{0, 1e-10, 1e-8, 1e-6, 1e-4}

// gaussianProcess is a thread-safe Gaussian process regressor with an RBF
// kernel. Inputs are expected in the unit cube (the optimizer normalises by
// the parameter bounds). Targets are standardised internally.
//
// Fields:
// - mu: RWMutex guarding every field
// - X: Observed input points
// - Y: Observed targets
// - sigma: RBF kernel width
// - alpha: Noise term added to the kernel diagonal
// - chol: Lower Cholesky factor of K + alpha*I, refreshed on Update
// - weights: (K + alpha*I)^-1 * standardised Y
// - yMean, yStd: Target standardisation
type gaussianProcess struct {
	mu sync.RWMutex

	X [][]float64
	Y []float64

	sigma float64
	alpha float64

	chol    [][]float64
	weights []float64
	yMean   float64
	yStd    float64
}

//////
// Methods.
//////

// RBFKernel measures the similarity of two points, 1 for identical points
// falling towards 0 with distance.
//
//	k(x1, x2) = exp(-sum((x1 - x2)^2) / (2 * sigma^2))
//
// Panics if the vectors have different lengths.
func (gp *gaussianProcess) RBFKernel(x1, x2 []float64) float64 {
	gp.mu.RLock()
	sigma := gp.sigma
	gp.mu.RUnlock()

	return rbf(x1, x2, sigma)
}

// Predict returns the posterior mean and variance at x, in target units.
// With no observations it returns the prior: mean 0, variance 1.
func (gp *gaussianProcess) Predict(x []float64) (mean, variance float64) {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	if len(gp.X) == 0 || gp.chol == nil {
		return 0, 1
	}

	k := make([]float64, len(gp.X))
	for i := range gp.X {
		k[i] = rbf(x, gp.X[i], gp.sigma)
	}

	var m float64
	for i := range k {
		m += k[i] * gp.weights[i]
	}

	// v = L^-1 k, var = k(x, x) - v.v
	v := forwardSubstitute(gp.chol, k)

	variance = 1.0
	for i := range v {
		variance -= v[i] * v[i]
	}

	if variance < 0 {
		variance = 0
	}

	mean = m*gp.yStd + gp.yMean
	variance *= gp.yStd * gp.yStd

	return mean, variance
}

// Update adds an observation and refits the model. The input slice is
// copied.
func (gp *gaussianProcess) Update(x []float64, y float64) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	newX := make([]float64, len(x))
	copy(newX, x)

	gp.X = append(gp.X, newX)
	gp.Y = append(gp.Y, y)

	gp.fit()
}

// SetSigma changes the kernel width and refits. No validation of sigma
// value (caller's responsibility).
func (gp *gaussianProcess) SetSigma(sigma float64) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	gp.sigma = sigma

	gp.fit()
}

// GetSigma returns the kernel width.
func (gp *gaussianProcess) GetSigma() float64 {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	return gp.sigma
}

// Len returns the number of observations.
func (gp *gaussianProcess) Len() int {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	return len(gp.X)
}

// fit recomputes the Cholesky factor and weights. Caller holds the write
// lock.
func (gp *gaussianProcess) fit() {
	n := len(gp.X)
	if n == 0 {
		gp.chol, gp.weights = nil, nil

		return
	}

	gp.yMean, gp.yStd = meanStd(gp.Y)

	y := make([]float64, n)
	for i, v := range gp.Y {
		y[i] = (v - gp.yMean) / gp.yStd
	}

	for _, jitter := range jitterSteps {
		k := make([][]float64, n)
		for i := range k {
			k[i] = make([]float64, n)
			for j := range k[i] {
				k[i][j] = rbf(gp.X[i], gp.X[j], gp.sigma)
			}

			k[i][i] += gp.alpha + jitter
		}

		l, ok := cholesky(k)
		if !ok {
			continue
		}

		gp.chol = l
		gp.weights = backSubstituteTransposed(l, forwardSubstitute(l, y))

		return
	}

	// Give up on the fit; Predict falls back to the prior.
	gp.chol, gp.weights = nil, nil
}

//////
// Factory.
//////

// newGaussianProcess returns an empty model with the given kernel width and
// noise term.
func newGaussianProcess(sigma, alpha float64) *gaussianProcess {
	return &gaussianProcess{
		sigma: sigma,
		alpha: alpha,
		yStd:  1,
	}
}
