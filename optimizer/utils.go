package optimizer

import "math"

// normalCDF calculates the cumulative distribution function of the standard
// normal distribution.
func normalCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// normalPDF calculates the probability density function of the standard
// normal distribution.
func normalPDF(x float64) float64 {
	return math.Exp(-x*x/2.0) / math.Sqrt(2.0*math.Pi)
}

func rbf(x1, x2 []float64, sigma float64) float64 {
	if len(x1) != len(x2) {
		panic("input vectors must have the same length")
	}

	var sum float64

	for i := range x1 {
		diff := x1[i] - x2[i]

		sum += diff * diff
	}

	return math.Exp(-sum / (2 * sigma * sigma))
}

// cholesky returns the lower triangular L with L*L^T = a. ok is false when a
// is not positive definite.
func cholesky(a [][]float64) (l [][]float64, ok bool) {
	n := len(a)

	l = make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := a[i][j]
			for k := 0; k < j; k++ {
				sum -= l[i][k] * l[j][k]
			}

			if i == j {
				if sum <= 0 || math.IsNaN(sum) {
					return nil, false
				}

				l[i][i] = math.Sqrt(sum)

				continue
			}

			l[i][j] = sum / l[j][j]
		}
	}

	return l, true
}

// forwardSubstitute solves L*x = b for lower triangular L.
func forwardSubstitute(l [][]float64, b []float64) []float64 {
	x := make([]float64, len(b))

	for i := range b {
		sum := b[i]
		for k := 0; k < i; k++ {
			sum -= l[i][k] * x[k]
		}

		x[i] = sum / l[i][i]
	}

	return x
}

// backSubstituteTransposed solves L^T*x = b for lower triangular L.
func backSubstituteTransposed(l [][]float64, b []float64) []float64 {
	n := len(b)
	x := make([]float64, n)

	for i := n - 1; i >= 0; i-- {
		sum := b[i]
		for k := i + 1; k < n; k++ {
			sum -= l[k][i] * x[k]
		}

		x[i] = sum / l[i][i]
	}

	return x
}

// meanStd returns the mean and population standard deviation of values. A
// zero deviation is reported as 1 so it can divide.
func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 1
	}

	for _, v := range values {
		mean += v
	}

	mean /= float64(len(values))

	for _, v := range values {
		std += (v - mean) * (v - mean)
	}

	std = math.Sqrt(std / float64(len(values)))
	if std == 0 || math.IsNaN(std) {
		std = 1
	}

	return mean, std
}

// linspace returns n evenly spaced values over [start, stop], both included.
func linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}

	if n == 1 {
		return []float64{start}
	}

	out := make([]float64, n)
	step := (stop - start) / float64(n-1)

	for i := range out {
		out[i] = start + float64(i)*step
	}

	out[n-1] = stop

	return out
}
