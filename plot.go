package bayesx

import "fmt"

// ToPlotSeries turns a posterior summary into the series a chart renderer
// draws. It is a pure function; callers render an empty chart instead of
// calling it when no summary exists.
//
// The confidence band is the upper bound (mean + sigma) in grid order
// followed by the lower bound (mean - sigma) in reverse grid order. Filled as
// a single path this gives a closed, non-self-intersecting polygon.
//
// Grid order is trusted, not re-sorted. Paired slices of uneven length are
// cut to the shortest one.
func ToPlotSeries(summary PosteriorSummary) PlotSeries {
	n := min(len(summary.X), len(summary.YPred), len(summary.Sigma))

	mean := make([]Point, n)
	band := make([]Point, 2*n)

	for i := 0; i < n; i++ {
		x, y, s := summary.X[i], summary.YPred[i], summary.Sigma[i]

		mean[i] = Point{X: x, Y: y}
		band[i] = Point{X: x, Y: y + s}
		band[2*n-1-i] = Point{X: x, Y: y - s}
	}

	m := min(len(summary.ObservedX), len(summary.ObservedY))

	observed := make([]Point, m)
	for i := 0; i < m; i++ {
		observed[i] = Point{X: summary.ObservedX[i], Y: summary.ObservedY[i]}
	}

	return PlotSeries{
		MeanCurve:      mean,
		ConfidenceBand: band,
		ObservedPoints: observed,
	}
}

// Validate checks that paired slices have matching lengths.
func (p *PosteriorSummary) Validate() error {
	if len(p.YPred) != len(p.X) {
		return fmt.Errorf("y_pred has %d points, x has %d", len(p.YPred), len(p.X))
	}

	if len(p.Sigma) != len(p.X) {
		return fmt.Errorf("sigma has %d points, x has %d", len(p.Sigma), len(p.X))
	}

	if len(p.ObservedY) != len(p.ObservedX) {
		return fmt.Errorf("observed_y has %d points, observed_x has %d", len(p.ObservedY), len(p.ObservedX))
	}

	return nil
}
