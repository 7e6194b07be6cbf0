package bayesx

import (
	"encoding/json"
	"math"
	"strconv"
)

//////
// Ledger rows.
//////

// ParameterDefinition is one row of the parameter ledger: a named numeric
// tunable with an inclusive search range.
//
// Fields:
// - ID: Stable identifier, assigned once and never reused
// - Name: Parameter name, also used as the experiment field key
// - Min: Lower bound of the search range
// - Max: Upper bound of the search range
//
// A row with an empty name and zero bounds is the placeholder row the ledger
// keeps at its tail.
type ParameterDefinition struct {
	ID   int     `json:"id"`
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// ExperimentRecord is one trial. Values maps a parameter name or the metric
// name to the raw text the user typed (or the service suggested).
type ExperimentRecord struct {
	ID     int               `json:"id"`
	Values map[string]string `json:"values"`
}

//////
// Wire types.
//////

// Number is a float64 that encodes NaN and infinities as JSON null, the same
// way a browser serialises them.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}

	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler. null decodes to NaN.
func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Number(math.NaN())

		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	*n = Number(f)

	return nil
}

// RequestParameter is a parameter as sent to the optimization service.
type RequestParameter struct {
	Name string `json:"name"`
	Min  Number `json:"min"`
	Max  Number `json:"max"`
}

// RequestMetric names the objective.
type RequestMetric struct {
	Name string `json:"name"`
}

// RequestExperiment is an experiment with every value parsed to a number.
type RequestExperiment struct {
	ID     int               `json:"id"`
	Values map[string]Number `json:"values"`
}

// OptimizationRequest is the body posted to the optimization service. It is
// built fresh for every submission and never stored.
type OptimizationRequest struct {
	Parameters  []RequestParameter  `json:"parameters"`
	Metrics     []RequestMetric     `json:"metrics"`
	Experiments []RequestExperiment `json:"experiments"`
}

// PosteriorSummary is the service's view of the posterior over a single
// parameter: a grid with predictive mean and standard deviation, plus the
// observations the model was fitted on.
type PosteriorSummary struct {
	X         []float64 `json:"x"`
	YPred     []float64 `json:"y_pred"`
	Sigma     []float64 `json:"sigma"`
	ObservedX []float64 `json:"observed_x"`
	ObservedY []float64 `json:"observed_y"`
}

// IsEmpty reports whether the summary carries no grid points.
func (p *PosteriorSummary) IsEmpty() bool {
	return p == nil || len(p.X) == 0
}

// ResponseKind classifies which optional parts a response carries.
type ResponseKind int

const (
	// ResponseEmpty means the service accepted the data without a suggestion.
	ResponseEmpty ResponseKind = iota

	// ResponseNextOnly carries a suggestion and no posterior.
	ResponseNextOnly

	// ResponsePlotOnly carries a posterior and no suggestion.
	ResponsePlotOnly

	// ResponseBoth carries both.
	ResponseBoth
)

// String implements fmt.Stringer.
func (k ResponseKind) String() string {
	switch k {
	case ResponseNextOnly:
		return "next-only"
	case ResponsePlotOnly:
		return "plot-only"
	case ResponseBoth:
		return "both"
	default:
		return "empty"
	}
}

// OptimizationResponse is the parsed service reply. NextValues holds the
// suggested point as raw text, ready to become an experiment record. Both
// fields are independently optional.
type OptimizationResponse struct {
	Message    string
	NextValues map[string]string
	PlotData   *PosteriorSummary
}

// Kind returns the response classification.
func (r OptimizationResponse) Kind() ResponseKind {
	hasNext := r.NextValues != nil
	hasPlot := r.PlotData != nil

	switch {
	case hasNext && hasPlot:
		return ResponseBoth
	case hasNext:
		return ResponseNextOnly
	case hasPlot:
		return ResponsePlotOnly
	default:
		return ResponseEmpty
	}
}

// wireResponse mirrors the JSON body. next_values stays raw so numbers keep
// their literal text.
type wireResponse struct {
	Message    string                     `json:"message"`
	Error      string                     `json:"error"`
	NextValues map[string]json.RawMessage `json:"next_values"`
	PlotData   *PosteriorSummary          `json:"plot_data"`
}

//////
// Plot series.
//////

// Point is an (x, y) pair of a chart series.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlotSeries holds the three series a chart renderer needs.
type PlotSeries struct {
	// MeanCurve is the predictive mean, in grid order.
	MeanCurve []Point `json:"mean_curve"`

	// ConfidenceBand is a closed polygon: upper bound ascending, then lower
	// bound descending.
	ConfidenceBand []Point `json:"confidence_band"`

	// ObservedPoints are drawn as markers without a connecting line.
	ObservedPoints []Point `json:"observed_points"`
}
