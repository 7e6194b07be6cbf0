package bayesx

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberJSON(t *testing.T) {
	tests := []struct {
		name string
		in   Number
		want string
	}{
		{"integer", 50, "50"},
		{"fraction", 0.8, "0.8"},
		{"negative", -3.5, "-3.5"},
		{"nan", Number(math.NaN()), "null"},
		{"inf", Number(math.Inf(1)), "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}

	var n Number
	require.NoError(t, json.Unmarshal([]byte("null"), &n))
	assert.True(t, math.IsNaN(float64(n)))

	require.NoError(t, json.Unmarshal([]byte("1.25"), &n))
	assert.Equal(t, Number(1.25), n)

	assert.Error(t, json.Unmarshal([]byte(`"x"`), &n))
}

func TestResponseKind(t *testing.T) {
	plot := &PosteriorSummary{X: []float64{0}}
	next := map[string]string{"temp": "1"}

	tests := []struct {
		resp OptimizationResponse
		want ResponseKind
	}{
		{OptimizationResponse{}, ResponseEmpty},
		{OptimizationResponse{NextValues: next}, ResponseNextOnly},
		{OptimizationResponse{PlotData: plot}, ResponsePlotOnly},
		{OptimizationResponse{NextValues: next, PlotData: plot}, ResponseBoth},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.Kind())
		})
	}
}

func TestPosteriorSummaryIsEmpty(t *testing.T) {
	var nilSummary *PosteriorSummary

	assert.True(t, nilSummary.IsEmpty())
	assert.True(t, (&PosteriorSummary{}).IsEmpty())
	assert.False(t, (&PosteriorSummary{X: []float64{1}}).IsEmpty())
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, 50.0, parseValue("50"))
	assert.Equal(t, 0.8, parseValue(" 0.8 "))
	assert.Equal(t, 1e3, parseValue("1e3"))
	assert.True(t, math.IsNaN(parseValue("")))
	assert.True(t, math.IsNaN(parseValue("abc")))
	assert.True(t, math.IsNaN(parseValue("12abc")))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"73.2"`, "73.2"},
		{`73.2`, "73.2"},
		{`1e-7`, "1e-7"},
		{`42`, "42"},
		{`null`, ""},
		{`true`, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := formatValue(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := formatValue(json.RawMessage(`{"a":1}`))
	assert.Error(t, err)
}
