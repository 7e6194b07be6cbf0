package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thalesfsp/bayesx"
	"github.com/thalesfsp/bayesx/internal/config"
)

func testConfig() config.ServiceConfig {
	return config.ServiceConfig{
		Addr:          ":0",
		AllowedOrigin: "http://localhost:3000",
		Acquisition:   "ucb",
		Kappa:         2.5,
		Xi:            0.01,
		Alpha:         1e-3,
		KernelWidth:   0.2,
		GridPoints:    1000,
		Candidates:    200,
		RandomSeed:    1,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func singleParamRequest() bayesx.OptimizationRequest {
	return bayesx.OptimizationRequest{
		Parameters: []bayesx.RequestParameter{{Name: "temp", Min: 0, Max: 100}},
		Metrics:    []bayesx.RequestMetric{{Name: "yield"}},
		Experiments: []bayesx.RequestExperiment{
			{ID: 2, Values: map[string]bayesx.Number{"temp": 50, "yield": 0.8}},
			{ID: 1, Values: map[string]bayesx.Number{"temp": 20, "yield": 0.3}},
		},
	}
}

func TestProcessSingleParameter(t *testing.T) {
	svc := New(testConfig(), quietLogger())

	resp := svc.Process(singleParamRequest())

	assert.Equal(t, messageSuggested, resp.Message)
	assert.Empty(t, resp.Error)

	require.Contains(t, resp.NextValues, "temp")
	assert.GreaterOrEqual(t, resp.NextValues["temp"], 0.0)
	assert.LessOrEqual(t, resp.NextValues["temp"], 100.0)

	plot, ok := resp.PlotData.(bayesx.PosteriorSummary)
	require.True(t, ok)
	assert.Len(t, plot.X, 1000)
	assert.Len(t, plot.YPred, 1000)
	assert.Len(t, plot.Sigma, 1000)
	assert.Equal(t, []float64{50, 20}, plot.ObservedX)
	assert.Equal(t, []float64{0.8, 0.3}, plot.ObservedY)
}

func TestProcessMultipleParametersHasEmptyPlot(t *testing.T) {
	svc := New(testConfig(), quietLogger())

	resp := svc.Process(bayesx.OptimizationRequest{
		Parameters: []bayesx.RequestParameter{
			{Name: "temp", Min: 0, Max: 100},
			{Name: "time", Min: 1, Max: 10},
		},
		Metrics: []bayesx.RequestMetric{{Name: "yield"}},
	})

	assert.Len(t, resp.NextValues, 2)
	assert.Equal(t, struct{}{}, resp.PlotData)
}

func TestProcessSkipsIncompleteExperiments(t *testing.T) {
	svc := New(testConfig(), quietLogger())

	req := singleParamRequest()
	req.Experiments = append(req.Experiments,
		// Suggested but not yet measured.
		bayesx.RequestExperiment{ID: 3, Values: map[string]bayesx.Number{"temp": 73.2}},
		bayesx.RequestExperiment{ID: 4, Values: map[string]bayesx.Number{"temp": 10, "yield": bayesx.Number(math.NaN())}},
		bayesx.RequestExperiment{ID: 5, Values: map[string]bayesx.Number{}},
	)

	resp := svc.Process(req)

	plot := resp.PlotData.(bayesx.PosteriorSummary)
	assert.Equal(t, []float64{50, 20}, plot.ObservedX)
}

func TestProcessRepeatedParameterName(t *testing.T) {
	ranges := boundsOf([]bayesx.RequestParameter{
		{Name: "a", Min: 0, Max: 1},
		{Name: "b", Min: 0, Max: 2},
		{Name: "a", Min: 5, Max: 6},
	})

	require.Len(t, ranges, 2)
	assert.Equal(t, "a", ranges[0].Name)
	assert.Equal(t, 5.0, ranges[0].Min)
	assert.Equal(t, "b", ranges[1].Name)
}

func TestProcessReportsFailure(t *testing.T) {
	svc := New(testConfig(), quietLogger())

	resp := svc.Process(bayesx.OptimizationRequest{Metrics: []bayesx.RequestMetric{{Name: "yield"}}})
	assert.Equal(t, messageFailed, resp.Message)
	assert.Contains(t, resp.Error, "no parameters")
	assert.Nil(t, resp.NextValues)
	assert.Nil(t, resp.PlotData)

	resp = svc.Process(bayesx.OptimizationRequest{
		Parameters: []bayesx.RequestParameter{{Name: "x", Min: bayesx.Number(math.NaN()), Max: 1}},
	})
	assert.Contains(t, resp.Error, "invalid parameter range")
}

func TestHandlerProcess(t *testing.T) {
	svc := New(testConfig(), quietLogger())

	body, err := json.Marshal(singleParamRequest())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, bayesx.EndpointPath, bytes.NewReader(body))
	rec := httptest.NewRecorder()

	svc.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out, "next_values")
	assert.Contains(t, out, "plot_data")
	assert.JSONEq(t, `"`+messageSuggested+`"`, string(out["message"]))
}

func TestHandlerNullValues(t *testing.T) {
	svc := New(testConfig(), quietLogger())

	body := `{"parameters":[{"name":"temp","min":0,"max":100}],"metrics":[{"name":"yield"}],
		"experiments":[{"id":1,"values":{"temp":50,"yield":null}}]}`

	rec := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, bayesx.EndpointPath, strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		PlotData bayesx.PosteriorSummary `json:"plot_data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Empty(t, out.PlotData.ObservedX)
}

func TestHandlerRejectsBadRequests(t *testing.T) {
	svc := New(testConfig(), quietLogger())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"wrong method", http.MethodGet, bayesx.EndpointPath, "", http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, bayesx.EndpointPath, "{", http.StatusBadRequest},
		{"healthz post", http.MethodPost, "/healthz", "", http.StatusMethodNotAllowed},
		{"unknown path", http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			svc.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHealthz(t *testing.T) {
	svc := New(testConfig(), quietLogger())

	rec := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestCORS(t *testing.T) {
	svc := New(testConfig(), quietLogger())

	req := httptest.NewRequest(http.MethodOptions, bayesx.EndpointPath, nil)
	req.Header.Set("Origin", "http://localhost:3000")

	rec := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, bayesx.EndpointPath, nil)
	req.Header.Set("Origin", "http://evil.example")

	rec = httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1

	svc := New(cfg, quietLogger())
	handler := svc.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSessionAgainstService(t *testing.T) {
	srv := httptest.NewServer(New(testConfig(), quietLogger()).Handler())
	defer srv.Close()

	session := bayesx.NewSession(
		bayesx.NewClient(srv.URL, bayesx.WithClientLogger(quietLogger())),
		bayesx.WithMetricName("yield"),
		bayesx.WithLogger(quietLogger()),
	)

	rows := session.EditParameterName(1, "temp")
	session.EditParameterMin(rows[0].ID, 0)
	session.EditParameterMax(rows[0].ID, 100)

	exp := session.AddExperiment()
	session.EditExperiment(exp.ID, "temp", "50")
	session.EditExperiment(exp.ID, "yield", "0.8")

	outcome, err := session.RequestNextExperiment(context.Background())
	require.NoError(t, err)

	assert.True(t, outcome.Updated)
	assert.Equal(t, bayesx.ResponseBoth, outcome.Kind)
	require.NotNil(t, outcome.Suggested)
	assert.Equal(t, 2, outcome.Suggested.ID)

	snap := session.Snapshot()
	require.Len(t, snap.Experiments, 2)
	assert.Equal(t, 2, snap.Experiments[0].ID)
	assert.NotEmpty(t, snap.Experiments[0].Values["temp"])
	assert.Empty(t, snap.Experiments[0].Values["yield"])

	require.NotNil(t, snap.Plot)
	assert.Len(t, snap.Plot.MeanCurve, 1000)
	assert.Len(t, snap.Plot.ConfidenceBand, 2000)
	assert.Equal(t, []bayesx.Point{{X: 50, Y: 0.8}}, snap.Plot.ObservedPoints)

	// The pending suggestion has no metric yet, so the service does not
	// register it and the second round still sees one observation.
	_, err = session.RequestNextExperiment(context.Background())
	require.NoError(t, err)

	snap = session.Snapshot()
	assert.Len(t, snap.Experiments, 3)
	assert.Len(t, snap.Plot.ObservedPoints, 1)
}

func TestSessionAgainstServiceMultipleParameters(t *testing.T) {
	srv := httptest.NewServer(New(testConfig(), quietLogger()).Handler())
	defer srv.Close()

	session := bayesx.NewSession(bayesx.NewClient(srv.URL), bayesx.WithLogger(quietLogger()))

	rows := session.EditParameterName(1, "a")
	rows = session.EditParameterMax(rows[0].ID, 1)
	rows = session.EditParameterName(rows[1].ID, "b")
	session.EditParameterMax(rows[1].ID, 1)

	outcome, err := session.RequestNextExperiment(context.Background())
	require.NoError(t, err)

	// The empty plot_data object counts as absent.
	assert.Equal(t, bayesx.ResponseNextOnly, outcome.Kind)
	assert.Nil(t, session.Snapshot().Plot)
	assert.Len(t, outcome.Suggested.Values, 2)
}
