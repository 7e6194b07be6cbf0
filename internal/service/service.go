// Package service is the reference optimization service: it accepts a
// session's parameters, metric and experiments, fits the optimizer and
// answers with the next point to try and, for one parameter, the posterior
// to plot.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/thalesfsp/bayesx"
	"github.com/thalesfsp/bayesx/internal/config"
	"github.com/thalesfsp/bayesx/optimizer"
)

const (
	// maxRequestBytes bounds a request body.
	maxRequestBytes = 10 << 20

	messageSuggested = "Next parameter values suggested"
	messageFailed    = "Error during optimization"
)

// Response is the body of a processed request. PlotData is either a
// bayesx.PosteriorSummary or an empty object when there is nothing to plot.
type Response struct {
	Message    string             `json:"message"`
	Error      string             `json:"error,omitempty"`
	NextValues map[string]float64 `json:"next_values,omitempty"`
	PlotData   any                `json:"plot_data,omitempty"`
}

// Service handles optimization requests.
type Service struct {
	cfg     config.ServiceConfig
	opt     optimizer.Config
	limiter *rate.Limiter
	logger  *slog.Logger
	mux     *http.ServeMux
}

// New builds a Service. cfg is expected to be validated.
func New(cfg config.ServiceConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	opt := optimizer.DefaultConfig()
	opt.AcqParams.Beta = cfg.Kappa
	opt.AcqParams.Xi = cfg.Xi
	opt.Alpha = cfg.Alpha
	opt.KernelWidth = cfg.KernelWidth
	opt.GridPoints = cfg.GridPoints
	opt.NumCandidates = cfg.Candidates
	opt.Seed = cfg.RandomSeed

	if fn, ok := optimizer.AcquisitionByName(strings.ToLower(cfg.Acquisition)); ok {
		opt.AcquisitionFunc = fn
	}

	s := &Service{
		cfg:    cfg,
		opt:    opt,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc(bayesx.EndpointPath, s.handleProcess)

	return s
}

// Handler returns the HTTP handler with CORS, rate limiting and access
// logging applied.
func (s *Service) Handler() http.Handler {
	return s.withLogging(s.withCORS(s.withRateLimit(s.mux)))
}

// Process runs one optimization over a decoded request. A failure to
// optimise is reported in the Response, not as an error, the same way the
// service reports it over the wire.
func (s *Service) Process(req bayesx.OptimizationRequest) Response {
	ranges := boundsOf(req.Parameters)

	var metric string
	if len(req.Metrics) > 0 {
		metric = req.Metrics[0].Name
	}

	observations := make([]optimizer.Observation, 0, len(req.Experiments))

	for _, exp := range req.Experiments {
		if len(exp.Values) == 0 {
			continue
		}

		obs, ok := observationOf(exp, ranges, metric)
		if !ok {
			s.logger.Debug("skipping experiment without a complete measurement", "experiment_id", exp.ID)

			continue
		}

		observations = append(observations, obs)
	}

	result, err := optimizer.Suggest(s.opt, ranges, observations)
	if err != nil {
		return Response{Message: messageFailed, Error: err.Error()}
	}

	resp := Response{
		Message:    messageSuggested,
		NextValues: make(map[string]float64, len(ranges)),
		PlotData:   struct{}{},
	}

	for i, r := range ranges {
		resp.NextValues[r.Name] = result.Next[i]
	}

	if p := result.Posterior; p != nil {
		resp.PlotData = bayesx.PosteriorSummary{
			X:         p.X,
			YPred:     p.Mean,
			Sigma:     p.Sigma,
			ObservedX: p.ObservedX,
			ObservedY: p.ObservedY,
		}
	}

	s.logger.Info("optimization processed",
		"parameters", len(ranges),
		"experiments", len(req.Experiments),
		"registered", len(observations),
	)

	return resp
}

//////
// Handlers.
//////

func (s *Service) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Service) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")

		return
	}

	var req bayesx.OptimizationRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))

		return
	}

	resp := s.Process(req)
	if resp.Error != "" {
		s.logger.Warn("optimization failed", "error", resp.Error)
	}

	writeJSON(w, http.StatusOK, resp)
}

//////
// Middleware.
//////

func (s *Service) withRateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeDetail(w, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && (s.cfg.AllowedOrigin == "*" || origin == s.cfg.AllowedOrigin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+bayesx.RequestIDHeader)
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", r.Header.Get(bayesx.RequestIDHeader),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

//////
// Helpers.
//////

// boundsOf turns request parameters into ranges. A repeated name keeps its
// first position and its last bounds.
func boundsOf(params []bayesx.RequestParameter) []optimizer.ParameterRange[float64] {
	index := make(map[string]int, len(params))
	ranges := make([]optimizer.ParameterRange[float64], 0, len(params))

	for _, p := range params {
		r := optimizer.ParameterRange[float64]{Name: p.Name, Min: float64(p.Min), Max: float64(p.Max)}

		if i, ok := index[p.Name]; ok {
			ranges[i] = r

			continue
		}

		index[p.Name] = len(ranges)
		ranges = append(ranges, r)
	}

	return ranges
}

// observationOf extracts the parameter values and metric of one experiment.
// ok is false when a parameter or the metric is missing or not a number.
func observationOf(
	exp bayesx.RequestExperiment,
	ranges []optimizer.ParameterRange[float64],
	metric string,
) (optimizer.Observation, bool) {
	params := make([]float64, len(ranges))

	for i, r := range ranges {
		v, ok := exp.Values[r.Name]
		if !ok || !isFinite(float64(v)) {
			return optimizer.Observation{}, false
		}

		params[i] = float64(v)
	}

	target, ok := exp.Values[metric]
	if !ok || !isFinite(float64(target)) {
		return optimizer.Observation{}, false
	}

	return optimizer.Observation{Params: params, Target: float64(target)}, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeDetail writes an error body in the {"detail": ...} shape.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

//////
// Server.
//////

// Serve runs handler on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("optimization service listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logger.Info("shutting down optimization service")

		return srv.Shutdown(shutdownCtx)
	}
}
