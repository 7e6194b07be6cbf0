package bayesx

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

//////
// Const, vars, types.
//////

// DefaultMetricName is the metric name a new session starts with.
const DefaultMetricName = "Metric"

// Outcome describes what one RequestNextExperiment call did to the session.
//
// Fields:
// - Updated: Whether any state changed
// - Kind: Which parts the service reply carried
// - Suggested: The record added from the reply, if any
// - PlotReplaced: Whether the posterior plot was replaced
// - Message: Free text the service sent along
// - Err: Why nothing changed, if something failed
// - At: When the call finished
type Outcome struct {
	Updated      bool
	Kind         ResponseKind
	Suggested    *ExperimentRecord
	PlotReplaced bool
	Message      string
	Err          error
	At           time.Time
}

// Snapshot is a consistent point-in-time copy of a session, what a renderer
// draws from.
type Snapshot struct {
	ID               string
	Parameters       []ParameterDefinition
	ActiveParameters []ParameterDefinition
	MetricName       string
	Experiments      []ExperimentRecord
	Posterior        *PosteriorSummary
	Plot             *PlotSeries
	Busy             bool
	LastOutcome      Outcome
}

// Session is the experiment session controller. It owns the parameter and
// experiment ledgers, the metric name and the current posterior plot, and
// wires them to an Optimizer.
//
// Thread safety:
// - Every ledger access happens under one mutex
// - The mutex is not held during the network round trip, so edits keep
// flowing while a request is pending
// - Only one RequestNextExperiment may be in flight; others get ErrBusy
type Session struct {
	mu sync.Mutex

	id          string
	parameters  *ParameterLedger
	experiments *ExperimentLedger
	metricName  string
	posterior   *PosteriorSummary
	plot        *PlotSeries
	busy        bool
	last        Outcome

	optimizer Optimizer
	logger    *slog.Logger
	now       func() time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger. Nil means slog.Default().
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithMetricName overrides DefaultMetricName.
func WithMetricName(name string) SessionOption {
	return func(s *Session) {
		s.metricName = name
	}
}

//////
// Ledger edits.
//////

// EditParameterName renames a parameter row.
func (s *Session) EditParameterName(id int, name string) []ParameterDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.parameters.EditName(id, name)
}

// EditParameterMin sets a parameter's lower bound.
func (s *Session) EditParameterMin(id int, min float64) []ParameterDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.parameters.EditMin(id, min)
}

// EditParameterMax sets a parameter's upper bound.
func (s *Session) EditParameterMax(id int, max float64) []ParameterDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.parameters.EditMax(id, max)
}

// SetMetricName renames the objective. Existing experiment values keyed by
// the old name are kept as they are.
func (s *Session) SetMetricName(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metricName = name

	return s.metricName
}

// EditExperiment sets one field of one experiment. Unknown ids are ignored.
func (s *Session) EditExperiment(id int, key, raw string) []ExperimentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.experiments.EditField(id, key, raw)
}

// AddExperiment adds a blank experiment for manual entry.
func (s *Session) AddExperiment() ExperimentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.experiments.AddBlank()
}

//////
// Orchestration.
//////

// RequestNextExperiment sends the session's data to the optimizer and folds
// the reply back in:
//  1. parameters, metric and experiments are read in one locked snapshot
//  2. the optimizer is called without holding the lock
//  3. a posterior in the reply replaces the current plot wholesale; a
//     suggested point becomes a new experiment at the head of the ledger
//
// On failure nothing changes and the error is returned along with an
// Outcome carrying it. A call made while another is pending is rejected
// with ErrBusy without reaching the optimizer.
func (s *Session) RequestNextExperiment(ctx context.Context) (Outcome, error) {
	s.mu.Lock()

	if s.busy {
		s.mu.Unlock()
		s.log().Debug("request rejected, another is in flight")

		return Outcome{Err: ErrBusy, At: s.now()}, ErrBusy
	}

	s.busy = true
	parameters := s.parameters.Rows()
	experiments := s.experiments.Records()
	metricName := s.metricName

	s.mu.Unlock()

	resp, err := s.optimizer.RequestNext(ctx, parameters, metricName, experiments)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.busy = false

	if err != nil {
		s.log().Warn("optimization request failed, nothing updated", "error", err)

		s.last = Outcome{Err: err, At: s.now()}

		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			s.last.Message = svcErr.Message
		}

		return s.last, err
	}

	outcome := Outcome{Kind: resp.Kind(), Message: resp.Message, At: s.now()}

	if resp.PlotData != nil {
		series := ToPlotSeries(*resp.PlotData)

		s.posterior = resp.PlotData
		s.plot = &series
		outcome.PlotReplaced = true
		outcome.Updated = true
	}

	if resp.NextValues != nil {
		record := s.experiments.PrependSuggested(resp.NextValues)

		outcome.Suggested = &record
		outcome.Updated = true
	}

	s.last = outcome

	s.log().Info("optimization response applied",
		"kind", outcome.Kind.String(),
		"plot_replaced", outcome.PlotReplaced,
		"experiments", s.experiments.Len(),
	)

	return outcome, nil
}

// Busy reports whether a request is in flight. Renderers disable the
// trigger control while it is true.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.busy
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns a copy of the whole session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:               s.id,
		Parameters:       s.parameters.Rows(),
		ActiveParameters: s.parameters.ActiveParameters(),
		MetricName:       s.metricName,
		Experiments:      s.experiments.Records(),
		Busy:             s.busy,
		LastOutcome:      s.last,
	}

	// Posterior and plot are replaced, never mutated, so sharing is safe.
	snap.Posterior = s.posterior
	snap.Plot = s.plot

	return snap
}

func (s *Session) log() *slog.Logger {
	logger := s.logger
	if logger == nil {
		logger = slog.Default()
	}

	return logger.With("session_id", s.id)
}

//////
// Factory.
//////

// NewSession starts a session with one placeholder parameter row, no
// experiments and no plot.
func NewSession(optimizer Optimizer, opts ...SessionOption) *Session {
	s := &Session{
		id:          uuid.New().String(),
		parameters:  NewParameterLedger(),
		experiments: NewExperimentLedger(),
		metricName:  DefaultMetricName,
		optimizer:   optimizer,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}
