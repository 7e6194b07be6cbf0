package bayesx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

//////
// Const, vars, types.
//////

const (
	// EndpointPath is the service route that accepts experiment data.
	EndpointPath = "/process_experiments"

	// RequestIDHeader carries a per-request id that the client also logs.
	RequestIDHeader = "X-Request-ID"

	// maxResponseBytes bounds a response body. A 1000 point grid is ~100KB.
	maxResponseBytes = 32 << 20
)

// HTTPDoer is the part of *http.Client the protocol client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Optimizer is anything that can answer a request for the next experiment.
// *Client is the network implementation.
type Optimizer interface {
	RequestNext(
		ctx context.Context,
		parameters []ParameterDefinition,
		metricName string,
		experiments []ExperimentRecord,
	) (OptimizationResponse, error)
}

// Client talks to the remote optimization service. It holds no session
// state: every call is a pure request/response of its inputs.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	timeout    time.Duration
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithTimeout bounds every call. Zero disables the bound.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithClientLogger sets the logger. Nil means slog.Default().
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

//////
// Exported functionalities.
//////

// BuildRequest assembles the request body. Placeholder and unnamed
// parameter rows are dropped, as are experiments with no value at all. Every
// experiment value is parsed to a number; text that is blank or not numeric
// becomes NaN and is sent as null. No other validation happens here.
func BuildRequest(
	parameters []ParameterDefinition,
	metricName string,
	experiments []ExperimentRecord,
) OptimizationRequest {
	active := filterActive(parameters)

	req := OptimizationRequest{
		Parameters:  make([]RequestParameter, len(active)),
		Metrics:     []RequestMetric{{Name: metricName}},
		Experiments: []RequestExperiment{},
	}

	for i, p := range active {
		req.Parameters[i] = RequestParameter{Name: p.Name, Min: Number(p.Min), Max: Number(p.Max)}
	}

	for _, exp := range filterSubmittable(experiments) {
		values := make(map[string]Number, len(exp.Values))
		for k, v := range exp.Values {
			values[k] = Number(parseValue(v))
		}

		req.Experiments = append(req.Experiments, RequestExperiment{ID: exp.ID, Values: values})
	}

	return req
}

// RequestNext posts the current session data to the service and parses the
// reply. Either part of the reply may be absent.
//
// Errors:
// - ErrNoEndpoint: the client has no base address
// - *ServiceError: non-success status, or an error reported in the body
// - ErrMalformedResponse (wrapped): the body could not be parsed
// - anything the transport returns, wrapped
func (c *Client) RequestNext(
	ctx context.Context,
	parameters []ParameterDefinition,
	metricName string,
	experiments []ExperimentRecord,
) (OptimizationResponse, error) {
	if c.baseURL == "" {
		return OptimizationResponse{}, ErrNoEndpoint
	}

	body, err := json.Marshal(BuildRequest(parameters, metricName, experiments))
	if err != nil {
		return OptimizationResponse{}, fmt.Errorf("encode request: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	url := c.baseURL + EndpointPath
	requestID := uuid.New().String()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return OptimizationResponse{}, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	logger := c.log().With("request_id", requestID, "url", url)
	logger.Debug("sending experiment data", "bytes", len(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return OptimizationResponse{}, fmt.Errorf("post %s: %w", url, err)
	}

	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("closing response body", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return OptimizationResponse{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return OptimizationResponse{}, statusError(resp.StatusCode, raw)
	}

	out, err := parseResponse(resp.StatusCode, raw)
	if err != nil {
		return OptimizationResponse{}, err
	}

	logger.Debug("received optimization response", "kind", out.Kind().String(), "message", out.Message)

	return out, nil
}

func (c *Client) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}

	return slog.Default()
}

// parseResponse decodes a success body.
func parseResponse(status int, raw []byte) (OptimizationResponse, error) {
	var wire wireResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return OptimizationResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if wire.Error != "" {
		return OptimizationResponse{}, &ServiceError{StatusCode: status, Message: wire.Message, Detail: wire.Error}
	}

	out := OptimizationResponse{Message: wire.Message}

	if wire.NextValues != nil {
		out.NextValues = make(map[string]string, len(wire.NextValues))

		for k, v := range wire.NextValues {
			text, err := formatValue(v)
			if err != nil {
				return OptimizationResponse{}, fmt.Errorf("%w: next_values[%q]: %v", ErrMalformedResponse, k, err)
			}

			out.NextValues[k] = text
		}
	}

	// The service sends an empty plot_data object when it has nothing to
	// plot, e.g. for more than one parameter.
	if !wire.PlotData.IsEmpty() {
		if err := wire.PlotData.Validate(); err != nil {
			return OptimizationResponse{}, fmt.Errorf("%w: plot_data: %v", ErrMalformedResponse, err)
		}

		out.PlotData = wire.PlotData
	}

	return out, nil
}

// statusError builds a ServiceError from a non-success reply, picking up
// whatever explanation the body offers.
func statusError(status int, raw []byte) *ServiceError {
	svcErr := &ServiceError{StatusCode: status}

	var body struct {
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Detail  json.RawMessage `json:"detail"`
	}

	if err := json.Unmarshal(raw, &body); err != nil {
		svcErr.Detail = strings.TrimSpace(string(raw))

		return svcErr
	}

	svcErr.Message = body.Message
	svcErr.Detail = body.Error

	if svcErr.Detail == "" && len(body.Detail) > 0 {
		var s string
		if json.Unmarshal(body.Detail, &s) == nil {
			svcErr.Detail = s
		} else {
			svcErr.Detail = string(body.Detail)
		}
	}

	return svcErr
}

//////
// Factory.
//////

// NewClient returns a client for the service at baseURL, e.g.
// "http://localhost:8000". A trailing slash is ignored.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}

	return c
}
