// Package bayesx is the client-side session model of an interactive Bayesian
// optimization workflow. A user defines tunable parameters and one metric,
// records experiment outcomes, and repeatedly asks a remote optimization
// service for the next point to try. The service's posterior (Gaussian
// process mean and uncertainty) comes back alongside the suggestion and is
// turned into chart series here.
//
// # Components
//
//   - ParameterLedger: ordered parameter definitions that always end in one
//     placeholder row
//   - ExperimentLedger: experiments as raw text, newest first
//   - Client: builds the request, posts it and parses the reply
//   - Session: owns both ledgers and the plot, and runs the one
//     orchestrated action, RequestNextExperiment
//   - ToPlotSeries: posterior summary to mean curve, confidence band and
//     observed points
//
// # Usage
//
//	client := bayesx.NewClient("http://localhost:8000", bayesx.WithTimeout(30*time.Second))
//	session := bayesx.NewSession(client, bayesx.WithMetricName("yield"))
//
//	rows := session.EditParameterName(1, "temp")
//	session.EditParameterMin(rows[0].ID, 0)
//	session.EditParameterMax(rows[0].ID, 100)
//
//	outcome, err := session.RequestNextExperiment(ctx)
//	if err != nil {
//	    // Nothing changed. Show "no update" and carry on.
//	}
//
//	snap := session.Snapshot()
//	// snap.Experiments[0] is the suggestion when outcome.Suggested != nil.
//
// # Input permissiveness
//
// Nothing typed into a ledger is rejected. Values stay raw text until a
// request is built, where anything that does not parse as a number becomes
// NaN (sent as JSON null). The service is the arbiter of validity.
//
// # State
//
// All state lives in memory for the lifetime of a Session. Sessions share
// nothing with each other.
package bayesx
