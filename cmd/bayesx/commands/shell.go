package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/thalesfsp/bayesx"
	"github.com/thalesfsp/bayesx/internal/config"
	"github.com/thalesfsp/bayesx/internal/printer"
)

// plotRows is how many grid rows "plot" prints.
const plotRows = 11

const shellHelp = `Commands:
  param <id> name <text>   Rename a parameter row (empty text clears it)
  param <id> min <number>  Set a parameter's lower bound
  param <id> max <number>  Set a parameter's upper bound
  metric <name>            Rename the metric
  add                      Add a blank experiment
  set <id> <field> <text>  Set one field of one experiment
  next                     Ask the service for the next experiment
  show                     Print parameters and experiments
  plot [json]              Print the posterior
  help                     Print this help
  quit                     Leave the session
`

// shell is the line-oriented renderer of a session. Every command maps to
// one session operation followed by a redraw of what it changed.
type shell struct {
	session *bayesx.Session
	p       *printer.Printer
}

func newShell(session *bayesx.Session, p *printer.Printer) *shell {
	return &shell{session: session, p: p}
}

// run reads commands from in until quit, end of input or ctx is done.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(in)

		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		scanErr <- scanner.Err()
		close(lines)
	}()

	s.prompt()

	for {
		select {
		case <-ctx.Done():
			s.p.Info("\n")

			return nil
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}

			if s.execute(ctx, line) {
				return nil
			}

			s.prompt()
		}
	}
}

func (s *shell) prompt() {
	s.p.Info("bayesx> ")
}

// execute runs one command line and reports whether the shell should exit.
func (s *shell) execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch cmd, args := strings.ToLower(fields[0]), fields[1:]; cmd {
	case "quit", "exit":
		return true
	case "help", "?":
		s.p.Info(shellHelp)
	case "param":
		s.param(args)
	case "metric":
		if len(args) == 0 {
			s.p.Warning("usage: metric <name>\n")

			return false
		}

		name := s.session.SetMetricName(strings.Join(args, " "))
		s.p.Success("Metric is now %q\n", name)
	case "add":
		record := s.session.AddExperiment()
		s.p.Success("Added experiment #%d\n", record.ID)
	case "set":
		s.set(args)
	case "next":
		s.next(ctx)
	case "show":
		s.show()
	case "plot":
		s.plot(len(args) > 0 && strings.EqualFold(args[0], "json"))
	default:
		s.p.Warning("unknown command %q, type \"help\" for the list\n", cmd)
	}

	return false
}

//////
// Commands.
//////

func (s *shell) param(args []string) {
	if len(args) < 2 {
		s.p.Warning("usage: param <id> name|min|max <value>\n")

		return
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		s.p.Warning("parameter id must be a number, got %q\n", args[0])

		return
	}

	field, rest := strings.ToLower(args[1]), args[2:]

	var rows []bayesx.ParameterDefinition

	switch field {
	case "name":
		rows = s.session.EditParameterName(id, strings.Join(rest, " "))
	case "min", "max":
		if len(rest) != 1 {
			s.p.Warning("usage: param <id> %s <number>\n", field)

			return
		}

		v, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			s.p.Warning("%s must be a number, got %q\n", field, rest[0])

			return
		}

		if field == "min" {
			rows = s.session.EditParameterMin(id, v)
		} else {
			rows = s.session.EditParameterMax(id, v)
		}
	default:
		s.p.Warning("unknown parameter field %q, want name, min or max\n", field)

		return
	}

	writeParameters(s.p.Out(), rows)
}

func (s *shell) set(args []string) {
	if len(args) < 2 {
		s.p.Warning("usage: set <id> <field> <text>\n")

		return
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		s.p.Warning("experiment id must be a number, got %q\n", args[0])

		return
	}

	s.session.EditExperiment(id, args[1], strings.Join(args[2:], " "))

	snap := s.session.Snapshot()
	writeExperiments(s.p.Out(), snap)
}

func (s *shell) next(ctx context.Context) {
	if s.session.Busy() {
		s.p.Warning("a request is already in flight\n")

		return
	}

	s.p.Step("Requesting the next experiment...\n")

	outcome, err := s.session.RequestNextExperiment(ctx)
	if err != nil {
		if errors.Is(err, bayesx.ErrBusy) {
			s.p.Warning("a request is already in flight\n")

			return
		}

		s.p.Warning("No update: %v\n", err)

		return
	}

	if outcome.Suggested != nil {
		s.p.Success("Suggested experiment #%d: %s\n", outcome.Suggested.ID, formatValues(*outcome.Suggested))
	}

	if outcome.PlotReplaced {
		s.p.Success("Posterior updated, type \"plot\" to see it\n")
	}

	if !outcome.Updated {
		s.p.Info("The service accepted the data without a new suggestion\n")
	}
}

func (s *shell) show() {
	snap := s.session.Snapshot()

	writeParameters(s.p.Out(), snap.Parameters)
	s.p.Info("\n")
	writeExperiments(s.p.Out(), snap)
}

func (s *shell) plot(asJSON bool) {
	snap := s.session.Snapshot()
	if snap.Plot == nil {
		s.p.Info("No posterior yet. Run \"next\" with one parameter defined.\n")

		return
	}

	if asJSON {
		data, err := json.MarshalIndent(snap.Plot, "", "  ")
		if err != nil {
			s.p.Warning("encode plot: %v\n", err)

			return
		}

		s.p.Info("%s\n", data)

		return
	}

	writePlot(s.p.Out(), *snap.Plot)
}

//////
// Seed.
//////

// applySeed replays a seed file through the session's ledger operations.
// Experiments are listed oldest first, so the first one gets id 1.
func applySeed(session *bayesx.Session, seed *config.Seed) {
	if seed.Metric != "" {
		session.SetMetricName(seed.Metric)
	}

	for _, p := range seed.Parameters {
		rows := session.Snapshot().Parameters
		id := rows[len(rows)-1].ID

		session.EditParameterName(id, p.Name)
		session.EditParameterMin(id, p.Min)
		session.EditParameterMax(id, p.Max)
	}

	for _, e := range seed.Experiments {
		record := session.AddExperiment()

		for key, value := range e.Strings() {
			session.EditExperiment(record.ID, key, value)
		}
	}
}
