package commands

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/thalesfsp/bayesx"
)

// writeParameters prints the parameter ledger, placeholder row included.
func writeParameters(w io.Writer, rows []bayesx.ParameterDefinition) {
	fmt.Fprintf(w, "Parameters:\n\n")
	fmt.Fprintf(w, "%-5s %-20s %-12s %-12s\n", "ID", "NAME", "MIN", "MAX")
	fmt.Fprintf(w, "%-5s %-20s %-12s %-12s\n", "-----", "--------------------", "------------", "------------")

	for i, row := range rows {
		name := row.Name
		if i == len(rows)-1 && name == "" {
			name = "(new)"
		}

		fmt.Fprintf(w, "%-5d %-20s %-12s %-12s\n", row.ID, truncate(name, 20), formatFloat(row.Min), formatFloat(row.Max))
	}
}

// writeExperiments prints one column per active parameter and one for the
// metric, newest experiment first.
func writeExperiments(w io.Writer, snap bayesx.Snapshot) {
	columns := make([]string, 0, len(snap.ActiveParameters)+1)
	for _, p := range snap.ActiveParameters {
		columns = append(columns, p.Name)
	}

	columns = append(columns, snap.MetricName)

	fmt.Fprintf(w, "Experiments (metric %q):\n\n", snap.MetricName)

	if len(snap.Experiments) == 0 {
		fmt.Fprintf(w, "No experiments yet. Use \"add\" or \"next\".\n")

		return
	}

	header := fmt.Sprintf("%-5s", "ID")
	rule := fmt.Sprintf("%-5s", "-----")

	for _, c := range columns {
		header += fmt.Sprintf(" %-12s", truncate(c, 12))
		rule += " " + strings.Repeat("-", 12)
	}

	fmt.Fprintln(w, header)
	fmt.Fprintln(w, rule)

	for _, record := range snap.Experiments {
		line := fmt.Sprintf("%-5d", record.ID)

		for _, c := range columns {
			v := record.Values[c]
			if v == "" {
				v = "-"
			}

			line += fmt.Sprintf(" %-12s", truncate(v, 12))
		}

		fmt.Fprintln(w, line)
	}

	countMsg := "experiment"
	if len(snap.Experiments) != 1 {
		countMsg = "experiments"
	}

	fmt.Fprintf(w, "\n%d %s\n", len(snap.Experiments), countMsg)
}

// writePlot prints evenly spaced rows of the mean curve with the band
// around them, then the observed points.
func writePlot(w io.Writer, series bayesx.PlotSeries) {
	n := len(series.MeanCurve)

	fmt.Fprintf(w, "Posterior (%d grid points):\n\n", n)
	fmt.Fprintf(w, "%-12s %-12s %-12s %-12s\n", "X", "MEAN", "LOWER", "UPPER")
	fmt.Fprintf(w, "%-12s %-12s %-12s %-12s\n", "------------", "------------", "------------", "------------")

	for _, i := range sampleIndexes(n, plotRows) {
		mean := series.MeanCurve[i]
		upper := series.ConfidenceBand[i]
		lower := series.ConfidenceBand[2*n-1-i]

		fmt.Fprintf(w, "%-12s %-12s %-12s %-12s\n",
			formatFloat(mean.X), formatFloat(mean.Y), formatFloat(lower.Y), formatFloat(upper.Y))
	}

	if n > 0 {
		best := series.MeanCurve[0]
		for _, p := range series.MeanCurve[1:] {
			if p.Y > best.Y {
				best = p
			}
		}

		fmt.Fprintf(w, "\nHighest mean %s at x = %s\n", formatFloat(best.Y), formatFloat(best.X))
	}

	fmt.Fprintf(w, "\nObserved points:\n")

	if len(series.ObservedPoints) == 0 {
		fmt.Fprintf(w, "  none\n")

		return
	}

	for _, p := range series.ObservedPoints {
		fmt.Fprintf(w, "  (%s, %s)\n", formatFloat(p.X), formatFloat(p.Y))
	}
}

// sampleIndexes picks up to k evenly spaced indexes of n, always including
// the first and the last.
func sampleIndexes(n, k int) []int {
	if n <= k {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}

		return out
	}

	out := make([]int, k)
	for i := range out {
		out[i] = i * (n - 1) / (k - 1)
	}

	return out
}

// formatValues renders a record's values as key=value pairs in key order.
func formatValues(record bayesx.ExperimentRecord) string {
	keys := make([]string, 0, len(record.Values))
	for k := range record.Values {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + record.Values[k]
	}

	return strings.Join(pairs, ", ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}

	return s[:width-3] + "..."
}
