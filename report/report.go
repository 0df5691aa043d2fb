// Package report formats benchmark series into comparison tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/weiihann/walkbench/bench"
)

// Generate writes a markdown table for the given series. Slowdown is
// each trial's time per access relative to the fastest trial.
func Generate(w io.Writer, series bench.Series) error {
	if len(series) == 0 {
		return fmt.Errorf("no results to report")
	}

	fastest := findFastest(series)

	// Header.
	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Iterations per step: %d\n", series[0].Iterations)
	fmt.Fprintln(w)

	// Table header.
	fmt.Fprintln(w, "| Step Bound | Elapsed | ns/access | Steps/sec "+
		"| Slowdown | Checksum |")
	fmt.Fprintln(w, "|------------|---------|-----------|-----------"+
		"|----------|----------|")

	for _, t := range series {
		slowdown := 1.0
		if fastest > 0 && t.NanosPerAccess() > 0 {
			slowdown = t.NanosPerAccess() / fastest
		}

		fmt.Fprintf(w, "| %s | %s | %.2f | %s | %.2fx | %d |\n",
			formatBytes(t.StepBound),
			formatDuration(t.Elapsed),
			t.NanosPerAccess(),
			formatRate(t.StepsPerSecond()),
			slowdown,
			t.Checksum,
		)
	}

	return nil
}

// GenerateJSON writes the series as JSON to w.
func GenerateJSON(w io.Writer, series bench.Series) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(series)
}

func findFastest(series bench.Series) float64 {
	fastest := math.Inf(1)
	for _, t := range series {
		if ns := t.NanosPerAccess(); ns > 0 && ns < fastest {
			fastest = ns
		}
	}

	if math.IsInf(fastest, 1) {
		return 0
	}

	return fastest
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	return fmt.Sprintf("%.2fs", d.Seconds())
}

func formatRate(perSec float64) string {
	switch {
	case perSec >= 1e9:
		return fmt.Sprintf("%.2fG", perSec/1e9)
	case perSec >= 1e6:
		return fmt.Sprintf("%.2fM", perSec/1e6)
	case perSec >= 1e3:
		return fmt.Sprintf("%.2fK", perSec/1e3)
	default:
		return fmt.Sprintf("%.2f", perSec)
	}
}

// formatBytes renders a step bound in binary units, since a bound is a
// distance in bytes.
func formatBytes(b uint64) string {
	if b == 0 {
		return "-"
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(b)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	formatted := fmt.Sprintf("%.1f", size)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + " " + units[unit]
}
