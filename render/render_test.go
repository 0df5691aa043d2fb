package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/weiihann/walkbench/bench"
	"github.com/weiihann/walkbench/results"
)

func sampleSeries() bench.Series {
	var s bench.Series
	for b, d := uint64(1), 10*time.Millisecond; b <= 1<<20; b, d = b<<1, d+5*time.Millisecond {
		s = append(s, bench.Trial{StepBound: b, Iterations: 100_000, Elapsed: d})
	}

	return s
}

func TestPlotPNG(t *testing.T) {
	var buf bytes.Buffer

	opts := Options{Width: 320, Height: 240}
	if err := Plot(&buf, sampleSeries(), opts); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("output is not a PNG")
	}
}

func TestPlotSVGLatency(t *testing.T) {
	var buf bytes.Buffer

	opts := Options{Metric: MetricLatency, Format: "svg", Width: 320, Height: 240}
	if err := Plot(&buf, sampleSeries(), opts); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Error("output is not an SVG")
	}
	if !strings.Contains(out, "ns per access") {
		t.Error("expected latency axis label")
	}
}

func TestPlotEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Plot(&buf, nil, DefaultOptions()); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("err = %v, want ErrEmptySeries", err)
	}
}

func TestPlotUnknownMetric(t *testing.T) {
	var buf bytes.Buffer
	if err := Plot(&buf, sampleSeries(), Options{Metric: "bogus"}); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestPlotFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "data.csv.zst")
	out := filepath.Join(dir, "plot.png")

	if err := results.WriteFile(in, sampleSeries()); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := PlotFile(in, out, Options{Width: 200, Height: 200}); err != nil {
		t.Fatalf("PlotFile failed: %v", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat plot: %v", err)
	}
	if info.Size() == 0 {
		t.Error("plot file is empty")
	}
}

func TestPlotFileMissingInput(t *testing.T) {
	dir := t.TempDir()

	err := PlotFile(filepath.Join(dir, "nope.csv"), filepath.Join(dir, "plot.png"), Options{})

	var ioErr *results.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("err = %v, want IOError", err)
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]string{
		"plot.png": "png",
		"plot.SVG": "svg",
		"plot.pdf": "pdf",
		"plot":     "png",
		"plot.txt": "png",
	}

	for in, want := range tests {
		if got := formatFor(in); got != want {
			t.Errorf("formatFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBoundTicks(t *testing.T) {
	s := sampleSeries()
	ticks := boundTicks{series: s}.Ticks(1, 1<<20)

	if len(ticks) != len(s) {
		t.Fatalf("ticks = %d, want %d", len(ticks), len(s))
	}
	if ticks[0].Label != "1 B" {
		t.Errorf("first label = %q, want 1 B", ticks[0].Label)
	}
	if last := ticks[len(ticks)-1]; last.Label != "1 MiB" {
		t.Errorf("last label = %q, want 1 MiB", last.Label)
	}
}
