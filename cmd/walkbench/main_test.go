package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/weiihann/walkbench/results"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	root := newRootCmd(logger, new(slog.LevelVar))

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()

	return stdout.String(), err
}

func TestTestCommandTable(t *testing.T) {
	out, err := execute(t, "test",
		"--total-size", "64KiB",
		"--max-step-size", "1KiB",
		"--iterations", "1000",
		"--seed", "1",
		"--no-progress",
	)
	if err != nil {
		t.Fatalf("test command failed: %v", err)
	}

	if !strings.Contains(out, "## Benchmark Results") {
		t.Errorf("expected report header in output:\n%s", out)
	}
	if !strings.Contains(out, "| 1 KB |") {
		t.Errorf("expected 1 KB step bound row in output:\n%s", out)
	}
}

func TestTestCommandWritesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv.gz")

	_, err := execute(t, "test",
		"--total-size", "4KiB",
		"--iterations", "500",
		"--seed", "7",
		"--out", path,
		"--no-progress",
	)
	if err != nil {
		t.Fatalf("test command failed: %v", err)
	}

	series, err := results.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	// 1, 2, 4, ..., 4096
	if len(series) != 13 {
		t.Fatalf("trials = %d, want 13", len(series))
	}
	for _, tr := range series {
		if tr.Iterations != 500 {
			t.Errorf("step %d: iterations = %d, want 500",
				tr.StepBound, tr.Iterations)
		}
	}
}

func TestTestCommandJSONDeterministic(t *testing.T) {
	args := []string{"test",
		"--total-size", "8KiB",
		"--iterations", "200",
		"--seed", "42",
		"--json",
		"--no-progress",
	}

	checksums := func(out string) []int {
		var parsed []struct {
			StepBound uint64 `json:"step_bound"`
			Checksum  int    `json:"checksum"`
		}
		if err := json.Unmarshal([]byte(out), &parsed); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}

		sums := make([]int, len(parsed))
		for i, p := range parsed {
			sums[i] = p.Checksum
		}

		return sums
	}

	out1, err := execute(t, args...)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	out2, err := execute(t, args...)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	a, b := checksums(out1), checksums(out2)
	if len(a) != 14 {
		t.Fatalf("trials = %d, want 14", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("trial %d: checksum %d vs %d", i, a[i], b[i])
		}
	}
}

func TestTestCommandInvalidConfig(t *testing.T) {
	_, err := execute(t, "test",
		"--total-size", "1KiB",
		"--initial-step-size", "4KiB",
		"--no-progress",
	)
	if err == nil {
		t.Error("expected error when initial step exceeds total size")
	}
}

func TestTestCommandBadSize(t *testing.T) {
	if _, err := execute(t, "test", "--total-size", "lots"); err == nil {
		t.Error("expected error for unparsable size")
	}
}

func TestPlotCommand(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data.csv")
	img := filepath.Join(dir, "plot.svg")

	if _, err := execute(t, "test",
		"--total-size", "4KiB",
		"--iterations", "100",
		"--seed", "3",
		"--out", data,
		"--no-progress",
	); err != nil {
		t.Fatalf("test command failed: %v", err)
	}

	if _, err := execute(t, "plot", data, "--out", img, "--metric", "latency",
		"--width", "300", "--height", "200"); err != nil {
		t.Fatalf("plot command failed: %v", err)
	}

	raw, err := os.ReadFile(img)
	if err != nil {
		t.Fatalf("read plot: %v", err)
	}
	if !bytes.Contains(raw, []byte("<svg")) {
		t.Error("plot output is not SVG")
	}
}

func TestPlotCommandErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := execute(t, "plot"); err == nil {
		t.Error("expected error without a file argument")
	}

	if _, err := execute(t, "plot", filepath.Join(dir, "missing.csv"),
		"--out", filepath.Join(dir, "p.png")); err == nil {
		t.Error("expected error for missing input")
	}

	if _, err := execute(t, "plot", "x.csv", "--metric", "bogus"); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestByteSize(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"4096", 4096},
		{"64KiB", 64 << 10},
		{"1GiB", 1 << 30},
		{"1 MiB", 1 << 20},
	}

	for _, tt := range tests {
		var b byteSize
		if err := b.Set(tt.in); err != nil {
			t.Fatalf("Set(%q) failed: %v", tt.in, err)
		}
		if uint64(b) != tt.want {
			t.Errorf("Set(%q) = %d, want %d", tt.in, b, tt.want)
		}
	}

	var b byteSize
	if err := b.Set("many"); err == nil {
		t.Error("expected error for invalid size")
	}
}
