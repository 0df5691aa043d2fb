// Package results persists benchmark series as CSV, optionally
// compressed.
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/weiihann/walkbench/bench"
)

// Column names. Renderers and other tools look columns up by name, so
// these are a compatibility surface.
const (
	ColStartTime      = "start_time"
	ColStepBound      = "step_bound"
	ColIterations     = "iteration_count"
	ColElapsedSeconds = "elapsed_time_seconds"
	ColStepsPerSecond = "steps_per_second"
	ColChecksum       = "checksum"
)

// Header is the column order Write produces.
var Header = []string{
	ColStartTime,
	ColStepBound,
	ColIterations,
	ColElapsedSeconds,
	ColStepsPerSecond,
	ColChecksum,
}

var requiredColumns = []string{ColStepBound, ColIterations, ColElapsedSeconds}

// ErrNoRecords is returned by Read for input without data rows.
var ErrNoRecords = errors.New("no records")

// Write encodes s as CSV with a header row.
func Write(w io.Writer, s bench.Series) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, t := range s {
		row := []string{
			strconv.FormatInt(t.StartTime.UnixMilli(), 10),
			strconv.FormatUint(t.StepBound, 10),
			strconv.FormatUint(t.Iterations, 10),
			strconv.FormatFloat(t.Elapsed.Seconds(), 'g', -1, 64),
			strconv.FormatFloat(t.StepsPerSecond(), 'f', 2, 64),
			strconv.FormatUint(uint64(t.Checksum), 10),
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write step bound %d: %w", t.StepBound, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Read decodes a series written by Write. Columns are matched by header
// name; start_time, steps_per_second and checksum may be absent.
func Read(r io.Reader) (bench.Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoRecords
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}

	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	cr.FieldsPerRecord = len(header)

	var series bench.Series

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		t, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		series = append(series, t)
	}

	if len(series) == 0 {
		return nil, ErrNoRecords
	}

	return series, nil
}

func parseRow(row []string, cols map[string]int) (bench.Trial, error) {
	var t bench.Trial

	bound, err := strconv.ParseUint(row[cols[ColStepBound]], 10, 64)
	if err != nil {
		return t, fmt.Errorf("parse %s: %w", ColStepBound, err)
	}

	iterations, err := strconv.ParseUint(row[cols[ColIterations]], 10, 64)
	if err != nil {
		return t, fmt.Errorf("parse %s: %w", ColIterations, err)
	}

	secs, err := strconv.ParseFloat(row[cols[ColElapsedSeconds]], 64)
	if err != nil {
		return t, fmt.Errorf("parse %s: %w", ColElapsedSeconds, err)
	}

	t.StepBound = bound
	t.Iterations = iterations
	t.Elapsed = time.Duration(secs * float64(time.Second))

	if i, ok := cols[ColStartTime]; ok {
		ms, err := strconv.ParseInt(row[i], 10, 64)
		if err != nil {
			return t, fmt.Errorf("parse %s: %w", ColStartTime, err)
		}
		t.StartTime = time.UnixMilli(ms)
	}

	if i, ok := cols[ColChecksum]; ok {
		sum, err := strconv.ParseUint(row[i], 10, 8)
		if err != nil {
			return t, fmt.Errorf("parse %s: %w", ColChecksum, err)
		}
		t.Checksum = uint8(sum)
	}

	return t, nil
}
