// Package render draws benchmark series as charts.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/weiihann/walkbench/bench"
	"github.com/weiihann/walkbench/results"
)

// Metric selects the Y axis.
type Metric string

const (
	// MetricThroughput plots steps per second.
	MetricThroughput Metric = "throughput"
	// MetricLatency plots nanoseconds per access.
	MetricLatency Metric = "latency"
)

// ErrEmptySeries is returned when there is nothing to plot.
var ErrEmptySeries = errors.New("no trials to plot")

// Options controls chart output. Width and Height are in pixels at the
// default 96 DPI.
type Options struct {
	Metric Metric
	Width  int
	Height int
	Title  string
	// Format is png, svg, pdf, jpg, tif or eps. PlotFile derives it from
	// the output extension when empty.
	Format string
}

// DefaultOptions returns a 1024x1024 throughput chart.
func DefaultOptions() Options {
	return Options{
		Metric: MetricThroughput,
		Width:  1024,
		Height: 1024,
		Title:  "Memory access rate by step bound",
		Format: "png",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()

	if o.Metric == "" {
		o.Metric = def.Metric
	}
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.Title == "" {
		o.Title = def.Title
	}
	if o.Format == "" {
		o.Format = def.Format
	}

	return o
}

// Plot writes a chart of s to w.
func Plot(w io.Writer, s bench.Series, opts Options) error {
	if len(s) == 0 {
		return ErrEmptySeries
	}

	opts = opts.withDefaults()

	p, err := newPlot(s, opts)
	if err != nil {
		return err
	}

	// vg.Inch is 72 points; pixel sizes assume 96 DPI.
	width := vg.Length(opts.Width) * vg.Inch / 96
	height := vg.Length(opts.Height) * vg.Inch / 96

	wt, err := p.WriterTo(width, height, opts.Format)
	if err != nil {
		return fmt.Errorf("prepare %s canvas: %w", opts.Format, err)
	}

	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}

	return nil
}

// PlotFile reads a results file from in and writes a chart to out.
func PlotFile(in, out string, opts Options) (err error) {
	s, err := results.ReadFile(in)
	if err != nil {
		return err
	}

	if opts.Format == "" {
		opts.Format = formatFor(out)
	}

	f, err := os.Create(out)
	if err != nil {
		return &results.IOError{Op: "create", Path: out, Err: err}
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &results.IOError{Op: "close", Path: out, Err: cerr}
		}
	}()

	return Plot(f, s, opts)
}

func formatFor(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "svg", "pdf", "eps", "jpg", "jpeg", "tif", "tiff", "png":
		return ext
	default:
		return "png"
	}
}

func newPlot(s bench.Series, opts Options) (*plot.Plot, error) {
	xys, err := points(s, opts.Metric)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Step bound"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = boundTicks{series: s}
	p.Y.Tick.LineStyle = draw.LineStyle{}
	p.Y.Min = 0

	switch opts.Metric {
	case MetricLatency:
		p.Y.Label.Text = "ns per access"
	default:
		p.Y.Label.Text = "Steps per second"
	}

	p.Add(plotter.NewGrid())

	line, scatter, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("build line: %w", err)
	}

	line.Color = color.RGBA{R: 220, A: 255}
	scatter.Color = line.Color
	scatter.Shape = draw.CircleGlyph{}

	p.Add(line, scatter)

	return p, nil
}

func points(s bench.Series, m Metric) (plotter.XYs, error) {
	xys := make(plotter.XYs, 0, len(s))

	for _, t := range s {
		if t.StepBound == 0 {
			return nil, fmt.Errorf("step bound 0 cannot be drawn on a log axis")
		}

		var y float64

		switch m {
		case MetricThroughput:
			y = t.StepsPerSecond()
		case MetricLatency:
			y = t.NanosPerAccess()
		default:
			return nil, fmt.Errorf("unknown metric %q", m)
		}

		xys = append(xys, plotter.XY{X: float64(t.StepBound), Y: y})
	}

	return xys, nil
}

// boundTicks labels every plotted step bound in byte units.
type boundTicks struct {
	series bench.Series
}

func (b boundTicks) Ticks(_, _ float64) []plot.Tick {
	// Label at most ~12 ticks so a 1 GiB sweep stays readable.
	every := len(b.series)/12 + 1

	ticks := make([]plot.Tick, 0, len(b.series))
	for i, t := range b.series {
		label := ""
		if i%every == 0 || i == len(b.series)-1 {
			label = formatBound(t.StepBound)
		}

		ticks = append(ticks, plot.Tick{Value: float64(t.StepBound), Label: label})
	}

	return ticks
}

func formatBound(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}

	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.0f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
