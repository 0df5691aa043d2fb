package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/weiihann/walkbench/render"
)

func newPlotCmd(logger *slog.Logger) *cobra.Command {
	var (
		out    string
		metric string
		width  int
		height int
		title  string
	)

	cmd := &cobra.Command{
		Use:   "plot <file>",
		Short: "Render a chart from a saved results file",
		Long: `Read a CSV written by "walkbench test --out" and draw the access
rate (or latency) against step bound on a logarithmic axis.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := render.Metric(metric)
			if m != render.MetricThroughput && m != render.MetricLatency {
				return fmt.Errorf("unknown metric %q (want %s or %s)",
					metric, render.MetricThroughput, render.MetricLatency)
			}

			err := render.PlotFile(args[0], out, render.Options{
				Metric: m,
				Width:  width,
				Height: height,
				Title:  title,
			})
			if err != nil {
				return fmt.Errorf("plot %s: %w", args[0], err)
			}

			logger.InfoContext(cmd.Context(), "plot written",
				slog.String("input", args[0]),
				slog.String("output", out),
			)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&out, "out", "o", "plot.png",
		"Output image (png, svg or pdf by extension)")
	flags.StringVar(&metric, "metric", string(render.MetricThroughput),
		"Y axis: throughput (steps/sec) or latency (ns/access)")
	flags.IntVar(&width, "width", 1024, "Image width in pixels")
	flags.IntVar(&height, "height", 1024, "Image height in pixels")
	flags.StringVar(&title, "title", "", "Chart title")

	return cmd
}
