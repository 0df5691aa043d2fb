package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	mrand "math/rand"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/cheggaaa/pb.v2"

	"github.com/weiihann/walkbench/bench"
	"github.com/weiihann/walkbench/host"
	"github.com/weiihann/walkbench/report"
	"github.com/weiihann/walkbench/results"
)

const progressTemplate pb.ProgressBarTemplate = `{{string . "step"}} {{counters . }} {{bar . }} {{percent . }} {{etime . }}`

type testConfig struct {
	totalSize       byteSize
	initialStepSize byteSize
	maxStepSize     byteSize
	iterations      uint64
	seed            int64
	out             string
	outputJSON      bool
	noProgress      bool
}

func newTestCmd(logger *slog.Logger) *cobra.Command {
	cfg := testConfig{
		totalSize:       bench.DefaultBufferSize,
		initialStepSize: 1,
		iterations:      bench.DefaultIterations,
	}

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run the random walk benchmark",
		Long: `Allocate a buffer of random bytes, then time a fixed number of
random-walk reads for each step bound from --initial-step-size doubling up
to --max-step-size. Results are printed and optionally saved as CSV.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTest(cmd.Context(), logger, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.VarP(&cfg.totalSize, "total-size", "t",
		"Amount of memory to allocate for the test (e.g. 1GiB)")
	flags.VarP(&cfg.initialStepSize, "initial-step-size", "d",
		"Initial step bound")
	flags.VarP(&cfg.maxStepSize, "max-step-size", "m",
		"Maximum step bound (default: total size)")
	flags.Uint64VarP(&cfg.iterations, "iterations", "i", bench.DefaultIterations,
		"Number of reads per step bound")
	flags.Int64Var(&cfg.seed, "seed", 0,
		"Random seed (0 = use current time)")
	flags.StringVarP(&cfg.out, "out", "o", "",
		"CSV file to record results to (.gz and .zst are compressed)")
	flags.BoolVar(&cfg.outputJSON, "json", false,
		"Print results as JSON instead of a table")
	flags.BoolVar(&cfg.noProgress, "no-progress", false,
		"Disable the progress bar")

	return cmd
}

func (c testConfig) benchConfig() bench.Config {
	return bench.Config{
		BufferSize:       int(c.totalSize),
		InitialStepBound: uint64(c.initialStepSize),
		MaxStepBound:     uint64(c.maxStepSize),
		Iterations:       c.iterations,
	}
}

func runTest(
	ctx context.Context,
	logger *slog.Logger,
	stdout, stderr io.Writer,
	cfg testConfig,
) error {
	benchCfg := cfg.benchConfig()

	bounds, err := benchCfg.Bounds()
	if err != nil {
		return err
	}

	seed := cfg.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger.InfoContext(ctx, "host", host.Describe().LogAttrs()...)
	logger.InfoContext(ctx, "starting benchmark",
		slog.String("total_size", humanize.IBytes(uint64(cfg.totalSize))),
		slog.Uint64("initial_step", benchCfg.InitialStepBound),
		slog.Uint64("max_step", bounds[len(bounds)-1]),
		slog.Int("steps", len(bounds)),
		slog.Uint64("iterations", benchCfg.Iterations),
		slog.Int64("seed", seed),
	)

	rng := mrand.New(mrand.NewSource(seed))

	allocStart := time.Now()

	buf, err := bench.NewBuffer(benchCfg.BufferSize, rng)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "buffer ready",
		slog.Duration("fill_time", time.Since(allocStart)),
	)

	var bar *pb.ProgressBar
	if !cfg.noProgress {
		bar = pb.New(len(bounds)).SetTemplate(progressTemplate).SetWriter(stderr)
		bar.Set("step", fmt.Sprintf("step %d", benchCfg.InitialStepBound))
		bar.Start()
	}

	benchCfg.OnTrial = func(t bench.Trial) {
		logger.DebugContext(ctx, "trial complete",
			slog.Uint64("step_bound", t.StepBound),
			slog.Duration("elapsed", t.Elapsed),
			slog.Float64("steps_per_sec", t.StepsPerSecond()),
			slog.Int("checksum", int(t.Checksum)),
		)

		if bar != nil {
			bar.Set("step", fmt.Sprintf("step %d", t.StepBound<<1))
			bar.Increment()
		}
	}

	series, err := bench.RunAll(buf, rng, benchCfg)

	if bar != nil {
		bar.Finish()
	}

	if err != nil {
		return fmt.Errorf("run benchmark: %w", err)
	}

	if cfg.out != "" {
		if err := results.WriteFile(cfg.out, series); err != nil {
			return err
		}

		logger.InfoContext(ctx, "results saved",
			slog.String("path", cfg.out),
			slog.Int("trials", len(series)),
		)
	}

	if cfg.outputJSON {
		if err := report.GenerateJSON(stdout, series); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	} else {
		if err := report.Generate(stdout, series); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	logger.InfoContext(ctx, "benchmark complete")

	return nil
}
