// Package main provides the CLI entry point for walkbench, a memory
// locality microbenchmark.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func main() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	root := newRootCmd(logger, level)
	if err := root.Execute(); err != nil {
		logger.Error("walkbench failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "walkbench",
		Short: "Measure memory latency as access locality falls",
		Long: `Walkbench allocates a large buffer of random bytes and walks it at
random, doubling the maximum step size after each timed batch of reads.
The slowdown as steps grow shows where each cache level stops helping.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return level.UnmarshalText([]byte(strings.ToUpper(logLevel)))
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")

	root.AddCommand(newTestCmd(logger))
	root.AddCommand(newPlotCmd(logger))

	return root
}

// byteSize is a flag value accepting sizes such as 1GiB, 64MiB or 4096.
type byteSize uint64

func (b *byteSize) String() string {
	return humanize.IBytes(uint64(*b))
}

func (b *byteSize) Set(s string) error {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return fmt.Errorf("parse size %q: %w", s, err)
	}

	*b = byteSize(n)

	return nil
}

func (b *byteSize) Type() string { return "size" }
