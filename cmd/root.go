package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path"

	"github.com/spf13/cobra"
	"github.com/zeu5/frozen-lake-rl/analysis"
	"github.com/zeu5/frozen-lake-rl/core"
	"github.com/zeu5/frozen-lake-rl/frozenlake"
)

func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "frozenlake",
		Short:        "Train and play tabular Q-learning agents on Frozen Lake",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return UpdateFlags(cmd)
		},
	}
	AddFlags(cmd)

	cmd.AddCommand(
		TrainCommand(),
		PlayCommand(),
		CompareCommand(),
		InspectCommand(),
	)

	return cmd
}

// interruptContext returns a context cancelled on an interrupt from the os or
// when the returned stop function is called.
func interruptContext() (context.Context, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt) // channel for interrupts from os

	doneCh := make(chan struct{}) // channel for done signal from application

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
		case <-doneCh:
		}
		signal.Stop(sigCh)
		cancel()
	}()
	return ctx, func() { close(doneCh) }
}

func newLogger() *log.Logger {
	if !flags.Verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "frozenlake: ", log.LstdFlags)
}

// mapArgs returns the maps named on the command line, or the configured ones.
func mapArgs(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return flags.Lake.Maps
}

func validMaps() []string {
	return frozenlake.MapNames()
}

// comparators returns the outcome and return comparators writing under dir
// inside the save path. Nothing is written when the save path is empty.
func comparators(dir, title string) (core.Comparator, core.Comparator) {
	if flags.SavePath == "" {
		return analysis.NewNoOpComparator(), analysis.NewNoOpComparator()
	}
	savePath := path.Join(flags.SavePath, dir)
	return analysis.NewOutcomeComparator(savePath), analysis.NewChartComparator(savePath, title)
}
