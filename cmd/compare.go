package cmd

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/spf13/cobra"
	"github.com/zeu5/frozen-lake-rl/analysis"
	"github.com/zeu5/frozen-lake-rl/core"
	"github.com/zeu5/frozen-lake-rl/frozenlake"
	"github.com/zeu5/frozen-lake-rl/policies"
)

func CompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "compare [map...]",
		Short:     "Train epsilon-greedy, softmax and random agents and compare their returns",
		ValidArgs: validMaps(),
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := interruptContext()
			defer stop()

			if err := flags.Record(); err != nil {
				return err
			}
			for _, mapName := range mapArgs(args) {
				if err := compare(ctx, cmd.OutOrStdout(), mapName); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addTrainingFlags(cmd)
	return cmd
}

func compare(ctx context.Context, out io.Writer, mapName string) error {
	schedule := policies.NewEpsilonSchedule(flags.Hyperparameters)
	outcomeCmp, returnCmp := comparators(path.Join("compare", mapName), "Mean return on "+mapName)

	c := core.NewComparison()
	c.Logger = newLogger()
	for _, e := range []*core.Experiment{
		{Name: "egreedy", Policy: policies.NewEpsilonGreedyConstructor(schedule)},
		{Name: "softmax", Policy: policies.NewSoftmaxPolicyConstructor(schedule)},
		{Name: "random", Policy: &policies.RandomPolicyConstructor{}},
	} {
		if err := c.AddExperiment(e); err != nil {
			return err
		}
	}
	c.AddAnalysis("outcomes", analysis.NewOutcomeAnalyzerConstructor(flags.Window), outcomeCmp)
	c.AddAnalysis("returns", analysis.NewReturnAnalyzerConstructor(flags.Window), returnCmp)

	fmt.Fprintf(out, "Comparing policies on map %s...\n", mapName)
	p := newProgress(ctx, out, 1, flags.Hyperparameters.Episodes)
	c.Writer = p.Writer(0)
	c.ReportEvery = p.every

	results, err := c.Run(ctx, flags.Hyperparameters, frozenlake.NewConstructor(flags.LakeConfig(mapName)), flags.Seed)
	p.Stop()
	if err != nil {
		return fmt.Errorf("comparing on %s: %w", mapName, err)
	}
	for _, e := range c.Experiments {
		r := results[e.Name]
		fmt.Fprintf(out, "%-8s goal %d/%d episodes\n", e.Name, r.SuccessEpisodes, r.CompletedEpisodes)
	}
	if flags.SavePath != "" {
		fmt.Fprintf(out, "Results saved to %s\n", path.Join(flags.SavePath, "compare", mapName))
	}
	return nil
}
