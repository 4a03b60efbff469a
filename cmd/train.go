package cmd

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
	"github.com/zeu5/frozen-lake-rl/analysis"
	"github.com/zeu5/frozen-lake-rl/core"
	"github.com/zeu5/frozen-lake-rl/frozenlake"
	"github.com/zeu5/frozen-lake-rl/policies"
	"golang.org/x/exp/rand"
)

func TrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "train [map...]",
		Short:     "Train a q-table per map and save it",
		ValidArgs: validMaps(),
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := interruptContext()
			defer stop()

			if err := flags.Record(); err != nil {
				return err
			}
			for _, mapName := range mapArgs(args) {
				if err := trainMap(ctx, cmd.OutOrStdout(), mapName); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addTrainingFlags(cmd)
	addRunFlags(cmd)
	return cmd
}

func trainMap(ctx context.Context, out io.Writer, mapName string) error {
	logger := newLogger()
	fmt.Fprintf(out, "Training on map %s...\n", mapName)

	var (
		table   *core.QTable
		results []*core.TrainingResult
		err     error
	)
	if flags.Runs > 1 {
		table, results, err = trainParallel(ctx, out, mapName, logger)
	} else {
		var result *core.TrainingResult
		table, result, err = trainSingle(ctx, out, mapName, logger)
		results = []*core.TrainingResult{result}
	}
	if err != nil {
		// the partially trained table is never saved
		return fmt.Errorf("training on %s: %w", mapName, err)
	}

	tablePath := flags.TablePath(mapName)
	if err := table.SaveFile(tablePath); err != nil {
		return err
	}
	fmt.Fprintf(out, "Training finished! Saved q-table for map %s to %s\n", mapName, tablePath)

	for i, r := range results {
		fmt.Fprintf(out, "Run %d: episodes %d, goal %d, holes %d, truncated %d, step limit %d\n",
			i, r.CompletedEpisodes, r.SuccessEpisodes, r.TerminatedEpisodes-r.SuccessEpisodes,
			r.TruncatedEpisodes, r.StepLimitEpisodes)
	}
	return saveAnalyses(mapName, results)
}

func trainSingle(ctx context.Context, out io.Writer, mapName string, logger *log.Logger) (*core.QTable, *core.TrainingResult, error) {
	rng := rand.New(rand.NewSource(flags.Seed))
	env, err := frozenlake.New(flags.LakeConfig(mapName), rng)
	if err != nil {
		return nil, nil, err
	}
	table, err := core.NewQTable(env.StateSpace(), env.ActionSpace())
	if err != nil {
		return nil, nil, err
	}
	policy := policies.NewEpsilonGreedy(table, policies.NewEpsilonSchedule(flags.Hyperparameters), rng)
	trainer, err := core.NewTrainer(flags.Hyperparameters, env, policy, table)
	if err != nil {
		return nil, nil, err
	}
	trainer.SetLogger(logger)
	trainer.AddAnalyzer("outcomes", analysis.NewOutcomeAnalyzer(flags.Window))
	trainer.AddAnalyzer("returns", analysis.NewReturnAnalyzer(flags.Window))

	p := newProgress(ctx, out, 1, flags.Hyperparameters.Episodes)
	trainer.SetOutput(p.Writer(0), p.every)
	result, err := trainer.Run(ctx)
	p.Stop()
	if err != nil {
		return nil, nil, err
	}
	return table, result, nil
}

func trainParallel(ctx context.Context, out io.Writer, mapName string, logger *log.Logger) (*core.QTable, []*core.TrainingResult, error) {
	strategy, err := flags.MergeStrategy()
	if err != nil {
		return nil, nil, err
	}
	p := newProgress(ctx, out, flags.Runs, flags.Hyperparameters.Episodes)
	defer p.Stop()

	trainer := &core.ParallelTrainer{
		Config:      flags.Hyperparameters,
		Environment: frozenlake.NewConstructor(flags.LakeConfig(mapName)),
		Policy:      policies.NewEpsilonGreedyConstructor(policies.NewEpsilonSchedule(flags.Hyperparameters)),
		Runs:        flags.Runs,
		Parallelism: flags.Parallelism,
		Seed:        flags.Seed,
		Merge:       strategy,
		Analyzers: map[string]core.AnalyzerConstructor{
			"outcomes": analysis.NewOutcomeAnalyzerConstructor(flags.Window),
			"returns":  analysis.NewReturnAnalyzerConstructor(flags.Window),
		},
		Logger:      logger,
		Output:      p.Writer,
		ReportEvery: p.every,
	}
	return trainer.Run(ctx)
}

// saveAnalyses writes the analyzer datasets of every run under the save path.
func saveAnalyses(mapName string, results []*core.TrainingResult) error {
	names := make([]string, 0, len(results))
	outcomes := make([]core.DataSet, 0, len(results))
	returns := make([]core.DataSet, 0, len(results))
	for i, r := range results {
		names = append(names, fmt.Sprintf("run_%d", i))
		outcomes = append(outcomes, r.Datasets["outcomes"])
		returns = append(returns, r.Datasets["returns"])
	}
	outcomeCmp, returnCmp := comparators(mapName, "Mean return on "+mapName)
	if err := outcomeCmp.Compare(names, outcomes); err != nil {
		return err
	}
	return returnCmp.Compare(names, returns)
}
