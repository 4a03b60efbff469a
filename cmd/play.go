package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeu5/frozen-lake-rl/core"
	"github.com/zeu5/frozen-lake-rl/frozenlake"
	"github.com/zeu5/frozen-lake-rl/util"
	"golang.org/x/exp/rand"
)

func PlayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "play <map>",
		Short:     "Play the greedy policy of a trained q-table",
		ValidArgs: validMaps(),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return play(cmd.OutOrStdout(), args[0])
		},
	}
	addPlayFlags(cmd)
	return cmd
}

func play(out io.Writer, mapName string) error {
	ctx, stop := interruptContext()
	defer stop()

	env, err := frozenlake.New(flags.LakeConfig(mapName), rand.New(rand.NewSource(flags.Seed)))
	if err != nil {
		return err
	}
	table, err := core.LoadForEnvironment(flags.TablePath(mapName), env)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%w; run `frozenlake train %s` first", err, mapName)
	}
	if err != nil {
		return err
	}
	rollout, err := core.Evaluate(table, env, flags.EvalSteps)
	if err != nil {
		return err
	}

	redraw := isTerminal(out)
	painter := frozenlake.NewPainter(env, flags.Colors && redraw)
	var printer *util.TerminalPrinter
	if redraw {
		printer = util.NewTerminalPrinter(time.Second, out)
	}
	frame := time.Second
	if flags.FPS > 0 {
		frame = time.Duration(float64(time.Second) / flags.FPS)
	}

	start, err := env.Reset()
	if err != nil {
		return err
	}
	show := func(s string) {
		if printer != nil {
			printer.Write(s)
		} else {
			fmt.Fprint(out, s)
		}
	}
	show(fmt.Sprintf("Map: %s\n%s", mapName, painter.Frame(start)))

	// Evaluate resets the lake again on the first step, landing on the same start.
	for rollout.Next() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(frame):
		}
		show(painter.StepFrame(rollout.Steps(), rollout.Step()))
	}
	if err := rollout.Err(); err != nil {
		return err
	}
	if rollout.Steps() == 0 {
		return nil
	}
	fmt.Fprintln(out, painter.Result(rollout.Step(), rollout.Steps()))
	return nil
}
