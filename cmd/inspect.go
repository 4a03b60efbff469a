package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeu5/frozen-lake-rl/core"
	"github.com/zeu5/frozen-lake-rl/frozenlake"
	"golang.org/x/exp/rand"
)

func InspectCommand() *cobra.Command {
	var values bool
	cmd := &cobra.Command{
		Use:       "inspect <map>",
		Short:     "Print the greedy policy of a trained q-table",
		ValidArgs: validMaps(),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			mapName := args[0]
			env, err := frozenlake.New(flags.LakeConfig(mapName), rand.New(rand.NewSource(flags.Seed)))
			if err != nil {
				return err
			}
			table, err := core.LoadForEnvironment(flags.TablePath(mapName), env)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			painter := frozenlake.NewPainter(env, flags.Colors && isTerminal(out))
			fmt.Fprintf(out, "Map: %s\n%s", mapName, painter.Policy(table))
			if values {
				fmt.Fprint(out, painter.Values(table))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&values, "values", false, "Also print the action values of every state")
	cmd.Flags().BoolVar(&noColor, "no-color", !flags.Colors, "Disable coloured output")
	return cmd
}
