package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zeu5/frozen-lake-rl/common"
)

var (
	flags      *common.Flags = common.DefaultFlags()
	configPath string
	savePath   string
	tableDir   string
	seed       uint64
	slippery   bool
	timeLimit  int
	verbose    bool

	episodes     int
	learningRate float64
	discount     float64
	maxEpsilon   float64
	minEpsilon   float64
	decayRate    float64
	maxSteps     int

	runs        int
	parallelism int
	merge       string
	window      int

	fps       float64
	evalSteps int
	noColor   bool
)

func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file overriding the default configuration")
	cmd.PersistentFlags().StringVar(&savePath, "save-path", flags.SavePath, "Path to save results")
	cmd.PersistentFlags().StringVar(&tableDir, "table-dir", flags.TableDir, "Directory holding the trained q-tables")
	cmd.PersistentFlags().Uint64Var(&seed, "seed", flags.Seed, "Seed of the random source")
	cmd.PersistentFlags().BoolVar(&slippery, "slippery", flags.Lake.Slippery, "Whether the lake is slippery")
	cmd.PersistentFlags().IntVar(&timeLimit, "time-limit", flags.Lake.TimeLimit, "Steps after which the lake truncates an episode (negative disables)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", flags.Verbose, "Log progress details to stderr")
}

func addTrainingFlags(cmd *cobra.Command) {
	h := flags.Hyperparameters
	cmd.Flags().IntVar(&episodes, "episodes", h.Episodes, "Number of training episodes")
	cmd.Flags().Float64Var(&learningRate, "learning-rate", h.LearningRate, "Learning rate in (0, 1]")
	cmd.Flags().Float64Var(&discount, "discount", h.Discount, "Discount factor in [0, 1)")
	cmd.Flags().Float64Var(&maxEpsilon, "max-epsilon", h.MaxEpsilon, "Initial exploration probability")
	cmd.Flags().Float64Var(&minEpsilon, "min-epsilon", h.MinEpsilon, "Final exploration probability")
	cmd.Flags().Float64Var(&decayRate, "decay-rate", h.DecayRate, "Exponential decay rate of the exploration probability")
	cmd.Flags().IntVar(&maxSteps, "max-steps", h.MaxSteps, "Maximum steps per episode")
	cmd.Flags().IntVar(&window, "window", flags.Window, "Episodes per analysis sample")
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&runs, "runs", flags.Runs, "Number of independent learners merged into one table")
	cmd.Flags().IntVar(&parallelism, "parallelism", flags.Parallelism, "Number of learners trained at once")
	cmd.Flags().StringVar(&merge, "merge", flags.Merge, "How learner tables are merged (average, last-writer)")
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&fps, "fps", flags.FPS, "Frames shown per second")
	cmd.Flags().IntVar(&evalSteps, "eval-steps", flags.EvalSteps, "Maximum steps of the greedy rollout")
	cmd.Flags().BoolVar(&noColor, "no-color", !flags.Colors, "Disable coloured output")
}

// UpdateFlags loads the config file and applies every flag set explicitly on
// the command line on top of it.
func UpdateFlags(cmd *cobra.Command) error {
	loaded, err := common.LoadFlags(configPath)
	if err != nil {
		return err
	}
	flags = loaded

	set := cmd.Flags().Changed
	if set("save-path") {
		flags.SavePath = savePath
	}
	if set("table-dir") {
		flags.TableDir = tableDir
	}
	if set("seed") {
		flags.Seed = seed
	}
	if set("slippery") {
		flags.Lake.Slippery = slippery
	}
	if set("time-limit") {
		flags.Lake.TimeLimit = timeLimit
	}
	if set("verbose") {
		flags.Verbose = verbose
	}

	if set("episodes") {
		flags.Hyperparameters.Episodes = episodes
	}
	if set("learning-rate") {
		flags.Hyperparameters.LearningRate = learningRate
	}
	if set("discount") {
		flags.Hyperparameters.Discount = discount
	}
	if set("max-epsilon") {
		flags.Hyperparameters.MaxEpsilon = maxEpsilon
	}
	if set("min-epsilon") {
		flags.Hyperparameters.MinEpsilon = minEpsilon
	}
	if set("decay-rate") {
		flags.Hyperparameters.DecayRate = decayRate
	}
	if set("max-steps") {
		flags.Hyperparameters.MaxSteps = maxSteps
	}
	if set("window") {
		flags.Window = window
	}

	if set("runs") {
		flags.Runs = runs
	}
	if set("parallelism") {
		flags.Parallelism = parallelism
	}
	if set("merge") {
		flags.Merge = merge
	}

	if set("fps") {
		flags.FPS = fps
	}
	if set("eval-steps") {
		flags.EvalSteps = evalSteps
	}
	if set("no-color") {
		flags.Colors = !noColor
	}
	return nil
}
