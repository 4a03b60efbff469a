package common

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/zeu5/frozen-lake-rl/core"
	"github.com/zeu5/frozen-lake-rl/frozenlake"
	"github.com/zeu5/frozen-lake-rl/util"
	"gopkg.in/yaml.v3"
)

type Flags struct {
	Lake            LakeFlags            `yaml:"lake" json:"lake"`
	Hyperparameters core.Hyperparameters `yaml:"hyperparameters" json:"hyperparameters"`
	SavePath        string               `yaml:"save_path" json:"save_path"`
	TableDir        string               `yaml:"table_dir" json:"table_dir"`
	Seed            uint64               `yaml:"seed" json:"seed"`
	RunFlags        `yaml:",inline" json:"run"`
	PlayFlags       `yaml:",inline" json:"play"`
	Verbose         bool `yaml:"verbose" json:"verbose"`
}

type LakeFlags struct {
	// Maps lists the lakes to train on when none is given on the command line.
	Maps      []string `yaml:"maps" json:"maps"`
	Slippery  bool     `yaml:"slippery" json:"slippery"`
	TimeLimit int      `yaml:"time_limit" json:"time_limit"`
}

type RunFlags struct {
	Runs        int    `yaml:"runs" json:"runs"`
	Parallelism int    `yaml:"parallelism" json:"parallelism"`
	Merge       string `yaml:"merge" json:"merge"`
	Window      int    `yaml:"window" json:"window"`
}

type PlayFlags struct {
	FPS       float64 `yaml:"fps" json:"fps"`
	EvalSteps int     `yaml:"eval_steps" json:"eval_steps"`
	Colors    bool    `yaml:"colors" json:"colors"`
}

func DefaultFlags() *Flags {
	return &Flags{
		Lake: LakeFlags{
			Maps:      frozenlake.MapNames(),
			Slippery:  false,
			TimeLimit: frozenlake.DefaultTimeLimit,
		},
		Hyperparameters: core.DefaultHyperparameters(),
		SavePath:        "results",
		TableDir:        ".",
		Seed:            42,
		RunFlags: RunFlags{
			Runs:        1,
			Parallelism: 4,
			Merge:       core.MergeAverage.String(),
			Window:      1000,
		},
		PlayFlags: PlayFlags{
			FPS:       2,
			EvalSteps: 100,
			Colors:    true,
		},
	}
}

// LoadFlags returns the defaults overridden by the YAML file at configPath.
// An empty path returns the defaults.
func LoadFlags(configPath string) (*Flags, error) {
	flags := DefaultFlags()
	if configPath == "" {
		return flags, nil
	}
	bs, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(bs, flags); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", configPath, err)
	}
	return flags, nil
}

func (f *Flags) LakeConfig(mapName string) frozenlake.Config {
	return frozenlake.Config{
		Map:       mapName,
		Slippery:  f.Lake.Slippery,
		TimeLimit: f.Lake.TimeLimit,
	}
}

// TablePath is where the trained table for mapName is persisted.
func (f *Flags) TablePath(mapName string) string {
	return filepath.Join(f.TableDir, fmt.Sprintf("q_table_%s.bin", mapName))
}

func (f *Flags) MergeStrategy() (core.MergeStrategy, error) {
	switch f.Merge {
	case core.MergeAverage.String():
		return core.MergeAverage, nil
	case core.MergeLastWriter.String():
		return core.MergeLastWriter, nil
	default:
		return 0, fmt.Errorf("%w: unknown merge strategy %q", core.ErrConfig, f.Merge)
	}
}

// Record writes the configuration next to the results. An empty save path
// disables it.
func (f *Flags) Record() error {
	if f.SavePath == "" {
		return nil
	}
	return util.SaveJson(path.Join(f.SavePath, "config.json"), f)
}
