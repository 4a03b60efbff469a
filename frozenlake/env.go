// Package frozenlake implements the Frozen Lake grid world: walk from the
// start tile to the goal across frozen tiles without falling into a hole.
package frozenlake

import (
	"errors"
	"fmt"

	"github.com/zeu5/frozen-lake-rl/core"
)

const (
	Left core.Action = iota
	Down
	Right
	Up
)

const numActions = 4

// DefaultTimeLimit is the number of steps after which an episode is truncated.
const DefaultTimeLimit = 100

var ErrEpisodeOver = errors.New("episode is over, reset the environment")

type Config struct {
	// Map is the name of a built-in map. It is ignored when Desc is set.
	Map  string   `yaml:"map" json:"map"`
	Desc []string `yaml:"desc,omitempty" json:"desc,omitempty"`
	// Slippery moves the agent in the intended direction with probability
	// 1/3 and to either perpendicular direction otherwise.
	Slippery bool `yaml:"slippery" json:"slippery"`
	// TimeLimit truncates episodes after that many steps. Zero means
	// DefaultTimeLimit, a negative value disables truncation.
	TimeLimit int `yaml:"time_limit" json:"time_limit"`
}

type Environment struct {
	name      string
	desc      []string
	rows      int
	cols      int
	start     core.State
	slippery  bool
	timeLimit int
	rand      core.Rand

	state core.State
	steps int
	over  bool
}

var _ core.Environment = &Environment{}
var _ core.Seeder = &Environment{}

func New(cfg Config, rand core.Rand) (*Environment, error) {
	name := cfg.Map
	desc := cfg.Desc
	if len(desc) == 0 {
		d, ok := Maps[cfg.Map]
		if !ok {
			return nil, fmt.Errorf("unknown map %q, expected one of %v", cfg.Map, MapNames())
		}
		desc = d
	} else if name == "" {
		name = fmt.Sprintf("%dx%d", len(desc), len(desc[0]))
	}
	if err := validateMap(desc); err != nil {
		return nil, fmt.Errorf("invalid map %q: %w", name, err)
	}
	timeLimit := cfg.TimeLimit
	if timeLimit == 0 {
		timeLimit = DefaultTimeLimit
	}

	e := &Environment{
		name:      name,
		desc:      append([]string(nil), desc...),
		rows:      len(desc),
		cols:      len(desc[0]),
		slippery:  cfg.Slippery,
		timeLimit: timeLimit,
		rand:      rand,
	}
	for r, row := range desc {
		for c := 0; c < len(row); c++ {
			if row[c] == tileStart {
				e.start = e.toState(r, c)
			}
		}
	}
	e.state = e.start
	return e, nil
}

func (e *Environment) Name() string {
	return e.name
}

func (e *Environment) Dims() (rows, cols int) {
	return e.rows, e.cols
}

func (e *Environment) StateSpace() int {
	return e.rows * e.cols
}

func (e *Environment) ActionSpace() int {
	return numActions
}

// Seed reseeds the random source used for slipping and action sampling.
func (e *Environment) Seed(seed uint64) {
	e.rand.Seed(seed)
}

func (e *Environment) Reset() (core.State, error) {
	e.state = e.start
	e.steps = 0
	e.over = false
	return e.state, nil
}

func (e *Environment) SampleAction() core.Action {
	return core.Action(e.rand.Intn(numActions))
}

func (e *Environment) Step(action core.Action) (core.StepResult, error) {
	if action < 0 || action >= numActions {
		return core.StepResult{}, fmt.Errorf("action %d outside [0, %d)", action, numActions)
	}
	if e.over {
		return core.StepResult{}, ErrEpisodeOver
	}
	if e.slippery {
		// one of (action-1, action, action+1), wrapping around
		action = core.Action((int(action) + numActions - 1 + e.rand.Intn(3)) % numActions)
	}

	row, col := e.Position(e.state)
	switch action {
	case Left:
		col = max(col-1, 0)
	case Down:
		row = min(row+1, e.rows-1)
	case Right:
		col = min(col+1, e.cols-1)
	case Up:
		row = max(row-1, 0)
	}
	e.state = e.toState(row, col)
	e.steps++

	res := core.StepResult{NextState: e.state, Outcome: core.Continuing}
	switch e.desc[row][col] {
	case tileGoal:
		res.Reward = 1
		res.Outcome = core.Terminated
	case tileHole:
		res.Outcome = core.Terminated
	default:
		if e.timeLimit > 0 && e.steps >= e.timeLimit {
			res.Outcome = core.Truncated
		}
	}
	e.over = res.Outcome != core.Continuing
	return res, nil
}

// Position converts a state into its (row, col) coordinates.
func (e *Environment) Position(s core.State) (int, int) {
	return int(s) / e.cols, int(s) % e.cols
}

func (e *Environment) toState(row, col int) core.State {
	return core.State(row*e.cols + col)
}

// Tile returns the map letter at s.
func (e *Environment) Tile(s core.State) byte {
	row, col := e.Position(s)
	return e.desc[row][col]
}

// Terminal reports whether s is a hole or a goal.
func (e *Environment) Terminal(s core.State) bool {
	t := e.Tile(s)
	return t == tileHole || t == tileGoal
}

type Constructor struct {
	Config Config
}

var _ core.EnvironmentConstructor = &Constructor{}

func NewConstructor(cfg Config) *Constructor {
	return &Constructor{Config: cfg}
}

func (c *Constructor) NewEnvironment(_ int, rand core.Rand) (core.Environment, error) {
	return New(c.Config, rand)
}
