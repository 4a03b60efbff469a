package frozenlake

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/zeu5/frozen-lake-rl/core"
)

var arrows = [numActions]string{"←", "↓", "→", "↑"}

// Painter draws the lake as text, one frame per evaluated step.
type Painter struct {
	env *Environment
	au  aurora.Aurora
}

func NewPainter(env *Environment, colors bool) *Painter {
	return &Painter{
		env: env,
		au:  aurora.NewAurora(colors),
	}
}

func (p *Painter) tile(s core.State) string {
	switch p.env.Tile(s) {
	case tileHole:
		return p.au.Blue("H").String()
	case tileGoal:
		return p.au.Yellow("G").String()
	case tileStart:
		return p.au.Faint("S").String()
	default:
		return p.au.Cyan(".").String()
	}
}

// Frame renders the lake with the agent standing on agent.
func (p *Painter) Frame(agent core.State) string {
	b := new(strings.Builder)
	for r := 0; r < p.env.rows; r++ {
		for c := 0; c < p.env.cols; c++ {
			s := p.env.toState(r, c)
			if s == agent {
				b.WriteString(p.au.Bold(p.au.Green("@")).String())
			} else {
				b.WriteString(p.tile(s))
			}
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// StepFrame renders an evaluated step with a status line.
func (p *Painter) StepFrame(n int, step core.Step) string {
	return fmt.Sprintf("Map: %s\n%sStep: %d  Action: %s  Reward: %.2f  %s\n",
		p.env.Name(), p.Frame(step.NextState), n, arrows[step.Action], step.Reward, step.Outcome)
}

// Result renders the final line of an evaluation.
func (p *Painter) Result(last core.Step, steps int) string {
	switch {
	case last.Outcome == core.Terminated && last.Reward > 0:
		return p.au.Bold(p.au.Green(fmt.Sprintf("Completed! Reached the goal in %d steps.", steps))).String()
	case last.Outcome == core.Terminated:
		return p.au.Red(fmt.Sprintf("Fell into a hole after %d steps.", steps)).String()
	default:
		return p.au.Yellow(fmt.Sprintf("Stopped after %d steps without reaching the goal.", steps)).String()
	}
}

// Policy renders the greedy action of every non-terminal tile.
func (p *Painter) Policy(table *core.QTable) string {
	b := new(strings.Builder)
	for r := 0; r < p.env.rows; r++ {
		for c := 0; c < p.env.cols; c++ {
			s := p.env.toState(r, c)
			if p.env.Terminal(s) {
				b.WriteString(p.tile(s))
			} else {
				b.WriteString(arrows[table.BestAction(s)])
			}
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Values renders the action values of every state, one row per state.
func (p *Painter) Values(table *core.QTable) string {
	b := new(strings.Builder)
	fmt.Fprintf(b, "%5s  %8s %8s %8s %8s\n", "state", arrows[Left], arrows[Down], arrows[Right], arrows[Up])
	states, _ := table.Dims()
	for s := 0; s < states; s++ {
		fmt.Fprintf(b, "%5d ", s)
		for _, v := range table.Row(core.State(s)) {
			fmt.Fprintf(b, " %8.4f", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}
