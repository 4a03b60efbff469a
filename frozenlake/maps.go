package frozenlake

import (
	"fmt"
	"sort"
)

const (
	tileStart  = 'S'
	tileFrozen = 'F'
	tileHole   = 'H'
	tileGoal   = 'G'
)

// Maps holds the built-in lakes by name.
var Maps = map[string][]string{
	"4x4": {
		"SFFF",
		"FHFH",
		"FFFH",
		"HFFG",
	},
	"8x8": {
		"SFFFFFFF",
		"FFFFFFFF",
		"FFFHFFFF",
		"FFFFFHFF",
		"FFFHFFFF",
		"FHHFFFHF",
		"FHFFHFHF",
		"FFFHFFFG",
	},
}

// MapNames returns the built-in map names in order.
func MapNames() []string {
	names := make([]string, 0, len(Maps))
	for name := range Maps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validateMap checks that the lake is a non-empty rectangle of S, F, H and G
// tiles with exactly one start and at least one goal.
func validateMap(desc []string) error {
	if len(desc) == 0 || len(desc[0]) == 0 {
		return fmt.Errorf("empty map")
	}
	starts, goals := 0, 0
	for r, row := range desc {
		if len(row) != len(desc[0]) {
			return fmt.Errorf("row %d has %d tiles, expected %d", r, len(row), len(desc[0]))
		}
		for c := 0; c < len(row); c++ {
			switch row[c] {
			case tileStart:
				starts++
			case tileGoal:
				goals++
			case tileFrozen, tileHole:
			default:
				return fmt.Errorf("unknown tile %q at (%d, %d)", row[c], r, c)
			}
		}
	}
	if starts != 1 {
		return fmt.Errorf("map needs exactly one start tile, found %d", starts)
	}
	if goals == 0 {
		return fmt.Errorf("map has no goal tile")
	}
	return nil
}
