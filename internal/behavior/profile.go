// Package behavior holds the movement presets assigned to spawned encounters.
//
// A profile is resolved from the species that drives behavior (the head of a
// fusion) and falls back to the encounter's nature.
package behavior

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Op is a single move route command.
type Op string

const (
	OpMoveTowardPlayer   Op = "move_toward_player"
	OpMoveAwayFromPlayer Op = "move_away_from_player"
	OpTurnTowardPlayer   Op = "turn_toward_player"
	OpMoveRandom         Op = "move_random"
	OpWait               Op = "wait"
	OpJump               Op = "jump"
	OpPlaySE             Op = "play_se"
)

var knownOps = map[Op]bool{
	OpMoveTowardPlayer:   true,
	OpMoveAwayFromPlayer: true,
	OpTurnTowardPlayer:   true,
	OpMoveRandom:         true,
	OpWait:               true,
	OpJump:               true,
	OpPlaySE:             true,
}

// Step is one entry of a move route.
// Frames is set for wait, Sound for play_se.
type Step struct {
	Op     Op
	Frames int
	Sound  string
}

// ParseStep parses "op" or "op:arg", e.g. "wait:12", "play_se:Player jump".
func ParseStep(s string) (Step, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")
	op := Op(name)
	if !knownOps[op] {
		return Step{}, fmt.Errorf("unknown move command %q", name)
	}

	st := Step{Op: op}
	switch op {
	case OpWait:
		if !hasArg {
			return Step{}, fmt.Errorf("wait requires a frame count")
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return Step{}, fmt.Errorf("invalid wait frames %q", arg)
		}
		st.Frames = n
	case OpPlaySE:
		st.Sound = arg
	default:
		if hasArg {
			return Step{}, fmt.Errorf("%s takes no argument", op)
		}
	}
	return st, nil
}

// String returns the textual form accepted by ParseStep.
func (s Step) String() string {
	switch s.Op {
	case OpWait:
		return fmt.Sprintf("%s:%d", s.Op, s.Frames)
	case OpPlaySE:
		return string(s.Op) + ":" + s.Sound
	}
	return string(s.Op)
}

// UnmarshalYAML decodes a step from its scalar form.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	st, err := ParseStep(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = st
	return nil
}

// MarshalYAML encodes a step in its scalar form.
func (s Step) MarshalYAML() (any, error) {
	return s.String(), nil
}

// Profile is a repeating move route plus movement parameters.
// Touch makes the encounter start the interaction on contact.
type Profile struct {
	Name          string `yaml:"-"`
	Route         []Step `yaml:"route"`
	MoveSpeed     int    `yaml:"move_speed"`
	MoveFrequency int    `yaml:"move_frequency"`
	Touch         bool   `yaml:"touch"`
}

// Approaches reports whether the route ever moves toward the player.
func (p Profile) Approaches() bool {
	for _, s := range p.Route {
		if s.Op == OpMoveTowardPlayer {
			return true
		}
	}
	return false
}

func steps(ops ...any) []Step {
	out := make([]Step, 0, len(ops))
	for _, o := range ops {
		switch v := o.(type) {
		case Op:
			out = append(out, Step{Op: v})
		case int:
			out = append(out, Step{Op: OpWait, Frames: v})
		case string:
			out = append(out, Step{Op: OpPlaySE, Sound: v})
		}
	}
	return out
}

func repeat(op Op, n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = op
	}
	return out
}

func join(parts ...[]any) []any {
	var out []any
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Wander is used when neither species nor nature has a preset.
var Wander = Profile{
	Name:          "Wander",
	MoveSpeed:     2,
	MoveFrequency: 2,
}

// Aggressive charges the player and starts the interaction on contact.
var Aggressive = Profile{
	Name:          "Aggressive",
	Route:         steps(OpMoveTowardPlayer),
	MoveSpeed:     3,
	MoveFrequency: 6,
	Touch:         true,
}

// Fugitive watches the player, then runs.
var Fugitive = Profile{
	Name: "Fugitive",
	Route: steps(join(
		[]any{OpTurnTowardPlayer, 12},
		repeat(OpMoveAwayFromPlayer, 7),
		[]any{12},
	)...),
	MoveSpeed:     3,
	MoveFrequency: 6,
}

// Curious approaches and stares.
var Curious = Profile{
	Name: "Curious",
	Route: steps(
		OpMoveTowardPlayer, OpMoveTowardPlayer, OpTurnTowardPlayer, 60,
		OpTurnTowardPlayer, OpMoveTowardPlayer, 30, OpTurnTowardPlayer,
	),
	MoveSpeed:     2,
	MoveFrequency: 6,
}
