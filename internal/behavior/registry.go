package behavior

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/overworld/internal/model"
)

// Rand is the random source used to pick natures.
type Rand interface {
	IntN(n int) int
}

// Natures lists every nature an encounter may roll.
var Natures = []string{
	"HARDY", "LONELY", "BRAVE", "ADAMANT", "NAUGHTY",
	"BOLD", "DOCILE", "RELAXED", "IMPISH", "LAX",
	"TIMID", "HASTY", "SERIOUS", "JOLLY", "NAIVE",
	"MODEST", "MILD", "QUIET", "BASHFUL", "RASH",
	"CALM", "GENTLE", "SASSY", "CAREFUL", "QUIRKY",
}

// RandomNature picks a uniformly random nature.
func RandomNature(rng Rand) string {
	return Natures[rng.IntN(len(Natures))]
}

// Registry maps species and natures to profiles.
// Immutable after construction; safe for concurrent reads.
type Registry struct {
	species map[model.Species]Profile
	natures map[string]Profile
}

// NewRegistry returns the built-in presets.
func NewRegistry() *Registry {
	jump := []any{OpJump}
	jumpSE := "Player jump"

	natures := map[string]Profile{
		"DOCILE":  Curious,
		"BASHFUL": Fugitive,
		"CAREFUL": Fugitive,
		"TIMID":   Fugitive,
		"JOLLY":   Curious,
		"NAIVE":   Curious,
		"HARDY": {
			Route: steps(join(
				repeat(OpMoveTowardPlayer, 3), []any{20},
				repeat(OpMoveRandom, 3), []any{15},
			)...),
			MoveSpeed:     3,
			MoveFrequency: 6,
		},
		"LONELY": {
			Route: steps(join(
				repeat(OpMoveTowardPlayer, 6), []any{4, jumpSE}, jump, []any{32},
			)...),
			MoveSpeed:     2,
			MoveFrequency: 6,
		},
		"BRAVE": {
			Route:         steps(OpMoveTowardPlayer),
			MoveSpeed:     3,
			MoveFrequency: 5,
			Touch:         true,
		},
		"IMPISH": {
			Route: steps(join(
				repeat(OpMoveTowardPlayer, 4),
				[]any{8, jumpSE}, jump, []any{4, jumpSE}, jump, []any{8},
				repeat(OpMoveAwayFromPlayer, 4),
				[]any{8, jumpSE}, jump, []any{4, jumpSE}, jump, []any{8},
			)...),
			MoveSpeed:     3,
			MoveFrequency: 6,
		},
		"LAX": {
			Route: steps(
				OpTurnTowardPlayer, 20, OpMoveRandom, OpMoveRandom, 20,
				OpTurnTowardPlayer, 20, OpMoveRandom, 20,
			),
			MoveSpeed:     1,
			MoveFrequency: 3,
		},
		"HASTY": {
			Route:         steps(OpMoveRandom),
			MoveSpeed:     2,
			MoveFrequency: 3,
		},
	}
	for name, p := range natures {
		if p.Name == "" {
			p.Name = name
			natures[name] = p
		}
	}

	species := map[model.Species]Profile{
		"WIMPOD": {
			Name: "WIMPOD",
			Route: steps(join(
				repeat(OpMoveAwayFromPlayer, 6), repeat(OpMoveRandom, 3),
			)...),
			MoveSpeed:     4,
			MoveFrequency: 6,
		},
		"VELUZA": {
			Name: "VELUZA",
			Route: steps(join(
				repeat(OpMoveTowardPlayer, 6), repeat(OpMoveRandom, 2),
			)...),
			MoveSpeed:     4,
			MoveFrequency: 6,
			Touch:         true,
		},
	}

	return &Registry{species: species, natures: natures}
}

// Resolve returns the profile for an encounter. Species presets win over
// nature presets; Wander is returned when neither matches.
func (r *Registry) Resolve(species model.Species, nature string) Profile {
	if p, ok := r.species[model.Species(strings.ToUpper(string(species)))]; ok {
		return p
	}
	if p, ok := r.natures[strings.ToUpper(nature)]; ok {
		return p
	}
	return Wander
}

// ProfileFile is the YAML layout accepted by LoadProfiles.
type ProfileFile struct {
	Species map[model.Species]Profile `yaml:"species"`
	Natures map[string]Profile        `yaml:"natures"`
}

// With returns a copy of the registry with the given overrides applied.
func (r *Registry) With(f ProfileFile) *Registry {
	out := &Registry{
		species: maps.Clone(r.species),
		natures: maps.Clone(r.natures),
	}
	for name, p := range f.Species {
		p.Name = string(name)
		out.species[model.Species(strings.ToUpper(string(name)))] = p
	}
	for name, p := range f.Natures {
		p.Name = name
		out.natures[strings.ToUpper(name)] = p
	}
	return out
}

// LoadProfiles reads profile overrides from a YAML file on top of the
// built-in presets. If the file doesn't exist, returns the built-ins.
func LoadProfiles(path string) (*Registry, error) {
	reg := NewRegistry()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return reg, nil
		}
		return reg, fmt.Errorf("reading profiles %s: %w", path, err)
	}

	var f ProfileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return reg, fmt.Errorf("parsing profiles %s: %w", path, err)
	}

	return reg.With(f), nil
}
