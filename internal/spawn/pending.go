package spawn

import (
	"log/slog"

	"github.com/udisondev/overworld/internal/journal"
	"github.com/udisondev/overworld/internal/model"
)

type effectKind uint8

const (
	effectSpawned effectKind = iota
	effectRevealed
	effectDespawned
)

type effectCall struct {
	kind effectKind
	enc  model.Encounter
	play bool
}

// pending collects collaborator calls made while the population lock is
// held. They run after unlock so a slow or panicking effect can never
// leave population state half-updated.
type pending struct {
	effects []effectCall
	entries []journal.Entry
}

func (p *pending) spawned(enc model.Encounter, e journal.Entry) {
	p.effects = append(p.effects, effectCall{kind: effectSpawned, enc: enc, play: true})
	p.entries = append(p.entries, e)
}

func (p *pending) revealed(enc model.Encounter, e journal.Entry) {
	p.effects = append(p.effects, effectCall{kind: effectRevealed, enc: enc, play: true})
	p.entries = append(p.entries, e)
}

func (p *pending) despawned(enc model.Encounter, play bool, e journal.Entry) {
	p.effects = append(p.effects, effectCall{kind: effectDespawned, enc: enc, play: play})
	p.entries = append(p.entries, e)
}

func (p *pending) fire(pop *Population) {
	for _, c := range p.effects {
		if c.play {
			callEffect(pop, c)
		}
	}
	for _, e := range p.entries {
		journal.Safe(pop.journal, e)
	}
}

func callEffect(pop *Population, c effectCall) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("encounter effect panicked",
				"entityID", c.enc.ID,
				"species", c.enc.Species,
				"panic", r)
		}
	}()
	switch c.kind {
	case effectSpawned:
		pop.effects.Spawned(c.enc)
	case effectRevealed:
		pop.effects.ShinyRevealed(c.enc)
	case effectDespawned:
		pop.effects.Despawned(c.enc)
	}
}
