package spawn

import (
	"cmp"
	"slices"

	"github.com/udisondev/overworld/internal/config"
	"github.com/udisondev/overworld/internal/model"
)

// maxHordeExtras caps a horde at 3v1.
const maxHordeExtras = 2

// Interaction is a claimed set of entities about to enter battle.
// Primary comes first in IDs.
type Interaction struct {
	Token uint64
	IDs   []model.EntityID
}

// Horde reports whether the interaction has more than one participant.
func (in Interaction) Horde() bool {
	return len(in.IDs) > 1
}

type hordeCandidate struct {
	id       model.EntityID
	revision uint64
	dist     int64
}

// BeginInteraction claims id for an interaction and, when hordes are
// enabled, up to two nearby entities. Claimed entities are locked: they
// are no longer interactable and resist non-forced despawn until
// ReportOutcome or ReleaseInteraction.
func (p *Population) BeginInteraction(id model.EntityID) (Interaction, bool) {
	var (
		token      uint64
		claimed    bool
		candidates []hordeCandidate
	)
	p.locked("begin interaction", func() {
		primary, ok := p.entities[id]
		if !ok || !primary.Interactable() {
			return
		}
		p.lastClaim++
		token = p.lastClaim
		p.lockLocked(primary, token)
		claimed = true

		if p.tun.Bool(config.KeyHordeEnabled) {
			candidates = p.scanHordeLocked(primary)
		}
	})
	if !claimed {
		return Interaction{}, false
	}

	// The gap between scan and claim is where another interaction or a
	// nested callback may claim or destroy a candidate.
	ids := append([]model.EntityID{id}, p.claimHorde(id, token, candidates)...)
	return Interaction{Token: token, IDs: ids}, true
}

// scanHordeLocked returns interactable entities within horde distance of
// primary, nearest first, without claiming them.
func (p *Population) scanHordeLocked(primary *model.Encounter) []hordeCandidate {
	r := p.tun.Int(config.KeyHordeDistance)
	var out []hordeCandidate
	for _, enc := range p.entities {
		if enc.ID == primary.ID || enc.MapID != primary.MapID || !enc.Interactable() {
			continue
		}
		if !enc.Pos.WithinRadius(primary.Pos, r) {
			continue
		}
		out = append(out, hordeCandidate{
			id:       enc.ID,
			revision: enc.Revision,
			dist:     enc.Pos.DistanceSquared(primary.Pos),
		})
	}
	slices.SortFunc(out, func(a, b hordeCandidate) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	if len(out) > maxHordeExtras {
		out = out[:maxHordeExtras]
	}
	return out
}

// claimHorde locks every scanned candidate, then re-validates each one.
// A candidate that vanished, changed or is held by another token is
// dropped; any lock taken on it is released.
func (p *Population) claimHorde(primary model.EntityID, token uint64, candidates []hordeCandidate) []model.EntityID {
	p.mu.Lock()
	defer p.mu.Unlock()

	claimed := make([]*model.Encounter, 0, len(candidates))
	revisions := make([]uint64, 0, len(candidates))
	for _, c := range candidates {
		enc, ok := p.entities[c.id]
		if !ok || enc.Claim != 0 || !enc.Interactable() {
			continue
		}
		p.lockLocked(enc, token)
		claimed = append(claimed, enc)
		// lockLocked bumped the revision once.
		revisions = append(revisions, c.revision+1)
	}

	var ids []model.EntityID
	for i, enc := range claimed {
		if enc.Revision != revisions[i] || enc.Claim != token {
			if enc.Claim == token {
				p.unlockLocked(enc)
			}
			continue
		}
		enc.Tags |= model.TagHorde
		ids = append(ids, enc.ID)
	}
	if len(ids) > 0 {
		if enc, ok := p.entities[primary]; ok && enc.Claim == token {
			enc.Tags |= model.TagHorde
		}
	}
	return ids
}

// ReleaseInteraction unlocks every entity held by token without
// destroying it. Used when an interaction is abandoned before battle.
func (p *Population) ReleaseInteraction(in Interaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range in.IDs {
		if enc, ok := p.entities[id]; ok && enc.Claim == in.Token {
			p.unlockLocked(enc)
		}
	}
}

func (p *Population) lockLocked(enc *model.Encounter, token uint64) {
	enc.State = model.StateLocked
	enc.Claim = token
	enc.Touch()
}

func (p *Population) unlockLocked(enc *model.Encounter) {
	enc.State = model.StateActive
	enc.Claim = 0
	enc.Touch()
}
