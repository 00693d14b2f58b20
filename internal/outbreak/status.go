package outbreak

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/udisondev/overworld/internal/config"
	"github.com/udisondev/overworld/internal/model"
)

// Status is a point-in-time snapshot for debug output and reports.
type Status struct {
	Phase          Phase
	MapID          model.MapID
	Episode        uuid.UUID
	Remaining      time.Duration // until start when scheduled, until end when active
	Panic          bool
	PanicRemaining time.Duration
	SameSpecies    bool
	Species        map[model.Category]model.Species
	ShinyRate      int
	Cooldown       time.Duration // until the next outbreak may trigger
}

// Status returns the current snapshot.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()

	st := Status{
		Phase:       c.phase,
		MapID:       c.mapID,
		Episode:     c.episode,
		SameSpecies: c.tun.Bool(config.KeyOutbreakSameSpecies),
		Species:     maps.Clone(c.species),
		ShinyRate:   c.tun.Int(config.KeyOutbreakShinyRate),
		Cooldown:    max(c.nextAllowed.Sub(now), 0),
	}
	switch c.phase {
	case Scheduled:
		st.Remaining = max(c.startAt.Sub(now), 0)
	case Active:
		st.Remaining = max(c.endsAt.Sub(now), 0)
		if c.panic {
			st.Panic = true
			st.PanicRemaining = max(c.panicEndsAt.Sub(now), 0)
		}
	}
	return st
}

// String renders the status as one line, e.g.
//
//	active on map 10: 9 minutes left, variety random, shiny 1/1
func (s Status) String() string {
	now := time.Now()
	var b strings.Builder

	switch s.Phase {
	case Idle:
		b.WriteString("idle")
		if s.Cooldown > 0 {
			fmt.Fprintf(&b, ", next outbreak possible %s", humanize.RelTime(now.Add(s.Cooldown), now, "ago", "from now"))
		}
		return b.String()
	case Scheduled:
		fmt.Fprintf(&b, "scheduled on map %d, starts %s", s.MapID, humanize.RelTime(now.Add(s.Remaining), now, "ago", "from now"))
		return b.String()
	}

	fmt.Fprintf(&b, "active on map %d: %s left", s.MapID, strings.TrimSuffix(humanize.RelTime(now, now.Add(s.Remaining), "", ""), " "))
	if s.SameSpecies && len(s.Species) > 0 {
		cats := slices.Sorted(maps.Keys(s.Species))
		parts := make([]string, 0, len(cats))
		for _, cat := range cats {
			parts = append(parts, fmt.Sprintf("%s=%s", cat, s.Species[cat]))
		}
		fmt.Fprintf(&b, ", variety same (%s)", strings.Join(parts, " "))
	} else {
		b.WriteString(", variety random")
	}
	fmt.Fprintf(&b, ", shiny 1/%s", humanize.Comma(int64(s.ShinyRate)))
	if s.Panic {
		fmt.Fprintf(&b, ", SHINY PANIC %s left", strings.TrimSuffix(humanize.RelTime(now, now.Add(s.PanicRemaining), "", ""), " "))
	}
	return b.String()
}
