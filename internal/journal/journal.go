// Package journal defines the encounter lifecycle record stream.
//
// The core emits entries for every spawn, despawn and outbreak transition.
// Recorders must not block: the core calls them from the frame loop.
package journal

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/overworld/internal/model"
)

// Kind identifies what happened.
type Kind string

const (
	KindSpawned           Kind = "spawned"
	KindDespawned         Kind = "despawned"
	KindShinyRevealed     Kind = "shiny_revealed"
	KindOutbreakScheduled Kind = "outbreak_scheduled"
	KindOutbreakStarted   Kind = "outbreak_started"
	KindOutbreakEnded     Kind = "outbreak_ended"
	KindPanicStarted      Kind = "panic_started"
	KindPanicEnded        Kind = "panic_ended"
)

// Entry is a single journal record.
type Entry struct {
	At       time.Time
	Kind     Kind
	MapID    model.MapID
	EntityID model.EntityID
	Species  model.Species
	Level    int
	Shiny    bool
	Tags     model.Tag
	Outcome  string
	Episode  uuid.UUID // outbreak episode, uuid.Nil outside outbreaks
	Count    int       // entities affected by sweeps
}

// EncounterEntry builds an entry describing an encounter entity.
func EncounterEntry(at time.Time, kind Kind, e *model.Encounter) Entry {
	return Entry{
		At:       at,
		Kind:     kind,
		MapID:    e.MapID,
		EntityID: e.ID,
		Species:  e.Species,
		Level:    e.Level,
		Shiny:    e.Shiny,
		Tags:     e.Tags,
	}
}

// Recorder receives journal entries.
type Recorder interface {
	Record(e Entry)
}

// Safe hands e to r, swallowing a panicking recorder.
func Safe(r Recorder, e Entry) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("journal recorder panicked", "kind", e.Kind, "panic", rec)
		}
	}()
	r.Record(e)
}

// Nop discards entries.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(Entry) {}

// Memory keeps entries in memory. Safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemory creates an empty in-memory recorder.
func NewMemory() *Memory {
	return &Memory{}
}

// Record implements Recorder.
func (m *Memory) Record(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
}

// Entries returns copy of recorded entries.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Count returns number of entries of the given kind.
func (m *Memory) Count(kind Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Tee fans entries out to several recorders. A panicking recorder does
// not starve the ones after it.
type Tee []Recorder

// Record implements Recorder.
func (t Tee) Record(e Entry) {
	for _, r := range t {
		Safe(r, e)
	}
}
