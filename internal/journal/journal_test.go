package journal

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/overworld/internal/model"
)

type panickingRecorder struct{}

func (panickingRecorder) Record(Entry) { panic("disk full") }

func TestEncounterEntry(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	enc := &model.Encounter{
		ID:      42,
		MapID:   10,
		Species: "PIDGEY",
		Level:   7,
		Shiny:   true,
		Tags:    model.TagOutbreak | model.TagPanicShiny,
	}

	e := EncounterEntry(at, KindShinyRevealed, enc)
	assert.Equal(t, Entry{
		At:       at,
		Kind:     KindShinyRevealed,
		MapID:    10,
		EntityID: 42,
		Species:  "PIDGEY",
		Level:    7,
		Shiny:    true,
		Tags:     model.TagOutbreak | model.TagPanicShiny,
	}, e)
}

func TestMemory(t *testing.T) {
	m := NewMemory()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kind := KindSpawned
			if i%2 == 1 {
				kind = KindDespawned
			}
			for range 25 {
				m.Record(Entry{Kind: kind})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, m.Entries(), 200)
	assert.Equal(t, 100, m.Count(KindSpawned))
	assert.Equal(t, 100, m.Count(KindDespawned))
	assert.Zero(t, m.Count(KindPanicStarted))

	entries := m.Entries()
	entries[0].Kind = KindPanicEnded
	assert.Zero(t, m.Count(KindPanicEnded), "Entries returns a copy")
}

func TestTee(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	tee := Tee{a, panickingRecorder{}, Nop{}, b}

	require.NotPanics(t, func() {
		tee.Record(Entry{Kind: KindOutbreakStarted, MapID: 10})
	})
	assert.Equal(t, 1, a.Count(KindOutbreakStarted))
	assert.Equal(t, 1, b.Count(KindOutbreakStarted), "recorders after a panicking one still receive the entry")
}

func TestSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		Safe(panickingRecorder{}, Entry{Kind: KindSpawned})
	})
}
