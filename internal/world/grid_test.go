package world

import (
	"testing"

	"github.com/udisondev/overworld/internal/model"
)

func TestGridMap_InBounds(t *testing.T) {
	m := NewGridMap(10, 4, 3, TileGround)

	tests := []struct {
		name string
		pos  model.Position
		want bool
	}{
		{"origin", model.NewPosition(0, 0), true},
		{"last tile", model.NewPosition(3, 2), true},
		{"x overflow", model.NewPosition(4, 0), false},
		{"y overflow", model.NewPosition(0, 3), false},
		{"negative", model.NewPosition(-1, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.InBounds(tt.pos); got != tt.want {
				t.Errorf("InBounds(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestGridMap_SetAndCount(t *testing.T) {
	m := NewGridMap(10, 5, 5, TileGround)
	m.Fill(1, 1, 2, 2, TileGrass)
	m.Set(model.NewPosition(4, 4), TileWater)
	m.Set(model.NewPosition(9, 9), TileWater) // ignored

	if got := m.Count(model.CategoryGrass); got != 4 {
		t.Errorf("Count(grass) = %d, want 4", got)
	}
	if got := m.Count(model.CategoryWater); got != 1 {
		t.Errorf("Count(water) = %d, want 1", got)
	}

	tile, ok := m.At(model.NewPosition(2, 1))
	if !ok || tile != TileGrass {
		t.Errorf("At(2,1) = %v, %v; want grass", tile, ok)
	}
	if _, ok := m.At(model.NewPosition(5, 0)); ok {
		t.Error("At(out of bounds) should report false")
	}
}

func TestObjectIDGenerator(t *testing.T) {
	gen := NewObjectIDGenerator()

	a := gen.NextEncounterID()
	b := gen.NextEncounterID()
	if a == b {
		t.Fatalf("ids must be unique, got %d twice", a)
	}
	if !IsEncounterID(a) || !IsEncounterID(b) {
		t.Errorf("encounter ids %d, %d outside encounter range", a, b)
	}
	if ev := gen.NextEventID(); IsEncounterID(ev) {
		t.Errorf("event id %d inside encounter range", ev)
	}
}
