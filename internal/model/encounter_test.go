package model

import "testing"

func TestTag_Kind(t *testing.T) {
	tests := []struct {
		name string
		tags Tag
		want Kind
	}{
		{"untagged", 0, KindNormal},
		{"fusion", TagFusion, KindFusion},
		{"horde", TagHorde, KindHordeMember},
		{"horde fusion", TagHorde | TagFusion, KindHordeMember},
		{"outbreak", TagOutbreak, KindOutbreak},
		{"outbreak fusion", TagOutbreak | TagFusion, KindOutbreak},
		{"panic shiny", TagOutbreak | TagPanicShiny, KindOutbreakShinyPanic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tags.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTag_Has(t *testing.T) {
	tags := TagOutbreak | TagHorde
	if !tags.Has(TagOutbreak) {
		t.Error("Has(TagOutbreak) = false")
	}
	if !tags.Has(TagOutbreak | TagHorde) {
		t.Error("Has(TagOutbreak|TagHorde) = false")
	}
	if tags.Has(TagOutbreak | TagFusion) {
		t.Error("Has(TagOutbreak|TagFusion) = true, want false")
	}
}

func TestEncounter_State(t *testing.T) {
	tests := []struct {
		state            State
		wantLive         bool
		wantInteractable bool
	}{
		{StateActive, true, true},
		{StateLocked, true, false},
		{StateDestroyed, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			e := Encounter{State: tt.state}
			if got := e.Live(); got != tt.wantLive {
				t.Errorf("Live() = %v, want %v", got, tt.wantLive)
			}
			if got := e.Interactable(); got != tt.wantInteractable {
				t.Errorf("Interactable() = %v, want %v", got, tt.wantInteractable)
			}
		})
	}
}

func TestEncounter_FusionSpecies(t *testing.T) {
	f := &Fusion{Body: "ODDISH", Head: "ZUBAT"}
	e := Encounter{Species: f.Species(), Fusion: f}

	if e.Species != "ODDISH/ZUBAT" {
		t.Errorf("Species = %q, want ODDISH/ZUBAT", e.Species)
	}
	if got := e.BehaviorSpecies(); got != "ZUBAT" {
		t.Errorf("BehaviorSpecies() = %q, want ZUBAT", got)
	}
	if got := e.VisualSpecies(); got != "ODDISH" {
		t.Errorf("VisualSpecies() = %q, want ODDISH", got)
	}

	e.Shiny = true
	if got := e.VisualSpecies(); got != "ODDISH/ZUBAT" {
		t.Errorf("VisualSpecies() shiny = %q, want ODDISH/ZUBAT", got)
	}

	plain := Encounter{Species: "PIDGEY"}
	if plain.BehaviorSpecies() != "PIDGEY" || plain.VisualSpecies() != "PIDGEY" {
		t.Errorf("plain species = %q/%q", plain.BehaviorSpecies(), plain.VisualSpecies())
	}
}

func TestEncounter_Touch(t *testing.T) {
	var e Encounter
	e.Touch()
	e.Touch()
	if e.Revision != 2 {
		t.Errorf("Revision = %d, want 2", e.Revision)
	}
}
