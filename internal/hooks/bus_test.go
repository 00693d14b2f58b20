package hooks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/overworld/internal/model"
)

func TestBus_DispatchOrder(t *testing.T) {
	b := NewBus()
	var got []string

	b.OnMapActivated(func(id model.MapID) { got = append(got, "map-a") })
	b.OnMapActivated(func(id model.MapID) { got = append(got, "map-b") })
	b.OnFrameTick(func() { got = append(got, "frame") })
	b.OnStep(func() { got = append(got, "step") })
	b.OnMenuClosed(func() { got = append(got, "menu") })

	b.MapActivated(10)
	b.FrameTick()
	b.Step()
	b.MenuClosed()

	assert.Equal(t, []string{"map-a", "map-b", "frame", "step", "menu"}, got)
}

func TestBus_MapPayload(t *testing.T) {
	b := NewBus()
	var seen model.MapID
	b.OnMapActivated(func(id model.MapID) { seen = id })
	b.MapActivated(42)
	assert.Equal(t, model.MapID(42), seen)
}

func TestBus_PanickingListenerIsContained(t *testing.T) {
	b := NewBus()
	calls := 0
	b.OnFrameTick(func() { panic("broken listener") })
	b.OnFrameTick(func() { calls++ })
	b.OnMapActivated(func(model.MapID) { panic("broken listener") })
	b.OnMapActivated(func(model.MapID) { calls++ })

	assert.NotPanics(t, func() {
		b.FrameTick()
		b.MapActivated(10)
	})
	assert.Equal(t, 2, calls)
}

func TestBus_SubscribeDuringEmit(t *testing.T) {
	b := NewBus()
	calls := 0
	b.OnStep(func() {
		b.OnStep(func() { calls++ })
	})

	b.Step()
	assert.Zero(t, calls, "listeners added during emit run from the next emit")
	b.Step()
	assert.Equal(t, 1, calls)
}

func TestBus_NoListeners(t *testing.T) {
	b := NewBus()
	assert.NotPanics(t, func() {
		b.MapActivated(1)
		b.FrameTick()
		b.Step()
		b.MenuClosed()
	})
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "on_map_activated", MapActivated.String())
	assert.Equal(t, "on_frame_tick", FrameTick.String())
	assert.Equal(t, "on_step", Step.String())
	assert.Equal(t, "on_menu_closed", MenuClosed.String())
}
