// Package hooks is the engine lifecycle listener registry.
//
// The engine emits events; subscribers register typed callbacks. Emit
// snapshots the listener list under a read lock and calls listeners outside
// it, so a listener may subscribe further listeners. A panicking listener is
// logged and skipped; the remaining listeners still run.
package hooks

import (
	"log/slog"
	"sync"

	"github.com/udisondev/overworld/internal/model"
)

// Event identifies a lifecycle event.
type Event uint8

const (
	MapActivated Event = iota
	FrameTick
	Step
	MenuClosed
)

// String returns event name.
func (e Event) String() string {
	switch e {
	case MapActivated:
		return "on_map_activated"
	case FrameTick:
		return "on_frame_tick"
	case Step:
		return "on_step"
	default:
		return "on_menu_closed"
	}
}

// MapFunc handles MapActivated.
type MapFunc func(mapID model.MapID)

// Func handles events without payload.
type Func func()

// Bus dispatches engine events to registered listeners. Safe for concurrent use.
type Bus struct {
	mu           sync.RWMutex
	onMap        []MapFunc
	onFrame      []Func
	onStep       []Func
	onMenuClosed []Func
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// OnMapActivated registers fn for map activation.
func (b *Bus) OnMapActivated(fn MapFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onMap = append(b.onMap, fn)
}

// OnFrameTick registers fn for every engine frame.
func (b *Bus) OnFrameTick(fn Func) {
	b.subscribe(FrameTick, fn)
}

// OnStep registers fn for every completed player step.
func (b *Bus) OnStep(fn Func) {
	b.subscribe(Step, fn)
}

// OnMenuClosed registers fn for the settings menu closing.
func (b *Bus) OnMenuClosed(fn Func) {
	b.subscribe(MenuClosed, fn)
}

func (b *Bus) subscribe(ev Event, fn Func) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch ev {
	case FrameTick:
		b.onFrame = append(b.onFrame, fn)
	case Step:
		b.onStep = append(b.onStep, fn)
	case MenuClosed:
		b.onMenuClosed = append(b.onMenuClosed, fn)
	}
}

// MapActivated emits MapActivated.
func (b *Bus) MapActivated(mapID model.MapID) {
	b.mu.RLock()
	list := b.onMap
	b.mu.RUnlock()

	for _, fn := range list {
		guard(MapActivated, func() { fn(mapID) })
	}
}

// FrameTick emits FrameTick.
func (b *Bus) FrameTick() {
	b.emit(FrameTick)
}

// Step emits Step.
func (b *Bus) Step() {
	b.emit(Step)
}

// MenuClosed emits MenuClosed.
func (b *Bus) MenuClosed() {
	b.emit(MenuClosed)
}

func (b *Bus) emit(ev Event) {
	b.mu.RLock()
	var list []Func
	switch ev {
	case FrameTick:
		list = b.onFrame
	case Step:
		list = b.onStep
	case MenuClosed:
		list = b.onMenuClosed
	}
	b.mu.RUnlock()

	for _, fn := range list {
		guard(ev, fn)
	}
}

func guard(ev Event, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("hook listener panicked", "event", ev, "panic", r)
		}
	}()
	fn()
}
