// engine_test.go - scene switch and time accounting (C6).

package pixelcore

import "testing"

func newTestEngine() (*Engine, *TypeRegistry) {
	types := NewTypeRegistry()
	cfg := DefaultConfig()
	cfg.HunkSize = 1 << 16
	cfg.MaxEntities = 16
	return NewEngine(cfg, types), types
}

func TestRunFrameClampsDeltaToMaxTick(t *testing.T) {
	eng, _ := newTestEngine()
	updates := 0
	eng.SetScene(&Scene{Update: func(e *Engine) { updates++ }})

	eng.RunFrame(0)
	eng.RunFrame(10) // a 10s stall must clamp to MaxTick, not blow up physics

	if eng.Tick != DefaultMaxTick {
		t.Fatalf("tick = %v, want clamped to %v", eng.Tick, DefaultMaxTick)
	}
	if updates != 2 {
		t.Fatalf("expected 2 update dispatches, got %d", updates)
	}
}

func TestSceneSwitchIsDeferredToNextFrame(t *testing.T) {
	eng, _ := newTestEngine()
	var activeScene string

	sceneA := &Scene{Update: func(e *Engine) { activeScene = "a" }}
	sceneB := &Scene{Update: func(e *Engine) { activeScene = "b" }}

	eng.SetScene(sceneA)
	eng.RunFrame(0)
	if activeScene != "a" {
		t.Fatalf("expected scene a active, got %q", activeScene)
	}

	eng.SetScene(sceneB)
	// Switch must not happen until the NEXT RunFrame call.
	if eng.scene != sceneA {
		t.Fatalf("scene swapped before the next frame boundary")
	}

	eng.RunFrame(1.0 / 60)
	if activeScene != "b" {
		t.Fatalf("expected scene b active after the next frame, got %q", activeScene)
	}
}

func TestSceneSwitchResetsEntitiesAndTime(t *testing.T) {
	eng, types := newTestEngine()

	sceneA := &Scene{Init: func(e *Engine) {
		e.Store.Spawn(types.mustRegisterTestType(), Vec2{1, 1})
	}}
	eng.SetScene(sceneA)
	eng.RunFrame(0)
	eng.RunFrame(1)

	if eng.Store.Len() != 1 {
		t.Fatalf("expected 1 entity spawned in scene a, got %d", eng.Store.Len())
	}
	if eng.Time == 0 {
		t.Fatalf("expected scene a's clock to have advanced")
	}

	sceneB := &Scene{}
	eng.SetScene(sceneB)
	eng.RunFrame(2)

	if eng.Store.Len() != 0 {
		t.Fatalf("expected entity store to be cleared on scene switch, got %d entities", eng.Store.Len())
	}
	if eng.Frame != 1 {
		t.Fatalf("expected frame counter reset to 1 on the switch frame, got %d", eng.Frame)
	}
}

// mustRegisterTestType registers a no-op entity type once per registry,
// for tests that just need a live entity to exist.
func (r *TypeRegistry) mustRegisterTestType() EntityType {
	if t, ok := r.ByName("test-entity"); ok {
		return t
	}
	return r.Register("test-entity", Handlers{})
}
