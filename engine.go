// engine.go - scene switch, time accounting, per-frame arena scope (C6).
//
// Grounded on original_source/src/engine.c: engine_update's clamp-and-
// accumulate time step, the alloc_pool()-scoped update/draw pair, and the
// coarse scene-switch reset (bump arena rewound to its pre-scene mark;
// entity store, maps, time, frame count and viewport cleared; textures and
// sound are not rewound). Renderer and platform are out-of-scope
// collaborators per spec.md §1 — engine.go only calls the small capability
// interfaces they expose.

package pixelcore

import "log"

// DefaultMaxTick clamps a frame's real time delta (spec.md §6).
const DefaultMaxTick = 0.1

// DefaultGravity is the global gravity multiplier applied to every
// entity's own gravity factor.
const DefaultGravity = 1.0

// DefaultMaxBackgroundMaps bounds how many background maps a scene may add.
const DefaultMaxBackgroundMaps = 4

// Scene is the per-game hook set dispatched once per frame. All fields are
// optional; a nil Update/Draw falls through to BaseUpdate/BaseDraw.
type Scene struct {
	Init    func(eng *Engine)
	Update  func(eng *Engine)
	Draw    func(eng *Engine)
	Cleanup func(eng *Engine)
}

// Renderer is the minimal capability surface the engine drives per frame;
// concrete backends (software blitter, GPU atlas uploader) live outside
// this package per spec.md §1.
type Renderer interface {
	FrameBegin()
	FrameEnd()
}

// Config carries the engine-wide options from spec.md §6.
type Config struct {
	HunkSize               int
	MaxTempObjects         int
	MaxEntities            int
	SweepAxis              int
	MinBounceVelocity      float32
	MaxTick                float32
	Gravity                float32
	MaxUncompressedSamples int
	MaxSources             int
	MaxVoices              int
	OutSampleRate          int
}

// DefaultConfig returns the spec.md §6 defaults.
func DefaultConfig() Config {
	return Config{
		HunkSize:               DefaultHunkSize,
		MaxTempObjects:         DefaultMaxTempObjects,
		MaxEntities:            DefaultMaxEntities,
		SweepAxis:              0,
		MinBounceVelocity:      10.0,
		MaxTick:                DefaultMaxTick,
		Gravity:                DefaultGravity,
		MaxUncompressedSamples: DefaultMaxUncompressedSamples,
		MaxSources:             DefaultMaxSources,
		MaxVoices:              DefaultMaxVoices,
		OutSampleRate:          44100,
	}
}

// Engine is the top-level runtime context: time accounting, entity store,
// hunk, mixer, and the active/background maps. Exposed as an explicit
// value (spec.md §9) rather than ambient module-level state, so tests can
// run multiple engines side by side.
type Engine struct {
	Config Config

	TimeReal  float64 // wall-clock seconds since program start
	Time      float64 // game time seconds since scene start
	TimeScale float64
	Tick      float32 // this frame's dt
	Frame     uint64

	CollisionMap   *TileMap
	BackgroundMaps []*TileMap
	Gravity        float32
	Viewport       Vec2

	Hunk  *Hunk
	Store *Store
	Mixer *Mixer
	Types *TypeRegistry

	Renderer Renderer

	scene     *Scene
	sceneNext *Scene
	running   bool

	initBumpMark Mark

	Perf struct {
		Entities  int
		Checks    int
		DrawCalls int
	}
}

// NewEngine wires up a hunk, entity store, type registry and mixer from
// cfg, matching engine_init's one-time subsystem setup.
func NewEngine(cfg Config, types *TypeRegistry) *Engine {
	hunk := NewHunk(cfg.HunkSize, cfg.MaxTempObjects)

	storeCfg := StoreConfig{
		MaxEntities:       cfg.MaxEntities,
		SweepAxis:         cfg.SweepAxis,
		MinBounceVelocity: cfg.MinBounceVelocity,
		Gravity:           cfg.Gravity,
	}

	eng := &Engine{
		Config:    cfg,
		TimeScale: 1,
		Gravity:   cfg.Gravity,
		Hunk:      hunk,
		Store:     NewStore(storeCfg, types, hunk),
		Mixer:     NewMixer(cfg.MaxVoices, cfg.OutSampleRate),
		Types:     types,
	}
	eng.initBumpMark = hunk.BumpMark()
	return eng
}

// SetScene queues scene to become active at the start of the next frame
// (safe to call mid-frame).
func (e *Engine) SetScene(scene *Scene) {
	e.sceneNext = scene
}

// IsRunning reports whether a scene is active (false during the swap that
// happens at the start of a frame when a scene switch was requested).
func (e *Engine) IsRunning() bool { return e.running }

// AddBackgroundMap registers a map for scene_base_draw to blit; fatal once
// DefaultMaxBackgroundMaps is exceeded (a scene-authoring error).
func (e *Engine) AddBackgroundMap(m *TileMap) {
	if len(e.BackgroundMaps) >= DefaultMaxBackgroundMaps {
		log.Fatalf("pixelcore: max background maps (%d) reached", DefaultMaxBackgroundMaps)
	}
	e.BackgroundMaps = append(e.BackgroundMaps, m)
}

// SetCollisionMap sets the map entities with PhysicsWorld trace against.
func (e *Engine) SetCollisionMap(m *TileMap) {
	e.CollisionMap = m
	e.Store.CollisionMap = m
}

// RunFrame advances the engine by one frame, given the current wall-clock
// time in seconds. This mirrors engine_update: scene swap (with the coarse
// state reset) happens first, then time accounting, then the frame's
// update/draw pair inside a bump-mark scope that's unwound before
// returning.
func (e *Engine) RunFrame(realNow float64) {
	if e.sceneNext != nil {
		e.running = false
		if e.scene != nil && e.scene.Cleanup != nil {
			e.scene.Cleanup(e)
		}

		e.Hunk.BumpReset(e.initBumpMark)
		e.Store.Reset()

		e.BackgroundMaps = nil
		e.CollisionMap = nil
		e.Time = 0
		e.Frame = 0
		e.Viewport = Vec2{}

		e.scene = e.sceneNext
		if e.scene.Init != nil {
			e.scene.Init(e)
		}
		e.sceneNext = nil
	}
	e.running = true

	if e.scene == nil {
		log.Fatalf("pixelcore: no scene set")
	}

	realDelta := realNow - e.TimeReal
	e.TimeReal = realNow
	tick := float32(realDelta * e.TimeScale)
	if tick > e.Config.MaxTick {
		tick = e.Config.MaxTick
	}
	e.Tick = tick
	e.Time += float64(tick)
	e.Frame++

	frameMark := e.Hunk.BumpMark()

	if e.scene.Update != nil {
		e.scene.Update(e)
	} else {
		e.BaseUpdate()
	}

	if e.Renderer != nil {
		e.Renderer.FrameBegin()
	}

	if e.scene.Draw != nil {
		e.scene.Draw(e)
	} else {
		e.BaseDraw()
	}

	if e.Renderer != nil {
		e.Renderer.FrameEnd()
	}

	e.Hunk.BumpReset(frameMark)
	e.Hunk.TempAllocCheck()

	e.Perf.Entities = e.Store.Len()
}

// BaseUpdate runs the default per-frame entity update pass.
func (e *Engine) BaseUpdate() {
	e.Store.Update(e.Tick)
}

// BaseDraw runs the default per-frame draw pass: entities are drawn through
// the store at the current viewport. The loops over background and
// foreground maps before and after it draw nothing.
func (e *Engine) BaseDraw() {
	for _, m := range e.BackgroundMaps {
		if !m.Foreground {
			_ = m // map_draw is an out-of-scope renderer/loader concern (spec.md §1)
		}
	}

	e.Store.Draw(e.Viewport)

	for _, m := range e.BackgroundMaps {
		if m.Foreground {
			_ = m
		}
	}
}
