// physics_test.go - integration, restitution and pair-separation tests
// (spec.md §8, plus the falling-block and slope-slide end-to-end scenarios).

package pixelcore

import (
	"math"
	"testing"
)

func TestNoGravityNoFrictionNoAccelExactIntegration(t *testing.T) {
	s, types := newTestStore(StoreConfig{MaxEntities: 4, Gravity: 0})
	tag := types.Register("thing", Handlers{})

	ref, _ := s.Spawn(tag, Vec2{10, 20})
	e, _ := s.ByRef(ref)
	e.PhysicsMode = PhysicsMove
	e.Vel = Vec2{3, -4}
	e.Gravity = 0

	const dt = 1.0 / 60
	s.Update(dt)

	want := Vec2{10 + 3*dt, 20 - 4*dt}
	if absf(e.Pos.X-want.X) > 1e-5 || absf(e.Pos.Y-want.Y) > 1e-5 {
		t.Fatalf("pos = %v, want %v", e.Pos, want)
	}
	if e.Vel != (Vec2{3, -4}) {
		t.Fatalf("velocity should be unchanged with zero accel/friction/gravity, got %v", e.Vel)
	}
}

func TestRestitutionOneBouncePreservesSpeed(t *testing.T) {
	m := NewTileMap(10, 10, 8, nil)
	m.Tiles[5*10+0] = 1 // full tile at (0,5) -> pixel y in [40,48)

	s, types := newTestStore(StoreConfig{MaxEntities: 4, Gravity: 0, MinBounceVelocity: 10})
	tag := types.Register("ball", Handlers{})
	s.CollisionMap = m

	// Bottom edge at 39: one tick at 100 px/s crosses into the tile at 40.
	ref, _ := s.Spawn(tag, Vec2{0, 31})
	e, _ := s.ByRef(ref)
	e.Size = Vec2{8, 8}
	e.PhysicsMode = PhysicsWorld
	e.Gravity = 0
	e.Restitution = 1
	e.Vel = Vec2{0, 100} // well above the bounce threshold

	preSpeed := e.Vel.Len()
	s.Update(1.0 / 60)
	postSpeed := e.Vel.Len()

	if math.Abs(float64(preSpeed-postSpeed)) > 1e-2 {
		t.Fatalf("speed not preserved across restitution=1 bounce: pre=%v post=%v", preSpeed, postSpeed)
	}
	if e.Vel.Y >= 0 {
		t.Fatalf("normal component of velocity should have reversed sign, got vel=%v", e.Vel)
	}
}

func TestEqualMassPairSeparatesByFullOverlapOnMinAxis(t *testing.T) {
	s, types := newTestStore(StoreConfig{MaxEntities: 4, Gravity: 0, MinBounceVelocity: 1e6})
	tag := types.Register("box", Handlers{})

	// Overlap on x is 2 (smaller), overlap on y is 8 (larger, since they're
	// fully aligned vertically) -> x is the min-overlap (separation) axis.
	refA, _ := s.Spawn(tag, Vec2{0, 0})
	refB, _ := s.Spawn(tag, Vec2{6, 0})

	a, _ := s.ByRef(refA)
	b, _ := s.ByRef(refB)
	a.Size, b.Size = Vec2{8, 8}, Vec2{8, 8}
	a.PhysicsMode, b.PhysicsMode = PhysicsActive, PhysicsActive
	a.Mass, b.Mass = 1, 1

	s.Update(1.0 / 60)

	gap := b.Pos.X - (a.Pos.X + a.Size.X)
	if math.Abs(float64(gap)) > 1e-2 {
		t.Fatalf("expected entities to no longer overlap on x after separation, gap=%v", gap)
	}
	totalShift := (0 - a.Pos.X) + (b.Pos.X - 6)
	if math.Abs(float64(totalShift-2)) > 1e-2 {
		t.Fatalf("combined x displacement = %v, want ~2 (the full initial overlap)", totalShift)
	}
}

func TestFallingBlockLandsOnFullTile(t *testing.T) {
	m := NewTileMap(10, 10, 8, nil)
	m.Tiles[5*10+0] = 1 // full tile at (0,5), pixel y in [40,48)

	// Global gravity in px/s^2; the entity's own gravity factor is 1.
	s, types := newTestStore(StoreConfig{MaxEntities: 4, Gravity: 240, MinBounceVelocity: 10})
	tag := types.Register("block", Handlers{})
	s.CollisionMap = m

	ref, _ := s.Spawn(tag, Vec2{0, 0})
	e, _ := s.ByRef(ref)
	e.Size = Vec2{8, 8}
	e.PhysicsMode = PhysicsWorld
	e.Gravity = 1
	e.Vel = Vec2{}

	const dt = 1.0 / 60
	for i := 0; i < 60; i++ {
		s.Update(dt)
	}

	if !e.OnGround {
		t.Fatalf("expected on_ground == true after landing")
	}
	if math.Abs(float64(e.Pos.Y-32)) > 1e-2 {
		t.Fatalf("pos.y = %v, want 32 (40 - size.y)", e.Pos.Y)
	}
}

func TestSlopeSlideProgressesMonotonically(t *testing.T) {
	m := NewTileMap(10, 10, 8, nil)
	m.Tiles[5*10+0] = 2 // 45 degree NE slope at (0,5)

	// Global gravity in px/s^2; the entity's own gravity factor is 1.
	s, types := newTestStore(StoreConfig{MaxEntities: 4, Gravity: 240, MinBounceVelocity: 10})
	tag := types.Register("slider", Handlers{})
	s.CollisionMap = m

	ref, _ := s.Spawn(tag, Vec2{0, 0})
	e, _ := s.ByRef(ref)
	e.Size = Vec2{8, 8}
	e.PhysicsMode = PhysicsWorld
	e.Gravity = 1
	e.Restitution = 0
	e.MinSlideNormal = 0.999

	const dt = 1.0 / 60
	var landed bool
	var lastX float32
	var sawMonotonic bool
	var dir float32

	for i := 0; i < 180; i++ {
		s.Update(dt)
		if !landed {
			if e.OnGround {
				landed = true
				lastX = e.Pos.X
			}
			continue
		}
		if dir == 0 && e.Pos.X != lastX {
			dir = signf(e.Pos.X - lastX)
		}
		if dir != 0 {
			delta := (e.Pos.X - lastX) * dir
			if delta < -1e-4 {
				t.Fatalf("pos.x moved against the established slide direction at tick %d", i)
			}
			if delta > 1e-4 {
				sawMonotonic = true
			}
		}
		lastX = e.Pos.X
	}

	if !landed {
		t.Fatalf("entity never registered on_ground on the slope")
	}
	if !sawMonotonic {
		t.Fatalf("expected strictly monotonic x movement along the slope tangent after landing")
	}
}
