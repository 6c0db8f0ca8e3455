// entity_test.go - entity pool and broad-phase tests (spec.md §8).

package pixelcore

import "testing"

func newTestStore(cfg StoreConfig) (*Store, *TypeRegistry) {
	types := NewTypeRegistry()
	if cfg.MaxEntities == 0 {
		cfg = DefaultStoreConfig()
	}
	return NewStore(cfg, types, nil), types
}

func TestSpawnAssignsDefaults(t *testing.T) {
	s, types := newTestStore(StoreConfig{})
	ball := types.Register("ball", Handlers{})

	ref, ok := s.Spawn(ball, Vec2{1, 2})
	if !ok {
		t.Fatalf("spawn failed")
	}
	e, ok := s.ByRef(ref)
	if !ok {
		t.Fatalf("spawned entity did not resolve")
	}
	if e.Size != (Vec2{8, 8}) {
		t.Fatalf("size = %v, want (8,8)", e.Size)
	}
	if e.Mass != 1 || e.Gravity != 1 || e.MinSlideNormal != 1 {
		t.Fatalf("unexpected physics defaults: %+v", e)
	}
	if absf(e.MaxGroundNormal-DefaultMaxGroundNormal) > 1e-6 {
		t.Fatalf("max_ground_normal = %v, want ~%v", e.MaxGroundNormal, DefaultMaxGroundNormal)
	}
	if ref.ID == 0 {
		t.Fatalf("spawned entity kept reserved id 0")
	}
}

func TestSpawnFullPoolReturnsFalse(t *testing.T) {
	s, types := newTestStore(StoreConfig{MaxEntities: 2})
	tag := types.Register("thing", Handlers{})

	if _, ok := s.Spawn(tag, Vec2{}); !ok {
		t.Fatalf("first spawn should succeed")
	}
	if _, ok := s.Spawn(tag, Vec2{}); !ok {
		t.Fatalf("second spawn should succeed")
	}
	if _, ok := s.Spawn(tag, Vec2{}); ok {
		t.Fatalf("spawn into a full pool should fail")
	}
}

func TestByRefRejectsStaleReference(t *testing.T) {
	s, types := newTestStore(StoreConfig{MaxEntities: 4})
	tag := types.Register("thing", Handlers{})

	ref, _ := s.Spawn(tag, Vec2{})
	e, _ := s.ByRef(ref)
	s.Kill(e)
	s.Update(1.0 / 60) // drives the swap-remove

	if _, ok := s.ByRef(ref); ok {
		t.Fatalf("a killed and removed entity's old ref should no longer resolve")
	}

	if _, ok := s.ByRef(EntityRefNone); ok {
		t.Fatalf("EntityRefNone (id 0) must never resolve")
	}
}

func TestBroadPhaseDeliversTouchToBothSidesAtMostOnce(t *testing.T) {
	s, types := newTestStore(StoreConfig{MaxEntities: 8})

	var aTouches, bTouches int
	const (
		groupA Group = 1 << 0
		groupB Group = 1 << 1
	)

	tagA := types.Register("a", Handlers{
		Touch: func(s *Store, e, other *Entity) { aTouches++ },
	})
	tagB := types.Register("b", Handlers{
		Touch: func(s *Store, e, other *Entity) { bTouches++ },
	})

	refA, _ := s.Spawn(tagA, Vec2{0, 0})
	refB, _ := s.Spawn(tagB, Vec2{4, 0})

	ea, _ := s.ByRef(refA)
	ea.Size = Vec2{8, 8}
	ea.Group = groupA
	ea.CheckAgainst = groupB

	eb, _ := s.ByRef(refB)
	eb.Size = Vec2{8, 8}
	eb.Group = groupB
	eb.CheckAgainst = GroupNone // only A watches for B

	s.Update(1.0 / 60)

	if aTouches != 1 {
		t.Fatalf("a->b touch count = %d, want 1", aTouches)
	}
	if bTouches != 0 {
		t.Fatalf("b->a touch count = %d, want 0 (b doesn't check_against a's group)", bTouches)
	}
}

func TestByNameLinearScan(t *testing.T) {
	s, types := newTestStore(StoreConfig{MaxEntities: 8})
	tag := types.Register("npc", Handlers{})

	ref, _ := s.Spawn(tag, Vec2{})
	e, _ := s.ByRef(ref)
	e.Name = "guard"

	found, ok := s.ByName("guard")
	if !ok || found != e {
		t.Fatalf("ByName did not find the named entity")
	}
	if _, ok := s.ByName("nobody"); ok {
		t.Fatalf("ByName found a nonexistent name")
	}
}

func TestByProximityFiltersByRadiusAndType(t *testing.T) {
	s, types := newTestStore(StoreConfig{MaxEntities: 8})
	tagA := types.Register("a", Handlers{})
	tagB := types.Register("b", Handlers{})

	center, _ := s.Spawn(tagA, Vec2{100, 100})
	near, _ := s.Spawn(tagA, Vec2{104, 100})
	far, _ := s.Spawn(tagA, Vec2{500, 500})
	wrongType, _ := s.Spawn(tagB, Vec2{104, 100})

	ec, _ := s.ByRef(center)
	found := s.ByProximity(ec, 20, tagA, true)

	hasRef := func(list []*Entity, ref EntityRef) bool {
		for _, e := range list {
			if e.ID == ref.ID {
				return true
			}
		}
		return false
	}

	if !hasRef(found, near) {
		t.Fatalf("expected nearby same-type entity in result")
	}
	if hasRef(found, far) {
		t.Fatalf("far entity should not be in proximity result")
	}
	if hasRef(found, wrongType) {
		t.Fatalf("wrong-type entity should not be in a type-filtered proximity result")
	}
	if hasRef(found, center) {
		t.Fatalf("the query entity itself should be excluded")
	}
}

func TestKillDefersRemovalToNextUpdate(t *testing.T) {
	s, types := newTestStore(StoreConfig{MaxEntities: 4})
	tag := types.Register("thing", Handlers{})

	ref, _ := s.Spawn(tag, Vec2{})
	e, _ := s.ByRef(ref)
	s.Kill(e)

	// Still resolvable until the update pass actually swap-removes it: the
	// slot persists with is_alive == false.
	if e.IsAlive {
		t.Fatalf("killed entity should have IsAlive == false immediately")
	}
	if s.Len() != 1 {
		t.Fatalf("pool length should be unchanged until the next update pass")
	}

	s.Update(1.0 / 60)
	if s.Len() != 0 {
		t.Fatalf("update pass should have swap-removed the dead entity")
	}
}

func TestDamageKillsAtZeroHealth(t *testing.T) {
	s, types := newTestStore(StoreConfig{MaxEntities: 4})
	tag := types.Register("thing", Handlers{})

	ref, _ := s.Spawn(tag, Vec2{})
	e, _ := s.ByRef(ref)
	e.Health = 10

	s.Damage(e, 4)
	if !e.IsAlive || e.Health != 6 {
		t.Fatalf("entity should survive partial damage: health=%d alive=%v", e.Health, e.IsAlive)
	}

	s.Damage(e, 6)
	if e.IsAlive {
		t.Fatalf("entity should die once health reaches 0")
	}
}
