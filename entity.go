// entity.go - entity pool data model and generational references (C3).
//
// Grounded on original_source/src/entity.h and entity.c: a fixed pool of
// entities in a pre-allocated storage array plus a parallel pointer array
// used for swap-remove, each slot tagged with a 16-bit generational id
// handed out by a process-wide counter.

package pixelcore

import "log"

// EntityType is a closed, game-defined tag. Unlike the original's X-macro
// enum expansion, types here are registered at runtime into a TypeRegistry
// (entity_dispatch.go); EntityType is just the resulting small integer.
type EntityType int

// Physics is the per-entity collision/movement flag set.
type Physics uint8

const (
	PhysicsNone Physics = 0

	PhysicsMove Physics = 1 << 0

	collidesWorld Physics = 1 << 1
	collidesLite  Physics = 1 << 4
	collidesPassive Physics = 1 << 5
	collidesActive  Physics = 1 << 6
	collidesFixed   Physics = 1 << 7

	PhysicsWorld   = PhysicsMove | collidesWorld
	PhysicsLite    = PhysicsWorld | collidesLite
	PhysicsPassive = PhysicsWorld | collidesPassive
	PhysicsActive  = PhysicsWorld | collidesActive
	PhysicsFixed   = PhysicsWorld | collidesFixed
)

// Group is a bitmask over game-defined entity groups (ent.group /
// ent.check_against). The core doesn't interpret bit meaning; it's compared
// for touch() gating only.
type Group uint32

const GroupNone Group = 0

// MaxEntitySize bounds proximity/location binary search backtrack distance
// (original ENTITY_MAX_SIZE).
const MaxEntitySize = 64

// DefaultMaxEntities is the default pool capacity (spec.md §6).
const DefaultMaxEntities = 1024

// DefaultMaxGroundNormal approximates cos(46 degrees), matching the
// original's hardcoded spawn default.
const DefaultMaxGroundNormal = 0.69

// EntityRef is a (id, index) pair. Resolving a stale ref (one whose slot's
// generational id no longer matches) returns false rather than a dangling
// entity.
type EntityRef struct {
	ID    uint16
	Index uint16
}

// EntityRefNone always fails to resolve.
var EntityRefNone = EntityRef{}

// Entity is one pool slot. Geometry, physics classification and
// type-specific extension payload per spec.md §3.
type Entity struct {
	ID      uint16
	IsAlive bool
	Type    EntityType

	Pos, Size, Vel, Accel, Friction, Offset Vec2
	DrawOrder                               int

	PhysicsMode  Physics
	Group        Group
	CheckAgainst Group

	Mass            float32
	Restitution     float32
	Gravity         float32
	MaxGroundNormal float32
	MinSlideNormal  float32
	Health          int
	OnGround        bool

	Name string // arena-owned in the original; here an ordinary Go string

	// Ext is the type-specific extension payload, opaque to the core.
	Ext any
}

// Ref returns the (id, index) reference for an entity currently at index i.
func (e *Entity) Ref(index int) EntityRef {
	return EntityRef{ID: e.ID, Index: uint16(index)}
}

// Center returns the entity's AABB midpoint.
func (e *Entity) Center() Vec2 {
	return Vec2{e.Pos.X + e.Size.X*half, e.Pos.Y + e.Size.Y*half}
}

// Dist returns the distance between two entities' centers.
func (e *Entity) Dist(other *Entity) float32 {
	return e.Center().Sub(other.Center()).Len()
}

// Angle returns the angle from e to other's center, in radians, via atan2.
func (e *Entity) Angle(other *Entity) float32 {
	d := other.Center().Sub(e.Center())
	return atan2f(d.Y, d.X)
}

// Store is the fixed-capacity entity pool (entities.c's global arrays made
// an explicit value instead of module-level state, per spec.md §9).
type Store struct {
	slots    []Entity  // fixed-size storage, indexed by slot
	alive    []uint16  // pointer array of slot indices, live prefix [0:aliveLen]
	aliveLen int

	nextID uint16

	tick float32 // dt of the tick currently being processed

	sweepAxis int // 0 = x, 1 = y

	types *TypeRegistry

	hunk *Hunk

	config StoreConfig

	// CollisionMap is the tile map entities with PhysicsWorld trace
	// against; nil means no world collision (entities just integrate
	// position by their velocity step).
	CollisionMap *TileMap
}

// StoreConfig carries the engine-wide options from spec.md §6 relevant to
// the entity store and its physics.
type StoreConfig struct {
	MaxEntities       int
	SweepAxis         int // 0 = x, 1 = y
	MinBounceVelocity float32
	Gravity           float32
}

// DefaultStoreConfig returns the spec.md §6 defaults.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		MaxEntities:       DefaultMaxEntities,
		SweepAxis:         0,
		MinBounceVelocity: 10.0,
		Gravity:           1.0,
	}
}

// NewStore allocates a pool of cfg.MaxEntities slots, dispatching types'
// load() hooks once (spec.md §4.3: "load runs once at program init for
// every declared type").
func NewStore(cfg StoreConfig, types *TypeRegistry, hunk *Hunk) *Store {
	if cfg.MaxEntities <= 0 {
		cfg.MaxEntities = DefaultMaxEntities
	}
	s := &Store{
		slots:     make([]Entity, cfg.MaxEntities),
		alive:     make([]uint16, cfg.MaxEntities),
		sweepAxis: cfg.SweepAxis,
		types:     types,
		hunk:      hunk,
		config:    cfg,
	}
	for i := range s.alive {
		s.alive[i] = uint16(i)
	}
	for _, h := range types.handlers {
		if h.Load != nil {
			h.Load(s)
		}
	}
	return s
}

// Reset clears every live entity and the collision map, leaving the slot
// pool, sweep axis and registered types untouched. This mirrors
// entities_reset, not entities_init: a scene switch must not re-dispatch
// types' load() hooks, since those run exactly once at program start
// (spec.md §4.3).
func (s *Store) Reset() {
	for i := range s.alive {
		s.alive[i] = uint16(i)
	}
	s.aliveLen = 0
	s.nextID = 0
	s.CollisionMap = nil
}

// Len returns the number of currently-live entities.
func (s *Store) Len() int { return s.aliveLen }

// At returns the live entity at sweep-sorted position i, for i < Len().
func (s *Store) At(i int) *Entity {
	return &s.slots[s.alive[i]]
}

func (s *Store) sweepPos(e *Entity) float32 {
	if s.sweepAxis == 1 {
		return e.Pos.Y
	}
	return e.Pos.X
}

func (s *Store) sweepSize(e *Entity) float32 {
	if s.sweepAxis == 1 {
		return e.Size.Y
	}
	return e.Size.X
}

// Spawn allocates a new entity slot with spec.md §3 defaults, stamping a
// fresh generational id and dispatching the type's init() hook. Returns
// EntityRefNone, false if the pool is full (soft failure per spec.md §7).
func (s *Store) Spawn(t EntityType, pos Vec2) (EntityRef, bool) {
	if s.aliveLen >= len(s.slots) {
		return EntityRefNone, false
	}

	slotIdx := s.alive[s.aliveLen]
	e := &s.slots[slotIdx]
	*e = Entity{}

	s.nextID++
	if s.nextID == 0 {
		s.nextID = 1 // id 0 is reserved and never resolves
	}

	e.ID = s.nextID
	e.IsAlive = true
	e.Type = t
	e.Pos = pos
	e.Size = Vec2{8, 8}
	e.Mass = 1
	e.Gravity = 1
	e.MaxGroundNormal = DefaultMaxGroundNormal
	e.MinSlideNormal = 1

	s.aliveLen++

	if h, ok := s.types.handlers[t]; ok && h.Init != nil {
		h.Init(s, e)
	}

	return e.Ref(int(slotIdx)), true
}

// ByRef resolves a reference; returns nil, false if the slot's generational
// id no longer matches (the entity is dead or the slot was reused).
func (s *Store) ByRef(ref EntityRef) (*Entity, bool) {
	if ref.ID == 0 || int(ref.Index) >= len(s.slots) {
		return nil, false
	}
	e := &s.slots[ref.Index]
	if e.ID != ref.ID || !e.IsAlive {
		return nil, false
	}
	return e, true
}

// indexOfSlot returns the position of slotIdx within the alive pointer
// array's live prefix, or -1 if not currently live.
func (s *Store) indexOfSlot(slotIdx uint16) int {
	for i := 0; i < s.aliveLen; i++ {
		if s.alive[i] == slotIdx {
			return i
		}
	}
	return -1
}

// ByName performs the documented O(N) linear scan (spec.md §4.3).
func (s *Store) ByName(name string) (*Entity, bool) {
	for i := 0; i < s.aliveLen; i++ {
		e := s.At(i)
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// ByType returns a newly appended (heap-allocated) slice of live entities of
// the given type, in current sweep order.
func (s *Store) ByType(t EntityType) []*Entity {
	var out []*Entity
	for i := 0; i < s.aliveLen; i++ {
		if e := s.At(i); e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// ByProximity returns live entities (other than e itself) within radius of
// e's center, optionally filtered by type.
func (s *Store) ByProximity(e *Entity, radius float32, t EntityType, matchType bool) []*Entity {
	return s.byLocation(e.Center(), radius, t, matchType, e)
}

// ByLocation returns live entities within radius of pos, optionally
// filtered by type and excluding a given entity (pass nil for none).
// Implements the binary-search-then-forward-scan sweep described in
// spec.md §4.3: the search window is [pos.axis-radius, pos.axis+radius],
// backed off by MaxEntitySize on the low end so an overlapping entity whose
// own position is earlier on the axis than the window isn't missed.
func (s *Store) ByLocation(pos Vec2, radius float32, t EntityType, matchType bool, exclude *Entity) []*Entity {
	return s.byLocation(pos, radius, t, matchType, exclude)
}

func (s *Store) byLocation(pos Vec2, radius float32, t EntityType, matchType bool, exclude *Entity) []*Entity {
	startPos := s.axisOf(pos) - radius
	endPos := startPos + radius*2
	searchPos := startPos - MaxEntitySize
	r2 := radius * radius

	lowerBound, upperBound := 0, s.aliveLen-1
	for lowerBound <= upperBound {
		mid := (lowerBound + upperBound) / 2
		cur := s.sweepPos(s.At(mid))
		switch {
		case cur < searchPos:
			lowerBound = mid + 1
		case cur > searchPos:
			upperBound = mid - 1
		default:
			goto found
		}
	}
found:
	start := upperBound
	if start < 0 {
		start = 0
	}

	var out []*Entity
	for i := start; i < s.aliveLen; i++ {
		e := s.At(i)
		if s.sweepPos(e) > endPos {
			break
		}
		if s.sweepPos(e)+s.sweepSize(e) < startPos {
			continue
		}
		if e == exclude {
			continue
		}
		if matchType && e.Type != t {
			continue
		}
		if !e.IsAlive {
			continue
		}
		xd := e.Pos.X + ifElse(e.Pos.X < pos.X, e.Size.X, 0) - pos.X
		yd := e.Pos.Y + ifElse(e.Pos.Y < pos.Y, e.Size.Y, 0) - pos.Y
		if xd*xd+yd*yd <= r2 {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) axisOf(v Vec2) float32 {
	if s.sweepAxis == 1 {
		return v.Y
	}
	return v.X
}

// Kill marks an entity dead and dispatches its type's kill() hook. The slot
// persists in the alive array until the next update pass's swap-remove,
// matching the original's deferred-removal discipline.
func (s *Store) Kill(e *Entity) {
	if !e.IsAlive {
		return
	}
	e.IsAlive = false
	if h, ok := s.types.handlers[e.Type]; ok && h.Kill != nil {
		h.Kill(s, e)
	}
}

// Damage applies the base damage routine (subtract health, kill at <= 0)
// unless the type overrides it.
func (s *Store) Damage(e *Entity, amount int) {
	if h, ok := s.types.handlers[e.Type]; ok && h.Damage != nil {
		h.Damage(s, e, amount)
		return
	}
	s.baseDamage(e, amount)
}

func (s *Store) baseDamage(e *Entity, amount int) {
	e.Health -= amount
	if e.Health <= 0 && e.IsAlive {
		s.Kill(e)
	}
}

func (e *Entity) isTouching(other *Entity) bool {
	a := AABB{Pos: e.Pos, Size: e.Size}
	b := AABB{Pos: other.Pos, Size: other.Size}
	return a.Overlaps(b)
}

func logFatalEntity(format string, args ...any) {
	log.Fatalf(format, args...)
}
