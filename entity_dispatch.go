// entity_dispatch.go - per-type handler registration (C3 dispatch table).
//
// Grounded on original_source/src/entity.h's entity_vtab_t: a filled-in
// table of function pointers per type tag, all optional, with update/draw/
// damage falling through to base routines when unset. Since Go has no
// X-macro type-list expansion, types are registered at runtime into a
// TypeRegistry (spec.md §9: "a build-time code generator or a runtime
// registration step").

package pixelcore

// Handlers is the per-type dispatch table. Every field is optional; nil
// fields behave as no-ops, except Update/Draw/Damage which fall through to
// the base routines in physics.go/entity_store.go/entity.go.
type Handlers struct {
	// Load runs once at program init for every declared type.
	Load func(s *Store)

	// Init runs once, right after spawn() assigns defaults.
	Init func(s *Store, e *Entity)

	// Settings applies level-JSON settings in the deferred second pass
	// (spec.md §6).
	Settings func(s *Store, e *Entity, settings map[string]any)

	Update func(s *Store, e *Entity)
	Draw   func(s *Store, e *Entity, viewport Vec2)
	Kill   func(s *Store, e *Entity)

	Touch   func(s *Store, e, other *Entity)
	Collide func(s *Store, e *Entity, normal Vec2, tr *Trace)
	Damage  func(s *Store, e *Entity, amount int)
	Trigger func(s *Store, e, other *Entity)
	Message func(s *Store, e *Entity, msg any, data any)
}

// TypeRegistry is a closed enumeration of entity types built by runtime
// registration, with name lookup in both directions for level loading.
type TypeRegistry struct {
	handlers map[EntityType]Handlers
	byName   map[string]EntityType
	byType   map[EntityType]string
	next     EntityType
}

// NewTypeRegistry returns an empty registry. Type 0 is reserved the same
// way entity id 0 is: it is never assigned to a registered type.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		handlers: make(map[EntityType]Handlers),
		byName:   make(map[string]EntityType),
		byType:   make(map[EntityType]string),
		next:     1,
	}
}

// Register assigns a new EntityType tag to name and stores its handler set.
// Registering the same name twice replaces its handlers but keeps its tag.
func (r *TypeRegistry) Register(name string, h Handlers) EntityType {
	if t, ok := r.byName[name]; ok {
		r.handlers[t] = h
		return t
	}
	t := r.next
	r.next++
	r.byName[name] = t
	r.byType[t] = name
	r.handlers[t] = h
	return t
}

// ByName resolves a registered type's string name (used by level loading).
func (r *TypeRegistry) ByName(name string) (EntityType, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Name is the reverse lookup.
func (r *TypeRegistry) Name(t EntityType) (string, bool) {
	n, ok := r.byType[t]
	return n, ok
}
