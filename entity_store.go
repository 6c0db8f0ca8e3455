// entity_store.go - per-tick entity pipeline: update, broad phase, draw (C3).
//
// Grounded on original_source/src/entity.c's entities_update/entities_draw:
// update pass with swap-remove on death, insertion sort by the sweep axis
// (chosen because inter-frame order is usually nearly sorted), then a pair
// sweep gated by group masks and collision mode before dispatching touch()
// and the pair resolver.

package pixelcore

// Update runs one tick of the entity pipeline (spec.md §4.3): dispatch
// update() on every live entity with swap-remove on death, re-sort by the
// sweep axis, then sweep adjacent pairs for touch/collide events.
func (s *Store) Update(dt float32) {
	s.tick = dt
	for i := 0; i < s.aliveLen; i++ {
		e := s.At(i)
		s.dispatchUpdate(e, dt)

		if !e.IsAlive {
			s.aliveLen--
			if i < s.aliveLen {
				s.alive[i], s.alive[s.aliveLen] = s.alive[s.aliveLen], s.alive[i]
				i--
			}
		}
	}

	s.sortBySweepAxis()
	s.sweepPairs()
}

func (s *Store) dispatchUpdate(e *Entity, dt float32) {
	if h, ok := s.types.handlers[e.Type]; ok && h.Update != nil {
		h.Update(s, e)
		return
	}
	s.baseUpdate(e, dt)
}

// sortBySweepAxis performs an in-place insertion sort over the alive
// pointer array, matching the original's choice of algorithm: data is
// usually nearly sorted frame-to-frame, so insertion sort beats a general
// sort in the common case.
func (s *Store) sortBySweepAxis() {
	for i := 1; i < s.aliveLen; i++ {
		key := s.alive[i]
		keyPos := s.sweepPos(&s.slots[key])
		j := i - 1
		for j >= 0 && s.sweepPos(&s.slots[s.alive[j]]) > keyPos {
			s.alive[j+1] = s.alive[j]
			j--
		}
		s.alive[j+1] = key
	}
}

func (s *Store) sweepPairs() {
	for i := 0; i < s.aliveLen; i++ {
		e1 := s.At(i)

		if e1.CheckAgainst == GroupNone && e1.Group == GroupNone && e1.PhysicsMode <= collidesLite {
			continue
		}

		maxPos := s.sweepPos(e1) + s.sweepSize(e1)
		for j := i + 1; j < s.aliveLen && s.sweepPos(s.At(j)) < maxPos; j++ {
			e2 := s.At(j)

			if !e1.isTouching(e2) {
				continue
			}

			if e1.CheckAgainst&e2.Group != 0 {
				s.dispatchTouch(e1, e2)
			}
			if e1.Group&e2.CheckAgainst != 0 {
				s.dispatchTouch(e2, e1)
			}

			if e1.PhysicsMode >= collidesLite && e2.PhysicsMode >= collidesLite &&
				int(e1.PhysicsMode)+int(e2.PhysicsMode) >= int(collidesActive|collidesLite) &&
				e1.Mass+e2.Mass > 0 {
				s.resolveCollision(e1, e2)
			}
		}
	}
}

func (s *Store) dispatchTouch(e, other *Entity) {
	if h, ok := s.types.handlers[e.Type]; ok && h.Touch != nil {
		h.Touch(s, e, other)
	}
}

func (s *Store) dispatchCollide(e *Entity, normal Vec2, tr *Trace) {
	if h, ok := s.types.handlers[e.Type]; ok && h.Collide != nil {
		h.Collide(s, e, normal, tr)
	}
}

// Draw copies the live pointer array, sorts the copy by DrawOrder (the
// copy keeps the draw sort from perturbing the sweep-axis order used for
// broad phase) and dispatches draw() in order.
func (s *Store) Draw(viewport Vec2) {
	order := make([]uint16, s.aliveLen)
	copy(order, s.alive[:s.aliveLen])

	for i := 1; i < len(order); i++ {
		key := order[i]
		keyOrder := s.slots[key].DrawOrder
		j := i - 1
		for j >= 0 && s.slots[order[j]].DrawOrder > keyOrder {
			order[j+1] = order[j]
			j--
		}
		order[j+1] = key
	}

	for _, idx := range order {
		e := &s.slots[idx]
		if h, ok := s.types.handlers[e.Type]; ok && h.Draw != nil {
			h.Draw(s, e, viewport)
		} else {
			s.baseDraw(e, viewport)
		}
	}
}

func (s *Store) baseDraw(e *Entity, viewport Vec2) {
	_ = e
	_ = viewport
}
