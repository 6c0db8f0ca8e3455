// physics.go - per-entity velocity integration and world collision (C4).
//
// Grounded on original_source/src/entity.c: entity_base_update (semi-
// implicit Euler), entity_move (world trace + slide retry) and
// entity_handle_trace_result (restitution bounce, ground detection, slide
// velocity projection).

package pixelcore

// baseUpdate is the default per-entity update dispatched when a type
// doesn't override Update. Runs only when PhysicsMove is set.
func (s *Store) baseUpdate(e *Entity, dt float32) {
	if e.PhysicsMode&PhysicsMove == 0 {
		return
	}

	v := e.Vel

	e.Vel.Y += s.config.Gravity * e.Gravity * dt
	friction := Vec2{minf(e.Friction.X*dt, 1), minf(e.Friction.Y*dt, 1)}
	e.Vel = e.Vel.Add(e.Accel.Scale(dt).Sub(e.Vel.Mul(friction)))

	vstep := v.Add(e.Vel).Scale(dt * half)
	e.OnGround = false
	s.move(e, vstep)
}

// move advances e by vstep, tracing against the world collision map when
// PhysicsWorld is set. A trace that stops short retries once along the
// slide tangent for the remaining fraction of the step.
func (s *Store) move(e *Entity, vstep Vec2) {
	if e.PhysicsMode&PhysicsWorld != 0 && s.CollisionMap != nil {
		t := TraceMove(s.CollisionMap, e.Pos, vstep, e.Size)
		s.handleTraceResult(e, &t)

		if t.Length < 1 {
			rotatedNormal := t.Normal.Normal90()
			velAlongNormal := vstep.Dot(rotatedNormal)

			if velAlongNormal != 0 {
				remaining := 1 - t.Length
				vstep2 := rotatedNormal.Scale(velAlongNormal * remaining)
				t2 := TraceMove(s.CollisionMap, e.Pos, vstep2, e.Size)
				s.handleTraceResult(e, &t2)
			}
		}
		return
	}

	e.Pos = e.Pos.Add(vstep)
}

// handleTraceResult applies a trace outcome to an entity: position update,
// collide() dispatch, restitution bounce, ground detection and slide
// velocity projection.
func (s *Store) handleTraceResult(e *Entity, t *Trace) {
	e.Pos = t.Pos

	if t.TileIndex == 0 {
		return
	}

	s.dispatchCollide(e, t.Normal, t)

	if e.Restitution > 0 {
		velAgainstNormal := e.Vel.Dot(t.Normal)
		if absf(velAgainstNormal)*e.Restitution > s.config.MinBounceVelocity {
			vn := t.Normal.Scale(velAgainstNormal * 2)
			e.Vel = e.Vel.Sub(vn).Scale(e.Restitution)
			return
		}
	}

	if s.config.Gravity != 0 && t.Normal.Y < -e.MaxGroundNormal {
		e.OnGround = true

		if t.Normal.Y < -e.MinSlideNormal {
			e.Vel.Y = e.Vel.X * t.Normal.X
		}
	}

	rotatedNormal := t.Normal.Normal90()
	velAlongNormal := e.Vel.Dot(rotatedNormal)
	e.Vel = rotatedNormal.Scale(velAlongNormal)
}
