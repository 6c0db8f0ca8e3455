// physics_pairs.go - mass/collision-class pair separation (C4 §4.4.2).
//
// Grounded on original_source/src/entity.c: entity_resolve_collision picks
// the minimum-overlap axis (the standard MTV rule) and a movement split by
// collision class or mass, then entities_separate_on_x_axis/_y_axis apply
// an inelastic velocity exchange plus bounce, with the asymmetric "top
// inherits bottom's horizontal velocity" carry-along spec.md §9 calls out
// as intentional (platforms carry riders, never the reverse).

package pixelcore

func (s *Store) resolveCollision(a, b *Entity) {
	var overlapX float32
	if a.Pos.X < b.Pos.X {
		overlapX = a.Pos.X + a.Size.X - b.Pos.X
	} else {
		overlapX = b.Pos.X + b.Size.X - a.Pos.X
	}

	var overlapY float32
	if a.Pos.Y < b.Pos.Y {
		overlapY = a.Pos.Y + a.Size.Y - b.Pos.Y
	} else {
		overlapY = b.Pos.Y + b.Size.Y - a.Pos.Y
	}

	var aMove, bMove float32
	switch {
	case a.PhysicsMode&collidesLite != 0 || b.PhysicsMode&collidesFixed != 0:
		aMove, bMove = 1, 0
	case a.PhysicsMode&collidesFixed != 0 || b.PhysicsMode&collidesLite != 0:
		aMove, bMove = 0, 1
	default:
		totalMass := a.Mass + b.Mass
		aMove = b.Mass / totalMass
		bMove = a.Mass / totalMass
	}

	if overlapY > overlapX {
		if a.Pos.X < b.Pos.X {
			s.separateOnXAxis(a, b, aMove, bMove, overlapX)
			s.dispatchCollide(a, Vec2{-1, 0}, nil)
			s.dispatchCollide(b, Vec2{1, 0}, nil)
		} else {
			s.separateOnXAxis(b, a, bMove, aMove, overlapX)
			s.dispatchCollide(a, Vec2{1, 0}, nil)
			s.dispatchCollide(b, Vec2{-1, 0}, nil)
		}
		return
	}

	if a.Pos.Y < b.Pos.Y {
		s.separateOnYAxis(a, b, aMove, bMove, overlapY)
		s.dispatchCollide(a, Vec2{0, -1}, nil)
		s.dispatchCollide(b, Vec2{0, 1}, nil)
	} else {
		s.separateOnYAxis(b, a, bMove, aMove, overlapY)
		s.dispatchCollide(a, Vec2{0, 1}, nil)
		s.dispatchCollide(b, Vec2{0, -1}, nil)
	}
}

func (s *Store) separateOnXAxis(left, right *Entity, leftMove, rightMove, overlap float32) {
	impactVelocity := left.Vel.X - right.Vel.X

	if leftMove > 0 {
		left.Vel.X = right.Vel.X*leftMove + left.Vel.X*rightMove

		bounce := impactVelocity * left.Restitution
		if bounce > s.config.MinBounceVelocity {
			left.Vel.X -= bounce
		}
		s.move(left, Vec2{-overlap * leftMove, 0})
	}
	if rightMove > 0 {
		right.Vel.X = left.Vel.X*rightMove + right.Vel.X*leftMove

		bounce := impactVelocity * right.Restitution
		if bounce > s.config.MinBounceVelocity {
			right.Vel.X += bounce
		}
		s.move(right, Vec2{overlap * rightMove, 0})
	}
}

func (s *Store) separateOnYAxis(top, bottom *Entity, topMove, bottomMove, overlap float32) {
	if bottom.OnGround && topMove > 0 {
		topMove = 1
		bottomMove = 0
	}

	impactVelocity := top.Vel.Y - bottom.Vel.Y
	topVelY := top.Vel.Y

	if topMove > 0 {
		top.Vel.Y = top.Vel.Y*bottomMove + bottom.Vel.Y*topMove

		moveX := float32(0)
		bounce := impactVelocity * top.Restitution
		if bounce > s.config.MinBounceVelocity {
			top.Vel.Y -= bounce
		} else {
			top.OnGround = true
			moveX = bottom.Vel.X * s.tick
		}
		s.move(top, Vec2{moveX, -overlap * topMove})
	}
	if bottomMove > 0 {
		bottom.Vel.Y = bottom.Vel.Y*topMove + topVelY*bottomMove

		bounce := impactVelocity * bottom.Restitution
		if bounce > s.config.MinBounceVelocity {
			bottom.Vel.Y += bounce
		}
		s.move(bottom, Vec2{0, overlap * bottomMove})
	}
}
