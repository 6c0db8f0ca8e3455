// tracer.go - swept AABB tracer against a tile map (C2).
//
// Ported from original_source/src/trace.c: per-tile substep walk along the
// dominant axis of motion, dispatching full/empty/sloped tiles. Coordinate
// math intentionally mirrors the C original closely (corner/offset/dir
// conventions, epsilon, early-exit rules) since spec.md §4.2 calls out
// exact tie-break behavior that must be preserved.

package pixelcore

import "math"

const traceEpsilon = 0.001

// Trace is the result of a swept-AABB-vs-tile-map query. TileIndex == 0
// means no hit; Pos is the position after the step (clamped to the hit, or
// from+vel if nothing was hit); Length is the fraction of vel actually
// traveled, in [0, 1].
type Trace struct {
	TileIndex uint16
	TilePos   [2]int
	Length    float32
	Pos       Vec2
	Normal    Vec2
}

// TraceMove performs the swept query described in spec.md §4.2: given a
// tile map, an AABB's top-left position, a velocity (displacement over
// this step) and its size, returns the earliest collision.
func TraceMove(m *TileMap, from, vel, size Vec2) Trace {
	to := from.Add(vel)

	res := Trace{
		TileIndex: 0,
		Pos:       to,
		Normal:    Vec2{},
		Length:    1,
	}

	mapW := float32(m.WidthPx())
	mapH := float32(m.HeightPx())
	if (from.X+size.X < 0 && to.X+size.X < 0) ||
		(from.Y+size.Y < 0 && to.Y+size.Y < 0) ||
		(from.X > mapW && to.X > mapW) ||
		(from.Y > mapH && to.Y > mapH) ||
		(vel.X == 0 && vel.Y == 0) {
		return res
	}

	offset := Vec2{boolToF(vel.X > 0), boolToF(vel.Y > 0)}
	corner := from.Add(size.Mul(offset))
	dir := Vec2{1 - 2*offset.X, 1 - 2*offset.Y}

	maxVel := maxf(vel.X*-dir.X, vel.Y*-dir.Y)
	steps := int(math.Ceil(float64(maxVel) / float64(m.TileSize)))
	if steps == 0 {
		return res
	}
	stepSize := vel.Scale(1 / float32(steps))

	lastTile := [2]int{-16, -16}
	extraStepForSlope := false

	for i := 0; i <= steps; i++ {
		probe := corner.Add(stepSize.Scale(float32(i)))
		tilePos := [2]int{
			int(probe.X / float32(m.TileSize)),
			int(probe.Y / float32(m.TileSize)),
		}

		cornerTileChecked := false
		if lastTile[0] != tilePos[0] {
			maxY := from.Y + size.Y*(1-offset.Y)
			if i > 0 {
				maxY += (vel.Y / vel.X) * (float32(tilePos[0]+1)-offset.X)*float32(m.TileSize) - (vel.Y/vel.X)*corner.X
			}
			numTiles := int(math.Ceil(math.Abs(float64(maxY/float32(m.TileSize) - float32(tilePos[1]) - offset.Y))))
			for t := 0; t < numTiles; t++ {
				checkTile(m, from, vel, size, [2]int{tilePos[0], tilePos[1] + int(dir.Y)*t}, &res)
			}
			lastTile[0] = tilePos[0]
			cornerTileChecked = true
		}

		if lastTile[1] != tilePos[1] {
			maxX := from.X + size.X*(1-offset.X)
			if i > 0 {
				maxX += (vel.X / vel.Y) * (float32(tilePos[1]+1)-offset.Y)*float32(m.TileSize) - (vel.X/vel.Y)*corner.Y
			}
			numTiles := int(math.Ceil(math.Abs(float64(maxX/float32(m.TileSize) - float32(tilePos[0]) - offset.X))))
			start := 0
			if cornerTileChecked {
				start = 1
			}
			for t := start; t < numTiles; t++ {
				checkTile(m, from, vel, size, [2]int{tilePos[0] + int(dir.X)*t, tilePos[1]}, &res)
			}
			lastTile[1] = tilePos[1]
		}

		if res.TileIndex > 0 && (res.TileIndex == 1 || extraStepForSlope) {
			return res
		}
		extraStepForSlope = true
	}

	return res
}

func boolToF(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

func checkTile(m *TileMap, pos, vel, size Vec2, tilePos [2]int, res *Trace) {
	tile := m.TileAt(tilePos[0], tilePos[1])
	switch {
	case tile == 0:
		return
	case tile == 1:
		resolveFullTile(m, pos, vel, size, tilePos, res)
	default:
		resolveSlopedTile(m, pos, vel, size, tilePos, tile, res)
	}
}

// resolveFullTile implements spec.md §4.2.1.
func resolveFullTile(m *TileMap, pos, vel, size Vec2, tilePos [2]int, res *Trace) {
	ts := float32(m.TileSize)
	rp := Vec2{
		float32(tilePos[0])*ts + ifElse(vel.X > 0, -size.X, ts),
		float32(tilePos[1])*ts + ifElse(vel.Y > 0, -size.Y, ts),
	}

	sign := (vel.X*(rp.Y-pos.Y) - vel.Y*(rp.X-pos.X)) * vel.X * vel.Y

	var length float32
	if sign < 0 || vel.Y == 0 {
		length = absf((pos.X - rp.X) / vel.X)
		if length > res.Length {
			return
		}
		rp.Y = pos.Y + length*vel.Y
		res.Normal = Vec2{ifElse(vel.X > 0, -1, 1), 0}
	} else {
		length = absf((pos.Y - rp.Y) / vel.Y)
		if length > res.Length {
			return
		}
		rp.X = pos.X + length*vel.X
		res.Normal = Vec2{0, ifElse(vel.Y > 0, -1, 1)}
	}

	res.TileIndex = 1
	res.TilePos = tilePos
	res.Length = length
	res.Pos = rp
}

// resolveSlopedTile implements spec.md §4.2.2.
func resolveSlopedTile(m *TileMap, pos, vel, size Vec2, tilePos [2]int, tile uint16, res *Trace) {
	if int(tile) >= len(slopeDefinitions) {
		return
	}
	sd := slopeDefinitions[tile]

	ts := float32(m.TileSize)
	tilePosPx := Vec2{float32(tilePos[0]) * ts, float32(tilePos[1]) * ts}
	ss := sd.Start.Scale(ts)
	dd := sd.Dir.Scale(ts)
	localPos := pos.Sub(tilePosPx)

	determinant := vel.Cross(dd)

	if determinant < -traceEpsilon {
		corner := localPos.Sub(ss).Add(Vec2{ifElse(dd.Y < 0, size.X, 0), ifElse(dd.X > 0, size.Y, 0)})

		pointAtSlope := vel.Cross(corner) / determinant
		pointAtVel := dd.Cross(corner) / determinant

		if pointAtVel > -traceEpsilon && pointAtVel < 1+traceEpsilon &&
			pointAtSlope > -traceEpsilon && pointAtSlope < 1+traceEpsilon {
			if pointAtVel <= res.Length {
				res.TileIndex = tile
				res.TilePos = tilePos
				res.Length = pointAtVel
				res.Normal = sd.Normal
				res.Pos = pos.Add(vel.Scale(pointAtVel))
			}
			return
		}
	}

	if !sd.Solid && (determinant > 0 || dd.X*dd.Y != 0) {
		return
	}

	var rp, lo, hi Vec2

	if dd.Y >= 0 {
		lo.X = -size.X - traceEpsilon
		hi.X = ifElse(vel.Y > 0, ss.X, ss.X+dd.X) - traceEpsilon
		rp.X = ifElse(vel.X > 0, lo.X, maxf(ss.X, ss.X+dd.X))
	} else {
		lo.X = ifElse(vel.Y > 0, ss.X+dd.X, ss.X) - size.X + traceEpsilon
		hi.X = ts + traceEpsilon
		rp.X = ifElse(vel.X > 0, minf(ss.X, ss.X+dd.X)-size.X, hi.X)
	}

	if dd.X > 0 {
		lo.Y = ifElse(vel.X > 0, ss.Y, ss.Y+dd.Y) - size.Y + traceEpsilon
		hi.Y = ts + traceEpsilon
		rp.Y = ifElse(vel.Y > 0, minf(ss.Y, ss.Y+dd.Y)-size.Y, hi.Y)
	} else {
		lo.Y = -size.Y - traceEpsilon
		hi.Y = ifElse(vel.X > 0, ss.Y+dd.Y, ss.Y) - traceEpsilon
		rp.Y = ifElse(vel.Y > 0, lo.Y, maxf(ss.Y, ss.Y+dd.Y))
	}

	sign := vel.Cross(rp.Sub(localPos)) * vel.X * vel.Y

	var length float32
	if sign < 0 || vel.Y == 0 {
		length = absf((localPos.X - rp.X) / vel.X)
		rp.Y = localPos.Y + length*vel.Y
		if rp.Y >= hi.Y || rp.Y <= lo.Y || length > res.Length || (!sd.Solid && dd.Y == 0) {
			return
		}
		res.Normal = Vec2{ifElse(vel.X > 0, -1, 1), 0}
	} else {
		length = absf((localPos.Y - rp.Y) / vel.Y)
		rp.X = localPos.X + length*vel.X
		if rp.X >= hi.X || rp.X <= lo.X || length > res.Length || (!sd.Solid && dd.X == 0) {
			return
		}
		res.Normal = Vec2{0, ifElse(vel.Y > 0, -1, 1)}
	}

	res.TileIndex = tile
	res.TilePos = tilePos
	res.Length = length
	res.Pos = rp.Add(tilePosPx)
}

func ifElse(cond bool, a, b float32) float32 {
	if cond {
		return a
	}
	return b
}
