// tracer_test.go - tests for the swept AABB tracer (spec.md §8).

package pixelcore

import (
	"math"
	"testing"
)

func TestTraceEmptyMapTravelsFullVelocity(t *testing.T) {
	m := NewTileMap(10, 10, 8, nil)
	from := Vec2{4, 4}
	vel := Vec2{3, -2}
	size := Vec2{8, 8}

	tr := TraceMove(m, from, vel, size)

	want := from.Add(vel)
	if tr.Pos != want {
		t.Fatalf("pos = %v, want %v", tr.Pos, want)
	}
	if tr.Length != 1 {
		t.Fatalf("length = %v, want 1", tr.Length)
	}
	if tr.TileIndex != 0 {
		t.Fatalf("tile = %v, want 0", tr.TileIndex)
	}
}

func TestTraceDegenerateZeroVelocityNoHit(t *testing.T) {
	m := NewTileMap(10, 10, 8, nil)
	tr := TraceMove(m, Vec2{4, 4}, Vec2{0, 0}, Vec2{8, 8})
	if tr.TileIndex != 0 {
		t.Fatalf("tile = %v, want 0 for zero velocity", tr.TileIndex)
	}
}

func TestTraceFullTileHorizontalApproach(t *testing.T) {
	m := NewTileMap(10, 10, 8, nil)
	// solid tile at (5,0) in tile coords -> pixel x in [40,48)
	m.Tiles[0*10+5] = 1

	size := Vec2{8, 8}
	from := Vec2{20, 0}
	vel := Vec2{30, 0} // would end at x=50, inside solid tile at x=40

	tr := TraceMove(m, from, vel, size)

	if tr.TileIndex == 0 {
		t.Fatalf("expected a hit, got none")
	}
	wantX := float32(40 - 8) // tile_left - size.x
	if math.Abs(float64(tr.Pos.X-wantX)) > 1e-3 {
		t.Fatalf("pos.x = %v, want %v", tr.Pos.X, wantX)
	}
	if tr.Normal != (Vec2{-1, 0}) {
		t.Fatalf("normal = %v, want (-1,0)", tr.Normal)
	}
	if tr.Length < 0 || tr.Length > 1 {
		t.Fatalf("length out of range: %v", tr.Length)
	}
}

func TestTraceRoundTripPositionMatchesLength(t *testing.T) {
	m := NewTileMap(10, 10, 8, nil)
	m.Tiles[0*10+5] = 1

	from := Vec2{20, 0}
	vel := Vec2{30, 0}
	size := Vec2{8, 8}

	tr := TraceMove(m, from, vel, size)
	if tr.TileIndex == 0 {
		t.Fatalf("expected a hit")
	}

	expected := from.Add(vel.Scale(tr.Length))
	if math.Abs(float64(expected.X-tr.Pos.X)) > 1e-3 || math.Abs(float64(expected.Y-tr.Pos.Y)) > 1e-3 {
		t.Fatalf("from + vel*length = %v, want %v", expected, tr.Pos)
	}
}

func TestTrace45DegreeSlopeHit(t *testing.T) {
	m := NewTileMap(10, 10, 8, nil)
	m.Tiles[5*10+0] = 2 // 45 NE slope tile at (0,5)

	from := Vec2{2, 32} // above the slope tile row (row 5 starts at y=40)
	vel := Vec2{0, 20}  // falling straight down into the slope

	tr := TraceMove(m, from, vel, Vec2{4, 4})
	if tr.TileIndex != 2 {
		t.Fatalf("expected hit on slope tile 2, got %v", tr.TileIndex)
	}
	if tr.Length < 0 || tr.Length > 1 {
		t.Fatalf("length out of range: %v", tr.Length)
	}
}

func TestTraceOutOfMapRejection(t *testing.T) {
	m := NewTileMap(4, 4, 8, nil)
	from := Vec2{-1000, -1000}
	vel := Vec2{-5, -5}
	tr := TraceMove(m, from, vel, Vec2{8, 8})
	if tr.TileIndex != 0 || tr.Length != 1 {
		t.Fatalf("expected trivial no-hit for fully out-of-bounds trace, got %+v", tr)
	}
}
