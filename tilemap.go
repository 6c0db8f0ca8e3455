// tilemap.go - tile map data model and the 2..55 slope/one-way tile table (C2 input).
//
// Grounded on original_source/src/map.h and the slope_definitions table in
// original_source/src/trace.c.

package pixelcore

import "math"

// TileMap is a dense grid of tile indices. Tile 0 is empty, 1 is a full
// solid AABB, 2..55 index into slopeDefinitions. Repeat and Distance are
// carried as map properties; TileAt does not wrap a repeating map.
type TileMap struct {
	Width, Height int
	TileSize      int
	Distance      float32
	Repeat        bool
	Foreground    bool
	Name          string
	Tiles         []uint16
}

// NewTileMap allocates a tile map backed by the given data slice (or a
// fresh zeroed slice if data is nil).
func NewTileMap(width, height, tileSize int, data []uint16) *TileMap {
	if data == nil {
		data = make([]uint16, width*height)
	}
	return &TileMap{
		Width:    width,
		Height:   height,
		TileSize: tileSize,
		Distance: 1,
		Tiles:    data,
	}
}

// TileAt returns the tile index at tile-grid coordinates, or 0 for any
// coordinate outside the map bounds (soft failure, spec.md §7).
func (m *TileMap) TileAt(tx, ty int) uint16 {
	if tx < 0 || tx >= m.Width || ty < 0 || ty >= m.Height {
		return 0
	}
	return m.Tiles[ty*m.Width+tx]
}

// TileAtPx returns the tile at the given pixel position.
func (m *TileMap) TileAtPx(px Vec2) uint16 {
	return m.TileAt(int(px.X)/m.TileSize, int(px.Y)/m.TileSize)
}

// WidthPx and HeightPx return the map's size in pixels.
func (m *TileMap) WidthPx() int  { return m.Width * m.TileSize }
func (m *TileMap) HeightPx() int { return m.Height * m.TileSize }

// slopeDef describes one sloped or one-way tile: a line segment from Start
// in the direction Dir, both in tile-local [0,1]^2 space, plus its
// precomputed unit Normal. Solid slopes form the hypotenuse of a solid
// triangle (the tile's other two edges are also solid); one-way slopes are
// a single directional line with nothing solid behind them.
type slopeDef struct {
	Start, Dir, Normal Vec2
	Solid              bool
}

const (
	half  = 1.0 / 2.0
	third = 1.0 / 3.0
	twoThirds = 2.0 / 3.0
)

func slopeNormal(x, y float32) Vec2 {
	l := float32(math.Sqrt(float64(x*x + y*y)))
	return Vec2{y / l, -x / l}
}

func slope(sx, sy, ex, ey float32, solid bool) slopeDef {
	dx, dy := ex-sx, ey-sy
	return slopeDef{
		Start:  Vec2{sx, sy},
		Dir:    Vec2{dx, dy},
		Normal: slopeNormal(dx, dy),
		Solid:  solid,
	}
}

// slopeDefinitions is indexed by tile index 2..55, matching the original
// engine's hand-tuned tile set: four quadrants (NE/SE/NW/SW) of slopes at
// 15/22/45/67/75 degrees, plus four one-way platform lines at indices
// 12 (N), 23 (S), 34 (E) and 45 (W).
var slopeDefinitions = buildSlopeDefinitions()

func buildSlopeDefinitions() [56]slopeDef {
	var t [56]slopeDef

	// 15 NE
	t[5] = slope(0, 1, 1, twoThirds, true)
	t[6] = slope(0, twoThirds, 1, third, true)
	t[7] = slope(0, third, 1, 0, true)
	// 22 NE
	t[3] = slope(0, 1, 1, half, true)
	t[4] = slope(0, half, 1, 0, true)
	// 45 NE
	t[2] = slope(0, 1, 1, 0, true)
	// 67 NE
	t[10] = slope(half, 1, 1, 0, true)
	t[21] = slope(0, 1, half, 0, true)
	// 75 NE
	t[32] = slope(twoThirds, 1, 1, 0, true)
	t[43] = slope(third, 1, twoThirds, 0, true)
	t[54] = slope(0, 1, third, 0, true)

	// 15 SE
	t[27] = slope(0, 0, 1, third, true)
	t[28] = slope(0, third, 1, twoThirds, true)
	t[29] = slope(0, twoThirds, 1, 1, true)
	// 22 SE
	t[25] = slope(0, 0, 1, half, true)
	t[26] = slope(0, half, 1, 1, true)
	// 45 SE
	t[24] = slope(0, 0, 1, 1, true)
	// 67 SE
	t[11] = slope(0, 0, half, 1, true)
	t[22] = slope(half, 0, 1, 1, true)
	// 75 SE
	t[33] = slope(0, 0, third, 1, true)
	t[44] = slope(third, 0, twoThirds, 1, true)
	t[55] = slope(twoThirds, 0, 1, 1, true)

	// 15 NW
	t[16] = slope(1, third, 0, 0, true)
	t[17] = slope(1, twoThirds, 0, third, true)
	t[18] = slope(1, 1, 0, twoThirds, true)
	// 22 NW
	t[14] = slope(1, half, 0, 0, true)
	t[15] = slope(1, 1, 0, half, true)
	// 45 NW
	t[13] = slope(1, 1, 0, 0, true)
	// 67 NW
	t[8] = slope(half, 1, 0, 0, true)
	t[19] = slope(1, 1, half, 0, true)
	// 75 NW
	t[30] = slope(third, 1, 0, 0, true)
	t[41] = slope(twoThirds, 1, third, 0, true)
	t[52] = slope(1, 1, twoThirds, 0, true)

	// 15 SW
	t[38] = slope(1, twoThirds, 0, 1, true)
	t[39] = slope(1, third, 0, twoThirds, true)
	t[40] = slope(1, 0, 0, third, true)
	// 22 SW
	t[36] = slope(1, half, 0, 1, true)
	t[37] = slope(1, 0, 0, half, true)
	// 45 SW
	t[35] = slope(1, 0, 0, 1, true)
	// 67 SW
	t[9] = slope(1, 0, half, 1, true)
	t[20] = slope(half, 0, 0, 1, true)
	// 75 SW
	t[31] = slope(1, 0, twoThirds, 1, true)
	t[42] = slope(twoThirds, 0, third, 1, true)
	t[53] = slope(third, 0, 0, 1, true)

	// One-way platform lines
	t[12] = slope(0, 0, 1, 0, false) // N
	t[23] = slope(1, 1, 0, 1, false) // S
	t[34] = slope(1, 0, 1, 1, false) // E
	t[45] = slope(0, 1, 0, 0, false) // W

	return t
}
