// level_json.go - level JSON loader (A4, C6 engine_load_level input).
//
// Grounded on original_source/src/engine.c's engine_load_level: maps are
// parsed first (the map named "collision" becomes the collision map,
// everything else a background map), then entities are spawned in one
// pass and their settings applied in a second pass, so a settings value
// (e.g. a "target" name) can reference any entity in the level regardless
// of spawn order.

package pixelcore

import (
	"encoding/json"
	"fmt"
)

type levelMapJSON struct {
	Name        string      `json:"name"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	TileSize    int         `json:"tilesize"`
	Distance    float32     `json:"distance"`
	Repeat      bool        `json:"repeat"`
	Foreground  bool        `json:"foreground"`
	TilesetName string      `json:"tilesetName"`
	Data        [][]float64 `json:"data"`
}

type levelEntityJSON struct {
	Type     string          `json:"type"`
	X        float32         `json:"x"`
	Y        float32         `json:"y"`
	Settings json.RawMessage `json:"settings"`
}

type levelJSON struct {
	Maps     []levelMapJSON    `json:"maps"`
	Entities []levelEntityJSON `json:"entities"`
}

// LevelMap pairs a TileMap with a tileset name, kept out-of-band from
// TileMap itself since TileMap is also used for maps built programmatically
// with no backing tileset path. LoadLevel does not build LevelMap values:
// it registers plain *TileMap values and drops a map's tilesetName.
type LevelMap struct {
	*TileMap
	TilesetName string
}

// LoadLevel parses a level JSON document into eng: maps are registered as
// the collision map or a background map, then every entity is spawned and
// (in a second pass) has its settings applied, exactly mirroring
// engine_load_level's two-pass entity handling. Malformed documents (missing
// keys, wrong types, a data array whose row/column counts don't match
// width/height) are reported as a returned error.
func LoadLevel(eng *Engine, data []byte) error {
	var doc levelJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("pixelcore: level json: %w", err)
	}

	for _, md := range doc.Maps {
		tm, err := decodeLevelMap(md)
		if err != nil {
			return err
		}
		if md.Name == "collision" {
			eng.SetCollisionMap(tm)
		} else {
			eng.AddBackgroundMap(tm)
		}
	}

	type pending struct {
		ref      EntityRef
		settings map[string]any
	}
	var toSettle []pending

	for _, ed := range doc.Entities {
		t, ok := eng.Types.ByName(ed.Type)
		if !ok {
			return fmt.Errorf("pixelcore: level json: unknown entity type %q", ed.Type)
		}

		ref, ok := eng.Store.Spawn(t, Vec2{ed.X, ed.Y})
		if !ok {
			return fmt.Errorf("pixelcore: level json: entity pool full spawning %q", ed.Type)
		}

		var settings map[string]any
		if len(ed.Settings) > 0 {
			if err := json.Unmarshal(ed.Settings, &settings); err != nil {
				return fmt.Errorf("pixelcore: level json: entity %q settings: %w", ed.Type, err)
			}
		}
		if settings != nil {
			if name, ok := settings["name"].(string); ok {
				if e, ok := eng.Store.ByRef(ref); ok {
					e.Name = name
				}
			}
			toSettle = append(toSettle, pending{ref: ref, settings: settings})
		}
	}

	for _, p := range toSettle {
		e, ok := eng.Store.ByRef(p.ref)
		if !ok {
			continue
		}
		if h, ok := eng.Types.handlers[e.Type]; ok && h.Settings != nil {
			h.Settings(eng.Store, e, p.settings)
		}
	}

	return nil
}

// decodeLevelMap builds a TileMap from a parsed map descriptor. Tile
// values are stored exactly as they appear in the JSON "data" array, with
// no +1/-1 bias applied: the bias described in spec.md §6 is a draw-time
// convention a tileset-backed renderer applies when mapping a background
// tile to an atlas slot, and must not be baked into TileMap.Tiles, since
// the tracer (C2) reads tile indices directly as the 0=empty/1=solid/
// 2..55=slope table (spec.md §3) and a level author writing a collision
// map's "data" array targets those values directly.
func decodeLevelMap(md levelMapJSON) (*TileMap, error) {
	if len(md.Data) != md.Height {
		return nil, fmt.Errorf("pixelcore: level json: map %q has %d data rows, want height %d", md.Name, len(md.Data), md.Height)
	}

	tiles := make([]uint16, md.Width*md.Height)
	for y, row := range md.Data {
		if len(row) != md.Width {
			return nil, fmt.Errorf("pixelcore: level json: map %q row %d has %d columns, want width %d", md.Name, y, len(row), md.Width)
		}
		for x, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("pixelcore: level json: map %q has a negative tile index", md.Name)
			}
			tiles[y*md.Width+x] = uint16(v)
		}
	}

	distance := md.Distance
	if distance < 1 {
		distance = 1
	}

	return &TileMap{
		Width:      md.Width,
		Height:     md.Height,
		TileSize:   md.TileSize,
		Distance:   distance,
		Repeat:     md.Repeat,
		Foreground: md.Foreground,
		Name:       md.Name,
		Tiles:      tiles,
	}, nil
}
