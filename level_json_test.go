// level_json_test.go - level loading: maps, entity spawn+settings deferral.

package pixelcore

import "testing"

func levelTestEngine(t *testing.T) (*Engine, *TypeRegistry) {
	t.Helper()
	types := NewTypeRegistry()
	cfg := DefaultConfig()
	cfg.HunkSize = 1 << 16
	cfg.MaxEntities = 16
	eng := NewEngine(cfg, types)
	eng.SetScene(&Scene{})
	eng.RunFrame(0) // activate the scene so Store/Types are the live ones
	return eng, types
}

func TestLoadLevelSplitsCollisionAndBackgroundMaps(t *testing.T) {
	eng, types := levelTestEngine(t)
	types.Register("marker", Handlers{})

	doc := []byte(`{
		"maps": [
			{"name": "collision", "width": 2, "height": 1, "tilesize": 8, "data": [[0, 1]]},
			{"name": "sky", "width": 2, "height": 1, "tilesize": 8, "foreground": false, "data": [[3, 4]]}
		],
		"entities": []
	}`)

	if err := LoadLevel(eng, doc); err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}

	if eng.CollisionMap == nil {
		t.Fatalf("expected a collision map to be set")
	}
	if eng.CollisionMap.TileAt(1, 0) != 1 {
		t.Fatalf("collision map tile(1,0) = %d, want 1 (stored verbatim, no bias)", eng.CollisionMap.TileAt(1, 0))
	}
	if len(eng.BackgroundMaps) != 1 || eng.BackgroundMaps[0].Name != "sky" {
		t.Fatalf("expected one background map named sky, got %+v", eng.BackgroundMaps)
	}
}

func TestLoadLevelSpawnsEntitiesThenAppliesSettingsInSecondPass(t *testing.T) {
	eng, types := levelTestEngine(t)

	settled := make(map[string]bool)
	types.Register("door", Handlers{
		Settings: func(s *Store, e *Entity, settings map[string]any) {
			if target, ok := settings["target"].(string); ok {
				if _, ok := s.ByName(target); ok {
					settled[e.Name] = true
				}
			}
		},
	})

	doc := []byte(`{
		"maps": [],
		"entities": [
			{"type": "door", "x": 0, "y": 0, "settings": {"name": "door-a", "target": "door-b"}},
			{"type": "door", "x": 10, "y": 0, "settings": {"name": "door-b"}}
		]
	}`)

	if err := LoadLevel(eng, doc); err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}

	if eng.Store.Len() != 2 {
		t.Fatalf("expected 2 spawned entities, got %d", eng.Store.Len())
	}
	if !settled["door-a"] {
		t.Fatalf("door-a's settings pass should have resolved door-b by name (spawned later in the level)")
	}
}

func TestLoadLevelRejectsUnknownEntityType(t *testing.T) {
	eng, _ := levelTestEngine(t)
	doc := []byte(`{"maps": [], "entities": [{"type": "ghost", "x": 0, "y": 0}]}`)
	if err := LoadLevel(eng, doc); err == nil {
		t.Fatalf("expected an error loading a level referencing an unregistered entity type")
	}
}
