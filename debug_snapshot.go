// debug_snapshot.go - entity/voice/arena state dump to the system
// clipboard, for attaching to bug reports.
//
// Grounded on video_backend_ebiten.go's clipboard usage
// (clipboard.Init() gated behind a sync.Once, checked before every
// operation): the same gating is used here around clipboard.Write instead
// of Read, since a debug dump is a copy-out rather than a paste-in.

package pixelcore

import (
	"encoding/json"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var (
	clipboardOnce sync.Once
	clipboardOK   bool
)

// Snapshot is a point-in-time dump of an Engine's live state, serialized
// as JSON for clipboard-paste into a bug report.
type Snapshot struct {
	Frame    uint64          `json:"frame"`
	Time     float64         `json:"time"`
	Entities []EntitySummary `json:"entities"`
	Voices   []VoiceSummary  `json:"voices"`
	Arena    ArenaSummary    `json:"arena"`
}

// EntitySummary is the subset of Entity state worth including in a bug
// report: identity, position, and physics/group flags, not every
// per-entity scratch field.
type EntitySummary struct {
	Index    int     `json:"index"`
	Name     string  `json:"name,omitempty"`
	Type     string  `json:"type"`
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	Physics  uint8   `json:"physics"`
	Group    uint32  `json:"group"`
	OnGround bool    `json:"on_ground"`
}

// VoiceSummary mirrors the subset of voice state useful for diagnosing a
// stuck or runaway sound.
type VoiceSummary struct {
	Index   int     `json:"index"`
	Playing bool    `json:"playing"`
	Halted  bool    `json:"halted"`
	Looping bool    `json:"looping"`
	Volume  float32 `json:"volume"`
	Pan     float32 `json:"pan"`
	Pitch   float32 `json:"pitch"`
}

// ArenaSummary reports hunk allocator occupancy: how close a run is to
// exhausting its fixed-size arena.
type ArenaSummary struct {
	SizeBytes int `json:"size_bytes"`
	BumpBytes int `json:"bump_used_bytes"`
}

// TakeSnapshot captures engine state worth attaching to a bug report. It
// never mutates the engine.
func TakeSnapshot(eng *Engine) Snapshot {
	snap := Snapshot{
		Frame: eng.Frame,
		Time:  eng.Time,
		Arena: ArenaSummary{
			SizeBytes: eng.Hunk.Size(),
			BumpBytes: eng.Hunk.BumpUsed(),
		},
	}

	if eng.Store != nil {
		for i := 0; i < eng.Store.Len(); i++ {
			e := eng.Store.At(i)
			typeName, _ := eng.Types.Name(e.Type)
			snap.Entities = append(snap.Entities, EntitySummary{
				Index:    i,
				Name:     e.Name,
				Type:     typeName,
				X:        e.Pos.X,
				Y:        e.Pos.Y,
				Physics:  uint8(e.PhysicsMode),
				Group:    uint32(e.Group),
				OnGround: e.OnGround,
			})
		}
	}

	if eng.Mixer != nil {
		snap.Voices = eng.Mixer.debugVoices()
	}

	return snap
}

// CopySnapshotToClipboard serializes snap as indented JSON and writes it to
// the system clipboard. Returns an error if the platform has no clipboard
// support (the same soft-failure clipboard.Init() reports to
// handleClipboardPaste's caller).
func CopySnapshotToClipboard(snap Snapshot) error {
	clipboardOnce.Do(func() {
		clipboardOK = clipboard.Init() == nil
	})
	if !clipboardOK {
		return fmt.Errorf("pixelcore: no clipboard support on this platform")
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("pixelcore: marshal snapshot: %w", err)
	}
	clipboard.Write(clipboard.FmtText, data)
	return nil
}
