// audio_voice.go - voice acquisition and control (C5).
//
// Grounded on original_source/src/sound.c's sound_node_t and the
// sound()/sound_play()/sound_dispose() family: a fixed pool of generational
// (id, index) nodes, acquired in "reserved" state until disposed, with a
// fallback scan that can cut off an unreserved free-playing voice when the
// pool is otherwise full.

package pixelcore

import "sync"

// DefaultMaxVoices is the default number of simultaneously mixable voices
// (spec.md §6).
const DefaultMaxVoices = 32

// VoiceRef is a (id, index) pair identifying a voice, exactly like
// EntityRef. VoiceRefNone (id 0) always resolves to "no voice".
type VoiceRef struct {
	ID    uint16
	Index uint16
}

var VoiceRefNone = VoiceRef{}

// voice is one mixable node. A voice with ID == 0 is free.
type voice struct {
	source    *Source
	id        uint16
	isPlaying bool
	isHalted  bool
	isLooping bool
	pan       float32
	volume    float32
	pitch     float32
	samplePos float32
}

// Mixer owns the fixed voice pool and the per-callback mix. The voice table
// is guarded by a mutex per spec.md §5: the mixer may run on a separate
// host audio thread and reads voice state without fine-grained locking
// guarantees beyond "writes from the control thread become visible before
// the next acquire hands a freed slot back out" — a single mutex around
// the whole table satisfies that trivially.
type Mixer struct {
	mu sync.Mutex

	voices   []voice
	uniqueID uint16

	globalVolume  float32
	outSampleRate int
}

// NewMixer allocates a mixer with maxVoices slots (spec.md §6 default 32),
// mixing for output at outSampleRate.
func NewMixer(maxVoices, outSampleRate int) *Mixer {
	if maxVoices <= 0 {
		maxVoices = DefaultMaxVoices
	}
	return &Mixer{
		voices:        make([]voice, maxVoices),
		globalVolume:  1,
		outSampleRate: outSampleRate,
	}
}

// Acquire reserves a fresh voice for source. Scans first for a fully-idle,
// unreserved slot; failing that, falls back to any unreserved slot (cutting
// off whatever was playing there); returns VoiceRefNone if every slot is
// reserved.
func (m *Mixer) Acquire(source *Source) (VoiceRef, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i := range m.voices {
		v := &m.voices[i]
		if !v.isPlaying && !v.isHalted && v.id == 0 {
			idx = i
			break
		}
	}
	if idx == -1 {
		for i := range m.voices {
			if m.voices[i].id == 0 {
				idx = i
				break
			}
		}
	}
	if idx == -1 {
		return VoiceRefNone, false
	}

	m.uniqueID++
	if m.uniqueID == 0 {
		m.uniqueID = 1
	}

	v := &m.voices[idx]
	*v = voice{
		source: source,
		id:     m.uniqueID,
		volume: 1,
		pitch:  1,
	}

	return VoiceRef{ID: m.uniqueID, Index: uint16(idx)}, true
}

// Play is a convenience for Acquire + Unpause + Dispose: the voice is
// unreserved immediately so it auto-recycles once it plays through.
func (m *Mixer) Play(source *Source) {
	ref, ok := m.Acquire(source)
	if !ok {
		return
	}
	m.Unpause(ref)
	m.Dispose(ref)
}

// Dispose clears a voice's reservation (id -> 0). The voice keeps playing
// to completion if unpaused and unlooped, matching sound_dispose; once it
// stops (or immediately, if already stopped) the slot becomes eligible for
// Acquire's first scan pass again.
func (m *Mixer) Dispose(ref VoiceRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.resolve(ref)
	if v == nil {
		return
	}
	v.isLooping = false
	v.id = 0
}

func (m *Mixer) resolve(ref VoiceRef) *voice {
	if ref.ID == 0 || int(ref.Index) >= len(m.voices) {
		return nil
	}
	v := &m.voices[ref.Index]
	if v.id != ref.ID {
		return nil
	}
	return v
}

// Unpause starts or resumes playback.
func (m *Mixer) Unpause(ref VoiceRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v := m.resolve(ref); v != nil {
		v.isPlaying = true
		v.isHalted = false
	}
}

// Pause stops playback without rewinding.
func (m *Mixer) Pause(ref VoiceRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v := m.resolve(ref); v != nil {
		v.isPlaying = false
		v.isHalted = false
	}
}

// Stop pauses and rewinds to the start.
func (m *Mixer) Stop(ref VoiceRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v := m.resolve(ref); v != nil {
		v.samplePos = 0
		v.isPlaying = false
		v.isHalted = false
	}
}

// HaltAll puts every currently-playing voice into a halted state (e.g. for
// a pause screen); ResumeAll reverses it.
func (m *Mixer) HaltAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.voices {
		if m.voices[i].isPlaying {
			m.voices[i].isPlaying = false
			m.voices[i].isHalted = true
		}
	}
}

func (m *Mixer) ResumeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.voices {
		if m.voices[i].isHalted {
			m.voices[i].isPlaying = true
			m.voices[i].isHalted = false
		}
	}
}

func (m *Mixer) SetLoop(ref VoiceRef, loop bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v := m.resolve(ref); v != nil {
		v.isLooping = loop
	}
}

func (m *Mixer) Loop(ref VoiceRef) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v := m.resolve(ref); v != nil {
		return v.isLooping
	}
	return false
}

// SetVolume sets a voice's volume, clamped to [0,16] (spec.md §3).
func (m *Mixer) SetVolume(ref VoiceRef, volume float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v := m.resolve(ref); v != nil {
		v.volume = clampf(volume, 0, 16)
	}
}

// SetPan sets a voice's stereo pan, clamped to [-1,1] (spec.md §3).
func (m *Mixer) SetPan(ref VoiceRef, pan float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v := m.resolve(ref); v != nil {
		v.pan = clampf(pan, -1, 1)
	}
}

func (m *Mixer) SetPitch(ref VoiceRef, pitch float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v := m.resolve(ref); v != nil {
		v.pitch = pitch
	}
}

// Time returns the voice's position in seconds; soft no-op (0) on a stale
// ref per spec.md §7.
func (m *Mixer) Time(ref VoiceRef) float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.resolve(ref)
	if v == nil {
		return 0
	}
	return v.samplePos / float32(v.source.SampleRate)
}

// SetTime seeks a voice to the given position in seconds; silently a no-op
// on a stale ref.
func (m *Mixer) SetTime(ref VoiceRef, t float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.resolve(ref)
	if v == nil {
		return
	}
	v.samplePos = clampf(t*float32(v.source.SampleRate), 0, float32(v.source.Len))
}

// GlobalVolume returns the master volume, clamped to [0,1].
func (m *Mixer) GlobalVolume() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.globalVolume
}

func (m *Mixer) SetGlobalVolume(v float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globalVolume = clampf(v, 0, 1)
}

// debugVoices snapshots every in-use voice slot for debug_snapshot.go. A
// voice with id 0 is a free slot and is skipped.
func (m *Mixer) debugVoices() []VoiceSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []VoiceSummary
	for i, v := range m.voices {
		if v.id == 0 {
			continue
		}
		out = append(out, VoiceSummary{
			Index:   i,
			Playing: v.isPlaying,
			Halted:  v.isHalted,
			Looping: v.isLooping,
			Volume:  v.volume,
			Pan:     v.pan,
			Pitch:   v.pitch,
		})
	}
	return out
}
