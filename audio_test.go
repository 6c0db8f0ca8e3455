// audio_test.go - voice recycling and mixer tests (spec.md §8, scenario 3).

package pixelcore

import "testing"

func onePCMSample() *Source {
	return NewPCMSource(1, 44100, []int16{1000})
}

func TestDisposedVoiceBecomesReacquirableWithNewID(t *testing.T) {
	m := NewMixer(4, 44100)
	src := onePCMSample()

	ref, ok := m.Acquire(src)
	if !ok {
		t.Fatalf("acquire failed")
	}
	m.Dispose(ref)

	// Force the voice to finish playing (non-looping, at the end of a
	// 1-sample source any advance ends it).
	m.Unpause(ref) // no-op: already disposed, ref no longer resolves
	m.mu.Lock()
	m.voices[ref.Index].isPlaying = false
	m.mu.Unlock()

	ref2, ok := m.Acquire(src)
	if !ok {
		t.Fatalf("re-acquire after dispose should succeed")
	}
	if ref2.Index != ref.Index {
		t.Fatalf("expected the same now-free slot to be reused, got index %d want %d", ref2.Index, ref.Index)
	}
	if ref2.ID == ref.ID {
		t.Fatalf("re-acquired voice should get a different generational id")
	}
	if ref2.ID <= ref.ID {
		t.Fatalf("generational id should increase monotonically, got %d after %d", ref2.ID, ref.ID)
	}
}

func TestLoopingVoiceSamplePosWrapsExactlyAtSourceLength(t *testing.T) {
	const srcLen = 100
	src := NewPCMSource(1, 44100, make([]int16, srcLen))

	m := NewMixer(4, 44100)
	ref, _ := m.Acquire(src)
	m.SetLoop(ref, true)
	m.SetPitch(ref, 1)
	m.Unpause(ref)

	dest := make([]float32, 2*srcLen)
	m.Mix(dest)

	pos := m.Time(ref) * float32(src.SampleRate)
	mod := modf32(pos, float32(srcLen))
	if mod < -1e-3 || mod > 1e-3 {
		t.Fatalf("sample_pos mod source.len = %v, want ~0 after exactly source.len samples", mod)
	}
}

func TestVoiceRecyclingScenario(t *testing.T) {
	m := NewMixer(32, 44100)
	src := onePCMSample()

	// 32 reserved, unpaused, non-looping voices at pitch 0 (never advance).
	refs := make([]VoiceRef, 32)
	for i := range refs {
		ref, ok := m.Acquire(src)
		if !ok {
			t.Fatalf("reserved acquire %d failed", i)
		}
		m.SetPitch(ref, 0)
		m.Unpause(ref)
		refs[i] = ref
	}

	// Pool is full: an unreserved play() must not clobber any reserved voice.
	m.Play(src)
	for i, ref := range refs {
		m.mu.Lock()
		id := m.voices[ref.Index].id
		m.mu.Unlock()
		if id != ref.ID {
			t.Fatalf("reserved voice %d was clobbered by an unreserved play()", i)
		}
	}

	// Dispose one reserved voice, mark it stopped, then Acquire again: that
	// slot becomes eligible and gets a fresh, larger id.
	disposedIdx := refs[5].Index
	oldID := refs[5].ID
	m.Dispose(refs[5])

	m.mu.Lock()
	m.voices[disposedIdx].isPlaying = false
	m.mu.Unlock()

	ref2, ok := m.Acquire(src)
	if !ok {
		t.Fatalf("acquire after disposing a reserved voice should succeed")
	}
	if ref2.Index != disposedIdx {
		t.Fatalf("expected the disposed slot %d to be reused, got %d", disposedIdx, ref2.Index)
	}
	if ref2.ID <= oldID {
		t.Fatalf("new id %d should be larger than the disposed voice's old id %d", ref2.ID, oldID)
	}
}

func TestMixAccumulatesIntoDestBuffer(t *testing.T) {
	m := NewMixer(2, 44100)
	src := NewPCMSource(2, 44100, []int16{100, -100, 200, -200})

	ref, _ := m.Acquire(src)
	m.Unpause(ref)

	dest := make([]float32, 4)
	m.Mix(dest)

	if dest[0] == 0 && dest[1] == 0 {
		t.Fatalf("expected non-zero output from a playing voice, got %v", dest)
	}
}
