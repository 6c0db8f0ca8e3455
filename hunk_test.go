// hunk_test.go - tests for the bump/temp allocator invariants (spec.md §8).

package pixelcore

import "testing"

func TestHunkBumpResetReverts(t *testing.T) {
	h := NewHunk(4096, 0)
	mark := h.BumpMark()
	h.BumpAlloc(64)
	h.BumpAlloc(128)
	h.BumpReset(mark)
	if h.bumpLen != mark.bumpLen {
		t.Fatalf("bump_len after reset = %d, want %d", h.bumpLen, mark.bumpLen)
	}
}

func TestHunkBumpAllocZeroed(t *testing.T) {
	h := NewHunk(4096, 0)
	p := h.BumpAlloc(16)
	for i, b := range p {
		if b != 0 {
			t.Fatalf("byte %d not zeroed: %d", i, b)
		}
	}
}

func TestHunkTempLenTracksMaxLiveOffset(t *testing.T) {
	h := NewHunk(4096, 8)

	h1, _ := h.TempAlloc(8)
	h2, _ := h.TempAlloc(16)
	h3, _ := h.TempAlloc(8)

	if h.tempLen != h3.offset {
		t.Fatalf("temp_len = %d, want %d", h.tempLen, h3.offset)
	}

	// Free the most recent (highest) object; temp_len should fall back to h2's offset.
	h.TempFree(h3)
	if h.tempLen != h2.offset {
		t.Fatalf("temp_len after freeing h3 = %d, want %d (h2's offset)", h.tempLen, h2.offset)
	}

	// Free h1 (out of order, lower offset); max remains h2's offset.
	h.TempFree(h1)
	if h.tempLen != h2.offset {
		t.Fatalf("temp_len after out-of-order free = %d, want %d", h.tempLen, h2.offset)
	}

	h.TempFree(h2)
	if h.tempLen != 0 {
		t.Fatalf("temp_len after freeing all = %d, want 0", h.tempLen)
	}
}

func TestHunkBumpFromTempPreservesBytes(t *testing.T) {
	h := NewHunk(4096, 8)
	handle, buf := h.TempAlloc(32)
	copy(buf, []byte("0123456789abcdef"))

	want := append([]byte(nil), buf[4:12]...)
	out := h.BumpFromTemp(handle, buf, 4, 8)

	if string(out) != string(want) {
		t.Fatalf("bump_from_temp bytes = %q, want %q", out, want)
	}
}

func TestHunkTempAllocCheckPassesWhenEmpty(t *testing.T) {
	h := NewHunk(4096, 8)
	h.TempAllocCheck() // must not fatal

	handle, _ := h.TempAlloc(8)
	h.TempFree(handle)
	h.TempAllocCheck() // must not fatal
}

func TestHunkFrameDiscipline(t *testing.T) {
	h := NewHunk(1<<20, 0)

	sceneMark := h.BumpMark()
	sceneData := h.BumpAlloc(1024)
	for i := range sceneData {
		sceneData[i] = byte(i)
	}

	frameMark := h.BumpMark()
	h.BumpAlloc(512)
	h.BumpReset(frameMark)

	// 1 KiB allocated at scene init must still hold its original bytes.
	for i, b := range sceneData {
		if b != byte(i) {
			t.Fatalf("scene data corrupted at %d: got %d want %d", i, b, byte(i))
		}
	}

	frame1 := h.BumpAlloc(700)
	if &frame1[0] != &h.data[frameMark.bumpLen] {
		t.Fatalf("frame1 allocation did not reuse frame0's base address")
	}
	_ = sceneMark
}
