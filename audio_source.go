// audio_source.go - PCM and frame-decoded compressed audio sources (C5 input).
//
// Grounded on original_source/src/sound.c's sound_source_t: either fully
// decoded 16-bit PCM (for sources under the uncompressed-sample threshold)
// or a compressed blob with a per-source single-frame decode buffer and a
// pcm_buffer_start index tracking which frame is currently materialized.

package pixelcore

import "log"

// DefaultMaxUncompressedSamples is the threshold under which a source is
// fully decoded to PCM at load time (spec.md §6).
const DefaultMaxUncompressedSamples = 64 * 1024

// DefaultMaxSources is the default number of simultaneously loaded sources.
const DefaultMaxSources = 128

// FrameDecoder decodes one frame of a compressed source, starting at
// sampleIndex, into dst (interleaved by channel count) and returns how many
// sample frames it wrote. This is the only place a concrete codec (QOA,
// ADPCM, etc.) plugs into the mixer; the core only needs frame boundaries.
type FrameDecoder interface {
	// FrameLen is the number of sample frames a single decode covers.
	FrameLen() int
	// DecodeFrame decodes the frame containing sampleIndex into dst.
	// Returns the number of sample frames actually written.
	DecodeFrame(sampleIndex int, dst []int16) int
}

// Source is an audio source: either fully-decoded PCM or a compressed blob
// decoded frame-by-frame on demand. Channels ∈ {1,2}; SampleRate > 0.
type Source struct {
	Channels   int
	Len        int // total sample frames
	SampleRate int

	// PCM holds interleaved 16-bit samples when Compressed == nil.
	PCM []int16

	// Compressed decodes frames on demand when non-nil; PCM is instead
	// used as the shared per-source decode buffer (spec.md §9: "per-source
	// compressed PCM buffer shared by voices").
	Compressed      FrameDecoder
	pcmBufferStart  int
}

// NewPCMSource wraps already-decoded interleaved samples.
func NewPCMSource(channels, sampleRate int, samples []int16) *Source {
	if channels != 1 && channels != 2 {
		log.Fatalf("pixelcore: audio source channels must be 1 or 2, got %d", channels)
	}
	if sampleRate <= 0 {
		log.Fatalf("pixelcore: audio source samplerate must be > 0, got %d", sampleRate)
	}
	return &Source{
		Channels:   channels,
		Len:        len(samples) / channels,
		SampleRate: sampleRate,
		PCM:        samples,
	}
}

// NewCompressedSource wraps a frame decoder, allocating its shared decode
// buffer and materializing the first frame.
func NewCompressedSource(channels, sampleRate, totalSamples int, dec FrameDecoder) *Source {
	if channels != 1 && channels != 2 {
		log.Fatalf("pixelcore: audio source channels must be 1 or 2, got %d", channels)
	}
	if sampleRate <= 0 {
		log.Fatalf("pixelcore: audio source samplerate must be > 0, got %d", sampleRate)
	}
	s := &Source{
		Channels:   channels,
		Len:        totalSamples,
		SampleRate: sampleRate,
		Compressed: dec,
		PCM:        make([]int16, dec.FrameLen()*channels),
	}
	dec.DecodeFrame(0, s.PCM)
	return s
}

// Duration returns the source's length in seconds.
func (s *Source) Duration() float32 {
	return float32(s.Len) / float32(s.SampleRate)
}

// sampleAt returns the left and right sample values at sampleIndex,
// decoding a new frame first if sampleIndex falls outside the currently
// materialized window. This mutation is shared across all voices reading
// the same source — acceptable per spec.md §4.5 because voices advance
// monotonically through the same frame sequence.
func (s *Source) sampleAt(sampleIndex int) (left, right int16) {
	if s.Compressed != nil {
		frameLen := s.Compressed.FrameLen()
		if sampleIndex < s.pcmBufferStart || sampleIndex >= s.pcmBufferStart+frameLen {
			frameIndex := sampleIndex / frameLen
			s.Compressed.DecodeFrame(frameIndex*frameLen, s.PCM)
			s.pcmBufferStart = frameIndex * frameLen
		}
		sampleIndex -= s.pcmBufferStart
	}

	c := 0
	if s.Channels == 2 {
		c = 1
	}
	base := sampleIndex << uint(c)
	if base < 0 || base+c >= len(s.PCM) {
		return 0, 0
	}
	return s.PCM[base], s.PCM[base+c]
}
