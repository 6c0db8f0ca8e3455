// audio_mixer.go - per-sample stereo mixing (C5 §4.5).
//
// Grounded on original_source/src/sound.c's sound_mix_stereo: nearest-
// neighbor resampling by an accumulating float sample cursor, per-voice
// gain from global volume / 32768 * voice volume * pan clamp, looping by
// float modulo (handles negative pitch), shared per-source decode buffer
// for compressed sources.

package pixelcore

// Mix fills dest (interleaved stereo, length must be even) with the sum of
// all playing voices, normalized to roughly [-1,1] but not clamped — the
// caller clips. Safe to call from a dedicated audio callback thread
// concurrently with control-path calls (Acquire, SetVolume, etc.).
func (m *Mixer) Mix(dest []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range dest {
		dest[i] = 0
	}

	volumeNormalize := m.globalVolume / 32768.0
	invOutRate := float32(0)
	if m.outSampleRate > 0 {
		invOutRate = 1.0 / float32(m.outSampleRate)
	}

	for i := range m.voices {
		v := &m.voices[i]
		if !v.isPlaying || v.volume <= 0 || v.source == nil {
			continue
		}

		source := v.source
		volLeft := volumeNormalize * v.volume * clampf(1.0-v.pan, 0, 1)
		volRight := volumeNormalize * v.volume * clampf(1.0+v.pan, 0, 1)
		pitch := v.pitch * float32(source.SampleRate) * invOutRate

		for di := 0; di < len(dest); di += 2 {
			sourceIndex := int(v.samplePos)

			left, right := source.sampleAt(sourceIndex)
			dest[di+0] += float32(left) * volLeft
			dest[di+1] += float32(right) * volRight

			v.samplePos += pitch
			if v.samplePos >= float32(source.Len) || v.samplePos < 0 {
				if v.isLooping {
					wasNegative := v.samplePos < 0
					v.samplePos = modf32(v.samplePos, float32(source.Len))
					if wasNegative {
						v.samplePos += float32(source.Len)
					}
				} else {
					v.isPlaying = false
					break
				}
			}
		}
	}
}

func modf32(a, b float32) float32 {
	if b == 0 {
		return 0
	}
	q := float32(int(a / b))
	return a - q*b
}
