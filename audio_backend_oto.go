//go:build !headless

// audio_backend_oto.go - oto/v3 audio output, pulling mixed samples from a
// Mixer on demand.
//
// Grounded on OtoPlayer: an oto.Context wrapping a player backed by this
// struct's io.Reader implementation, a pre-allocated sample buffer reused
// across Read calls to avoid per-callback allocation, and Start/Stop/Close
// guarding the player lifecycle under a mutex. OtoPlayer's
// atomic.Pointer[SoundChip] hot-path trick doesn't carry over: Read here
// calls straight into Mixer.Mix, since Mixer already owns its own internal
// mutex guarding the exact same control-vs-mix-callback concurrency
// (audio_voice.go's doc comment) — a second lock layer here would only add
// contention, not safety.

package pixelcore

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

// OtoOutput drives a Mixer through oto's pull-based audio callback. Mixer
// output is interleaved stereo float32, matching oto.FormatFloat32LE with
// ChannelCount 2.
type OtoOutput struct {
	ctx    *oto.Context
	player *oto.Player
	mixer  *Mixer

	sampleBuf []float32 // pre-allocated, reused across Read calls
	started   bool
	mutex     sync.Mutex // setup/control operations only, matching OtoPlayer
}

// NewOtoOutput opens an oto context at sampleRate and wires it to mix from
// mixer on every pull.
func NewOtoOutput(mixer *Mixer, sampleRate int) (*OtoOutput, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	})
	if err != nil {
		return nil, fmt.Errorf("pixelcore: oto.NewContext: %w", err)
	}
	<-ready

	out := &OtoOutput{
		ctx:       ctx,
		mixer:     mixer,
		sampleBuf: make([]float32, 4096),
	}
	out.player = ctx.NewPlayer(out)
	return out, nil
}

// Read implements io.Reader for oto's pull callback: mixes len(p)/4 float32
// samples and copies them out as raw little-endian bytes.
func (o *OtoOutput) Read(p []byte) (n int, err error) {
	numSamples := len(p) / 4
	if len(o.sampleBuf) < numSamples {
		o.sampleBuf = make([]float32, numSamples)
	}
	samples := o.sampleBuf[:numSamples]

	o.mixer.Mix(samples)

	copy(p, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:len(p)])
	return len(p), nil
}

// Start begins playback. Safe to call more than once.
func (o *OtoOutput) Start() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if !o.started {
		o.player.Play()
		o.started = true
	}
}

// Stop halts playback without releasing the underlying player.
func (o *OtoOutput) Stop() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.started {
		o.player.Pause()
		o.started = false
	}
}

// Close releases the player and its context resources.
func (o *OtoOutput) Close() {
	o.Stop()
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
}
