//go:build !headless

// renderer_ebiten.go - Ebiten-backed software quad blitter (A1).
//
// Grounded on original_source's approach of the video backend owning a
// single RGBA frame buffer that's uploaded wholesale each frame
// (video_backend_ebiten.go's EbitenOutput: a CPU-side frameBuffer blitted
// via ebiten.Image.WritePixels from Draw, vsync signalled back to the
// caller through a buffered channel, ebiten.Game's three methods). Quad
// compositing itself (DrawQuad) happens in software against that buffer;
// texture atlases come from UploadTexture, kept as plain Go byte slices
// since this is the cheap, no-GPU path — the Vulkan backend is for when
// the game wants hardware compositing instead.

package pixelcore

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenRenderer implements Renderer, QuadDrawer and TextureUploader by
// rasterizing into a CPU framebuffer and presenting it through ebiten's
// game loop, mirroring EbitenOutput's single-buffer-per-frame design.
type EbitenRenderer struct {
	width, height int
	window        *ebiten.Image
	frame         []byte // RGBA8, width*height*4

	mu       sync.RWMutex
	textures map[TextureHandle]ebitenTexture
	nextID   TextureHandle

	vsync chan struct{}

	// onFrame is called once per ebiten.Game Update tick; it's how the
	// engine's RunFrame gets driven from ebiten's own loop rather than a
	// separately-owned goroutine.
	onFrame func()
}

type ebitenTexture struct {
	rgba          []byte
	width, height int
}

// NewEbitenRenderer allocates a renderer for a width x height logical
// frame. onFrame is invoked once per ebiten tick (typically wrapping
// Engine.RunFrame).
func NewEbitenRenderer(width, height int, onFrame func()) *EbitenRenderer {
	return &EbitenRenderer{
		width:    width,
		height:   height,
		frame:    make([]byte, width*height*4),
		textures: make(map[TextureHandle]ebitenTexture),
		vsync:    make(chan struct{}, 1),
		onFrame:  onFrame,
	}
}

// Run starts ebiten's window loop; blocks until the window closes.
func (r *EbitenRenderer) Run(title string) error {
	ebiten.SetWindowSize(r.width, r.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	return ebiten.RunGame(r)
}

// UploadTexture stores rgba under a fresh handle. There's no real GPU
// atlas in the software path — it's just kept around for DrawQuad to
// sample from.
func (r *EbitenRenderer) UploadTexture(rgba []byte, width, height int) (TextureHandle, error) {
	if len(rgba) != width*height*4 {
		return 0, fmt.Errorf("pixelcore: texture data length %d does not match %dx%d RGBA", len(rgba), width, height)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.textures[r.nextID] = ebitenTexture{rgba: rgba, width: width, height: height}
	return r.nextID, nil
}

// DrawQuad blits srcRect of srcTexture (or a flat tint, if srcTexture is
// zero) into dst of the CPU frame buffer, clipped to the frame bounds.
// Nearest-neighbor sampling only — this is a 2D fixed-function engine, not
// a general image compositor.
func (r *EbitenRenderer) DrawQuad(dst AABB, srcTexture TextureHandle, srcRect AABB, tint RGBA) {
	r.mu.RLock()
	tex, hasTex := r.textures[srcTexture]
	r.mu.RUnlock()

	x0, y0 := int(dst.Pos.X), int(dst.Pos.Y)
	x1, y1 := int(dst.Pos.X+dst.Size.X), int(dst.Pos.Y+dst.Size.Y)
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > r.width {
		x1 = r.width
	}
	if y1 > r.height {
		y1 = r.height
	}

	for y := y0; y < y1; y++ {
		v := float32(0)
		if dst.Size.Y > 0 {
			v = (float32(y) - dst.Pos.Y) / dst.Size.Y
		}
		for x := x0; x < x1; x++ {
			var src RGBA
			if hasTex && dst.Size.X > 0 {
				u := (float32(x) - dst.Pos.X) / dst.Size.X
				sx := int(srcRect.Pos.X + u*srcRect.Size.X)
				sy := int(srcRect.Pos.Y + v*srcRect.Size.Y)
				if sx >= 0 && sx < tex.width && sy >= 0 && sy < tex.height {
					o := (sy*tex.width + sx) * 4
					src = RGBA{tex.rgba[o], tex.rgba[o+1], tex.rgba[o+2], tex.rgba[o+3]}
				}
			} else {
				src = tint
			}
			if hasTex {
				src.R = uint8(uint16(src.R) * uint16(tint.R) / 255)
				src.G = uint8(uint16(src.G) * uint16(tint.G) / 255)
				src.B = uint8(uint16(src.B) * uint16(tint.B) / 255)
				src.A = uint8(uint16(src.A) * uint16(tint.A) / 255)
			}
			o := (y*r.width + x) * 4
			dstColor := RGBA{r.frame[o], r.frame[o+1], r.frame[o+2], r.frame[o+3]}
			out := Blend(dstColor, src)
			r.frame[o+0] = out.R
			r.frame[o+1] = out.G
			r.frame[o+2] = out.B
			r.frame[o+3] = out.A
		}
	}
}

// FrameBegin clears the frame buffer to transparent black, matching
// EbitenOutput.Clear's role at the start of a composited frame.
func (r *EbitenRenderer) FrameBegin() {
	for i := range r.frame {
		r.frame[i] = 0
	}
}

// FrameEnd is a no-op: ebiten's own Draw callback is what actually
// presents the frame buffer to the window.
func (r *EbitenRenderer) FrameEnd() {}

// Update is ebiten.Game's per-tick hook; it drives onFrame (normally
// Engine.RunFrame) the way EbitenOutput.Update drives input handling.
func (r *EbitenRenderer) Update() error {
	if r.onFrame != nil {
		r.onFrame()
	}
	return nil
}

// Draw uploads the CPU frame buffer wholesale, exactly like
// EbitenOutput.Draw's WritePixels-then-DrawImage pair.
func (r *EbitenRenderer) Draw(screen *ebiten.Image) {
	if r.window == nil {
		r.window = ebiten.NewImage(r.width, r.height)
	}
	r.window.WritePixels(r.frame)
	screen.DrawImage(r.window, nil)

	select {
	case r.vsync <- struct{}{}:
	default:
	}
}

// Layout reports the logical (unscaled) frame size.
func (r *EbitenRenderer) Layout(_, _ int) (int, int) {
	return r.width, r.height
}
