// renderer.go - named platform capability interfaces (A1, spec.md §9).
//
// Grounded on spec.md §9's "engine/pool/hunk singletons should be a context
// handed explicitly to subsystems" guidance, restated for the collaborators
// spec.md §1 explicitly keeps out of the core: rendering, input, the host
// clock, and asset loading are all small named interfaces the engine is
// handed, concretely satisfied by the Ebiten/Vulkan/term backends alongside
// this file.

package pixelcore

// TextureHandle identifies a GPU- or atlas-resident texture. Zero is never
// a valid handle.
type TextureHandle uint32

// QuadDrawer is the renderer capability a draw() hook actually needs: blit
// a rectangular region of an uploaded texture (or a flat color, texture
// zero) into the frame at dst, tinted by rgba.
type QuadDrawer interface {
	DrawQuad(dst AABB, srcTexture TextureHandle, srcRect AABB, tint RGBA)
}

// TextureUploader is the renderer capability an asset loader needs: push
// decoded RGBA bytes onto the GPU/atlas and get back a stable handle.
type TextureUploader interface {
	UploadTexture(rgba []byte, width, height int) (TextureHandle, error)
}

// InputSource is the minimal polled-input surface a scene needs. Button
// indices are game-defined; spec.md §7 requires an unbound/out-of-range
// index to return false rather than panic (soft failure).
type InputSource interface {
	ButtonDown(button int) bool
	ButtonPressed(button int) bool
	MouseAxis() Vec2
}

// Clock abstracts the host's wall-clock source so RunFrame's real-delta
// accounting is testable without a real timer.
type Clock interface {
	NowSeconds() float64
}

// AssetLoader resolves a logical asset path (possibly archive-backed, see
// archive.go) to bytes.
type AssetLoader interface {
	Load(path string) ([]byte, error)
}
