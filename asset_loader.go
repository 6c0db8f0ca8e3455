// asset_loader.go - concurrent map/texture/sound prefetch during scene
// init.
//
// Grounded on video_chip.go's image.Decode splash-loading path for turning
// arbitrary-format image bytes into an RGBA buffer, and on the gio
// cmd/gogio build tooling's errgroup.Group usage (var g errgroup.Group;
// g.Go(...); g.Wait()) for running independent, fallible loads
// concurrently and collecting the first error. A scene's Init hook is the
// one place spec.md's engine loop (C6) does blocking setup work, so that's
// where a Prefetcher's Load calls belong. Non-1:1 texture scaling (a
// texture's native size not matching the atlas cell it's meant to fill)
// goes through golang.org/x/image/draw's CatmullRom scaler rather than
// stdlib image/draw, which only supports unscaled copies.

package pixelcore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// FileAssetLoader resolves logical paths against a base directory on disk.
type FileAssetLoader struct {
	baseDir string
}

// NewFileAssetLoader roots every Load under baseDir.
func NewFileAssetLoader(baseDir string) *FileAssetLoader {
	return &FileAssetLoader{baseDir: baseDir}
}

// Load reads path relative to the loader's base directory.
func (l *FileAssetLoader) Load(path string) ([]byte, error) {
	full := filepath.Join(l.baseDir, path)
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("pixelcore: load asset %q: %w", path, err)
	}
	return data, nil
}

// ArchiveAssetLoader resolves logical paths from a packed archive (see
// archive.go) instead of the filesystem.
type ArchiveAssetLoader struct {
	archive *Archive
}

// NewArchiveAssetLoader wraps an already-open archive as an AssetLoader.
func NewArchiveAssetLoader(a *Archive) *ArchiveAssetLoader {
	return &ArchiveAssetLoader{archive: a}
}

// Load reads path's bytes out of the archive.
func (l *ArchiveAssetLoader) Load(path string) ([]byte, error) {
	data, ok := l.archive.Read(path)
	if !ok {
		return nil, fmt.Errorf("pixelcore: asset %q not found in archive", path)
	}
	return data, nil
}

// Prefetcher runs a batch of asset loads concurrently against an
// AssetLoader and an (optional) TextureUploader, collecting decoded
// results keyed by the logical path each request named.
type Prefetcher struct {
	assets   AssetLoader
	uploader TextureUploader
}

// NewPrefetcher prepares a prefetcher. uploader may be nil if this run
// never needs to decode textures (e.g. a headless/console platform).
func NewPrefetcher(assets AssetLoader, uploader TextureUploader) *Prefetcher {
	return &Prefetcher{assets: assets, uploader: uploader}
}

// PrefetchedLevel is a level's raw JSON bytes, fetched but not yet parsed
// (LoadLevel needs a live *Engine to spawn into, so parsing happens after
// the fetch completes).
type PrefetchedLevel struct {
	Path string
	Data []byte
}

// PrefetchedFont is a parsed font ready to hand to a scene.
type PrefetchedFont struct {
	Path string
	Font *Font
}

// TextureRequest names a texture asset to decode and upload. TargetWidth/
// TargetHeight of zero means "upload at the decoded image's native size";
// non-zero values scale to fit an atlas cell of that size.
type TextureRequest struct {
	Path                      string
	TargetWidth, TargetHeight int
}

// PrefetchedTexture is a decoded, GPU/atlas-resident texture.
type PrefetchedTexture struct {
	Path   string
	Handle TextureHandle
}

// PrefetchedSound is a decoded audio source ready to acquire a voice from.
type PrefetchedSound struct {
	Path   string
	Source *Source
}

// Fetch loads every named level, font, texture and sound concurrently and
// returns the first error encountered (errgroup.Group's standard
// fail-fast semantics); all four slices may be given empty.
func (p *Prefetcher) Fetch(levelPaths, fontPaths []string, textureReqs []TextureRequest, soundPaths []string) ([]PrefetchedLevel, []PrefetchedFont, []PrefetchedTexture, []PrefetchedSound, error) {
	levels := make([]PrefetchedLevel, len(levelPaths))
	fonts := make([]PrefetchedFont, len(fontPaths))
	textures := make([]PrefetchedTexture, len(textureReqs))
	sounds := make([]PrefetchedSound, len(soundPaths))

	var g errgroup.Group

	for i, path := range levelPaths {
		i, path := i, path
		g.Go(func() error {
			data, err := p.assets.Load(path)
			if err != nil {
				return err
			}
			levels[i] = PrefetchedLevel{Path: path, Data: data}
			return nil
		})
	}

	for i, path := range fontPaths {
		i, path := i, path
		g.Go(func() error {
			data, err := p.assets.Load(path)
			if err != nil {
				return err
			}
			font, err := LoadFontMetrics(data)
			if err != nil {
				return fmt.Errorf("pixelcore: font %q: %w", path, err)
			}
			fonts[i] = PrefetchedFont{Path: path, Font: font}
			return nil
		})
	}

	for i, req := range textureReqs {
		i, req := i, req
		g.Go(func() error {
			data, err := p.assets.Load(req.Path)
			if err != nil {
				return err
			}
			handle, err := p.decodeAndUpload(req, data)
			if err != nil {
				return err
			}
			textures[i] = PrefetchedTexture{Path: req.Path, Handle: handle}
			return nil
		})
	}

	for i, path := range soundPaths {
		i, path := i, path
		g.Go(func() error {
			data, err := p.assets.Load(path)
			if err != nil {
				return err
			}
			source, err := decodeSoundSource(data)
			if err != nil {
				return fmt.Errorf("pixelcore: sound %q: %w", path, err)
			}
			sounds[i] = PrefetchedSound{Path: path, Source: source}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, nil, nil, err
	}
	return levels, fonts, textures, sounds, nil
}

// decodeAndUpload decodes an arbitrary registered image format (PNG is
// imported for its side-effecting decoder registration) into a tightly
// packed RGBA buffer, the same image.Decode path video_chip.go uses for its
// splash image, scales to req's target size if one was given, then uploads
// it.
func (p *Prefetcher) decodeAndUpload(req TextureRequest, data []byte) (TextureHandle, error) {
	if p.uploader == nil {
		return 0, fmt.Errorf("pixelcore: no texture uploader configured for %q", req.Path)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("pixelcore: decode texture %q: %w", req.Path, err)
	}
	bounds := img.Bounds()

	targetW, targetH := bounds.Dx(), bounds.Dy()
	if req.TargetWidth > 0 {
		targetW = req.TargetWidth
	}
	if req.TargetHeight > 0 {
		targetH = req.TargetHeight
	}

	rgba := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	if targetW == bounds.Dx() && targetH == bounds.Dy() {
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(rgba, rgba.Bounds(), img, bounds, draw.Src, nil)
	}

	return p.uploader.UploadTexture(rgba.Pix, targetW, targetH)
}

// decodeSoundSource parses a minimal raw PCM sound asset: a little-endian
// header (uint16 channels, uint32 sampleRate) followed by interleaved
// int16 samples. Compressed codecs (QOA and similar) are out of scope here
// per audio_source.go's own FrameDecoder being a plug-in point rather than
// a concrete codec the core ships.
func decodeSoundSource(data []byte) (*Source, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("pixelcore: raw sound asset too short (%d bytes)", len(data))
	}
	channels := int(binary.LittleEndian.Uint16(data[0:2]))
	sampleRate := int(binary.LittleEndian.Uint32(data[2:6]))
	body := data[6:]
	if len(body)%2 != 0 {
		body = body[:len(body)-1]
	}
	samples := make([]int16, len(body)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(body[i*2 : i*2+2]))
	}
	return NewPCMSource(channels, sampleRate, samples), nil
}
