// cmd/demo - thin entry point wiring the engine, Ebiten renderer, and oto
// audio output together.
//
// Grounded on cmd/ie32to64's main.go: flag-based CLI surface, a Usage
// function describing examples, and fmt.Fprintf(os.Stderr, ...) plus
// os.Exit(1) on a fatal startup error rather than panicking.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kestrelgames/pixelcore"
)

func main() {
	levelPath := flag.String("level", "", "Level JSON file to load at startup")
	width := flag.Int("width", 640, "Window width in pixels")
	height := flag.Int("height", 360, "Window height in pixels")
	sampleRate := flag.Int("samplerate", 44100, "Audio output sample rate")
	assetDir := flag.String("assets", ".", "Base directory to resolve asset paths against")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: demo [options]\n\nRuns a pixelcore engine instance in a window.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  demo -level levels/intro.json\n")
		fmt.Fprintf(os.Stderr, "  demo -width 1280 -height 720 -level levels/intro.json\n")
	}
	flag.Parse()

	cfg := pixelcore.DefaultConfig()
	types := pixelcore.NewTypeRegistry()
	eng := pixelcore.NewEngine(cfg, types)

	audioOut, err := pixelcore.NewOtoOutput(eng.Mixer, *sampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: starting audio output: %v\n", err)
		os.Exit(1)
	}
	audioOut.Start()
	defer audioOut.Close()

	loader := pixelcore.NewFileAssetLoader(*assetDir)

	scene := &pixelcore.Scene{
		Init: func(e *pixelcore.Engine) {
			if *levelPath == "" {
				return
			}
			data, err := loader.Load(*levelPath)
			if err != nil {
				log.Fatalf("pixelcore: loading level %q: %v", *levelPath, err)
			}
			if err := pixelcore.LoadLevel(e, data); err != nil {
				log.Fatalf("pixelcore: parsing level %q: %v", *levelPath, err)
			}
		},
	}
	eng.SetScene(scene)

	clock := pixelcore.NewWallClock()
	var renderer *pixelcore.EbitenRenderer
	renderer = pixelcore.NewEbitenRenderer(*width, *height, func() {
		eng.RunFrame(clock.NowSeconds())
	})
	eng.Renderer = renderer

	if err := renderer.Run("pixelcore"); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
