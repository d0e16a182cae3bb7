package cmd

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-rtpipeline/pkg/renderer"
	"github.com/df07/go-rtpipeline/pkg/scene"
)

func TestRender_WritesPNG(t *testing.T) {
	for _, mode := range []scene.Mode{scene.ModeTrace, scene.ModeQuery} {
		t.Run(mode.String(), func(t *testing.T) {
			output := filepath.Join(t.TempDir(), "frames", "cubes.png")
			stats, err := Render(context.Background(), RenderOptions{
				Scene:    "cubes",
				Mode:     mode,
				Width:    20,
				Height:   10,
				Output:   output,
				Dispatch: renderer.DispatchConfig{TileSize: 8, NumWorkers: 2},
			})
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if stats.Cells != 200 {
				t.Errorf("Expected 200 cells, got %d", stats.Cells)
			}

			f, err := os.Open(output)
			if err != nil {
				t.Fatalf("Expected output file: %v", err)
			}
			defer f.Close()

			img, err := png.Decode(f)
			if err != nil {
				t.Fatalf("Failed to decode PNG: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
				t.Errorf("Expected 20x10 image, got %dx%d", b.Dx(), b.Dy())
			}
		})
	}
}

func TestRender_Errors(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.png")

	_, err := Render(context.Background(), RenderOptions{Scene: "nonexistent", Output: output})
	if !errors.Is(err, scene.ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Render(ctx, RenderOptions{Scene: "cubes", Width: 8, Height: 8, Output: output})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if _, statErr := os.Stat(output); statErr == nil {
		t.Error("Expected no output file for a cancelled render")
	}
}

func TestWriteSceneTable(t *testing.T) {
	var buf bytes.Buffer
	writeSceneTable(&buf)

	out := buf.String()
	for _, id := range scene.Names() {
		if !strings.Contains(out, id) {
			t.Errorf("Expected scene table to list %q", id)
		}
	}
}

func TestWriteStatsTable(t *testing.T) {
	s, err := scene.Load("procedural-spheres", scene.Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var buf bytes.Buffer
	writeStatsTable(&buf, s.Info, s.Stats())

	out := buf.String()
	for _, want := range []string{"procedural-spheres", "TLAS", "BLAS", "64 instances", "2 primitives"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected stats table to contain %q, got:\n%s", want, out)
		}
	}
}
