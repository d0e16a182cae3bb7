package renderer

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestDispatch_EveryCellOnce(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		config        DispatchConfig
	}{
		{"single tile", 16, 16, DispatchConfig{TileSize: 32, NumWorkers: 4}},
		{"uneven tiles", 37, 23, DispatchConfig{TileSize: 8, NumWorkers: 3}},
		{"one worker", 10, 7, DispatchConfig{TileSize: 3, NumWorkers: 1}},
		{"more workers than tiles", 5, 5, DispatchConfig{TileSize: 4, NumWorkers: 16}},
		{"single cell", 1, 1, DispatchConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counts := make([]int32, tt.width*tt.height)
			program := func(l LaunchInfo) mgl32.Vec4 {
				if l.Size != [2]int{tt.width, tt.height} {
					t.Errorf("Unexpected launch size %v", l.Size)
				}
				atomic.AddInt32(&counts[l.ID[1]*tt.width+l.ID[0]], 1)
				return mgl32.Vec4{float32(l.ID[0]) / 255, float32(l.ID[1]) / 255, 0, 1}
			}

			frame, stats, err := NewDispatcher(tt.config).Dispatch(context.Background(), program, Uniforms{ViewInverse: mgl32.Ident4(), ProjInverse: mgl32.Ident4()}, tt.width, tt.height)
			if err != nil {
				t.Fatalf("Dispatch failed: %v", err)
			}

			for i, c := range counts {
				if c != 1 {
					t.Fatalf("Cell %d invoked %d times", i, c)
				}
			}
			if stats.Cells != tt.width*tt.height {
				t.Errorf("Expected %d cells, got %d", tt.width*tt.height, stats.Cells)
			}
			if frame.Width() != tt.width || frame.Height() != tt.height {
				t.Errorf("Expected %dx%d frame, got %dx%d", tt.width, tt.height, frame.Width(), frame.Height())
			}
			for y := 0; y < tt.height; y++ {
				for x := 0; x < tt.width; x++ {
					c := frame.Image.RGBAAt(x, y)
					if int(c.R) != x || int(c.G) != y || c.A != 255 {
						t.Fatalf("Pixel (%d,%d) holds %v", x, y, c)
					}
				}
			}
		})
	}
}

func TestDispatch_PrimaryRays(t *testing.T) {
	u, err := LookAtPerspective(mgl32.Vec3{0, 0, 2.5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, 59, 1, 0.1, 100)
	if err != nil {
		t.Fatalf("LookAtPerspective failed: %v", err)
	}

	_, _, err = NewDispatcher(DispatchConfig{TileSize: 2, NumWorkers: 2}).Dispatch(context.Background(), func(l LaunchInfo) mgl32.Vec4 {
		origin, direction := u.Ray(l.ID[0], l.ID[1], l.Size[0], l.Size[1])
		if origin != l.Origin || direction != l.Direction {
			t.Errorf("Cell %v: launch ray differs from the unprojected ray", l.ID)
		}
		return mgl32.Vec4{}
	}, u, 5, 3)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
}

func TestDispatch_Errors(t *testing.T) {
	d := NewDispatcher(DispatchConfig{TileSize: 4, NumWorkers: 2})
	black := func(LaunchInfo) mgl32.Vec4 { return mgl32.Vec4{} }
	u := Uniforms{ViewInverse: mgl32.Ident4(), ProjInverse: mgl32.Ident4()}

	if _, _, err := d.Dispatch(context.Background(), nil, u, 4, 4); !errors.Is(err, ErrNilProgram) {
		t.Errorf("Expected ErrNilProgram, got %v", err)
	}
	if _, _, err := d.Dispatch(context.Background(), black, u, 0, 4); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Expected ErrInvalidSize, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := d.Dispatch(ctx, black, u, 8, 8); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	panicky := func(l LaunchInfo) mgl32.Vec4 {
		if l.ID == [2]int{5, 5} {
			panic("boom")
		}
		return mgl32.Vec4{}
	}
	_, _, err := d.Dispatch(context.Background(), panicky, u, 8, 8)
	if err == nil || !strings.Contains(err.Error(), "tile 3") {
		t.Errorf("Expected tile 3 to report the panic, got %v", err)
	}
}

func TestNewDispatcher_Defaults(t *testing.T) {
	config := NewDispatcher(DispatchConfig{}).Config()
	defaults := DefaultDispatchConfig()
	if config != defaults {
		t.Errorf("Expected %+v, got %+v", defaults, config)
	}
}

func TestNewTileGrid(t *testing.T) {
	tiles := NewTileGrid(10, 5, 4)
	if len(tiles) != 6 {
		t.Fatalf("Expected 6 tiles, got %d", len(tiles))
	}

	area := 0
	for i, tile := range tiles {
		if tile.ID != i {
			t.Errorf("Expected tile %d to have ID %d, got %d", i, i, tile.ID)
		}
		area += tile.Bounds.Dx() * tile.Bounds.Dy()
	}
	if area != 50 {
		t.Errorf("Expected tiles to cover 50 cells, got %d", area)
	}
	if last := tiles[5].Bounds; last.Dx() != 2 || last.Dy() != 1 {
		t.Errorf("Expected clipped 2x1 corner tile, got %v", last)
	}
}

func TestDispatch_NilContext(t *testing.T) {
	d := NewDispatcher(DispatchConfig{TileSize: 4, NumWorkers: 2})
	u := Uniforms{ViewInverse: mgl32.Ident4(), ProjInverse: mgl32.Ident4()}
	white := func(LaunchInfo) mgl32.Vec4 { return mgl32.Vec4{1, 1, 1, 1} }

	var ctx context.Context
	frame, stats, err := d.Dispatch(ctx, white, u, 6, 5)
	if err != nil {
		t.Fatalf("Expected nil context to run uncancelled, got %v", err)
	}
	if stats.Cells != 30 {
		t.Errorf("Expected 30 cells, got %d", stats.Cells)
	}
	if l := frame.AverageLuminance(); l < 0.999 || l > 1.001 {
		t.Errorf("Expected a white frame, got luminance %v", l)
	}
}
