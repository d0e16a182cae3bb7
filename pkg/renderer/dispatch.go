package renderer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/df07/go-rtpipeline/pkg/log"
	"github.com/go-gl/mathgl/mgl32"
)

var logger = log.New("renderer")

var (
	ErrInvalidSize = errors.New("renderer: launch size must be positive")
	ErrNilProgram  = errors.New("renderer: nil ray generation program")
)

// LaunchInfo identifies one ray generation invocation and carries its
// primary ray
type LaunchInfo struct {
	ID        [2]int // Cell coordinates; row 0 is the top of the image
	Size      [2]int // Launch grid size
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// RayGenProgram computes the color of one cell. It runs concurrently for
// different cells and must only share read-only state.
type RayGenProgram func(launch LaunchInfo) mgl32.Vec4

// DispatchConfig configures how a launch grid is split across workers
type DispatchConfig struct {
	TileSize   int // Tile edge in cells
	NumWorkers int // Number of parallel workers (0 = auto-detect)
}

// DefaultDispatchConfig returns a configuration using every CPU
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		TileSize:   32,
		NumWorkers: runtime.NumCPU(),
	}
}

// Dispatcher executes ray generation programs over a launch grid
type Dispatcher struct {
	config DispatchConfig
}

// NewDispatcher creates a dispatcher, filling unset fields from the defaults
func NewDispatcher(config DispatchConfig) *Dispatcher {
	defaults := DefaultDispatchConfig()
	if config.TileSize <= 0 {
		config.TileSize = defaults.TileSize
	}
	if config.NumWorkers <= 0 {
		config.NumWorkers = defaults.NumWorkers
	}
	return &Dispatcher{config: config}
}

// Config returns the effective configuration
func (d *Dispatcher) Config() DispatchConfig {
	return d.config
}

// Dispatch invokes program exactly once per cell of a width by height grid
// and collects the returned colors into a frame. Cancelling ctx stops
// tiles that have not started yet. A nil ctx never cancels.
func (d *Dispatcher) Dispatch(ctx context.Context, program RayGenProgram, uniforms Uniforms, width, height int) (*Frame, DispatchStats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if program == nil {
		return nil, DispatchStats{}, ErrNilProgram
	}
	if width <= 0 || height <= 0 {
		return nil, DispatchStats{}, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	start := time.Now()
	frame := NewFrame(width, height)
	tiles := NewTileGrid(width, height, d.config.TileSize)
	numWorkers := min(d.config.NumWorkers, len(tiles))

	job := &frameJob{
		ctx:      ctx,
		program:  program,
		uniforms: uniforms,
		frame:    frame,
		width:    width,
		height:   height,
	}
	pool := NewWorkerPool(job, len(tiles), numWorkers)
	pool.Start()

	logger.Debugf("dispatching %dx%d grid: %d tiles on %d workers", width, height, len(tiles), pool.GetNumWorkers())

	for id, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, TaskID: id})
	}
	pool.Stop()

	stats := DispatchStats{
		Width:   width,
		Height:  height,
		Tiles:   len(tiles),
		Workers: pool.GetNumWorkers(),
	}

	var firstErr error
	failed := -1
	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		stats.Cells += result.Cells
		// Report the error of the lowest failing tile for deterministic output
		if result.Error != nil && (failed < 0 || result.TaskID < failed) {
			failed = result.TaskID
			firstErr = result.Error
		}
	}
	stats.Duration = time.Since(start)

	if firstErr != nil {
		return nil, stats, firstErr
	}

	logger.Infof("dispatched %d cells in %v (%.0f cells/s)", stats.Cells, stats.Duration, stats.CellsPerSecond())
	return frame, stats, nil
}
