package renderer

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// TileTask represents a tile execution task for the worker pool
type TileTask struct {
	Tile   *Tile
	TaskID int // For deterministic ordering
}

// TileResult contains the result from executing a tile
type TileResult struct {
	TaskID int
	Cells  int
	Error  error
}

// frameJob is the state shared by all tiles of one dispatch. Tiles cover
// disjoint cells, so workers write the frame without locking.
type frameJob struct {
	ctx      context.Context
	program  RayGenProgram
	uniforms Uniforms
	frame    *Frame
	width    int
	height   int
}

// WorkerPool manages parallel tile execution
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual tile tasks
type Worker struct {
	ID          int
	job         *frameJob
	taskQueue   chan TileTask
	resultQueue chan TileResult
}

// NewWorkerPool creates a worker pool for one dispatch with room for
// numTiles queued tasks
func NewWorkerPool(job *frameJob, numTiles, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, numTiles),
		resultQueue: make(chan TileResult, numTiles),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			job:         job,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed tile result
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		cells, err := w.executeTile(task.Tile)
		w.resultQueue <- TileResult{
			TaskID: task.TaskID,
			Cells:  cells,
			Error:  err,
		}
	}
}

// executeTile invokes the ray generation program once per cell of the tile.
// A panicking program fails the tile instead of the process.
func (w *Worker) executeTile(tile *Tile) (cells int, err error) {
	job := w.job
	if err := job.ctx.Err(); err != nil {
		return 0, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer: tile %d: ray generation panicked: %v", tile.ID, r)
		}
	}()

	size := [2]int{job.width, job.height}
	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			origin, direction := job.uniforms.Ray(x, y, job.width, job.height)
			color := job.program(LaunchInfo{
				ID:        [2]int{x, y},
				Size:      size,
				Origin:    origin,
				Direction: direction,
			})
			job.frame.Set(x, y, color)
			cells++
		}
	}
	return cells, nil
}
