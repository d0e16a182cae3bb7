package renderer

import "time"

// DispatchStats contains statistics about one dispatch
type DispatchStats struct {
	Width    int           // Launch grid width
	Height   int           // Launch grid height
	Cells    int           // Number of ray generation invocations
	Tiles    int           // Number of tiles executed
	Workers  int           // Number of workers used
	Duration time.Duration // Wall time of the dispatch
}

// CellsPerSecond returns the invocation throughput of the dispatch
func (s DispatchStats) CellsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Cells) / s.Duration.Seconds()
}
