package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/df07/go-rtpipeline/pkg/renderer"
	"github.com/df07/go-rtpipeline/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// RenderOptions describe a single frame render
type RenderOptions struct {
	Scene        string
	Mode         scene.Mode
	Width        int // 0 uses the scene default
	Height       int // 0 uses the scene default
	Output       string
	Dispatch     renderer.DispatchConfig
	SceneOptions scene.Options
}

// RenderFrame renders a still frame of a built-in scene to a PNG file.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene argument")
	}

	mode, err := scene.ParseMode(ctx.String("mode"))
	if err != nil {
		return err
	}

	opts := RenderOptions{
		Scene:  ctx.Args().First(),
		Mode:   mode,
		Width:  ctx.Int("width"),
		Height: ctx.Int("height"),
		Output: ctx.String("out"),
		Dispatch: renderer.DispatchConfig{
			TileSize:   ctx.Int("tile-size"),
			NumWorkers: ctx.Int("workers"),
		},
		SceneOptions: scene.Options{
			MeshPath: ctx.String("mesh"),
			Time:     float32(ctx.Float64("time")),
		},
	}

	// Interrupting stops tiles that have not started
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := Render(sigCtx, opts)
	if err != nil {
		return err
	}

	displayDispatchStats(stats)
	logger.Noticef("frame saved to %s", opts.Output)
	return nil
}

// Render loads a scene, dispatches its ray generation program and writes
// the frame as PNG.
func Render(ctx context.Context, opts RenderOptions) (renderer.DispatchStats, error) {
	s, err := scene.Load(opts.Scene, opts.SceneOptions)
	if err != nil {
		return renderer.DispatchStats{}, err
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = s.Width
	}
	if height <= 0 {
		height = s.Height
	}

	frame, stats, err := s.Render(ctx, opts.Mode, width, height, opts.Dispatch)
	if err != nil {
		return stats, err
	}

	if err := writePNG(opts.Output, frame); err != nil {
		return stats, err
	}
	return stats, nil
}

func writePNG(filename string, frame *renderer.Frame) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, frame.Image); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

func displayDispatchStats(stats renderer.DispatchStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Size", "Tiles", "Workers", "Render time", "Cells/s"})
	table.Append([]string{
		fmt.Sprintf("%dx%d", stats.Width, stats.Height),
		fmt.Sprintf("%d", stats.Tiles),
		fmt.Sprintf("%d", stats.Workers),
		stats.Duration.String(),
		fmt.Sprintf("%.0f", stats.CellsPerSecond()),
	})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
