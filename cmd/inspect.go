package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/df07/go-rtpipeline/pkg/accel"
	"github.com/df07/go-rtpipeline/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// InspectScene builds a scene and prints statistics about its
// acceleration structures.
func InspectScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene argument")
	}

	s, err := scene.Load(ctx.Args().First(), scene.Options{
		MeshPath: ctx.String("mesh"),
		Time:     float32(ctx.Float64("time")),
	})
	if err != nil {
		return err
	}

	writeStatsTable(os.Stdout, s.Info, s.Stats())
	return nil
}

func writeStatsTable(w io.Writer, info scene.Info, stats accel.Stats) {
	fmt.Fprintf(w, "%s (%s)\n", info.Name, info.ID)

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Level", "Nodes", "Leaves", "Items", "Max depth", "Avg leaf depth"})
	for _, row := range []struct {
		level string
		bvh   accel.BVHStats
	}{
		{"TLAS", stats.TopLevel},
		{"BLAS", stats.BottomLevel},
	} {
		table.Append([]string{
			row.level,
			fmt.Sprintf("%d", row.bvh.TotalNodes),
			fmt.Sprintf("%d", row.bvh.LeafNodes),
			fmt.Sprintf("%d", row.bvh.TotalItems),
			fmt.Sprintf("%d", row.bvh.MaxDepth),
			fmt.Sprintf("%.2f", row.bvh.AvgDepth),
		})
	}
	table.SetFooter([]string{
		"TOTAL",
		fmt.Sprintf("%d instances", stats.Instances),
		fmt.Sprintf("%d blas", stats.BLASCount),
		fmt.Sprintf("%d geometries", stats.Geometries),
		fmt.Sprintf("%d primitives", stats.Primitives),
		"",
	})
	table.Render()
}
