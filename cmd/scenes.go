package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/df07/go-rtpipeline/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ListScenes prints the built-in scenes grouped by category.
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)
	writeSceneTable(os.Stdout)
	return nil
}

func writeSceneTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Group", "ID", "Name", "Needs mesh", "Description"})
	for _, group := range scene.Grouped() {
		for _, info := range group.Scenes {
			table.Append([]string{
				group.Name,
				info.ID,
				info.Name,
				fmt.Sprintf("%t", info.NeedsMesh),
				info.Description,
			})
		}
	}
	table.Render()
}
