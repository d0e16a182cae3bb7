package main

import (
	"fmt"
	"os"

	"github.com/df07/go-rtpipeline/cmd"
	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	sceneFlags := []cli.Flag{
		cli.StringFlag{
			Name:   "mesh",
			Usage:  "PLY file for the mesh scene",
			EnvVar: "RTP_MESH",
		},
		cli.Float64Flag{
			Name:   "time",
			Value:  0,
			Usage:  "animation time in seconds",
			EnvVar: "RTP_TIME",
		},
	}

	app := cli.NewApp()
	app.Name = "rtpipeline"
	app.Usage = "trace scenes through a software ray tracing pipeline"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a single frame of a scene",
			Description: `
Dispatch the scene's ray generation program once per pixel and save the
result as a PNG image. The trace mode resolves hits with TraceRay and shader
callbacks; the query mode resolves them with an inline ray query. Both modes
produce the same image.`,
			ArgsUsage: "scene",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:   "mode, m",
					Value:  "trace",
					Usage:  "hit resolution mode: trace or query",
					EnvVar: "RTP_MODE",
				},
				cli.IntFlag{
					Name:   "width",
					Usage:  "frame width (0 uses the scene default)",
					EnvVar: "RTP_WIDTH",
				},
				cli.IntFlag{
					Name:   "height",
					Usage:  "frame height (0 uses the scene default)",
					EnvVar: "RTP_HEIGHT",
				},
				cli.IntFlag{
					Name:   "workers, w",
					Usage:  "number of parallel workers (0 uses every CPU)",
					EnvVar: "RTP_WORKERS",
				},
				cli.IntFlag{
					Name:   "tile-size",
					Value:  32,
					Usage:  "tile edge in pixels",
					EnvVar: "RTP_TILE_SIZE",
				},
				cli.StringFlag{
					Name:   "out, o",
					Value:  "frame.png",
					Usage:  "image filename for the rendered frame",
					EnvVar: "RTP_OUT",
				},
			}, sceneFlags...),
			Action: cmd.RenderFrame,
		},
		{
			Name:   "scenes",
			Usage:  "list built-in scenes",
			Action: cmd.ListScenes,
		},
		{
			Name:      "inspect",
			Usage:     "print acceleration structure statistics of a scene",
			ArgsUsage: "scene",
			Flags:     sceneFlags,
			Action:    cmd.InspectScene,
		},
	}

	return app
}
