package main

import (
	"fmt"
	"os"

	"github.com/gogpu/framegraph"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "framegraph"
	app.Usage = "compile and run render graphs"
	app.Version = framegraph.Version
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable debug logging",
		},
		cli.BoolFlag{
			Name:  "noop",
			Usage: "use the noop HAL instead of Vulkan",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render headless frames with the standard graph",
			Description: `
Open a headless device, build the clear and forward passes, render the
requested number of frames and print frame statistics.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "frames, n",
					Value: 60,
					Usage: "number of frames to render",
				},
				cli.IntFlag{
					Name:  "width",
					Value: 800,
					Usage: "target width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 600,
					Usage: "target height",
				},
				cli.IntFlag{
					Name:  "msaa",
					Value: 1,
					Usage: "sample count (1 or 4)",
				},
				cli.BoolFlag{
					Name:  "no-depth",
					Usage: "disable depth testing",
				},
			},
			Action: renderFrames,
		},
		{
			Name:  "plan",
			Usage: "print the execution plan of the standard graph",
			Description: `
Compile the standard graph, optionally extended with placeholder passes, and
print one row per step. Each --extra value has the form

    NAME=USAGE:SLOT[,USAGE:SLOT...]

where USAGE is r, w or rw. A cyclic graph exits non-zero and lists the
passes that could not be scheduled.`,
			ArgsUsage: " ",
			Flags: []cli.Flag{
				cli.StringSliceFlag{
					Name:  "extra, e",
					Value: &cli.StringSlice{},
					Usage: "add a placeholder pass",
				},
			},
			Action: printPlan,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
