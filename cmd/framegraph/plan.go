package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gogpu/framegraph/graph"
	"github.com/gogpu/framegraph/passes"
	"github.com/urfave/cli"
)

// printPlan compiles the standard graph plus any --extra passes and prints
// the plan. No device is opened.
func printPlan(ctx *cli.Context) error {
	setupLogging(ctx)

	g := graph.New()
	g.AddPass(passes.NewClearPass())
	g.AddPass(passes.NewForwardPass())
	for _, spec := range ctx.StringSlice("extra") {
		p, err := parseExtra(spec)
		if err != nil {
			return err
		}
		g.AddPass(p)
	}

	plan, err := g.Compile()
	if err != nil {
		var cycle *graph.CycleError
		if errors.As(err, &cycle) {
			return cli.NewExitError(err.Error(), 2)
		}
		return err
	}
	plan.Describe(os.Stdout)
	return nil
}

// parseExtra parses NAME=USAGE:SLOT[,USAGE:SLOT...] into a placeholder pass.
func parseExtra(s string) (*passes.PlaceholderPass, error) {
	name, rest, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return nil, fmt.Errorf("extra pass %q: want NAME=USAGE:SLOT", s)
	}

	var decls []graph.Declaration
	for _, field := range strings.Split(rest, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		usage, slot, ok := strings.Cut(field, ":")
		slot = strings.TrimSpace(slot)
		if !ok || slot == "" {
			return nil, fmt.Errorf("extra pass %q: bad declaration %q", name, field)
		}
		r := graph.ResourceID(slot)
		switch strings.ToLower(strings.TrimSpace(usage)) {
		case "r":
			decls = append(decls, graph.Reads(r))
		case "w":
			decls = append(decls, graph.Writes(r))
		case "rw":
			decls = append(decls, graph.ReadsWrites(r))
		default:
			return nil, fmt.Errorf("extra pass %q: unknown usage %q", name, usage)
		}
	}
	return passes.NewPlaceholderPass(graph.PassID(name), decls...), nil
}
