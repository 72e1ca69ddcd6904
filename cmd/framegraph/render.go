package main

import (
	"fmt"
	"os"

	"github.com/gogpu/framegraph/renderer"
	"github.com/urfave/cli"
)

// renderFrames renders a fixed number of headless frames.
func renderFrames(ctx *cli.Context) error {
	setupLogging(ctx)

	frames := ctx.Int("frames")
	if frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", frames)
	}
	if ctx.Int("width") <= 0 || ctx.Int("height") <= 0 {
		return fmt.Errorf("invalid size %dx%d", ctx.Int("width"), ctx.Int("height"))
	}
	cfg := renderer.DefaultConfig()
	cfg.Width = uint32(ctx.Int("width"))
	cfg.Height = uint32(ctx.Int("height"))
	cfg.MSAASamples = uint32(max(ctx.Int("msaa"), 0))
	cfg.EnableDepthTesting = !ctx.Bool("no-depth")

	var opts []renderer.HeadlessOption
	if ctx.GlobalBool("noop") {
		opts = append(opts, renderer.WithNoop())
	}
	opts = append(opts, renderer.WithSurface(cfg.SurfaceFormat, cfg.Width, cfg.Height))
	backend, err := renderer.OpenHeadless(opts...)
	if err != nil {
		return err
	}

	r, err := renderer.New(backend, cfg)
	if err != nil {
		backend.Close()
		return err
	}
	defer r.Close()

	if err := r.Initialize(); err != nil {
		return err
	}
	for i := range frames {
		if err := r.RenderFrame(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}

	name := "noop"
	if !backend.IsNoop() {
		name = backend.Adapter()
	}
	fmt.Printf("Rendered %d frames on %s (%s)\n", frames, name, r.Graph().Compiled())
	r.Stats().Table(os.Stdout)
	return nil
}
