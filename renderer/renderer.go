package renderer

import (
	"fmt"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/graph"
	"github.com/gogpu/framegraph/passes"
	"github.com/gogpu/framegraph/pipeline"
	"github.com/gogpu/framegraph/resource"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Renderer runs a clear pass followed by a forward pass every frame.
// Additional passes can be added through Graph before the first frame.
type Renderer struct {
	backend Backend
	cfg     Config
	meshes  passes.MeshSource

	resources *resource.Manager
	graph     *graph.RenderGraph
	shaders   *pipeline.ShaderRegistry
	forward   *passes.ForwardPass

	// targets are released on Resize: colour texture, its view, and the
	// depth pair when depth testing is on.
	targets []resource.AnyHandle

	stats       Stats
	initialized bool
	closed      bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMeshes sets the geometry the forward pass draws. Without it the pass
// draws a procedural triangle.
func WithMeshes(src passes.MeshSource) Option {
	return func(r *Renderer) { r.meshes = src }
}

// WithResources makes the renderer use an existing resource manager.
func WithResources(rm *resource.Manager) Option {
	return func(r *Renderer) { r.resources = rm }
}

// New validates cfg and returns an uninitialized renderer.
func New(backend Backend, cfg Config, opts ...Option) (*Renderer, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: nil backend", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Renderer{
		backend: backend,
		cfg:     cfg,
		shaders: pipeline.NewShaderRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.resources == nil {
		r.resources = resource.NewManager()
	}
	r.graph = graph.New(graph.WithWaitTimeout(cfg.WaitTimeout))
	return r, nil
}

// Config returns the validated configuration.
func (r *Renderer) Config() Config { return r.cfg }

// Graph returns the render graph.
func (r *Renderer) Graph() *graph.RenderGraph { return r.graph }

// Resources returns the resource manager.
func (r *Renderer) Resources() *resource.Manager { return r.resources }

// Stats returns a snapshot of the frame counters.
func (r *Renderer) Stats() Stats { return r.stats }

// ResetStats zeroes the frame counters.
func (r *Renderer) ResetStats() { r.stats.Reset() }

// Initialize creates the render targets, adds the built-in passes,
// initializes every pass and compiles the graph. It is a no-op once done.
func (r *Renderer) Initialize() error {
	if r.closed {
		return ErrClosed
	}
	if r.initialized {
		return nil
	}
	device := r.backend.Device()
	r.backend.Resize(r.cfg.Width, r.cfg.Height)

	if err := r.createTargets(device); err != nil {
		return err
	}

	clearPass := passes.NewClearPass(passes.WithClearColor(r.cfg.ClearColor))
	r.forward = passes.NewForwardPass(
		passes.WithSurfaceFormat(r.cfg.SurfaceFormat),
		passes.WithDepthFormat(r.cfg.DepthFormat),
		passes.WithResolution(r.cfg.Width, r.cfg.Height),
		passes.WithDepth(r.cfg.EnableDepthTesting),
		passes.WithCulling(r.cfg.EnableCulling),
		passes.WithSampleCount(r.cfg.MSAASamples),
		passes.WithShaderRegistry(r.shaders),
		passes.WithMeshes(r.meshes),
	)
	r.graph.AddPass(clearPass)
	r.graph.AddPass(r.forward)

	if err := r.graph.InitializePasses(device, r.resources); err != nil {
		return fmt.Errorf("initialize passes: %w", err)
	}
	if _, err := r.graph.Compile(); err != nil {
		return err
	}
	r.initialized = true
	framegraph.Logger().Info("renderer: initialized",
		"width", r.cfg.Width, "height", r.cfg.Height,
		"depth", r.cfg.EnableDepthTesting, "samples", r.cfg.MSAASamples,
		"plan", r.graph.Compiled().String())
	return nil
}

// RenderFrame records and submits one frame, then presents it. A graph
// changed since the last frame is recompiled first.
func (r *Renderer) RenderFrame() error {
	if r.closed {
		return ErrClosed
	}
	if !r.initialized {
		return ErrNotInitialized
	}
	start := time.Now()

	if !r.graph.IsCompiled() {
		if err := r.graph.InitializePasses(r.backend.Device(), r.resources); err != nil {
			return fmt.Errorf("initialize passes: %w", err)
		}
		if _, err := r.graph.Compile(); err != nil {
			return err
		}
	}
	if err := r.graph.Execute(r.backend.Device(), r.backend.Queue(), r.resources); err != nil {
		return err
	}
	if err := r.backend.Present(); err != nil {
		return fmt.Errorf("present: %w", err)
	}

	draws := 0
	if _, ok := r.graph.Compiled().Position(r.forward.ID()); ok {
		draws = r.forward.DrawCalls()
	}
	r.stats.record(draws, r.graph.Compiled().Len(), time.Since(start))
	return nil
}

// Resize recreates the render targets at the new size and republishes them
// under the same names. The compiled plan is unaffected.
func (r *Renderer) Resize(width, height uint32) error {
	if r.closed {
		return ErrClosed
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, width, height)
	}
	if width == r.cfg.Width && height == r.cfg.Height {
		return nil
	}
	r.cfg.Width, r.cfg.Height = width, height
	r.backend.Resize(width, height)
	if !r.initialized {
		return nil
	}

	r.releaseTargets()
	if err := r.createTargets(r.backend.Device()); err != nil {
		return err
	}
	framegraph.Logger().Debug("renderer: resized", "width", width, "height", height)
	return nil
}

// Close releases every resource and the backend. It is safe to call more
// than once.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.graph.Clear()
	r.shaders.Clear()
	r.resources.Clear()
	r.targets = nil
	r.backend.Close()
}

func (r *Renderer) createTargets(device hal.Device) error {
	size := hal.Extent3D{Width: r.cfg.Width, Height: r.cfg.Height, DepthOrArrayLayers: 1}
	// Multisampled textures cannot be copy sources.
	usage := gputypes.TextureUsageRenderAttachment
	if r.cfg.MSAASamples == 1 {
		usage |= gputypes.TextureUsageCopySrc
	}
	err := r.createTarget(device, size, r.cfg.SurfaceFormat, usage,
		string(passes.BackBuffer), passes.BackBufferView)
	if err != nil {
		r.releaseTargets()
		return err
	}
	if !r.cfg.EnableDepthTesting {
		return nil
	}
	err = r.createTarget(device, size, r.cfg.DepthFormat,
		gputypes.TextureUsageRenderAttachment,
		string(passes.DepthBuffer), passes.DepthBufferView)
	if err != nil {
		r.releaseTargets()
		return err
	}
	return nil
}

func (r *Renderer) createTarget(device hal.Device, size hal.Extent3D, format gputypes.TextureFormat,
	usage gputypes.TextureUsage, texName, viewName string) error {
	tex, err := r.resources.CreateTexture(device, &hal.TextureDescriptor{
		Label:         texName,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   r.cfg.MSAASamples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", texName, err)
	}
	r.targets = append(r.targets, tex)

	view, err := r.resources.CreateTextureView(device, tex, &hal.TextureViewDescriptor{Label: viewName})
	if err != nil {
		return fmt.Errorf("create %s: %w", viewName, err)
	}
	r.targets = append(r.targets, view)

	if err := r.resources.PublishNamed(texName, tex); err != nil {
		return err
	}
	return r.resources.PublishNamed(viewName, view)
}

// releaseTargets removes views before the textures they were created from.
func (r *Renderer) releaseTargets() {
	for i := len(r.targets) - 1; i >= 0; i-- {
		r.resources.Remove(r.targets[i])
	}
	r.targets = r.targets[:0]
}
