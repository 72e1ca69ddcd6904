package passes

import (
	"errors"
	"fmt"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/graph"
	"github.com/gogpu/framegraph/pipeline"
	"github.com/gogpu/framegraph/resource"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNotInitialized is returned by Execute on a forward pass whose pipelines
// have not been built.
var ErrNotInitialized = errors.New("passes: pass not initialized")

// Mesh is one draw of position+colour geometry. A zero Indices handle means
// a non-indexed draw of VertexCount vertices.
type Mesh struct {
	Vertices    resource.Handle[hal.Buffer]
	Indices     resource.Handle[hal.Buffer]
	VertexCount uint32
	IndexCount  uint32
	Index32     bool // uint32 indices instead of uint16
}

// MeshSource supplies the meshes drawn in a frame. It is queried once per
// Execute.
type MeshSource interface {
	Meshes() []Mesh
}

// StaticMeshes is a MeshSource over a fixed slice.
type StaticMeshes []Mesh

// Meshes returns s unchanged.
func (s StaticMeshes) Meshes() []Mesh { return s }

// ForwardPass draws geometry into the back buffer with depth testing.
//
// With no mesh source (or an empty one) it draws a procedural triangle,
// which needs no vertex buffers.
type ForwardPass struct {
	opts options

	initialized bool
	procedural  resource.Handle[hal.RenderPipeline]
	colored     resource.Handle[hal.RenderPipeline]
	draws       int
}

// NewForwardPass returns a pass with id "ForwardPass" that reads and writes
// BackBuffer and DepthBuffer.
func NewForwardPass(opts ...Option) *ForwardPass {
	o := defaultOptions("ForwardPass")
	for _, opt := range opts {
		opt(&o)
	}
	return &ForwardPass{opts: o}
}

// ID returns the pass id.
func (p *ForwardPass) ID() graph.PassID { return p.opts.id }

// Resources declares BackBuffer, plus DepthBuffer when depth testing is on,
// as read-write.
func (p *ForwardPass) Resources() []graph.Declaration {
	decls := []graph.Declaration{graph.ReadsWrites(BackBuffer)}
	if p.opts.depth {
		decls = append(decls, graph.ReadsWrites(DepthBuffer))
	}
	return decls
}

// Initialized reports whether Initialize has completed.
func (p *ForwardPass) Initialized() bool { return p.initialized }

// Resolution returns the configured viewport size.
func (p *ForwardPass) Resolution() (width, height uint32) { return p.opts.width, p.opts.height }

// DrawCalls returns the number of draws recorded by the last Execute.
func (p *ForwardPass) DrawCalls() int { return p.draws }

// Initialize builds the procedural and vertex-colour pipelines. Calling it
// again is a no-op.
func (p *ForwardPass) Initialize(dev resource.Device, rm *resource.Manager) error {
	if p.initialized {
		return nil
	}
	shaders := p.opts.shaders
	if shaders == nil {
		shaders = pipeline.NewShaderRegistry()
		p.opts.shaders = shaders
	}
	if err := shaders.RegisterDefaults(dev, rm); err != nil {
		return fmt.Errorf("forward pass: %w", err)
	}

	procedural, err := p.builder("forward_procedural").
		WithShader(pipeline.ShaderForwardSimple).
		Build(dev, rm, shaders)
	if err != nil {
		return fmt.Errorf("forward pass: %w", err)
	}
	colored, err := p.builder("forward_colored").
		WithShader(pipeline.ShaderForwardColor).
		WithVertexLayout(pipeline.PositionColor).
		Build(dev, rm, shaders)
	if err != nil {
		rm.Remove(procedural)
		return fmt.Errorf("forward pass: %w", err)
	}

	p.procedural, p.colored = procedural, colored
	p.initialized = true
	framegraph.Logger().Debug("forward pass: pipelines built",
		"format", fmt.Sprint(p.opts.surfaceFormat), "depth", p.opts.depth)
	return nil
}

func (p *ForwardPass) builder(label string) *pipeline.GraphicsPipelineBuilder {
	b := pipeline.NewGraphicsPipelineBuilder(label).
		WithColorFormat(p.opts.surfaceFormat).
		WithDepthFormat(p.opts.depthFormat).
		WithSampleCount(p.opts.sampleCount)
	if !p.opts.culling {
		b.WithCullMode(gputypes.CullModeNone)
	}
	if !p.opts.depth {
		b.WithoutDepthTest()
	}
	return b
}

// Execute records one render pass that loads the back buffer, clears depth
// and draws every mesh.
func (p *ForwardPass) Execute(rc *graph.RecordContext, rm *resource.Manager) error {
	if !p.initialized {
		return fmt.Errorf("%w: %s", ErrNotInitialized, p.opts.id)
	}
	color, err := resource.NamedObject[hal.TextureView](rm, BackBufferView)
	if err != nil {
		return graph.MissingResource(BackBufferView, err)
	}

	desc := &hal.RenderPassDescriptor{
		Label: "forward_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       color,
			LoadOp:     gputypes.LoadOpLoad,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: p.opts.clearColor,
		}},
	}
	if p.opts.depth {
		depth, err := resource.NamedObject[hal.TextureView](rm, DepthBufferView)
		if err != nil {
			return graph.MissingResource(DepthBufferView, err)
		}
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              depth,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		}
	}

	// Resolve everything before opening the pass so a lookup failure leaves
	// nothing half-recorded.
	var meshes []Mesh
	if p.opts.meshes != nil {
		meshes = p.opts.meshes.Meshes()
	}
	draws, err := p.resolve(rm, meshes)
	if err != nil {
		return err
	}

	rp := rc.Encoder.BeginRenderPass(desc)
	if len(draws) == 0 {
		pl, err := rm.RenderPipeline(p.procedural)
		if err != nil {
			rp.End()
			return err
		}
		rp.SetPipeline(pl)
		rp.Draw(3, 1, 0, 0)
		p.draws = 1
		rp.End()
		return nil
	}

	pl, err := rm.RenderPipeline(p.colored)
	if err != nil {
		rp.End()
		return err
	}
	rp.SetPipeline(pl)
	for _, d := range draws {
		rp.SetVertexBuffer(0, d.vertices, 0)
		if d.indices != nil {
			rp.SetIndexBuffer(d.indices, d.format, 0)
			rp.DrawIndexed(d.mesh.IndexCount, 1, 0, 0, 0)
		} else {
			rp.Draw(d.mesh.VertexCount, 1, 0, 0)
		}
	}
	p.draws = len(draws)
	rp.End()
	return nil
}

type resolvedDraw struct {
	mesh     Mesh
	vertices hal.Buffer
	indices  hal.Buffer
	format   gputypes.IndexFormat
}

func (p *ForwardPass) resolve(rm *resource.Manager, meshes []Mesh) ([]resolvedDraw, error) {
	draws := make([]resolvedDraw, 0, len(meshes))
	for i, m := range meshes {
		vb, err := rm.Buffer(m.Vertices)
		if err != nil {
			return nil, fmt.Errorf("mesh %d vertices: %w", i, err)
		}
		d := resolvedDraw{mesh: m, vertices: vb}
		if !m.Indices.IsZero() {
			ib, err := rm.Buffer(m.Indices)
			if err != nil {
				return nil, fmt.Errorf("mesh %d indices: %w", i, err)
			}
			d.indices = ib
			d.format = gputypes.IndexFormatUint16
			if m.Index32 {
				d.format = gputypes.IndexFormatUint32
			}
		}
		draws = append(draws, d)
	}
	return draws, nil
}
