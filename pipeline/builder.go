package pipeline

import (
	"fmt"

	"github.com/gogpu/framegraph/resource"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// GraphicsPipelineBuilder assembles a render pipeline from registered
// shaders and fixed-function state.
//
// Defaults: triangle list, back-face culling with counter-clockwise front
// faces, depth test and write with CompareFunctionLess, a BGRA8Unorm colour
// target, a Depth24PlusStencil8 depth target, no blending and one sample.
type GraphicsPipelineBuilder struct {
	label          string
	vertexShader   string
	fragmentShader string
	vertexEntry    string
	fragmentEntry  string
	layout         VertexLayout

	topology  gputypes.PrimitiveTopology
	cullMode  gputypes.CullMode
	frontFace gputypes.FrontFace

	depthTest    bool
	depthWrite   bool
	depthCompare gputypes.CompareFunction
	depthFormat  gputypes.TextureFormat

	colorFormat gputypes.TextureFormat
	blend       *gputypes.BlendState
	sampleCount uint32

	bindGroupLayouts []resource.Handle[hal.BindGroupLayout]
}

// NewGraphicsPipelineBuilder returns a builder with the default state.
func NewGraphicsPipelineBuilder(label string) *GraphicsPipelineBuilder {
	return &GraphicsPipelineBuilder{
		label:         label,
		vertexEntry:   "vs_main",
		fragmentEntry: "fs_main",
		topology:      gputypes.PrimitiveTopologyTriangleList,
		cullMode:      gputypes.CullModeBack,
		frontFace:     gputypes.FrontFaceCCW,
		depthTest:     true,
		depthWrite:    true,
		depthCompare:  gputypes.CompareFunctionLess,
		depthFormat:   gputypes.TextureFormatDepth24PlusStencil8,
		colorFormat:   gputypes.TextureFormatBGRA8Unorm,
		sampleCount:   1,
	}
}

// WithShader uses the named shader for both stages.
func (b *GraphicsPipelineBuilder) WithShader(name string) *GraphicsPipelineBuilder {
	b.vertexShader, b.fragmentShader = name, name
	return b
}

// WithShaders uses separate vertex and fragment shaders.
func (b *GraphicsPipelineBuilder) WithShaders(vertex, fragment string) *GraphicsPipelineBuilder {
	b.vertexShader, b.fragmentShader = vertex, fragment
	return b
}

// WithEntryPoints overrides the vs_main/fs_main entry points.
func (b *GraphicsPipelineBuilder) WithEntryPoints(vertex, fragment string) *GraphicsPipelineBuilder {
	b.vertexEntry, b.fragmentEntry = vertex, fragment
	return b
}

// WithVertexLayout sets the vertex buffer layout. An empty layout means the
// pipeline reads no vertex buffers.
func (b *GraphicsPipelineBuilder) WithVertexLayout(l VertexLayout) *GraphicsPipelineBuilder {
	b.layout = l
	return b
}

func (b *GraphicsPipelineBuilder) WithTopology(t gputypes.PrimitiveTopology) *GraphicsPipelineBuilder {
	b.topology = t
	return b
}

func (b *GraphicsPipelineBuilder) WithCullMode(m gputypes.CullMode) *GraphicsPipelineBuilder {
	b.cullMode = m
	return b
}

func (b *GraphicsPipelineBuilder) WithFrontFace(f gputypes.FrontFace) *GraphicsPipelineBuilder {
	b.frontFace = f
	return b
}

func (b *GraphicsPipelineBuilder) WithDepthCompare(c gputypes.CompareFunction) *GraphicsPipelineBuilder {
	b.depthCompare = c
	return b
}

func (b *GraphicsPipelineBuilder) WithDepthWrite(enabled bool) *GraphicsPipelineBuilder {
	b.depthWrite = enabled
	return b
}

func (b *GraphicsPipelineBuilder) WithDepthFormat(f gputypes.TextureFormat) *GraphicsPipelineBuilder {
	b.depthFormat = f
	return b
}

// WithoutDepthTest drops the depth attachment state entirely.
func (b *GraphicsPipelineBuilder) WithoutDepthTest() *GraphicsPipelineBuilder {
	b.depthTest = false
	b.depthWrite = false
	return b
}

func (b *GraphicsPipelineBuilder) WithColorFormat(f gputypes.TextureFormat) *GraphicsPipelineBuilder {
	b.colorFormat = f
	return b
}

// WithBlend enables blending on the colour target.
func (b *GraphicsPipelineBuilder) WithBlend(state gputypes.BlendState) *GraphicsPipelineBuilder {
	b.blend = &state
	return b
}

func (b *GraphicsPipelineBuilder) WithSampleCount(n uint32) *GraphicsPipelineBuilder {
	b.sampleCount = n
	return b
}

// WithBindGroupLayout appends a bind group layout to the pipeline layout.
func (b *GraphicsPipelineBuilder) WithBindGroupLayout(h resource.Handle[hal.BindGroupLayout]) *GraphicsPipelineBuilder {
	b.bindGroupLayouts = append(b.bindGroupLayouts, h)
	return b
}

// DepthTest reports whether the pipeline will carry depth state.
func (b *GraphicsPipelineBuilder) DepthTest() bool { return b.depthTest }

// Build creates the pipeline layout and the render pipeline in rm.
func (b *GraphicsPipelineBuilder) Build(dev resource.Device, rm *resource.Manager, shaders *ShaderRegistry) (resource.Handle[hal.RenderPipeline], error) {
	var none resource.Handle[hal.RenderPipeline]

	vs, err := b.module(rm, shaders, b.vertexShader)
	if err != nil {
		return none, err
	}
	fs, err := b.module(rm, shaders, b.fragmentShader)
	if err != nil {
		return none, err
	}

	var buffers []gputypes.VertexBufferLayout
	if !b.layout.IsEmpty() {
		vbl, err := b.layout.Build()
		if err != nil {
			return none, err
		}
		buffers = []gputypes.VertexBufferLayout{vbl}
	}

	if b.sampleCount != 1 && b.sampleCount != 4 {
		return none, fmt.Errorf("%w: %s: sample count %d", ErrPipelineCreation, b.label, b.sampleCount)
	}

	groupLayouts := make([]hal.BindGroupLayout, 0, len(b.bindGroupLayouts))
	for _, h := range b.bindGroupLayouts {
		l, err := rm.BindGroupLayout(h)
		if err != nil {
			return none, fmt.Errorf("%w: %s: %w", ErrPipelineCreation, b.label, err)
		}
		groupLayouts = append(groupLayouts, l)
	}
	layoutHandle, err := rm.CreatePipelineLayout(dev, &hal.PipelineLayoutDescriptor{
		Label:            b.label + "_layout",
		BindGroupLayouts: groupLayouts,
	})
	if err != nil {
		return none, fmt.Errorf("%w: %w", ErrPipelineCreation, err)
	}
	layout, err := rm.PipelineLayout(layoutHandle)
	if err != nil {
		return none, fmt.Errorf("%w: %w", ErrPipelineCreation, err)
	}

	desc := &hal.RenderPipelineDescriptor{
		Label:  b.label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     vs,
			EntryPoint: b.vertexEntry,
			Buffers:    buffers,
		},
		Fragment: &hal.FragmentState{
			Module:     fs,
			EntryPoint: b.fragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    b.colorFormat,
					Blend:     b.blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  b.topology,
			FrontFace: b.frontFace,
			CullMode:  b.cullMode,
		},
		Multisample: gputypes.MultisampleState{
			Count: b.sampleCount,
			Mask:  0xFFFFFFFF,
		},
	}
	if b.depthTest {
		desc.DepthStencil = b.depthStencil()
	}

	p, err := rm.CreateRenderPipeline(dev, desc)
	if err != nil {
		rm.Remove(layoutHandle)
		return none, fmt.Errorf("%w: %w", ErrPipelineCreation, err)
	}
	return p, nil
}

func (b *GraphicsPipelineBuilder) depthStencil() *hal.DepthStencilState {
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	return &hal.DepthStencilState{
		Format:            b.depthFormat,
		DepthWriteEnabled: b.depthWrite,
		DepthCompare:      b.depthCompare,
		StencilFront:      keep,
		StencilBack:       keep,
	}
}

func (b *GraphicsPipelineBuilder) module(rm *resource.Manager, shaders *ShaderRegistry, name string) (hal.ShaderModule, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: %s: no shader set", ErrShaderNotFound, b.label)
	}
	h, err := shaders.Get(name)
	if err != nil {
		return nil, err
	}
	m, err := rm.Shader(h)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderNotFound, name, err)
	}
	return m, nil
}
