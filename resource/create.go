package resource

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device is the subset of hal.Device the manager creates and destroys
// objects with. Every hal.Device satisfies it.
type Device interface {
	CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error)
	DestroyBuffer(buffer hal.Buffer)
	CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error)
	DestroyTexture(texture hal.Texture)
	CreateTextureView(texture hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error)
	DestroyTextureView(view hal.TextureView)
	CreateSampler(desc *hal.SamplerDescriptor) (hal.Sampler, error)
	DestroySampler(sampler hal.Sampler)
	CreateBindGroupLayout(desc *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error)
	DestroyBindGroupLayout(layout hal.BindGroupLayout)
	CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error)
	DestroyBindGroup(group hal.BindGroup)
	CreatePipelineLayout(desc *hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error)
	DestroyPipelineLayout(layout hal.PipelineLayout)
	CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error)
	DestroyShaderModule(module hal.ShaderModule)
	CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error)
	DestroyRenderPipeline(pipeline hal.RenderPipeline)
	CreateComputePipeline(desc *hal.ComputePipelineDescriptor) (hal.ComputePipeline, error)
	DestroyComputePipeline(pipeline hal.ComputePipeline)
}

// CreateBuffer creates a buffer and returns its handle.
func (m *Manager) CreateBuffer(dev Device, desc *hal.BufferDescriptor) (Handle[hal.Buffer], error) {
	buf, err := dev.CreateBuffer(desc)
	if err != nil {
		return Handle[hal.Buffer]{}, creationError(KindBuffer, desc.Label, err)
	}
	return store(m, buf, func() { dev.DestroyBuffer(buf) }), nil
}

// CreateBufferInit creates a buffer sized to data (rounded up to a multiple
// of 4 bytes) and uploads data through queue. CopyDst is added to usage.
// If the upload fails the buffer is destroyed.
func (m *Manager) CreateBufferInit(dev Device, queue hal.Queue, label string, data []byte, usage gputypes.BufferUsage) (Handle[hal.Buffer], error) {
	size := (uint64(len(data)) + 3) &^ 3
	if size == 0 {
		size = 4
	}
	h, err := m.CreateBuffer(dev, &hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return h, err
	}
	if len(data) == 0 {
		return h, nil
	}
	buf, err := m.Buffer(h)
	if err == nil {
		err = queue.WriteBuffer(buf, 0, data)
	}
	if err != nil {
		m.Remove(h)
		return Handle[hal.Buffer]{}, creationError(KindBuffer, label, err)
	}
	return h, nil
}

// CreateTexture creates a texture and returns its handle.
func (m *Manager) CreateTexture(dev Device, desc *hal.TextureDescriptor) (Handle[hal.Texture], error) {
	tex, err := dev.CreateTexture(desc)
	if err != nil {
		return Handle[hal.Texture]{}, creationError(KindTexture, desc.Label, err)
	}
	return store(m, tex, func() { dev.DestroyTexture(tex) }), nil
}

// CreateTextureView creates a view of the texture tex refers to.
func (m *Manager) CreateTextureView(dev Device, tex Handle[hal.Texture], desc *hal.TextureViewDescriptor) (Handle[hal.TextureView], error) {
	texture, err := m.Texture(tex)
	if err != nil {
		return Handle[hal.TextureView]{}, err
	}
	view, err := dev.CreateTextureView(texture, desc)
	if err != nil {
		return Handle[hal.TextureView]{}, creationError(KindTextureView, desc.Label, err)
	}
	return store(m, view, func() { dev.DestroyTextureView(view) }), nil
}

// CreateSampler creates a sampler and returns its handle.
func (m *Manager) CreateSampler(dev Device, desc *hal.SamplerDescriptor) (Handle[hal.Sampler], error) {
	s, err := dev.CreateSampler(desc)
	if err != nil {
		return Handle[hal.Sampler]{}, creationError(KindSampler, desc.Label, err)
	}
	return store(m, s, func() { dev.DestroySampler(s) }), nil
}

// CreateBindGroupLayout creates a bind group layout and returns its handle.
func (m *Manager) CreateBindGroupLayout(dev Device, desc *hal.BindGroupLayoutDescriptor) (Handle[hal.BindGroupLayout], error) {
	l, err := dev.CreateBindGroupLayout(desc)
	if err != nil {
		return Handle[hal.BindGroupLayout]{}, creationError(KindBindGroupLayout, desc.Label, err)
	}
	return store(m, l, func() { dev.DestroyBindGroupLayout(l) }), nil
}

// CreateBindGroup creates a bind group and returns its handle.
func (m *Manager) CreateBindGroup(dev Device, desc *hal.BindGroupDescriptor) (Handle[hal.BindGroup], error) {
	g, err := dev.CreateBindGroup(desc)
	if err != nil {
		return Handle[hal.BindGroup]{}, creationError(KindBindGroup, desc.Label, err)
	}
	return store(m, g, func() { dev.DestroyBindGroup(g) }), nil
}

// CreatePipelineLayout creates a pipeline layout and returns its handle.
func (m *Manager) CreatePipelineLayout(dev Device, desc *hal.PipelineLayoutDescriptor) (Handle[hal.PipelineLayout], error) {
	l, err := dev.CreatePipelineLayout(desc)
	if err != nil {
		return Handle[hal.PipelineLayout]{}, creationError(KindPipelineLayout, desc.Label, err)
	}
	return store(m, l, func() { dev.DestroyPipelineLayout(l) }), nil
}

// CreateShader creates a shader module and returns its handle.
func (m *Manager) CreateShader(dev Device, desc *hal.ShaderModuleDescriptor) (Handle[hal.ShaderModule], error) {
	s, err := dev.CreateShaderModule(desc)
	if err != nil {
		return Handle[hal.ShaderModule]{}, creationError(KindShaderModule, desc.Label, err)
	}
	return store(m, s, func() { dev.DestroyShaderModule(s) }), nil
}

// CreateRenderPipeline creates a render pipeline and returns its handle.
func (m *Manager) CreateRenderPipeline(dev Device, desc *hal.RenderPipelineDescriptor) (Handle[hal.RenderPipeline], error) {
	p, err := dev.CreateRenderPipeline(desc)
	if err != nil {
		return Handle[hal.RenderPipeline]{}, creationError(KindRenderPipeline, desc.Label, err)
	}
	return store(m, p, func() { dev.DestroyRenderPipeline(p) }), nil
}

// CreateComputePipeline creates a compute pipeline and returns its handle.
func (m *Manager) CreateComputePipeline(dev Device, desc *hal.ComputePipelineDescriptor) (Handle[hal.ComputePipeline], error) {
	p, err := dev.CreateComputePipeline(desc)
	if err != nil {
		return Handle[hal.ComputePipeline]{}, creationError(KindComputePipeline, desc.Label, err)
	}
	return store(m, p, func() { dev.DestroyComputePipeline(p) }), nil
}

// Buffer returns the buffer h refers to.
func (m *Manager) Buffer(h Handle[hal.Buffer]) (hal.Buffer, error) { return Get(m, h) }

// Texture returns the texture h refers to.
func (m *Manager) Texture(h Handle[hal.Texture]) (hal.Texture, error) { return Get(m, h) }

// TextureView returns the texture view h refers to.
func (m *Manager) TextureView(h Handle[hal.TextureView]) (hal.TextureView, error) { return Get(m, h) }

// Sampler returns the sampler h refers to.
func (m *Manager) Sampler(h Handle[hal.Sampler]) (hal.Sampler, error) { return Get(m, h) }

// BindGroupLayout returns the bind group layout h refers to.
func (m *Manager) BindGroupLayout(h Handle[hal.BindGroupLayout]) (hal.BindGroupLayout, error) {
	return Get(m, h)
}

// BindGroup returns the bind group h refers to.
func (m *Manager) BindGroup(h Handle[hal.BindGroup]) (hal.BindGroup, error) { return Get(m, h) }

// PipelineLayout returns the pipeline layout h refers to.
func (m *Manager) PipelineLayout(h Handle[hal.PipelineLayout]) (hal.PipelineLayout, error) {
	return Get(m, h)
}

// Shader returns the shader module h refers to.
func (m *Manager) Shader(h Handle[hal.ShaderModule]) (hal.ShaderModule, error) { return Get(m, h) }

// RenderPipeline returns the render pipeline h refers to.
func (m *Manager) RenderPipeline(h Handle[hal.RenderPipeline]) (hal.RenderPipeline, error) {
	return Get(m, h)
}

// ComputePipeline returns the compute pipeline h refers to.
func (m *Manager) ComputePipeline(h Handle[hal.ComputePipeline]) (hal.ComputePipeline, error) {
	return Get(m, h)
}
