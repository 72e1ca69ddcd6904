package pipeline

import (
	_ "embed"
	"fmt"
	"hash/fnv"
	"slices"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/internal/cache"
	"github.com/gogpu/framegraph/resource"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Names of the shaders RegisterDefaults installs.
const (
	ShaderForwardSimple = "forward_simple"
	ShaderForwardColor  = "forward_color"
)

//go:embed shaders/forward_simple.wgsl
var forwardSimpleSource string

//go:embed shaders/forward_color.wgsl
var forwardColorSource string

// defaultCacheSize bounds the SPIR-V cache shared by a registry.
const defaultCacheSize = 64

// CompileWGSL compiles WGSL source to SPIR-V words.
func CompileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShader, err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("%w: SPIR-V length %d is not a multiple of 4", ErrInvalidShader, len(spirvBytes))
	}

	// SPIR-V is a stream of little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// ShaderRegistry maps shader names to shader module handles.
//
// Sources are validated with naga before a module is created. Compiled
// SPIR-V is cached by source hash, so registering one source under several
// names compiles it once.
type ShaderRegistry struct {
	shaders  map[string]resource.Handle[hal.ShaderModule]
	spirv    *cache.Cache[uint64, []uint32]
	useSPIRV bool
}

// RegistryOption configures a ShaderRegistry.
type RegistryOption func(*ShaderRegistry)

// WithSPIRV creates shader modules from the compiled SPIR-V instead of the
// WGSL source. Backends without a WGSL front end need this.
func WithSPIRV() RegistryOption {
	return func(r *ShaderRegistry) { r.useSPIRV = true }
}

// WithCacheSize bounds the number of compiled sources kept. Zero is unlimited.
func WithCacheSize(n int) RegistryOption {
	return func(r *ShaderRegistry) {
		if n >= 0 {
			r.spirv = cache.New[uint64, []uint32](n)
		}
	}
}

// NewShaderRegistry returns an empty registry.
func NewShaderRegistry(opts ...RegistryOption) *ShaderRegistry {
	r := &ShaderRegistry{
		shaders: make(map[string]resource.Handle[hal.ShaderModule]),
		spirv:   cache.New[uint64, []uint32](defaultCacheSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds name to an existing shader module, replacing any earlier
// binding.
func (r *ShaderRegistry) Register(name string, h resource.Handle[hal.ShaderModule]) {
	r.shaders[name] = h
}

// Get returns the handle registered under name.
func (r *ShaderRegistry) Get(name string) (resource.Handle[hal.ShaderModule], error) {
	h, ok := r.shaders[name]
	if !ok {
		return h, fmt.Errorf("%w: %s", ErrShaderNotFound, name)
	}
	return h, nil
}

// Has reports whether name is registered.
func (r *ShaderRegistry) Has(name string) bool {
	_, ok := r.shaders[name]
	return ok
}

// Remove drops the binding for name. The shader module stays in the
// resource manager.
func (r *ShaderRegistry) Remove(name string) bool {
	if _, ok := r.shaders[name]; !ok {
		return false
	}
	delete(r.shaders, name)
	return true
}

// Clear drops every binding and the compile cache.
func (r *ShaderRegistry) Clear() {
	r.shaders = make(map[string]resource.Handle[hal.ShaderModule])
	r.spirv.Clear()
}

// Len returns the number of registered shaders.
func (r *ShaderRegistry) Len() int { return len(r.shaders) }

// Names returns the registered names in sorted order.
func (r *ShaderRegistry) Names() []string {
	names := make([]string, 0, len(r.shaders))
	for name := range r.shaders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CompileStats returns the compile cache hit and miss counts.
func (r *ShaderRegistry) CompileStats() (hits, misses uint64) {
	s := r.spirv.Stats()
	return s.Hits, s.Misses
}

// CreateFromWGSL validates source, creates a shader module in rm and
// registers it under name.
func (r *ShaderRegistry) CreateFromWGSL(dev resource.Device, rm *resource.Manager, name, source string) (resource.Handle[hal.ShaderModule], error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(source))
	words, err := r.spirv.GetOrCreate(h.Sum64(), func() ([]uint32, error) {
		return CompileWGSL(source)
	})
	if err != nil {
		return resource.Handle[hal.ShaderModule]{}, fmt.Errorf("shader %s: %w", name, err)
	}

	desc := &hal.ShaderModuleDescriptor{Label: name}
	if r.useSPIRV {
		desc.Source = hal.ShaderSource{SPIRV: words}
	} else {
		desc.Source = hal.ShaderSource{WGSL: source}
	}
	module, err := rm.CreateShader(dev, desc)
	if err != nil {
		return module, fmt.Errorf("shader %s: %w", name, err)
	}
	r.Register(name, module)
	framegraph.Logger().Debug("pipeline: shader registered",
		"name", name, "spirv_words", len(words), "id", uint64(module.ID()))
	return module, nil
}

// RegisterDefaults creates and registers the built-in forward shaders.
func (r *ShaderRegistry) RegisterDefaults(dev resource.Device, rm *resource.Manager) error {
	for _, s := range []struct{ name, source string }{
		{ShaderForwardSimple, forwardSimpleSource},
		{ShaderForwardColor, forwardColorSource},
	} {
		if r.Has(s.name) {
			continue
		}
		if _, err := r.CreateFromWGSL(dev, rm, s.name, s.source); err != nil {
			return err
		}
	}
	return nil
}
