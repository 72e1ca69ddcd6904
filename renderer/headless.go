package renderer

import (
	"fmt"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	// Register the Vulkan HAL backend.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// HeadlessBackend owns a standalone device with no window surface. Present
// only counts frames.
type HeadlessBackend struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	adapter  string
	noop     bool

	format        gputypes.TextureFormat
	width, height uint32
	presents      uint64
	closed        bool
}

type headlessOptions struct {
	noop          bool
	format        gputypes.TextureFormat
	width, height uint32
}

// HeadlessOption configures OpenHeadless.
type HeadlessOption func(*headlessOptions)

// WithNoop skips Vulkan and opens the noop HAL directly.
func WithNoop() HeadlessOption {
	return func(o *headlessOptions) { o.noop = true }
}

// WithSurface sets the reported surface format and size.
func WithSurface(format gputypes.TextureFormat, width, height uint32) HeadlessOption {
	return func(o *headlessOptions) {
		o.format = format
		o.width, o.height = width, height
	}
}

// instanceCreator is satisfied by registered HAL backends and noop.API.
type instanceCreator interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// OpenHeadless opens a Vulkan device, falling back to the noop HAL when
// Vulkan is unavailable.
func OpenHeadless(opts ...HeadlessOption) (*HeadlessBackend, error) {
	o := headlessOptions{format: gputypes.TextureFormatBGRA8Unorm, width: 800, height: 600}
	for _, opt := range opts {
		opt(&o)
	}
	log := framegraph.Logger()

	if !o.noop {
		if vk, ok := hal.GetBackend(gputypes.BackendVulkan); ok {
			b, err := openBackend(vk, o)
			if err == nil {
				log.Info("renderer: headless backend opened", "backend", "vulkan", "adapter", b.adapter)
				return b, nil
			}
			log.Warn("renderer: vulkan unavailable, using noop", "error", err)
		} else {
			log.Warn("renderer: vulkan backend not registered, using noop")
		}
	}

	b, err := openBackend(&noop.API{}, o)
	if err != nil {
		return nil, err
	}
	b.noop = true
	log.Info("renderer: headless backend opened", "backend", "noop")
	return b, nil
}

func openBackend(api instanceCreator, o headlessOptions) (*HeadlessBackend, error) {
	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	return &HeadlessBackend{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		adapter:  selected.Info.Name,
		format:   o.format,
		width:    o.width,
		height:   o.height,
	}, nil
}

// Device returns the opened HAL device.
func (b *HeadlessBackend) Device() hal.Device { return b.device }

// Queue returns the device's queue.
func (b *HeadlessBackend) Queue() hal.Queue { return b.queue }

// SurfaceFormat returns the format of the offscreen targets.
func (b *HeadlessBackend) SurfaceFormat() gputypes.TextureFormat { return b.format }

// SurfaceSize returns the current offscreen size.
func (b *HeadlessBackend) SurfaceSize() (width, height uint32) { return b.width, b.height }

// Resize records the new offscreen size.
func (b *HeadlessBackend) Resize(width, height uint32) { b.width, b.height = width, height }

// IsNoop reports whether the backend runs on the noop HAL.
func (b *HeadlessBackend) IsNoop() bool { return b.noop }

// Adapter returns the name of the opened adapter.
func (b *HeadlessBackend) Adapter() string { return b.adapter }

// Presents returns the number of frames presented.
func (b *HeadlessBackend) Presents() uint64 { return b.presents }

// Present counts the frame; there is no surface to show it on.
func (b *HeadlessBackend) Present() error {
	if b.closed {
		return ErrClosed
	}
	b.presents++
	return nil
}

// Close destroys the device and instance. It is safe to call more than once.
func (b *HeadlessBackend) Close() {
	if b.closed {
		return
	}
	b.closed = true
	if b.device != nil {
		b.device.Destroy()
		b.device = nil
	}
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
}
