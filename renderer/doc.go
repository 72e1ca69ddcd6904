// Package renderer drives the standard frame graph against a device.
//
// A [Renderer] owns the resource manager, the render graph and the colour
// and depth targets the built-in passes draw into. The device comes from a
// [Backend]: [OpenHeadless] creates a standalone one (Vulkan when
// available, otherwise the noop HAL), and [FromProvider] borrows the device
// of a host application through gpucontext.
//
//	backend, err := renderer.OpenHeadless()
//	if err != nil {
//	    return err
//	}
//	r, err := renderer.New(backend, renderer.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	if err := r.Initialize(); err != nil {
//	    return err
//	}
//	for range 60 {
//	    if err := r.RenderFrame(); err != nil {
//	        return err
//	    }
//	}
//
// Renderer is not safe for concurrent use.
package renderer
