// Package resource owns GPU objects behind opaque, type-tagged handles.
//
// A [Manager] stores HAL objects (buffers, textures, pipelines, shader
// modules, samplers, bind groups) and hands out [Handle] values. A handle is
// a capability to look an object up, never an owner: the manager destroys
// objects on [Manager.Remove] and [Manager.Clear].
//
// Handles are parameterized by the HAL interface they refer to, so
// Handle[hal.Texture] cannot be passed where Handle[hal.Buffer] is expected.
// Lookups by raw [ID] are checked at runtime and report [ErrTypeMismatch].
//
// Ids come from a [Counter]. They increase monotonically and are never
// reused, so a handle to a removed object reports [ErrResourceNotFound]
// instead of aliasing a newer object.
//
// Resources can also be published under stable names (for example
// "BackBuffer") so that passes find shared objects without holding handles:
//
//	view, _ := rm.CreateTextureView(device, tex, &hal.TextureViewDescriptor{Label: "back"})
//	rm.PublishNamed("BackBufferView", view)
//	...
//	h, ok := resource.Named[hal.TextureView](rm, "BackBufferView")
//
// A Manager is not safe for concurrent use.
package resource
