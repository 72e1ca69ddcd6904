// Package framegraph is a frame-rendering sandbox built around a render graph
// and a handle-based GPU resource manager on top of gogpu/wgpu's HAL.
//
// # Overview
//
// Render work is declared as named passes. Each pass lists the logical
// resources it reads and writes. The graph derives an execution order from
// those declarations, rejects cyclic declaration sets, records every pass into
// one command encoder and submits the batch once.
//
//	rm := resource.NewManager()
//	g := graph.New()
//	g.AddPass(passes.NewClearPass())
//	g.AddPass(passes.NewForwardPass())
//	if err := g.InitializePasses(device, rm); err != nil { ... }
//	if _, err := g.Compile(); err != nil { ... }
//	if err := g.Execute(device, queue, rm); err != nil { ... }
//
// # Packages
//
//   - resource: type-tagged handles over HAL objects, named publication
//   - graph: pass scheduling (Kahn's algorithm) and single-batch execution
//   - pipeline: vertex layouts, WGSL shader registry, render pipeline builder
//   - passes: clear, forward and placeholder passes
//   - renderer: headless backend, frame loop and statistics
//
// # Logging
//
// framegraph is silent by default. Call [SetLogger] to receive diagnostics
// from every sub-package.
package framegraph

// Version is the current version of the module.
const Version = "0.1.0"
