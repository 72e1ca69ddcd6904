// Package graph schedules and records render passes.
//
// A [RenderGraph] holds passes that declare how they use logical resource
// slots ([Read], [Write], [ReadWrite]). [RenderGraph.Compile] turns the
// declarations into a linear order with Kahn's algorithm: for every slot,
// each writer runs before each other pass that reads it. Slots that are only
// read impose no order. Independent passes keep their insertion order, so
// the same pass set always compiles to the same plan.
//
// [RenderGraph.Execute] runs the compiled order against one command encoder
// and submits the result once. The first failing pass aborts the frame and
// nothing is submitted.
//
// Adding, removing or clearing passes drops the compiled plan. Execute on a
// graph without a plan fails with [ErrCompilationFailed]; it never compiles
// on its own.
package graph
