package graph

import (
	"fmt"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/resource"
	"github.com/gogpu/wgpu/hal"
)

// submission is a command buffer handed to the queue, kept until the queue
// reports its index complete.
type submission struct {
	index  uint64
	cmdBuf hal.CommandBuffer
}

// Execute records every pass, in compiled order, into one command encoder and
// submits the batch once.
//
// The graph must be compiled; Execute never compiles implicitly. If a pass
// fails, the remaining passes are skipped, the encoder is discarded and
// nothing is submitted. The returned *PassError names the failing pass.
//
// With a non-zero wait timeout Execute returns once the queue reports the
// batch complete, or with ErrWaitTimeout. A command buffer is freed only
// after its submission completes.
func (g *RenderGraph) Execute(device Device, queue Queue, resources *resource.Manager) error {
	if g.compiled == nil {
		return fmt.Errorf("%w: graph not compiled", ErrCompilationFailed)
	}
	g.reclaim(device, queue)
	log := framegraph.Logger()

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "render_graph_encoder",
	})
	if err != nil {
		return fmt.Errorf("%w: create command encoder: %w", ErrExecutionFailed, err)
	}
	if err := encoder.BeginEncoding("render_graph_frame"); err != nil {
		return fmt.Errorf("%w: begin encoding: %w", ErrExecutionFailed, err)
	}

	rc := &RecordContext{Device: device, Encoder: encoder, Frame: g.frame}
	for _, id := range g.compiled.order {
		log.Debug("render graph: executing pass", "pass", string(id), "frame", g.frame)
		if err := g.nodes[id].pass.Execute(rc, resources); err != nil {
			encoder.DiscardEncoding()
			return &PassError{Pass: id, Err: err}
		}
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("%w: end encoding: %w", ErrExecutionFailed, err)
	}

	index, err := queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		device.FreeCommandBuffer(cmdBuf)
		return fmt.Errorf("%w: submit: %w", ErrExecutionFailed, err)
	}
	g.pending = append(g.pending, submission{index: index, cmdBuf: cmdBuf})
	if g.waitTimeout > 0 {
		if err := g.wait(queue, index); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutionFailed, err)
		}
	}
	g.reclaim(device, queue)
	g.frame++
	return nil
}

// wait polls the queue until index completes or the wait timeout passes.
func (g *RenderGraph) wait(queue Queue, index uint64) error {
	deadline := time.Now().Add(g.waitTimeout)
	backoff := 50 * time.Microsecond
	for queue.PollCompleted() < index {
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: submission %d not complete after %s", ErrWaitTimeout, index, g.waitTimeout)
		}
		time.Sleep(backoff)
		if backoff < time.Millisecond {
			backoff *= 2
		}
	}
	return nil
}

// reclaim frees the pending command buffers the queue reports complete.
func (g *RenderGraph) reclaim(device Device, queue Queue) {
	if len(g.pending) == 0 {
		return
	}
	done := queue.PollCompleted()
	kept := g.pending[:0]
	for _, s := range g.pending {
		if s.index <= done {
			device.FreeCommandBuffer(s.cmdBuf)
			continue
		}
		kept = append(kept, s)
	}
	clear(g.pending[len(kept):])
	g.pending = kept
}

// Pending returns the number of submitted command buffers not yet freed.
func (g *RenderGraph) Pending() int { return len(g.pending) }

// Frame returns the number of successful Execute calls.
func (g *RenderGraph) Frame() uint64 { return g.frame }
