package graph

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/framegraph/resource"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

// countingQueue forwards to the wrapped queue and counts submissions.
type countingQueue struct {
	hal.Queue
	submits int
}

func (q *countingQueue) Submit(cmdBufs []hal.CommandBuffer) (uint64, error) {
	q.submits++
	return q.Queue.Submit(cmdBufs)
}

// laggingQueue accepts submissions but reports only completed as finished.
type laggingQueue struct {
	hal.Queue
	last      uint64
	completed uint64
}

func (q *laggingQueue) Submit([]hal.CommandBuffer) (uint64, error) {
	q.last++
	return q.last, nil
}

func (q *laggingQueue) PollCompleted() uint64 { return q.completed }

// freeingDevice counts FreeCommandBuffer calls.
type freeingDevice struct {
	hal.Device
	freed int
}

func (d *freeingDevice) FreeCommandBuffer(cmdBuf hal.CommandBuffer) {
	d.freed++
	d.Device.FreeCommandBuffer(cmdBuf)
}

// stubPass records its executions into a shared log.
type stubPass struct {
	id    PassID
	decls []Declaration
	err   error
	log   *[]PassID

	inits int
}

func (p *stubPass) ID() PassID               { return p.id }
func (p *stubPass) Resources() []Declaration { return p.decls }

func (p *stubPass) Execute(rc *RecordContext, _ *resource.Manager) error {
	if rc.Encoder == nil {
		return errors.New("nil encoder")
	}
	if p.log != nil {
		*p.log = append(*p.log, p.id)
	}
	return p.err
}

// initPass counts Initialize calls.
type initPass struct {
	stubPass
}

func (p *initPass) Initialize(resource.Device, *resource.Manager) error {
	p.inits++
	return nil
}

func pass(id PassID, decls ...Declaration) *stubPass {
	return &stubPass{id: id, decls: decls}
}

func TestEmptyGraph(t *testing.T) {
	g := New()
	if g.PassCount() != 0 {
		t.Errorf("PassCount() = %d, want 0", g.PassCount())
	}
	if g.IsCompiled() {
		t.Error("IsCompiled() = true for new graph")
	}
	if g.State() != StateEmpty {
		t.Errorf("State() = %v, want empty", g.State())
	}
	if g.ExecutionOrder() != nil {
		t.Errorf("ExecutionOrder() = %v, want nil", g.ExecutionOrder())
	}

	g.AddPass(pass("p"))
	if g.PassCount() != 1 {
		t.Errorf("PassCount() = %d, want 1", g.PassCount())
	}
	if g.State() != StateDirty {
		t.Errorf("State() = %v, want dirty", g.State())
	}
	if _, err := g.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := g.ExecutionOrder(); !slices.Equal(got, []PassID{"p"}) {
		t.Errorf("ExecutionOrder() = %v, want [p]", got)
	}
	if g.State() != StateCompiled {
		t.Errorf("State() = %v, want compiled", g.State())
	}
}

func TestCompileClearBeforeForward(t *testing.T) {
	g := New()
	// Forward is added first; the BackBuffer write in ClearPass must still
	// schedule it ahead.
	g.AddPass(pass("ForwardPass", ReadsWrites("BackBuffer"), ReadsWrites("DepthBuffer")))
	g.AddPass(pass("ClearPass", Writes("BackBuffer")))

	c, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := []PassID{"ClearPass", "ForwardPass"}
	if got := g.ExecutionOrder(); !slices.Equal(got, want) {
		t.Errorf("ExecutionOrder() = %v, want %v", got, want)
	}
	if got := c.Writers("BackBuffer"); !slices.Equal(got, []PassID{"ForwardPass", "ClearPass"}) {
		t.Errorf("Writers(BackBuffer) = %v", got)
	}
	if got := c.Writers("DepthBuffer"); !slices.Equal(got, []PassID{"ForwardPass"}) {
		t.Errorf("Writers(DepthBuffer) = %v", got)
	}
	if c.String() != "ClearPass -> ForwardPass" {
		t.Errorf("String() = %q", c.String())
	}
}

func TestCompileDetectsCycle(t *testing.T) {
	g := New()
	g.AddPass(pass("A", Writes("X")))
	g.AddPass(pass("B", Reads("X"), Writes("Y")))
	g.AddPass(pass("C", Reads("Y"), Writes("X")))

	_, err := g.Compile()
	if !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("Compile error = %v, want ErrCyclicDependency", err)
	}
	var cerr *CycleError
	if !errors.As(err, &cerr) {
		t.Fatalf("error %T is not *CycleError", err)
	}
	// A has no incoming edge and is scheduled; B and C wait on each other.
	if !slices.Equal(cerr.Unresolved, []PassID{"B", "C"}) {
		t.Errorf("Unresolved = %v, want [B C]", cerr.Unresolved)
	}
	if g.IsCompiled() || g.State() != StateDirty {
		t.Errorf("after cycle: IsCompiled = %v, State = %v; want false, dirty", g.IsCompiled(), g.State())
	}

	// Breaking the cycle lets compilation succeed.
	g.RemovePass("C")
	if _, err := g.Compile(); err != nil {
		t.Fatalf("Compile after removing C: %v", err)
	}
}

func TestCycleReportsOnlyBlockedPasses(t *testing.T) {
	g := New()
	g.AddPass(pass("Free", Writes("Z")))
	g.AddPass(pass("P", ReadsWrites("Shared")))
	g.AddPass(pass("Q", ReadsWrites("Shared")))

	_, err := g.Compile()
	var cerr *CycleError
	if !errors.As(err, &cerr) {
		t.Fatalf("Compile error = %v, want *CycleError", err)
	}
	if !slices.Equal(cerr.Unresolved, []PassID{"P", "Q"}) {
		t.Errorf("Unresolved = %v, want [P Q]", cerr.Unresolved)
	}
	if !strings.Contains(err.Error(), "P, Q") {
		t.Errorf("Error() = %q, want it to list P, Q", err.Error())
	}
}

func TestMutationInvalidatesPlan(t *testing.T) {
	device, queue := createNoopDevice(t)
	rm := resource.NewManager()

	g := New()
	g.AddPass(pass("a", Writes("X")))
	if _, err := g.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	g.AddPass(pass("b", Reads("X")))
	if g.IsCompiled() {
		t.Error("IsCompiled() = true after AddPass")
	}
	if err := g.Execute(device, queue, rm); !errors.Is(err, ErrCompilationFailed) {
		t.Errorf("Execute error = %v, want ErrCompilationFailed", err)
	}

	if _, err := g.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if g.RemovePass("missing") {
		t.Error("RemovePass(missing) = true")
	}
	if !g.IsCompiled() {
		t.Error("RemovePass of unknown id dropped the plan")
	}
	if !g.RemovePass("b") {
		t.Error("RemovePass(b) = false")
	}
	if g.IsCompiled() {
		t.Error("IsCompiled() = true after RemovePass")
	}

	g.Clear()
	if g.PassCount() != 0 || g.State() != StateEmpty {
		t.Errorf("after Clear: PassCount = %d, State = %v", g.PassCount(), g.State())
	}
}

func TestIndependentPassesKeepInsertionOrder(t *testing.T) {
	ids := []PassID{"shadow", "ssao", "bloom", "ui", "sky"}
	for run := 0; run < 20; run++ {
		g := New()
		for _, id := range ids {
			g.AddPass(pass(id, Reads("Scene"), Writes(ResourceID(id+"_out"))))
		}
		if _, err := g.Compile(); err != nil {
			t.Fatalf("Compile: %v", err)
		}
		if got := g.ExecutionOrder(); !slices.Equal(got, ids) {
			t.Fatalf("run %d: ExecutionOrder() = %v, want %v", run, got, ids)
		}
	}
}

func TestTieBreakAfterDependency(t *testing.T) {
	g := New()
	g.AddPass(pass("late", Reads("G")))
	g.AddPass(pass("gbuffer", Writes("G")))
	g.AddPass(pass("indep"))

	if _, err := g.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	// gbuffer and indep are ready first; late becomes ready after gbuffer
	// and sorts by its insertion index, ahead of indep.
	want := []PassID{"gbuffer", "late", "indep"}
	if got := g.ExecutionOrder(); !slices.Equal(got, want) {
		t.Errorf("ExecutionOrder() = %v, want %v", got, want)
	}
}

func TestOrderRespectsWritersForRandomDAGs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n := 2 + rng.Intn(12)
		g := New()
		decls := make(map[PassID][]Declaration, n)
		ids := make([]PassID, n)
		for i := range ids {
			ids[i] = PassID(fmt.Sprintf("p%d", i))
		}
		// Pass i writes r<i> and reads a random subset of lower slots, so
		// the declaration set is acyclic.
		for _, i := range rng.Perm(n) {
			d := []Declaration{Writes(ResourceID(fmt.Sprintf("r%d", i)))}
			for j := 0; j < i; j++ {
				if rng.Intn(3) == 0 {
					d = append(d, Reads(ResourceID(fmt.Sprintf("r%d", j))))
				}
			}
			decls[ids[i]] = d
			g.AddPass(pass(ids[i], d...))
		}

		c, err := g.Compile()
		if err != nil {
			t.Fatalf("trial %d: Compile: %v", trial, err)
		}
		if c.Len() != n {
			t.Fatalf("trial %d: Len() = %d, want %d", trial, c.Len(), n)
		}
		for id, ds := range decls {
			at, _ := c.Position(id)
			for _, d := range ds {
				if !d.Usage.Reads() {
					continue
				}
				for _, w := range c.Writers(d.Resource) {
					if wp, _ := c.Position(w); wp >= at {
						t.Errorf("trial %d: writer %s at %d not before reader %s at %d", trial, w, wp, id, at)
					}
				}
			}
		}
	}
}

func TestReadOnlySlotImposesNoOrder(t *testing.T) {
	g := New()
	g.AddPass(pass("second", Reads("Environment")))
	g.AddPass(pass("first", Reads("Environment")))

	if _, err := g.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := g.ExecutionOrder(); !slices.Equal(got, []PassID{"second", "first"}) {
		t.Errorf("ExecutionOrder() = %v, want insertion order", got)
	}
}

func TestAddPassReplacesInPlace(t *testing.T) {
	g := New()
	g.AddPass(pass("a"))
	g.AddPass(pass("b"))
	g.AddPass(pass("c"))

	replacement := pass("a", Reads("Out"))
	g.AddPass(replacement)
	g.AddPass(pass("writer", Writes("Out")))

	if g.PassCount() != 4 {
		t.Errorf("PassCount() = %d, want 4", g.PassCount())
	}
	if got := g.Passes(); !slices.Equal(got, []PassID{"a", "b", "c", "writer"}) {
		t.Errorf("Passes() = %v", got)
	}
	p, err := g.Pass("a")
	if err != nil || p != replacement {
		t.Errorf("Pass(a) = %v, %v; want the replacement", p, err)
	}
	if _, err := g.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := []PassID{"b", "c", "writer", "a"}
	if got := g.ExecutionOrder(); !slices.Equal(got, want) {
		t.Errorf("ExecutionOrder() = %v, want %v", got, want)
	}
}

func TestPassNotFound(t *testing.T) {
	g := New()
	if _, err := g.Pass("ghost"); !errors.Is(err, ErrPassNotFound) {
		t.Errorf("Pass(ghost) error = %v, want ErrPassNotFound", err)
	}
}

func TestExecuteSubmitsOnce(t *testing.T) {
	device, halQueue := createNoopDevice(t)
	queue := &countingQueue{Queue: halQueue}
	rm := resource.NewManager()

	var log []PassID
	g := New()
	for _, p := range []*stubPass{
		{id: "present", decls: []Declaration{Reads("Color")}},
		{id: "light", decls: []Declaration{Reads("GBuffer"), Writes("Color")}},
		{id: "geometry", decls: []Declaration{Writes("GBuffer")}},
	} {
		p.log = &log
		g.AddPass(p)
	}
	if _, err := g.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := g.Execute(device, queue, rm); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if queue.submits != 1 {
		t.Errorf("submits = %d, want 1", queue.submits)
	}
	want := []PassID{"geometry", "light", "present"}
	if !slices.Equal(log, want) {
		t.Errorf("executed %v, want %v", log, want)
	}
	if g.Frame() != 1 {
		t.Errorf("Frame() = %d, want 1", g.Frame())
	}

	// The plan survives execution.
	if err := g.Execute(device, queue, rm); err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if queue.submits != 2 {
		t.Errorf("submits = %d, want 2", queue.submits)
	}
}

func TestExecuteFailureSubmitsNothing(t *testing.T) {
	device, halQueue := createNoopDevice(t)
	queue := &countingQueue{Queue: halQueue}
	rm := resource.NewManager()

	errBoom := errors.New("pipeline missing")
	var log []PassID
	p1 := &stubPass{id: "p1", decls: []Declaration{Writes("A")}, log: &log}
	p2 := &stubPass{id: "p2", decls: []Declaration{Reads("A"), Writes("B")}, log: &log, err: errBoom}
	p3 := &stubPass{id: "p3", decls: []Declaration{Reads("B")}, log: &log}

	g := New()
	g.AddPass(p1)
	g.AddPass(p2)
	g.AddPass(p3)
	if _, err := g.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	err := g.Execute(device, queue, rm)
	if !errors.Is(err, ErrExecutionFailed) {
		t.Fatalf("Execute error = %v, want ErrExecutionFailed", err)
	}
	if !errors.Is(err, errBoom) {
		t.Errorf("Execute error = %v, want it to wrap the pass error", err)
	}
	var perr *PassError
	if !errors.As(err, &perr) || perr.Pass != "p2" {
		t.Errorf("PassError = %+v, want pass p2", perr)
	}
	if queue.submits != 0 {
		t.Errorf("submits = %d, want 0", queue.submits)
	}
	if !slices.Equal(log, []PassID{"p1", "p2"}) {
		t.Errorf("executed %v, want [p1 p2]", log)
	}
	if g.Frame() != 0 {
		t.Errorf("Frame() = %d, want 0", g.Frame())
	}
	if !g.IsCompiled() {
		t.Error("a failed execution must not drop the plan")
	}
}

func TestExecuteWithoutWait(t *testing.T) {
	device, halQueue := createNoopDevice(t)
	queue := &countingQueue{Queue: halQueue}

	g := New(WithWaitTimeout(0))
	g.AddPass(pass("only"))
	if _, err := g.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := g.Execute(device, queue, resource.NewManager()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if queue.submits != 1 {
		t.Errorf("submits = %d, want 1", queue.submits)
	}
}

func TestExecuteWaitsForCompletion(t *testing.T) {
	halDevice, halQueue := createNoopDevice(t)
	device := &freeingDevice{Device: halDevice}
	queue := &countingQueue{Queue: halQueue}

	g := New()
	g.AddPass(pass("only"))
	if _, err := g.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := g.Execute(device, queue, resource.NewManager()); err != nil {
			t.Fatalf("Execute %d: %v", i, err)
		}
	}
	if queue.submits != 3 {
		t.Errorf("submits = %d, want 3", queue.submits)
	}
	if device.freed != 3 {
		t.Errorf("freed = %d, want 3", device.freed)
	}
	if g.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", g.Pending())
	}
}

func TestExecuteWaitTimeout(t *testing.T) {
	halDevice, halQueue := createNoopDevice(t)
	device := &freeingDevice{Device: halDevice}
	queue := &laggingQueue{Queue: halQueue}

	g := New(WithWaitTimeout(20 * time.Millisecond))
	g.AddPass(pass("only"))
	if _, err := g.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	start := time.Now()
	err := g.Execute(device, queue, resource.NewManager())
	if !errors.Is(err, ErrWaitTimeout) || !errors.Is(err, ErrExecutionFailed) {
		t.Fatalf("Execute error = %v, want ErrWaitTimeout", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("returned after %s, before the timeout", elapsed)
	}
	if g.Frame() != 0 {
		t.Errorf("Frame() = %d, want 0", g.Frame())
	}
	if device.freed != 0 || g.Pending() != 1 {
		t.Errorf("freed = %d pending = %d, want the unfinished buffer kept", device.freed, g.Pending())
	}

	// Once the GPU catches up the next frame frees the stale buffer.
	queue.completed = queue.last + 1
	if err := g.Execute(device, queue, resource.NewManager()); err != nil {
		t.Fatalf("Execute after completion: %v", err)
	}
	if device.freed != 2 || g.Pending() != 0 {
		t.Errorf("freed = %d pending = %d, want 2 and 0", device.freed, g.Pending())
	}
}

func TestExecuteWithoutWaitFreesLater(t *testing.T) {
	halDevice, halQueue := createNoopDevice(t)
	device := &freeingDevice{Device: halDevice}
	queue := &laggingQueue{Queue: halQueue}

	g := New(WithWaitTimeout(0))
	g.AddPass(pass("only"))
	if _, err := g.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := g.Execute(device, queue, resource.NewManager()); err != nil {
			t.Fatalf("Execute %d: %v", i, err)
		}
	}
	if device.freed != 0 || g.Pending() != 2 {
		t.Fatalf("freed = %d pending = %d, want 0 and 2", device.freed, g.Pending())
	}

	queue.completed = 1
	if err := g.Execute(device, queue, resource.NewManager()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if device.freed != 1 || g.Pending() != 2 {
		t.Errorf("freed = %d pending = %d, want 1 and 2", device.freed, g.Pending())
	}
	if g.Frame() != 3 {
		t.Errorf("Frame() = %d, want 3", g.Frame())
	}
}

func TestInitializePassesIsIdempotent(t *testing.T) {
	device, _ := createNoopDevice(t)
	rm := resource.NewManager()

	p := &initPass{stubPass: stubPass{id: "init"}}
	g := New()
	g.AddPass(p)
	g.AddPass(pass("plain"))

	for i := 0; i < 3; i++ {
		if err := g.InitializePasses(device, rm); err != nil {
			t.Fatalf("InitializePasses: %v", err)
		}
	}
	if p.inits != 1 {
		t.Errorf("Initialize called %d times, want 1", p.inits)
	}
}

func TestDescribe(t *testing.T) {
	g := New()
	g.AddPass(pass("Clear", Writes("BackBuffer")))
	g.AddPass(pass("Forward", ReadsWrites("BackBuffer"), ReadsWrites("DepthBuffer")))
	c, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	var buf bytes.Buffer
	c.Describe(&buf)
	out := buf.String()
	for _, want := range []string{"Step", "Clear", "Forward", "BackBuffer, DepthBuffer"} {
		if !strings.Contains(out, want) {
			t.Errorf("Describe output missing %q:\n%s", want, out)
		}
	}
}

func TestUsage(t *testing.T) {
	tests := []struct {
		u      Usage
		name   string
		reads  bool
		writes bool
	}{
		{Read, "read", true, false},
		{Write, "write", false, true},
		{ReadWrite, "read-write", true, true},
	}
	for _, tt := range tests {
		if tt.u.String() != tt.name || tt.u.Reads() != tt.reads || tt.u.Writes() != tt.writes {
			t.Errorf("%v: String=%q Reads=%v Writes=%v", tt.u, tt.u.String(), tt.u.Reads(), tt.u.Writes())
		}
	}
}

func TestMissingResource(t *testing.T) {
	err := MissingResource("BackBufferView", resource.ErrResourceNotFound)
	if !errors.Is(err, ErrResourceNotFound) || !errors.Is(err, resource.ErrResourceNotFound) {
		t.Errorf("MissingResource error = %v, want both sentinels", err)
	}
	if !strings.Contains(err.Error(), "BackBufferView") {
		t.Errorf("Error() = %q, want resource name", err.Error())
	}
}
