// Package executor implements the ParallelExecutor abstraction: a uniform
// task-submission interface over inline, fixed-pool, host-pool, and
// per-task-thread execution, adapted from the concurrency patterns in the
// pattern-discovery engine's original host-pool/thread-pool executors.
package executor

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrShutdown is returned by Submit once an executor has been asked to
// shut down.
var ErrShutdown = errors.New("executor: submit on stopped executor")

// Handle is returned by Submit; Wait blocks until the task completes and
// propagates any panic recovered from it as an error.
type Handle interface {
	Wait() error
}

// ParallelExecutor submits closures for execution under one of several
// scheduling policies.
type ParallelExecutor interface {
	Submit(task func() error) (Handle, error)
	Shutdown()
}

type handle struct {
	done chan struct{}
	err  error
}

func newHandle() *handle { return &handle{done: make(chan struct{})} }

func (h *handle) finish(err error) {
	h.err = err
	close(h.done)
}

func (h *handle) Wait() error {
	<-h.done
	return h.err
}

func runCaptured(task func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("executor: task panicked: %v", r)
		}
	}()
	return task()
}

// Inline executes every task synchronously on the calling goroutine.
// Failures are captured in the handle and re-raised on Wait. Used for
// deterministic tests and as the baseline for parallel/inline parity
// checks.
type Inline struct{}

func NewInline() *Inline { return &Inline{} }

func (i *Inline) Submit(task func() error) (Handle, error) {
	h := newHandle()
	h.finish(runCaptured(task))
	return h, nil
}

func (i *Inline) Shutdown() {}

// FixedPool is a worker pool of n goroutines pulling from a bounded FIFO.
// The channel plays the role the original design assigns to a
// mutex+condition-variable-guarded queue. n<=0 means "detect hardware
// concurrency, minimum 2".
type FixedPool struct {
	tasks    chan func()
	wg       sync.WaitGroup
	mu       sync.Mutex
	shutdown bool
}

func NewFixedPool(n int) *FixedPool {
	if n <= 0 {
		n = runtime.NumCPU()
		if n < 2 {
			n = 2
		}
	}
	p := &FixedPool{tasks: make(chan func(), n*4)}
	p.wg.Add(n)
	for w := 0; w < n; w++ {
		go p.workerLoop()
	}
	return p
}

func (p *FixedPool) workerLoop() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

func (p *FixedPool) Submit(task func() error) (Handle, error) {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return nil, ErrShutdown
	}
	p.mu.Unlock()

	h := newHandle()
	p.tasks <- func() { h.finish(runCaptured(task)) }
	return h, nil
}

// Shutdown stops accepting new tasks; in-flight and already-queued tasks
// still run to completion.
func (p *FixedPool) Shutdown() {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return
	}
	p.shutdown = true
	p.mu.Unlock()
	close(p.tasks)
	p.wg.Wait()
}

// PerTaskThread spawns one new goroutine per submitted task; the portable
// fallback when no pooling is wanted.
type PerTaskThread struct {
	mu       sync.Mutex
	shutdown bool
}

func NewPerTaskThread() *PerTaskThread { return &PerTaskThread{} }

func (t *PerTaskThread) Submit(task func() error) (Handle, error) {
	t.mu.Lock()
	if t.shutdown {
		t.mu.Unlock()
		return nil, ErrShutdown
	}
	t.mu.Unlock()

	h := newHandle()
	go func() { h.finish(runCaptured(task)) }()
	return h, nil
}

func (t *PerTaskThread) Shutdown() {
	t.mu.Lock()
	t.shutdown = true
	t.mu.Unlock()
}

var (
	hostPoolOnce sync.Once
	hostPool     *FixedPool
)

// HostPool delegates to a process-wide, lazily-initialized shared pool:
// one instance per process, auto-initialized on first use. This replaces
// the original's global mutable runner singleton with an explicit type
// that still offers a convenience zero-configuration path.
type HostPool struct{}

func NewHostPool() *HostPool {
	hostPoolOnce.Do(func() {
		hostPool = NewFixedPool(0)
	})
	return &HostPool{}
}

func (h *HostPool) Submit(task func() error) (Handle, error) { return hostPool.Submit(task) }

// Shutdown is a no-op: the host pool is process-wide and outlives any
// single HostPool handle.
func (h *HostPool) Shutdown() {}

// ParallelFor submits n independently-indexed tasks and blocks until all
// complete, propagating the first failure encountered. No ordering between
// tasks is guaranteed; callers needing order must sort results themselves.
func ParallelFor(n int, ex ParallelExecutor, body func(i int) error) error {
	var g errgroup.Group
	handles := make([]Handle, n)
	for i := 0; i < n; i++ {
		i := i
		h, err := ex.Submit(func() error { return body(i) })
		if err != nil {
			return err
		}
		handles[i] = h
	}
	for i := range handles {
		h := handles[i]
		g.Go(func() error { return h.Wait() })
	}
	return g.Wait()
}
