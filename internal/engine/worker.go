package engine

import (
	"sync"
	"sync/atomic"
)

// SearchThread wraps a Context with a background execution model: a single
// long-lived goroutine waits on a start signal, runs the search, invokes the
// completion callback as part of Context.Run, and clears the active flag.
// There is no parallel search within a single iterative-deepening call and
// no Lazy-SMP worker pool — one Context, one background goroutine.
type SearchThread struct {
	ctx *Context

	startCh  chan struct{}
	destroy  atomic.Bool
	loopDone chan struct{}

	mu       sync.Mutex
	finished chan struct{}
}

// NewSearchThread creates a SearchThread around a fresh Context backed by tt,
// and launches its background goroutine.
func NewSearchThread(tt *TranspositionTable) *SearchThread {
	st := &SearchThread{
		ctx:      NewContext(tt),
		startCh:  make(chan struct{}, 1),
		loopDone: make(chan struct{}),
	}
	go st.loop()
	return st
}

// Context returns the wrapped search Context.
func (st *SearchThread) Context() *Context {
	return st.ctx
}

func (st *SearchThread) loop() {
	defer close(st.loopDone)
	for range st.startCh {
		if st.destroy.Load() {
			return
		}
		st.ctx.Run()

		st.mu.Lock()
		if st.finished != nil {
			close(st.finished)
			st.finished = nil
		}
		st.mu.Unlock()
	}
}

// Start configures the Context and signals the worker to begin a search.
// Non-blocking. Calling Start while the Context is active is forbidden by
// the contract; callers should Wait first.
func (st *SearchThread) Start(opts Options, cb Callbacks) {
	st.ctx.Configure(opts, cb)

	st.mu.Lock()
	st.finished = make(chan struct{})
	st.mu.Unlock()

	select {
	case st.startCh <- struct{}{}:
	default:
	}
}

// Abort sets the exit flag. Non-blocking.
func (st *SearchThread) Abort() {
	st.ctx.Abort()
}

// Wait blocks until active becomes false.
func (st *SearchThread) Wait() {
	st.mu.Lock()
	finished := st.finished
	st.mu.Unlock()
	if finished == nil {
		return
	}
	<-finished
}

// Reset aborts any in-flight search, waits for it to settle, and clears the
// transposition table.
func (st *SearchThread) Reset() {
	st.Abort()
	st.Wait()
	st.ctx.tt.Clear()
}

// Shutdown aborts any in-flight search and stops the background goroutine
// cleanly via abort + join.
func (st *SearchThread) Shutdown() {
	st.destroy.Store(true)
	st.Abort()
	close(st.startCh)
	<-st.loopDone
}
