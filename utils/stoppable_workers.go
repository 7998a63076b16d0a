package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// StoppableWorkers runs background loops that share one context and are stopped together.
type StoppableWorkers interface {
	// AddWorkers starts one goroutine per function. It does nothing once Stop was called.
	AddWorkers(...func(context.Context))
	// Stop cancels the shared context and waits for every worker to return.
	Stop()
	Context() context.Context
}

// workers is returned by pointer through the interface since it holds a WaitGroup.
type workers struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStoppableWorkers starts funcs on their own goroutines.
func NewStoppableWorkers(funcs ...func(context.Context)) StoppableWorkers {
	return NewStoppableWorkersWithContext(context.Background(), funcs...)
}

// NewStoppableWorkersWithContext is like NewStoppableWorkers, the workers also stopping when ctx
// is done.
func NewStoppableWorkersWithContext(ctx context.Context, funcs ...func(context.Context)) StoppableWorkers {
	w := &workers{}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.AddWorkers(funcs...)
	return w
}

func (w *workers) AddWorkers(funcs ...func(context.Context)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx.Err() != nil {
		return
	}
	for _, f := range funcs {
		w.wg.Add(1)
		goutils.PanicCapturingGo(func() {
			defer w.wg.Done()
			f(w.ctx)
		})
	}
}

func (w *workers) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancel()
	w.wg.Wait()
}

func (w *workers) Context() context.Context {
	return w.ctx
}
