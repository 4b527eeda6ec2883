// Package tasks provides the fire-and-forget background runner the report
// coordinator hands rendering work to.
package tasks

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Logged1n/SharpBuy-sub000/internal/domain"
)

// Runner accepts units of asynchronous work. Enqueued functions run exactly
// once on a worker, isolated from the submitting request's lifetime; nothing
// they do is observable to the submitter.
type Runner interface {
	Enqueue(fn func(ctx context.Context)) error
}

// Pool runs enqueued work on a fixed set of workers. Workers receive the
// pool's own base context rather than any request context, so work keeps
// running after the originating request has returned or been cancelled.
type Pool struct {
	logger  zerolog.Logger
	work    chan func(ctx context.Context)
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// NewPool starts workers goroutines draining a queue of the given capacity.
func NewPool(workers, capacity int, logger zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if capacity <= 0 {
		capacity = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		logger: logger,
		work:   make(chan func(ctx context.Context), capacity),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Enqueue submits fn for execution. It fails synchronously when the pool is
// stopped or the queue is full; it never blocks the caller.
func (p *Pool) Enqueue(fn func(ctx context.Context)) error {
	if fn == nil {
		return domain.ErrQueueUnavailable
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return domain.ErrQueueUnavailable
	}
	select {
	case p.work <- fn:
		return nil
	default:
		return domain.ErrQueueUnavailable
	}
}

// Stop closes the queue, lets queued work drain, and waits for workers.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.work)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for fn := range p.work {
		p.run(fn)
	}
}

// run executes one unit of work. A panic inside a task must not take down
// the worker; it is logged and the worker moves on.
func (p *Pool) run(fn func(ctx context.Context)) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error().Interface("panic", rec).Msg("tasks: recovered panic in background task")
		}
	}()
	fn(p.ctx)
}

var _ Runner = (*Pool)(nil)
